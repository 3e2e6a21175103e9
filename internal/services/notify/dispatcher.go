// Package notify delivers best-effort order-placed notifications through an
// ordered list of transports. Delivery failure never affects the order.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"storefront-payments/internal/store"
)

// OrderPlacedEvent is the one canonical payload every transport serializes
// in its own wire shape.
type OrderPlacedEvent struct {
	EventID  string  `json:"event_id"`
	OrderID  string  `json:"order_id"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

// NewOrderPlacedEvent builds the event from a just-created order. The phone
// comes from the shipping address when present.
func NewOrderPlacedEvent(order *store.Order) OrderPlacedEvent {
	ev := OrderPlacedEvent{
		EventID:  uuid.NewString(),
		OrderID:  order.ID,
		Email:    order.Email,
		Total:    order.Total,
		Currency: order.CurrencyCode,
	}
	if order.ShippingAddress != nil {
		ev.Phone = order.ShippingAddress.Phone
	}
	return ev
}

// Transport is one delivery channel for an order-placed event.
type Transport interface {
	Name() string
	Send(ctx context.Context, ev OrderPlacedEvent) error
}

// Dispatcher tries its transports in order and stops at the first one that
// succeeds. One instance is constructed at startup and shared.
type Dispatcher struct {
	transports []Transport
}

func NewDispatcher(transports ...Transport) *Dispatcher {
	return &Dispatcher{transports: transports}
}

// NotifyOrderPlaced reports whether any transport delivered the event. It
// never returns an error: the order already exists and nothing here may
// undo that.
func (d *Dispatcher) NotifyOrderPlaced(ctx context.Context, order *store.Order) bool {
	ev := NewOrderPlacedEvent(order)

	for _, t := range d.transports {
		if err := t.Send(ctx, ev); err != nil {
			slog.Error("notification transport failed", "transport", t.Name(), "order_id", ev.OrderID, "error", err)
			continue
		}
		slog.Info("order notification delivered", "transport", t.Name(), "order_id", ev.OrderID)
		return true
	}

	return false
}
