package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	rzputils "github.com/razorpay/razorpay-go/utils"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"storefront-payments/internal/services/checkout"
	"storefront-payments/internal/services/payments/types"
)

const maxWebhookBodyBytes = int64(65536)

// StripeWebhook verifies and translates Stripe payment events into vendor
// events for the cart's checkout machine.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("reading stripe webhook body", "error", err)
		http.Error(w, "Request too large", http.StatusRequestEntityTooLarge)
		return
	}

	if h.stripeWebhookSecret == "" {
		slog.Error("stripe webhook secret not set")
		http.Error(w, "Webhook secret not configured", http.StatusInternalServerError)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.stripeWebhookSecret)
	if err != nil {
		slog.Error("stripe webhook signature verification failed", "error", err)
		http.Error(w, "Signature verification failed", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			slog.Error("parsing payment_intent payload", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		ev := checkout.VendorEvent{
			Type: VendorEventForStripe(event.Type),
			Ref:  types.ClassifyRef(pi.ID),
		}
		if pi.LastPaymentError != nil {
			ev.Message = pi.LastPaymentError.Msg
		}

		h.routeVendorEvent(r, pi.Metadata["cart_id"], ev)

	default:
		slog.Info("ignoring stripe event", "event_type", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}

func VendorEventForStripe(eventType stripe.EventType) checkout.VendorEventType {
	if eventType == "payment_intent.succeeded" {
		return checkout.VendorAuthorized
	}
	return checkout.VendorFailed
}

// RazorpayWebhook verifies and translates Razorpay payment events. The
// cart reference travels in the payment's notes, put there when the order
// was created.
func (h *Handler) RazorpayWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("reading razorpay webhook body", "error", err)
		http.Error(w, "Request too large", http.StatusRequestEntityTooLarge)
		return
	}

	if h.razorpayWebhookSecret == "" {
		slog.Error("razorpay webhook secret not set")
		http.Error(w, "Webhook secret not configured", http.StatusInternalServerError)
		return
	}

	sigHeader := r.Header.Get("X-Razorpay-Signature")
	if !rzputils.VerifyWebhookSignature(string(payload), sigHeader, h.razorpayWebhookSecret) {
		slog.Error("razorpay webhook signature verification failed")
		http.Error(w, "Signature verification failed", http.StatusBadRequest)
		return
	}

	var event struct {
		Event   string `json:"event"`
		Payload struct {
			Payment struct {
				Entity struct {
					ID               string            `json:"id"`
					Status           string            `json:"status"`
					ErrorDescription string            `json:"error_description"`
					Notes            map[string]string `json:"notes"`
				} `json:"entity"`
			} `json:"payment"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		slog.Error("parsing razorpay webhook payload", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	entity := event.Payload.Payment.Entity

	switch event.Event {
	case "payment.authorized", "payment.captured":
		h.routeVendorEvent(r, entity.Notes["cart_id"], checkout.VendorEvent{
			Type: checkout.VendorAuthorized,
			Ref:  types.ClassifyRef(entity.ID),
		})
	case "payment.failed":
		h.routeVendorEvent(r, entity.Notes["cart_id"], checkout.VendorEvent{
			Type:    checkout.VendorFailed,
			Ref:     types.ClassifyRef(entity.ID),
			Message: entity.ErrorDescription,
		})
	default:
		slog.Info("ignoring razorpay event", "event_type", event.Event)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) routeVendorEvent(r *http.Request, cartID string, ev checkout.VendorEvent) {
	if cartID == "" {
		slog.Error("webhook payload carries no cart reference", "event", ev.Type)
		return
	}

	m, ok := h.registry.Lookup(cartID)
	if !ok {
		slog.Info("webhook for cart with no live checkout", "cart_id", cartID, "event", ev.Type)
		return
	}

	m.HandleVendorEvent(r.Context(), ev)
}
