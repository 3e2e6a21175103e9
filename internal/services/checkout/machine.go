package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"storefront-payments/internal/services/payments/types"
	"storefront-payments/internal/store"
)

// State is the single tag describing where a checkout stands. UI-style
// booleans are derived from it, never stored separately.
type State string

const (
	StateIdle                 State = "idle"
	StateInitializing         State = "initializing"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StatePlacingOrder         State = "placing_order"
	StateDone                 State = "done"
	StateError                State = "error"
)

type VendorEventType string

const (
	VendorAuthorized VendorEventType = "authorized"
	VendorFailed     VendorEventType = "failed"
	VendorDismissed  VendorEventType = "dismissed"
)

// VendorEvent is a payment vendor's confirmation callback, normalized. The
// message is relayed to the user verbatim when present.
type VendorEvent struct {
	Type    VendorEventType
	Ref     types.PaymentRef
	Message string
}

var (
	ErrCartNotReady       = errors.New("cart is not ready for checkout")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

const timedOutMessage = "payment timed out"

// PlaceOrderer is the slice of the coordinator the machine needs.
type PlaceOrderer interface {
	PlaceOrder(ctx context.Context, cartID string) (*store.CompleteResult, error)
}

// Notifier is the slice of the notification dispatcher the machine needs.
type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, order *store.Order) bool
}

// Machine is the checkout flow for one cart. Vendor events move it through
//
//	idle -> initializing -> awaiting_confirmation -> placing_order -> done
//
// with error reachable from awaiting_confirmation and placing_order. The
// single transition into placing_order is what guarantees at most one
// order placement per confirmed payment; there is no other guard.
type Machine struct {
	coordinator PlaceOrderer
	notifier    Notifier
	timeout     time.Duration

	mu               sync.Mutex
	state            State
	errMsg           string
	cartID           string
	session          *types.Session
	confirmationPath string
	timer            *time.Timer

	// notified receives the dispatch outcome after done; buffered so the
	// notifying goroutine never blocks on an absent reader.
	notified chan bool
}

func NewMachine(coordinator PlaceOrderer, notifier Notifier, timeout time.Duration) *Machine {
	return &Machine{
		coordinator: coordinator,
		notifier:    notifier,
		timeout:     timeout,
		state:       StateIdle,
		notified:    make(chan bool, 1),
	}
}

// Start begins a checkout for a ready cart with a pending payment session.
// It leaves the machine awaiting the vendor's confirmation, with the
// timeout armed.
func (m *Machine) Start(cart *store.Cart, session *types.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return ErrCheckoutInProgress
	}
	if !cart.Ready() {
		return ErrCartNotReady
	}

	m.state = StateInitializing
	m.cartID = cart.ID
	m.session = session
	m.errMsg = ""
	m.confirmationPath = ""

	// The vendor widget is opened client-side with the session blob; from
	// here the machine waits for the callback or the clock.
	m.state = StateAwaitingConfirmation
	m.timer = time.AfterFunc(m.timeout, m.onTimeout)

	return nil
}

// HandleVendorEvent applies a vendor callback. Events arriving in any
// state other than awaiting_confirmation are ignored, which is what makes
// a late callback after a timeout (or a duplicate success) harmless.
func (m *Machine) HandleVendorEvent(ctx context.Context, ev VendorEvent) {
	m.mu.Lock()

	if m.state != StateAwaitingConfirmation {
		state := m.state
		m.mu.Unlock()
		slog.Debug("ignoring vendor event", "event", ev.Type, "state", state)
		return
	}

	m.stopTimer()

	switch ev.Type {
	case VendorAuthorized:
		m.state = StatePlacingOrder
		cartID := m.cartID
		m.mu.Unlock()
		m.placeOrder(ctx, cartID)

	case VendorFailed, VendorDismissed:
		msg := ev.Message
		if msg == "" {
			msg = "payment was not completed"
		}
		m.state = StateError
		m.errMsg = msg
		m.mu.Unlock()

	default:
		m.mu.Unlock()
		slog.Debug("unknown vendor event", "event", ev.Type)
	}
}

func (m *Machine) placeOrder(ctx context.Context, cartID string) {
	res, err := m.coordinator.PlaceOrder(ctx, cartID)

	m.mu.Lock()
	if err != nil {
		m.state = StateError
		m.errMsg = err.Error()
		m.mu.Unlock()
		return
	}
	if res.Type != store.ResultOrder || res.Order == nil {
		m.state = StateError
		m.errMsg = res.Err
		if m.errMsg == "" {
			m.errMsg = "order could not be placed"
		}
		m.mu.Unlock()
		return
	}

	order := res.Order
	m.state = StateDone
	m.confirmationPath = "/order-confirmation/" + order.ID
	m.mu.Unlock()

	slog.Info("order placed", "cart_id", cartID, "order_id", order.ID)

	// Fire and forget: a failed notification never takes the machine out
	// of done.
	go func() {
		ok := m.notifier.NotifyOrderPlaced(context.WithoutCancel(ctx), order)
		if !ok {
			slog.Error("order placed but all notification channels failed", "order_id", order.ID)
		}
		select {
		case m.notified <- ok:
		default:
		}
	}()
}

func (m *Machine) onTimeout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAwaitingConfirmation {
		return
	}
	m.state = StateError
	m.errMsg = timedOutMessage
}

// Reset returns an errored checkout to idle so the user can retry. It is a
// no-op in any state that is not error.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateError {
		return
	}
	m.stopTimer()
	m.state = StateIdle
	m.errMsg = ""
}

func (m *Machine) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errMsg
}

// ConfirmationPath is the route the storefront navigates to after done.
func (m *Machine) ConfirmationPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.confirmationPath
}

func (m *Machine) Session() *types.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Processing reports whether the checkout is mid-flight, derived from the
// state tag.
func (m *Machine) Processing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateInitializing, StateAwaitingConfirmation, StatePlacingOrder:
		return true
	}
	return false
}

// Notified exposes the notification outcome channel for callers that need
// to observe the fire-and-forget dispatch.
func (m *Machine) Notified() <-chan bool {
	return m.notified
}
