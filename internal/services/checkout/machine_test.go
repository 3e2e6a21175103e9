package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"storefront-payments/internal/services/payments/types"
	"storefront-payments/internal/store"
)

type fakeCompleter struct {
	mu    sync.Mutex
	calls int
	res   *store.CompleteResult
	err   error
}

func (f *fakeCompleter) CompleteCart(ctx context.Context, cartID string) (*store.CompleteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNotifier struct {
	ok   bool
	sent chan string
}

func (f *fakeNotifier) NotifyOrderPlaced(ctx context.Context, order *store.Order) bool {
	f.sent <- order.ID
	return f.ok
}

type MachineTestSuite struct {
	suite.Suite
	completer   *fakeCompleter
	notifier    *fakeNotifier
	carts       *store.CartStore
	coordinator *Coordinator
	machine     *Machine
	cart        *store.Cart
	session     *types.Session
}

func (s *MachineTestSuite) SetupTest() {
	s.completer = &fakeCompleter{
		res: &store.CompleteResult{
			Type:  store.ResultOrder,
			Order: &store.Order{ID: "ord_1", Email: "dasha@example.com", Total: 499.5, CurrencyCode: "inr"},
		},
	}
	s.notifier = &fakeNotifier{ok: true, sent: make(chan string, 1)}
	s.carts = store.NewCartStore()
	s.coordinator = NewCoordinator(s.completer, s.carts)
	s.machine = NewMachine(s.coordinator, s.notifier, 50*time.Millisecond)

	s.cart = &store.Cart{
		ID:              "cart_1",
		Email:           "dasha@example.com",
		CurrencyCode:    "inr",
		Total:           499.5,
		ShippingAddress: &store.Address{Address1: "1 Main St", Phone: "+911234567890"},
		BillingAddress:  &store.Address{Address1: "1 Main St"},
		ShippingMethods: []store.ShippingMethod{{ID: "sm_1", Name: "standard"}},
	}
	s.session = &types.Session{
		ID:         "order_rzp1",
		ProviderID: "razorpay",
		Status:     types.StatusPending,
		Amount:     499.5,
		Currency:   "inr",
	}
	s.carts.Put(s.cart)
}

func (s *MachineTestSuite) authorized() VendorEvent {
	return VendorEvent{Type: VendorAuthorized, Ref: types.ClassifyRef("pay_1")}
}

func (s *MachineTestSuite) TestAuthorizedEventPlacesOrder() {
	s.Require().NoError(s.machine.Start(s.cart, s.session))
	s.Equal(StateAwaitingConfirmation, s.machine.State())

	s.machine.HandleVendorEvent(context.Background(), s.authorized())

	s.Equal(StateDone, s.machine.State())
	s.Equal("/order-confirmation/ord_1", s.machine.ConfirmationPath())
	s.Equal(1, s.completer.callCount())

	select {
	case orderID := <-s.notifier.sent:
		s.Equal("ord_1", orderID)
	case <-time.After(time.Second):
		s.Fail("notification was never dispatched")
	}

	_, held := s.carts.Get("cart_1")
	s.False(held, "cart reference must be cleared after order placement")
}

func (s *MachineTestSuite) TestDuplicateAuthorizedEventsPlaceOneOrder() {
	s.Require().NoError(s.machine.Start(s.cart, s.session))

	for i := 0; i < 3; i++ {
		s.machine.HandleVendorEvent(context.Background(), s.authorized())
	}

	s.Equal(StateDone, s.machine.State())
	s.Equal(1, s.completer.callCount())
}

func (s *MachineTestSuite) TestVendorFailureSurfacesMessageVerbatim() {
	s.Require().NoError(s.machine.Start(s.cart, s.session))

	s.machine.HandleVendorEvent(context.Background(), VendorEvent{
		Type:    VendorFailed,
		Message: "Your card was declined by the issuing bank.",
	})

	s.Equal(StateError, s.machine.State())
	s.Equal("Your card was declined by the issuing bank.", s.machine.Err())
	s.Equal(0, s.completer.callCount())

	s.machine.Reset()
	s.Equal(StateIdle, s.machine.State())
	s.Empty(s.machine.Err())
}

func (s *MachineTestSuite) TestDismissalWithoutMessage() {
	s.Require().NoError(s.machine.Start(s.cart, s.session))

	s.machine.HandleVendorEvent(context.Background(), VendorEvent{Type: VendorDismissed})

	s.Equal(StateError, s.machine.State())
	s.NotEmpty(s.machine.Err())
}

func (s *MachineTestSuite) TestPlacementCartErrorKeepsCart() {
	s.completer.res = &store.CompleteResult{
		Type: store.ResultCart,
		Cart: s.cart,
		Err:  "some items are out of stock",
	}

	s.Require().NoError(s.machine.Start(s.cart, s.session))
	s.machine.HandleVendorEvent(context.Background(), s.authorized())

	s.Equal(StateError, s.machine.State())
	s.Equal("some items are out of stock", s.machine.Err())

	_, held := s.carts.Get("cart_1")
	s.True(held, "cart must remain usable for retry")
}

func (s *MachineTestSuite) TestPlacementTransportErrorAllowsRetry() {
	s.completer.err = errors.New("connection refused")

	s.Require().NoError(s.machine.Start(s.cart, s.session))
	s.machine.HandleVendorEvent(context.Background(), s.authorized())

	s.Equal(StateError, s.machine.State())
	s.NotEmpty(s.machine.Err())

	_, held := s.carts.Get("cart_1")
	s.True(held)

	// Retry succeeds once the backend recovers.
	s.completer.err = nil
	s.machine.Reset()
	s.Require().NoError(s.machine.Start(s.cart, s.session))
	s.machine.HandleVendorEvent(context.Background(), s.authorized())
	s.Equal(StateDone, s.machine.State())
}

func (s *MachineTestSuite) TestTimeoutThenLateCallbackIsIgnored() {
	s.Require().NoError(s.machine.Start(s.cart, s.session))

	s.Require().Eventually(func() bool {
		return s.machine.State() == StateError
	}, time.Second, 5*time.Millisecond)
	s.Equal("payment timed out", s.machine.Err())

	// The vendor answering after the deadline changes nothing.
	s.machine.HandleVendorEvent(context.Background(), s.authorized())

	s.Equal(StateError, s.machine.State())
	s.Equal(0, s.completer.callCount())
}

func (s *MachineTestSuite) TestNotReadyCartIsRefused() {
	s.cart.Email = ""

	err := s.machine.Start(s.cart, s.session)
	s.Require().ErrorIs(err, ErrCartNotReady)
	s.Equal(StateIdle, s.machine.State())
}

func (s *MachineTestSuite) TestStartTwiceIsRefused() {
	s.Require().NoError(s.machine.Start(s.cart, s.session))

	err := s.machine.Start(s.cart, s.session)
	s.Require().ErrorIs(err, ErrCheckoutInProgress)
}

func (s *MachineTestSuite) TestNotificationFailureDoesNotRevertDone() {
	s.notifier.ok = false

	s.Require().NoError(s.machine.Start(s.cart, s.session))
	s.machine.HandleVendorEvent(context.Background(), s.authorized())

	select {
	case ok := <-s.machine.Notified():
		s.False(ok)
	case <-time.After(time.Second):
		s.Fail("notification outcome never reported")
	}

	s.Equal(StateDone, s.machine.State())
	s.Equal("/order-confirmation/ord_1", s.machine.ConfirmationPath())
}

func TestMachineTestSuite(t *testing.T) {
	suite.Run(t, new(MachineTestSuite))
}
