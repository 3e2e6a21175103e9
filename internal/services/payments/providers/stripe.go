package providers

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/refund"

	"storefront-payments/internal/services/payments/types"
)

const StripeProviderID = "stripe"

var stripeStatuses = map[string]types.SessionStatus{
	"requires_payment_method": types.StatusPending,
	"requires_confirmation":   types.StatusPending,
	"requires_action":         types.StatusPending,
	"processing":              types.StatusPending,
	"requires_capture":        types.StatusAuthorized,
	"succeeded":               types.StatusCaptured,
	"canceled":                types.StatusCanceled,
}

type StripeProvider struct{}

func NewStripeProvider(secretKey string) *StripeProvider {
	if secretKey == "" {
		panic("secretKey required for StripeProvider")
	}
	stripe.Key = secretKey

	return &StripeProvider{}
}

func (p *StripeProvider) ID() string { return StripeProviderID }

func (p *StripeProvider) CreateSession(ctx context.Context, amount float64, currency, reference string) (*types.Session, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(ToMinor(amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"cart_id": reference,
		},
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating payment intent: %w", err)
	}

	sess := p.sessionFromIntent(pi)
	sess.Data["client_secret"] = pi.ClientSecret
	return sess, nil
}

func (p *StripeProvider) FetchSession(ctx context.Context, ref types.PaymentRef) (*types.Session, error) {
	pi, err := paymentintent.Get(ref.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching payment intent %s: %w", ref.ID, err)
	}

	return p.sessionFromIntent(pi), nil
}

func (p *StripeProvider) Capture(ctx context.Context, ref types.PaymentRef) (*types.Session, error) {
	pi, err := paymentintent.Capture(ref.ID, &stripe.PaymentIntentCaptureParams{})
	if err != nil {
		return nil, fmt.Errorf("capturing payment intent %s: %w", ref.ID, err)
	}

	return p.sessionFromIntent(pi), nil
}

func (p *StripeProvider) Refund(ctx context.Context, ref types.PaymentRef, amount float64) (*types.Session, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(ref.ID),
	}
	if amount > 0 {
		params.Amount = stripe.Int64(ToMinor(amount))
	}

	if _, err := refund.New(params); err != nil {
		return nil, fmt.Errorf("refunding payment intent %s: %w", ref.ID, err)
	}

	return p.FetchSession(ctx, ref)
}

func (p *StripeProvider) sessionFromIntent(pi *stripe.PaymentIntent) *types.Session {
	return &types.Session{
		ID:         pi.ID,
		ProviderID: StripeProviderID,
		Status:     mapStatus(stripeStatuses, string(pi.Status)),
		Amount:     FromMinor(pi.Amount),
		Currency:   string(pi.Currency),
		Data: map[string]interface{}{
			"payment_intent_id": pi.ID,
		},
	}
}
