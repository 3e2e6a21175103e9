package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"storefront-payments/internal/services/payments/types"
)

const ManualProviderID = "manual"

// ManualProvider is the no-vendor provider used for cash-on-delivery style
// checkouts and for end-to-end testing. Sessions live in memory only.
//
// With testMode enabled, fetching an unknown session synthesizes a captured
// result instead of failing. That mirrors the development convenience of the
// storefront's test button and must stay off in production.
type ManualProvider struct {
	testMode bool

	mu       sync.RWMutex
	sessions map[string]*types.Session
}

func NewManualProvider(testMode bool) *ManualProvider {
	return &ManualProvider{
		testMode: testMode,
		sessions: make(map[string]*types.Session),
	}
}

func (p *ManualProvider) ID() string { return ManualProviderID }

func (p *ManualProvider) CreateSession(ctx context.Context, amount float64, currency, reference string) (*types.Session, error) {
	sess := &types.Session{
		ID:         "manual_" + uuid.NewString(),
		ProviderID: ManualProviderID,
		Status:     types.StatusPending,
		Amount:     amount,
		Currency:   currency,
		Data: map[string]interface{}{
			"cart_id": reference,
		},
	}

	p.mu.Lock()
	p.sessions[sess.ID] = sess
	p.mu.Unlock()

	return sess, nil
}

func (p *ManualProvider) FetchSession(ctx context.Context, ref types.PaymentRef) (*types.Session, error) {
	p.mu.RLock()
	sess, ok := p.sessions[ref.ID]
	p.mu.RUnlock()

	if !ok {
		if p.testMode {
			// Test mode only: assume the payment went through.
			return &types.Session{
				ID:         ref.ID,
				ProviderID: ManualProviderID,
				Status:     types.StatusCaptured,
			}, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, ref.ID)
	}

	copied := *sess
	return &copied, nil
}

func (p *ManualProvider) Capture(ctx context.Context, ref types.PaymentRef) (*types.Session, error) {
	return p.setStatus(ref, types.StatusCaptured)
}

func (p *ManualProvider) Refund(ctx context.Context, ref types.PaymentRef, amount float64) (*types.Session, error) {
	return p.setStatus(ref, types.StatusCanceled)
}

func (p *ManualProvider) setStatus(ref types.PaymentRef, status types.SessionStatus) (*types.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sess, ok := p.sessions[ref.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, ref.ID)
	}

	sess.Status = status
	copied := *sess
	return &copied, nil
}
