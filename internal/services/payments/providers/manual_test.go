package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-payments/internal/services/payments/types"
)

func TestManualProviderLifecycle(t *testing.T) {
	p := NewManualProvider(false)
	ctx := context.Background()

	sess, err := p.CreateSession(ctx, 100, "EUR", "cart_1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, sess.Status)
	assert.Equal(t, "cart_1", sess.Data["cart_id"])

	ref := types.ClassifyRef(sess.ID)
	assert.Equal(t, types.RefPayment, ref.Kind)

	captured, err := p.Capture(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCaptured, captured.Status)

	refunded, err := p.Refund(ctx, ref, 0)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCanceled, refunded.Status)
}

func TestManualProviderUnknownSession(t *testing.T) {
	p := NewManualProvider(false)

	_, err := p.FetchSession(context.Background(), types.ClassifyRef("manual_missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManualProviderTestModeAssumesSuccess(t *testing.T) {
	p := NewManualProvider(true)

	sess, err := p.FetchSession(context.Background(), types.ClassifyRef("manual_missing"))
	require.NoError(t, err)
	assert.Equal(t, types.StatusCaptured, sess.Status)
}
