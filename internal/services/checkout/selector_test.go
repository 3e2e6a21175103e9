package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-payments/internal/services/payments/types"
	"storefront-payments/internal/store"
)

func cartWithPendingSession(providerID string) *store.Cart {
	return &store.Cart{
		ID: "cart_1",
		Sessions: []types.Session{
			{ID: "sess_1", ProviderID: providerID, Status: types.StatusPending},
		},
	}
}

func TestSelectorDefaultsToPendingSessionProvider(t *testing.T) {
	cart := cartWithPendingSession("stripe")
	s := NewSelector(cart, []string{"razorpay", "stripe", "manual"})

	assert.Equal(t, "stripe", s.Selected())

	sess := s.Session(cart)
	require.NotNil(t, sess)
	assert.Equal(t, "sess_1", sess.ID)
}

func TestSelectorDefaultsToFirstEnabled(t *testing.T) {
	s := NewSelector(&store.Cart{ID: "cart_1"}, []string{"razorpay", "manual"})
	assert.Equal(t, "razorpay", s.Selected())
}

func TestSelectorIgnoresNonPendingSessions(t *testing.T) {
	cart := &store.Cart{
		ID: "cart_1",
		Sessions: []types.Session{
			{ID: "sess_1", ProviderID: "stripe", Status: types.StatusCaptured},
		},
	}
	s := NewSelector(cart, []string{"razorpay", "stripe"})

	assert.Equal(t, "razorpay", s.Selected())
	assert.Nil(t, s.Session(cart))
}

func TestSelectorRejectsDisabledProvider(t *testing.T) {
	s := NewSelector(&store.Cart{ID: "cart_1"}, []string{"razorpay"})

	err := s.Select("stripe")
	assert.ErrorIs(t, err, ErrProviderNotEnabled)
	assert.Equal(t, "razorpay", s.Selected())
}

func TestSelectorRefreshResetsRemovedSelection(t *testing.T) {
	s := NewSelector(&store.Cart{ID: "cart_1"}, []string{"razorpay", "stripe"})
	require.NoError(t, s.Select("stripe"))

	s.Refresh([]string{"razorpay", "manual"})
	assert.Equal(t, "razorpay", s.Selected())

	s.Refresh(nil)
	assert.Empty(t, s.Selected())
}
