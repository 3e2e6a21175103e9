// Package checkout drives a cart from a confirmed payment to a placed
// order: provider selection, the per-cart checkout state machine and the
// order placement call.
package checkout

import (
	"errors"
	"sync"

	"storefront-payments/internal/services/payments/types"
	"storefront-payments/internal/store"
)

var ErrProviderNotEnabled = errors.New("payment provider not enabled for this region")

// Selector tracks which enabled payment provider a cart is checking out
// with. It never calls a vendor.
type Selector struct {
	mu       sync.Mutex
	enabled  []string
	selected string
}

// NewSelector defaults the selection to the provider of the cart's pending
// session when that provider is enabled, otherwise to the first enabled
// provider.
func NewSelector(cart *store.Cart, enabled []string) *Selector {
	s := &Selector{enabled: enabled}

	for _, id := range enabled {
		if cart != nil && cart.PendingSession(id) != nil {
			s.selected = id
			return s
		}
	}
	if len(enabled) > 0 {
		s.selected = enabled[0]
	}
	return s
}

func (s *Selector) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

func (s *Selector) Enabled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.enabled))
	copy(out, s.enabled)
	return out
}

func (s *Selector) Select(providerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.enabled {
		if id == providerID {
			s.selected = providerID
			return nil
		}
	}
	return ErrProviderNotEnabled
}

// Refresh replaces the enabled list. A selection that is no longer enabled
// is reset to the first enabled provider.
func (s *Selector) Refresh(enabled []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enabled = enabled
	for _, id := range enabled {
		if id == s.selected {
			return
		}
	}
	s.selected = ""
	if len(enabled) > 0 {
		s.selected = enabled[0]
	}
}

// Session returns the cart's pending session for the selected provider,
// or nil when none exists yet.
func (s *Selector) Session(cart *store.Cart) *types.Session {
	s.mu.Lock()
	selected := s.selected
	s.mu.Unlock()

	if cart == nil || selected == "" {
		return nil
	}
	return cart.PendingSession(selected)
}
