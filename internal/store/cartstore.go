package store

import "sync"

// CartStore holds the carts the service is currently checking out. It is
// the server-side stand-in for the client's cart reference: cleared when a
// cart completes, otherwise left alone.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]*Cart)}
}

func (s *CartStore) Get(cartID string) (*Cart, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[cartID]
	return cart, ok
}

func (s *CartStore) Put(cart *Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.ID] = cart
}

func (s *CartStore) Clear(cartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartID)
}
