package checkout

import (
	"sync"
	"time"
)

// Registry hands out the live checkout machine and selector for a cart.
// Webhook handlers use it to route vendor events back to the right cart.
type Registry struct {
	coordinator PlaceOrderer
	notifier    Notifier
	timeout     time.Duration

	mu        sync.Mutex
	machines  map[string]*Machine
	selectors map[string]*Selector
}

func NewRegistry(coordinator PlaceOrderer, notifier Notifier, timeout time.Duration) *Registry {
	return &Registry{
		coordinator: coordinator,
		notifier:    notifier,
		timeout:     timeout,
		machines:    make(map[string]*Machine),
		selectors:   make(map[string]*Selector),
	}
}

// Machine returns the cart's machine, creating one on first use.
func (r *Registry) Machine(cartID string) *Machine {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.machines[cartID]
	if !ok {
		m = NewMachine(r.coordinator, r.notifier, r.timeout)
		r.machines[cartID] = m
	}
	return m
}

// Lookup returns the cart's machine without creating one.
func (r *Registry) Lookup(cartID string) (*Machine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.machines[cartID]
	return m, ok
}

// Selector returns the cart's selector, or stores the given one on first
// use.
func (r *Registry) Selector(cartID string, fresh func() *Selector) *Selector {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.selectors[cartID]
	if !ok {
		s = fresh()
		r.selectors[cartID] = s
	}
	return s
}

// Drop forgets a completed cart's machine and selector.
func (r *Registry) Drop(cartID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.machines, cartID)
	delete(r.selectors, cartID)
}
