package checkout

import (
	"context"
	"fmt"

	"storefront-payments/internal/store"
)

// CartCompleter is the slice of the store client the coordinator needs.
type CartCompleter interface {
	CompleteCart(ctx context.Context, cartID string) (*store.CompleteResult, error)
}

// Coordinator converts a paid cart into an order. It calls the completion
// endpoint exactly once per invocation and does no retrying or deduping of
// its own; at-most-once per payment confirmation is the machine's job.
type Coordinator struct {
	backend CartCompleter
	carts   *store.CartStore
}

func NewCoordinator(backend CartCompleter, carts *store.CartStore) *Coordinator {
	return &Coordinator{backend: backend, carts: carts}
}

// PlaceOrder completes the cart. On an order result the held cart
// reference is cleared; on a cart-with-error result it is left in place so
// the user can retry.
func (c *Coordinator) PlaceOrder(ctx context.Context, cartID string) (*store.CompleteResult, error) {
	res, err := c.backend.CompleteCart(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("placing order for cart %s: %w", cartID, err)
	}

	if res.Type == store.ResultOrder && res.Order != nil {
		c.carts.Clear(cartID)
	}

	return res, nil
}
