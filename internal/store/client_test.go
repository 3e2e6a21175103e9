package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestUpdateCart(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/store/carts/cart_1", r.URL.Path)

		var upd CartUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&upd))
		assert.Equal(t, "dasha@example.com", upd.Email)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"cart": Cart{ID: "cart_1", Email: upd.Email},
		})
	})

	cart, err := client.UpdateCart(context.Background(), "cart_1", CartUpdate{
		Email:          "dasha@example.com",
		BillingAddress: &Address{Address1: "1 Main St"},
	})
	require.NoError(t, err)
	assert.Equal(t, "dasha@example.com", cart.Email)
}

func TestCompleteCartOrderResult(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/store/carts/cart_1/complete", r.URL.Path)
		json.NewEncoder(w).Encode(CompleteResult{
			Type:  ResultOrder,
			Order: &Order{ID: "ord_1", Status: "pending", Total: 100},
		})
	})

	res, err := client.CompleteCart(context.Background(), "cart_1")
	require.NoError(t, err)
	assert.Equal(t, ResultOrder, res.Type)
	require.NotNil(t, res.Order)
	assert.Equal(t, "ord_1", res.Order.ID)
}

func TestCompleteCartCartResult(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(CompleteResult{
			Type: ResultCart,
			Cart: &Cart{ID: "cart_1"},
			Err:  "payment session not authorized",
		})
	})

	res, err := client.CompleteCart(context.Background(), "cart_1")
	require.NoError(t, err)
	assert.Equal(t, ResultCart, res.Type)
	assert.Equal(t, "payment session not authorized", res.Err)
	assert.Nil(t, res.Order)
}

func TestOrderOperations(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/store/orders/ord_1":
			json.NewEncoder(w).Encode(map[string]interface{}{"order": Order{ID: "ord_1"}})
		case r.Method == http.MethodGet && r.URL.Path == "/store/orders":
			json.NewEncoder(w).Encode(map[string]interface{}{"orders": []Order{{ID: "ord_1"}, {ID: "ord_2"}}})
		case r.Method == http.MethodPost && r.URL.Path == "/store/orders/ord_1":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(map[string]interface{}{"order": Order{ID: "ord_1", Status: body["status"]}})
		case r.Method == http.MethodPost && r.URL.Path == "/store/orders/ord_1/cancel":
			json.NewEncoder(w).Encode(map[string]interface{}{"order": Order{ID: "ord_1", Status: "canceled"}})
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()

	order, err := client.RetrieveOrder(ctx, "ord_1")
	require.NoError(t, err)
	assert.Equal(t, "ord_1", order.ID)

	orders, err := client.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	updated, err := client.UpdateOrder(ctx, "ord_1", "completed")
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)

	canceled, err := client.CancelOrder(ctx, "ord_1")
	require.NoError(t, err)
	assert.Equal(t, "canceled", canceled.Status)
}

func TestBackendErrorMessageSurfaced(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "cart already completed"})
	})

	_, err := client.CompleteCart(context.Background(), "cart_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart already completed")
}

func TestCartReadiness(t *testing.T) {
	cart := &Cart{
		ID:              "cart_1",
		Email:           "dasha@example.com",
		ShippingAddress: &Address{},
		BillingAddress:  &Address{},
		ShippingMethods: []ShippingMethod{{ID: "sm_1"}},
	}
	assert.True(t, cart.Ready())

	for _, breakIt := range []func(c *Cart){
		func(c *Cart) { c.Email = "" },
		func(c *Cart) { c.ShippingAddress = nil },
		func(c *Cart) { c.BillingAddress = nil },
		func(c *Cart) { c.ShippingMethods = nil },
	} {
		broken := *cart
		breakIt(&broken)
		assert.False(t, broken.Ready())
	}
}
