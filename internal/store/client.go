package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client calls the commerce backend's storefront API.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// UpdateCart sets email and addresses on a cart.
func (c *Client) UpdateCart(ctx context.Context, cartID string, upd CartUpdate) (*Cart, error) {
	var env struct {
		Cart *Cart `json:"cart"`
	}
	if err := c.do(ctx, http.MethodPost, "/store/carts/"+cartID, upd, &env); err != nil {
		return nil, fmt.Errorf("updating cart %s: %w", cartID, err)
	}
	return env.Cart, nil
}

// CompleteCart asks the backend to turn a paid cart into an order. The
// backend owns idempotency; this call is made at most once per confirmed
// payment by the checkout machine.
func (c *Client) CompleteCart(ctx context.Context, cartID string) (*CompleteResult, error) {
	var res CompleteResult
	if err := c.do(ctx, http.MethodPost, "/store/carts/"+cartID+"/complete", nil, &res); err != nil {
		return nil, fmt.Errorf("completing cart %s: %w", cartID, err)
	}
	return &res, nil
}

func (c *Client) RetrieveOrder(ctx context.Context, orderID string) (*Order, error) {
	var env struct {
		Order *Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, "/store/orders/"+orderID, nil, &env); err != nil {
		return nil, fmt.Errorf("retrieving order %s: %w", orderID, err)
	}
	return env.Order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var env struct {
		Orders []Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/store/orders", nil, &env); err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return env.Orders, nil
}

func (c *Client) UpdateOrder(ctx context.Context, orderID, status string) (*Order, error) {
	body := map[string]string{"status": status}
	var env struct {
		Order *Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/store/orders/"+orderID, body, &env); err != nil {
		return nil, fmt.Errorf("updating order %s: %w", orderID, err)
	}
	return env.Order, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) (*Order, error) {
	var env struct {
		Order *Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/store/orders/"+orderID+"/cancel", nil, &env); err != nil {
		return nil, fmt.Errorf("canceling order %s: %w", orderID, err)
	}
	return env.Order, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		payload = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
