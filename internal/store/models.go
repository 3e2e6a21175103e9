// Package store is the typed client for the commerce backend's storefront
// API: carts, cart completion and orders.
package store

import "storefront-payments/internal/services/payments/types"

type Address struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address1    string `json:"address_1"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone,omitempty"`
}

type ShippingMethod struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type LineItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

type Cart struct {
	ID              string           `json:"id"`
	Email           string           `json:"email"`
	RegionID        string           `json:"region_id"`
	CurrencyCode    string           `json:"currency_code"`
	Total           float64          `json:"total"`
	ShippingAddress *Address         `json:"shipping_address,omitempty"`
	BillingAddress  *Address         `json:"billing_address,omitempty"`
	ShippingMethods []ShippingMethod `json:"shipping_methods,omitempty"`
	Items           []LineItem       `json:"items,omitempty"`
	Sessions        []types.Session  `json:"payment_sessions,omitempty"`
}

// Ready reports whether the cart can enter checkout: both addresses, an
// email and at least one shipping method.
func (c *Cart) Ready() bool {
	return c != nil &&
		c.Email != "" &&
		c.ShippingAddress != nil &&
		c.BillingAddress != nil &&
		len(c.ShippingMethods) > 0
}

// PendingSession returns the cart's pending payment session for the given
// provider, or nil.
func (c *Cart) PendingSession(providerID string) *types.Session {
	for i := range c.Sessions {
		s := &c.Sessions[i]
		if s.ProviderID == providerID && s.Status == types.StatusPending {
			return s
		}
	}
	return nil
}

// CartUpdate carries the fields a checkout flow sets on a cart before
// completion.
type CartUpdate struct {
	Email           string   `json:"email,omitempty"`
	BillingAddress  *Address `json:"billing_address,omitempty"`
	ShippingAddress *Address `json:"shipping_address,omitempty"`
}

type Order struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	PaymentStatus     string     `json:"payment_status"`
	FulfillmentStatus string     `json:"fulfillment_status"`
	Total             float64    `json:"total"`
	CurrencyCode      string     `json:"currency_code"`
	Email             string     `json:"email"`
	ShippingAddress   *Address   `json:"shipping_address,omitempty"`
	BillingAddress    *Address   `json:"billing_address,omitempty"`
	Items             []LineItem `json:"items,omitempty"`
}

// ResultType tags a cart completion outcome.
type ResultType string

const (
	ResultOrder ResultType = "order"
	ResultCart  ResultType = "cart"
)

// CompleteResult is the backend's answer to a cart completion call: either
// the materialized order, or the cart handed back with an error message.
type CompleteResult struct {
	Type  ResultType `json:"type"`
	Order *Order     `json:"order,omitempty"`
	Cart  *Cart      `json:"cart,omitempty"`
	Err   string     `json:"error,omitempty"`
}
