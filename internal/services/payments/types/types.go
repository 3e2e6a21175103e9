// Package types holds the shared payment data shapes exchanged between
// providers, the checkout flow and the HTTP layer.
package types

import "strings"

// SessionStatus is the normalized payment status every vendor status
// string is mapped into.
type SessionStatus string

const (
	StatusPending    SessionStatus = "pending"
	StatusAuthorized SessionStatus = "authorized"
	StatusCaptured   SessionStatus = "captured"
	StatusError      SessionStatus = "error"
	StatusCanceled   SessionStatus = "canceled"
)

// Session is the common envelope a provider returns for every operation.
// Amount is in major currency units; Data is the provider-opaque blob only
// the matching provider (and its client widget) interprets.
type Session struct {
	ID         string                 `json:"id"`
	ProviderID string                 `json:"provider_id"`
	Status     SessionStatus          `json:"status"`
	Amount     float64                `json:"amount"`
	Currency   string                 `json:"currency"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// RefKind distinguishes vendor order identifiers from vendor payment
// identifiers.
type RefKind string

const (
	RefOrder   RefKind = "order"
	RefPayment RefKind = "payment"
)

// PaymentRef is a tagged vendor identifier. The kind is decided once, at
// the point the ID enters the system, instead of being re-inferred by
// string inspection at every call site.
type PaymentRef struct {
	Kind RefKind `json:"kind"`
	ID   string  `json:"id"`
}

// ClassifyRef tags a bare vendor identifier. Upstream delivers both order
// and payment IDs to the same call sites; the "order_" prefix is the only
// discriminator the vendor gives us, so it is applied here and nowhere else.
func ClassifyRef(id string) PaymentRef {
	if strings.HasPrefix(id, "order_") {
		return PaymentRef{Kind: RefOrder, ID: id}
	}
	return PaymentRef{Kind: RefPayment, ID: id}
}

// CreateSessionRequest is the HTTP body for creating a payment session.
type CreateSessionRequest struct {
	ProviderID string `json:"provider_id"`
}

// RefundRequest is the HTTP body for refunding a payment. A zero amount
// means a full refund.
type RefundRequest struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
}
