package providers

import (
	"context"
	"errors"
	"math"

	"storefront-payments/internal/services/payments/types"
)

var ErrSessionNotFound = errors.New("payment session not found")

// PaymentProvider wraps one payment vendor behind the common session
// envelope. Amounts cross this boundary in major currency units.
type PaymentProvider interface {
	ID() string
	CreateSession(ctx context.Context, amount float64, currency, reference string) (*types.Session, error)
	FetchSession(ctx context.Context, ref types.PaymentRef) (*types.Session, error)
	Capture(ctx context.Context, ref types.PaymentRef) (*types.Session, error)
	Refund(ctx context.Context, ref types.PaymentRef, amount float64) (*types.Session, error)
}

// mapStatus looks a vendor status up in a provider's fixed table. Anything
// the table does not know is pending, never an error.
func mapStatus(table map[string]types.SessionStatus, vendor string) types.SessionStatus {
	if s, ok := table[vendor]; ok {
		return s
	}
	return types.StatusPending
}

// ToMinor converts a major-unit amount to the vendor's minor units.
func ToMinor(major float64) int64 {
	return int64(math.Round(major * 100))
}

// FromMinor converts a vendor minor-unit amount to major units.
func FromMinor(minor int64) float64 {
	return float64(minor) / 100
}
