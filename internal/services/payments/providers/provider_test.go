package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront-payments/internal/services/payments/types"
)

func TestMapStatusDefaultsToPending(t *testing.T) {
	tables := map[string]map[string]types.SessionStatus{
		"razorpay": razorpayStatuses,
		"stripe":   stripeStatuses,
		"paypal":   paypalStatuses,
	}

	for name, table := range tables {
		assert.Equal(t, types.StatusPending, mapStatus(table, "definitely_not_a_vendor_status"), "table %s", name)
		assert.Equal(t, types.StatusPending, mapStatus(table, ""), "table %s", name)
	}
}

func TestMapStatusKnownValues(t *testing.T) {
	assert.Equal(t, types.StatusCaptured, mapStatus(razorpayStatuses, "captured"))
	assert.Equal(t, types.StatusAuthorized, mapStatus(razorpayStatuses, "authorized"))
	assert.Equal(t, types.StatusError, mapStatus(razorpayStatuses, "failed"))
	assert.Equal(t, types.StatusAuthorized, mapStatus(stripeStatuses, "requires_capture"))
	assert.Equal(t, types.StatusCaptured, mapStatus(stripeStatuses, "succeeded"))
	assert.Equal(t, types.StatusCaptured, mapStatus(paypalStatuses, "COMPLETED"))
}

func TestMinorUnitRoundTrip(t *testing.T) {
	// Every integer minor-unit amount must survive the major-unit round trip.
	for _, minor := range []int64{0, 1, 49, 50, 99, 100, 12345, 999999, 10000001} {
		assert.Equal(t, minor, ToMinor(FromMinor(minor)), "minor %d", minor)
	}

	assert.Equal(t, int64(1234), ToMinor(12.34))
	assert.Equal(t, 12.34, FromMinor(1234))
}
