package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRef(t *testing.T) {
	tests := []struct {
		id   string
		kind RefKind
	}{
		{"order_abc123", RefOrder},
		{"pay_xyz789", RefPayment},
		{"pi_stripe_intent", RefPayment},
		{"manual_0001", RefPayment},
		{"", RefPayment},
	}

	for _, tt := range tests {
		ref := ClassifyRef(tt.id)
		assert.Equal(t, tt.kind, ref.Kind, "id %q", tt.id)
		assert.Equal(t, tt.id, ref.ID)
	}
}
