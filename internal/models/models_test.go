package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChargeStatus(t *testing.T) {
	for input, want := range map[string]ChargeStatus{
		"PENDING":  StatusPending,
		"pending":  StatusPending,
		"Paid":     StatusPaid,
		"paid":     StatusPaid,
		"CANCELED": StatusCanceled,
		"canceled": StatusCanceled,
		" paid ":   StatusPaid,
	} {
		got, err := ParseChargeStatus(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got)
	}

	for _, input := range []string{"", "REFUNDED", "cancelled", "PENDING_"} {
		_, err := ParseChargeStatus(input)
		assert.Error(t, err, "input %q", input)
	}
}
