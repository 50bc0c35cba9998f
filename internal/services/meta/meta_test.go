package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalsOf(t *testing.T) {
	tests := []struct {
		name string
		step string
		want int32
	}{
		{name: "trailing zeros trimmed", step: "0.00001000", want: 5},
		{name: "single fraction digit", step: "0.1", want: 1},
		{name: "integer step", step: "1", want: 0},
		{name: "integer step with zero fraction", step: "1.00", want: 0},
		{name: "tick size", step: "0.01", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decimalsOf(tt.step)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "expected %d decimals for step %s", tt.want, tt.step)
		})
	}
}

func TestDecimalsOf_InvalidStep(t *testing.T) {
	_, err := decimalsOf("not-a-number")
	require.Error(t, err)
}
