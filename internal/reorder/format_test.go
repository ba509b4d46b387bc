package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayRounding(t *testing.T) {
	assert.Equal(t, 17.5, DisplayDemand(17.5))
	assert.Equal(t, 9.3, DisplayDemand(9.285714285714285))
	assert.Equal(t, 1.17, DisplayTrend(1.1666666666666667))
	assert.Equal(t, 4, DisplaySafetyStock(4.265712252415552))
	assert.Equal(t, 3, DisplaySafetyStock(2.5))
}

func TestFormatDE(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		expected string
	}{
		{1234.5, 2, "1.234,50"},
		{17.5, 1, "17,5"},
		{1000, 0, "1.000"},
		{1.2, 2, "1,20"},
		{0.05, 2, "0,05"},
		{-1234567.891, 1, "-1.234.567,9"},
		{-0.001, 2, "0,00"},
		{999, 0, "999"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, FormatDE(tc.v, tc.decimals))
	}
}
