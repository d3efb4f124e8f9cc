package valueobjects

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		parts    int
		expected []float64
	}{
		{
			name:     "even split",
			amount:   900,
			parts:    3,
			expected: []float64{300, 300, 300},
		},
		{
			name:     "uneven split distributes leftover paisa",
			amount:   100,
			parts:    3,
			expected: []float64{33.34, 33.33, 33.33},
		},
		{
			name:     "single part",
			amount:   57.25,
			parts:    1,
			expected: []float64{57.25},
		},
		{
			name:     "zero amount",
			amount:   0,
			parts:    4,
			expected: []float64{0, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := NewFromFloat(tt.amount).Split(tt.parts)
			require.NoError(t, err)
			require.Len(t, parts, tt.parts)

			sum := Zero()
			for i, p := range parts {
				assert.InDelta(t, tt.expected[i], p.Float64(), 0.001)
				sum = sum.Add(p)
			}
			assert.True(t, sum.Equals(NewFromFloat(tt.amount)),
				"parts must sum back to the original amount, got %s", sum)
		})
	}
}

func TestSplitInvalidParts(t *testing.T) {
	_, err := NewFromFloat(100).Split(0)
	assert.Error(t, err)

	_, err = NewFromFloat(100).Split(-2)
	assert.Error(t, err)
}

func TestDivByZero(t *testing.T) {
	rate := NewFromFloat(227.5).DivBy(decimal.Zero)
	assert.True(t, rate.IsZero())
}

func TestWithinTaka(t *testing.T) {
	total := NewFromFloat(900)

	assert.True(t, NewFromFloat(900.99).WithinTaka(total))
	assert.True(t, NewFromFloat(899.01).WithinTaka(total))
	assert.False(t, NewFromFloat(901.01).WithinTaka(total))
	assert.False(t, NewFromFloat(898.50).WithinTaka(total))
}

func TestWithinPaisa(t *testing.T) {
	share := NewFromFloat(33.33)

	assert.True(t, NewFromFloat(33.34).WithinPaisa(share))
	assert.False(t, NewFromFloat(33.35).WithinPaisa(share))
}

func TestSignedArithmetic(t *testing.T) {
	// Refund-or-due balances are signed: deposits minus meal cost.
	refund := NewFromFloat(1500).Sub(NewFromFloat(1200))
	assert.True(t, refund.IsPositive())
	assert.InDelta(t, 300, refund.Float64(), 0.001)

	due := NewFromFloat(800).Sub(NewFromFloat(1200))
	assert.True(t, due.IsNegative())
	assert.InDelta(t, -400, due.Float64(), 0.001)
}

func TestNewFromString(t *testing.T) {
	m, err := NewFromString("227.50")
	require.NoError(t, err)
	assert.InDelta(t, 227.5, m.Float64(), 0.001)

	_, err = NewFromString("not-a-number")
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	assert.Equal(t, "৳300.00", NewFromFloat(300).String())
	assert.Equal(t, "৳-45.50", NewFromFloat(-45.5).String())
}

func TestSum(t *testing.T) {
	total := Sum([]float64{100.10, 200.20, 300.30})
	assert.InDelta(t, 600.60, total.Float64(), 0.001)

	assert.True(t, Sum(nil).IsZero())
}
