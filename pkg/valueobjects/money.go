// pkg/valueobjects/money.go
package valueobjects

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a Taka (BDT) amount. BillKhata rooms settle in a single
// currency, so no currency code is carried; negative amounts are allowed
// because refund-or-due balances are signed.
type Money struct {
	amount decimal.Decimal
}

// Epsilons used for comparing amounts that originated as floating-point
// user input or persisted shares.
var (
	// TakaEpsilon is the tolerance for custom-split validation: a custom
	// split must sum to the bill total within one Taka.
	TakaEpsilon = decimal.NewFromInt(1)
	// PaisaEpsilon is the tolerance for classifying persisted shares as an
	// equal split.
	PaisaEpsilon = decimal.NewFromFloat(0.01)
)

// Zero is the zero Taka amount.
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// NewFromFloat creates a Money from a float64 amount as received from the API.
func NewFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount)}
}

// NewFromDecimal wraps a decimal amount.
func NewFromDecimal(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// NewFromString creates a Money from a string representation.
func NewFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount format: %w", err)
	}
	return Money{amount: d}, nil
}

// Amount returns the underlying decimal amount at full precision.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Float64 returns the amount as a float64, rounded to 2 decimal places.
func (m Money) Float64() float64 {
	f, _ := m.amount.Round(2).Float64()
	return f
}

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Mul multiplies the amount by a decimal factor (e.g. meal count x meal rate).
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor)}
}

// DivBy divides the amount by a decimal divisor. Returns zero when the
// divisor is zero; derived rates are defaulted, never NaN or infinite.
func (m Money) DivBy(divisor decimal.Decimal) Money {
	if divisor.IsZero() {
		return Zero()
	}
	return Money{amount: m.amount.Div(divisor)}
}

// Split divides money into n equal parts, distributing leftover paisa so the
// parts always sum back to the original amount.
func (m Money) Split(n int) ([]Money, error) {
	if n <= 0 {
		return nil, fmt.Errorf("number of parts must be positive")
	}

	// Work in paisa to avoid floating-point issues.
	total := m.amount.Mul(decimal.NewFromInt(100))
	base := total.Div(decimal.NewFromInt(int64(n))).Floor()
	remainder := total.Sub(base.Mul(decimal.NewFromInt(int64(n))))

	result := make([]Money, n)
	for i := 0; i < n; i++ {
		part := base
		if remainder.GreaterThan(decimal.Zero) {
			part = part.Add(decimal.NewFromInt(1))
			remainder = remainder.Sub(decimal.NewFromInt(1))
		}
		result[i] = Money{amount: part.Div(decimal.NewFromInt(100)).Round(2)}
	}

	return result, nil
}

// WithinTaka reports whether two amounts agree within one Taka.
func (m Money) WithinTaka(other Money) bool {
	return m.amount.Sub(other.amount).Abs().LessThanOrEqual(TakaEpsilon)
}

// WithinPaisa reports whether two amounts agree within 0.01.
func (m Money) WithinPaisa(other Money) bool {
	return m.amount.Sub(other.amount).Abs().LessThanOrEqual(PaisaEpsilon)
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.amount.GreaterThan(decimal.Zero)
}

func (m Money) IsNegative() bool {
	return m.amount.LessThan(decimal.Zero)
}

func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// String returns a display representation, e.g. "৳300.00".
func (m Money) String() string {
	return "৳" + m.amount.Round(2).StringFixed(2)
}

// Sum folds a slice of float64 amounts into a Money total.
func Sum(amounts []float64) Money {
	total := Zero()
	for _, a := range amounts {
		total = total.Add(NewFromFloat(a))
	}
	return total
}
