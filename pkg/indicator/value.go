package indicator

import "github.com/shopspring/decimal"

// Value is the result of a single indicator update. It is either a
// present decimal or unavailable (warm-up, out-of-range offset).
// Callers must check Valid before using the decimal; the zero Value
// is unavailable, so "unavailable" can never be mistaken for zero.
type Value struct {
	d     decimal.Decimal
	valid bool
}

// NewValue wraps a decimal in a present Value.
func NewValue(d decimal.Decimal) Value {
	return Value{d: d, valid: true}
}

// Unavailable returns the "no value" marker.
func Unavailable() Value {
	return Value{}
}

// Valid reports whether the value is present.
func (v Value) Valid() bool {
	return v.valid
}

// Decimal returns the underlying decimal and whether it is present.
func (v Value) Decimal() (decimal.Decimal, bool) {
	return v.d, v.valid
}

// MustDecimal returns the underlying decimal, or decimal.Zero if the
// value is unavailable. Intended for display paths that have already
// checked Valid.
func (v Value) MustDecimal() decimal.Decimal {
	return v.d
}

// Equal reports whether two values are both unavailable or both
// present with numerically equal decimals.
func (v Value) Equal(other Value) bool {
	if v.valid != other.valid {
		return false
	}
	if !v.valid {
		return true
	}
	return v.d.Equal(other.d)
}

func (v Value) String() string {
	if !v.valid {
		return "n/a"
	}
	return v.d.String()
}
