package pi

import "math/big"

// Result is the outcome of a π calculation.
type Result struct {
	// Digits is the number of fractional digits requested.
	Digits uint64
	// Terms is the number of series terms that were summed.
	Terms uint64
	// Precision is the working precision in bits.
	Precision uint
	// Scaled is floor(π · 10^Digits).
	Scaled *big.Int
	// NearBoundary is set when the truncated digit string could differ
	// from the true expansion by one unit in the last place.
	NearBoundary bool

	text string
}

// String returns "3." followed by exactly Digits fractional digits.
func (r *Result) String() string {
	if r == nil {
		return ""
	}
	if r.text == "" && r.Scaled != nil {
		r.text = FormatDigits(r.Scaled.String(), r.Digits)
	}
	return r.text
}

// FractionalDigits returns the digits after the decimal point.
func (r *Result) FractionalDigits() string {
	s := r.String()
	if len(s) < 2 {
		return ""
	}
	return s[2:]
}

// Equal reports whether two results carry the same digit string.
func (r *Result) Equal(o *Result) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Digits == o.Digits && r.Scaled.Cmp(o.Scaled) == 0
}

func newIntFromDecimal(s string) (*big.Int, bool) {
	return new(big.Int).SetString(s, 10)
}
