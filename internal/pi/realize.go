package pi

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// PrecisionBits returns the working precision for digits decimal digits:
// ceil(digits × log2 10) + marginBits. marginBits below MinMarginBits is
// raised to it. An error is returned when the result exceeds big.MaxPrec.
func PrecisionBits(digits uint64, marginBits uint) (uint, error) {
	if marginBits < MinMarginBits {
		marginBits = MinMarginBits
	}
	bits := uint64(math.Ceil(float64(digits)*Log2Of10)) + uint64(marginBits)
	if bits > big.MaxPrec {
		return 0, fmt.Errorf("pi: %d digits need %d bits of precision, more than the maximum %d", digits, bits, uint64(big.MaxPrec))
	}
	return uint(bits), nil
}

// newFloat returns a zero big.Float carrying prec bits of precision.
func newFloat(prec uint) *big.Float {
	return new(big.Float).SetPrec(prec).SetMode(big.ToNearestEven)
}

// Realize converts the root triple of the first terms series terms into
// the decimal expansion of π truncated to digits fractional digits. Every
// intermediate value is created with exactly bits of precision.
//
//	π = Q · 426880 · √10005 / T
//
// The scaled value π·10^digits is truncated toward zero, never rounded.
// The result is marked NearBoundary when the discarded fraction lies inside
// BoundaryWindow(digits, terms) of 0 or 1: the truncation could then have
// crossed an integer.
func Realize(t *Triple, digits, terms uint64, bits uint) (*Result, error) {
	scaled, err := scaledPi(t, digits, bits)
	if err != nil {
		return nil, err
	}

	piInt, _ := scaled.Int(nil)
	frac := newFloat(bits).Sub(scaled, newFloat(bits).SetInt(piInt))

	return &Result{
		Digits:       digits,
		Terms:        terms,
		Precision:    bits,
		Scaled:       piInt,
		NearBoundary: nearBoundary(frac, BoundaryWindow(digits, terms)),
		text:         FormatDigits(piInt.String(), digits),
	}, nil
}

// scaledPi returns π·10^digits from the triple, before truncation.
func scaledPi(t *Triple, digits uint64, bits uint) (*big.Float, error) {
	if t == nil || t.T.Sign() == 0 {
		return nil, fmt.Errorf("pi: cannot realize a triple with T = 0")
	}
	if bits == 0 || bits > big.MaxPrec {
		return nil, fmt.Errorf("pi: invalid precision %d", bits)
	}

	radicand := newFloat(bits).SetInt64(chudnovskyRadicand)
	sqrt := newFloat(bits).Sqrt(radicand)

	qScaled := new(big.Int).Mul(t.Q, big.NewInt(chudnovskyScale))
	numerator := newFloat(bits).SetInt(qScaled)
	numerator.Mul(numerator, sqrt)

	denominator := newFloat(bits).SetInt(t.T)

	piValue := newFloat(bits).Quo(numerator, denominator)

	scaleInt := new(big.Int).Exp(big.NewInt(10), new(big.Int).SetUint64(digits), nil)
	scale := newFloat(bits).SetInt(scaleInt)

	return newFloat(bits).Mul(piValue, scale), nil
}

// BoundaryWindow returns the half-width, in units of the last digit, of the
// band around an integer inside which π·10^digits computed from terms
// series terms may truncate to the wrong integer.
//
// The series error after terms terms is below 10^(1 − 14.18·terms)
// relative to π, which bounds the scaled error by
// 10^(digits + 1 − 14.18·terms) last-digit units. The window is never
// narrower than the floating-point guard 2^-192. A window of 0.5 or more
// means no fraction can be trusted.
func BoundaryWindow(digits, terms uint64) float64 {
	exp := float64(digits) + 1 - seriesDigitsPerTerm*float64(terms)
	return math.Max(math.Pow(10, exp), math.Ldexp(1, -boundaryGuardBits))
}

// nearBoundary reports whether frac, in [0, 1), lies within window of 0
// or 1.
func nearBoundary(frac *big.Float, window float64) bool {
	if window >= 0.5 {
		return true
	}
	dist := new(big.Float).SetPrec(frac.Prec()).Sub(big.NewFloat(1), frac)
	if frac.Cmp(dist) < 0 {
		dist.Set(frac)
	}
	d, _ := dist.Float64()
	return d < window
}

// FormatDigits renders the decimal string of π·10^digits as "3.<digits>",
// left-padding with zeros to digits+1 characters when s is shorter.
func FormatDigits(s string, digits uint64) string {
	width := int(digits) + 1
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	var b strings.Builder
	b.Grow(width + 1)
	b.WriteString(s[:1])
	b.WriteByte('.')
	b.WriteString(s[1:width])
	return b.String()
}
