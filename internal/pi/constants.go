// Package pi computes decimal digits of π with the Chudnovsky series.
package pi

import (
	"math"
	"math/big"
)

// ─────────────────────────────────────────────────────────────────────────────
// Series Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// chudnovskyA is the constant term of the series numerator.
	chudnovskyA = 13591409
	// chudnovskyB is the linear coefficient of the series numerator.
	chudnovskyB = 545140134
	// chudnovskyC3Over24 is 640320³/24.
	chudnovskyC3Over24 = 10939058860032000
	// chudnovskyScale is the integer factor of 426880·√10005 = 640320^(3/2)/12.
	chudnovskyScale = 426880
	// chudnovskyRadicand is the radicand of the irrational factor.
	chudnovskyRadicand = 10005

	// DigitsPerTerm is the number of decimal digits each series term adds
	// (log10(640320³/1728) ≈ 14.18, rounded down).
	DigitsPerTerm = 14

	// seriesDigitsPerTerm is log10(640320³/1728), the exact rate at which
	// the series tail shrinks.
	seriesDigitsPerTerm = 14.181647462725477
)

// ─────────────────────────────────────────────────────────────────────────────
// Precision and Performance Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// Log2Of10 is log2(10), the number of bits per decimal digit.
	Log2Of10 = math.Ln10 / math.Ln2

	// MinMarginBits is the smallest number of guard bits added on top of
	// ceil(digits × log2 10). The realization performs about six roundings,
	// each worth half an ulp, so 256 bits leave the final truncation exposed
	// only when π·10^digits sits within 2^-250 of an integer.
	MinMarginBits = 256

	// DefaultMarginBits is used when Options.MarginBits is zero.
	DefaultMarginBits = MinMarginBits

	// DefaultFFTThreshold is the operand size, in bits, above which the
	// adaptive strategy switches from math/big (Karatsuba) to FFT
	// multiplication. Both operands must exceed it.
	DefaultFFTThreshold = 500_000

	// ProgressReportThreshold is the minimum progress change reported to
	// observers.
	ProgressReportThreshold = 0.01

	// DefaultDigits is the digit count used when none is given.
	DefaultDigits = 100_000

	// boundaryGuardBits bounds the floating-point rounding error of the
	// realization: the NearBoundary window is never narrower than
	// 2^-boundaryGuardBits of the last digit.
	boundaryGuardBits = 192

	// cancelCheckSpan is the smallest term range at which the evaluator
	// polls its context.
	cancelCheckSpan = 32
)

// TermCount returns the number of series terms needed for digits decimal
// digits.
func TermCount(digits uint64) uint64 {
	return digits/DigitsPerTerm + 1
}

// MaxDigits returns the largest digit count whose working precision fits in
// a big.Float with marginBits guard bits.
func MaxDigits(marginBits uint) uint64 {
	if marginBits < MinMarginBits {
		marginBits = MinMarginBits
	}
	if uint64(marginBits) >= big.MaxPrec {
		return 0
	}
	return uint64(float64(big.MaxPrec-uint64(marginBits))/Log2Of10) - 1
}
