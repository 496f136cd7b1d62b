//go:build gmp

// The GMP backend is compiled only with -tags=gmp and needs libgmp
// (libgmp-dev on Debian/Ubuntu, `brew install gmp` on macOS).

package pi

import (
	"context"
	"math"
	"math/big"

	"github.com/ncw/gmp"
)

func init() {
	_ = RegisterCalculator("gmp", func() coreCalculator { return &GMPCalculator{} })
}

// gmpGuardDigits is the number of extra decimal digits carried by the
// fixed-point realization before the final truncation.
const gmpGuardDigits = 24

// GMPCalculator runs the binary splitting on GMP integers and realizes the
// digits in integer fixed point:
//
//	floor(π·10^(d+g)) ≈ Q · 426880 · isqrt(10005 · 10^(2(d+g))) / T
//
// then drops the g guard digits.
type GMPCalculator struct{}

// Name returns the display name of the backend.
func (c *GMPCalculator) Name() string {
	return "Chudnovsky (binary splitting, GMP)"
}

type gmpTriple struct {
	p, q, t *gmp.Int
}

func toGMP(x *big.Int) *gmp.Int {
	z := new(gmp.Int).SetBytes(x.Bytes())
	if x.Sign() < 0 {
		z.Neg(z)
	}
	return z
}

func fromGMP(x *gmp.Int) *big.Int {
	z := new(big.Int).SetBytes(x.Bytes())
	if x.Sign() < 0 {
		z.Neg(z)
	}
	return z
}

func gmpSplit(ctx context.Context, a, b uint64, progress *progressTracker) (*gmpTriple, error) {
	if b-a == 1 {
		leaf, err := leafTerm(a)
		if err != nil {
			return nil, err
		}
		progress.add(1)
		return &gmpTriple{p: toGMP(leaf.P), q: toGMP(leaf.Q), t: toGMP(leaf.T)}, nil
	}
	if b-a >= cancelCheckSpan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	m := a + (b-a)/2
	left, err := gmpSplit(ctx, a, m, progress)
	if err != nil {
		return nil, err
	}
	right, err := gmpSplit(ctx, m, b, progress)
	if err != nil {
		return nil, err
	}

	t := new(gmp.Int).Mul(right.q, left.t)
	pt := new(gmp.Int).Mul(left.p, right.t)
	t.Add(t, pt)
	left.p.Mul(left.p, right.p)
	left.q.Mul(left.q, right.q)

	progress.add(float64(b - a))
	return &gmpTriple{p: left.p, q: left.q, t: t}, nil
}

// CalculateCore computes π to digits fractional digits with GMP.
func (c *GMPCalculator) CalculateCore(ctx context.Context, reporter ProgressReporter, digits uint64, opts Options) (*Result, error) {
	opts = normalizeOptions(opts)
	bits, err := PrecisionBits(digits, opts.MarginBits)
	if err != nil {
		return nil, err
	}
	terms := TermCount(digits)

	progress := newProgressTracker(reporter, SplitWork(terms), splitFraction)
	root, err := gmpSplit(ctx, 0, terms, progress)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	working := digits + gmpGuardDigits
	ten := big.NewInt(10)
	unit := new(big.Int).Exp(ten, new(big.Int).SetUint64(working), nil)
	guard := new(big.Int).Exp(ten, big.NewInt(gmpGuardDigits), nil)

	radicand := toGMP(new(big.Int).Mul(new(big.Int).Mul(unit, unit), big.NewInt(chudnovskyRadicand)))
	sqrt := new(gmp.Int).Sqrt(radicand)

	num := new(gmp.Int).Mul(root.q, gmp.NewInt(chudnovskyScale))
	num.Mul(num, sqrt)
	withGuard := fromGMP(new(gmp.Int).Quo(num, root.t))
	piInt, rem := new(big.Int).QuoRem(withGuard, guard, new(big.Int))

	// The fixed-point steps each truncate, leaving a few units of error in
	// the last guard digit.
	window := math.Max(BoundaryWindow(digits, terms), math.Pow(10, 2-gmpGuardDigits))
	frac := new(big.Float).SetPrec(128).Quo(new(big.Float).SetInt(rem), new(big.Float).SetInt(guard))

	return &Result{
		Digits:       digits,
		Terms:        terms,
		Precision:    bits,
		Scaled:       piInt,
		NearBoundary: nearBoundary(frac, window),
		text:         FormatDigits(piInt.String(), digits),
	}, nil
}
