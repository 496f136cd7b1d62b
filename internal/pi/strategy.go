package pi

import (
	"math/big"

	"github.com/remyoudompheng/bigfft"
)

// setOrReturn sets z to result if z is non-nil, otherwise returns result directly.
func setOrReturn(z, result *big.Int) *big.Int {
	if z != nil {
		z.Set(result)
		return z
	}
	return result
}

// MultiplicationStrategy selects the algorithm behind every product of the
// binary-splitting combine step.
type MultiplicationStrategy interface {
	// Multiply computes x * y and stores the result in z (which may be nil
	// or alias an operand). The product is returned.
	Multiply(z, x, y *big.Int, opts Options) *big.Int

	// Name returns a descriptive name for the strategy.
	Name() string
}

// AdaptiveStrategy uses math/big below Options.FFTThreshold and FFT
// multiplication once both operands exceed it.
type AdaptiveStrategy struct{}

// Name returns the name of the adaptive strategy.
func (s *AdaptiveStrategy) Name() string {
	return "Adaptive (Karatsuba/FFT)"
}

// Multiply picks the multiplication algorithm from the operand sizes.
func (s *AdaptiveStrategy) Multiply(z, x, y *big.Int, opts Options) *big.Int {
	threshold := opts.FFTThreshold
	if threshold > 0 && x.BitLen() > threshold && y.BitLen() > threshold {
		return setOrReturn(z, bigfft.Mul(x, y))
	}
	if z == nil {
		z = new(big.Int)
	}
	return z.Mul(x, y)
}

// FFTOnlyStrategy forces FFT multiplication for every product.
type FFTOnlyStrategy struct{}

// Name returns the name of the FFT-only strategy.
func (s *FFTOnlyStrategy) Name() string {
	return "FFT-Only"
}

// Multiply performs FFT-based multiplication.
func (s *FFTOnlyStrategy) Multiply(z, x, y *big.Int, opts Options) *big.Int {
	return setOrReturn(z, bigfft.Mul(x, y))
}

// KaratsubaStrategy forces math/big multiplication (Karatsuba for large
// operands) for every product.
type KaratsubaStrategy struct{}

// Name returns the name of the Karatsuba-only strategy.
func (s *KaratsubaStrategy) Name() string {
	return "Karatsuba-Only"
}

// Multiply performs math/big multiplication.
func (s *KaratsubaStrategy) Multiply(z, x, y *big.Int, opts Options) *big.Int {
	if z == nil {
		z = new(big.Int)
	}
	return z.Mul(x, y)
}
