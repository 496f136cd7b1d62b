package pi

import (
	"context"
	"fmt"
)

// ChudnovskyCalculator evaluates the series by binary splitting with a
// chosen multiplication strategy, then realizes the digits with big.Float.
type ChudnovskyCalculator struct {
	strategy MultiplicationStrategy
	label    string
}

// NewChudnovskyCalculator returns a backend using strategy. A nil strategy
// selects AdaptiveStrategy.
func NewChudnovskyCalculator(strategy MultiplicationStrategy) *ChudnovskyCalculator {
	if strategy == nil {
		strategy = &AdaptiveStrategy{}
	}
	return &ChudnovskyCalculator{
		strategy: strategy,
		label:    fmt.Sprintf("Chudnovsky (binary splitting, %s)", strategy.Name()),
	}
}

// Name returns the display name of the backend.
func (c *ChudnovskyCalculator) Name() string {
	return c.label
}

// CalculateCore computes π to digits fractional digits.
func (c *ChudnovskyCalculator) CalculateCore(ctx context.Context, reporter ProgressReporter, digits uint64, opts Options) (*Result, error) {
	opts = normalizeOptions(opts)

	bits, err := PrecisionBits(digits, opts.MarginBits)
	if err != nil {
		return nil, err
	}
	terms := TermCount(digits)

	evaluator := NewEvaluator(c.strategy, opts, reporter, splitFraction)
	triple, err := evaluator.Evaluate(ctx, 0, terms)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Realize(triple, digits, terms, bits)
}
