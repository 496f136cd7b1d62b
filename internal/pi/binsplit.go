package pi

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidRange is returned when a term range is empty or reversed.
var ErrInvalidRange = errors.New("pi: term range must satisfy a < b")

// Evaluator runs the binary-splitting recursion of the Chudnovsky series.
// An Evaluator is not safe for concurrent use; create one per calculation.
type Evaluator struct {
	strategy MultiplicationStrategy
	opts     Options
	progress *progressTracker
}

// NewEvaluator creates an evaluator that multiplies with strategy and
// reports progress (scaled to [0, scale]) to reporter. A nil strategy
// selects AdaptiveStrategy and a nil reporter discards progress.
func NewEvaluator(strategy MultiplicationStrategy, opts Options, reporter ProgressReporter, scale float64) *Evaluator {
	if strategy == nil {
		strategy = &AdaptiveStrategy{}
	}
	return &Evaluator{
		strategy: strategy,
		opts:     normalizeOptions(opts),
		progress: newProgressTracker(reporter, 0, scale),
	}
}

// Evaluate returns the triple of the term range [a, b). It polls ctx
// between subranges and returns ctx.Err() once it is canceled.
func (e *Evaluator) Evaluate(ctx context.Context, a, b uint64) (*Triple, error) {
	if a >= b {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, a, b)
	}
	e.progress.total = SplitWork(b - a)
	e.progress.done = 0
	e.progress.lastReported = 0
	return e.split(ctx, a, b)
}

func (e *Evaluator) split(ctx context.Context, a, b uint64) (*Triple, error) {
	if b-a == 1 {
		leaf, err := leafTerm(a)
		if err != nil {
			return nil, err
		}
		e.progress.add(1)
		return leaf, nil
	}

	if b-a >= cancelCheckSpan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	m := a + (b-a)/2
	left, err := e.split(ctx, a, m)
	if err != nil {
		return nil, err
	}
	right, err := e.split(ctx, m, b)
	if err != nil {
		return nil, err
	}

	merged := combine(left, right, e.strategy, e.opts)
	e.progress.add(float64(b - a))
	return merged, nil
}

// Split evaluates the term range [a, b) with math/big multiplication and no
// progress reporting.
func Split(a, b uint64) (*Triple, error) {
	return NewEvaluator(&KaratsubaStrategy{}, Options{}, nil, 1).Evaluate(context.Background(), a, b)
}
