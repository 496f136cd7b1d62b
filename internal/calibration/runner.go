package calibration

import (
	"context"
	"time"

	"github.com/agbru/picalc/internal/pi"
)

// noDuration marks a candidate that produced no measurement.
const noDuration = time.Duration(1<<63 - 1)

// calibrationRunner times whole π calculations under a per-trial limit.
type calibrationRunner struct {
	ctx      context.Context
	perTrial time.Duration
	digits   uint64
	margin   uint
}

func newCalibrationRunner(ctx context.Context, timeout time.Duration, digits uint64, margin uint) *calibrationRunner {
	perTrial := max(timeout/6, 2*time.Second)
	return &calibrationRunner{ctx: ctx, perTrial: perTrial, digits: digits, margin: margin}
}

func (r *calibrationRunner) runTrial(calc pi.Calculator, fftThreshold int, progress chan<- pi.ProgressUpdate) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.perTrial)
	defer cancel()
	start := time.Now()
	_, err := calc.Calculate(ctx, progress, 0, r.digits, pi.Options{MarginBits: r.margin, FFTThreshold: fftThreshold})
	return time.Since(start), err
}

// findBestFFTThreshold returns the fastest candidate, or fallback with
// noDuration when every trial failed.
func (r *calibrationRunner) findBestFFTThreshold(calc pi.Calculator, candidates []int, fallback int) (int, time.Duration) {
	best, bestDur := fallback, noDuration
	for _, cand := range candidates {
		dur, err := r.runTrial(calc, cand, nil)
		if err != nil {
			continue
		}
		if dur < bestDur {
			best, bestDur = cand, dur
		}
	}
	return best, bestDur
}
