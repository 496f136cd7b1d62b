package pi

// ProgressUpdate carries the progress of one calculator to the UI.
type ProgressUpdate struct {
	// CalculatorIndex distinguishes concurrent calculators.
	CalculatorIndex int
	// Value is the normalized progress, from 0.0 to 1.0.
	Value float64
}

// ProgressReporter is the callback used by core calculators to report
// normalized progress.
type ProgressReporter func(progress float64)

// splitFraction is the share of the progress bar given to the binary
// splitting; the realization step fills the rest.
const splitFraction = 0.9

// SplitWork estimates the work of evaluating n terms by binary splitting,
// counting each leaf as one unit and each combine as the width of the range
// it merges. Only O(log n) distinct range widths occur, so the result is
// memoized per width.
func SplitWork(n uint64) float64 {
	memo := make(map[uint64]float64)
	var work func(uint64) float64
	work = func(w uint64) float64 {
		if w <= 1 {
			return float64(w)
		}
		if v, ok := memo[w]; ok {
			return v
		}
		half := w / 2
		v := float64(w) + work(half) + work(w-half)
		memo[w] = v
		return v
	}
	return work(n)
}

// progressTracker accumulates completed work and forwards it to a reporter
// whenever it has advanced by ProgressReportThreshold.
type progressTracker struct {
	reporter     ProgressReporter
	total        float64
	done         float64
	lastReported float64
	scale        float64
}

func newProgressTracker(reporter ProgressReporter, total, scale float64) *progressTracker {
	if reporter == nil {
		reporter = func(float64) {}
	}
	return &progressTracker{reporter: reporter, total: total, scale: scale}
}

func (p *progressTracker) add(units float64) {
	if p.total <= 0 {
		return
	}
	p.done += units
	current := p.done / p.total
	if current > 1 {
		current = 1
	}
	if current-p.lastReported >= ProgressReportThreshold || current == 1 {
		p.reporter(current * p.scale)
		p.lastReported = current
	}
}
