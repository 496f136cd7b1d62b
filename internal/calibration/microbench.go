package calibration

import (
	"context"
	"math/big"
	"sort"
	"time"

	"github.com/remyoudompheng/bigfft"
)

const (
	// MicroBenchIterations is the number of timed multiplications per size
	// and method.
	MicroBenchIterations = 3
	// MicroBenchTimeout bounds the whole micro-benchmark.
	MicroBenchTimeout = 250 * time.Millisecond
)

// MicroBenchTestSizes are the operand sizes measured, in words.
var MicroBenchTestSizes = []int{2_000, 4_000, 8_000, 16_000, 32_000}

// MicroBenchmark times math/big against bigfft on operands of growing
// size.
type MicroBenchmark struct {
	TestSizes  []int
	Iterations int
	Timeout    time.Duration
}

// ThresholdResults is the outcome of a micro-benchmark.
type ThresholdResults struct {
	// FFTThreshold is the estimated crossover in bits.
	FFTThreshold int
	// Confidence is 0 when nothing was measured and 1 when the crossover
	// was observed between two measured sizes.
	Confidence float64
	// Duration is the time the benchmark took.
	Duration time.Duration
}

type sizeTiming struct {
	words     int
	karatsuba time.Duration
	fft       time.Duration
}

// NewMicroBenchmark returns a benchmark with the default sizes.
func NewMicroBenchmark() *MicroBenchmark {
	return &MicroBenchmark{
		TestSizes:  MicroBenchTestSizes,
		Iterations: MicroBenchIterations,
		Timeout:    MicroBenchTimeout,
	}
}

// RunQuick measures each size in increasing order until the timeout and
// estimates the crossover from whatever was measured.
func (mb *MicroBenchmark) RunQuick(ctx context.Context) (ThresholdResults, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, mb.Timeout)
	defer cancel()

	sizes := append([]int(nil), mb.TestSizes...)
	sort.Ints(sizes)

	var timings []sizeTiming
	for _, words := range sizes {
		k, err := mb.measure(ctx, words, false)
		if err != nil {
			break
		}
		f, err := mb.measure(ctx, words, true)
		if err != nil {
			break
		}
		timings = append(timings, sizeTiming{words: words, karatsuba: k, fft: f})
	}

	results := analyzeTimings(timings)
	results.Duration = time.Since(start)
	return results, nil
}

func (mb *MicroBenchmark) measure(ctx context.Context, words int, useFFT bool) (time.Duration, error) {
	x := generateTestNumber(words, 1)
	y := generateTestNumber(words, 2)
	_ = multiplyTest(x, y, useFFT)

	iterations := max(mb.Iterations, 1)
	var total time.Duration
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		start := time.Now()
		_ = multiplyTest(x, y, useFFT)
		total += time.Since(start)
	}
	return total / time.Duration(iterations), nil
}

// generateTestNumber builds a deterministic dense operand of the given
// number of words.
func generateTestNumber(words int, seed uint64) *big.Int {
	digits := make([]big.Word, words)
	state := seed*0x9E3779B97F4A7C15 + 1
	for i := range digits {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		digits[i] = big.Word(state)
	}
	digits[words-1] |= 1 << (wordSize - 1)
	return new(big.Int).SetBits(digits)
}

func multiplyTest(x, y *big.Int, useFFT bool) *big.Int {
	if useFFT {
		return bigfft.Mul(x, y)
	}
	return new(big.Int).Mul(x, y)
}

// analyzeTimings returns the smallest measured size from which FFT stays
// faster at every larger size, converted to bits.
func analyzeTimings(timings []sizeTiming) ThresholdResults {
	if len(timings) == 0 {
		return ThresholdResults{FFTThreshold: EstimateOptimalFFTThreshold(), Confidence: 0}
	}

	crossover := -1
	for i := len(timings) - 1; i >= 0; i-- {
		if timings[i].fft >= timings[i].karatsuba {
			break
		}
		crossover = i
	}

	switch {
	case crossover < 0:
		// FFT never won: the crossover lies beyond the largest size.
		largest := timings[len(timings)-1].words * wordSize
		return ThresholdResults{FFTThreshold: ValidateFFTThreshold(largest * 2), Confidence: 0.5}
	case crossover == 0:
		// FFT already won at the smallest size.
		return ThresholdResults{FFTThreshold: ValidateFFTThreshold(timings[0].words * wordSize), Confidence: 0.5}
	default:
		// Between the last losing size and the first winning one.
		lo, hi := timings[crossover-1].words*wordSize, timings[crossover].words*wordSize
		return ThresholdResults{FFTThreshold: ValidateFFTThreshold((lo + hi) / 2), Confidence: 1.0}
	}
}

// QuickCalibrate runs the default micro-benchmark.
func QuickCalibrate(ctx context.Context) (ThresholdResults, error) {
	return NewMicroBenchmark().RunQuick(ctx)
}
