// Package calibration finds the operand size at which FFT multiplication
// overtakes math/big on the current machine and caches it in a profile.
package calibration

import "golang.org/x/sys/cpu"

const (
	// MinFFTThreshold and MaxFFTThreshold bound every threshold the package
	// produces, in bits.
	MinFFTThreshold = 16_384
	MaxFFTThreshold = 16_000_000
)

// wordSize is 32 or 64.
const wordSize = int(32 << (^uint(0) >> 63))

// GenerateFFTThresholds returns the candidates of a full calibration.
func GenerateFFTThresholds() []int {
	if wordSize == 64 {
		return []int{250_000, 500_000, 750_000, 1_000_000, 1_500_000, 2_000_000}
	}
	return []int{125_000, 250_000, 500_000, 750_000, 1_000_000}
}

// GenerateQuickFFTThresholds returns the reduced candidate set used by
// auto-calibration when the micro-benchmarks are inconclusive.
func GenerateQuickFFTThresholds() []int {
	return []int{250_000, 500_000, 1_000_000}
}

// EstimateOptimalFFTThreshold guesses the crossover without measuring.
// math/big has assembly multiply kernels on amd64 (faster with ADX/BMI2)
// and arm64, which push the crossover up.
func EstimateOptimalFFTThreshold() int {
	if wordSize != 64 {
		return 250_000
	}
	switch {
	case cpu.X86.HasADX && cpu.X86.HasBMI2:
		return 750_000
	case cpu.ARM64.HasASIMD:
		return 600_000
	default:
		return 500_000
	}
}

// ValidateFFTThreshold clamps t to [MinFFTThreshold, MaxFFTThreshold].
func ValidateFFTThreshold(t int) int {
	return min(max(t, MinFFTThreshold), MaxFFTThreshold)
}
