package calibration

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/agbru/picalc/internal/cli"
	"github.com/agbru/picalc/internal/config"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/pi"
)

const (
	// CalibrationDigits is the digit count timed for each candidate of a
	// full calibration.
	CalibrationDigits uint64 = 500_000
	// QuickCalibrationDigits is used by the auto-calibration fallback.
	QuickCalibrationDigits uint64 = 100_000
)

// CalibrationOptions configures RunCalibration.
type CalibrationOptions struct {
	// ProfilePath overrides the default profile location.
	ProfilePath string
	// SaveProfile stores the result for later runs.
	SaveProfile bool
	// Digits is the digit count timed per candidate. Zero selects
	// CalibrationDigits.
	Digits uint64
	// Thresholds overrides the candidate list.
	Thresholds []int
}

// RunCalibration times the adaptive backend once per candidate FFT
// threshold, prints the results and returns an exit code.
func RunCalibration(ctx context.Context, out io.Writer, registry map[string]pi.Calculator, opts CalibrationOptions) int {
	fmt.Fprintf(out, "--- Calibration Mode: Finding the FFT Multiplication Threshold ---\n")

	calculator := registry[pi.DefaultAlgorithm]
	if calculator == nil {
		fmt.Fprintf(out, "%sCritical error: the '%s' backend is required for calibration but was not found.%s\n",
			cli.ColorRed(), pi.DefaultAlgorithm, cli.ColorReset())
		return apperrors.ExitErrorGeneric
	}

	digits := opts.Digits
	if digits == 0 {
		digits = CalibrationDigits
	}
	candidates := opts.Thresholds
	if len(candidates) == 0 {
		candidates = GenerateFFTThresholds()
	}
	fmt.Fprintf(out, "%sTiming %d candidates at %d digits%s\n", cli.ColorCyan(), len(candidates), digits, cli.ColorReset())

	results := make([]calibrationResult, 0, len(candidates))
	bestDuration, bestThreshold := noDuration, 0
	calibrationStart := time.Now()

	var wg sync.WaitGroup
	progressChan := make(chan pi.ProgressUpdate, 5)
	wg.Add(1)
	go cli.DisplayProgress(&wg, progressChan, 1, out)
	stopProgress := func() {
		close(progressChan)
		wg.Wait()
	}

	for _, threshold := range candidates {
		if ctx.Err() != nil {
			stopProgress()
			fmt.Fprintf(out, "\n%sCalibration interrupted.%s\n", cli.ColorYellow(), cli.ColorReset())
			return apperrors.ExitErrorCanceled
		}

		start := time.Now()
		_, err := calculator.Calculate(ctx, progressChan, 0, digits, pi.Options{FFTThreshold: threshold})
		duration := time.Since(start)

		if err != nil {
			results = append(results, calibrationResult{Threshold: threshold, Err: err})
			if apperrors.IsContextError(err) {
				stopProgress()
				return apperrors.HandleCalculationError(err, duration, out, cli.CLIColorProvider{})
			}
			fmt.Fprintf(out, "%s❌ Failure (%v)%s\n", cli.ColorRed(), err, cli.ColorReset())
			continue
		}

		results = append(results, calibrationResult{Threshold: threshold, Duration: duration})
		if duration < bestDuration {
			bestDuration, bestThreshold = duration, threshold
		}
	}
	stopProgress()

	if bestDuration == noDuration {
		fmt.Fprintf(out, "\n%sCalibration failed: no valid results obtained.%s\n", cli.ColorRed(), cli.ColorReset())
		return apperrors.ExitErrorGeneric
	}

	printCalibrationResults(out, results, bestThreshold)
	fmt.Fprintf(out, "\n%s✅ Recommendation for this machine: %s--fft-threshold %d%s\n",
		cli.ColorGreen(), cli.ColorYellow(), bestThreshold, cli.ColorReset())

	if opts.SaveProfile {
		profile := NewProfile()
		profile.OptimalFFTThreshold = bestThreshold
		profile.CalibrationDigits = digits
		profile.CalibrationTime = time.Since(calibrationStart).String()
		profile.Method = "full"
		if err := profile.SaveProfile(opts.ProfilePath); err != nil {
			fmt.Fprintf(out, "%sWarning: failed to save profile: %v%s\n", cli.ColorYellow(), err, cli.ColorReset())
		} else {
			fmt.Fprintf(out, "%sCalibration profile saved to %s%s\n",
				cli.ColorGreen(), resolveProfilePath(opts.ProfilePath), cli.ColorReset())
		}
	}
	return apperrors.ExitSuccess
}

// AutoCalibrate tunes cfg.FFTThreshold before a calculation. It tries, in
// order, a cached profile for this machine, the multiplication
// micro-benchmarks, and finally timed π runs over a short candidate list.
// It reports false when nothing could be measured.
func AutoCalibrate(ctx context.Context, cfg config.AppConfig, out io.Writer, registry map[string]pi.Calculator) (config.AppConfig, bool) {
	calc := registry[pi.DefaultAlgorithm]
	if calc == nil {
		return cfg, false
	}

	if updated, ok := LoadCachedCalibration(cfg, cfg.CalibrationProfile); ok {
		printCalibrationOutput(out, "Using cached calibration", updated.FFTThreshold)
		return updated, true
	}

	micro, err := QuickCalibrate(ctx)
	if err == nil && micro.Confidence >= 0.5 {
		updated := cfg
		updated.FFTThreshold = micro.FFTThreshold
		fmt.Fprintf(out, "%sQuick calibration%s (%v, confidence %.0f%%): FFT=%s%d%s bits\n",
			cli.ColorGreen(), cli.ColorReset(), micro.Duration.Round(time.Millisecond), micro.Confidence*100,
			cli.ColorYellow(), updated.FFTThreshold, cli.ColorReset())
		saveCalibrationProfile(updated.FFTThreshold, "micro", 0, cfg.CalibrationProfile, out)
		return updated, true
	}

	runner := newCalibrationRunner(ctx, cfg.Timeout, QuickCalibrationDigits, cfg.MarginBits)
	best, dur := runner.findBestFFTThreshold(calc, GenerateQuickFFTThresholds(), cfg.FFTThreshold)
	if dur == noDuration {
		return cfg, false
	}
	updated := cfg
	updated.FFTThreshold = best
	saveCalibrationProfile(best, "quick", QuickCalibrationDigits, cfg.CalibrationProfile, out)
	printCalibrationOutput(out, "Auto-calibration", best)
	return updated, true
}

// LoadCachedCalibration applies a saved profile that matches this machine.
func LoadCachedCalibration(cfg config.AppConfig, profilePath string) (config.AppConfig, bool) {
	profile, loaded := LoadOrCreateProfile(profilePath)
	if !loaded || !profile.IsValid() {
		return cfg, false
	}
	cfg.FFTThreshold = profile.OptimalFFTThreshold
	return cfg, true
}

func saveCalibrationProfile(threshold int, method string, digits uint64, profilePath string, out io.Writer) {
	profile := NewProfile()
	profile.OptimalFFTThreshold = threshold
	profile.Method = method
	profile.CalibrationDigits = digits
	if err := profile.SaveProfile(profilePath); err != nil {
		fmt.Fprintf(out, "%sWarning: could not save calibration profile: %v%s\n",
			cli.ColorYellow(), err, cli.ColorReset())
	}
}
