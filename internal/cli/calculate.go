package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/picalc/internal/config"
	"github.com/agbru/picalc/internal/pi"
)

// GetCalculatorsToRun resolves cfg.Algo against factory. "all" selects every
// registered backend in name order.
func GetCalculatorsToRun(cfg config.AppConfig, factory pi.CalculatorFactory) []pi.Calculator {
	if cfg.Algo == "all" {
		keys := factory.List()
		calculators := make([]pi.Calculator, 0, len(keys))
		for _, k := range keys {
			if calc, err := factory.Get(k); err == nil {
				calculators = append(calculators, calc)
			}
		}
		return calculators
	}
	if calc, err := factory.Get(cfg.Algo); err == nil {
		return []pi.Calculator{calc}
	}
	return nil
}

// PrintExecutionConfig prints the announcement line. With cfg.Details it
// adds the precision budget, thresholds and environment.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "Calculating π to %d digits (Chudnovsky, binary splitting)...\n", cfg.Digits)
	if !cfg.Details {
		return
	}
	bits, err := pi.PrecisionBits(cfg.Digits, cfg.MarginBits)
	if err != nil {
		bits = 0
	}
	fmt.Fprintf(out, "Series terms: %s%s%s, working precision: %s%s%s bits (margin %d).\n",
		ColorCyan(), formatNumberString(fmt.Sprint(pi.TermCount(cfg.Digits))), ColorReset(),
		ColorCyan(), formatNumberString(fmt.Sprint(bits)), ColorReset(), cfg.MarginBits)
	fmt.Fprintf(out, "FFT threshold: %s%d%s bits, timeout %s%s%s.\n",
		ColorCyan(), cfg.FFTThreshold, ColorReset(), ColorYellow(), cfg.Timeout, ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ColorCyan(), runtime.NumCPU(), ColorReset(), ColorCyan(), runtime.Version(), ColorReset())
}

// PrintExecutionMode names the backend, or announces a comparison run.
// It prints nothing for an empty selection.
func PrintExecutionMode(calculators []pi.Calculator, out io.Writer) {
	switch len(calculators) {
	case 0:
		return
	case 1:
		fmt.Fprintf(out, "Backend: %s%s%s.\n", ColorGreen(), calculators[0].Name(), ColorReset())
	default:
		fmt.Fprintf(out, "Comparing %d backends.\n", len(calculators))
	}
}
