// Package orchestration runs the selected π backends concurrently and turns
// their outcomes into the final report and exit code.
package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/picalc/internal/cli"
	"github.com/agbru/picalc/internal/config"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/ui"
)

// CalculationResult is the outcome of one backend run.
type CalculationResult struct {
	// Name is the backend's display name.
	Name string
	// Result is nil when Err is set.
	Result *pi.Result
	// Duration is the wall time of the run.
	Duration time.Duration
	// Err is the failure, if any.
	Err error
}

// ProgressBufferMultiplier sizes the progress channel per calculator so
// that a slow display rarely blocks a calculation.
const ProgressBufferMultiplier = 5

// ExecuteCalculations runs every calculator on cfg.Digits concurrently and
// returns their results in input order. Progress is drawn on progressOut.
// A failing backend does not stop the others.
func ExecuteCalculations(ctx context.Context, calculators []pi.Calculator, cfg config.AppConfig, progressOut io.Writer) []CalculationResult {
	var g errgroup.Group
	results := make([]CalculationResult, len(calculators))
	progressChan := make(chan pi.ProgressUpdate, len(calculators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, len(calculators), progressOut)

	opts := cfg.ToCalculationOptions()
	for i, calc := range calculators {
		g.Go(func() error {
			start := time.Now()
			res, err := calc.Calculate(ctx, progressChan, i, cfg.Digits, opts)
			results[i] = CalculationResult{Name: calc.Name(), Result: res, Duration: time.Since(start), Err: err}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// AnalyzeComparisonResults reports results and returns the exit code.
//
// A single successful run prints the timing line and the digits. With
// several runs a summary table comes first and the digits of the fastest
// run are printed only when every successful backend agrees; otherwise the
// exit code is ExitErrorMismatch. Failures are described on errOut.
func AnalyzeComparisonResults(results []CalculationResult, cfg config.AppConfig, out, errOut io.Writer) int {
	if len(results) == 0 {
		fmt.Fprintln(errOut, "Status: Failure. No backend was selected.")
		return apperrors.ExitErrorGeneric
	}
	if len(results) == 1 {
		res := results[0]
		if res.Err != nil {
			return apperrors.HandleCalculationError(res.Err, res.Duration, errOut, cli.CLIColorProvider{})
		}
		cli.DisplayResult(res.Result, res.Duration, cfg.Details, out)
		return apperrors.ExitSuccess
	}

	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var best *CalculationResult
	var firstError error
	for i := range results {
		if results[i].Err != nil {
			if firstError == nil {
				firstError = results[i].Err
			}
			continue
		}
		if best == nil {
			best = &results[i]
		}
	}

	printSummary(results, best, cfg, out)

	if best == nil {
		fmt.Fprintf(errOut, "Global Status: Failure. No backend could complete the calculation.\n")
		return apperrors.HandleCalculationError(firstError, 0, errOut, cli.CLIColorProvider{})
	}

	for _, res := range results {
		if res.Err == nil && !res.Result.Equal(best.Result) {
			fmt.Fprintln(errOut, ui.Paint(ui.ColorRed(), "Global Status: CRITICAL ERROR! The backends produced different digits."))
			return apperrors.ExitErrorMismatch
		}
	}

	fmt.Fprintf(out, "Global Status: Success. All valid results are consistent.\n\n")
	cli.DisplayResult(best.Result, best.Duration, cfg.Details, out)
	return apperrors.ExitSuccess
}

func printSummary(results []CalculationResult, best *CalculationResult, cfg config.AppConfig, out io.Writer) {
	showDigits := cfg.Details || cfg.Verbose

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sBackend%s\t%sDuration%s\t%sStatus%s",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	if showDigits {
		fmt.Fprintf(tw, "\t%sDigits%s", ui.ColorUnderline(), ui.ColorReset())
	}
	fmt.Fprintln(tw)

	for _, res := range results {
		var status, digits string
		switch {
		case res.Err != nil:
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
		case !res.Result.Equal(best.Result):
			status = fmt.Sprintf("%s❌ Mismatch%s", ui.ColorRed(), ui.ColorReset())
			digits = cli.AbbreviateDigits(res.Result.String(), cfg.Verbose)
		default:
			status = fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
			digits = cli.AbbreviateDigits(res.Result.String(), cfg.Verbose)
		}

		duration := cli.FormatExecutionDuration(res.Duration)
		if res.Duration == 0 {
			duration = "< 1µs"
		}
		fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%s", ui.ColorBlue(), res.Name, ui.ColorReset(), ui.ColorYellow(), duration, ui.ColorReset(), status)
		if showDigits {
			fmt.Fprintf(tw, "\t%s", digits)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}
	fmt.Fprintln(out)
}
