package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agbru/picalc/internal/cli"
)

// calibrationResult is the timing of one candidate threshold.
type calibrationResult struct {
	Threshold int
	Duration  time.Duration
	Err       error
}

func printCalibrationResults(out io.Writer, results []calibrationResult, bestThreshold int) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sFFT threshold%s │ %sExecution Time%s\n", cli.ColorUnderline(), cli.ColorReset(), cli.ColorUnderline(), cli.ColorReset())
	fmt.Fprintf(tw, "  %s┼%s\n", strings.Repeat("─", 14), strings.Repeat("─", 25))
	for _, res := range results {
		durationStr := fmt.Sprintf("%sN/A%s", cli.ColorRed(), cli.ColorReset())
		if res.Err == nil {
			durationStr = cli.FormatExecutionDuration(res.Duration)
		}
		highlight := ""
		if res.Threshold == bestThreshold && res.Err == nil {
			highlight = fmt.Sprintf(" %s(Optimal)%s", cli.ColorGreen(), cli.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%-12s%s │ %s%s%s%s\n", cli.ColorCyan(), fmt.Sprintf("%d bits", res.Threshold), cli.ColorReset(),
			cli.ColorYellow(), durationStr, cli.ColorReset(), highlight)
	}
	_ = tw.Flush()
}

func printCalibrationOutput(out io.Writer, label string, fftThreshold int) {
	fmt.Fprintf(out, "%s%s%s: FFT=%s%d%s bits\n",
		cli.ColorGreen(), label, cli.ColorReset(), cli.ColorYellow(), fftThreshold, cli.ColorReset())
}
