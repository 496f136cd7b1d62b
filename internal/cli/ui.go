// Package cli renders the command-line experience: progress display on
// stderr, the result lines on stdout, the interactive REPL and shell
// completion scripts.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/ui"
)

// FormatExecutionDuration formats a duration with µs, ms or the default
// representation depending on its magnitude.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// FormatSeconds renders d as seconds with four decimals, the format of the
// "Time:" line.
func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.4fs", d.Seconds())
}

const (
	// TruncationLimit is the number of fractional digits above which
	// summaries show an abbreviated value.
	TruncationLimit = 100
	// DisplayEdges is the number of digits kept at each end of an
	// abbreviated value.
	DisplayEdges = 25
	// ProgressRefreshRate is the refresh period of the spinner line.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width of the progress bar in characters.
	ProgressBarWidth = 40
)

// Theme colors, re-exported for the packages that render through cli.
var (
	ColorReset     = ui.ColorReset
	ColorRed       = ui.ColorRed
	ColorGreen     = ui.ColorGreen
	ColorYellow    = ui.ColorYellow
	ColorBlue      = ui.ColorBlue
	ColorMagenta   = ui.ColorMagenta
	ColorCyan      = ui.ColorCyan
	ColorBold      = ui.ColorBold
	ColorUnderline = ui.ColorUnderline
)

// Spinner abstracts the terminal spinner so the progress loop can be
// tested without a terminal.
type Spinner interface {
	// Start begins the animation.
	Start()
	// Stop halts the animation and clears the line.
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start()                     { rs.s.Start() }
func (rs *realSpinner) Stop()                      { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// isTerminal decides whether progress is drawn at all.
var isTerminal = ui.IsTerminal

// ProgressState aggregates the progress of concurrently running
// calculators.
type ProgressState struct {
	progresses     []float64
	numCalculators int
}

// NewProgressState tracks numCalculators calculators, all at 0.
func NewProgressState(numCalculators int) *ProgressState {
	return &ProgressState{
		progresses:     make([]float64, numCalculators),
		numCalculators: numCalculators,
	}
}

// Update records value for the calculator at index. Out-of-range indices
// are ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// CalculateAverage returns the mean progress in [0, 1].
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numCalculators == 0 {
		return 0.0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(ps.numCalculators)
}

func progressBar(progress float64, length int) string {
	progress = min(max(progress, 0.0), 1.0)
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

func progressLabel(numCalculators int) string {
	if numCalculators > 1 {
		return "Avg progress"
	}
	return "Progress"
}

// DisplayProgress draws a spinner with an aggregated progress bar and ETA
// on out until progressChan is closed, then calls wg.Done. Nothing is drawn
// when out is not a terminal; the channel is still drained.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan pi.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	if numCalculators <= 0 || !isTerminal(out) {
		for range progressChan {
		}
		return
	}

	state := NewProgressWithETA(numCalculators)
	label := progressLabel(numCalculators)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	spinnerStopped := false
	defer func() {
		if !spinnerStopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				spinnerStopped = true
				fmt.Fprintf(out, "%s: %6.2f%% [%s] ETA: %s\n", label, 100.0, progressBar(1.0, ProgressBarWidth), "< 1s")
				return
			}
			state.UpdateWithETA(update.CalculatorIndex, update.Value)
		case <-ticker.C:
			avg := state.CalculateAverage()
			s.UpdateSuffix(fmt.Sprintf(" %s: %6.2f%% [%s] ETA: %s", label, avg*100, progressBar(avg, ProgressBarWidth), FormatETA(state.GetETA())))
		}
	}
}

// DisplayResult prints the timing line, the optional details block and
// then the digit line, which is always the last line written.
func DisplayResult(result *pi.Result, duration time.Duration, details bool, out io.Writer) {
	fmt.Fprintf(out, "Time: %s\n", FormatSeconds(duration))

	if details {
		fmt.Fprintf(out, "\n%s--- Detailed result analysis ---%s\n", ColorBold(), ColorReset())
		fmt.Fprintf(out, "Calculation time   : %s%s%s\n", ColorGreen(), FormatExecutionDuration(duration), ColorReset())
		fmt.Fprintf(out, "Fractional digits  : %s%s%s\n", ColorCyan(), formatNumberString(fmt.Sprint(result.Digits)), ColorReset())
		fmt.Fprintf(out, "Series terms       : %s%s%s\n", ColorCyan(), formatNumberString(fmt.Sprint(result.Terms)), ColorReset())
		fmt.Fprintf(out, "Working precision  : %s%s%s bits\n", ColorCyan(), formatNumberString(fmt.Sprint(result.Precision)), ColorReset())
		if result.NearBoundary {
			fmt.Fprintf(out, "%sWarning: the last digit lies close to a rounding boundary.%s\n", ColorYellow(), ColorReset())
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, result.String())
}

// AbbreviateDigits shortens a digit string longer than TruncationLimit
// fractional digits to its first and last DisplayEdges digits, unless
// verbose is set.
func AbbreviateDigits(s string, verbose bool) string {
	if verbose || len(s) <= TruncationLimit+2 {
		return s
	}
	head := s[:2+DisplayEdges]
	tail := s[len(s)-DisplayEdges:]
	return head + "..." + tail
}

// formatNumberString inserts thousand separators into a decimal string.
func formatNumberString(s string) string {
	if len(s) == 0 {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix = "-"
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		return prefix + s
	}

	var builder strings.Builder
	builder.Grow(len(prefix) + n + (n-1)/3)
	builder.WriteString(prefix)

	firstGroupLen := n % 3
	if firstGroupLen == 0 {
		firstGroupLen = 3
	}
	builder.WriteString(s[:firstGroupLen])
	for i := firstGroupLen; i < n; i += 3 {
		builder.WriteByte(',')
		builder.WriteString(s[i : i+3])
	}
	return builder.String()
}
