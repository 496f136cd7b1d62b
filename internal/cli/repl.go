package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agbru/picalc/internal/digitspec"
	"github.com/agbru/picalc/internal/pi"
)

// REPLConfig holds the settings of an interactive session.
type REPLConfig struct {
	// DefaultAlgo is the backend selected at start.
	DefaultAlgo string
	// Timeout bounds each calculation.
	Timeout time.Duration
	// Options are passed to every calculation.
	Options pi.Options
	// MaxDigits caps the digit specifications accepted (0 for the
	// margin-derived maximum).
	MaxDigits uint64
	// FullOutput prints every digit instead of an abbreviation.
	FullOutput bool
}

// REPL is an interactive π calculator session.
type REPL struct {
	config      REPLConfig
	registry    map[string]pi.Calculator
	currentAlgo string
	in          io.Reader
	out         io.Writer
}

// NewREPL creates a session over registry reading stdin and writing stdout.
func NewREPL(registry map[string]pi.Calculator, config REPLConfig) *REPL {
	if config.MaxDigits == 0 {
		config.MaxDigits = pi.MaxDigits(config.Options.MarginBits)
	}
	r := &REPL{
		config:   config,
		registry: registry,
		in:       os.Stdin,
		out:      os.Stdout,
	}
	r.currentAlgo = config.DefaultAlgo
	if _, ok := registry[r.currentAlgo]; !ok {
		if names := r.algoNames(); len(names) > 0 {
			r.currentAlgo = names[0]
		}
	}
	return r
}

// SetInput replaces the input reader.
func (r *REPL) SetInput(in io.Reader) { r.in = in }

// SetOutput replaces the output writer.
func (r *REPL) SetOutput(out io.Writer) { r.out = out }

// Start reads and executes commands until "exit" or end of input.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for {
		fmt.Fprint(r.out, ColorGreen()+"π> "+ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ColorRed(), err, ColorReset())
			return
		}
		if line := strings.TrimSpace(input); line != "" {
			if !r.processCommand(line) {
				return
			}
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════╗%s\n", ColorCyan(), ColorReset())
	fmt.Fprintf(r.out, "%s║%s   %sπ Calculator - Interactive Mode%s            %s║%s\n",
		ColorCyan(), ColorReset(), ColorBold(), ColorReset(), ColorCyan(), ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════╝%s\n\n", ColorCyan(), ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  %scalc <digits>%s     - Compute π with the current backend (e.g. 1K, 1e4)\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %salgo <name>%s       - Change backend (%s)\n", ColorYellow(), ColorReset(), strings.Join(r.algoNames(), ", "))
	fmt.Fprintf(r.out, "  %scompare <digits>%s  - Run every backend and check agreement\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %slist%s              - List backends\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sfull%s              - Toggle printing every digit\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s            - Show the session settings\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s              - Show this help\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s       - Leave interactive mode\n", ColorYellow(), ColorReset(), ColorYellow(), ColorReset())
}

func (r *REPL) algoNames() []string {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// processCommand executes one input line and reports whether the session
// continues.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "calc", "c":
		if digits, ok := r.parseDigits("calc", args); ok {
			r.calculate(digits)
		}
	case "algo", "a":
		r.cmdAlgo(args)
	case "compare", "cmp":
		if digits, ok := r.parseDigits("compare", args); ok {
			r.compare(digits)
		}
	case "list", "ls":
		r.cmdList()
	case "full":
		r.config.FullOutput = !r.config.FullOutput
		fmt.Fprintf(r.out, "Full digit display: %s%s%s\n", ColorGreen(), onOff(r.config.FullOutput), ColorReset())
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ColorGreen(), ColorReset())
		return false
	default:
		// A bare digit specification is a shortcut for calc.
		if digits, err := digitspec.Parse(parts[0], r.config.MaxDigits); err == nil {
			r.calculate(digits)
			return true
		}
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ColorRed(), cmd, ColorReset())
		fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ColorYellow(), ColorReset())
	}
	return true
}

func (r *REPL) parseDigits(cmd string, args []string) (uint64, bool) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: %s <digits>%s\n", ColorRed(), cmd, ColorReset())
		return 0, false
	}
	digits, err := digitspec.Parse(args[0], r.config.MaxDigits)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return 0, false
	}
	return digits, true
}

func (r *REPL) run(calc pi.Calculator, digits uint64, progress chan<- pi.ProgressUpdate) (*pi.Result, time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()
	start := time.Now()
	result, err := calc.Calculate(ctx, progress, 0, digits, r.config.Options)
	return result, time.Since(start), err
}

func (r *REPL) calculate(digits uint64) {
	calc, ok := r.registry[r.currentAlgo]
	if !ok {
		fmt.Fprintf(r.out, "%sBackend not found: %s%s\n", ColorRed(), r.currentAlgo, ColorReset())
		return
	}

	fmt.Fprintf(r.out, "Calculating π to %s%d%s digits with %s%s%s...\n",
		ColorMagenta(), digits, ColorReset(), ColorCyan(), calc.Name(), ColorReset())

	progressChan := make(chan pi.ProgressUpdate, 10)
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, progressChan, 1, r.out)

	result, duration, err := r.run(calc, digits, progressChan)
	close(progressChan)
	wg.Wait()

	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return
	}

	fmt.Fprintf(r.out, "\n%sResult:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  Time:      %s%s%s\n", ColorGreen(), FormatExecutionDuration(duration), ColorReset())
	fmt.Fprintf(r.out, "  Terms:     %s%d%s\n", ColorCyan(), result.Terms, ColorReset())
	fmt.Fprintf(r.out, "  Precision: %s%d%s bits\n", ColorCyan(), result.Precision, ColorReset())
	if result.NearBoundary {
		fmt.Fprintf(r.out, "  %sLast digit is close to a rounding boundary%s\n", ColorYellow(), ColorReset())
	}
	fmt.Fprintf(r.out, "  π = %s%s%s\n\n", ColorGreen(), AbbreviateDigits(result.String(), r.config.FullOutput), ColorReset())
}

func (r *REPL) compare(digits uint64) {
	fmt.Fprintf(r.out, "\n%sComparison for %d digits:%s\n", ColorBold(), digits, ColorReset())
	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────%s\n", ColorCyan(), ColorReset())

	var reference string
	for _, name := range r.algoNames() {
		result, duration, err := r.run(r.registry[name], digits, nil)
		if err != nil {
			fmt.Fprintf(r.out, "  %s%-12s%s: %sError - %v%s\n", ColorYellow(), name, ColorReset(), ColorRed(), err, ColorReset())
			continue
		}

		digitsStr := result.String()
		if reference == "" {
			reference = digitsStr
		}
		status := ColorGreen() + "✓" + ColorReset()
		if digitsStr != reference {
			status = ColorRed() + "✗ MISMATCH" + ColorReset()
		}
		fmt.Fprintf(r.out, "  %s%-12s%s: %s%12s%s %s\n",
			ColorYellow(), name, ColorReset(), ColorCyan(), FormatExecutionDuration(duration), ColorReset(), status)
	}

	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────%s\n\n", ColorCyan(), ColorReset())
}

func (r *REPL) cmdAlgo(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: algo <name>%s\n", ColorRed(), ColorReset())
		fmt.Fprintf(r.out, "Available backends: %s\n", strings.Join(r.algoNames(), ", "))
		return
	}
	name := strings.ToLower(args[0])
	calc, ok := r.registry[name]
	if !ok {
		fmt.Fprintf(r.out, "%sUnknown backend: %s%s\n", ColorRed(), name, ColorReset())
		fmt.Fprintf(r.out, "Available backends: %s\n", strings.Join(r.algoNames(), ", "))
		return
	}
	r.currentAlgo = name
	fmt.Fprintf(r.out, "Backend changed to: %s%s%s\n", ColorGreen(), calc.Name(), ColorReset())
}

func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sAvailable backends:%s\n", ColorBold(), ColorReset())
	for _, name := range r.algoNames() {
		marker := "  "
		if name == r.currentAlgo {
			marker = ColorGreen() + "► " + ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%-12s%s - %s\n", marker, ColorYellow(), name, ColorReset(), r.registry[name].Name())
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  Backend:       %s%s%s\n", ColorCyan(), r.currentAlgo, ColorReset())
	fmt.Fprintf(r.out, "  Timeout:       %s%s%s\n", ColorCyan(), r.config.Timeout, ColorReset())
	fmt.Fprintf(r.out, "  Margin:        %s%d%s bits\n", ColorCyan(), r.config.Options.MarginBits, ColorReset())
	fmt.Fprintf(r.out, "  FFT threshold: %s%d%s bits\n", ColorCyan(), r.config.Options.FFTThreshold, ColorReset())
	fmt.Fprintf(r.out, "  Max digits:    %s%d%s\n", ColorCyan(), r.config.MaxDigits, ColorReset())
	fmt.Fprintf(r.out, "  Full digits:   %s%s%s\n", ColorCyan(), onOff(r.config.FullOutput), ColorReset())
	fmt.Fprintln(r.out)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
