// Package config builds the application configuration from command-line
// flags, PICALC_* environment variables and an optional config file, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/agbru/picalc/internal/digitspec"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/pi"
)

// Default configuration values.
const (
	// DefaultDigitSpec is used when no digit count is given anywhere.
	DefaultDigitSpec = "100000"
	// DefaultTimeout is the default calculation timeout.
	DefaultTimeout = 30 * time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8080"
	// DefaultAlgo is the default backend.
	DefaultAlgo = pi.DefaultAlgorithm
	// DefaultMarginBits is the default number of guard bits.
	DefaultMarginBits = pi.DefaultMarginBits
	// DefaultFFTThreshold is the default FFT multiplication threshold in bits.
	DefaultFFTThreshold = pi.DefaultFFTThreshold
	// DefaultServerMaxDigits caps the digits a single HTTP request may ask for.
	DefaultServerMaxDigits = 1_000_000
)

// digitFlags are the flags that carry the digit specification.
var digitFlags = map[string]bool{"--calculate": true, "-c": true, "--digits": true, "-d": true}

// AppConfig holds every setting of a picalc run.
type AppConfig struct {
	// Digits is the number of fractional digits to compute.
	Digits uint64
	// DigitSpec is the specification Digits was parsed from.
	DigitSpec string
	// Verbose enables debug logs and prints the full digit string in
	// comparison summaries.
	Verbose bool
	// Details adds precision, term count and a per-backend table.
	Details bool
	// Timeout bounds the whole calculation.
	Timeout time.Duration
	// Algo is a registered backend name or "all".
	Algo string
	// MarginBits is the number of guard bits of working precision (≥ 256).
	MarginBits uint
	// FFTThreshold is the operand size in bits above which the adaptive
	// strategy uses FFT multiplication.
	FFTThreshold int
	// Calibrate runs the FFT crossover calibration and exits.
	Calibrate bool
	// AutoCalibrate runs a quick calibration before calculating.
	AutoCalibrate bool
	// CalibrationProfile overrides the profile path
	// (default ~/.picalc_calibration.json).
	CalibrationProfile string
	// JSONOutput prints results as JSON.
	JSONOutput bool
	// ServerMode starts the HTTP server.
	ServerMode bool
	// Port is the server listen port.
	Port string
	// ServerMaxDigits caps the digits of a single HTTP request.
	ServerMaxDigits uint64
	// NoColor disables ANSI colors.
	NoColor bool
	// OutputFile, when set, receives the digit string.
	OutputFile string
	// Quiet prints only the digit line.
	Quiet bool
	// Interactive starts the REPL.
	Interactive bool
	// Completion is a shell name for which to print a completion script.
	Completion string
	// ConfigFile is the optional YAML, JSON or TOML file that was loaded.
	ConfigFile string
}

// ToCalculationOptions converts the configuration into pi.Options.
func (c AppConfig) ToCalculationOptions() pi.Options {
	return pi.Options{
		MarginBits:   c.MarginBits,
		FFTThreshold: c.FFTThreshold,
	}
}

// Validate checks value ranges and the algorithm name.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.MarginBits < pi.MinMarginBits {
		return apperrors.NewConfigError("margin bits must be at least %d, got %d", pi.MinMarginBits, c.MarginBits)
	}
	if c.FFTThreshold < 0 {
		return apperrors.NewConfigError("FFT threshold cannot be negative: %d", c.FFTThreshold)
	}
	if c.ServerMode && c.Port == "" {
		return apperrors.NewConfigError("a port is required in server mode")
	}
	if c.ServerMaxDigits == 0 {
		return apperrors.NewConfigError("server max digits must be positive")
	}
	if c.Algo == "all" {
		return nil
	}
	for _, a := range availableAlgos {
		if a == c.Algo {
			return nil
		}
	}
	return apperrors.NewConfigError("unrecognized algorithm: '%s'. Valid algorithms are: 'all' or [%s]", c.Algo, strings.Join(availableAlgos, ", "))
}

// ParseConfig parses args (without the program name) into an AppConfig.
//
// The digit specification comes from --digits/-d or --calculate/-c when
// given (the last one wins), otherwise from the first positional argument,
// otherwise from PICALC_DIGITS or the config file, otherwise
// DefaultDigitSpec.
//
// Parameters:
//   - programName: The name shown in usage output.
//   - args: The command-line arguments (typically os.Args[1:]).
//   - errorWriter: Where parse errors and usage are printed.
//   - availableAlgos: The registered backend names.
//
// Returns:
//   - AppConfig: The populated configuration.
//   - error: pflag.ErrHelp for --help, otherwise an apperrors.ConfigError.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := pflag.NewFlagSet(programName, pflag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.SortFlags = false

	var digitFlag string
	var showVersion bool
	algoHelp := fmt.Sprintf("Backend: 'all' or one of [%s].", strings.Join(availableAlgos, ", "))

	fs.StringVarP(&digitFlag, "digits", "d", "", "Number of digits (e.g. 12345, 1K, 10M, 1e6).")
	fs.StringVarP(&digitFlag, "calculate", "c", "", "Alias for --digits.")
	fs.String("algo", DefaultAlgo, algoHelp)
	fs.Duration("timeout", DefaultTimeout, "Maximum execution time for the calculation.")
	fs.Uint("margin-bits", DefaultMarginBits, "Guard bits added to the working precision (at least 256).")
	fs.Int("fft-threshold", DefaultFFTThreshold, "Operand size in bits above which FFT multiplication is used (0 for the default).")
	fs.BoolP("verbose", "v", false, "Enable debug logging and show full values in summaries.")
	fs.Bool("details", false, "Show precision, term count and per-backend timings.")
	fs.Bool("json", false, "Output results in JSON format.")
	fs.BoolP("quiet", "q", false, "Print only the digits.")
	fs.StringP("output", "o", "", "Write the digits to this file.")
	fs.Bool("server", false, "Start in HTTP server mode.")
	fs.String("port", DefaultPort, "Port to listen on in server mode.")
	fs.Uint64("server-max-digits", DefaultServerMaxDigits, "Largest digit count a single HTTP request may ask for.")
	fs.Bool("interactive", false, "Start in interactive REPL mode.")
	fs.Bool("calibrate", false, "Measure the FFT crossover for this machine and save it.")
	fs.Bool("auto-calibrate", false, "Run a quick calibration before calculating.")
	fs.String("calibration-profile", "", "Path to the calibration profile (default: ~/.picalc_calibration.json).")
	fs.Bool("no-color", false, "Disable colored output (also respects NO_COLOR).")
	fs.String("completion", "", "Print a shell completion script (bash, zsh, fish, powershell).")
	fs.String("config", "", "Read settings from a YAML, JSON or TOML file.")
	fs.BoolVarP(&showVersion, "version", "V", false, "Print version information and exit.")

	setCustomUsage(fs, errorWriter)

	if flagName, ok := missingFlagValue(args); ok {
		err := apperrors.NewConfigError("Flag %s requires a value", flagName)
		fmt.Fprintln(errorWriter, "Error:", err)
		fs.Usage()
		return AppConfig{}, err
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return AppConfig{}, err
		}
		return AppConfig{}, apperrors.WrapConfigError(err)
	}

	v, err := newViper(fs)
	if err != nil {
		fmt.Fprintln(errorWriter, "Error:", err)
		return AppConfig{}, err
	}

	config := AppConfig{
		Verbose:            v.GetBool("verbose"),
		Details:            v.GetBool("details"),
		Timeout:            v.GetDuration("timeout"),
		Algo:               strings.ToLower(v.GetString("algo")),
		MarginBits:         v.GetUint("margin-bits"),
		FFTThreshold:       v.GetInt("fft-threshold"),
		Calibrate:          v.GetBool("calibrate"),
		AutoCalibrate:      v.GetBool("auto-calibrate"),
		CalibrationProfile: v.GetString("calibration-profile"),
		JSONOutput:         v.GetBool("json"),
		ServerMode:         v.GetBool("server"),
		Port:               v.GetString("port"),
		ServerMaxDigits:    v.GetUint64("server-max-digits"),
		NoColor:            v.GetBool("no-color"),
		OutputFile:         v.GetString("output"),
		Quiet:              v.GetBool("quiet"),
		Interactive:        v.GetBool("interactive"),
		Completion:         v.GetString("completion"),
		ConfigFile:         v.ConfigFileUsed(),
	}

	if err := config.Validate(availableAlgos); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, err
	}

	config.DigitSpec = resolveDigitSpec(fs, digitFlag, v.GetString("digits"))
	digits, err := digitspec.Parse(config.DigitSpec, pi.MaxDigits(config.MarginBits))
	if err != nil {
		wrapped := apperrors.WrapConfigError(err)
		fmt.Fprintln(errorWriter, "Error:", wrapped)
		fs.Usage()
		return AppConfig{}, wrapped
	}
	config.Digits = digits
	return config, nil
}

// resolveDigitSpec applies the precedence explicit flag > first positional >
// environment or config file > default.
func resolveDigitSpec(fs *pflag.FlagSet, flagValue, layered string) string {
	if fs.Changed("digits") || fs.Changed("calculate") {
		return flagValue
	}
	if fs.NArg() > 0 {
		return fs.Arg(0)
	}
	if layered != "" {
		return layered
	}
	return DefaultDigitSpec
}

// missingFlagValue reports a digit flag given as the last argument with no
// value after it.
func missingFlagValue(args []string) (string, bool) {
	for i, arg := range args {
		if arg == "--" {
			return "", false
		}
		if digitFlags[arg] && i == len(args)-1 {
			return arg, true
		}
	}
	return "", false
}
