package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/agbru/picalc/internal/calibration"
	"github.com/agbru/picalc/internal/cli"
	"github.com/agbru/picalc/internal/config"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/server"
	"github.com/agbru/picalc/internal/service"
	"github.com/agbru/picalc/internal/ui"
	"github.com/agbru/picalc/pkg/models"
)

// Application is one picalc invocation: its configuration, the backend
// factory and the writer for diagnostics.
type Application struct {
	// Config holds the parsed configuration.
	Config config.AppConfig
	// Factory provides the π backends.
	Factory pi.CalculatorFactory
	// ErrWriter receives errors, logs and progress (typically os.Stderr).
	ErrWriter io.Writer
}

// New parses args (args[0] is the program name), configures logging and
// resolves the FFT threshold. It returns pflag.ErrHelp when help was
// requested and an apperrors.ConfigError for invalid input; in both cases
// the message has already been written to errWriter.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := pi.GlobalFactory()

	programName := "picalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, factory.List())
	if err != nil {
		return nil, err
	}

	logging.Configure(errWriter, cfg.Verbose, ui.IsTerminal(errWriter))
	cfg = resolveFFTThreshold(cfg)

	return &Application{
		Config:    cfg,
		Factory:   factory,
		ErrWriter: errWriter,
	}, nil
}

// resolveFFTThreshold replaces the built-in default threshold with a
// cached calibration for this machine, or else with a hardware estimate.
// A threshold set by the user is kept.
func resolveFFTThreshold(cfg config.AppConfig) config.AppConfig {
	if cfg.FFTThreshold != config.DefaultFFTThreshold {
		return cfg
	}
	if cached, ok := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); ok {
		return cached
	}
	cfg.FFTThreshold = calibration.EstimateOptimalFFTThreshold()
	return cfg
}

// Run dispatches to completion, server, REPL, calibration or calculation
// mode and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor, out)

	switch {
	case a.Config.ServerMode:
		return a.runServer()
	case a.Config.Interactive:
		return a.runREPL(out)
	case a.Config.Calibrate:
		return a.runCalibration(ctx, out)
	}

	a.Config = a.runAutoCalibrationIfEnabled(ctx)
	return a.runCalculate(ctx, out)
}

func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		if errors.Is(err, cli.ErrUnsupportedShell) {
			return apperrors.ExitErrorConfig
		}
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) runServer() int {
	srv := server.NewServer(a.Factory, a.Config, server.WithVersion(Version))
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) runREPL(out io.Writer) int {
	repl := cli.NewREPL(a.Factory.GetAll(), cli.REPLConfig{
		DefaultAlgo: a.Config.Algo,
		Timeout:     a.Config.Timeout,
		Options:     a.Config.ToCalculationOptions(),
		FullOutput:  a.Config.Verbose,
	})
	repl.SetOutput(out)
	repl.Start()
	return apperrors.ExitSuccess
}

func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	ctx, stop := SetupSignals(ctx)
	defer stop()
	return calibration.RunCalibration(ctx, out, a.Factory.GetAll(), calibration.CalibrationOptions{
		ProfilePath: a.Config.CalibrationProfile,
		SaveProfile: true,
	})
}

// runAutoCalibrationIfEnabled reports on ErrWriter so that stdout keeps
// its fixed shape.
func (a *Application) runAutoCalibrationIfEnabled(ctx context.Context) config.AppConfig {
	if !a.Config.AutoCalibrate {
		return a.Config
	}
	if updated, ok := calibration.AutoCalibrate(ctx, a.Config, a.ErrWriter, a.Factory.GetAll()); ok {
		return updated
	}
	return a.Config
}

// runCalculate runs the selected backends under the configured timeout and
// SIGINT/SIGTERM handling, then prints, saves or encodes the results.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	ctx, cancel := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancel.Cleanup()

	calculators := cli.GetCalculatorsToRun(a.Config, a.Factory)

	if !a.Config.JSONOutput && !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		if a.Config.Details || len(calculators) > 1 {
			cli.PrintExecutionMode(calculators, out)
		}
	}

	progressOut := a.ErrWriter
	if a.Config.Quiet || a.Config.JSONOutput {
		progressOut = io.Discard
	}

	results := orchestration.ExecuteCalculations(ctx, calculators, a.Config, progressOut)

	if a.Config.JSONOutput {
		return printJSONResults(results, a.Config.Digits, out)
	}

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
		Details:    a.Config.Details,
	}
	return a.analyzeResultsWithOutput(results, outputCfg, out)
}

func (a *Application) analyzeResultsWithOutput(results []orchestration.CalculationResult, outputCfg cli.OutputConfig, out io.Writer) int {
	if outputCfg.Quiet {
		return a.displayQuiet(results, outputCfg, out)
	}

	exitCode := orchestration.AnalyzeComparisonResults(results, a.Config, out, a.ErrWriter)
	if exitCode != apperrors.ExitSuccess {
		return exitCode
	}
	if best := findBestResult(results); best != nil {
		if err := a.saveResultIfNeeded(best, outputCfg); err != nil {
			return apperrors.ExitErrorGeneric
		}
	}
	return exitCode
}

// displayQuiet prints only the digits of the fastest successful run, or
// nothing and a failure exit code when the runs failed or disagree.
func (a *Application) displayQuiet(results []orchestration.CalculationResult, outputCfg cli.OutputConfig, out io.Writer) int {
	best := findBestResult(results)
	if best == nil {
		return apperrors.ExitCodeFor(firstError(results))
	}
	for _, res := range results {
		if res.Err == nil && !res.Result.Equal(best.Result) {
			fmt.Fprintln(a.ErrWriter, "Error: the backends produced different digits.")
			return apperrors.ExitErrorMismatch
		}
	}

	cli.DisplayQuietResult(out, best.Result)
	if err := a.saveResultIfNeeded(best, outputCfg); err != nil {
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// IsHelpError reports whether err means --help was requested.
func IsHelpError(err error) bool {
	return errors.Is(err, pflag.ErrHelp)
}

func findBestResult(results []orchestration.CalculationResult) *orchestration.CalculationResult {
	var best *orchestration.CalculationResult
	for i := range results {
		if results[i].Err == nil && (best == nil || results[i].Duration < best.Duration) {
			best = &results[i]
		}
	}
	return best
}

func firstError(results []orchestration.CalculationResult) error {
	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
	}
	if len(results) == 0 {
		return errors.New("no backend selected")
	}
	return nil
}

func (a *Application) saveResultIfNeeded(res *orchestration.CalculationResult, cfg cli.OutputConfig) error {
	if cfg.OutputFile == "" {
		return nil
	}
	if err := cli.WriteResultToFile(res.Result, res.Duration, res.Name, cfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return err
	}
	if !cfg.Quiet {
		fmt.Fprintf(a.ErrWriter, "%s✓ Result saved to: %s%s%s\n",
			cli.ColorGreen(), cli.ColorCyan(), cfg.OutputFile, cli.ColorReset())
	}
	return nil
}

// printJSONResults writes one models.CalculationResponse per backend as an
// indented JSON array. The exit code reflects failures and disagreement.
func printJSONResults(results []orchestration.CalculationResult, digits uint64, out io.Writer) int {
	output := make([]models.CalculationResponse, len(results))
	for i, res := range results {
		output[i] = service.NewCalculationResponse(res.Name, digits, res.Result, res.Duration, res.Err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return apperrors.ExitErrorGeneric
	}

	best := findBestResult(results)
	if best == nil {
		return apperrors.ExitCodeFor(firstError(results))
	}
	for _, res := range results {
		if res.Err == nil && !res.Result.Equal(best.Result) {
			return apperrors.ExitErrorMismatch
		}
	}
	return apperrors.ExitSuccess
}
