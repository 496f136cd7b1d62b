package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agbru/picalc/internal/calibration"
	"github.com/agbru/picalc/internal/config"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/testutil"
	"github.com/agbru/picalc/pkg/models"
)

const pi15 = "3.141592653589793"

// profileArgs points calibration at an empty temporary profile so the
// user's real profile never leaks into a test.
func profileArgs(t *testing.T) []string {
	t.Helper()
	return []string{"--calibration-profile", filepath.Join(t.TempDir(), "profile.json")}
}

func baseConfig(t *testing.T) config.AppConfig {
	t.Helper()
	return config.AppConfig{
		Digits:             15,
		DigitSpec:          "15",
		Timeout:            time.Minute,
		Algo:               pi.DefaultAlgorithm,
		MarginBits:         pi.DefaultMarginBits,
		FFTThreshold:       pi.DefaultFFTThreshold,
		Port:               config.DefaultPort,
		ServerMaxDigits:    config.DefaultServerMaxDigits,
		NoColor:            true,
		CalibrationProfile: filepath.Join(t.TempDir(), "profile.json"),
	}
}

func newTestApp(t *testing.T, factory pi.CalculatorFactory, cfg config.AppConfig) (*Application, *bytes.Buffer) {
	t.Helper()
	var errBuf bytes.Buffer
	return &Application{Config: cfg, Factory: factory, ErrWriter: &errBuf}, &errBuf
}

func TestNew(t *testing.T) {
	t.Run("positional digits", func(t *testing.T) {
		var errBuf bytes.Buffer
		app, err := New(append([]string{"picalc", "50"}, profileArgs(t)...), &errBuf)
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		if app.Config.Digits != 50 {
			t.Errorf("Digits = %d, want 50", app.Config.Digits)
		}
		if app.Config.FFTThreshold != calibration.EstimateOptimalFFTThreshold() {
			t.Errorf("FFTThreshold = %d, want the hardware estimate", app.Config.FFTThreshold)
		}
		if app.Factory == nil || app.ErrWriter != &errBuf {
			t.Error("factory or error writer not set")
		}
	})

	t.Run("explicit threshold is kept", func(t *testing.T) {
		var errBuf bytes.Buffer
		args := append([]string{"picalc", "--fft-threshold", "123456"}, profileArgs(t)...)
		app, err := New(args, &errBuf)
		if err != nil {
			t.Fatal(err)
		}
		if app.Config.FFTThreshold != 123456 {
			t.Errorf("FFTThreshold = %d, want 123456", app.Config.FFTThreshold)
		}
	})

	t.Run("cached profile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profile.json")
		p := calibration.NewProfile()
		p.OptimalFFTThreshold = 777_000
		if err := p.SaveProfile(path); err != nil {
			t.Fatal(err)
		}
		var errBuf bytes.Buffer
		app, err := New([]string{"picalc", "--calibration-profile", path}, &errBuf)
		if err != nil {
			t.Fatal(err)
		}
		if app.Config.FFTThreshold != 777_000 {
			t.Errorf("FFTThreshold = %d, want 777000", app.Config.FFTThreshold)
		}
	})
}

func TestNewErrors(t *testing.T) {
	t.Run("invalid digits", func(t *testing.T) {
		var errBuf bytes.Buffer
		_, err := New([]string{"picalc", "-d", "abc"}, &errBuf)
		if err == nil {
			t.Fatal("expected an error")
		}
		if code := apperrors.ExitCodeFor(err); code != apperrors.ExitErrorConfig {
			t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorConfig)
		}
		if !strings.Contains(errBuf.String(), "Invalid number part") {
			t.Errorf("stderr = %q", errBuf.String())
		}
	})

	t.Run("help", func(t *testing.T) {
		var errBuf bytes.Buffer
		_, err := New([]string{"picalc", "--help"}, &errBuf)
		if !IsHelpError(err) {
			t.Errorf("IsHelpError(%v) = false", err)
		}
	})
}

func TestIsHelpError(t *testing.T) {
	t.Parallel()
	if IsHelpError(nil) || IsHelpError(errors.New("other")) {
		t.Error("IsHelpError true for a non-help error")
	}
}

func TestRunOutputContract(t *testing.T) {
	var errBuf, out bytes.Buffer
	app, err := New(append([]string{"picalc", "-d", "15"}, profileArgs(t)...), &errBuf)
	if err != nil {
		t.Fatal(err)
	}
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errBuf.String())
	}

	lines := testutil.Lines(out.String())
	if len(lines) != 3 {
		t.Fatalf("stdout has %d lines, want 3:\n%s", len(lines), out.String())
	}
	if lines[0] != "Calculating π to 15 digits (Chudnovsky, binary splitting)..." {
		t.Errorf("line 1 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Time: ") || !strings.HasSuffix(lines[1], "s") {
		t.Errorf("line 2 = %q", lines[1])
	}
	if lines[2] != pi15 {
		t.Errorf("line 3 = %q, want %q", lines[2], pi15)
	}
}

func TestRunZeroDigits(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Digits = 0
	app, _ := newTestApp(t, pi.NewDefaultFactory(), cfg)
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if got := testutil.LastLine(out.String()); got != "3." {
		t.Errorf("last line = %q, want %q", got, "3.")
	}
}

func TestRunQuiet(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Quiet = true
	app, _ := newTestApp(t, pi.NewDefaultFactory(), cfg)
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if out.String() != pi15+"\n" {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestRunJSON(t *testing.T) {
	cfg := baseConfig(t)
	cfg.JSONOutput = true
	cfg.Algo = "all"
	app, _ := newTestApp(t, pi.NewDefaultFactory(), cfg)
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}

	var resp []models.CalculationResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if len(resp) < 3 {
		t.Fatalf("got %d results, want every backend", len(resp))
	}
	for _, r := range resp {
		if r.Result != pi15 || r.Error != "" {
			t.Errorf("%s: result=%q error=%q", r.Algorithm, r.Result, r.Error)
		}
	}
}

func TestRunCompareAllBackends(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Algo = "all"
	cfg.Digits = 200
	app, errBuf := newTestApp(t, pi.NewDefaultFactory(), cfg)
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errBuf.String())
	}
	output := out.String()
	if !strings.Contains(output, "Comparing") || !strings.Contains(output, "Global Status: Success") {
		t.Errorf("stdout:\n%s", output)
	}
	last := testutil.LastLine(output)
	if len(last) != 202 || !strings.HasPrefix(last, pi15) {
		t.Errorf("last line = %q", last)
	}
}

func TestRunMismatch(t *testing.T) {
	factory := pi.NewTestFactory(map[string]pi.Calculator{
		"a": &pi.MockCalculator{Label: "a", Result: pi.ResultFromString("3.14")},
		"b": &pi.MockCalculator{Label: "b", Result: pi.ResultFromString("3.15")},
	})
	cfg := baseConfig(t)
	cfg.Algo = "all"
	cfg.Digits = 2

	for _, quiet := range []bool{false, true} {
		cfg.Quiet = quiet
		app, errBuf := newTestApp(t, factory, cfg)
		var out bytes.Buffer
		if code := app.Run(context.Background(), &out); code != apperrors.ExitErrorMismatch {
			t.Errorf("quiet=%v: exit code = %d, want %d", quiet, code, apperrors.ExitErrorMismatch)
		}
		if !strings.Contains(errBuf.String(), "different digits") {
			t.Errorf("quiet=%v: stderr = %q", quiet, errBuf.String())
		}
	}
}

func TestRunTimeout(t *testing.T) {
	slow := &pi.MockCalculator{Label: pi.DefaultAlgorithm, Fn: func(ctx context.Context, _ uint64) (*pi.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	cfg := baseConfig(t)
	cfg.Timeout = 20 * time.Millisecond
	app, errBuf := newTestApp(t, pi.NewTestFactory(map[string]pi.Calculator{pi.DefaultAlgorithm: slow}), cfg)

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitErrorTimeout {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorTimeout)
	}
	if !strings.Contains(errBuf.String(), "Timeout") {
		t.Errorf("stderr = %q", errBuf.String())
	}
	if strings.Contains(out.String(), "3.") {
		t.Errorf("partial output printed: %q", out.String())
	}
}

func TestRunOutputFile(t *testing.T) {
	cfg := baseConfig(t)
	cfg.OutputFile = filepath.Join(t.TempDir(), "out", "pi.txt")
	app, errBuf := newTestApp(t, pi.NewDefaultFactory(), cfg)

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	data, err := os.ReadFile(cfg.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	if testutil.LastLine(string(data)) != pi15 {
		t.Errorf("file content:\n%s", data)
	}
	if !strings.Contains(errBuf.String(), "Result saved to") {
		t.Errorf("stderr = %q", errBuf.String())
	}
	if testutil.LastLine(out.String()) != pi15 {
		t.Errorf("stdout last line = %q", testutil.LastLine(out.String()))
	}
}

func TestRunCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		cfg := baseConfig(t)
		cfg.Completion = shell
		app, errBuf := newTestApp(t, pi.NewDefaultFactory(), cfg)
		var out bytes.Buffer
		if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
			t.Fatalf("%s: exit code = %d, stderr = %q", shell, code, errBuf.String())
		}
		if !strings.Contains(out.String(), "picalc") {
			t.Errorf("%s: completion script does not mention picalc", shell)
		}
	}

	cfg := baseConfig(t)
	cfg.Completion = "tcsh"
	app, errBuf := newTestApp(t, pi.NewDefaultFactory(), cfg)
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitErrorConfig {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorConfig)
	}
	if !strings.Contains(errBuf.String(), "unsupported shell") {
		t.Errorf("stderr = %q", errBuf.String())
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want nothing", out.String())
	}
}

func TestRunCalibrationWithoutBackend(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Calibrate = true
	app, _ := newTestApp(t, pi.NewTestFactory(nil), cfg)
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitErrorGeneric {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorGeneric)
	}
}

func TestRunAutoCalibrationIfEnabled(t *testing.T) {
	cfg := baseConfig(t)
	p := calibration.NewProfile()
	p.OptimalFFTThreshold = 654_000
	if err := p.SaveProfile(cfg.CalibrationProfile); err != nil {
		t.Fatal(err)
	}

	app, errBuf := newTestApp(t, pi.NewDefaultFactory(), cfg)
	if got := app.runAutoCalibrationIfEnabled(context.Background()); got.FFTThreshold != pi.DefaultFFTThreshold {
		t.Errorf("disabled: FFTThreshold = %d", got.FFTThreshold)
	}

	app.Config.AutoCalibrate = true
	if got := app.runAutoCalibrationIfEnabled(context.Background()); got.FFTThreshold != 654_000 {
		t.Errorf("enabled: FFTThreshold = %d, want 654000", got.FFTThreshold)
	}
	if !strings.Contains(errBuf.String(), "Using cached calibration") {
		t.Errorf("stderr = %q", errBuf.String())
	}
}

func TestResolveFFTThreshold(t *testing.T) {
	t.Parallel()
	cfg := baseConfig(t)
	if got := resolveFFTThreshold(cfg).FFTThreshold; got != calibration.EstimateOptimalFFTThreshold() {
		t.Errorf("default: %d", got)
	}
	cfg.FFTThreshold = 42_000
	if got := resolveFFTThreshold(cfg).FFTThreshold; got != 42_000 {
		t.Errorf("explicit: %d", got)
	}
}

func TestPrintJSONResultsFailures(t *testing.T) {
	t.Parallel()
	results := []orchestration.CalculationResult{
		{Name: "a", Err: context.DeadlineExceeded, Duration: time.Second},
	}
	var out bytes.Buffer
	if code := printJSONResults(results, 10, &out); code != apperrors.ExitErrorTimeout {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorTimeout)
	}
	if !strings.Contains(out.String(), "deadline exceeded") {
		t.Errorf("JSON = %s", out.String())
	}
}

func TestFindBestResult(t *testing.T) {
	t.Parallel()
	results := []orchestration.CalculationResult{
		{Name: "slow", Duration: 3 * time.Second},
		{Name: "failed", Duration: time.Millisecond, Err: errors.New("x")},
		{Name: "fast", Duration: time.Second},
	}
	if best := findBestResult(results); best == nil || best.Name != "fast" {
		t.Errorf("best = %+v", best)
	}
	if findBestResult(nil) != nil {
		t.Error("best of nothing is not nil")
	}
}
