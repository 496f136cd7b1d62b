package orchestration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/picalc/internal/config"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/pi/mocks"
	"github.com/agbru/picalc/internal/testutil"
	"github.com/agbru/picalc/internal/ui"
)

func noColor(t *testing.T) {
	t.Helper()
	saved := ui.GetCurrentTheme()
	ui.SetCurrentTheme(ui.NoColorTheme)
	t.Cleanup(func() { ui.SetCurrentTheme(saved) })
}

// spyCalculator records the arguments it receives.
type spyCalculator struct {
	digits atomic.Uint64
	opts   pi.Options
	index  int
}

func (s *spyCalculator) Name() string { return "Spy" }

func (s *spyCalculator) Calculate(_ context.Context, progress chan<- pi.ProgressUpdate, calcIndex int, digits uint64, opts pi.Options) (*pi.Result, error) {
	s.digits.Store(digits)
	s.opts = opts
	s.index = calcIndex
	progress <- pi.ProgressUpdate{CalculatorIndex: calcIndex, Value: 1}
	return pi.ResultFromString("3.14"), nil
}

func TestExecuteCalculationsPassesConfig(t *testing.T) {
	t.Parallel()
	spy := &spyCalculator{}
	cfg := config.AppConfig{Digits: 2, MarginBits: 512, FFTThreshold: 1234}

	results := ExecuteCalculations(context.Background(), []pi.Calculator{&pi.MockCalculator{Result: pi.ResultFromString("3.14")}, spy}, cfg, io.Discard)

	require.Len(t, results, 2)
	assert.Equal(t, uint64(2), spy.digits.Load())
	assert.Equal(t, pi.Options{MarginBits: 512, FFTThreshold: 1234}, spy.opts)
	assert.Equal(t, 1, spy.index)
	assert.Equal(t, "Spy", results[1].Name)
	assert.Equal(t, "3.14", results[1].Result.String())
}

func TestExecuteCalculationsWithMockCalculator(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	calc := mocks.NewMockCalculator(ctrl)
	calc.EXPECT().Name().Return("mocked").AnyTimes()
	calc.EXPECT().
		Calculate(gomock.Any(), gomock.Any(), 0, uint64(42), pi.Options{MarginBits: 256}).
		Return(nil, context.DeadlineExceeded).
		Times(1)

	cfg := config.AppConfig{Digits: 42, MarginBits: 256}
	results := ExecuteCalculations(context.Background(), []pi.Calculator{calc}, cfg, io.Discard)

	require.Len(t, results, 1)
	assert.Equal(t, "mocked", results[0].Name)
	assert.Nil(t, results[0].Result)
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)

	var out, errOut bytes.Buffer
	assert.Equal(t, apperrors.ExitErrorTimeout, AnalyzeComparisonResults(results, cfg, &out, &errOut))
}

func TestExecuteCalculationsKeepsOrderAndErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	calcs := []pi.Calculator{
		&pi.MockCalculator{Label: "slow", Fn: func(context.Context, uint64) (*pi.Result, error) {
			time.Sleep(20 * time.Millisecond)
			return pi.ResultFromString("3.1"), nil
		}},
		&pi.MockCalculator{Label: "failing", Err: boom},
	}

	results := ExecuteCalculations(context.Background(), calcs, config.AppConfig{Digits: 1}, io.Discard)

	require.Len(t, results, 2)
	assert.Equal(t, "slow", results[0].Name)
	assert.NoError(t, results[0].Err)
	assert.GreaterOrEqual(t, results[0].Duration, 20*time.Millisecond)
	assert.ErrorIs(t, results[1].Err, boom)
}

func TestExecuteCalculationsEmpty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, ExecuteCalculations(context.Background(), nil, config.AppConfig{}, io.Discard))
}

func TestAnalyzeSingleSuccess(t *testing.T) {
	noColor(t)
	var out, errOut bytes.Buffer
	results := []CalculationResult{{Name: "c", Result: pi.ResultFromString("3.141592653589793"), Duration: 1234 * time.Microsecond}}

	code := AnalyzeComparisonResults(results, config.AppConfig{}, &out, &errOut)

	assert.Equal(t, apperrors.ExitSuccess, code)
	assert.Equal(t, "Time: 0.0012s\n3.141592653589793\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestAnalyzeSingleFailure(t *testing.T) {
	noColor(t)
	tests := []struct {
		err  error
		code int
	}{
		{context.DeadlineExceeded, apperrors.ExitErrorTimeout},
		{context.Canceled, apperrors.ExitErrorCanceled},
		{errors.New("boom"), apperrors.ExitErrorGeneric},
	}
	for _, tt := range tests {
		var out, errOut bytes.Buffer
		code := AnalyzeComparisonResults([]CalculationResult{{Name: "c", Err: tt.err}}, config.AppConfig{}, &out, &errOut)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Empty(t, out.String(), "no partial output on failure")
		assert.Contains(t, errOut.String(), "Status:")
	}
}

func TestAnalyzeComparisonConsistent(t *testing.T) {
	noColor(t)
	results := []CalculationResult{
		{Name: "slow", Result: pi.ResultFromString("3.14159"), Duration: 2 * time.Second},
		{Name: "fast", Result: pi.ResultFromString("3.14159"), Duration: time.Second},
		{Name: "broken", Err: errors.New("boom")},
	}
	var out, errOut bytes.Buffer
	code := AnalyzeComparisonResults(results, config.AppConfig{Details: true}, &out, &errOut)

	assert.Equal(t, apperrors.ExitSuccess, code)
	got := out.String()
	assert.Contains(t, got, "--- Comparison Summary ---")
	assert.Contains(t, got, "Failure (boom)")
	assert.Contains(t, got, "Global Status: Success")
	assert.Contains(t, got, "Time: 1.0000s")
	assert.Equal(t, "3.14159", testutil.LastLine(got))
	assert.Less(t, strings.Index(got, "fast"), strings.Index(got, "slow"), "rows are ordered by duration")
}

func TestAnalyzeComparisonMismatch(t *testing.T) {
	noColor(t)
	results := []CalculationResult{
		{Name: "a", Result: pi.ResultFromString("3.14159"), Duration: time.Second},
		{Name: "b", Result: pi.ResultFromString("3.14158"), Duration: 2 * time.Second},
	}
	var out, errOut bytes.Buffer
	code := AnalyzeComparisonResults(results, config.AppConfig{}, &out, &errOut)

	assert.Equal(t, apperrors.ExitErrorMismatch, code)
	assert.Contains(t, out.String(), "Mismatch")
	assert.NotContains(t, out.String(), "Time:")
	assert.Contains(t, errOut.String(), "CRITICAL ERROR")
}

func TestAnalyzeComparisonAllFailed(t *testing.T) {
	noColor(t)
	results := []CalculationResult{
		{Name: "a", Err: context.DeadlineExceeded},
		{Name: "b", Err: errors.New("boom")},
	}
	var out, errOut bytes.Buffer
	code := AnalyzeComparisonResults(results, config.AppConfig{}, &out, &errOut)

	assert.Equal(t, apperrors.ExitErrorTimeout, code)
	assert.Contains(t, errOut.String(), "No backend could complete")
}

func TestAnalyzeNoResults(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, apperrors.ExitErrorGeneric, AnalyzeComparisonResults(nil, config.AppConfig{}, &out, &errOut))
}

func TestExecuteAndAnalyzeRealBackends(t *testing.T) {
	noColor(t)
	factory := pi.NewDefaultFactory()
	var calcs []pi.Calculator
	for _, name := range factory.List() {
		calcs = append(calcs, factory.MustGet(name))
	}
	cfg := config.AppConfig{Digits: 50, MarginBits: pi.MinMarginBits}

	results := ExecuteCalculations(context.Background(), calcs, cfg, io.Discard)
	var out, errOut bytes.Buffer
	code := AnalyzeComparisonResults(results, cfg, &out, &errOut)

	require.Equal(t, apperrors.ExitSuccess, code, errOut.String())
	assert.Equal(t, "3.14159265358979323846264338327950288419716939937510", testutil.LastLine(out.String()))
}
