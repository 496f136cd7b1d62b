package pi

//go:generate mockgen -destination=mocks/mock_calculator.go -package=mocks github.com/agbru/picalc/internal/pi Calculator

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	calculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pi_calculations_total",
			Help: "The total number of π calculations processed",
		},
		[]string{"algorithm", "status"},
	)
	calculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pi_calculation_duration_seconds",
			Help: "The duration of π calculations in seconds",
		},
		[]string{"algorithm"},
	)
	nearBoundaryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pi_near_boundary_results_total",
			Help: "Results whose truncation fell within the rounding window of an integer",
		},
		[]string{"algorithm"},
	)
)

// Calculator is the public interface of a π digit calculator. It is the
// abstraction used by the orchestration layer, the REPL and the HTTP server.
type Calculator interface {
	// Calculate computes π truncated to digits fractional digits. It is
	// safe for concurrent use and honours cancellation of ctx. Progress
	// updates are sent to progressChan without blocking.
	//
	// Parameters:
	//   - ctx: The context for managing cancellation and deadlines.
	//   - progressChan: The channel for sending progress updates (may be nil).
	//   - calcIndex: A unique index for the calculator instance.
	//   - digits: The number of decimal digits after the point.
	//   - opts: Configuration options for the calculation.
	//
	// Returns:
	//   - *Result: The digits and calculation metadata.
	//   - error: An error if one occurred (e.g., context cancellation).
	Calculate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, digits uint64, opts Options) (*Result, error)

	// Name returns the display name of the backend.
	Name() string
}

// coreCalculator is a bare calculation backend without instrumentation.
type coreCalculator interface {
	CalculateCore(ctx context.Context, reporter ProgressReporter, digits uint64, opts Options) (*Result, error)
	Name() string
}

// PiCalculator decorates a coreCalculator with progress fan-out, metrics,
// tracing and logging.
type PiCalculator struct {
	core coreCalculator
}

// NewCalculator wraps core in a PiCalculator. It panics if core is nil.
func NewCalculator(core coreCalculator) Calculator {
	if core == nil {
		panic("pi: the `coreCalculator` implementation cannot be nil")
	}
	return &PiCalculator{core: core}
}

// Name delegates to the wrapped backend.
func (c *PiCalculator) Name() string {
	return c.core.Name()
}

// Calculate adapts progressChan into a ChannelObserver and runs
// CalculateWithObservers.
func (c *PiCalculator) Calculate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, digits uint64, opts Options) (*Result, error) {
	subject := NewProgressSubject()
	if progressChan != nil {
		subject.Register(NewChannelObserver(progressChan))
	}
	return c.CalculateWithObservers(ctx, subject, calcIndex, digits, opts)
}

// CalculateWithObservers runs the calculation and notifies every observer
// registered on subject. A nil subject discards progress.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - subject: The progress subject with registered observers.
//   - calcIndex: A unique index for the calculator instance.
//   - digits: The number of decimal digits after the point.
//   - opts: Configuration options for the calculation.
//
// Returns:
//   - *Result: The digits and calculation metadata.
//   - error: An error if one occurred.
func (c *PiCalculator) CalculateWithObservers(ctx context.Context, subject *ProgressSubject, calcIndex int, digits uint64, opts Options) (result *Result, err error) {
	algoName := c.core.Name()
	ctx, span := otel.Tracer("pi").Start(ctx, "Calculate", trace.WithAttributes(
		attribute.String("pi.algorithm", algoName),
		attribute.Int64("pi.digits", int64(digits)),
		attribute.Int64("pi.terms", int64(TermCount(digits))),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		calculationsTotal.WithLabelValues(algoName, status).Inc()
		calculationDuration.WithLabelValues(algoName).Observe(duration)

		log.Debug().
			Str("algo", algoName).
			Uint64("digits", digits).
			Float64("duration", duration).
			Str("status", status).
			Msg("calculation completed")
	}()

	var reporter ProgressReporter
	if subject != nil {
		reporter = subject.AsProgressReporter(calcIndex)
	} else {
		reporter = func(float64) {}
	}

	result, err = c.core.CalculateCore(ctx, reporter, digits, opts)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("pi.precision_bits", int(result.Precision)))
	if result.NearBoundary {
		nearBoundaryTotal.WithLabelValues(algoName).Inc()
		log.Warn().
			Str("algo", algoName).
			Uint64("digits", digits).
			Uint("precision", result.Precision).
			Uint64("terms", result.Terms).
			Msg("truncation fell close to an integer boundary; the last digit may be off by one, request more digits and truncate")
	}
	reporter(1.0)
	return result, nil
}
