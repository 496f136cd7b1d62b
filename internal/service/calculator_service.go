// Package service validates π requests and runs them on a registered
// backend. It is shared by the HTTP server and the JSON output of the CLI.
package service

//go:generate mockgen -source=calculator_service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/agbru/picalc/internal/config"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/pkg/models"
)

// ErrMaxDigitsExceeded is returned when a request asks for more digits than
// the service allows.
var ErrMaxDigitsExceeded = errors.New("maximum digit count exceeded")

// Service runs π calculations.
type Service interface {
	// Calculate computes digits fractional digits of π with the named
	// backend.
	Calculate(ctx context.Context, algoName string, digits uint64) (*pi.Result, error)
}

// CalculatorService implements Service on top of a CalculatorFactory.
type CalculatorService struct {
	factory   pi.CalculatorFactory
	config    config.AppConfig
	maxDigits uint64
}

var _ Service = (*CalculatorService)(nil)

// NewCalculatorService creates a service. A maxDigits of 0 only enforces
// the precision limit of the configured margin.
func NewCalculatorService(factory pi.CalculatorFactory, cfg config.AppConfig, maxDigits uint64) *CalculatorService {
	return &CalculatorService{
		factory:   factory,
		config:    cfg,
		maxDigits: maxDigits,
	}
}

// MaxDigits returns the effective per-request limit.
func (s *CalculatorService) MaxDigits() uint64 {
	limit := pi.MaxDigits(s.config.MarginBits)
	if s.maxDigits > 0 && s.maxDigits < limit {
		return s.maxDigits
	}
	return limit
}

// Calculate checks the digit limit, resolves the backend and runs it with
// the configured options. Progress is not reported.
func (s *CalculatorService) Calculate(ctx context.Context, algoName string, digits uint64) (*pi.Result, error) {
	if digits > s.MaxDigits() {
		return nil, ErrMaxDigitsExceeded
	}

	calc, err := s.factory.Get(algoName)
	if err != nil {
		return nil, err
	}
	return calc.Calculate(ctx, nil, 0, digits, s.config.ToCalculationOptions())
}

// NewCalculationResponse converts the outcome of a calculation into its
// wire form.
func NewCalculationResponse(algo string, digits uint64, result *pi.Result, duration time.Duration, err error) models.CalculationResponse {
	resp := models.CalculationResponse{
		Digits:          digits,
		Algorithm:       algo,
		Duration:        duration.String(),
		DurationSeconds: duration.Seconds(),
		Terms:           pi.TermCount(digits),
	}
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	if result != nil {
		resp.Result = result.String()
		resp.Terms = result.Terms
		resp.PrecisionBits = result.Precision
		resp.NearBoundary = result.NearBoundary
	}
	return resp
}
