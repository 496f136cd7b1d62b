package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/agbru/picalc/internal/digitspec"
	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/service"
	"github.com/agbru/picalc/pkg/models"
)

// handleHealth reports that the process is serving.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
		Version:   s.version,
	})
}

// handleAlgorithms lists the registered backends.
func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, models.AlgorithmsResponse{
		Algorithms: s.factory.List(),
		Default:    pi.DefaultAlgorithm,
	})
}

// handleCalculate serves GET /calculate?digits=<spec>&algo=<name>.
//
// Status codes:
//   - 200: the digits were computed
//   - 400: bad parameters, unknown backend or too many digits
//   - 504: the request timeout expired
//   - 500: any other calculation failure
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	digits, algo, err := parseCalculateParams(r)
	if err != nil {
		var parseErr CalculateParseError
		if errors.As(err, &parseErr) {
			s.writeErrorResponse(w, parseErr.StatusCode, parseErr.Message)
		} else {
			s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.service.Calculate(ctx, algo, digits)
	duration := time.Since(start)

	var unknown *pi.UnknownCalculatorError
	switch {
	case errors.Is(err, service.ErrMaxDigitsExceeded):
		s.writeErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Value of 'digits' exceeds the maximum allowed (%d).", s.maxDigits()))
		return
	case errors.As(err, &unknown):
		s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		s.logger.Error("calculation failed", err, logging.String("algorithm", algo), logging.Uint64("digits", digits))
	} else if result.NearBoundary {
		s.logger.Warn("result near a rounding boundary", logging.Uint64("digits", digits))
	}
	s.writeJSONResponse(w, status, service.NewCalculationResponse(algo, digits, result, duration, err))
}

// parseCalculateParams reads 'digits' (any digit specification) and the
// optional 'algo' query parameters.
func parseCalculateParams(r *http.Request) (digits uint64, algo string, err error) {
	query := r.URL.Query()
	spec := query.Get("digits")
	if spec == "" {
		return 0, "", CalculateParseError{
			Message:    "Missing 'digits' parameter",
			StatusCode: http.StatusBadRequest,
		}
	}

	digits, err = digitspec.Parse(spec, 0)
	if err != nil {
		return 0, "", CalculateParseError{
			Message:    fmt.Sprintf("Invalid 'digits' parameter: %v", err),
			StatusCode: http.StatusBadRequest,
		}
	}

	algo = query.Get("algo")
	if algo == "" {
		algo = pi.DefaultAlgorithm
	}
	return digits, algo, nil
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
