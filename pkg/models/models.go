// Package models defines the JSON wire types shared by the HTTP server and
// the --json output of the command-line tool.
package models

// CalculationResponse is the result of one π calculation.
type CalculationResponse struct {
	// Digits is the number of fractional digits requested.
	Digits uint64 `json:"digits"`
	// Algorithm is the backend that produced the result.
	Algorithm string `json:"algorithm"`
	// Result is "3." followed by Digits digits. Omitted on error.
	Result string `json:"result,omitempty"`
	// Duration is the formatted execution time.
	Duration string `json:"duration"`
	// DurationSeconds is the execution time in seconds.
	DurationSeconds float64 `json:"duration_seconds"`
	// Terms is the number of series terms summed.
	Terms uint64 `json:"terms,omitempty"`
	// PrecisionBits is the working precision of the realization.
	PrecisionBits uint `json:"precision_bits,omitempty"`
	// NearBoundary is set when the truncated value lies close enough to
	// an integer boundary that the last digit may be off by one.
	NearBoundary bool `json:"near_boundary,omitempty"`
	// Error is the failure message, if any.
	Error string `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	// Error is the HTTP status text.
	Error string `json:"error"`
	// Message describes the failure.
	Message string `json:"message,omitempty"`
}

// AlgorithmsResponse lists the registered backends.
type AlgorithmsResponse struct {
	Algorithms []string `json:"algorithms"`
	Default    string   `json:"default"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Version   string `json:"version,omitempty"`
}
