package server

import "github.com/agbru/picalc/pkg/models"

// Response is the body of a /calculate reply.
type Response = models.CalculationResponse

// ErrorResponse is the body of every error reply.
type ErrorResponse = models.ErrorResponse

// CalculateParseError is a query-parameter error with its HTTP status.
type CalculateParseError struct {
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e CalculateParseError) Error() string {
	return e.Message
}
