// Package clients provides the resilient HTTP client used to reach the
// platform API: retry with backoff and jitter, circuit breaking, and
// result classification.
package clients

import (
	"errors"
	"fmt"
)

// Client errors represent failures in the HTTP client layer.
// These are distinct from domain errors - they represent infrastructure failures
// that should be translated to domain errors by the calling code.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	// This indicates the downstream service is unhealthy and requests are being blocked.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded is returned after all retry attempts have been exhausted.
	// The original error is wrapped for context.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// StatusError is the terminal error for a 5xx response that survived the
// retry loop. It carries the status code so classification can apply the
// status table instead of falling back to unknown.
type StatusError struct {
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d", e.Code)
}

// HTTPStatus implements result.StatusCoder.
func (e *StatusError) HTTPStatus() int {
	return e.Code
}
