package clients

import (
	"context"
	"errors"
	"time"

	"github.com/guildradar/core/internal/result"
)

// Execute runs fn against the platform API and converts its outcome into a
// classified Result. The metadata carries the operation name and wall-clock
// duration of the attempt.
func Execute[T any](ctx context.Context, operation string, fn func(ctx context.Context) (T, error)) result.Result[T] {
	start := time.Now()

	value, err := fn(ctx)

	meta := result.Metadata{
		Timestamp: start,
		Operation: operation,
		Duration:  time.Since(start),
	}

	if err != nil {
		return classifyFailure[T](err, meta)
	}

	return result.OkMeta(value, meta)
}

// classifyFailure maps transport-layer errors onto error types. The circuit
// breaker sentinel counts as a retryable network failure: the upstream may
// recover before the caller tries again.
func classifyFailure[T any](err error, meta result.Metadata) result.Result[T] {
	switch {
	case errors.Is(err, ErrCircuitOpen):
		return result.FailMeta[T](err, result.ErrorTypeNetwork, true, meta)

	case errors.Is(err, context.DeadlineExceeded):
		return result.FailMeta[T](err, result.ErrorTypeTimeout, true, meta)

	case errors.Is(err, context.Canceled):
		return result.FailMeta[T](err, result.ErrorTypeUnknown, false, meta)
	}

	errorType, canRetry := result.ClassifyError(err)
	res := result.FailMeta[T](err, errorType, canRetry, meta)

	// Surface a server-provided Retry-After hint when one rode in on the error.
	var hinted interface{ RetryAfterHint() time.Duration }
	if errors.As(err, &hinted) {
		if d := hinted.RetryAfterHint(); d > 0 {
			res = res.WithRetryAfter(d)
		}
	}

	return res
}
