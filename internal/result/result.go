// Package result defines the tagged outcome type used at every data-layer
// boundary. A Result carries either success data or a classified failure with
// retryability metadata; no raw error crosses from the data layer into the
// presentation layer.
package result

import (
	"time"
)

// ErrorType categorizes a failure for retry eligibility and user-facing
// messaging. The set is closed; classification lives in classify.go.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeNetwork
	ErrorTypeAuthentication
	ErrorTypeAuthorization
	ErrorTypeServer
	ErrorTypeClient
	ErrorTypeValidation
	ErrorTypeTimeout
	ErrorTypeRateLimited
)

// String returns a stable name for logging and metrics.
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeAuthentication:
		return "authentication"
	case ErrorTypeAuthorization:
		return "authorization"
	case ErrorTypeServer:
		return "server"
	case ErrorTypeClient:
		return "client"
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Metadata records operation details for every outcome.
type Metadata struct {
	// Timestamp is when the outcome was produced.
	Timestamp time.Time

	// Operation names the originating call, e.g. "getUsers".
	Operation string

	// Duration is how long the operation took, zero if not measured.
	Duration time.Duration

	// CacheHit is true when the data came from the local cache.
	CacheHit bool
}

// Result is the outcome of a fallible operation: either success data or a
// classified failure. A Result is constructed once and never mutated.
type Result[T any] struct {
	data T
	ok   bool

	err        error
	errorType  ErrorType
	canRetry   bool
	retryAfter time.Duration

	meta Metadata
}

// Ok constructs a success result.
func Ok[T any](data T) Result[T] {
	return Result[T]{data: data, ok: true, meta: Metadata{Timestamp: time.Now()}}
}

// OkMeta constructs a success result with explicit metadata.
// A zero metadata timestamp is filled in with the current time.
func OkMeta[T any](data T, meta Metadata) Result[T] {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	return Result[T]{data: data, ok: true, meta: meta}
}

// Fail constructs a failure result with its classification.
func Fail[T any](err error, errorType ErrorType, canRetry bool) Result[T] {
	return Result[T]{
		err:       err,
		errorType: errorType,
		canRetry:  canRetry,
		meta:      Metadata{Timestamp: time.Now()},
	}
}

// FailMeta constructs a failure result with explicit metadata.
func FailMeta[T any](err error, errorType ErrorType, canRetry bool, meta Metadata) Result[T] {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	return Result[T]{err: err, errorType: errorType, canRetry: canRetry, meta: meta}
}

// FailAfter constructs a rate-limit style failure carrying a retry-after hint.
func FailAfter[T any](err error, errorType ErrorType, retryAfter time.Duration) Result[T] {
	r := Fail[T](err, errorType, true)
	r.retryAfter = retryAfter
	return r
}

// IsOk reports whether the result carries success data.
func (r Result[T]) IsOk() bool { return r.ok }

// IsErr reports whether the result carries a failure.
func (r Result[T]) IsErr() bool { return !r.ok }

// Value returns the success data and whether it is present.
func (r Result[T]) Value() (T, bool) { return r.data, r.ok }

// MustValue returns the success data, panicking on a failure result.
// Intended for tests and places where IsOk was already checked.
func (r Result[T]) MustValue() T {
	if !r.ok {
		panic("result: MustValue called on failure: " + r.err.Error())
	}
	return r.data
}

// ValueOr returns the success data or the given fallback.
func (r Result[T]) ValueOr(fallback T) T {
	if r.ok {
		return r.data
	}
	return fallback
}

// Err returns the failure cause, nil for success results.
func (r Result[T]) Err() error { return r.err }

// ErrorType returns the failure classification. Only meaningful when IsErr.
func (r Result[T]) ErrorType() ErrorType { return r.errorType }

// CanRetry reports whether the caller may sensibly retry the operation.
// Only meaningful alongside ErrorType.
func (r Result[T]) CanRetry() bool { return r.canRetry }

// RetryAfter returns the server-suggested retry delay, zero if none.
func (r Result[T]) RetryAfter() time.Duration { return r.retryAfter }

// WithRetryAfter returns a copy of the result carrying a server-suggested
// retry delay.
func (r Result[T]) WithRetryAfter(d time.Duration) Result[T] {
	r.retryAfter = d
	return r
}

// Meta returns the operation metadata.
func (r Result[T]) Meta() Metadata { return r.meta }

// WithMeta returns a copy of the result with the given metadata attached.
func (r Result[T]) WithMeta(meta Metadata) Result[T] {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	r.meta = meta
	return r
}

// Map transforms the success data of a result, passing failures through with
// their classification and metadata intact.
func Map[T, U any](r Result[T], transform func(T) U) Result[U] {
	if !r.ok {
		return Result[U]{
			err:        r.err,
			errorType:  r.errorType,
			canRetry:   r.canRetry,
			retryAfter: r.retryAfter,
			meta:       r.meta,
		}
	}
	return Result[U]{data: transform(r.data), ok: true, meta: r.meta}
}

// MapErr rebuilds a failure result under a new payload type. It panics when
// called on a success result; use Map for the general case.
func MapErr[T, U any](r Result[T]) Result[U] {
	if r.ok {
		panic("result: MapErr called on success result")
	}
	return Result[U]{
		err:        r.err,
		errorType:  r.errorType,
		canRetry:   r.canRetry,
		retryAfter: r.retryAfter,
		meta:       r.meta,
	}
}
