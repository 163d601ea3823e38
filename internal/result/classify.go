package result

import (
	"errors"
	"net"
	"net/http"
)

// StatusCoder is implemented by errors that carry an HTTP status code.
// The remote data source wraps non-2xx responses in such an error so the
// classifier can apply the status table without importing the adapter.
type StatusCoder interface {
	HTTPStatus() int
}

// ClassifyStatus maps an HTTP status code to its error classification.
// canRetry is true exactly for 429 and the retryable 5xx family.
func ClassifyStatus(code int) (ErrorType, bool) {
	var errorType ErrorType
	switch {
	case code == http.StatusBadRequest:
		errorType = ErrorTypeClient
	case code == http.StatusUnauthorized:
		errorType = ErrorTypeAuthentication
	case code == http.StatusForbidden:
		errorType = ErrorTypeAuthorization
	case code == http.StatusTooManyRequests:
		errorType = ErrorTypeRateLimited
	case code >= 500 && code <= 599:
		errorType = ErrorTypeServer
	default:
		errorType = ErrorTypeUnknown
	}

	canRetry := false
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		canRetry = true
	}

	return errorType, canRetry
}

// ClassifyError maps a transport-level error to its classification.
// Host-unreachable, connect and timeout failures are network errors and
// retryable; errors carrying an HTTP status defer to ClassifyStatus;
// everything else is unknown and not retryable.
func ClassifyError(err error) (ErrorType, bool) {
	if err == nil {
		return ErrorTypeUnknown, false
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		return ClassifyStatus(sc.HTTPStatus())
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTypeNetwork, true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrorTypeNetwork, true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrorTypeNetwork, true
	}

	return ErrorTypeUnknown, false
}
