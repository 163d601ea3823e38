package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business-level failures, NOT wire-level ones.
// The wire taxonomy (result.ErrorType) classifies transport outcomes; these
// errors name the business condition behind a failure and are mapped to
// user-facing behavior by the presentation layer.
//
// Sentinel errors for use with errors.Is().
var (
	// ErrInvalidToken indicates the authentication token is malformed or revoked.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrTokenExpired indicates the authentication token has expired.
	ErrTokenExpired = errors.New("authentication token has expired")

	// ErrInsufficientPermissions indicates the operation is not permitted.
	ErrInsufficientPermissions = errors.New("insufficient permissions")

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserBlocked indicates the target user has blocked the caller.
	ErrUserBlocked = errors.New("user is blocked")

	// ErrInvalidUserData indicates a user field failed validation.
	ErrInvalidUserData = errors.New("invalid user data")

	// ErrInvalidLocation indicates location data failed validation.
	ErrInvalidLocation = errors.New("invalid location data")

	// ErrLocationUnavailable indicates location services are not available.
	ErrLocationUnavailable = errors.New("location services not available")

	// ErrNetwork indicates a network connection failure.
	ErrNetwork = errors.New("network connection error")

	// ErrServer indicates an upstream server failure.
	ErrServer = errors.New("server error")

	// ErrTimeout indicates the request exceeded its deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrPrivacyViolation indicates privacy settings prevent the operation.
	ErrPrivacyViolation = errors.New("privacy settings prevent this operation")

	// ErrRateLimited indicates the caller sent too many requests.
	ErrRateLimited = errors.New("too many requests")

	// ErrDataNotFound indicates a requested entity is absent.
	ErrDataNotFound = errors.New("data not found")

	// ErrDataIntegrity indicates stored data is inconsistent or corrupt.
	ErrDataIntegrity = errors.New("data integrity error")
)

// NotFoundError provides context for missing-entity errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	if e.Entity == "user" {
		return ErrUserNotFound
	}

	return ErrDataNotFound
}

// NewUserNotFoundError creates a user-not-found error with context.
func NewUserNotFoundError(id string) error {
	return &NotFoundError{Entity: "user", ID: id}
}

// NewDataNotFoundError creates a missing-entity error with context.
func NewDataNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

// InvalidUserDataError provides context for user validation failures.
type InvalidUserDataError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *InvalidUserDataError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid user data for field %s: %s", e.Field, e.Message)
	}

	return "invalid user data for field: " + e.Field
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *InvalidUserDataError) Unwrap() error {
	return ErrInvalidUserData
}

// NewInvalidUserDataError creates a validation error with field context.
func NewInvalidUserDataError(field, message string) error {
	return &InvalidUserDataError{Field: field, Message: message}
}

// InvalidLocationError provides context for location validation failures.
type InvalidLocationError struct {
	Message string
}

// Error implements the error interface.
func (e *InvalidLocationError) Error() string {
	return "invalid location data: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *InvalidLocationError) Unwrap() error {
	return ErrInvalidLocation
}

// NewInvalidLocationError creates a location validation error with context.
func NewInvalidLocationError(message string) error {
	return &InvalidLocationError{Message: message}
}

// NetworkError wraps a transport failure with its cause.
type NetworkError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NetworkError) Unwrap() error {
	return ErrNetwork
}

// NewNetworkError creates a network error with its cause.
func NewNetworkError(message string, cause error) error {
	return &NetworkError{Message: message, Cause: cause}
}

// ServerError carries the upstream status code.
type ServerError struct {
	Code int
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %d", e.Code)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ServerError) Unwrap() error {
	return ErrServer
}

// NewServerError creates a server error with its status code.
func NewServerError(code int) error {
	return &ServerError{Code: code}
}

// IsUserNotFound checks if an error is a user-not-found error.
func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsInvalidUserData checks if an error is a user validation error.
func IsInvalidUserData(err error) bool {
	return errors.Is(err, ErrInvalidUserData)
}

// IsInvalidLocation checks if an error is a location validation error.
func IsInvalidLocation(err error) bool {
	return errors.Is(err, ErrInvalidLocation)
}

// IsNetwork checks if an error is a network error.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsRateLimited checks if an error is a rate-limit error.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
