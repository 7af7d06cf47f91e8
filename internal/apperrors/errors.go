package apperrors

import (
	"errors"
	"net/http"
)

// Validation errors are detected before any upstream call is made.
// They are always reported to the caller with status 422.
var (
	// ErrMissingParameter indicates that a required date parameter is empty or missing.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrMalformedDate indicates that a date does not match YYYY-MM-DD or is out of bounds.
	ErrMalformedDate = errors.New("malformed date")

	// ErrRangeInverted indicates that the start of a range lies after its end.
	ErrRangeInverted = errors.New("date range inverted")

	// ErrRangeTooLong indicates that a range spans more days than allowed.
	ErrRangeTooLong = errors.New("date range too long")
)

// Upstream errors describe how a single call to the reports API failed.
var (
	// ErrMissingCredential indicates that the API key is missing or was rejected.
	ErrMissingCredential = errors.New("missing credential")

	// ErrForbidden indicates that the API key lacks permission for the report.
	ErrForbidden = errors.New("forbidden")

	// ErrUpstreamRejected indicates that the reports API rejected the date.
	ErrUpstreamRejected = errors.New("upstream rejected request")

	// ErrUpstreamUnavailable indicates a transport failure, including timeouts.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUpstreamStatus indicates any other non-200 status from the reports API.
	ErrUpstreamStatus = errors.New("upstream error status")

	// ErrUpstreamBadResponse indicates a body that could not be read or decoded.
	ErrUpstreamBadResponse = errors.New("upstream bad response")
)

// ValidationError carries a user-facing message for a rejected query parameter.
type ValidationError struct {
	Kind    error
	Message string
}

// NewValidationError creates a ValidationError of the given kind.
func NewValidationError(kind error, message string) *ValidationError {
	return &ValidationError{Kind: kind, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// StatusCode is the HTTP status reported for every validation failure.
func (e *ValidationError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

// FetchError is the result of a failed upstream fetch for one day.
// StatusCode and Message are surfaced to the caller verbatim.
type FetchError struct {
	Kind    error
	Status  int
	Message string
	// Cause is the underlying transport or decoding error, if any. It is logged, never returned to clients.
	Cause error
}

// NewFetchError creates a FetchError of the given kind.
func NewFetchError(kind error, status int, message string, cause error) *FetchError {
	return &FetchError{Kind: kind, Status: status, Message: message, Cause: cause}
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Kind
}

// StatusCode returns the HTTP status associated with the failure.
func (e *FetchError) StatusCode() int {
	return e.Status
}
