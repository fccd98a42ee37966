package apiclient

import (
	"errors"
	"net/http"
	"strings"
)

// Sentinels for errors.Is. Every failed call matches exactly one of them.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidationFailed   = errors.New("validation failed")
	ErrBadRequest         = errors.New("bad request")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// APIError is the common part of every typed failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

type NotFoundError struct {
	*APIError
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationFailedError carries one "field: message" entry per rejected field
// when the server sent a structured list.
type ValidationFailedError struct {
	*APIError
	Details []string
}

func (e *ValidationFailedError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

func (e *ValidationFailedError) Is(target error) bool { return target == ErrValidationFailed }

type BadRequestError struct {
	*APIError
}

func (e *BadRequestError) Is(target error) bool { return target == ErrBadRequest }

// ServiceUnavailableError covers transport failures, 429 and 5xx answers. Err is
// the transport error when there was one.
type ServiceUnavailableError struct {
	*APIError
	Err error
}

func (e *ServiceUnavailableError) Is(target error) bool { return target == ErrServiceUnavailable }

func (e *ServiceUnavailableError) Unwrap() error { return e.Err }

func newNotFound(msg string) error {
	return &NotFoundError{APIError: &APIError{Status: http.StatusNotFound, Message: msg}}
}

func newValidationFailed(msg string, details []string) error {
	return &ValidationFailedError{
		APIError: &APIError{Status: http.StatusUnprocessableEntity, Message: msg},
		Details:  details,
	}
}

// newBadRequest covers 400 and every other 4xx without a dedicated type
// (401, 403, 409, ...). Status keeps the real code.
func newBadRequest(status int, msg string) error {
	return &BadRequestError{APIError: &APIError{Status: status, Message: msg}}
}

// newThrottled reports a 429. It is transient, so callers treat it like an
// outage and may retry later.
func newThrottled(msg string) error {
	return &ServiceUnavailableError{
		APIError: &APIError{Status: http.StatusTooManyRequests, Message: "Rate limited: " + msg},
	}
}

func newUnavailable(msg string, cause error) error {
	return &ServiceUnavailableError{
		APIError: &APIError{Status: http.StatusServiceUnavailable, Message: msg},
		Err:      cause,
	}
}
