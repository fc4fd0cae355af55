// Package errors defines the error kinds shared by the strip, its outputs
// and the API adapters, and maps them to HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidInput marks a rejected property value or request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOutputUnavailable marks an output driver that could not be opened.
	ErrOutputUnavailable = errors.New("output unavailable")
)

// InvalidInputf returns a formatted error wrapping ErrInvalidInput.
func InvalidInputf(format string, args ...any) error {
	return kindf(ErrInvalidInput, format, args...)
}

// OutputUnavailablef returns a formatted error wrapping ErrOutputUnavailable.
func OutputUnavailablef(format string, args ...any) error {
	return kindf(ErrOutputUnavailable, format, args...)
}

func kindf(kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}

// IsInvalidInput reports whether err wraps ErrInvalidInput.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsOutputUnavailable reports whether err wraps ErrOutputUnavailable.
func IsOutputUnavailable(err error) bool {
	return errors.Is(err, ErrOutputUnavailable)
}

// HTTPStatus maps an error to the status code API handlers should return.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsInvalidInput(err):
		return http.StatusBadRequest
	case IsOutputUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
