// Package apperr is the tagged error type carried through every layer,
// translated to an HTTP status and a safe public message exactly once,
// at the response boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error for HTTP-boundary translation.
type Kind string

const (
	Validation      Kind = "validation"
	NotFound        Kind = "not_found"
	Conflict        Kind = "conflict"
	PayloadTooLarge Kind = "payload_too_large"
	ExternalFailure Kind = "external_failure"
	Internal        Kind = "internal"
)

// Error is the tagged error type carried through every layer.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Constructors for the message-only kinds (Validation, NotFound,
// Conflict).
func NewValidation(message string) *Error { return newErr(Validation, message, nil) }
func NewNotFound(message string) *Error   { return newErr(NotFound, message, nil) }
func NewConflict(message string) *Error   { return newErr(Conflict, message, nil) }

// NewPayloadTooLarge reports an upload exceeding the configured
// max_file_size; it surfaces as 413 rather than a generic 400.
func NewPayloadTooLarge(message string) *Error { return newErr(PayloadTooLarge, message, nil) }

// NewExternalFailure wraps an upstream (ASR/diarization/LLM/transcoder)
// failure.
func NewExternalFailure(message string, cause error) *Error {
	return newErr(ExternalFailure, message, cause)
}

// NewInternal wraps an unexpected internal failure.
func NewInternal(message string, cause error) *Error {
	return newErr(Internal, message, cause)
}

// StatusCode maps an error's Kind to the HTTP status it should surface
// as. Unrecognized errors (not an *Error) map to 500.
func StatusCode(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case Validation:
			return http.StatusBadRequest
		case NotFound:
			return http.StatusNotFound
		case Conflict:
			return http.StatusConflict
		case PayloadTooLarge:
			return http.StatusRequestEntityTooLarge
		case ExternalFailure:
			return http.StatusServiceUnavailable
		case Internal:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message safe to send to a client: the
// tagged message for known errors, a generic string for anything else
// so internal error text never leaks.
func PublicMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}
