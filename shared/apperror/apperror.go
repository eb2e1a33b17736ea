package apperror

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/samber/oops"
)

// Kind classifies an error for the transport layer.
type Kind uint8

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindUnauthorized
	KindForbidden
	KindNotFound
)

// Error is the only error type usecases hand to the transport layer.
// Message is safe to show to the caller; Err carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to an HTTP status code.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Internal wraps a collaborator failure. The message is what the caller sees.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

const internalMessage = "Internal Server Error"

// From returns err as an *Error, degrading anything unclassified to Internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(internalMessage, err)
}

// Log writes err to logger, adding the oops code and context when err carries them.
func Log(logger *zerolog.Logger, msg string, err error) {
	event := logger.Error().Err(err)

	if oopsErr, ok := oops.AsOops(err); ok {
		if code := oopsErr.Code(); code != nil {
			event = event.Interface("code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			event = event.Fields(ctx)
		}
	}

	event.Msg(msg)
}
