package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthorized           = errors.New("authentication required")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidFileFormat      = errors.New("invalid file format")
	ErrFileTooLarge           = errors.New("file exceeds the 10 MB limit")
	ErrNotFound               = errors.New("not found")
	ErrProtectedSection       = errors.New("the Problem Statement section cannot be deleted")
	ErrUpstreamRateLimited    = errors.New("rate limit exceeded, please try again later")
	ErrUpstreamQuotaExhausted = errors.New("AI credits exhausted, please add credits")
	ErrUpstreamUnavailable    = errors.New("AI service unavailable")
	ErrMissingConfiguration   = errors.New("AI service is not configured")
	ErrPersistence            = errors.New("failed to save changes")
	ErrRateLimited            = errors.New("too many requests")
	ErrSessionClosed          = errors.New("editing session was closed, reload the project")
)

// Invalid wraps ErrInvalidInput with a caller-facing detail.
func Invalid(detail string) error {
	return &detailError{kind: ErrInvalidInput, detail: detail}
}

type detailError struct {
	kind   error
	detail string
}

func (e *detailError) Error() string { return e.detail }
func (e *detailError) Unwrap() error { return e.kind }

type mapping struct {
	kind   error
	status int
}

var table = []mapping{
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrInvalidFileFormat, http.StatusBadRequest},
	{ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{ErrNotFound, http.StatusNotFound},
	{ErrProtectedSection, http.StatusConflict},
	{ErrUpstreamRateLimited, http.StatusTooManyRequests},
	{ErrUpstreamQuotaExhausted, http.StatusPaymentRequired},
	{ErrUpstreamUnavailable, http.StatusBadGateway},
	{ErrMissingConfiguration, http.StatusInternalServerError},
	{ErrPersistence, http.StatusInternalServerError},
	{ErrRateLimited, http.StatusTooManyRequests},
	{ErrSessionClosed, http.StatusConflict},
}

// Status maps an error to the HTTP status and the message shown to the user.
// Unknown errors become a generic 500 so internal detail never leaks.
func Status(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var de *detailError
	if errors.As(err, &de) {
		return statusOf(de.kind), de.detail
	}

	for _, m := range table {
		if errors.Is(err, m.kind) {
			return m.status, m.kind.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}

func statusOf(kind error) int {
	for _, m := range table {
		if errors.Is(kind, m.kind) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// IsUpstream reports whether err came from the language-model gateway.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstreamRateLimited) ||
		errors.Is(err, ErrUpstreamQuotaExhausted) ||
		errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrMissingConfiguration)
}
