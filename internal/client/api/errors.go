package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for API call outcomes. Callers match them with errors.Is;
// everything except ErrUnauthorized is passed through to the caller without
// any retry or reinterpretation.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrUnavailable  = errors.New("server unavailable")
)

// errorBody is the error payload the Snipper API returns for failed calls.
type errorBody struct {
	Message string `json:"message"`
}

// statusError maps an HTTP status to its sentinel, keeping the
// server-supplied message in the error chain when there is one.
func statusError(status int, message string) error {
	var base error
	switch {
	case status == 401:
		base = ErrUnauthorized
	case status == 403:
		base = ErrForbidden
	case status == 404:
		base = ErrNotFound
	case status >= 500:
		base = ErrServer
	default:
		base = fmt.Errorf("unexpected status %d", status)
	}
	if message == "" {
		return base
	}
	return fmt.Errorf("%s: %w", message, base)
}
