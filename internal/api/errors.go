package api

import (
	"errors"
	"net/http"
)

var (
	errBodyTooLarge = errors.New("api: request body too large")
	errUnavailable  = errors.New("api: feature not configured")
)

// HTTPError carries the status and client-facing message for a failed
// request. Err is logged, never sent.
type HTTPError struct {
	Err     error
	Message string
	Code    string
	Details any
	Status  int
}

func (e *HTTPError) Error() string { return e.Message }
func (e *HTTPError) Unwrap() error { return e.Err }

func newHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func badRequest(message string, err error) *HTTPError {
	return newHTTPError(http.StatusBadRequest, "bad_request", message, err)
}

func unprocessable(message string, err error, details any) *HTTPError {
	e := newHTTPError(http.StatusUnprocessableEntity, "validation_failed", message, err)
	e.Details = details
	return e
}

func unavailable(feature string) *HTTPError {
	return newHTTPError(http.StatusServiceUnavailable, "unavailable", feature+" is not configured", errUnavailable)
}
