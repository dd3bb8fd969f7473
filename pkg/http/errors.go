package http

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine readable codes carried by AppError.
const (
	CodeInternal    = "ERR_INTERNAL"
	CodeNotFound    = "ERR_NOT_FOUND"
	CodeUpstream    = "ERR_UPSTREAM"
	CodeRateLimited = "ERR_RATE_LIMITED"
)

// AppError is an error that knows the HTTP status and code it is served with.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// Errorf builds an AppError with a formatted client-facing message.
func Errorf(status int, code, format string, a ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, a...), Status: status}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Wrap attaches the cause. It is logged, never sent to the client.
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// ErrorRule maps errors matching Target (errors.Is) to a response.
type ErrorRule struct {
	Target  error
	Status  int
	Code    string
	Message string
}

// ErrorTable translates domain errors into AppErrors. Rules are tried in order.
type ErrorTable []ErrorRule

// Map returns the AppError for err. Unmatched errors become a 500.
func (t ErrorTable) Map(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, r := range t {
		if errors.Is(err, r.Target) {
			return Errorf(r.Status, r.Code, "%s", r.Message).Wrap(err)
		}
	}
	return Errorf(http.StatusInternalServerError, CodeInternal, "request failed").Wrap(err)
}
