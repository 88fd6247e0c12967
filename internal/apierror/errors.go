// Package apierror carries the uniform error envelope returned by every
// layer below the HTTP boundary. The boundary maps Status onto the HTTP
// response; everything else only wraps and annotates.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindExternal   Kind = "external"
	KindBadRequest Kind = "bad_request"
	KindInternal   Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

func Wrap(err error, kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return New(KindNotFound, http.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, http.StatusConflict, message)
}

func BadRequest(message string) *Error {
	return New(KindBadRequest, http.StatusBadRequest, message)
}

func Internal(err error, message string) *Error {
	return Wrap(err, KindInternal, http.StatusInternalServerError, message)
}

func External(err error, message string) *Error {
	return Wrap(err, KindExternal, http.StatusBadGateway, message)
}

// UnknownFilterField rejects filter criteria outside the allow-list. This is
// a programmer error, never user input, so it maps to 500.
func UnknownFilterField(field string) *Error {
	return New(KindInternal, http.StatusInternalServerError,
		fmt.Sprintf("unknown filter criterion (%s)", field))
}

// StatusOf extracts the HTTP status from an error chain, defaulting to 500.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}
