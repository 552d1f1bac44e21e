// Package apperr classifies service errors so handlers can map them to HTTP
// status codes without knowing where they came from.
package apperr

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrInvalid      = errors.New("invalid request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error carries a client-facing message and the kind it belongs to.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

func Invalid(msg string) error      { return &Error{kind: ErrInvalid, msg: msg} }
func Unauthorized(msg string) error { return &Error{kind: ErrUnauthorized, msg: msg} }
func Forbidden(msg string) error    { return &Error{kind: ErrForbidden, msg: msg} }
func NotFound(msg string) error     { return &Error{kind: ErrNotFound, msg: msg} }
func Conflict(msg string) error     { return &Error{kind: ErrConflict, msg: msg} }

// Status maps err to an HTTP status. Unclassified errors are 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case mongo.IsDuplicateKeyError(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show a client.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	if mongo.IsDuplicateKeyError(err) {
		return "Duplicate value"
	}
	return "Internal server error"
}

// IsClassified reports whether err has a known kind, meaning it does not
// need to be logged as a server fault.
func IsClassified(err error) bool {
	return Status(err) != http.StatusInternalServerError
}
