package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies service failures; handlers turn it into a status code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnprocessable
	KindUnavailable
)

// StatusCode is the single place where kinds become HTTP statuses.
func (k ErrorKind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is returned by every service operation that fails for a reason the
// client should see. Details carries field or patch errors.
type Error struct {
	Kind    ErrorKind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Сентинелы для errors.Is поверх *Error.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token values provided")
	ErrStorageDisabled    = errors.New("logo storage is not configured")
)

func validationError(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func notFoundError(message string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: message, Err: err}
}

func conflictError(message string, err error) *Error {
	e := &Error{Kind: KindConflict, Message: message, Err: err}
	if err != nil {
		e.Details = []string{err.Error()}
	}
	return e
}

func unauthorizedError(message string, err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: message, Err: err}
}

func unprocessableError(message string, details ...string) *Error {
	return &Error{Kind: KindUnprocessable, Message: message, Details: details}
}

func internalError(err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: "An error occurred while processing your request.",
		Details: []string{err.Error()},
		Err:     err,
	}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}
