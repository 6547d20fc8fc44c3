// Package domainerrors carries the error taxonomy shared by services and
// transport. Services attach a Code to every error they surface; handlers map
// the Code to a status without inspecting messages.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies the class of a domain error.
type Code string

const (
	CodeInvalidArgument    Code = "invalid_argument"
	CodeBadRequest         Code = "bad_request"
	CodeInvariantViolation Code = "invariant_violation"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeCancelled          Code = "cancelled"
	CodeTimeout            Code = "timeout"
	CodeUnauthorized       Code = "unauthorized"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal_error"
)

// Error is a coded error. Err, when set, is the underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without a cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error. A nil err yields nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the outermost domain code in the chain, or CodeInternal when
// the chain carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost domain error in err's chain has code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == code
}

// MessageOf returns the message of the outermost domain error, without the cause.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
