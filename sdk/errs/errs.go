// Package errs provides coded errors that carry an HTTP status and the
// source location where they were created.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrCode is an application error category.
type ErrCode struct {
	value  int
	name   string
	status int
}

// Value returns the numeric code.
func (ec ErrCode) Value() int { return ec.value }

// String returns the code name.
func (ec ErrCode) String() string { return ec.name }

// MarshalText implements encoding.TextMarshaler.
func (ec ErrCode) MarshalText() ([]byte, error) {
	return []byte(ec.name), nil
}

var (
	OK                 = ErrCode{value: 0, name: "ok", status: http.StatusOK}
	InvalidArgument    = ErrCode{value: 3, name: "invalid_argument", status: http.StatusBadRequest}
	NotFound           = ErrCode{value: 5, name: "not_found", status: http.StatusNotFound}
	FailedPrecondition = ErrCode{value: 9, name: "failed_precondition", status: http.StatusPreconditionFailed}
	Internal           = ErrCode{value: 13, name: "internal", status: http.StatusInternalServerError}
	Unavailable        = ErrCode{value: 14, name: "unavailable", status: http.StatusServiceUnavailable}

	// InternalOnlyLog is logged with full detail but reported to the client
	// as a plain Internal error.
	InternalOnlyLog = ErrCode{value: 17, name: "internal_only_log", status: http.StatusInternalServerError}
)

// Error is an error with a code, safe to encode back to a client.
type Error struct {
	Code     ErrCode `json:"code"`
	Message  string  `json:"message"`
	FuncName string  `json:"-"`
	FileName string  `json:"-"`
}

// New wraps err with code, recording the caller's location.
func New(code ErrCode, err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)
	return &Error{
		Code:     code,
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Newf builds an Error from a format string, recording the caller's location.
func Newf(code ErrCode, format string, v ...any) *Error {
	pc, filename, line, _ := runtime.Caller(1)
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, v...),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Encode implements web.Encoder.
func (e *Error) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

// HTTPStatus maps the code onto an HTTP status.
func (e *Error) HTTPStatus() int {
	if e.Code.status == 0 {
		return http.StatusInternalServerError
	}
	return e.Code.status
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}
