package servebyterange

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Code is an error code that mirrors the http status codes. Lookups return errors carrying a code so the handler
// can answer with the right status without knowing where the resource lives.
type Code int

const (
	CodeUnknown                      Code = 0
	CodeBadRequest                   Code = http.StatusBadRequest                   // RFC 9110, 15.5.1
	CodeForbidden                    Code = http.StatusForbidden                    // RFC 9110, 15.5.4
	CodeNotFound                     Code = http.StatusNotFound                     // RFC 9110, 15.5.5
	CodeMethodNotAllowed             Code = http.StatusMethodNotAllowed             // RFC 9110, 15.5.6
	CodeGone                         Code = http.StatusGone                         // RFC 9110, 15.5.11
	CodePreconditionFailed           Code = http.StatusPreconditionFailed           // RFC 9110, 15.5.13
	CodeRequestedRangeNotSatisfiable Code = http.StatusRequestedRangeNotSatisfiable // RFC 9110, 15.5.17

	CodeInternalServerError Code = http.StatusInternalServerError // RFC 9110, 15.6.1
	CodeBadGateway          Code = http.StatusBadGateway          // RFC 9110, 15.6.3
	CodeServiceUnavailable  Code = http.StatusServiceUnavailable  // RFC 9110, 15.6.4
	CodeGatewayTimeout      Code = http.StatusGatewayTimeout      // RFC 9110, 15.6.5
)

// Error describes an http error.
type Error struct {
	code Code
	err  error
}

// NewError inits a new error given the error code.
func NewError(c Code, underlying error) *Error {
	return &Error{c, underlying}
}

func (e *Error) Code() Code    { return e.code }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) Error() string {
	status := http.StatusText(int(e.Code()))
	if status == "" {
		status = "Unknown"
	}

	return fmt.Sprintf("%s: %s", status, e.err.Error())
}

// CodeOf returns the error's status code if it is or wraps an [*Error] and
// [CodeUnknown] otherwise.
func CodeOf(err error) Code {
	if httpErr, ok := asError(err); ok {
		return httpErr.Code()
	}
	return CodeUnknown
}

// asError uses errors.As to unwrap any error and look for an *Error.
func asError(err error) (*Error, bool) {
	var httpErr *Error
	ok := errors.As(err, &httpErr)
	return httpErr, ok
}

var (
	// ErrInvalidRange is wrapped by errors for ranges that do not fit the resource they are applied to.
	ErrInvalidRange = errors.New("invalid byte range")

	// ErrMalformedRange is returned by [ParseRange] when the header does not follow the bytes range grammar.
	// Such a header must be ignored and the whole resource served.
	ErrMalformedRange = errors.New("malformed range header")

	// ErrByteCountMismatch is matched by both [*RangeOverrunError] and [*RangeUnderrunError].
	ErrByteCountMismatch = errors.New("data source byte count mismatch")
)

// RangeOverrunError is reported when a data source writes more bytes than the range it was asked for.
type RangeOverrunError struct {
	Limit     int64
	Attempted int64
}

func (e *RangeOverrunError) Error() string {
	return fmt.Sprintf("data source attempted to write %d bytes into a range of %d bytes", e.Attempted, e.Limit)
}

func (e *RangeOverrunError) Is(target error) bool { return target == ErrByteCountMismatch }

// RangeUnderrunError is reported when a data source returns before writing the whole range.
type RangeUnderrunError struct {
	Limit   int64
	Written int64
}

func (e *RangeUnderrunError) Error() string {
	return fmt.Sprintf("data source wrote %d bytes into a range of %d bytes", e.Written, e.Limit)
}

func (e *RangeUnderrunError) Is(target error) bool { return target == ErrByteCountMismatch }
