// Package apierror defines the error taxonomy shared by the daemon, the
// client library and the CLI. Every failure that crosses the wire carries
// one of these codes so callers can distinguish validation errors from
// lookup failures without string matching.
package apierror

import (
	"errors"
	"fmt"
)

type Code int32

const (
	Success Code = iota
	Unknown
	InvalidMethod
	ContainerAlreadyExists
	ContainerDoesNotExist
	InvalidProperty
	InvalidValue
	InvalidState
	NotSupported
	Permission
	Busy
)

// Codes above 100 are client-side transport failures and never originate
// from the daemon.
const (
	SocketError Code = iota + 101
	SocketUnavailable
	SocketTimeout
)

var codeNames = map[Code]string{
	Success:                "Success",
	Unknown:                "Unknown",
	InvalidMethod:          "InvalidMethod",
	ContainerAlreadyExists: "ContainerAlreadyExists",
	ContainerDoesNotExist:  "ContainerDoesNotExist",
	InvalidProperty:        "InvalidProperty",
	InvalidValue:           "InvalidValue",
	InvalidState:           "InvalidState",
	NotSupported:           "NotSupported",
	Permission:             "Permission",
	Busy:                   "Busy",
	SocketError:            "SocketError",
	SocketUnavailable:      "SocketUnavailable",
	SocketTimeout:          "SocketTimeout",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("Code(%d)", int32(c))
}

type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the Code from err, or Unknown if err isn't an *Error.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	return Unknown
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
