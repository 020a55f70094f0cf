// Package protocol defines the wire format spoken on the daemon's control
// socket: newline-delimited JSON frames, one request and one response per
// round trip.
package protocol

import (
	"errors"

	"github.com/corraldev/corral/internal/apierror"
)

const (
	MethodCreate      = "Create"
	MethodFind        = "Find"
	MethodDestroy     = "Destroy"
	MethodList        = "List"
	MethodSetProperty = "SetProperty"
	MethodGetProperty = "GetProperty"
	MethodReload      = "Reload"
	MethodVersion     = "Version"
)

type Request struct {
	Method   string `json:"method"`
	Name     string `json:"name,omitempty"`
	Property string `json:"property,omitempty"`
	Value    string `json:"value,omitempty"`
	Discard  bool   `json:"discard,omitempty"`
}

type WireError struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

type Response struct {
	Error *WireError `json:"error,omitempty"`
	Value string     `json:"value,omitempty"`
	Names []string   `json:"names,omitempty"`
}

// ErrorResponse encodes err into a response frame, preserving a typed code
// when err carries one.
func ErrorResponse(err error) Response {
	message := err.Error()

	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		message = apiErr.Message
	}

	return Response{
		Error: &WireError{
			Code:    int32(apierror.CodeOf(err)),
			Message: message,
		},
	}
}

// Err converts a received response back into a typed error, or nil on
// success.
func (r *Response) Err() error {
	if r.Error == nil || apierror.Code(r.Error.Code) == apierror.Success {
		return nil
	}

	return apierror.New(apierror.Code(r.Error.Code), r.Error.Message)
}
