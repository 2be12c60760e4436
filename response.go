package mcpbridge

import (
	"encoding/json"
	"errors"
)

// JSONRPCVersion is the version that appears in the "jsonrpc" field of the
// error responses synthesized by the bridge.
const JSONRPCVersion = "2.0"

// nullRequestID is the request ID used in every synthesized error response.
//
// No attempt is made to correlate a failure with the ID of the message that
// caused it.
var nullRequestID = json.RawMessage(`null`)

// ErrorResponse is the JSON-RPC error response written in place of a
// response when a message can not be bridged.
type ErrorResponse struct {
	// Version is the JSON-RPC version. It is always "2.0".
	Version string `json:"jsonrpc"`

	// Error describes the failure.
	Error ErrorInfo `json:"error"`

	// RequestID is always the JSON null value.
	RequestID json.RawMessage `json:"id"`

	// Cause is the error that produced this response. It is never written to
	// the output stream.
	Cause error `json:"-"`
}

// NewErrorResponse returns the error response that reports err.
//
// If err is (or wraps) an *Error its message is used verbatim, otherwise
// err.Error() is used.
func NewErrorResponse(err error) ErrorResponse {
	res := ErrorResponse{
		Version:   JSONRPCVersion,
		RequestID: nullRequestID,
		Error: ErrorInfo{
			Code:    InternalErrorCode,
			Message: err.Error(),
		},
		Cause: err,
	}

	var bridgeErr *Error
	if errors.As(err, &bridgeErr) {
		res.Error.Code = bridgeErr.Code()
		res.Error.Message = bridgeErr.Message()
	}

	return res
}

// Kind returns the kind of the error that caused this response, or zero if the
// cause is not an *Error.
func (r ErrorResponse) Kind() ErrorKind {
	var bridgeErr *Error
	if errors.As(r.Cause, &bridgeErr) {
		return bridgeErr.Kind()
	}

	return 0
}

// ErrorInfo describes a JSON-RPC error. It is included in an ErrorResponse, but
// it is not a Go error.
type ErrorInfo struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e ErrorInfo) String() string {
	return describeError(e.Code, e.Message)
}
