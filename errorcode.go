package mcpbridge

import "fmt"

// ErrorCode is the JSON-RPC error code carried by an ErrorResponse.
type ErrorCode int

// InternalErrorCode is the JSON-RPC "internal error" code.
//
// Every failure the bridge reports in-band uses this code, regardless of its
// ErrorKind. The ErrorKind is available to logs and telemetry only.
const InternalErrorCode ErrorCode = -32603

// String returns a brief description of the error code.
func (c ErrorCode) String() string {
	if c == InternalErrorCode {
		return "internal error"
	}

	return "unknown error"
}

// describeError returns a short string containing the most useful information
// from an error code and a message.
//
// The description of the code is omitted for codes the bridge never produces.
func describeError(code ErrorCode, message string) string {
	switch {
	case message == "" || message == code.String():
		return fmt.Sprintf("[%d] %s", code, code)
	case code == InternalErrorCode:
		return fmt.Sprintf("[%d] %s: %s", code, code, message)
	default:
		return fmt.Sprintf("[%d] %s", code, message)
	}
}
