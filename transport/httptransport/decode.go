package httptransport

import (
	"bytes"
	"encoding/json"

	"github.com/dogmatiq/mcpbridge"
	"github.com/dogmatiq/mcpbridge/internal/jsonx"
)

var (
	// eventPrefix is the prefix that identifies a body framed as a
	// server-sent event.
	eventPrefix = []byte("event:")

	// dataPrefix is the prefix of the line within a server-sent event that
	// carries the event's payload.
	dataPrefix = []byte("data: ")
)

// DecodeBody decodes the JSON value carried by an HTTP response body.
//
// If the body begins with "event:" it is treated as a server-sent event and
// the payload of its first non-empty "data: " line is decoded. Otherwise, or if
// the event has no such line, the entire body is decoded as a JSON document.
//
// The returned value is compacted onto a single line. If the body can not be
// decoded the error is a *mcpbridge.Error of kind mcpbridge.DecodeErrorKind.
func DecodeBody(body []byte) (json.RawMessage, error) {
	if bytes.HasPrefix(body, eventPrefix) {
		if payload, ok := eventData(body); ok {
			v, err := jsonx.Parse(payload)
			if err != nil {
				return nil, mcpbridge.DecodeError(
					mcpbridge.WithMessage("invalid event data: %s", err),
					mcpbridge.WithCause(err),
				)
			}

			return v, nil
		}
	}

	v, err := jsonx.Parse(body)
	if err != nil {
		return nil, mcpbridge.DecodeError(
			mcpbridge.WithMessage("Invalid response: %s", body),
			mcpbridge.WithCause(err),
		)
	}

	return v, nil
}

// eventData returns the payload of the first "data: " line in an event stream
// that has a non-empty payload.
func eventData(body []byte) ([]byte, bool) {
	for _, line := range bytes.Split(body, []byte("\n")) {
		line = bytes.TrimSuffix(line, []byte("\r"))

		if payload, ok := bytes.CutPrefix(line, dataPrefix); ok && len(payload) != 0 {
			return payload, true
		}
	}

	return nil, false
}
