package mcpbridge

import (
	"bytes"
	"encoding/json"
)

// Message holds the parts of an inbound JSON-RPC message that are of
// interest when logging or tracing an exchange.
//
// The bridge forwards messages verbatim; a Message is never used to validate
// or alter them.
type Message struct {
	// Method is the name of the RPC method, if the message is a request.
	Method string

	// ID is the raw request ID, or nil if the message has no "id" field.
	ID json.RawMessage

	// Size is the size of the message, in bytes.
	Size int

	// IsBatch is true if the message is a JSON array, that is, a batch of
	// JSON-RPC requests.
	IsBatch bool
}

// InspectMessage returns information about the JSON-RPC message in data.
//
// It does its best to extract the method name and request ID. Any value that
// is not a JSON object, including a batch of requests, yields a Message with
// only its size populated.
func InspectMessage(data json.RawMessage) Message {
	m := Message{
		Size:    len(data),
		IsBatch: isBatch(data),
	}

	var fields struct {
		Method string          `json:"method"`
		ID     json.RawMessage `json:"id"`
	}

	if err := json.Unmarshal(data, &fields); err == nil {
		m.Method = fields.Method
		m.ID = fields.ID
	}

	return m
}

// IsNotification returns true if m is a request that does not expect a
// response.
func (m Message) IsNotification() bool {
	return m.Method != "" && m.ID == nil
}

// isBatch returns true if data is a JSON array.
func isBatch(data json.RawMessage) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	return len(data) != 0 && data[0] == '['
}
