package mcpbridge

import (
	"context"
	"encoding/json"
)

// An Exchanger performs a bridged exchange, wherein an inbound JSON-RPC
// message is "exchanged" for the JSON value that is written in response.
type Exchanger interface {
	// Exchange sends msg to the remote endpoint and returns the decoded
	// response.
	//
	// msg is always a single valid JSON value, compacted onto one line.
	//
	// If the exchange fails the error is reported to the client in an
	// ErrorResponse; it is never fatal to the bridge.
	Exchange(ctx context.Context, msg json.RawMessage) (json.RawMessage, error)
}

// ExchangerFunc is an adaptor that allows an ordinary function to be used as an
// Exchanger.
type ExchangerFunc func(context.Context, json.RawMessage) (json.RawMessage, error)

// Exchange returns fn(ctx, msg).
func (fn ExchangerFunc) Exchange(ctx context.Context, msg json.RawMessage) (json.RawMessage, error) {
	return fn(ctx, msg)
}
