package fixtures

import (
	"context"
	"encoding/json"
)

// ExchangerStub is a test implementation of the mcpbridge.Exchanger interface.
type ExchangerStub struct {
	ExchangeFunc func(context.Context, json.RawMessage) (json.RawMessage, error)
}

// Exchange returns the result of calling s.ExchangeFunc, if set. Otherwise it
// echoes msg.
func (s *ExchangerStub) Exchange(ctx context.Context, msg json.RawMessage) (json.RawMessage, error) {
	if s.ExchangeFunc != nil {
		return s.ExchangeFunc(ctx, msg)
	}

	return msg, nil
}
