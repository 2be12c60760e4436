package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/dogmatiq/mcpbridge"
	"github.com/elnormous/contenttype"
	"go.uber.org/zap"
)

// DefaultURL is the URL of the endpoint used when none is configured.
const DefaultURL = "http://localhost:3010/mcp"

// SessionIDHeader is the HTTP header that carries the session identifier in
// both directions.
const SessionIDHeader = "Mcp-Session-Id"

var (
	// jsonMediaType is the MIME media-type of request bodies, and of plain JSON
	// response bodies.
	jsonMediaType = contenttype.NewMediaType("application/json")

	// eventStreamMediaType is the MIME media-type of response bodies framed as
	// server-sent events.
	eventStreamMediaType = contenttype.NewMediaType("text/event-stream")

	// acceptHeader is the value of the "Accept" header sent with each request.
	acceptHeader = jsonMediaType.String() + ", " + eventStreamMediaType.String()
)

// Client is an implementation of mcpbridge.Exchanger that sends each message
// to a streamable HTTP endpoint.
type Client struct {
	// HTTPClient is the HTTP client used to make requests. If it is nil,
	// http.DefaultClient is used.
	HTTPClient *http.Client

	// URL is the URL of the endpoint. If it is empty, DefaultURL is used.
	URL string

	// Session is the session shared by all exchanges performed by the client.
	// If it is nil, the client uses a session of its own.
	Session *Session

	// Timeout is the maximum amount of time to wait for each HTTP exchange to
	// complete, including reading the response body. A value of zero means
	// there is no timeout.
	Timeout time.Duration

	// Logger is the target for debug messages about each HTTP exchange. If it
	// is nil, nothing is logged.
	Logger *zap.Logger

	session Session
}

var _ mcpbridge.Exchanger = (*Client)(nil)

// Exchange sends msg to the endpoint and returns the JSON value carried by its
// response.
//
// If the response carries a session identifier it becomes the identifier sent
// with subsequent requests. The HTTP status code is not interpreted; any
// response body that can be decoded is returned as the result.
func (c *Client) Exchange(ctx context.Context, msg json.RawMessage) (json.RawMessage, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	session := c.currentSession()

	httpRes, err := c.post(ctx, msg, session)
	if err != nil {
		return nil, mcpbridge.TransportError(mcpbridge.WithCause(err))
	}
	defer httpRes.Body.Close()

	if session.Update(httpRes.Header.Get(SessionIDHeader)) {
		id, _ := session.ID()
		c.logger().Debug(
			"session identifier updated",
			zap.String("session_id", id),
		)
	}

	body, err := io.ReadAll(httpRes.Body)
	if err != nil {
		return nil, mcpbridge.TransportError(mcpbridge.WithCause(err))
	}

	mt := responseMediaType(httpRes)
	c.logger().Debug(
		"received HTTP response",
		zap.Int("status_code", httpRes.StatusCode),
		zap.String("content_type", mt.String()),
		zap.Int("body_size", len(body)),
	)

	return DecodeBody(body)
}

// post sends msg to the endpoint as the body of an HTTP POST request.
func (c *Client) post(
	ctx context.Context,
	msg json.RawMessage,
	session *Session,
) (*http.Response, error) {
	url := c.URL
	if url == "" {
		url = DefaultURL
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewReader(msg),
	)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", jsonMediaType.String())
	httpReq.Header.Set("Accept", acceptHeader)

	if id, ok := session.ID(); ok {
		httpReq.Header.Set(SessionIDHeader, id)
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	return hc.Do(httpReq)
}

// currentSession returns the session to use for the next exchange.
func (c *Client) currentSession() *Session {
	if c.Session != nil {
		return c.Session
	}

	return &c.session
}

// logger returns the logger to use for debug messages.
func (c *Client) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}

	return zap.NewNop()
}

// responseMediaType returns the media-type of the HTTP response body.
//
// Only the JSON and event stream media-types are recognized, any other value
// yields an empty media-type.
func responseMediaType(httpRes *http.Response) contenttype.MediaType {
	mt := contenttype.NewMediaType(httpRes.Header.Get("Content-Type"))

	switch {
	case mt.Matches(jsonMediaType):
		return jsonMediaType
	case mt.Matches(eventStreamMediaType):
		return eventStreamMediaType
	default:
		return contenttype.MediaType{}
	}
}
