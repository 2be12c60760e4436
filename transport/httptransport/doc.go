// Package httptransport provides the HTTP side of the bridge.
//
// Each message is sent to a streamable HTTP endpoint by making an HTTP POST
// request. The endpoint may respond with either a plain JSON document or a
// single server-sent event that carries one. The session identifier issued by
// the endpoint is captured and sent with every subsequent request.
package httptransport
