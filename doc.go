// Package mcpbridge bridges newline-delimited JSON-RPC messages, such as those
// used by the MCP stdio transport, to an Exchanger that delivers them
// elsewhere.
//
// Serve reads one message per line and writes exactly one line in response to
// each, either the JSON value produced by the Exchanger or an ErrorResponse
// describing why the message could not be exchanged.
package mcpbridge
