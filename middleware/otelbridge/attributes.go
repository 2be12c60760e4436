package otelbridge

import (
	"strings"

	"github.com/dogmatiq/mcpbridge"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// errorKindKey is the attribute key that records the mcpbridge.ErrorKind of a
// failed exchange.
const errorKindKey = attribute.Key("mcpbridge.error.kind")

// commonAttributes returns the OpenTelemetry attributes that are recorded on
// every span and meter.
func commonAttributes(url string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.RPCSystemKey.String("jsonrpc"),
		semconv.RPCJsonrpcVersionKey.String(mcpbridge.JSONRPCVersion),
	}

	if url != "" {
		attrs = append(attrs, semconv.URLFull(url))
	}

	return attrs
}

// requestAttributes returns the OpenTelemetry attributes that describe req.
func requestAttributes(req mcpbridge.Message) []attribute.KeyValue {
	if req.Method == "" {
		return nil
	}

	return []attribute.KeyValue{
		semconv.RPCMethodKey.String(req.Method),
	}
}

// errorAttributes returns the OpenTelemetry attributes that describe a failed
// exchange.
func errorAttributes(err error) []attribute.KeyValue {
	res := mcpbridge.NewErrorResponse(err)

	return []attribute.KeyValue{
		semconv.RPCJsonrpcErrorCodeKey.Int(int(res.Error.Code)),
		errorKindKey.String(res.Kind().String()),
	}
}

// sanitizeRequestID returns a request ID suitable for use as a span attribute.
//
// As per semconv.RPCJsonrpcRequestIDKey it returns an empty string if the
// request ID is null.
func sanitizeRequestID(req mcpbridge.Message) string {
	requestID := string(req.ID)

	if strings.EqualFold(requestID, "null") {
		return ""
	}

	return strings.Trim(requestID, `"`)
}

// sanitizeMethodName returns an RPC method name suitable for use in part of
// span name.
func sanitizeMethodName(n string) string {
	return strings.ReplaceAll(n, "/", "-")
}
