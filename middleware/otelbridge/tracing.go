package otelbridge

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dogmatiq/mcpbridge"
	"github.com/dogmatiq/mcpbridge/internal/version"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName is the name of the OpenTelemetry instrumentation scope
// used for both tracing and metrics.
const instrumentationName = "github.com/dogmatiq/mcpbridge/middleware/otelbridge"

// Tracing is an implementation of mcpbridge.Exchanger that provides
// OpenTelemetry tracing for each bridged exchange.
//
// It adheres to the OpenTelemetry RPC semantic conventions for JSON-RPC as far
// as the bridge can know them; it does not validate the messages it forwards.
type Tracing struct {
	// Next is the next exchanger in the middleware stack.
	Next mcpbridge.Exchanger

	// TracerProvider is the OpenTelemetry TracerProvider to use for creating
	// spans.
	TracerProvider trace.TracerProvider

	// URL is the URL of the remote endpoint, recorded as an attribute of the
	// span. It may be empty, in which case it is omitted.
	URL string

	// CreateNewSpan controls whether a new span is created for each exchange,
	// or attributes are added to an existing span found in the context.
	CreateNewSpan bool

	once       sync.Once
	tracer     trace.Tracer
	attributes []attribute.KeyValue
}

var _ mcpbridge.Exchanger = (*Tracing)(nil)

// Exchange forwards msg to the next exchanger within a tracing span.
func (t *Tracing) Exchange(ctx context.Context, msg json.RawMessage) (json.RawMessage, error) {
	t.init()

	req := mcpbridge.InspectMessage(msg)
	name := spanName(req)

	var span trace.Span

	if t.CreateNewSpan {
		ctx, span = t.tracer.Start(
			ctx,
			name,
			trace.WithSpanKind(trace.SpanKindClient),
		)
		defer span.End()
	} else {
		span = trace.SpanFromContext(ctx)
		span.SetName(name)
	}

	span.SetAttributes(t.attributes...)
	span.SetAttributes(requestAttributes(req)...)

	if len(req.ID) != 0 {
		span.SetAttributes(
			semconv.RPCJsonrpcRequestIDKey.String(sanitizeRequestID(req)),
		)
	}

	res, err := t.Next.Exchange(ctx, msg)
	if err != nil {
		span.SetAttributes(errorAttributes(err)...)
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return res, err
}

// init initializes the tracer if it has not already been initialized.
func (t *Tracing) init() {
	t.once.Do(func() {
		t.tracer = t.TracerProvider.Tracer(
			instrumentationName,
			trace.WithInstrumentationVersion(version.Version),
		)

		t.attributes = commonAttributes(t.URL)
	})
}

// spanName returns the name of the span that represents the exchange of req.
func spanName(req mcpbridge.Message) string {
	switch {
	case req.IsBatch:
		return "mcpbridge/batch"
	case req.Method == "":
		return "mcpbridge"
	default:
		return "mcpbridge/" + sanitizeMethodName(req.Method)
	}
}
