package mcpbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ExchangeLogger is an interface for logging bridged exchanges.
type ExchangeLogger interface {
	// LogExchange logs about a message that was exchanged successfully for
	// the response res.
	LogExchange(ctx context.Context, req Message, res json.RawMessage)

	// LogError logs about a message that could not be exchanged. res is the
	// error response that was written in its place.
	LogError(ctx context.Context, req Message, res ErrorResponse)

	// LogWriterError logs about an error that occurred when attempting to
	// write an output line.
	LogWriterError(ctx context.Context, err error)
}

// ZapExchangeLogger is an implementation of ExchangeLogger using zap.Logger.
type ZapExchangeLogger struct {
	// Target is the destination for log messages.
	Target *zap.Logger
}

var _ ExchangeLogger = ZapExchangeLogger{}

// NewZapExchangeLogger returns an ExchangeLogger that writes to target.
func NewZapExchangeLogger(target *zap.Logger) ZapExchangeLogger {
	return ZapExchangeLogger{Target: target}
}

// LogExchange logs information about a successful exchange.
func (l ZapExchangeLogger) LogExchange(ctx context.Context, req Message, res json.RawMessage) {
	fields := requestFields(ctx, req)
	fields = append(fields, zap.Int("response_size", len(res)))

	l.Target.Info(
		describeMessage(req),
		fields...,
	)
}

// LogError logs information about an exchange that failed.
func (l ZapExchangeLogger) LogError(ctx context.Context, req Message, res ErrorResponse) {
	fields := requestFields(ctx, req)
	fields = append(
		fields,
		zap.Int("error_code", int(res.Error.Code)),
		zap.Stringer("error_kind", res.Kind()),
		zap.String("error", res.Error.Message),
	)

	if res.Cause != nil {
		if cause := causeOf(res.Cause); cause != nil && cause.Error() != res.Error.Message {
			fields = append(fields, zap.String("caused_by", cause.Error()))
		}
	}

	l.Target.Error(
		describeMessage(req),
		fields...,
	)
}

// LogWriterError logs about an error that occurred when attempting to write an
// output line.
func (l ZapExchangeLogger) LogWriterError(ctx context.Context, err error) {
	fields := []zap.Field{
		zap.String("error", err.Error()),
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		fields = append(fields, zap.String("trace_id", span.SpanContext().TraceID().String()))
	}

	l.Target.Error(
		"unable to write output line",
		fields...,
	)
}

// requestFields returns the log fields that describe req.
func requestFields(ctx context.Context, req Message) []zap.Field {
	fields := []zap.Field{
		zap.Int("request_size", req.Size),
	}

	if len(req.ID) != 0 {
		fields = append(fields, zap.ByteString("request_id", req.ID))
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		fields = append(fields, zap.String("trace_id", span.SpanContext().TraceID().String()))
	}

	return fields
}

// causeOf returns the error wrapped by err, if any.
func causeOf(err error) error {
	if e, ok := err.(interface{ Unwrap() error }); ok {
		return e.Unwrap()
	}

	return nil
}

// describeMessage returns the log message for an exchange of req.
func describeMessage(req Message) string {
	var w strings.Builder

	switch {
	case req.IsBatch:
		w.WriteString("batch")
	case req.Method == "":
		w.WriteString("exchange")
	case req.IsNotification():
		w.WriteString("notify ")
		writeMethod(&w, req.Method)
	default:
		w.WriteString("call ")
		writeMethod(&w, req.Method)
	}

	return w.String()
}

// writeMethod formats a JSON-RPC method name for display and writes it to w.
func writeMethod(w *strings.Builder, m string) {
	if !isMethodName(m) {
		fmt.Fprintf(w, "%#v", m)
	} else {
		w.WriteString(m)
	}
}

// isMethodName returns true if s consists of only letters, digits and the
// separators commonly used in method names, such as "tools/list".
func isMethodName(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			continue
		}

		switch r {
		case '/', '.', '_', '-':
			continue
		}

		return false
	}

	return s != ""
}
