package otelbridge

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dogmatiq/mcpbridge"
	"github.com/dogmatiq/mcpbridge/internal/version"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics is an implementation of mcpbridge.Exchanger that provides
// OpenTelemetry metrics for each bridged exchange.
type Metrics struct {
	// Next is the next exchanger in the middleware stack.
	Next mcpbridge.Exchanger

	// MeterProvider is the OpenTelemetry MeterProvider used to create meters.
	MeterProvider metric.MeterProvider

	// URL is the URL of the remote endpoint, recorded as an attribute of each
	// measurement. It may be empty, in which case it is omitted.
	URL string

	once       sync.Once
	exchanges  metric.Int64Counter
	errors     metric.Int64Counter
	duration   metric.Int64Histogram
	attributes []attribute.KeyValue
}

var _ mcpbridge.Exchanger = (*Metrics)(nil)

// Exchange forwards msg to the next exchanger, recording the number of
// exchanges, their duration and the number that fail.
func (m *Metrics) Exchange(ctx context.Context, msg json.RawMessage) (json.RawMessage, error) {
	m.init()

	attrs := requestAttributes(mcpbridge.InspectMessage(msg))
	attrs = append(attrs, m.attributes...)
	attrOption := metric.WithAttributes(attrs...)

	m.exchanges.Add(ctx, 1, attrOption)

	start := time.Now()
	res, err := m.Next.Exchange(ctx, msg)
	elapsed := time.Since(start)

	m.duration.Record(ctx, durationToMillis(elapsed), attrOption)

	if err != nil {
		attrs = append(attrs, errorAttributes(err)...)
		m.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	return res, err
}

// init initializes the instruments if they have not already been initialized.
func (m *Metrics) init() {
	m.once.Do(func() {
		meter := m.MeterProvider.Meter(
			instrumentationName,
			metric.WithInstrumentationVersion(version.Version),
		)

		var err error

		m.exchanges, err = meter.Int64Counter(
			"mcpbridge.exchanges",
			metric.WithDescription("The number of messages sent to the remote endpoint."),
			metric.WithUnit("1"),
		)
		if err != nil {
			panic(err)
		}

		m.errors, err = meter.Int64Counter(
			"mcpbridge.errors",
			metric.WithDescription("The number of messages that could not be exchanged with the remote endpoint."),
			metric.WithUnit("1"),
		)
		if err != nil {
			panic(err)
		}

		m.duration, err = meter.Int64Histogram(
			"mcpbridge.duration",
			metric.WithDescription("The amount of time it takes the remote endpoint to respond to each message."),
			metric.WithUnit("ms"),
		)
		if err != nil {
			panic(err)
		}

		m.attributes = commonAttributes(m.URL)
	})
}

// durationToMillis converts a duration to milliseconds.
func durationToMillis(d time.Duration) int64 {
	return int64(d / time.Millisecond)
}
