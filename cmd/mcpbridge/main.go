// mcpbridge adapts a newline-delimited JSON-RPC stream on stdin and stdout to
// a streamable HTTP endpoint, such as an MCP server that does not provide a
// stdio transport.
//
// Each line read from stdin is sent to the endpoint in an HTTP POST request,
// and the JSON value in the response is written to stdout as a single line.
// Failures are reported in-band as JSON-RPC error responses.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dogmatiq/mcpbridge"
	"github.com/dogmatiq/mcpbridge/internal/version"
	"github.com/dogmatiq/mcpbridge/middleware/otelbridge"
	"github.com/dogmatiq/mcpbridge/transport/httptransport"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run runs the bridge until stdin is exhausted or ctx is canceled.
func run(
	ctx context.Context,
	args []string,
	stdin io.Reader,
	stdout, stderr io.Writer,
) error {
	cfg, err := loadConfig(args, stderr)
	if errors.Is(err, errHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	if cfg.ShowVersion {
		fmt.Fprintf(stdout, "mcpbridge %s\n", version.Version)
		return nil
	}

	logger := newLogger(cfg.Level, stderr)
	defer logger.Sync() //nolint:errcheck

	tracerProvider := otel.GetTracerProvider()

	if cfg.Trace {
		tp, err := newTracerProvider(stderr)
		if err != nil {
			return err
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Warn("unable to flush spans", zap.Error(err))
			}
		}()

		tracerProvider = tp
	}

	meterProvider := otel.GetMeterProvider()

	if cfg.Metrics {
		mp, err := newMeterProvider(stderr)
		if err != nil {
			return err
		}
		defer func() {
			if err := mp.Shutdown(context.Background()); err != nil {
				logger.Warn("unable to flush metrics", zap.Error(err))
			}
		}()

		meterProvider = mp
	}

	logger.Info(
		"bridging stdio to HTTP",
		zap.String("url", cfg.URL),
		zap.Duration("timeout", cfg.Timeout),
		zap.String("version", version.Version),
	)

	client := &httptransport.Client{
		URL:     cfg.URL,
		Timeout: cfg.Timeout,
		Logger:  logger.Named("http"),
	}

	exchanger := &otelbridge.Tracing{
		Next: &otelbridge.Metrics{
			Next:          client,
			MeterProvider: meterProvider,
			URL:           cfg.URL,
		},
		TracerProvider: tracerProvider,
		URL:            cfg.URL,
		CreateNewSpan:  true,
	}

	err = mcpbridge.Serve(
		ctx,
		exchanger,
		stdin,
		stdout,
		mcpbridge.WithZapLogger(logger),
	)

	if mcpbridge.IsCanceled(err) {
		logger.Info("shutting down", zap.Error(err))
		return nil
	}

	return err
}

// newLogger returns a logger that writes JSON log entries to w.
func newLogger(level zapcore.Level, w io.Writer) *zap.Logger {
	return zap.New(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			level,
		),
	)
}
