package mcpbridge

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/dogmatiq/mcpbridge/internal/jsonx"
	"go.uber.org/zap"
)

// Serve bridges the newline-delimited JSON-RPC messages read from r to e,
// writing one line to w for each non-blank line read.
//
// Lines are processed strictly in order; each exchange completes and its
// output line is written before the next line is read. Blank lines are
// ignored. A line that is not valid JSON is reported with an ErrorResponse
// without calling e, as is any error returned by e.
//
// It returns nil when r is exhausted. It returns ctx.Err() if ctx is canceled
// while waiting for the next line or between lines, or an error if reading
// from r or writing to w fails. An exchange that is already in progress when
// ctx is canceled still produces its output line.
//
// A read from r that is blocked when ctx is canceled is abandoned, not
// interrupted. It completes in the background once r yields data or fails.
func Serve(
	ctx context.Context,
	e Exchanger,
	r io.Reader,
	w io.Writer,
	options ...ServeOption,
) error {
	opts := serveOptions{
		Logger: NewZapExchangeLogger(zap.NewNop()),
	}

	for _, opt := range options {
		opt(&opts)
	}

	lines := newLineFeed(NewLineReader(r))
	defer lines.Close()

	lw := NewLineWriter(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := lines.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		if err := serveLine(ctx, e, line, lw, opts.Logger); err != nil {
			return err
		}
	}
}

// lineFeed reads lines from a LineReader on a separate goroutine, such that
// waiting for the next line can be abandoned when a context is canceled.
//
// Lines are only read on request, so no line is read before the previous one
// has been served.
type lineFeed struct {
	requests chan struct{}
	results  chan lineResult
}

// lineResult is the outcome of a single call to LineReader.Next().
type lineResult struct {
	Line string
	Err  error
}

// newLineFeed starts a goroutine that reads from r each time a line is
// requested.
func newLineFeed(r *LineReader) *lineFeed {
	f := &lineFeed{
		requests: make(chan struct{}),
		results:  make(chan lineResult, 1),
	}

	go func() {
		for range f.requests {
			line, err := r.Next()
			f.results <- lineResult{line, err}

			if err != nil {
				return
			}
		}
	}()

	return f
}

// Next returns the next line, or ctx.Err() if ctx is canceled first.
//
// It must not be called again after it returns an error.
func (f *lineFeed) Next(ctx context.Context) (string, error) {
	select {
	case f.requests <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-f.results:
		return res.Line, res.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the reading goroutine once any read in progress completes.
func (f *lineFeed) Close() {
	close(f.requests)
}

// serveLine performs the exchange for a single non-blank line and writes its
// output line.
func serveLine(
	ctx context.Context,
	e Exchanger,
	line string,
	w *LineWriter,
	logger ExchangeLogger,
) error {
	msg, err := jsonx.Parse([]byte(line))
	if err != nil {
		return writeError(
			ctx,
			w,
			logger,
			Message{Size: len(line)},
			ParseError(WithCause(err)),
		)
	}

	req := InspectMessage(msg)

	result, err := e.Exchange(ctx, msg)
	if err != nil {
		return writeError(ctx, w, logger, req, err)
	}

	if err := w.WriteResult(result); err != nil {
		logger.LogWriterError(ctx, err)
		return err
	}

	logger.LogExchange(ctx, req, result)

	return nil
}

// writeError writes the error response for err.
func writeError(
	ctx context.Context,
	w *LineWriter,
	logger ExchangeLogger,
	req Message,
	err error,
) error {
	res := NewErrorResponse(err)

	if err := w.WriteError(res); err != nil {
		logger.LogWriterError(ctx, err)
		return err
	}

	logger.LogError(ctx, req, res)

	return nil
}

// ServeOption is an option that changes the behavior of Serve().
type ServeOption func(*serveOptions)

// serveOptions is the set of options that control Serve().
type serveOptions struct {
	Logger ExchangeLogger
}

// WithExchangeLogger is a ServeOption that sets the logger used to record each
// exchange.
func WithExchangeLogger(l ExchangeLogger) ServeOption {
	return func(opts *serveOptions) {
		opts.Logger = l
	}
}

// WithZapLogger is a ServeOption that records each exchange using a
// ZapExchangeLogger that writes to logger.
func WithZapLogger(logger *zap.Logger) ServeOption {
	return WithExchangeLogger(NewZapExchangeLogger(logger))
}

// IsCanceled returns true if err indicates that an exchange was abandoned
// because its context was canceled or its deadline was exceeded.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
