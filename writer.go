package mcpbridge

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
)

// LineWriter writes JSON values to a stream, one per line.
type LineWriter struct {
	w *bufio.Writer
}

// NewLineWriter returns a LineWriter that writes to w.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{
		w: bufio.NewWriter(w),
	}
}

// WriteResult writes a value that was produced by a successful exchange.
//
// v must already be compacted onto a single line.
func (w *LineWriter) WriteResult(v json.RawMessage) error {
	return w.writeLine(v)
}

// WriteError writes the error response produced by a failed exchange.
//
// Characters that are significant in HTML are not escaped, so the message
// appears as it was produced.
func (w *LineWriter) WriteError(res ErrorResponse) error {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(res); err != nil {
		// CODE COVERAGE: An ErrorResponse consists only of strings, integers
		// and a constant raw message, none of which can fail to marshal.
		panic(err)
	}

	return w.writeLine(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// writeLine writes data followed by a newline and flushes it to the
// underlying stream immediately.
func (w *LineWriter) writeLine(data []byte) error {
	if _, err := w.w.Write(data); err != nil {
		return err
	}

	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}

	return w.w.Flush()
}
