package mcpbridge

import (
	"bufio"
	"io"
	"strings"
)

// LineReader reads newline-delimited lines of text from a stream.
type LineReader struct {
	r *bufio.Reader
}

// NewLineReader returns a LineReader that reads from r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		r: bufio.NewReader(r),
	}
}

// Next returns the next line, without its line terminator.
//
// Both "\n" and "\r\n" are accepted as line terminators. The final line of
// the stream is returned even if it is not terminated. There is no limit on
// the length of a line.
//
// It returns io.EOF once there are no more lines to read.
func (r *LineReader) Next() (string, error) {
	line, err := r.r.ReadString('\n')

	if err == io.EOF {
		if line == "" {
			return "", io.EOF
		}

		// The stream ended without a final line terminator. Deliver the line
		// now, the next call returns io.EOF.
		err = nil
	}

	if err != nil {
		return "", err
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	return line, nil
}
