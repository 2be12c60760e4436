package jsonx

import (
	"bytes"
	"encoding/json"
)

// Parse validates that data is a single JSON value and returns it compacted
// onto a single line.
//
// Leading and trailing whitespace is permitted. The returned value never
// contains a newline, such that it can be written as one line of a
// newline-delimited stream.
func Parse(data []byte) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	return Compact(raw)
}

// Compact returns data with insignificant whitespace removed.
func Compact(data []byte) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
