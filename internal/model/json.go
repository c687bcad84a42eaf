package model

import (
	"bytes"
	"encoding/json"
	"io"
)

// WriteJSON encodes v to w without HTML escaping, so operators such as
// "<<" and "&&" appear literally. pretty indents with two spaces.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// MarshalJSON is WriteJSON into a byte slice, without the trailing newline.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, v, false); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func marshalString(s string) ([]byte, error) {
	return MarshalJSON(s)
}
