package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	// MaxResponseBodySize is the maximum response body size read from a remote API (1MB).
	MaxResponseBodySize = 1 << 20

	// maxSnippetLen bounds how much of a body is echoed into error messages.
	maxSnippetLen = 200
)

// ErrBodyTooLarge is returned by ReadBody when the body exceeds MaxResponseBodySize.
var ErrBodyTooLarge = fmt.Errorf("response body too large (max %d bytes)", MaxResponseBodySize)

// ReadBody reads the whole body up to MaxResponseBodySize and closes it.
func ReadBody(body io.ReadCloser) ([]byte, error) {
	defer func() {
		_ = body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(body, MaxResponseBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > MaxResponseBodySize {
		return nil, ErrBodyTooLarge
	}
	return data, nil
}

// DecodeJSON decodes exactly one JSON value from data.
// Unknown fields are accepted; remote APIs add fields without notice.
func DecodeJSON[T any](data []byte) (T, error) {
	var zeroValue T

	decoder := json.NewDecoder(bytes.NewReader(data))

	var v T
	if err := decoder.Decode(&v); err != nil {
		var syntaxErr *json.SyntaxError
		var unmarshalErr *json.UnmarshalTypeError

		switch {
		case errors.As(err, &syntaxErr):
			return zeroValue, fmt.Errorf("malformed JSON at position %d", syntaxErr.Offset)
		case errors.As(err, &unmarshalErr):
			return zeroValue, fmt.Errorf("invalid value for field %q", unmarshalErr.Field)
		case errors.Is(err, io.EOF):
			return zeroValue, errors.New("response body is empty")
		case errors.Is(err, io.ErrUnexpectedEOF):
			return zeroValue, errors.New("malformed JSON: unexpected end of input")
		default:
			return zeroValue, fmt.Errorf("failed to decode JSON: %w", err)
		}
	}

	// Ensure there's no additional data after the JSON value
	if decoder.More() {
		return zeroValue, errors.New("response body contains multiple JSON values")
	}

	return v, nil
}

// Snippet returns a single-line, length-bounded rendering of body for logs
// and error messages.
func Snippet(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if len(s) <= maxSnippetLen {
		return s
	}
	cut := maxSnippetLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
