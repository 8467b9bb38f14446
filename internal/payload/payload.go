package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prodcat-hq/catctl/internal/apperror"
)

// Stdin is the sentinel file argument meaning "read the payload from stdin".
const Stdin = "-"

// Load resolves the request payload for one invocation. A file argument wins
// over inline data; with neither, the payload is an empty object. Numbers are
// decoded as json.Number so query-parameter rendering keeps their exact form.
func Load(data, file string, stdin io.Reader) (any, error) {
	var raw []byte
	switch {
	case file != "":
		b, err := readFile(file, stdin)
		if err != nil {
			return nil, err
		}
		raw = b
	case data != "":
		raw = []byte(data)
	default:
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, apperror.Usagef("invalid JSON payload: %v", err)
	}
	if dec.More() {
		return nil, apperror.Usagef("invalid JSON payload: trailing data after value")
	}
	return value, nil
}

func readFile(file string, stdin io.Reader) ([]byte, error) {
	if file == Stdin {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, apperror.Usagef("read payload file: %v", err)
	}
	return b, nil
}

// NormalizeQuery rewrites empty (falsy) values in a GET payload to empty
// strings so they survive query encoding instead of being dropped. Boolean
// false is an explicit value and is left alone.
func NormalizeQuery(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		if _, isBool := v.(bool); !isBool && IsEmpty(v) {
			out[k] = ""
			continue
		}
		out[k] = v
	}
	return out
}

// IsEmpty reports whether a decoded JSON value is empty in the falsy sense:
// null, false, empty string, numeric zero, or an empty array/object.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
