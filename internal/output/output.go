package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// Print writes v as indented JSON with lexicographically sorted object keys,
// followed by a newline. encoding/json sorts map keys on its own; the encoder
// also supplies the trailing newline.
func Print(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return nil
}
