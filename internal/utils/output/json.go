package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// SaveJSON writes v to filepath as 4-space indented JSON. Non-ASCII text and
// HTML-sensitive characters are written as-is.
func SaveJSON(v interface{}, filepath string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath, err)
	}
	if err := os.WriteFile(filepath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath, err)
	}
	return nil
}
