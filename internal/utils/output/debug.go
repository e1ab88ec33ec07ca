package output

import (
	"fmt"
	"os"
)

// DumpDebug writes at most limit characters of html to filepath for offline
// inspection. Truncation never splits a multi-byte character.
func DumpDebug(html string, limit int, filepath string) error {
	if err := os.WriteFile(filepath, []byte(truncateRunes(html, limit)), 0644); err != nil {
		return fmt.Errorf("failed to write debug dump: %w", err)
	}
	return nil
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
