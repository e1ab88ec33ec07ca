package headers

import (
	"strings"
)

// ParseHeaders converts "Key: Value" strings into a map. Entries without a
// colon or with an empty key are returned in rejected.
func ParseHeaders(h []string) (parsed map[string]string, rejected []string) {
	parsed = make(map[string]string)
	for _, hdr := range h {
		parts := strings.SplitN(hdr, ":", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			rejected = append(rejected, hdr)
			continue
		}
		parsed[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return parsed, rejected
}
