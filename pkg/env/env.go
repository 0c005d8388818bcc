package env

import (
	"os"
	"strings"
)

// First returns the first non-blank value among keys, or fallback. Prefixed
// VITRINE_ keys are listed ahead of the platform names they override.
func First(fallback string, keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return fallback
}
