package instance

import (
	"os"
	"strings"
)

// GetID names the running process for logs: DYNO on Heroku, then the hostname.
func GetID() string {
	if id := strings.TrimSpace(os.Getenv("DYNO")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
