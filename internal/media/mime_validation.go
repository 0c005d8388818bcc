package media

import (
	"fmt"
	"mime"
	"sort"
	"strings"
)

var allowedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/webp": {},
	"image/gif":  {},
}

func allowedTypeList() string {
	list := make([]string, 0, len(allowedImageTypes))
	for value := range allowedImageTypes {
		list = append(list, value)
	}
	sort.Strings(list)
	return strings.Join(list, ", ")
}

func sniffMimeType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("mime type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime type invalid: %w", err)
	}
	if mediaType == "" {
		return "", fmt.Errorf("mime type missing")
	}
	return strings.ToLower(mediaType), nil
}
