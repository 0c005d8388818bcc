package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"

	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
)

const (
	defaultFolder    = "products"
	defaultFileName  = "file"
	maxFolderSegment = 64
)

type uploader interface {
	UploadPublic(ctx context.Context, object, contentType string, body io.Reader) (string, error)
}

// UploadInput is one image sent by the seller dashboard.
type UploadInput struct {
	Folder      string
	FileName    string
	ContentType string
	Body        io.Reader
}

// UploadOutput names the stored object and where it can be fetched.
type UploadOutput struct {
	Object string `json:"object"`
	URL    string `json:"url"`
}

// Service stores product images publicly.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
}

type service struct {
	uploader uploader
	maxBytes int64
	now      func() time.Time
}

// NewService builds an upload service; maxBytes caps the body size.
func NewService(u uploader, maxBytes int64) (Service, error) {
	if u == nil {
		return nil, fmt.Errorf("uploader required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{uploader: u, maxBytes: maxBytes, now: time.Now}, nil
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*UploadOutput, error) {
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file body is required")
	}
	contentType, err := sniffMimeType(input.ContentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid content type")
	}
	if _, ok := allowedImageTypes[contentType]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content type not allowed").
			WithDetails(map[string]any{"content_type": contentType, "allowed": allowedTypeList()})
	}

	folder, err := sanitizeFolder(input.Folder)
	if err != nil {
		return nil, err
	}
	object := ObjectName(folder, input.FileName, s.now())

	body := &limitedReader{r: input.Body, remaining: s.maxBytes}
	url, err := s.uploader.UploadPublic(ctx, object, contentType, body)
	if body.exceeded {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file too large").
			WithDetails(map[string]any{"max_bytes": s.maxBytes})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload file")
	}
	return &UploadOutput{Object: object, URL: url}, nil
}

// ObjectName places a file at {folder}/{unix-millis}_{name}.
func ObjectName(folder, fileName string, at time.Time) string {
	name := sanitizeFileName(fileName)
	if name == "" {
		name = defaultFileName
	}
	return fmt.Sprintf("%s/%d_%s", folder, at.UnixMilli(), name)
}

func sanitizeFolder(folder string) (string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return defaultFolder, nil
	}
	parts := strings.Split(folder, "/")
	for _, part := range parts {
		if part == "" || part == "." || part == ".." || len(part) > maxFolderSegment {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid upload path").
				WithDetails(pkgerrors.Field("path", "is invalid"))
		}
		for _, r := range part {
			if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
				return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid upload path").
					WithDetails(pkgerrors.Field("path", "is invalid"))
			}
		}
	}
	return strings.Join(parts, "/"), nil
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if clean == "" || clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}

// limitedReader fails the read once more than remaining bytes are consumed.
type limitedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.exceeded {
		return 0, errTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		l.exceeded = true
		return 0, errTooLarge
	}
	return n, err
}

var errTooLarge = fmt.Errorf("upload exceeds size limit")
