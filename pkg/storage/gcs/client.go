package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"

	"github.com/angelmondragon/vitrine-backend/pkg/config"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
)

const (
	pingTimeout   = 5 * time.Second
	publicReadACL = "publicRead"
	publicHost    = "https://storage.googleapis.com"
)

type Client struct {
	svc           *storage.Service
	defaultBucket string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient builds the JSON API client from explicit credentials or ADC and checks the bucket.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	opts := []option.ClientOption{option.WithScopes(storage.DevstorageReadWriteScope)}
	switch {
	case gcp.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case gcp.ApplicationCredentials != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}

	client, err := newClient(ctx, cfg.BucketName, opts...)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}
	return client, nil
}

func newClient(ctx context.Context, bucket string, opts ...option.ClientOption) (*Client, error) {
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage service: %w", err)
	}
	return &Client{svc: svc, defaultBucket: bucket}, nil
}

func (c *Client) DefaultBucket() string {
	if c == nil {
		return ""
	}
	return c.defaultBucket
}

func (c *Client) Close() error {
	return nil
}

// Ping reads the bucket metadata (requires storage.buckets.get).
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.svc == nil {
		return errors.New("gcs client not initialized")
	}
	if c.defaultBucket == "" {
		return errors.New("gcs bucket not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := c.svc.Buckets.Get(c.defaultBucket).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gcs bucket check failed: %w", err)
	}
	return nil
}

// UploadPublic stores body under object in the default bucket with a public-read
// ACL and returns the object's public URL.
func (c *Client) UploadPublic(ctx context.Context, object, contentType string, body io.Reader) (string, error) {
	if c == nil || c.svc == nil {
		return "", errors.New("gcs client not initialized")
	}
	object = strings.TrimLeft(object, "/")
	if object == "" {
		return "", errors.New("object name is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.svc.Objects.
		Insert(c.defaultBucket, &storage.Object{Name: object, ContentType: contentType}).
		Media(body, googleapi.ContentType(contentType)).
		PredefinedAcl(publicReadACL).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	return c.PublicURL(object), nil
}

// PublicURL is the anonymous download URL for an object in the default bucket.
func (c *Client) PublicURL(object string) string {
	segments := strings.Split(strings.TrimLeft(object, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return publicHost + "/" + c.DefaultBucket() + "/" + strings.Join(segments, "/")
}

// IsNotFound reports whether err is a 404 from the storage API.
func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == 404
}
