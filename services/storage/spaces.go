// Package storage uploads course media to S3-compatible object storage
// (DigitalOcean Spaces, MinIO or AWS S3).
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// ObjectStore is what handlers need from a storage backend
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// SpacesConfig holds configuration for the Spaces client
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string // host without scheme, e.g. nyc3.digitaloceanspaces.com
	CDNURL    string
}

// Enabled reports whether enough settings are present to talk to a bucket
func (c SpacesConfig) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// SpacesClient handles Spaces operations
type SpacesClient struct {
	s3Client s3iface.S3API
	bucket   string
	endpoint string
	cdnURL   string
}

// NewSpacesClient creates a new Spaces client
func NewSpacesClient(config SpacesConfig) (*SpacesClient, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(config.Endpoint, "https://"), "http://")
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s.digitaloceanspaces.com", config.Region)
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String("https://" + endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return newSpacesClient(s3.New(sess), config.Bucket, endpoint, config.CDNURL), nil
}

func newSpacesClient(api s3iface.S3API, bucket, endpoint, cdnURL string) *SpacesClient {
	return &SpacesClient{
		s3Client: api,
		bucket:   bucket,
		endpoint: endpoint,
		cdnURL:   strings.TrimSuffix(cdnURL, "/"),
	}
}

// Upload stores body under key as a public object and returns its URL
func (s *SpacesClient) Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return s.URL(key), nil
}

// Delete deletes an object
func (s *SpacesClient) Delete(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL returns the public URL for a key, preferring the CDN
func (s *SpacesClient) URL(key string) string {
	if s.cdnURL != "" {
		return fmt.Sprintf("%s/%s", s.cdnURL, key)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.endpoint, key)
}

// KeyFromURL recovers the object key from a URL produced by URL.
// URLs pointing elsewhere are reported as not ours.
func (s *SpacesClient) KeyFromURL(url string) (string, bool) {
	for _, prefix := range []string{s.cdnURL + "/", fmt.Sprintf("https://%s.%s/", s.bucket, s.endpoint)} {
		if prefix != "/" && strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix), true
		}
	}
	return "", false
}

// GenerateKey builds a unique object key under prefix, keeping the extension
func GenerateKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, base)
	return fmt.Sprintf("%s/%d_%s%s", prefix, time.Now().UnixNano(), base, ext)
}

// ImageContentType returns the MIME type for supported thumbnail formats
func ImageContentType(filename string) (string, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", true
	case ".png":
		return "image/png", true
	case ".webp":
		return "image/webp", true
	case ".gif":
		return "image/gif", true
	}
	return "", false
}
