// Package upload stores user-submitted images and returns public URLs.
// The production implementation writes to S3-compatible object storage;
// LocalUploader writes to a directory on disk for development.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Uploader persists an image and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, folder, filename, contentType string, data io.Reader) (string, error)
}

// S3Uploader stores objects in an S3-compatible bucket.
type S3Uploader struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

// NewS3Uploader creates an uploader for the given bucket. An empty
// endpoint uses AWS proper; otherwise the endpoint is used with
// path-style addressing, which most S3-compatible providers require.
func NewS3Uploader(endpoint, region, bucket, keyID, secret string) *S3Uploader {
	opts := s3.Options{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(keyID, secret, ""),
	}
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}

	return &S3Uploader{
		client:   s3.New(opts),
		bucket:   bucket,
		endpoint: endpoint,
	}
}

func (u *S3Uploader) Upload(ctx context.Context, folder, filename, contentType string, data io.Reader) (string, error) {
	key := objectKey(folder, filename)

	body, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %q to %q: %w", key, u.bucket, err)
	}

	if u.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", u.endpoint, u.bucket, key), nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", u.bucket, key), nil
}

// LocalUploader writes uploads under a base directory and serves them
// from the /uploads route.
type LocalUploader struct {
	baseDir string
}

func NewLocalUploader(baseDir string) (*LocalUploader, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %q: %w", baseDir, err)
	}
	return &LocalUploader{baseDir: baseDir}, nil
}

// Dir returns the directory uploads are written to.
func (u *LocalUploader) Dir() string {
	return u.baseDir
}

func (u *LocalUploader) Upload(_ context.Context, folder, filename, _ string, data io.Reader) (string, error) {
	key := objectKey(folder, filename)

	path := filepath.Join(u.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %q: %w", filepath.Dir(path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return "", fmt.Errorf("failed to write %q: %w", path, err)
	}

	return "/uploads/" + key, nil
}

// objectKey builds a collision-free key, keeping the original extension.
func objectKey(folder, filename string) string {
	ext := filepath.Ext(filename)
	return fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
}
