// Package gcs stores and retrieves raw uploaded files in Google Cloud
// Storage. Uploaded CSVs keep their original bytes so a failed import can
// be replayed.
package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Storage is the surface the upload and job layers depend on. The
// interface exists so tests can swap in a fake.
type Storage interface {
	UploadBytes(ctx context.Context, objectName string, data []byte) (string, error)
	Fetch(ctx context.Context, gcsURI string) ([]byte, error)
}

// Service talks to one GCS bucket. It assumes Application Default
// Credentials are configured.
type Service struct {
	client *storage.Client
	bucket string
}

func NewService(ctx context.Context, bucket string) (*Service, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewService: create storage client: %w", err)
	}
	return &Service{client: client, bucket: bucket}, nil
}

func (s *Service) Close() error {
	return s.client.Close()
}

// UploadBytes writes data under objectName and returns the gs:// URI.
func (s *Service) UploadBytes(ctx context.Context, objectName string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("UploadBytes: write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("UploadBytes: finalize upload: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

// UploadLocalFile streams a file from disk into the bucket. Used by the
// import CLI; the HTTP path goes through UploadBytes.
func (s *Service) UploadLocalFile(ctx context.Context, objectName, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("UploadLocalFile: open %q: %w", filePath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("UploadLocalFile: copy to writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("UploadLocalFile: finalize upload: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

// Fetch downloads the bytes behind a gs:// URI. The URI may point at any
// bucket this service account can read, not just the configured one.
func (s *Service) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	bucketName, objectPath, err := splitURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	rc, err := s.client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: open object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: read bytes: %w", err)
	}
	return data, nil
}

// UploadObjectName builds a date-partitioned object name for an upload,
// e.g. uploads/2024/03/15/<uuid>-statement.csv.
func UploadObjectName(now time.Time, filename string) string {
	base := path.Base(filename)
	if base == "." || base == "/" || base == "" {
		base = "upload.csv"
	}
	return fmt.Sprintf("uploads/%04d/%02d/%02d/%s-%s",
		now.Year(), int(now.Month()), now.Day(), uuid.New().String(), base)
}

// ExtractFilename pulls the bare filename out of a gs:// URI.
func ExtractFilename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

func splitURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}
	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}
	return parts[0], parts[1], nil
}

var _ Storage = (*Service)(nil)
