package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-optimizer/internal/config"
)

const (
	uploadsPrefix = "uploads"
	resultsPrefix = "results"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations the service needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

// New returns an S3 client when storage is enabled and a noop otherwise.
func New(cfg config.StorageConfig) (ObjectStorage, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	client, err := NewS3Client(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	return client, nil
}

// UploadKey is where an uploaded workbook is archived.
func UploadKey(sessionID, fileName string, at time.Time) string {
	return path.Join(uploadsPrefix, sanitize(sessionID), fmt.Sprintf("%d_%s", at.Unix(), sanitize(fileName)))
}

// ResultKey is where a batch output file is stored.
func ResultKey(fileName string) string {
	return path.Join(resultsPrefix, sanitize(fileName))
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(s)
	if s == "" {
		return "unnamed"
	}
	return s
}

// Noop discards uploads and lists nothing.
type Noop struct{}

func (Noop) ListObjects(context.Context, string) ([]ObjectInfo, error) { return nil, nil }

func (Noop) DownloadObject(_ context.Context, key string, _ string) error {
	return fmt.Errorf("object storage disabled, cannot download %s", key)
}

func (Noop) UploadObject(context.Context, string, []byte) error { return nil }
