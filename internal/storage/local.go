package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore implements ObjectStore on the local filesystem:
// <basePath>/<bucket>/<key>. Suitable for single-node deployments and
// dev environments.
type LocalStore struct {
	basePath string
	baseURL  string
	logger   *slog.Logger
}

// NewLocalStore creates a filesystem-backed store. baseURL is the
// public prefix returned URLs are built from, e.g.
// "http://localhost:8080/files".
func NewLocalStore(basePath, baseURL string, logger *slog.Logger) *LocalStore {
	if basePath == "" {
		basePath = "_output"
	}
	return &LocalStore{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger,
	}
}

var _ ObjectStore = (*LocalStore)(nil)

func (s *LocalStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("bucket and key cannot be empty")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}

	dir := filepath.Join(s.basePath, bucket)
	path := filepath.Join(dir, key)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create storage directory: %w", err)
	}

	// Objects are write-once.
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("object %s/%s already exists", bucket, key)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}

	s.logger.Info("object stored",
		"bucket", bucket,
		"key", key,
		"bytes", len(data),
		"content_type", contentType)

	return fmt.Sprintf("%s/%s/%s", s.baseURL, bucket, key), nil
}

func (s *LocalStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if strings.Contains(key, "..") {
		return nil, fmt.Errorf("invalid object key %q", key)
	}
	data, err := os.ReadFile(filepath.Join(s.basePath, bucket, key))
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", bucket, key, err)
	}
	return data, nil
}
