// Package storage materializes generated images and returns the URLs
// course records point at.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalImageStore writes images under a directory that the HTTP server
// exposes at PublicBaseURL.
type LocalImageStore struct {
	root          string
	publicBaseURL string
}

func NewLocalImageStore(root, publicBaseURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &LocalImageStore{root: root, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (s *LocalImageStore) Root() string { return s.root }

func (s *LocalImageStore) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := cleanKey(name)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.publicBaseURL + "/" + key, nil
}

// cleanKey rejects names that would escape the store root.
func cleanKey(name string) (string, error) {
	key := strings.TrimLeft(filepath.ToSlash(filepath.Clean("/"+name)), "/")
	if key == "" || key == "." {
		return "", fmt.Errorf("invalid image name %q", name)
	}
	return key, nil
}
