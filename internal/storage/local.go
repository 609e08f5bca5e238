package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalPrefix is the URL path local media is served from.
const LocalPrefix = "/media"

// LocalStore writes blobs below a root directory.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore returns a store rooted at dir. URLs are baseURL + "/media/" + key.
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{root: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Root is the directory blobs are written to.
func (s *LocalStore) Root() string {
	return s.root
}

// Put implements Store.
func (s *LocalStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (Object, error) {
	path, err := s.path(key)
	if err != nil {
		return Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Object{}, fmt.Errorf("create media dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return Object{}, fmt.Errorf("create media file: %w", err)
	}
	written, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return Object{}, fmt.Errorf("write media file: %w", err)
	}

	return Object{
		Key:         key,
		URL:         s.baseURL + LocalPrefix + "/" + key,
		ContentType: contentType,
		Size:        written,
	}, nil
}

// Delete implements Store. Missing keys are not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete media file: %w", err)
	}
	return nil
}

func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if key == "" || clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
