package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// File stores one file per key inside a directory. Writes go to a
// temporary file first and are renamed into place, so a crash never
// leaves a half-written value behind.
type File struct {
	mu  sync.RWMutex
	dir string
}

// NewFile creates a file store rooted at dir, creating dir if needed.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("directory is required")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	return &File{dir: dir}, nil
}

// path maps a key to its file. Keys are path-escaped so they can never
// leave the store directory.
func (f *File) path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	name := url.PathEscape(key)
	if name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return filepath.Join(f.dir, name+".json"), nil
}

// Get reads the value stored under key.
func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := f.path(key)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(key)
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	return data, nil
}

// Set writes value under key atomically.
func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", key, err)
	}

	return nil
}

// Delete removes key. A missing key is not an error.
func (f *File) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}

	return nil
}

// Close is a no-op for the file store.
func (f *File) Close() error {
	return nil
}

// Name implements ports.HealthChecker.
func (f *File) Name() string {
	return "store"
}

// Check verifies the store directory still exists and is a directory.
func (f *File) Check(_ context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("store directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("store path %s is not a directory", f.dir)
	}

	return nil
}
