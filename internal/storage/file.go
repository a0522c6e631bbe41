package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"

	natomic "github.com/natefinch/atomic"
)

const (
	fileExt   = ".ink"
	filePerms = 0o644
	dirPerms  = 0o755
)

// FileStore keeps one file per key in a directory.
// Writes replace the file atomically, so a crash never leaves a torn value.
type FileStore struct {
	dir    string
	closed atomic.Bool
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store: empty directory")
	}
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store directory.
func (f *FileStore) Dir() string {
	return f.dir
}

// Path returns the file that holds key.
func (f *FileStore) Path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+fileExt)
}

func (f *FileStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Get implements Store.
func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := f.check(ctx); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set implements Store.
func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := f.check(ctx); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	path := f.Path(key)
	if err := natomic.WriteFile(path, bytes.NewReader(value)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	// atomic.WriteFile keeps the temp file's permissions for new files
	if err := os.Chmod(path, filePerms); err != nil {
		return fmt.Errorf("chmod %s: %w", key, err)
	}
	return ctx.Err()
}

// Delete implements Store.
func (f *FileStore) Delete(ctx context.Context, key string) error {
	if err := f.check(ctx); err != nil {
		return err
	}
	err := os.Remove(f.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close implements Store.
func (f *FileStore) Close() error {
	f.closed.Store(true)
	return nil
}
