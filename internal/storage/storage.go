// Package storage provides key-value persistence for serialized documents.
//
// A Store maps string keys to byte values. Three backends are provided:
// Memory for tests and scratch sessions, FileStore (one file per key,
// replaced atomically) and SQLiteStore (a single kv table). Decorators
// add integrity and size features to any backend:
//
//	s := storage.WithChecksum(storage.WithCompression(base))
//
// WithChecksum appends a BLAKE3 digest and rejects values whose digest no
// longer matches; WithCompression stores values xz-compressed.
//
// Every operation takes a context and fails fast once it is cancelled.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Errors returned by stores.
var (
	// ErrNotFound indicates the key has no value.
	ErrNotFound = errors.New("key not found")

	// ErrChecksum indicates a stored value failed digest verification.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrCorrupt indicates a stored value could not be decoded.
	ErrCorrupt = errors.New("corrupt value")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store is closed")

	// ErrInvalidKey indicates a key that cannot be stored.
	ErrInvalidKey = errors.New("invalid key")
)

// Store is a byte-oriented key-value store.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the store's resources.
	Close() error
}

// Backend names a storage implementation.
type Backend string

// Available backends.
const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// Options selects and configures a store for Open.
type Options struct {
	Backend  Backend
	Path     string // Directory for file, database file for sqlite
	Checksum bool
	Compress bool
}

// Open creates the store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Backend {
	case "", BackendMemory:
		s = NewMemory()
	case BackendFile:
		s, err = NewFileStore(opts.Path)
	case BackendSQLite:
		s, err = OpenSQLite(ctx, opts.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	if opts.Compress {
		s = WithCompression(s)
	}
	if opts.Checksum {
		s = WithChecksum(s)
	}
	return s, nil
}

func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key: %w", ErrInvalidKey)
	}
	return nil
}
