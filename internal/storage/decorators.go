package storage

import (
	"bytes"
	"context"
	"crypto/subtle"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// digestSize is the length of the BLAKE3 footer.
const digestSize = 32

type checksumStore struct {
	Store
}

// WithChecksum wraps s so every value carries a BLAKE3-256 footer.
// Get fails with ErrChecksum when the footer is missing or does not match.
func WithChecksum(s Store) Store {
	return checksumStore{Store: s}
}

func (c checksumStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(data) < digestSize {
		return nil, fmt.Errorf("%s: %d bytes, no digest: %w", key, len(data), ErrChecksum)
	}
	value, footer := data[:len(data)-digestSize], data[len(data)-digestSize:]
	sum := blake3.Sum256(value)
	if subtle.ConstantTimeCompare(sum[:], footer) != 1 {
		return nil, fmt.Errorf("%s: %w", key, ErrChecksum)
	}
	return value, nil
}

func (c checksumStore) Set(ctx context.Context, key string, value []byte) error {
	sum := blake3.Sum256(value)
	data := make([]byte, 0, len(value)+digestSize)
	data = append(data, value...)
	data = append(data, sum[:]...)
	return c.Store.Set(ctx, key, data)
}

type compressStore struct {
	Store
}

// WithCompression wraps s so values are stored xz-compressed.
// Get fails with ErrCorrupt when a value does not decompress.
func WithCompression(s Store) Store {
	return compressStore{Store: s}
}

func (c compressStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", key, ErrCorrupt, err)
	}
	value, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", key, ErrCorrupt, err)
	}
	return value, nil
}

func (c compressStore) Set(ctx context.Context, key string, value []byte) error {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return fmt.Errorf("compress %s: %w", key, err)
	}
	if _, err := w.Write(value); err != nil {
		return fmt.Errorf("compress %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("compress %s: %w", key, err)
	}
	return c.Store.Set(ctx, key, buf.Bytes())
}
