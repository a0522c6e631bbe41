package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemory()
		},
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(t.TempDir())
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "inkwell.db"))
			require.NoError(t, err)
			return s
		},
		"checksum+compress": func(t *testing.T) Store {
			return WithChecksum(WithCompression(NewMemory()))
		},
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { s.Close() })

			_, err := s.Get(ctx, "draftContent")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "draftContent", []byte(`{"blocks":[]}`)))
			got, err := s.Get(ctx, "draftContent")
			require.NoError(t, err)
			require.Equal(t, `{"blocks":[]}`, string(got))

			require.NoError(t, s.Set(ctx, "draftContent", []byte("second")))
			got, err = s.Get(ctx, "draftContent")
			require.NoError(t, err)
			require.Equal(t, "second", string(got))

			require.NoError(t, s.Set(ctx, "other/key", []byte{}))
			got, err = s.Get(ctx, "other/key")
			require.NoError(t, err)
			require.Empty(t, got)

			require.NoError(t, s.Delete(ctx, "draftContent"))
			_, err = s.Get(ctx, "draftContent")
			require.ErrorIs(t, err, ErrNotFound)
			require.NoError(t, s.Delete(ctx, "draftContent"))

			require.ErrorIs(t, s.Set(ctx, "", []byte("x")), ErrInvalidKey)
		})
	}
}

func TestStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { s.Close() })

			_, err := s.Get(ctx, "k")
			require.ErrorIs(t, err, context.Canceled)
			require.ErrorIs(t, s.Set(ctx, "k", []byte("v")), context.Canceled)
			require.ErrorIs(t, s.Delete(ctx, "k"), context.Canceled)
		})
	}
}

func TestStoreClosed(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			require.NoError(t, s.Close())

			_, err := s.Get(ctx, "k")
			require.ErrorIs(t, err, ErrClosed)
			require.ErrorIs(t, s.Set(ctx, "k", []byte("v")), ErrClosed)
			require.ErrorIs(t, s.Delete(ctx, "k"), ErrClosed)
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(again))

	require.NoError(t, m.Set(ctx, "b", nil))
	require.Equal(t, []string{"b", "k"}, m.Keys())
}

func TestFileStoreLayout(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "store")
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.Equal(t, dir, s.Dir())

	require.NoError(t, s.Set(ctx, "a/b", []byte("v")))
	path := s.Path("a/b")
	require.Equal(t, dir, filepath.Dir(path), "key separators must be escaped")

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(filePerms), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "v", string(data))

	_, err = NewFileStore("")
	require.Error(t, err)
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "inkwell.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "draftContent", []byte("saved")))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "draftContent")
	require.NoError(t, err)
	require.Equal(t, "saved", string(got))
}

func TestSQLiteInMemory(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", string(got))
}

func TestChecksumDetectsTampering(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	s := WithChecksum(base)

	require.NoError(t, s.Set(ctx, "k", []byte("hello")))
	raw, err := base.Get(ctx, "k")
	require.NoError(t, err)
	require.Len(t, raw, len("hello")+digestSize)

	raw[0] = 'j'
	require.NoError(t, base.Set(ctx, "k", raw))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrChecksum)

	require.NoError(t, base.Set(ctx, "short", []byte("tiny")))
	_, err = s.Get(ctx, "short")
	require.ErrorIs(t, err, ErrChecksum)

	_, err = s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCompressionShrinksAndRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	s := WithCompression(base)

	value := bytes.Repeat([]byte(`{"text":"hello world"}`), 200)
	require.NoError(t, s.Set(ctx, "k", value))

	raw, err := base.Get(ctx, "k")
	require.NoError(t, err)
	require.Less(t, len(raw), len(value))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, value, got)

	require.NoError(t, base.Set(ctx, "bad", []byte("not xz")))
	_, err = s.Get(ctx, "bad")
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "default memory", opts: Options{}},
		{name: "file", opts: Options{Backend: BackendFile, Path: t.TempDir()}},
		{name: "sqlite", opts: Options{Backend: BackendSQLite, Path: filepath.Join(t.TempDir(), "db")}},
		{name: "decorated", opts: Options{Backend: BackendMemory, Checksum: true, Compress: true}},
		{name: "unknown", opts: Options{Backend: "s3"}, wantErr: true},
		{name: "file without path", opts: Options{Backend: BackendFile}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Close()

			require.NoError(t, s.Set(ctx, "k", []byte("v")))
			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			require.Equal(t, "v", string(got))
		})
	}
}
