package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for a burst of file events to
// settle before reloading.
const DefaultDebounce = 100 * time.Millisecond

// Watch reloads the file at path whenever it changes and passes each
// successfully loaded configuration to onLoad. Load failures go to onError
// when it is non-nil; the previous configuration stays in effect.
//
// The parent directory is watched so editors that replace the file by
// rename are noticed. Watch blocks until ctx is done.
func (l *Loader) Watch(ctx context.Context, path string, onLoad func(*Config), onError func(error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	report := func(err error) {
		if onError != nil {
			onError(err)
		}
	}

	timer := time.NewTimer(DefaultDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(DefaultDebounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			report(err)

		case <-timer.C:
			cfg, err := l.Load(path)
			if err != nil {
				report(err)
				continue
			}
			onLoad(cfg)
		}
	}
}

// Watch watches path with the default Loader.
func Watch(ctx context.Context, path string, onLoad func(*Config), onError func(error)) error {
	return (&Loader{}).Watch(ctx, path, onLoad, onError)
}
