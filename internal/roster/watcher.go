package roster

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"shipperizer/internal/domain"
)

// DefaultDebounce is how long the manifest must be quiet before it is re-read
const DefaultDebounce = 500 * time.Millisecond

// Watcher re-reads the roster manifest when it changes on disk and reports
// the new entity list. Saves that leave the name list as it was are not
// reported.
type Watcher struct {
	loader   *Loader
	onChange func([]domain.Entity)
	debounce time.Duration
	logger   *zap.Logger
	last     []string
}

// NewWatcher creates a watcher for loader's manifest
func NewWatcher(loader *Loader, onChange func([]domain.Entity), logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		loader:   loader,
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   logger,
	}
}

// WithDebounce sets the quiet period. Non-positive values keep the default.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Watch blocks until ctx is cancelled, calling onChange from this goroutine
// each time the manifest settles with a different name list
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	// Editors often replace the file, so watch its directory
	manifest := w.loader.Manifest()
	if err := fsw.Add(filepath.Dir(manifest)); err != nil {
		return fmt.Errorf("watch %s: %w", manifest, err)
	}
	w.last, _ = ReadManifest(manifest)
	w.logger.Info("watching roster manifest", zap.String("path", manifest))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(manifest) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			w.reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) reload() {
	names, err := ReadManifest(w.loader.Manifest())
	if err != nil {
		// Usually a save still in progress; the next write retries
		w.logger.Debug("roster manifest unreadable", zap.Error(err))
		return
	}
	if slices.Equal(names, w.last) {
		return
	}
	w.last = names

	w.logger.Info("roster manifest changed", zap.Int("names", len(names)))
	w.onChange(w.loader.entitiesFor(names))
}
