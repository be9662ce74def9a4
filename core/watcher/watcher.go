package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"enchlib/core/tables"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader is the part of the table store the watcher drives.
type Reloader interface {
	Reload() (*tables.Snapshot, error)
}

// Watcher reloads the tables when one of their files changes on disk.
// Bursts of events (editors often write, chmod and rename in quick
// succession) are collapsed into one reload after the debounce delay.
type Watcher struct {
	dir      string
	tracked  map[string]bool
	reloader Reloader
	debounce time.Duration
	logger   *zap.Logger

	fsw *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher for files inside dir.
func New(dir string, files []string, reloader Reloader, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tracked := make(map[string]bool, len(files))
	for _, name := range files {
		tracked[name] = true
	}

	return &Watcher{
		dir:      dir,
		tracked:  tracked,
		reloader: reloader,
		debounce: debounce,
		logger:   logger,
		fsw:      fsw,
	}, nil
}

// Start watches the directory until ctx is done or Stop is called. The
// directory is created when missing.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create table directory: %w", err)
	}
	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	go w.loop(ctx)

	w.logger.Info("Watching table directory for changes",
		zap.String("dir", w.dir),
		zap.Duration("debounce", w.debounce))
	return nil
}

// Stop closes the underlying watcher and cancels a pending reload.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if !w.tracked[name] {
				continue
			}
			w.logger.Debug("Table file changed", zap.String("file", name), zap.String("op", event.Op.String()))
			w.schedule()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Table watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	snap, err := w.reloader.Reload()
	if err != nil {
		w.logger.Error("Reload after file change failed, keeping previous tables", zap.Error(err))
		return
	}
	w.logger.Info("Tables reloaded after file change",
		zap.Int("ids", snap.Len(tables.KindAvailability)))
}
