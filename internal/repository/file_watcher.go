package repository

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// CollectionChangeFunc is called with the key of a collection that changed on disk.
type CollectionChangeFunc func(ctx context.Context, key string)

// FileWatcher reports external writes to a file-backed collection store.
// Rapid successive writes to the same key are collapsed into one callback.
type FileWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dir      string
	onChange CollectionChangeFunc
	logger   *zap.Logger
	debounce time.Duration
	pending  map[string]time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewFileWatcher creates a watcher for dir.
func NewFileWatcher(dir string, onChange CollectionChangeFunc, logger *zap.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileWatcher{
		watcher:  watcher,
		dir:      dir,
		onChange: onChange,
		logger:   logger,
		debounce: 200 * time.Millisecond,
		pending:  make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (w *FileWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Info("watching collection directory", zap.String("dir", w.dir))
	go w.run(ctx)
	return nil
}

// Stop ends the watch loop and releases the watcher.
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("closing collection watcher", zap.Error(err))
	}
}

func (w *FileWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("collection watcher error", zap.Error(err))
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *FileWatcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	key, ok := collectionKeyFromPath(event.Name)
	if !ok {
		return
	}
	w.mu.Lock()
	w.pending[key] = time.Now()
	w.mu.Unlock()
}

func (w *FileWatcher) flush(ctx context.Context) {
	now := time.Now()
	var ready []string
	w.mu.Lock()
	for key, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, key)
			delete(w.pending, key)
		}
	}
	w.mu.Unlock()

	for _, key := range ready {
		w.logger.Debug("collection changed on disk", zap.String("key", key))
		if w.onChange != nil {
			w.onChange(ctx, key)
		}
	}
}

// collectionKeyFromPath maps <dir>/<key>.json to key, ignoring temp files.
func collectionKeyFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || filepath.Ext(base) != ".json" {
		return "", false
	}
	key := strings.TrimSuffix(base, ".json")
	if !collectionKeyPattern.MatchString(key) {
		return "", false
	}
	return key, true
}
