package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/scholardesk/internal/logger"
)

// DefaultWatchDebounce coalesces the burst of events an editor save produces.
const DefaultWatchDebounce = 500 * time.Millisecond

// CatalogWatcher triggers a catalog reload when the catalog file changes.
//
// The parent directory is watched rather than the file itself, so editors
// that save by rename-and-replace keep being noticed.
type CatalogWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	trigger  chan<- struct{}
	debounce time.Duration
	logger   logger.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewCatalogWatcher creates a watcher for the catalog file at path.
func NewCatalogWatcher(path string, trigger chan<- struct{}, debounce time.Duration, log logger.Logger) (*CatalogWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	return &CatalogWatcher{
		path:     abs,
		watcher:  w,
		trigger:  trigger,
		debounce: debounce,
		logger:   log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It is non-blocking.
func (cw *CatalogWatcher) Start(ctx context.Context) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.running {
		return nil
	}

	dir := filepath.Dir(cw.path)
	if err := cw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	cw.running = true
	cw.logger.Info("watching catalog file", logger.String("path", cw.path))

	go cw.run(ctx)
	return nil
}

// Stop stops watching and releases the underlying watcher.
func (cw *CatalogWatcher) Stop() {
	cw.mu.Lock()
	running := cw.running
	cw.running = false
	cw.mu.Unlock()

	if running {
		close(cw.stopCh)
		<-cw.doneCh
	}
	if err := cw.watcher.Close(); err != nil {
		cw.logger.Warn("failed to close catalog watcher", logger.Error(err))
	}
}

func (cw *CatalogWatcher) run(ctx context.Context) {
	defer close(cw.doneCh)

	tick := min(100*time.Millisecond, cw.debounce/2)
	ticker := time.NewTicker(max(tick, time.Millisecond))
	defer ticker.Stop()

	var lastEvent time.Time // zero when nothing is pending
	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopCh:
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if cw.relevant(event) {
				cw.logger.Debug("catalog file event",
					logger.String("op", event.Op.String()))
				lastEvent = time.Now()
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("catalog watcher error", logger.Error(err))

		case <-ticker.C:
			if lastEvent.IsZero() || time.Since(lastEvent) < cw.debounce {
				continue
			}
			lastEvent = time.Time{}
			if Trigger(cw.trigger) {
				cw.logger.Info("catalog file changed, reload requested")
			}
		}
	}
}

func (cw *CatalogWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != cw.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
