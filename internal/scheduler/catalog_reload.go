package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
	"github.com/MrSnakeDoc/scholardesk/internal/index"
	"github.com/MrSnakeDoc/scholardesk/internal/logger"
	"github.com/MrSnakeDoc/scholardesk/internal/sources/catalog"
)

// SnapshotSaver persists the last good catalog.
type SnapshotSaver interface {
	SaveCatalogSnapshot(ctx context.Context, scholarships []*domain.Scholarship) error
}

// CatalogReloader handles loading the scholarship catalog on start, on a
// ticker and on demand.
type CatalogReloader struct {
	loader        *catalog.Loader
	mapper        *catalog.Mapper
	store         SnapshotSaver
	index         *index.MemoryIndex
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	doneCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
	reloadMu      sync.Mutex
}

// NewCatalogReloader creates a new catalog reloader. store may be nil.
func NewCatalogReloader(
	loader *catalog.Loader,
	store SnapshotSaver,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		loader:        loader,
		mapper:        catalog.NewMapper(),
		store:         store,
		index:         idx,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the catalog once and then keeps reloading in the background.
// A failed initial load is recorded in the index, not returned: the service
// starts and reports the catalog as unavailable until a reload succeeds.
func (cr *CatalogReloader) Start(ctx context.Context) {
	if err := cr.Reload(ctx); err != nil {
		cr.logger.Error("initial catalog load failed", logger.Error(err))
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer close(cr.doneCh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog",
						logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual catalog reload triggered")
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog",
						logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the reloader and waits for the loop to exit.
func (cr *CatalogReloader) Stop() {
	cr.stopOnce.Do(func() { close(cr.stopCh) })
	<-cr.doneCh
}

// Reload fetches, maps and installs the catalog, then saves a snapshot.
// On failure the current catalog is kept and the error is recorded.
func (cr *CatalogReloader) Reload(ctx context.Context) error {
	cr.reloadMu.Lock()
	defer cr.reloadMu.Unlock()

	cr.logger.Info("reloading catalog", logger.String("source", cr.loader.String()))

	file, err := cr.loader.Load(ctx)
	if err != nil {
		cr.index.SetError(err)
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	scholarships, err := cr.mapper.Map(file)
	if err != nil {
		err = &catalog.ParseError{Source: cr.loader.String(), Err: err}
		cr.index.SetError(err)
		return fmt.Errorf("failed to map catalog: %w", err)
	}

	cr.index.Replace(scholarships, cr.loader.String())
	cr.logger.Info("catalog loaded",
		logger.Int("count", len(scholarships)),
		logger.Int("skipped", len(file)-len(scholarships)))

	// Snapshot is best effort; the memory index is the primary source
	if cr.store != nil {
		if err := cr.store.SaveCatalogSnapshot(ctx, scholarships); err != nil {
			cr.logger.Warn("failed to save catalog snapshot",
				logger.Error(err))
		} else {
			cr.logger.Debug("catalog snapshot saved")
		}
	}

	return nil
}

// Trigger requests a reload without blocking. Requests made while one is
// already pending are merged.
func Trigger(ch chan<- struct{}) bool {
	select {
	case ch <- struct{}{}:
		return true
	default:
		return false
	}
}
