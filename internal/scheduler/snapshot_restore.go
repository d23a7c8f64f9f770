package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
	"github.com/MrSnakeDoc/scholardesk/internal/index"
	"github.com/MrSnakeDoc/scholardesk/internal/logger"
	redisstore "github.com/MrSnakeDoc/scholardesk/internal/store/redis"
)

// SnapshotSource is where the last good catalog is read back from.
type SnapshotSource interface {
	LoadCatalogSnapshot(ctx context.Context) ([]*domain.Scholarship, error)
}

// snapshotSourceName labels a catalog restored from Redis in the index.
const snapshotSourceName = "redis:snapshot"

// SnapshotRestorer seeds the memory index from the Redis snapshot on
// startup, so an unreachable source still serves the last good catalog.
type SnapshotRestorer struct {
	store  SnapshotSource
	index  *index.MemoryIndex
	logger logger.Logger
}

// NewSnapshotRestorer creates a new snapshot restorer
func NewSnapshotRestorer(
	store SnapshotSource,
	idx *index.MemoryIndex,
	log logger.Logger,
) *SnapshotRestorer {
	return &SnapshotRestorer{
		store:  store,
		index:  idx,
		logger: log,
	}
}

// Restore loads the snapshot into the index unless it already holds a
// catalog. A missing snapshot is not an error.
func (sr *SnapshotRestorer) Restore(ctx context.Context) error {
	if sr.index.Count() > 0 {
		sr.logger.Debug("catalog already loaded, snapshot not needed")
		return nil
	}

	sr.logger.Info("restoring catalog snapshot from redis")

	scholarships, err := sr.store.LoadCatalogSnapshot(ctx)
	if err != nil {
		if errors.Is(err, redisstore.ErrNotFound) {
			sr.logger.Info("no catalog snapshot found in redis")
			return nil
		}
		return fmt.Errorf("failed to restore catalog snapshot: %w", err)
	}

	if len(scholarships) == 0 {
		sr.logger.Info("catalog snapshot is empty")
		return nil
	}

	sr.index.Replace(scholarships, snapshotSourceName)

	sr.logger.Info("restored catalog snapshot",
		logger.Int("count", len(scholarships)))

	return nil
}
