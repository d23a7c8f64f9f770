package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
)

// SaveCatalogSnapshot stores the last successfully loaded catalog
func (s *Store) SaveCatalogSnapshot(ctx context.Context, scholarships []*domain.Scholarship) error {
	data, err := json.Marshal(scholarships)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := s.client.Set(ctx, CatalogSnapshotKey(), data, DefaultSnapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to save catalog snapshot: %w", err)
	}
	return nil
}

// LoadCatalogSnapshot retrieves the stored catalog, ErrNotFound when absent
func (s *Store) LoadCatalogSnapshot(ctx context.Context) ([]*domain.Scholarship, error) {
	data, err := s.client.Get(ctx, CatalogSnapshotKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("catalog snapshot: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get catalog snapshot: %w", err)
	}

	var scholarships []*domain.Scholarship
	if err := json.Unmarshal(data, &scholarships); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog snapshot: %w", err)
	}
	return scholarships, nil
}
