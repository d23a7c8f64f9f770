package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
)

// SetFavorite records favorited for (userID, scholarshipID).
//
// Everything runs in one MULTI: identity fields and addedAt are only written
// when the marker is new, the deleted flag is always written. Unfavoriting
// a scholarship that was never marked leaves a tombstone. Markers are never
// deleted, so concurrent writers converge on the last deleted flag written.
func (s *Store) SetFavorite(ctx context.Context, userID, scholarshipID string, favorited bool) error {
	key := FavoriteKey(userID, scholarshipID)
	addedAt := s.now().UTC().Format(time.RFC3339Nano)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, fieldUserID, userID)
		pipe.HSetNX(ctx, key, fieldScholarshipID, scholarshipID)
		pipe.HSetNX(ctx, key, fieldAddedAt, addedAt)
		pipe.HSet(ctx, key, fieldDeleted, strconv.FormatBool(!favorited))
		pipe.SAdd(ctx, UserFavoritesKey(userID), scholarshipID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set favorite %s for user %s: %w", scholarshipID, userID, err)
	}
	return nil
}

// GetMarker retrieves one marker, ErrNotFound if it was never written.
func (s *Store) GetMarker(ctx context.Context, userID, scholarshipID string) (*domain.FavoriteMarker, error) {
	fields, err := s.client.HGetAll(ctx, FavoriteKey(userID, scholarshipID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get favorite marker: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("favorite marker %s/%s: %w", userID, scholarshipID, ErrNotFound)
	}
	return markerFromHash(fields), nil
}

// LoadMarkers returns every marker of a user, tombstones included,
// ordered by scholarship ID.
func (s *Store) LoadMarkers(ctx context.Context, userID string) ([]*domain.FavoriteMarker, error) {
	ids, err := s.client.SMembers(ctx, UserFavoritesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get favorite IDs: %w", err)
	}

	if len(ids) == 0 {
		return []*domain.FavoriteMarker{}, nil
	}
	sort.Strings(ids)

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, FavoriteKey(userID, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to load favorite markers: %w", err)
	}

	markers := make([]*domain.FavoriteMarker, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// Indexed but missing hash; nothing to report
			continue
		}
		markers = append(markers, markerFromHash(fields))
	}
	return markers, nil
}

// LoadFavoriteIDs returns the IDs of the user's non-deleted markers.
// Errors are returned to the caller, never folded into an empty result.
func (s *Store) LoadFavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	markers, err := s.LoadMarkers(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(markers))
	for _, m := range markers {
		if m.Active() {
			ids = append(ids, m.ScholarshipID)
		}
	}
	return ids, nil
}

func markerFromHash(fields map[string]string) *domain.FavoriteMarker {
	m := &domain.FavoriteMarker{
		UserID:        fields[fieldUserID],
		ScholarshipID: fields[fieldScholarshipID],
	}
	// Anything but an explicit "true" counts as live
	m.Deleted, _ = strconv.ParseBool(fields[fieldDeleted])
	if t, err := time.Parse(time.RFC3339Nano, fields[fieldAddedAt]); err == nil {
		m.AddedAt = t
	}
	return m
}
