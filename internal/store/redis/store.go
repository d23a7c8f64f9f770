package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultSnapshotTTL keeps the last good catalog around for a week
	DefaultSnapshotTTL = 7 * 24 * time.Hour
	// MaxSuggestions bounds the suggestion list
	MaxSuggestions = 1000
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// Store handles Redis operations for favorites, profiles, suggestions and
// the catalog snapshot.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}

// WithClock replaces the clock used for timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
