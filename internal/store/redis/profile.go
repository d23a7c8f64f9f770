package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
)

// GetProfile retrieves a profile, ErrNotFound when missing.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	data, err := s.client.Get(ctx, ProfileKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profile domain.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

// SaveProfile stores a profile, overwriting any previous version.
func (s *Store) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := s.client.Set(ctx, ProfileKey(profile.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// CreateProfile stores profile only if none exists and reports whether it did.
func (s *Store) CreateProfile(ctx context.Context, profile *domain.Profile) (bool, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return false, fmt.Errorf("failed to marshal profile: %w", err)
	}
	created, err := s.client.SetNX(ctx, ProfileKey(profile.UserID), data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to create profile: %w", err)
	}
	return created, nil
}
