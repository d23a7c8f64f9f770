package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
)

// SaveSuggestion stores a contact-form suggestion, assigning ID and
// CreatedAt when empty. The list keeps the newest MaxSuggestions entries.
func (s *Store) SaveSuggestion(ctx context.Context, suggestion *domain.Suggestion) error {
	if suggestion.ID == "" {
		suggestion.ID = uuid.NewString()
	}
	if suggestion.CreatedAt.IsZero() {
		suggestion.CreatedAt = s.now().UTC()
	}

	data, err := json.Marshal(suggestion)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestion: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, SuggestionKey(suggestion.ID), data, 0)
		pipe.LPush(ctx, KeySuggestions, suggestion.ID)
		pipe.LTrim(ctx, KeySuggestions, 0, MaxSuggestions-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save suggestion: %w", err)
	}
	return nil
}

// ListSuggestions returns up to limit suggestions, newest first.
func (s *Store) ListSuggestions(ctx context.Context, limit int64) ([]*domain.Suggestion, error) {
	if limit <= 0 {
		limit = MaxSuggestions
	}
	ids, err := s.client.LRange(ctx, KeySuggestions, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestion IDs: %w", err)
	}

	suggestions := make([]*domain.Suggestion, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, SuggestionKey(id)).Bytes()
		if err != nil {
			// Skip suggestions that couldn't be retrieved
			continue
		}
		var suggestion domain.Suggestion
		if err := json.Unmarshal(data, &suggestion); err != nil {
			continue
		}
		suggestions = append(suggestions, &suggestion)
	}
	return suggestions, nil
}
