package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/catchify/service-booking/internal/domain/selection"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const selectionKeyPrefix = "selection:"

// RedisSelectionStore keeps selections as JSON documents in Redis. A zero
// ttl stores them without expiry.
type RedisSelectionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSelectionStore creates a new RedisSelectionStore.
func NewRedisSelectionStore(client *redis.Client, ttl time.Duration) *RedisSelectionStore {
	return &RedisSelectionStore{client: client, ttl: ttl}
}

func selectionKey(id uuid.UUID) string { return selectionKeyPrefix + id.String() }

// Save writes the selection, replacing any earlier version.
func (s *RedisSelectionStore) Save(ctx context.Context, sel *selection.Selection) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	if err := s.client.Set(ctx, selectionKey(sel.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	return nil
}

// Get loads a selection.
func (s *RedisSelectionStore) Get(ctx context.Context, id uuid.UUID) (*selection.Selection, error) {
	data, err := s.client.Get(ctx, selectionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, selection.ErrNotFound
		}
		return nil, fmt.Errorf("load selection: %w", err)
	}
	var sel selection.Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		return nil, fmt.Errorf("unmarshal selection: %w", err)
	}
	if sel.Seats == nil {
		sel.Seats = make(map[uuid.UUID]selection.SelectedSeat)
	}
	return &sel, nil
}

// Delete removes a selection. Deleting a missing selection is not an error.
func (s *RedisSelectionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, selectionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete selection: %w", err)
	}
	return nil
}
