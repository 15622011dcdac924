package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/jaayvee/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultVentureTTL is the default TTL for venture entries (48 hours)
	DefaultVentureTTL = 48 * time.Hour
	// DefaultEventsTTL is the default TTL for cached event listings
	DefaultEventsTTL = time.Minute
)

// Store handles Redis operations for ventures, sessions, clicks and caches
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetVenture retrieves a venture from Redis by ID
func (s *Store) GetVenture(ctx context.Context, id string) (*domain.Venture, error) {
	data, err := s.client.Get(ctx, VentureKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("venture not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get venture: %w", err)
	}

	var venture domain.Venture
	if err := json.Unmarshal(data, &venture); err != nil {
		return nil, fmt.Errorf("failed to unmarshal venture: %w", err)
	}

	return &venture, nil
}

// GetAllVentures retrieves all ventures from Redis
func (s *Store) GetAllVentures(ctx context.Context) ([]*domain.Venture, error) {
	ids, err := s.client.SMembers(ctx, AllVenturesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get venture IDs: %w", err)
	}

	ventures := make([]*domain.Venture, 0, len(ids))
	for _, id := range ids {
		venture, err := s.GetVenture(ctx, id)
		if err != nil {
			// Expired or corrupt entries are skipped
			continue
		}
		ventures = append(ventures, venture)
	}

	return ventures, nil
}

// DeleteVenture removes a venture from Redis
func (s *Store) DeleteVenture(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, VentureKey(id))
	pipe.SRem(ctx, AllVenturesKey(), id)
	pipe.Del(ctx, ClicksKey(id))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete venture: %w", err)
	}
	return nil
}

// SaveVenturesMany stores multiple ventures in Redis (bulk operation)
func (s *Store) SaveVenturesMany(ctx context.Context, ventures []*domain.Venture) error {
	pipe := s.client.Pipeline()

	for _, venture := range ventures {
		data, err := json.Marshal(venture)
		if err != nil {
			return fmt.Errorf("failed to marshal venture %s: %w", venture.ID, err)
		}

		pipe.Set(ctx, VentureKey(venture.ID), data, DefaultVentureTTL)
		pipe.SAdd(ctx, AllVenturesKey(), venture.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save ventures: %w", err)
	}

	return nil
}
