package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheEvents stores a normalized event listing fetched for ref.
func (s *Store) CacheEvents(ctx context.Context, ref string, payload []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, EventsKey(ref), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache events: %w", err)
	}
	return nil
}

// GetCachedEvents retrieves a cached event listing. A miss returns nil, nil.
func (s *Store) GetCachedEvents(ctx context.Context, ref string) ([]byte, error) {
	data, err := s.client.Get(ctx, EventsKey(ref)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get cached events: %w", err)
	}
	return data, nil
}

// FlushEventsCache removes all cached event listings
func (s *Store) FlushEventsCache(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefixEvents+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush events cache: %w", err)
	}
	return nil
}
