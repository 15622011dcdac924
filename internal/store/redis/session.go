package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/jaayvee/internal/referral"
)

// DefaultSessionTTL bounds how long an idle visitor session is kept.
// The browser drops the session cookie on exit; Redis cannot see that.
const DefaultSessionTTL = 24 * time.Hour

// SessionProvider serves per-session attribution storage out of Redis.
type SessionProvider struct {
	store *Store
	ttl   time.Duration
}

// NewSessionProvider creates a provider whose keys expire after ttl of inactivity.
func NewSessionProvider(store *Store, ttl time.Duration) *SessionProvider {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionProvider{store: store, ttl: ttl}
}

// Backend returns the storage of sessionID.
func (p *SessionProvider) Backend(sessionID string) referral.Backend {
	return &sessionBackend{client: p.store.client, sessionID: sessionID, ttl: p.ttl}
}

type sessionBackend struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

func (b *sessionBackend) Get(ctx context.Context, slot string) (string, error) {
	v, err := b.client.Get(ctx, SessionKey(b.sessionID, slot)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", referral.ErrNotFound
		}
		return "", fmt.Errorf("failed to read session slot %s: %w", slot, err)
	}
	return v, nil
}

func (b *sessionBackend) Set(ctx context.Context, slot, value string) error {
	if err := b.client.Set(ctx, SessionKey(b.sessionID, slot), value, b.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session slot %s: %w", slot, err)
	}
	return nil
}

func (b *sessionBackend) Delete(ctx context.Context, slot string) error {
	if err := b.client.Del(ctx, SessionKey(b.sessionID, slot)).Err(); err != nil {
		return fmt.Errorf("failed to delete session slot %s: %w", slot, err)
	}
	return nil
}
