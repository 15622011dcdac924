package referral

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by a Backend when a key holds no value.
var ErrNotFound = errors.New("referral: key not found")

// Backend is session-scoped key/value storage.
// One Backend instance serves exactly one browser session.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SessionProvider hands out the Backend of a given session.
type SessionProvider interface {
	Backend(sessionID string) Backend
}

// MemoryBackend keeps values in a map. Used by tests and by deployments
// running without Redis.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (b *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (b *MemoryBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.values[key] = value
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.values, key)
	return nil
}

// MemorySessions is an in-process SessionProvider.
// Sessions live until the process exits.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]*MemoryBackend
}

// NewMemorySessions creates an empty session provider.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]*MemoryBackend)}
}

// Backend returns the backend of sessionID, creating it on first use.
func (m *MemorySessions) Backend(sessionID string) Backend {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.sessions[sessionID]
	if !ok {
		b = NewMemoryBackend()
		m.sessions[sessionID] = b
	}
	return b
}

// Count returns the number of sessions seen so far.
func (m *MemorySessions) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}
