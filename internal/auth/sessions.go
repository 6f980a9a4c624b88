package auth

import (
	"context"
	"sync"
	"time"

	"github.com/courierlabs/robocourier-backend/pkg/redis"
)

// SessionStore persists issued bearers. Implementations must treat an
// unknown token as a miss, not an error.
type SessionStore interface {
	Put(ctx context.Context, token, username string, ttl time.Duration) error
	Resolve(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

type memoryEntry struct {
	username  string
	expiresAt time.Time
}

// MemorySessions is the single-process store used in dev and test
// runs. Expired entries are dropped lazily on lookup.
type MemorySessions struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemorySessions) Put(ctx context.Context, token, username string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[token] = memoryEntry{
		username:  username,
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

func (m *MemorySessions) Resolve(ctx context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[token]
	if !ok {
		return "", nil
	}
	if m.now().After(entry.expiresAt) {
		delete(m.entries, token)
		return "", nil
	}
	return entry.username, nil
}

func (m *MemorySessions) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, token)
	return nil
}

// RedisSessions backs bearers with redis so multiple instances share
// one session space.
type RedisSessions struct {
	client *redis.Client
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

func (r *RedisSessions) Put(ctx context.Context, token, username string, ttl time.Duration) error {
	return r.client.PutSession(ctx, token, username, ttl)
}

func (r *RedisSessions) Resolve(ctx context.Context, token string) (string, error) {
	return r.client.ResolveSession(ctx, token)
}

func (r *RedisSessions) Delete(ctx context.Context, token string) error {
	return r.client.DeleteSession(ctx, token)
}
