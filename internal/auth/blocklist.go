// File: internal/auth/blocklist.go
package auth

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Blocklist remembers logged-out session IDs until their tokens would have
// expired anyway.
type Blocklist interface {
	Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// InMemoryBlocklist is a process-local Blocklist. Revocations are lost on
// restart, which only matters for sessions issued before it.
type InMemoryBlocklist struct {
	cache *cache.Cache
}

// NewInMemoryBlocklist creates a blocklist whose expired entries are swept
// every cleanupInterval.
func NewInMemoryBlocklist(cleanupInterval time.Duration) *InMemoryBlocklist {
	return &InMemoryBlocklist{
		cache: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

// Revoke blocks sessionID until expiresAt. Already expired sessions are ignored.
func (b *InMemoryBlocklist) Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	b.cache.Set(sessionID, struct{}{}, ttl)
	return nil
}

// IsRevoked reports whether sessionID was logged out.
func (b *InMemoryBlocklist) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	_, found := b.cache.Get(sessionID)
	return found, nil
}
