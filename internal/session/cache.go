// Package session caches short-lived, opaque per-identity session payloads
// in the shared key-value store.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/kv"
	"go.uber.org/zap"
)

const keyPrefix = "session:"

// DefaultTTL is the session lifetime used when the caller does not
// specify one.
const DefaultTTL = 30 * time.Minute

// Cache stores opaque session payloads keyed by identity. Payload contents
// are controlled entirely by the caller; a put fully replaces whatever was
// stored before.
type Cache struct {
	store  kv.Store
	logger *zap.Logger
}

// NewCache creates a session cache on top of the given store.
func NewCache(store kv.Store, logger *zap.Logger) *Cache {
	return &Cache{store: store, logger: logger}
}

// Put stores payload for identifier. A ttl of zero or less falls back to
// DefaultTTL. Store failures are logged and swallowed; the session is
// simply not cached.
func (c *Cache) Put(ctx context.Context, identifier string, payload []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if err := c.store.Set(ctx, keyPrefix+identifier, payload, ttl); err != nil {
		c.logger.Warn("session write failed",
			zap.String("identifier", identifier),
			zap.Error(err),
		)
	}
}

// Get returns the cached payload for identifier, or ok=false on a miss.
// Store failures are treated as misses.
func (c *Cache) Get(ctx context.Context, identifier string) ([]byte, bool) {
	payload, err := c.store.Get(ctx, keyPrefix+identifier)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			c.logger.Warn("session read failed",
				zap.String("identifier", identifier),
				zap.Error(err),
			)
		}

		return nil, false
	}

	return payload, true
}

// Delete removes the cached session for identifier, if any.
func (c *Cache) Delete(ctx context.Context, identifier string) {
	if err := c.store.Delete(ctx, keyPrefix+identifier); err != nil {
		c.logger.Warn("session delete failed",
			zap.String("identifier", identifier),
			zap.Error(err),
		)
	}
}
