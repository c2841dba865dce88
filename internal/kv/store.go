// Package kv provides the shared key-value store abstraction that the
// coordination components (rate limiting, sessions, streaks, leaderboards)
// are built on.
package kv

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("kv: key not found")

	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("kv: store closed")
)

// Member is a single entry of a sorted set: an identity with its score.
type Member struct {
	ID    string
	Score float64
}

// Store defines the capability set the coordination layer needs from the
// external key-value service. All methods must be safe for concurrent use;
// Increment and IncrementWithExpiry are the only operations callers may
// rely on being atomic with respect to concurrent callers.
type Store interface {
	// Increment atomically increments the integer at key, creating it at
	// zero first if absent, and returns the new value.
	Increment(ctx context.Context, key string) (int64, error)

	// IncrementWithExpiry behaves like Increment, but additionally sets the
	// key's TTL when this call is the one that created the key. The
	// increment and the TTL set execute as a single atomic unit, so a
	// counter can never be left behind without an expiry.
	IncrementWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Expire sets or refreshes a TTL on a key. No-op if the key is absent.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Get returns the value at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// SortedSetUpsert inserts member into the sorted set at setKey, or
	// replaces its score if it is already a member.
	SortedSetUpsert(ctx context.Context, setKey, member string, score float64) error

	// SortedSetRangeDesc returns members of the sorted set ordered by
	// descending score, from rank start to rank stop inclusive (0-based;
	// stop of -1 means the end of the set).
	SortedSetRangeDesc(ctx context.Context, setKey string, start, stop int64) ([]Member, error)

	// Ping checks the health of the backing service.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
