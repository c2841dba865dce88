// Package ratelimit implements fixed-window request admission over the
// shared key-value store.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/kv"
	"go.uber.org/zap"
)

const keyPrefix = "rate_limit:"

var (
	// ErrInvalidLimit is returned when the configured limit is not positive.
	ErrInvalidLimit = errors.New("ratelimit: limit must be positive")

	// ErrInvalidWindow is returned when the configured window is not positive.
	ErrInvalidWindow = errors.New("ratelimit: window must be positive")
)

// Result is the outcome of an admission check.
type Result struct {
	// Allowed indicates whether the request should be admitted.
	Allowed bool
	// Remaining is how many requests are left in the current window,
	// clamped to [0, limit].
	Remaining int64
	// ResetAt is when the current window is expected to end. It is
	// computed as now+window rather than read back from the store, so it
	// overshoots for requests that joined a window already in progress.
	ResetAt time.Time
}

// Limiter admits requests using fixed, non-overlapping windows. The window
// counter and its expiry are established by a single atomic store operation,
// so a window can never be opened without a TTL.
//
// If the store is unreachable the limiter fails open: the request is
// admitted and the full budget is reported. Operators should treat limits
// as unenforced for the duration of a store outage.
type Limiter struct {
	store  kv.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewLimiter creates a fixed-window limiter on top of the given store.
func NewLimiter(store kv.Store, logger *zap.Logger) *Limiter {
	return &Limiter{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Check consumes one request from identifier's budget and reports whether
// it is admitted. limit is the maximum number of requests per window.
func (l *Limiter) Check(ctx context.Context, identifier string, limit int64, window time.Duration) (Result, error) {
	if limit <= 0 {
		return Result{}, ErrInvalidLimit
	}

	if window <= 0 {
		return Result{}, ErrInvalidWindow
	}

	now := l.now()
	resetAt := now.Add(window)

	count, err := l.store.IncrementWithExpiry(ctx, Key(identifier), window)
	if err != nil {
		l.logger.Warn("rate limit store unavailable, failing open",
			zap.String("identifier", identifier),
			zap.Error(err),
		)

		return Result{Allowed: true, Remaining: limit, ResetAt: resetAt}, nil
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Key returns the store key used for an identifier's window counter.
func Key(identifier string) string {
	return fmt.Sprintf("%s%s", keyPrefix, identifier)
}
