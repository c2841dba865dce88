package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default configuration values for the Redis connection pool.
const (
	DefaultPoolSize     = 10
	DefaultMinIdleConns = 3
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
	DefaultOpTimeout    = 2 * time.Second
)

// incrExpireScript atomically increments a key and, when the increment is
// the one that created the key, sets its expiry. Running both steps as one
// server-side script means a crash between INCR and PEXPIRE cannot leave a
// counter behind without a TTL.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisConfig holds the configuration for the Redis-backed store.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string
	// Password is the Redis password (empty for no auth).
	Password string
	// DB is the Redis database number.
	DB int

	// PoolSize is the maximum number of connections in the pool.
	PoolSize int
	// MinIdleConns is the minimum number of idle connections to maintain.
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultRedisConfig returns a RedisConfig with sensible defaults.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		PoolSize:     DefaultPoolSize,
		MinIdleConns: DefaultMinIdleConns,
		DialTimeout:  DefaultDialTimeout,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// RedisStore is the Redis implementation of Store. Every operation is
// bounded by a per-call timeout so a slow or unreachable Redis cannot stall
// request workers indefinitely.
type RedisStore struct {
	client    *redis.Client
	opTimeout time.Duration
}

// NewRedisStore creates a Redis-backed store over an existing client.
// Closing the store closes the client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, opTimeout: DefaultOpTimeout}
}

func (r *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.opTimeout)
}

func (r *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("kv: increment %q: %w", key, err)
	}

	return count, nil
}

func (r *RedisStore) IncrementWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := incrExpireScript.Run(ctx, r.client, []string{key}, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("kv: increment with expiry %q: %w", key, err)
	}

	return count, nil
}

func (r *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("kv: expire %q: %w", key, err)
	}

	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("kv: get %q: %w", key, err)
	}

	return value, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("kv: set %q: %w", key, err)
	}

	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("kv: delete %q: %w", key, err)
	}

	return nil
}

func (r *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("kv: exists %q: %w", key, err)
	}

	return n > 0, nil
}

func (r *RedisStore) SortedSetUpsert(ctx context.Context, setKey, member string, score float64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.client.ZAdd(ctx, setKey, redis.Z{Score: score, Member: member}).Err()
	if err != nil {
		return fmt.Errorf("kv: sorted set upsert %q: %w", setKey, err)
	}

	return nil
}

func (r *RedisStore) SortedSetRangeDesc(ctx context.Context, setKey string, start, stop int64) ([]Member, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	entries, err := r.client.ZRevRangeWithScores(ctx, setKey, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("kv: sorted set range %q: %w", setKey, err)
	}

	members := make([]Member, 0, len(entries))

	for _, entry := range entries {
		id, ok := entry.Member.(string)
		if !ok {
			continue
		}

		members = append(members, Member{ID: id, Score: entry.Score})
	}

	return members, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("kv: ping: %w", err)
	}

	return nil
}

// Close shuts down the underlying Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Shutdown implements the DI container's shutdown hook.
func (r *RedisStore) Shutdown() error {
	return r.Close()
}

// Compile-time check.
var _ Store = (*RedisStore)(nil)
