package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/kv"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/session"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("store down")

type failingStore struct {
	kv.Store
}

func (f *failingStore) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return errStoreDown
}

func (f *failingStore) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, errStoreDown
}

func TestCache(t *testing.T) {
	t.Run("put and get round trip", func(t *testing.T) {
		cache := session.NewCache(kv.NewMemoryStore(), zap.NewNop())

		cache.Put(context.Background(), "u1", []byte(`{"subject":"calculus"}`), time.Minute)

		payload, ok := cache.Get(context.Background(), "u1")

		assert.True(t, ok)
		assert.Equal(t, []byte(`{"subject":"calculus"}`), payload)
	})

	t.Run("get misses for unknown identifier", func(t *testing.T) {
		cache := session.NewCache(kv.NewMemoryStore(), zap.NewNop())

		payload, ok := cache.Get(context.Background(), "nobody")

		assert.False(t, ok)
		assert.Nil(t, payload)
	})

	t.Run("put fully replaces the previous payload", func(t *testing.T) {
		cache := session.NewCache(kv.NewMemoryStore(), zap.NewNop())

		cache.Put(context.Background(), "u1", []byte("old"), time.Minute)
		cache.Put(context.Background(), "u1", []byte("new"), time.Minute)

		payload, ok := cache.Get(context.Background(), "u1")

		assert.True(t, ok)
		assert.Equal(t, []byte("new"), payload)
	})

	t.Run("payload expires after the ttl", func(t *testing.T) {
		cache := session.NewCache(kv.NewMemoryStore(), zap.NewNop())

		cache.Put(context.Background(), "u1", []byte("v"), 50*time.Millisecond)

		time.Sleep(60 * time.Millisecond)

		_, ok := cache.Get(context.Background(), "u1")

		assert.False(t, ok)
	})

	t.Run("delete removes the session", func(t *testing.T) {
		cache := session.NewCache(kv.NewMemoryStore(), zap.NewNop())

		cache.Put(context.Background(), "u1", []byte("v"), time.Minute)
		cache.Delete(context.Background(), "u1")

		_, ok := cache.Get(context.Background(), "u1")

		assert.False(t, ok)
	})

	t.Run("store failures read as misses and swallow writes", func(t *testing.T) {
		cache := session.NewCache(&failingStore{}, zap.NewNop())

		cache.Put(context.Background(), "u1", []byte("v"), time.Minute)

		payload, ok := cache.Get(context.Background(), "u1")

		assert.False(t, ok)
		assert.Nil(t, payload)
	})
}
