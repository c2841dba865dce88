package kv

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"
)

// MemoryStore is an in-process implementation of Store for unit tests and
// local development. Expiry is enforced lazily on access.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]memoryEntry
	sets   map[string]map[string]float64
	closed bool
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]memoryEntry),
		sets:   make(map[string]map[string]float64),
	}
}

// live returns the entry at key after pruning it if expired.
// Caller must hold mu.
func (m *MemoryStore) live(key string) (memoryEntry, bool) {
	entry, ok := m.values[key]
	if !ok {
		return memoryEntry{}, false
	}

	if entry.expired(time.Now()) {
		delete(m.values, key)

		return memoryEntry{}, false
	}

	return entry, true
}

func (m *MemoryStore) Increment(_ context.Context, key string) (int64, error) {
	return m.incr(key, 0)
}

func (m *MemoryStore) IncrementWithExpiry(_ context.Context, key string, ttl time.Duration) (int64, error) {
	return m.incr(key, ttl)
}

func (m *MemoryStore) incr(key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}

	var count int64

	entry, ok := m.live(key)
	if ok {
		// Malformed values restart the counter from zero, matching
		// Redis behavior of treating the key as numeric-or-error and
		// this layer's policy of reading garbage as absent.
		count, _ = strconv.ParseInt(string(entry.value), 10, 64)
	}

	count++

	next := memoryEntry{value: []byte(strconv.FormatInt(count, 10)), expiresAt: entry.expiresAt}
	if !ok && ttl > 0 {
		next.expiresAt = time.Now().Add(ttl)
	}

	m.values[key] = next

	return count, nil
}

func (m *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	entry, ok := m.live(key)
	if !ok {
		return nil
	}

	entry.expiresAt = time.Now().Add(ttl)
	m.values[key] = entry

	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	entry, ok := m.live(key)
	if !ok {
		return nil, ErrNotFound
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)

	return value, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)

	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.values[key] = entry

	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	delete(m.values, key)

	return nil
}

func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false, ErrClosed
	}

	_, ok := m.live(key)

	return ok, nil
}

func (m *MemoryStore) SortedSetUpsert(_ context.Context, setKey, member string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	set, ok := m.sets[setKey]
	if !ok {
		set = make(map[string]float64)
		m.sets[setKey] = set
	}

	set[member] = score

	return nil
}

func (m *MemoryStore) SortedSetRangeDesc(_ context.Context, setKey string, start, stop int64) ([]Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	set := m.sets[setKey]

	members := make([]Member, 0, len(set))
	for id, score := range set {
		members = append(members, Member{ID: id, Score: score})
	}

	// Descending by score; ties broken lexically by member, mirroring
	// Redis ZREVRANGE ordering.
	sort.Slice(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score > members[j].Score
		}

		return members[i].ID > members[j].ID
	})

	// Negative indexes count from the end, as in ZREVRANGE.
	if start < 0 {
		start = int64(len(members)) + start
		if start < 0 {
			start = 0
		}
	}

	if stop < 0 {
		stop = int64(len(members)) + stop
	}

	if start > stop || start >= int64(len(members)) {
		return []Member{}, nil
	}

	if stop >= int64(len(members)) {
		stop = int64(len(members)) - 1
	}

	return members[start : stop+1], nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	return nil
}

// Close marks the store closed; subsequent operations return ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}

// Compile-time check.
var _ Store = (*MemoryStore)(nil)
