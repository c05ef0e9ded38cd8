// Package cache implements the derived-state cache layer: the key-value
// store port, the cache-aside accessor, and declarative invalidation.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is the key-value port the core consumes. Implementations provide
// per-key TTL, atomic increment, and batch delete; no atomicity is assumed
// across keys.
type Store interface {
	// Get returns the stored value and whether the key was present.
	// A false with a nil error is a plain miss; a non-nil error means the
	// store itself was unreachable.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteMany(ctx context.Context, keys ...string) error
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

type memoryEntry struct {
	data      []byte
	counter   int64
	isCounter bool
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is an in-process Store used in tests and single-node setups
type MemoryStore struct {
	data   map[string]memoryEntry
	mutex  sync.Mutex
	ticker *time.Ticker
	stopCh chan struct{}
}

func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		data:   make(map[string]memoryEntry),
		ticker: time.NewTicker(5 * time.Minute),
		stopCh: make(chan struct{}),
	}

	go store.cleanup()
	return store
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry, exists := s.data[key]
	if !exists || entry.expired(time.Now()) {
		return nil, false, nil
	}

	return entry.data, true, nil
}

func (s *MemoryStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = memoryEntry{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) DeleteMany(ctx context.Context, keys ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *MemoryStore) Increment(ctx context.Context, key string) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry, exists := s.data[key]
	if !exists || entry.expired(time.Now()) {
		entry = memoryEntry{isCounter: true}
	}
	entry.counter++
	s.data[key] = entry
	return entry.counter, nil
}

func (s *MemoryStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry, exists := s.data[key]
	if !exists {
		return nil
	}
	entry.expiresAt = time.Now().Add(ttl)
	s.data[key] = entry
	return nil
}

// Close stops the background expiry sweep
func (s *MemoryStore) Close() {
	close(s.stopCh)
}

func (s *MemoryStore) cleanup() {
	for {
		select {
		case <-s.ticker.C:
			s.removeExpiredEntries()
		case <-s.stopCh:
			s.ticker.Stop()
			return
		}
	}
}

func (s *MemoryStore) removeExpiredEntries() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	for key, entry := range s.data {
		if entry.expired(now) {
			delete(s.data, key)
		}
	}
}
