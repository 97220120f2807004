// Package memory provides an in-process Cache driver. It exists for tests
// and single-node development; production deployments use the redis or
// sqlite drivers.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/aussiebroadwan/credkit/internal/credential/store"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Store is a mutex-guarded map with per-key expiry. Expired entries are
// dropped lazily on access and in bulk via PurgeExpired.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry

	// now is swappable so tests can control the clock.
	now func() time.Time
}

// NewStore returns an empty in-memory cache.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// NewStoreWithClock returns a cache using the given clock. Test helper.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     now,
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return nil, store.ErrNotFound
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *Store) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	e, ok := s.entries[key]
	if !ok || e.expired(now) {
		// First increment in the window starts the TTL clock.
		e = entry{value: []byte("1")}
		if ttl > 0 {
			e.expiresAt = now.Add(ttl)
		}
		s.entries[key] = e
		return 1, nil
	}

	n, err := strconv.ParseInt(string(e.value), 10, 64)
	if err != nil {
		n = 0
	}
	n++
	e.value = []byte(strconv.FormatInt(n, 10))
	s.entries[key] = e
	return n, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]entry)
	return nil
}

// PurgeExpired removes all lapsed entries in one sweep.
func (s *Store) PurgeExpired(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var deleted int64
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			deleted++
		}
	}
	return deleted, nil
}
