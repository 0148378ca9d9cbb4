package cache

import (
	"context"
	"sync"
	"time"
)

// memoryStore est le cache de repli quand Redis n'est pas configuré (dev,
// tests). Même sémantique que le store Redis : expiration paresseuse à la
// lecture, invalidation explicite.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[string]memoryEntry)}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", false
	}
	return entry.value, true
}

func (s *memoryStore) Set(_ context.Context, key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.entries[key] = entry
}

func (s *memoryStore) Invalidate(_ context.Context, keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.entries, key)
	}
}
