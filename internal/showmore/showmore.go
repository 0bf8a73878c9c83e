// Package showmore remembers the second page of a search result so a later
// "show more" interaction can fetch it by search ID.
package showmore

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long a second page stays retrievable.
const DefaultTTL = 24 * time.Hour

// Store keeps second pages keyed by search ID.
type Store interface {
	Save(ctx context.Context, searchID, message string) error
	// Get returns the saved message and whether it was found.
	Get(ctx context.Context, searchID string) (string, bool, error)
	Close() error
}

type memoryEntry struct {
	message   string
	expiresAt time.Time
}

// MemoryStore is an in-process Store with lazy expiry.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates a MemoryStore. A non-positive ttl uses DefaultTTL.
func NewMemory(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, searchID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[searchID] = memoryEntry{message: message, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, searchID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[searchID]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, searchID)
		return "", false, nil
	}
	return e.message, true, nil
}

func (s *MemoryStore) Close() error { return nil }
