package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/citymunch/slack-bot/internal/model"
)

type savedLocation struct {
	userID   string
	name     string
	location *model.ResolvedLocation
}

// MemoryStore is an in-process Store. Data is lost on exit.
type MemoryStore struct {
	mu      sync.RWMutex
	queries []Query
	saved   []savedLocation
	now     func() time.Time
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) SaveQuery(_ context.Context, q Query) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = s.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	return nil
}

func (s *MemoryStore) LatestLocation(_ context.Context, userID string, since time.Time) (*model.ResolvedLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Writes can land out of order, so pick by CreatedAt. Ties go to the
	// later insert.
	var latest *Query
	for i := range s.queries {
		q := &s.queries[i]
		if q.UserID != userID || q.Location() == nil {
			continue
		}
		if !since.IsZero() && q.CreatedAt.Before(since) {
			continue
		}
		if latest == nil || !q.CreatedAt.Before(latest.CreatedAt) {
			latest = q
		}
	}
	if latest == nil {
		return nil, nil
	}
	return latest.Location(), nil
}

func (s *MemoryStore) CountQueries(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, q := range s.queries {
		if q.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) SaveLocation(_ context.Context, userID, name string, loc *model.ResolvedLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, savedLocation{userID: userID, name: name, location: loc})
	return nil
}

func (s *MemoryStore) SavedLocation(_ context.Context, userID, name string) (*model.ResolvedLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.saved) - 1; i >= 0; i-- {
		if s.saved[i].userID == userID && s.saved[i].name == name {
			return s.saved[i].location, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
