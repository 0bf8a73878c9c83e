// Package store persists per-user search history and saved locations.
package store

import (
	"context"
	"time"

	"github.com/citymunch/slack-bot/internal/model"
)

// Query is one recorded search. Criteria is nil when the parse failed.
type Query struct {
	ID        string                `json:"id"`
	UserID    string                `json:"user_id,omitempty"`
	Text      string                `json:"text"`
	Criteria  *model.SearchCriteria `json:"criteria,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// Location returns the query's parsed location, if any.
func (q Query) Location() *model.ResolvedLocation {
	if q.Criteria == nil {
		return nil
	}
	return q.Criteria.Location
}

// HistoryStore records searches and answers questions about past ones.
type HistoryStore interface {
	SaveQuery(ctx context.Context, q Query) error
	// LatestLocation returns the location of the user's most recent search
	// that had one, considering only searches at or after since. A zero since
	// means no bound. Returns nil when nothing matches.
	LatestLocation(ctx context.Context, userID string, since time.Time) (*model.ResolvedLocation, error)
	CountQueries(ctx context.Context, userID string) (int, error)
}

// PreferenceStore keeps named locations per user.
type PreferenceStore interface {
	SaveLocation(ctx context.Context, userID, name string, loc *model.ResolvedLocation) error
	// SavedLocation returns the most recently saved location under name, or
	// nil when the user has none.
	SavedLocation(ctx context.Context, userID, name string) (*model.ResolvedLocation, error)
}

// Store combines history and preferences with lifecycle management.
type Store interface {
	HistoryStore
	PreferenceStore

	Migrate(ctx context.Context) error
	Close() error
}
