package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/citymunch/slack-bot/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Timestamps are unix milliseconds so range comparisons stay numeric.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS search_queries (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL DEFAULT '',
	text       TEXT NOT NULL,
	criteria   TEXT,
	location   TEXT,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS saved_locations (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	location   TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_search_queries_user ON search_queries(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_saved_locations_user_name ON saved_locations(user_id, name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveQuery(ctx context.Context, q Query) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	criteria, err := marshalNullable(q.Criteria)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal criteria")
	}
	location, err := marshalNullable(q.Location())
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal location")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO search_queries (id, user_id, text, criteria, location, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.UserID, q.Text, criteria, location, q.CreatedAt.UnixMilli(),
	)
	return eris.Wrap(err, "sqlite: insert search query")
}

func (s *SQLiteStore) LatestLocation(ctx context.Context, userID string, since time.Time) (*model.ResolvedLocation, error) {
	var sinceMillis int64
	if !since.IsZero() {
		sinceMillis = since.UnixMilli()
	}

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT location FROM search_queries
		WHERE user_id = ? AND location IS NOT NULL AND created_at >= ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		userID, sinceMillis,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest location for %s", userID)
	}
	return unmarshalLocation(raw)
}

func (s *SQLiteStore) CountQueries(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM search_queries WHERE user_id = ?`, userID,
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: count queries for %s", userID)
	}
	return n, nil
}

func (s *SQLiteStore) SaveLocation(ctx context.Context, userID, name string, loc *model.ResolvedLocation) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal location")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_locations (id, user_id, name, location, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), userID, name, string(data), time.Now().UTC().UnixMilli(),
	)
	return eris.Wrap(err, "sqlite: insert saved location")
}

func (s *SQLiteStore) SavedLocation(ctx context.Context, userID, name string) (*model.ResolvedLocation, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT location FROM saved_locations WHERE user_id = ? AND name = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		userID, name,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: saved location %s for %s", name, userID)
	}
	return unmarshalLocation(raw)
}

// marshalNullable encodes v as JSON text, or nil when v is a nil pointer.
func marshalNullable[T any](v *T) (*string, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

func unmarshalLocation(raw string) (*model.ResolvedLocation, error) {
	var loc model.ResolvedLocation
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return nil, eris.Wrap(err, "store: decode location")
	}
	return &loc, nil
}
