package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/citymunch/slack-bot/internal/geo"
	"github.com/citymunch/slack-bot/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool. Query anchor points are
// also kept in a PostGIS column for spatial reporting.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 1
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			pgxCfg.MaxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			pgxCfg.MinConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS search_queries (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL DEFAULT '',
	text       TEXT NOT NULL,
	criteria   JSONB,
	location   JSONB,
	anchor     GEOMETRY(Point, 4326),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS saved_locations (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	location   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_search_queries_user ON search_queries(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_search_queries_anchor ON search_queries USING GIST (anchor);
CREATE INDEX IF NOT EXISTS idx_saved_locations_user_name ON saved_locations(user_id, name, created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveQuery(ctx context.Context, q Query) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	var criteria, location, anchor []byte
	var err error
	if q.Criteria != nil {
		if criteria, err = json.Marshal(q.Criteria); err != nil {
			return eris.Wrap(err, "postgres: marshal criteria")
		}
	}
	if loc := q.Location(); loc != nil {
		if location, err = json.Marshal(loc); err != nil {
			return eris.Wrap(err, "postgres: marshal location")
		}
		if p := geo.AnchorPoint(loc); p != nil {
			if anchor, err = geo.EncodePoint(*p); err != nil {
				return eris.Wrap(err, "postgres: encode anchor")
			}
		}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO search_queries (id, user_id, text, criteria, location, anchor, created_at)
		VALUES ($1, $2, $3, $4, $5, ST_GeomFromEWKB($6), $7)`,
		q.ID, q.UserID, q.Text, criteria, location, anchor, q.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert search query")
}

func (s *PostgresStore) LatestLocation(ctx context.Context, userID string, since time.Time) (*model.ResolvedLocation, error) {
	if since.IsZero() {
		since = time.Unix(0, 0).UTC()
	}

	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT location FROM search_queries
		WHERE user_id = $1 AND location IS NOT NULL AND created_at >= $2
		ORDER BY created_at DESC LIMIT 1`,
		userID, since,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest location for %s", userID)
	}
	return unmarshalLocation(string(raw))
}

func (s *PostgresStore) CountQueries(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM search_queries WHERE user_id = $1`, userID,
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: count queries for %s", userID)
	}
	return n, nil
}

func (s *PostgresStore) SaveLocation(ctx context.Context, userID, name string, loc *model.ResolvedLocation) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal location")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO saved_locations (id, user_id, name, location, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), userID, name, data, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: insert saved location")
}

func (s *PostgresStore) SavedLocation(ctx context.Context, userID, name string) (*model.ResolvedLocation, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT location FROM saved_locations WHERE user_id = $1 AND name = $2
		ORDER BY created_at DESC LIMIT 1`,
		userID, name,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: saved location %s for %s", name, userID)
	}
	return unmarshalLocation(string(raw))
}
