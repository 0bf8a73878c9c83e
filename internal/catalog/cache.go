// Package catalog keeps an in-memory snapshot of the partner catalog's
// cuisine types and restaurant names and matches search text against it.
package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/citymunch/slack-bot/internal/model"
	"github.com/citymunch/slack-bot/internal/resilience"
)

// DefaultRefreshInterval is how often Run reloads the catalog.
const DefaultRefreshInterval = 20 * time.Minute

// Option configures a Cache.
type Option func(*Cache)

// WithRefreshInterval overrides DefaultRefreshInterval.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithRetry sets the retry policy applied to each refresh.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *Cache) {
		c.retry = cfg
	}
}

// Cache serves catalog matches from the latest snapshot. Matching blocks
// until the first snapshot has loaded; afterwards refreshes swap the
// snapshot atomically and failures keep the previous one.
type Cache struct {
	source   Source
	interval time.Duration
	retry    resilience.RetryConfig

	snap      atomic.Pointer[Snapshot]
	ready     chan struct{}
	readyOnce sync.Once
	group     singleflight.Group
}

// New creates a Cache loading from source. Call Run to start loading.
func New(source Source, opts ...Option) *Cache {
	c := &Cache{
		source:   source,
		interval: DefaultRefreshInterval,
		retry:    resilience.DefaultRetryConfig(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run loads the catalog immediately and then on every interval until ctx is
// cancelled. Refresh failures are logged, never returned.
func (c *Cache) Run(ctx context.Context) error {
	c.refreshAndLog(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.refreshAndLog(ctx)
		}
	}
}

func (c *Cache) refreshAndLog(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		zap.L().Error("catalog: refresh failed, keeping previous snapshot", zap.Error(err))
	}
}

// Refresh fetches a new snapshot and installs it. Concurrent calls share a
// single fetch.
func (c *Cache) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (any, error) {
		retry := c.retry
		if retry.OnRetry == nil {
			retry.OnRetry = resilience.RetryLogger("catalog", "refresh")
		}
		snap, err := resilience.DoVal(ctx, retry, c.source.Fetch)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			return nil, eris.New("catalog: source returned no snapshot")
		}
		c.Set(snap)
		zap.L().Info("catalog: snapshot loaded",
			zap.Int("cuisine_types", len(snap.CuisineTypes)),
			zap.Int("restaurants", len(snap.Restaurants)),
		)
		return nil, nil
	})
	return err
}

// Set installs snap as the current snapshot and opens the ready gate.
func (c *Cache) Set(snap *Snapshot) {
	c.snap.Store(snap)
	c.readyOnce.Do(func() { close(c.ready) })
}

// Ready is closed once the first snapshot has loaded.
func (c *Cache) Ready() <-chan struct{} {
	return c.ready
}

// Snapshot returns the current snapshot, waiting for the first load.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	select {
	case <-c.ready:
		return c.snap.Load(), nil
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "catalog: waiting for first snapshot")
	}
}

// MatchCuisineType returns the canonical cuisine name matching text.
func (c *Cache) MatchCuisineType(ctx context.Context, text string) (string, bool, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return "", false, err
	}
	name, ok := snap.MatchCuisineType(text)
	return name, ok, nil
}

// MatchRestaurants returns every catalog restaurant matching text.
func (c *Cache) MatchRestaurants(ctx context.Context, text string) ([]model.RestaurantRef, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.MatchRestaurants(text), nil
}
