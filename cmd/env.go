package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/citymunch/slack-bot/internal/catalog"
	"github.com/citymunch/slack-bot/internal/criteria"
	"github.com/citymunch/slack-bot/internal/location"
	"github.com/citymunch/slack-bot/internal/offers"
	"github.com/citymunch/slack-bot/internal/resilience"
	"github.com/citymunch/slack-bot/internal/search"
	"github.com/citymunch/slack-bot/internal/showmore"
	"github.com/citymunch/slack-bot/internal/store"
	"github.com/citymunch/slack-bot/pkg/citymunch"
)

// searchEnv holds the initialized clients, stores and services needed by the
// search/parse/serve commands.
type searchEnv struct {
	Client   citymunch.Client
	Catalog  *catalog.Cache
	Store    store.Store
	ShowMore showmore.Store
	Parser   *criteria.Parser
	Engine   *offers.Engine
	Service  *search.Service
}

// Close waits for pending history writes and releases stores.
func (e *searchEnv) Close() {
	if e.Parser != nil {
		e.Parser.Wait()
	}
	if e.ShowMore != nil {
		_ = e.ShowMore.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initSearchEnv validates config for mode and wires the full search stack.
// The catalog is not started; callers either Run it or Refresh it once.
// Callers should defer env.Close().
func initSearchEnv(ctx context.Context, mode string) (*searchEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	tz, err := time.LoadLocation(cfg.Search.Timezone)
	if err != nil {
		return nil, eris.Wrap(err, "load search timezone")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	sm, err := initShowMore(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	client := initClient()
	cat := initCatalog(client)

	parser := criteria.NewParser(cat, location.NewResolver(client), st, st,
		criteria.WithRecentLocationWindow(cfg.History.RecentLocationWindow()),
	)
	engine := offers.NewEngine(client, offers.Config{
		AreaThresholdMeters: cfg.Search.AreaThresholdMeters,
		RadiusKM:            cfg.Search.RadiusKM,
		MaxLines:            cfg.Search.MaxLines,
		FirstPageLines:      cfg.Search.FirstPageLines,
		LinkBaseURL:         cfg.Search.LinkBaseURL,
		Location:            tz,
	})

	return &searchEnv{
		Client:   client,
		Catalog:  cat,
		Store:    st,
		ShowMore: sm,
		Parser:   parser,
		Engine:   engine,
		Service:  search.NewService(parser, engine, sm, st, st),
	}, nil
}

func initClient() citymunch.Client {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.API.RetryAttempts

	opts := []citymunch.Option{
		citymunch.WithRetry(retry),
	}
	if cfg.API.BaseURL != "" {
		opts = append(opts, citymunch.WithBaseURL(cfg.API.BaseURL))
	}
	if cfg.API.Accept != "" {
		opts = append(opts, citymunch.WithAccept(cfg.API.Accept))
	}
	if cfg.API.RateLimit > 0 {
		opts = append(opts, citymunch.WithRateLimit(cfg.API.RateLimit))
	}
	if cfg.API.TimeoutSecs > 0 {
		opts = append(opts, citymunch.WithTimeout(cfg.API.Timeout()))
	}
	return citymunch.NewClient(cfg.API.Key, opts...)
}

// initCatalog uses the static snapshot file when configured, otherwise the
// partner API's search hints.
func initCatalog(client citymunch.Client) *catalog.Cache {
	var src catalog.Source
	if cfg.Catalog.StaticFile != "" {
		zap.L().Info("catalog: using static snapshot", zap.String("path", cfg.Catalog.StaticFile))
		src = catalog.NewFileSource(cfg.Catalog.StaticFile)
	} else {
		src = catalog.NewAPISource(client)
	}

	var opts []catalog.Option
	if d := cfg.Catalog.RefreshInterval(); d > 0 {
		opts = append(opts, catalog.WithRefreshInterval(d))
	}
	return catalog.New(src, opts...)
}

func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "", "memory":
		st = store.NewMemory()
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, poolConfig())
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if len(cfg.Events.KafkaBrokers) > 0 {
		zap.L().Info("publishing search queries",
			zap.Strings("brokers", cfg.Events.KafkaBrokers),
			zap.String("topic", cfg.Events.Topic),
		)
		st = store.NewPublisher(st, store.NewKafkaWriter(cfg.Events.KafkaBrokers, cfg.Events.Topic))
	}
	return st, nil
}

// poolConfig returns the configured pool limits, or nil when none are set.
func poolConfig() *store.PoolConfig {
	if cfg.Store.MaxConns <= 0 && cfg.Store.MinConns <= 0 {
		return nil
	}
	return &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	}
}

func initShowMore(ctx context.Context) (showmore.Store, error) {
	ttl := cfg.ShowMore.TTL()
	switch cfg.ShowMore.Driver {
	case "", "memory":
		return showmore.NewMemory(ttl), nil
	case "redis":
		rs, err := showmore.NewRedis(ctx, cfg.ShowMore.RedisAddr, ttl)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, eris.Errorf("unsupported showmore driver: %s", cfg.ShowMore.Driver)
	}
}
