package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	API      APIConfig      `yaml:"api" mapstructure:"api"`
	Catalog  CatalogConfig  `yaml:"catalog" mapstructure:"catalog"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	History  HistoryConfig  `yaml:"history" mapstructure:"history"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	ShowMore ShowMoreConfig `yaml:"showmore" mapstructure:"showmore"`
	Events   EventsConfig   `yaml:"events" mapstructure:"events"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// APIConfig holds CityMunch partner API settings.
type APIConfig struct {
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	Key           string  `yaml:"key" mapstructure:"key"`
	Accept        string  `yaml:"accept" mapstructure:"accept"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit     float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RetryAttempts int     `yaml:"retry_attempts" mapstructure:"retry_attempts"`
}

// Timeout returns the per-request HTTP timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// CatalogConfig configures the cuisine/restaurant catalog refresh.
type CatalogConfig struct {
	RefreshIntervalMins int    `yaml:"refresh_interval_mins" mapstructure:"refresh_interval_mins"`
	StaticFile          string `yaml:"static_file" mapstructure:"static_file"`
}

// RefreshInterval returns the catalog refresh period.
func (c CatalogConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMins) * time.Minute
}

// SearchConfig configures offer ranking and formatting.
type SearchConfig struct {
	AreaThresholdMeters float64 `yaml:"area_threshold_meters" mapstructure:"area_threshold_meters"`
	RadiusKM            float64 `yaml:"radius_km" mapstructure:"radius_km"`
	MaxLines            int     `yaml:"max_lines" mapstructure:"max_lines"`
	FirstPageLines      int     `yaml:"first_page_lines" mapstructure:"first_page_lines"`
	Timezone            string  `yaml:"timezone" mapstructure:"timezone"`
	LinkBaseURL         string  `yaml:"link_base_url" mapstructure:"link_base_url"`
}

// HistoryConfig configures how far back a remembered location is reused.
type HistoryConfig struct {
	RecentLocationHours int `yaml:"recent_location_hours" mapstructure:"recent_location_hours"`
}

// RecentLocationWindow returns the lookback for "near me" style queries.
func (c HistoryConfig) RecentLocationWindow() time.Duration {
	return time.Duration(c.RecentLocationHours) * time.Hour
}

// StoreConfig configures the history/preference backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ShowMoreConfig configures where second pages are parked.
type ShowMoreConfig struct {
	Driver    string `yaml:"driver" mapstructure:"driver"`
	RedisAddr string `yaml:"redis_addr" mapstructure:"redis_addr"`
	TTLHours  int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// TTL returns how long a second page stays retrievable.
func (c ShowMoreConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// EventsConfig configures the search query event stream.
type EventsConfig struct {
	KafkaBrokers []string `yaml:"kafka_brokers" mapstructure:"kafka_brokers"`
	Topic        string   `yaml:"topic" mapstructure:"topic"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CITYMUNCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("api.base_url", "https://api.citymunchapp.com")
	v.SetDefault("api.key", "")
	v.SetDefault("api.accept", "application/vnd.citymunch.v14+json")
	v.SetDefault("api.timeout_secs", 30)
	v.SetDefault("api.rate_limit", 20)
	v.SetDefault("api.retry_attempts", 3)
	v.SetDefault("catalog.refresh_interval_mins", 20)
	v.SetDefault("catalog.static_file", "")
	v.SetDefault("search.area_threshold_meters", 1200)
	v.SetDefault("search.radius_km", 1.2)
	v.SetDefault("search.max_lines", 10)
	v.SetDefault("search.first_page_lines", 3)
	v.SetDefault("search.timezone", "Europe/London")
	v.SetDefault("search.link_base_url", "https://cmun.ch")
	v.SetDefault("history.recent_location_hours", 6)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("showmore.driver", "memory")
	v.SetDefault("showmore.redis_addr", "localhost:6379")
	v.SetDefault("showmore.ttl_hours", 24)
	v.SetDefault("events.kafka_brokers", []string{})
	v.SetDefault("events.topic", "search.queries")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// "search" (one-shot CLI lookups), "serve" and "migrate".
func (c *Config) Validate(mode string) error {
	var errs []error

	switch mode {
	case "search", "serve":
		if c.API.Key == "" {
			errs = append(errs, errors.New("api.key is required"))
		}
		if c.Search.MaxLines < 1 {
			errs = append(errs, errors.New("search.max_lines must be > 0"))
		}
		if c.Search.FirstPageLines < 1 || c.Search.FirstPageLines > c.Search.MaxLines {
			errs = append(errs, errors.New("search.first_page_lines must be between 1 and search.max_lines"))
		}
		if _, err := time.LoadLocation(c.Search.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("search.timezone %q is invalid", c.Search.Timezone))
		}
		if mode == "serve" && c.Server.Port <= 0 {
			errs = append(errs, errors.New("server.port must be > 0"))
		}
		if mode == "serve" && c.ShowMore.Driver == "redis" && c.ShowMore.RedisAddr == "" {
			errs = append(errs, errors.New("showmore.redis_addr is required for the redis driver"))
		}
	case "migrate":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "", "memory":
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("store.database_url is required for the %s driver", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not supported", c.Store.Driver))
	}
	if c.Store.MaxConns < 0 || c.Store.MinConns < 0 {
		errs = append(errs, errors.New("store.max_conns and store.min_conns must be >= 0"))
	}
	if c.Store.MaxConns > 0 && c.Store.MinConns > c.Store.MaxConns {
		errs = append(errs, errors.New("store.min_conns must not exceed store.max_conns"))
	}

	if len(c.Events.KafkaBrokers) > 0 && c.Events.Topic == "" {
		errs = append(errs, errors.New("events.topic is required when kafka brokers are set"))
	}

	if len(errs) > 0 {
		return eris.Wrap(errors.Join(errs...), "config: validate "+mode)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
