// Package config loads the cache configuration in three layers: built in
// defaults, an optional YAML file, and SPORTCACHE_ environment variables.
//
// Nested keys are addressed in the environment with a double underscore,
// e.g. SPORTCACHE_STORAGE__EVENTS__TTL=2h sets storage.events.ttl.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/dataaccess"
	"github.com/goliatone/go-sportdata-cache/lang"
)

const EnvPrefix = "SPORTCACHE_"

// sliceKeys may be given as comma separated strings in the environment.
var sliceKeys = []string{"languages"}

type Config struct {
	ExceptionStrategy  string        `koanf:"exception_strategy"`
	Languages          []string      `koanf:"languages"`
	InflightWait       time.Duration `koanf:"inflight_wait"`
	LivePriorityWindow time.Duration `koanf:"live_priority_window"`

	Refresh  RefreshConfig  `koanf:"refresh"`
	Storage  StorageConfigs `koanf:"storage"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Snapshot SnapshotConfig `koanf:"snapshot"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type RefreshConfig struct {
	Interval   time.Duration `koanf:"interval"`
	Days       int           `koanf:"days"`
	MemoTTL    time.Duration `koanf:"memo_ttl"`
	EvictAfter time.Duration `koanf:"evict_after"`
}

type StorageConfigs struct {
	Events   StorageConfig `koanf:"events"`
	Profiles StorageConfig `koanf:"profiles"`
	Statuses StorageConfig `koanf:"statuses"`
	Variants StorageConfig `koanf:"variants"`
}

type StorageConfig struct {
	Capacity           int           `koanf:"capacity"`
	NumShards          int           `koanf:"num_shards"`
	TTL                time.Duration `koanf:"ttl"`
	EvictionPercentage int           `koanf:"eviction_percentage"`
	EvictionInterval   time.Duration `koanf:"eviction_interval"`
}

type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Name         string        `koanf:"name"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

type SnapshotConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

type LoggingConfig struct {
	Level string `koanf:"level"`
	// Format is "json" or "console".
	Format string `koanf:"format"`
}

// Default mirrors cache.DefaultConfig and dataaccess.DefaultBreakerConfig.
func Default() *Config {
	c := cache.DefaultConfig()
	b := dataaccess.DefaultBreakerConfig()

	langs := make([]string, 0, len(c.Languages))
	for _, l := range c.Languages {
		langs = append(langs, l.String())
	}
	return &Config{
		ExceptionStrategy:  c.ExceptionStrategy.String(),
		Languages:          langs,
		InflightWait:       c.InflightWait,
		LivePriorityWindow: c.LivePriorityWindow,
		Refresh: RefreshConfig{
			Interval:   c.RefreshInterval,
			Days:       c.RefreshDays,
			MemoTTL:    c.ScheduleMemoTTL,
			EvictAfter: c.EvictAfter,
		},
		Storage: StorageConfigs{
			Events:   fromStorage(c.EventStorage),
			Profiles: fromStorage(c.ProfileStorage),
			Statuses: fromStorage(c.StatusStorage),
			Variants: fromStorage(c.VariantStorage),
		},
		Breaker: BreakerConfig{
			Enabled:      true,
			Name:         b.Name,
			MaxRequests:  b.MaxRequests,
			Interval:     b.Interval,
			Timeout:      b.Timeout,
			MinRequests:  b.MinRequests,
			FailureRatio: b.FailureRatio,
		},
		Snapshot: SnapshotConfig{Interval: 5 * time.Minute},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load layers defaults, the YAML file at path (skipped when path is empty)
// and the environment, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitSlices(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if _, err := cfg.Cache(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Breaker.Enabled {
		if err := cfg.BreakerSettings().Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	if cfg.Snapshot.Enabled && cfg.Snapshot.Interval <= 0 {
		return nil, fmt.Errorf("invalid configuration: %w", &cache.ConfigError{Field: "Snapshot.Interval", Message: "must be positive"})
	}
	return cfg, nil
}

// envKey maps SPORTCACHE_STORAGE__EVENTS__TTL to storage.events.ttl.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func splitSlices(k *koanf.Koanf) error {
	for _, path := range sliceKeys {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

// Cache converts c into the validated cache configuration.
func (c *Config) Cache() (cache.Config, error) {
	strategy, err := cache.ParseExceptionStrategy(strings.ToLower(c.ExceptionStrategy))
	if err != nil {
		return cache.Config{}, err
	}
	langs, err := lang.ParseAll(c.Languages)
	if err != nil {
		return cache.Config{}, &cache.ConfigError{Field: "Languages", Message: err.Error()}
	}
	out := cache.Config{
		ExceptionStrategy:  strategy,
		Languages:          langs,
		InflightWait:       c.InflightWait,
		LivePriorityWindow: c.LivePriorityWindow,
		RefreshInterval:    c.Refresh.Interval,
		RefreshDays:        c.Refresh.Days,
		ScheduleMemoTTL:    c.Refresh.MemoTTL,
		EvictAfter:         c.Refresh.EvictAfter,
		EventStorage:       c.Storage.Events.toCache(),
		ProfileStorage:     c.Storage.Profiles.toCache(),
		StatusStorage:      c.Storage.Statuses.toCache(),
		VariantStorage:     c.Storage.Variants.toCache(),
	}
	return out, out.Validate()
}

func (c *Config) BreakerSettings() dataaccess.BreakerConfig {
	return dataaccess.BreakerConfig{
		Name:         c.Breaker.Name,
		MaxRequests:  c.Breaker.MaxRequests,
		Interval:     c.Breaker.Interval,
		Timeout:      c.Breaker.Timeout,
		MinRequests:  c.Breaker.MinRequests,
		FailureRatio: c.Breaker.FailureRatio,
	}
}

// Logger builds the root logger. w defaults to stderr.
func (c *Config) Logger(w io.Writer) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	level, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil {
		return zerolog.Nop(), &cache.ConfigError{Field: "Logging.Level", Message: err.Error()}
	}
	if c.Logging.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

func fromStorage(s cache.StorageConfig) StorageConfig {
	return StorageConfig{
		Capacity:           s.Capacity,
		NumShards:          s.NumShards,
		TTL:                s.TTL,
		EvictionPercentage: s.EvictionPercentage,
		EvictionInterval:   s.EvictionInterval,
	}
}

func (s StorageConfig) toCache() cache.StorageConfig {
	return cache.StorageConfig{
		Capacity:           s.Capacity,
		NumShards:          s.NumShards,
		TTL:                s.TTL,
		EvictionPercentage: s.EvictionPercentage,
		EvictionInterval:   s.EvictionInterval,
	}
}
