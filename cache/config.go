package cache

import (
	"fmt"
	"time"

	"github.com/goliatone/go-sportdata-cache/internal/cacheinfra"
	"github.com/goliatone/go-sportdata-cache/lang"
)

// Config exposes the cache options shared by the manager and every store.
type Config struct {
	ExceptionStrategy ExceptionStrategy
	// Languages are fetched when an accessor is called without languages
	// and by the schedule refresher.
	Languages []lang.Language
	// InflightWait bounds how long a caller waits for another caller's
	// fetch of the same key.
	InflightWait time.Duration
	// LivePriorityWindow is how long a live status wins over a summary
	// derived one.
	LivePriorityWindow time.Duration
	RefreshInterval    time.Duration
	RefreshDays        int
	// ScheduleMemoTTL is how long a fetched date or tournament schedule is
	// not fetched again.
	ScheduleMemoTTL time.Duration
	// EvictAfter is how long after its scheduled end, or start when the
	// end is unknown, an event stays cached. Each refresh pass evicts
	// older events.
	EvictAfter time.Duration

	EventStorage   StorageConfig
	ProfileStorage StorageConfig
	StatusStorage  StorageConfig
	VariantStorage StorageConfig
}

// StorageConfig mirrors the underlying sturdyc options of one store.
type StorageConfig struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
	EvictionInterval   time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	events := convertFromInternal(cacheinfra.DefaultConfig())

	profiles := events
	profiles.TTL = 24 * time.Hour

	statuses := events
	statuses.Capacity = 10000
	statuses.TTL = 5 * time.Minute

	variants := events
	variants.Capacity = 5000
	variants.NumShards = 16

	return Config{
		ExceptionStrategy:  Catch,
		Languages:          []lang.Language{lang.MustParse("en")},
		InflightWait:       30 * time.Second,
		LivePriorityWindow: time.Minute,
		RefreshInterval:    time.Hour,
		RefreshDays:        3,
		ScheduleMemoTTL:    24 * time.Hour,
		EvictAfter:         12 * time.Hour,
		EventStorage:       events,
		ProfileStorage:     profiles,
		StatusStorage:      statuses,
		VariantStorage:     variants,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.ExceptionStrategy != Throw && c.ExceptionStrategy != Catch {
		return &ConfigError{Field: "ExceptionStrategy", Message: fmt.Sprintf("unknown strategy %d", c.ExceptionStrategy)}
	}
	if len(c.Languages) == 0 {
		return &ConfigError{Field: "Languages", Message: "at least one default language is required"}
	}
	if c.InflightWait <= 0 {
		return &ConfigError{Field: "InflightWait", Message: "must be positive"}
	}
	if c.LivePriorityWindow < 0 {
		return &ConfigError{Field: "LivePriorityWindow", Message: "must be non-negative"}
	}
	if c.RefreshInterval <= 0 {
		return &ConfigError{Field: "RefreshInterval", Message: "must be positive"}
	}
	if c.RefreshDays <= 0 {
		return &ConfigError{Field: "RefreshDays", Message: "must be positive"}
	}
	if c.ScheduleMemoTTL <= 0 {
		return &ConfigError{Field: "ScheduleMemoTTL", Message: "must be positive"}
	}
	if c.EvictAfter < 0 {
		return &ConfigError{Field: "EvictAfter", Message: "must be non-negative"}
	}

	storages := []struct {
		name string
		cfg  StorageConfig
	}{
		{"EventStorage", c.EventStorage},
		{"ProfileStorage", c.ProfileStorage},
		{"StatusStorage", c.StatusStorage},
		{"VariantStorage", c.VariantStorage},
	}
	for _, s := range storages {
		if err := s.cfg.Validate(); err != nil {
			if cfgErr, ok := err.(*ConfigError); ok {
				return &ConfigError{Field: s.name + "." + cfgErr.Field, Message: cfgErr.Message}
			}
			return err
		}
	}
	return nil
}

// Validate checks whether the storage values are valid.
func (s StorageConfig) Validate() error {
	return s.toInternal().Validate()
}

// EntryStoreConfig returns the storage options in the form the entry store
// constructor expects.
func (s StorageConfig) EntryStoreConfig() cacheinfra.Config {
	return s.toInternal()
}

func (s StorageConfig) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           s.Capacity,
		NumShards:          s.NumShards,
		TTL:                s.TTL,
		EvictionPercentage: s.EvictionPercentage,
		EvictionInterval:   s.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) StorageConfig {
	return StorageConfig{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
