package cacheinfra

import (
	"errors"
	"sync"
	"time"

	"github.com/viccon/sturdyc"
)

// ErrConfiguration is matched by every ConfigError.
var ErrConfiguration = errors.New("configuration error")

// Config holds the storage options of one entry store.
type Config struct {
	// Capacity defines the maximum number of entries that the store can hold.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of shards for concurrent access.
	// Must be greater than 0. Default: 64
	NumShards int

	// TTL is how long an entry lives without being written again. Sport
	// events are normally removed by the sweep before it elapses.
	// Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the store reaches its capacity. Must be between 1-100.
	// Default: 10
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are dropped.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config suited to the sport event store.
func DefaultConfig() Config {
	return Config{
		Capacity:           50000,
		NumShards:          64,
		TTL:                12 * time.Hour,
		EvictionPercentage: 10,
	}
}

// ToSturdycOptions converts the options that are not constructor arguments.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option
	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// EntryStore is an identifier keyed store of mutable entries backed by a
// sturdyc client. Lookups go straight to sturdyc; insert-if-absent,
// replacement and sweeps take the structural lock.
type EntryStore[V any] struct {
	client *sturdyc.Client[V]
	mu     sync.Mutex
}

// NewEntryStore validates cfg and builds the sturdyc client.
//
// Capacity, NumShards, TTL and EvictionPercentage are sturdyc.New
// arguments, the rest is applied via ToSturdycOptions.
func NewEntryStore[V any](cfg Config) (*EntryStore[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := sturdyc.New[V](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)
	return &EntryStore[V]{client: client}, nil
}

func (s *EntryStore[V]) Get(key string) (V, bool) {
	return s.client.Get(key)
}

// GetOrCreate returns the entry under key, building and inserting it when
// absent. build runs at most once per missing key and must not block.
func (s *EntryStore[V]) GetOrCreate(key string, build func() V) (v V, created bool) {
	if v, ok := s.client.Get(key); ok {
		return v, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.client.Get(key); ok {
		return v, false
	}
	v = build()
	s.client.Set(key, v)
	return v, true
}

// Replace swaps the entry under key when swap returns true. swap sees the
// current entry, if any, under the structural lock.
func (s *EntryStore[V]) Replace(key string, swap func(cur V, ok bool) (V, bool)) V {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.client.Get(key)
	next, replace := swap(cur, ok)
	if !replace {
		return cur
	}
	s.client.Set(key, next)
	return next
}

// Set stores v, overwriting any existing entry.
func (s *EntryStore[V]) Set(key string, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client.Set(key, v)
}

func (s *EntryStore[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client.Delete(key)
}

func (s *EntryStore[V]) Has(key string) bool {
	_, ok := s.client.Get(key)
	return ok
}

func (s *EntryStore[V]) Len() int {
	return s.client.Size()
}

// Range calls fn for every live entry until fn returns false. Entries added
// while ranging may be missed.
func (s *EntryStore[V]) Range(fn func(key string, v V) bool) {
	for _, key := range s.client.ScanKeys() {
		v, ok := s.client.Get(key)
		if !ok {
			continue
		}
		if !fn(key, v) {
			return
		}
	}
}

// DeleteFunc removes every entry for which match returns true and returns
// the count removed. match must not block.
func (s *EntryStore[V]) DeleteFunc(match func(key string, v V) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, key := range s.client.ScanKeys() {
		v, ok := s.client.Get(key)
		if !ok || !match(key, v) {
			continue
		}
		s.client.Delete(key)
		removed++
	}
	return removed
}
