package cacheinfra

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 50000 {
		t.Errorf("expected Capacity to be 50000, got %d", cfg.Capacity)
	}
	if cfg.NumShards != 64 {
		t.Errorf("expected NumShards to be 64, got %d", cfg.NumShards)
	}
	if cfg.TTL != 12*time.Hour {
		t.Errorf("expected TTL to be 12 hours, got %v", cfg.TTL)
	}
	if cfg.EvictionPercentage != 10 {
		t.Errorf("expected EvictionPercentage to be 10, got %d", cfg.EvictionPercentage)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, "Capacity"},
		{"zero shards", func(c *Config) { c.NumShards = 0 }, "NumShards"},
		{"zero ttl", func(c *Config) { c.TTL = 0 }, "TTL"},
		{"eviction percentage too low", func(c *Config) { c.EvictionPercentage = 0 }, "EvictionPercentage"},
		{"eviction percentage too high", func(c *Config) { c.EvictionPercentage = 101 }, "EvictionPercentage"},
		{"negative eviction interval", func(c *Config) { c.EvictionInterval = -time.Second }, "EvictionInterval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error but got none")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %T", err)
			}
			if cfgErr.Field != tt.errorMsg {
				t.Errorf("expected field %q, got %q", tt.errorMsg, cfgErr.Field)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Error("expected error to match ErrConfiguration")
			}
		})
	}
}

func TestNewEntryStore_InvalidConfig(t *testing.T) {
	_, err := NewEntryStore[string](Config{})
	if err == nil || !strings.Contains(err.Error(), "Capacity") {
		t.Errorf("expected capacity error, got %v", err)
	}
}

func newTestStore(t *testing.T) *EntryStore[*int] {
	t.Helper()
	s, err := NewEntryStore[*int](DefaultConfig())
	if err != nil {
		t.Fatalf("NewEntryStore: %v", err)
	}
	return s
}

func TestEntryStore_GetOrCreateOnce(t *testing.T) {
	s := newTestStore(t)

	var builds atomic.Int32
	var wg sync.WaitGroup
	results := make([]*int, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = s.GetOrCreate("sr:match:1", func() *int {
				builds.Add(1)
				v := 42
				return &v
			})
		}(i)
	}
	wg.Wait()

	if builds.Load() != 1 {
		t.Errorf("expected one build, got %d", builds.Load())
	}
	for i, r := range results {
		if r != results[0] {
			t.Fatalf("caller %d saw a different entry", i)
		}
	}
}

func TestEntryStore_ReplaceAndDelete(t *testing.T) {
	s := newTestStore(t)
	one, two := 1, 2
	s.Set("a", &one)

	got := s.Replace("a", func(cur *int, ok bool) (*int, bool) {
		if !ok || *cur != 1 {
			t.Errorf("expected current entry 1, got %v %v", cur, ok)
		}
		return &two, true
	})
	if *got != 2 {
		t.Errorf("expected replacement, got %d", *got)
	}

	kept := s.Replace("a", func(cur *int, ok bool) (*int, bool) { return nil, false })
	if *kept != 2 {
		t.Errorf("expected entry kept, got %v", kept)
	}

	s.Delete("a")
	if s.Has("a") {
		t.Error("expected entry removed")
	}
}

func TestEntryStore_DeleteFunc(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 10; i++ {
		v := i
		s.Set(string(rune('a'+i)), &v)
	}

	removed := s.DeleteFunc(func(_ string, v *int) bool { return *v%2 == 0 })
	if removed != 5 {
		t.Errorf("expected 5 removed, got %d", removed)
	}
	if s.Len() != 5 {
		t.Errorf("expected 5 left, got %d", s.Len())
	}

	seen := 0
	s.Range(func(_ string, v *int) bool {
		if *v%2 == 0 {
			t.Errorf("unexpected even entry %d", *v)
		}
		seen++
		return true
	})
	if seen != 5 {
		t.Errorf("expected to range over 5 entries, got %d", seen)
	}
}
