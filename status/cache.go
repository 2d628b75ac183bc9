// Package status is the store for sport event statuses.
//
// Statuses arrive from two sources: summaries fetched through the data
// access facade and live updates pushed by the feed. Both are accepted,
// except that a summary derived status never replaces a live one received
// within the configured priority window.
package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/cacheitem"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/internal/cacheinfra"
	"github.com/goliatone/go-sportdata-cache/internal/metrics"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

const StoreName = "statuses"

// SummaryLoader asks the owner of an event to fetch its summary even when
// the event already holds one, since schedule entries carry no status. The
// fetch fans out back into this store. sportevent.Cache implements it.
type SummaryLoader interface {
	RefreshSummary(ctx context.Context, id urn.URN, l lang.Language, satisfied func() bool) error
}

type Cache struct {
	logger    zerolog.Logger
	metrics   *metrics.Collectors
	strategy  cache.ExceptionStrategy
	languages []lang.Language
	window    time.Duration
	loader    SummaryLoader
	now       func() time.Time

	entries *cacheinfra.EntryStore[*cacheitem.StatusCI]
}

var (
	_ cache.Store          = (*Cache)(nil)
	_ cache.Exporter       = (*Cache)(nil)
	_ cache.HealthReporter = (*Cache)(nil)
)

// New creates the store. loader may be nil, in which case GetStatus only
// serves what was pushed or saved.
func New(cfg cache.Config, loader SummaryLoader, logger zerolog.Logger, m *metrics.Collectors) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	entries, err := cacheinfra.NewEntryStore[*cacheitem.StatusCI](cfg.StatusStorage.EntryStoreConfig())
	if err != nil {
		return nil, err
	}
	return &Cache{
		logger:    logger.With().Str("component", "status_cache").Logger(),
		metrics:   m,
		strategy:  cfg.ExceptionStrategy,
		languages: append([]lang.Language(nil), cfg.Languages...),
		window:    cfg.LivePriorityWindow,
		loader:    loader,
		now:       time.Now,
		entries:   entries,
	}, nil
}

// Categories implements cache.Store.
func (c *Cache) Categories() []dto.Category {
	return []dto.Category{
		dto.CategorySportEventStatus,
		dto.CategoryMatchSummary,
		dto.CategoryRaceSummary,
		dto.CategorySportEventSummary,
		dto.CategoryMatchTimeline,
	}
}

func (c *Cache) Lookup(id urn.URN) (*cacheitem.StatusCI, bool) {
	return c.entries.Get(id.String())
}

// GetStatus returns the cached status of eventID. When none is cached the
// event summary is fetched, and when the feed still has nothing a synthetic
// not started status is returned without being cached.
func (c *Cache) GetStatus(ctx context.Context, eventID urn.URN) (*cacheitem.StatusCI, error) {
	if s, ok := c.Lookup(eventID); ok {
		return s, nil
	}
	if c.loader != nil && len(c.languages) > 0 {
		cached := func() bool {
			_, ok := c.Lookup(eventID)
			return ok
		}
		err := c.loader.RefreshSummary(ctx, eventID, c.languages[0], cached)
		if err != nil {
			err = fmt.Errorf("load status: %w", err)
		}
		if err := c.strategy.Handle(c.logger.With().Str("id", eventID.String()).Logger(), err, "status load failed"); err != nil {
			return nil, err
		}
		if s, ok := c.Lookup(eventID); ok {
			return s, nil
		}
	}
	c.logger.Debug().Str("id", eventID.String()).Msg("no status in feed, using synthetic")
	return cacheitem.NewSyntheticStatus(eventID), nil
}

// AddLiveStatus applies a status received from a live push message. Live
// updates always win.
func (c *Cache) AddLiveStatus(eventID urn.URN, s *dto.SportEventStatus) error {
	if eventID.IsZero() || s == nil {
		return &cache.NotFoundError{ID: eventID, Err: errors.New("live status without event")}
	}
	c.apply(eventID, s, cacheitem.ProvenanceLive)
	return nil
}

// apply stores s unless it is summary derived and a recent live status is
// cached. It reports whether s was applied.
func (c *Cache) apply(eventID urn.URN, s *dto.SportEventStatus, src cacheitem.Provenance) bool {
	now := c.now()
	e, _ := c.entries.GetOrCreate(eventID.String(), func() *cacheitem.StatusCI {
		return cacheitem.NewStatusCI(eventID)
	})
	if src == cacheitem.ProvenanceSummary {
		if prov, at := e.Source(); prov == cacheitem.ProvenanceLive && now.Sub(at) < c.window {
			c.logger.Debug().
				Str("id", eventID.String()).
				Dur("live_age", now.Sub(at)).
				Msg("summary status skipped, live status is newer")
			return false
		}
	}
	e.Apply(s, src, now)
	return true
}

// CacheHasItem implements cache.Store.
func (c *Cache) CacheHasItem(id urn.URN, t cache.ItemType) bool {
	return t.Matches(cache.ItemTypeStatus) && c.entries.Has(id.String())
}

// CacheDeleteItem implements cache.Store.
func (c *Cache) CacheDeleteItem(_ context.Context, id urn.URN, t cache.ItemType) {
	if t.Matches(cache.ItemTypeStatus) {
		c.entries.Delete(id.String())
	}
}

// Health implements cache.HealthReporter.
func (c *Cache) Health() cache.StoreHealth {
	n := c.entries.Len()
	h := cache.StoreHealth{ItemCount: n, ByType: map[string]int{}}
	if n > 0 {
		h.ByType[string(cacheitem.KindStatus)] = n
	}
	return h
}
