// Package sportevent is the store for matches, stages, tournaments, seasons,
// draws and lotteries.
//
// Entries are built from the identifier alone and filled in by payloads the
// cache.Manager routes here. Accessors on an entry load missing languages
// through the Cache, which implements cacheitem.Loader: it takes fetch
// rights from the in-flight coordinator, calls the data access facade and
// lets the resulting save fan out back into the store.
//
// When a payload answers a request for a different identifier of the same
// kind, the requested identifier becomes an alias of the payload's one and
// both resolve to a single entry. A season requested through a tournament
// shaped payload keeps its own entry.
package sportevent

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/cacheitem"
	"github.com/goliatone/go-sportdata-cache/dataaccess"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/internal/cacheinfra"
	"github.com/goliatone/go-sportdata-cache/internal/inflight"
	"github.com/goliatone/go-sportdata-cache/internal/metrics"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// StoreName is the name the store registers under.
const StoreName = "sport_events"

// Remover broadcasts a removal to the other stores.
type Remover interface {
	RemoveCacheItem(ctx context.Context, id urn.URN, t cache.ItemType, requester string)
}

// Cache is the sport event store.
type Cache struct {
	logger    zerolog.Logger
	metrics   *metrics.Collectors
	strategy  cache.ExceptionStrategy
	languages []lang.Language

	facade  dataaccess.Facade
	remover Remover
	coord   *inflight.Coordinator
	keys    cache.KeySerializer

	entries *cacheinfra.EntryStore[cacheitem.SportEventEntry]
	aliases *xsync.MapOf[urn.URN, urn.URN]
	memo    *gocache.Cache
}

var (
	_ cache.Store          = (*Cache)(nil)
	_ cache.Exporter       = (*Cache)(nil)
	_ cache.HealthReporter = (*Cache)(nil)
	_ cacheitem.Loader     = (*Cache)(nil)
)

// New creates the store. remover may be nil when no other store needs to
// hear about purges.
func New(cfg cache.Config, facade dataaccess.Facade, remover Remover, coord *inflight.Coordinator, logger zerolog.Logger, m *metrics.Collectors) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if facade == nil {
		return nil, &cache.ConfigError{Field: "facade", Message: "a data access facade is required"}
	}
	entries, err := cacheinfra.NewEntryStore[cacheitem.SportEventEntry](cfg.EventStorage.EntryStoreConfig())
	if err != nil {
		return nil, err
	}
	if coord == nil {
		coord = inflight.New(logger, m, cfg.InflightWait)
	}
	return &Cache{
		logger:    logger.With().Str("component", "sport_event_cache").Logger(),
		metrics:   m,
		strategy:  cfg.ExceptionStrategy,
		languages: append([]lang.Language(nil), cfg.Languages...),
		facade:    facade,
		remover:   remover,
		coord:     coord,
		keys:      cache.NewDefaultKeySerializer(),
		entries:   entries,
		aliases:   xsync.NewMapOf[urn.URN, urn.URN](),
		memo:      gocache.New(cfg.ScheduleMemoTTL, cfg.ScheduleMemoTTL/2),
	}, nil
}

// Categories implements cache.Store.
func (c *Cache) Categories() []dto.Category {
	return []dto.Category{
		dto.CategorySportEventSummary,
		dto.CategorySportEventSummaryList,
		dto.CategoryFixture,
		dto.CategoryMatchSummary,
		dto.CategoryRaceSummary,
		dto.CategoryTournamentInfo,
		dto.CategoryTournamentSeasons,
		dto.CategoryMatchTimeline,
		dto.CategorySportList,
		dto.CategoryLotteryDraw,
		dto.CategoryLotteryList,
		dto.CategoryBookingStatus,
	}
}

// DefaultLanguages implements cacheitem.Loader.
func (c *Cache) DefaultLanguages() []lang.Language {
	return append([]lang.Language(nil), c.languages...)
}

func buildable(id urn.URN) bool {
	switch id.Group() {
	case urn.Match, urn.Stage, urn.Tournament, urn.BasicTournament, urn.Season, urn.Draw, urn.Lottery:
		return true
	}
	return false
}

// resolve follows an alias, if any.
func (c *Cache) resolve(id urn.URN) urn.URN {
	if to, ok := c.aliases.Load(id); ok {
		return to
	}
	return id
}

// GetOrBuild returns the entry for id, building an empty one on first use.
// It never reaches upstream.
func (c *Cache) GetOrBuild(id urn.URN) (cacheitem.SportEventEntry, error) {
	id = c.resolve(id)
	if e, ok := c.entries.Get(id.String()); ok {
		return e, nil
	}
	if !buildable(id) {
		return nil, &cache.NotFoundError{ID: id, Err: fmt.Errorf("no sport event kind for %s", id.Group())}
	}
	e, created := c.entries.GetOrCreate(id.String(), func() cacheitem.SportEventEntry {
		e, _ := cacheitem.NewSportEvent(id, c)
		return e
	})
	if created {
		c.logger.Debug().Str("id", id.String()).Str("kind", string(e.Kind())).Msg("entry built")
	}
	return e, nil
}

// Lookup returns the entry for id without building one.
func (c *Cache) Lookup(id urn.URN) (cacheitem.SportEventEntry, bool) {
	return c.entries.Get(c.resolve(id).String())
}

// GetSportEvent returns the entry for id with the summary of every
// language in langs loaded. No languages means the default ones.
func (c *Cache) GetSportEvent(ctx context.Context, id urn.URN, langs []lang.Language) (cacheitem.SportEventEntry, error) {
	e, err := c.GetOrBuild(id)
	if err != nil {
		return nil, err
	}
	if len(langs) == 0 {
		langs = c.languages
	}
	missing := lang.NewSet(e.SummaryLanguages()...).Missing(langs)
	if len(missing) == 0 {
		return e, nil
	}
	if err := c.LoadSummary(ctx, e.ID(), missing, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Alias makes from resolve to the entry of to.
func (c *Cache) Alias(from, to urn.URN) {
	to = c.resolve(to)
	if from == to {
		return
	}
	c.aliases.Store(from, to)
	c.logger.Debug().Str("from", from.String()).Str("to", to.String()).Msg("alias recorded")
}

// CacheHasItem implements cache.Store.
func (c *Cache) CacheHasItem(id urn.URN, t cache.ItemType) bool {
	if !t.Matches(cache.ItemTypeSportEvent) {
		return false
	}
	return c.entries.Has(c.resolve(id).String())
}

// CacheDeleteItem implements cache.Store.
func (c *Cache) CacheDeleteItem(_ context.Context, id urn.URN, t cache.ItemType) {
	if !t.Matches(cache.ItemTypeSportEvent) {
		return
	}
	target := c.resolve(id)
	c.entries.Delete(target.String())
	c.entries.Delete(id.String())
	c.aliases.Delete(id)
	c.aliases.Range(func(from, to urn.URN) bool {
		if to == target {
			c.aliases.Delete(from)
		}
		return true
	})
}

// Purge removes id here and in every other store.
func (c *Cache) Purge(ctx context.Context, id urn.URN) {
	c.CacheDeleteItem(ctx, id, cache.ItemTypeSportEvent)
	c.metrics.RecordEvictions(StoreName, "purge", 1)
	if c.remover != nil {
		c.remover.RemoveCacheItem(ctx, id, cache.ItemTypeAll, StoreName)
	}
}

// EvictBefore removes every entry whose scheduled end, or start when the
// end is unknown, lies strictly before cutoff. Entries without any schedule
// are kept.
func (c *Cache) EvictBefore(cutoff time.Time) int {
	n := c.entries.DeleteFunc(func(_ string, e cacheitem.SportEventEntry) bool {
		start, end := e.ScheduledTimes()
		ref := end
		if ref == nil {
			ref = start
		}
		return ref != nil && ref.Before(cutoff)
	})
	if n > 0 {
		c.aliases.Range(func(from, to urn.URN) bool {
			if !c.entries.Has(to.String()) {
				c.aliases.Delete(from)
			}
			return true
		})
	}
	c.metrics.RecordEvictions(StoreName, "scheduled", n)
	c.logger.Debug().Time("cutoff", cutoff).Int("evicted", n).Msg("evicted past sport events")
	return n
}

// Health implements cache.HealthReporter.
func (c *Cache) Health() cache.StoreHealth {
	h := cache.StoreHealth{ByType: make(map[string]int), Inflight: c.coord.Pending()}
	c.entries.Range(func(_ string, e cacheitem.SportEventEntry) bool {
		h.ItemCount++
		h.ByType[string(e.Kind())]++
		return true
	})
	return h
}
