// Package profile is the store for competitor and player profiles.
//
// Competitor names also arrive as fragments of sport event summaries. A
// competitor first seen as a plain competitor is re-typed into a team
// competitor once a sport event names it with a qualifier, keeping every
// language already loaded.
package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

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

const StoreName = "profiles"

// Competitor is implemented by *cacheitem.CompetitorCI and
// *cacheitem.TeamCompetitorCI.
type Competitor interface {
	cacheitem.Entry
	Names(langs []lang.Language) map[lang.Language]string
	Name(l lang.Language) string
	HasNames(langs []lang.Language) bool
	MissingProfileLanguages(langs []lang.Language) []lang.Language
	MergeCompetitor(in dto.Competitor, l lang.Language)
	PlayerIDs() []urn.URN
}

var (
	_ Competitor = (*cacheitem.CompetitorCI)(nil)
	_ Competitor = (*cacheitem.TeamCompetitorCI)(nil)
)

type Cache struct {
	logger    zerolog.Logger
	metrics   *metrics.Collectors
	strategy  cache.ExceptionStrategy
	languages []lang.Language

	facade dataaccess.Facade
	coord  *inflight.Coordinator
	keys   cache.KeySerializer

	competitors *cacheinfra.EntryStore[Competitor]
	players     *cacheinfra.EntryStore[*cacheitem.PlayerCI]
}

var (
	_ cache.Store          = (*Cache)(nil)
	_ cache.Exporter       = (*Cache)(nil)
	_ cache.HealthReporter = (*Cache)(nil)
)

func New(cfg cache.Config, facade dataaccess.Facade, coord *inflight.Coordinator, logger zerolog.Logger, m *metrics.Collectors) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if facade == nil {
		return nil, &cache.ConfigError{Field: "facade", Message: "a data access facade is required"}
	}
	storage := cfg.ProfileStorage.EntryStoreConfig()
	competitors, err := cacheinfra.NewEntryStore[Competitor](storage)
	if err != nil {
		return nil, err
	}
	players, err := cacheinfra.NewEntryStore[*cacheitem.PlayerCI](storage)
	if err != nil {
		return nil, err
	}
	if coord == nil {
		coord = inflight.New(logger, m, cfg.InflightWait)
	}
	return &Cache{
		logger:      logger.With().Str("component", "profile_cache").Logger(),
		metrics:     m,
		strategy:    cfg.ExceptionStrategy,
		languages:   append([]lang.Language(nil), cfg.Languages...),
		facade:      facade,
		coord:       coord,
		keys:        cache.NewDefaultKeySerializer(),
		competitors: competitors,
		players:     players,
	}, nil
}

// Categories implements cache.Store.
func (c *Cache) Categories() []dto.Category {
	return []dto.Category{
		dto.CategoryPlayerProfile,
		dto.CategoryCompetitorProfile,
		dto.CategorySimpleTeamProfile,
		dto.CategoryMatchSummary,
		dto.CategoryFixture,
		dto.CategoryTournamentInfo,
		dto.CategorySportEventSummary,
	}
}

func (c *Cache) LookupCompetitor(id urn.URN) (Competitor, bool) {
	return c.competitors.Get(id.String())
}

func (c *Cache) LookupPlayer(id urn.URN) (*cacheitem.PlayerCI, bool) {
	return c.players.Get(id.String())
}

func (c *Cache) competitor(id urn.URN) Competitor {
	e, _ := c.competitors.GetOrCreate(id.String(), func() Competitor {
		return cacheitem.NewCompetitorCI(id)
	})
	return e
}

// mergeCompetitor runs merge on the stored entry of id. When the entry was
// re-typed while merge ran, merge is repeated on the replacement so the
// data is not left in the orphaned entry. Merges are idempotent.
func (c *Cache) mergeCompetitor(id urn.URN, merge func(Competitor)) Competitor {
	e := c.competitor(id)
	for {
		merge(e)
		cur, ok := c.competitors.Get(id.String())
		if !ok || cur == e {
			return e
		}
		e = cur
	}
}

// teamCompetitor returns the team competitor for id, re-typing a plain
// competitor entry when needed.
func (c *Cache) teamCompetitor(id urn.URN) *cacheitem.TeamCompetitorCI {
	retyped := false
	e := c.competitors.Replace(id.String(), func(cur Competitor, ok bool) (Competitor, bool) {
		if !ok {
			return cacheitem.NewTeamCompetitorCI(id), true
		}
		if plain, isPlain := cur.(*cacheitem.CompetitorCI); isPlain {
			retyped = true
			return cacheitem.NewTeamCompetitorFrom(plain), true
		}
		return cur, false
	})
	if retyped {
		c.logger.Debug().Str("id", id.String()).Msg("competitor re-typed to team competitor")
	}
	return e.(*cacheitem.TeamCompetitorCI)
}

func (c *Cache) player(id urn.URN) *cacheitem.PlayerCI {
	e, _ := c.players.GetOrCreate(id.String(), func() *cacheitem.PlayerCI {
		return cacheitem.NewPlayerCI(id)
	})
	return e
}

func (c *Cache) langsOrDefault(langs []lang.Language) []lang.Language {
	if len(langs) == 0 {
		return c.languages
	}
	return langs
}

// GetCompetitor returns the competitor profile with every language in
// langs loaded. Only the missing languages are fetched.
func (c *Cache) GetCompetitor(ctx context.Context, id urn.URN, langs []lang.Language) (Competitor, error) {
	langs = c.langsOrDefault(langs)
	if err := c.loadCompetitor(ctx, id, langs); err != nil {
		return nil, err
	}
	e, ok := c.LookupCompetitor(id)
	if !ok {
		return nil, &cache.NotFoundError{ID: id, Err: errors.New("no competitor profile")}
	}
	return e, nil
}

func (c *Cache) loadCompetitor(ctx context.Context, id urn.URN, langs []lang.Language) error {
	missing := func() []lang.Language {
		e, ok := c.LookupCompetitor(id)
		if !ok {
			return langs
		}
		return e.MissingProfileLanguages(langs)
	}
	requester := func() cache.Requester {
		if e, ok := c.LookupCompetitor(id); ok {
			return e
		}
		return nil
	}
	return c.load(ctx, id, missing, requester)
}

// GetPlayer returns the player profile with every language in langs
// loaded. When the player's competitor is cached with names in all of
// langs, the competitor profile is fetched instead since it carries the
// whole squad.
func (c *Cache) GetPlayer(ctx context.Context, id urn.URN, langs []lang.Language) (*cacheitem.PlayerCI, error) {
	langs = c.langsOrDefault(langs)
	missing := func() []lang.Language {
		p, ok := c.LookupPlayer(id)
		if !ok {
			return langs
		}
		return p.MissingProfileLanguages(langs)
	}
	if len(missing()) == 0 {
		p, _ := c.LookupPlayer(id)
		return p, nil
	}

	if p, ok := c.LookupPlayer(id); ok {
		if cid := p.CompetitorID(); !cid.IsZero() {
			if comp, ok := c.LookupCompetitor(cid); ok && comp.HasNames(langs) {
				c.logger.Debug().Str("player", id.String()).Str("competitor", cid.String()).Msg("loading player through competitor profile")
				if err := c.loadCompetitor(ctx, cid, missing()); err != nil {
					return nil, err
				}
			}
		}
	}

	requester := func() cache.Requester {
		if p, ok := c.LookupPlayer(id); ok {
			return p
		}
		return nil
	}
	if err := c.load(ctx, id, missing, requester); err != nil {
		return nil, err
	}
	p, ok := c.LookupPlayer(id)
	if !ok {
		return nil, &cache.NotFoundError{ID: id, Err: errors.New("no player profile")}
	}
	return p, nil
}

// load fetches the languages missing reports once the caller holds the
// fetch rights for id. Languages are fetched concurrently.
func (c *Cache) load(ctx context.Context, id urn.URN, missing func() []lang.Language, requester func() cache.Requester) error {
	if len(missing()) == 0 {
		return nil
	}
	lease := c.coord.Acquire(ctx, c.keys.SerializeKey("profile", id))
	defer lease.Release()

	todo := missing()
	if len(todo) == 0 {
		return nil
	}
	req := requester()

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, l := range todo {
		g.Go(func() error {
			if err := c.facade.FetchCompetitorOrPlayerProfile(ctx, id, l, req); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	if err != nil {
		err = &cache.NotFoundError{ID: id, Err: fmt.Errorf("load profile: %w", err)}
	}
	return c.strategy.Handle(c.logger.With().Str("id", id.String()).Logger(), err, "profile load failed, serving cached data")
}

// CacheHasItem implements cache.Store.
func (c *Cache) CacheHasItem(id urn.URN, t cache.ItemType) bool {
	if t.Matches(cache.ItemTypeCompetitor) && c.competitors.Has(id.String()) {
		return true
	}
	return t.Matches(cache.ItemTypePlayer) && c.players.Has(id.String())
}

// CacheDeleteItem implements cache.Store.
func (c *Cache) CacheDeleteItem(_ context.Context, id urn.URN, t cache.ItemType) {
	if t.Matches(cache.ItemTypeCompetitor) {
		c.competitors.Delete(id.String())
	}
	if t.Matches(cache.ItemTypePlayer) {
		c.players.Delete(id.String())
	}
}

// Health implements cache.HealthReporter.
func (c *Cache) Health() cache.StoreHealth {
	h := cache.StoreHealth{ByType: make(map[string]int)}
	c.competitors.Range(func(_ string, e Competitor) bool {
		h.ItemCount++
		h.ByType[string(e.Kind())]++
		return true
	})
	c.players.Range(func(_ string, p *cacheitem.PlayerCI) bool {
		h.ItemCount++
		h.ByType[string(p.Kind())]++
		return true
	})
	return h
}
