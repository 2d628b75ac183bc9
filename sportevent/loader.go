package sportevent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/cacheitem"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// LoadSummary implements cacheitem.Loader.
func (c *Cache) LoadSummary(ctx context.Context, id urn.URN, langs []lang.Language, requester cacheitem.Entry) error {
	return c.load(ctx, "summary", id, langs, requester, cacheitem.SportEventEntry.SummaryLanguages,
		func(ctx context.Context, l lang.Language) error {
			return c.facade.FetchSummary(ctx, id, l, requester)
		})
}

// LoadFixture implements cacheitem.Loader.
func (c *Cache) LoadFixture(ctx context.Context, id urn.URN, langs []lang.Language, requester cacheitem.Entry) error {
	return c.load(ctx, "fixture", id, langs, requester, cacheitem.SportEventEntry.FixtureLanguages,
		func(ctx context.Context, l lang.Language) error {
			return c.facade.FetchFixture(ctx, id, l, true, requester)
		})
}

// LoadSeasons implements cacheitem.Loader.
func (c *Cache) LoadSeasons(ctx context.Context, id urn.URN, langs []lang.Language, requester cacheitem.Entry) error {
	return c.load(ctx, "tournament_seasons", id, langs, requester, seasonLanguages,
		func(ctx context.Context, l lang.Language) error {
			_, err := c.facade.FetchSeasonsForTournament(ctx, id, l)
			return err
		})
}

// LoadTimeline implements cacheitem.Loader.
func (c *Cache) LoadTimeline(ctx context.Context, id urn.URN, langs []lang.Language, requester cacheitem.Entry) error {
	return c.load(ctx, "timeline", id, langs, requester, timelineLanguages,
		func(ctx context.Context, l lang.Language) error {
			_, err := c.facade.FetchOngoingEventTimeline(ctx, id, l)
			return err
		})
}

func seasonLanguages(e cacheitem.SportEventEntry) []lang.Language {
	if t, ok := e.(*cacheitem.TournamentInfoCI); ok {
		return t.SeasonLanguages()
	}
	return nil
}

func timelineLanguages(e cacheitem.SportEventEntry) []lang.Language {
	if m, ok := e.(*cacheitem.MatchCI); ok {
		return m.TimelineLanguages()
	}
	return nil
}

// RefreshSummary fetches the summary of id in l whether or not l is
// already marked as loaded. It shares the fetch lease of LoadSummary, and
// once the lease is held it returns early when satisfied reports true.
func (c *Cache) RefreshSummary(ctx context.Context, id urn.URN, l lang.Language, satisfied func() bool) error {
	lease := c.coord.Acquire(ctx, c.keys.SerializeKey("summary", id))
	defer lease.Release()
	if satisfied != nil && satisfied() {
		return nil
	}

	var requester cache.Requester
	if e, ok := c.Lookup(id); ok {
		requester = e
	}
	if err := c.facade.FetchSummary(ctx, id, l, requester); err != nil {
		return &cache.NotFoundError{ID: id, Err: err}
	}
	return nil
}

// load fetches the languages in langs that are still missing once the
// caller holds the fetch rights for id. Languages are fetched concurrently.
func (c *Cache) load(
	ctx context.Context,
	op string,
	id urn.URN,
	langs []lang.Language,
	requester cacheitem.Entry,
	loaded func(cacheitem.SportEventEntry) []lang.Language,
	fetch func(context.Context, lang.Language) error,
) error {
	lease := c.coord.Acquire(ctx, c.keys.SerializeKey(op, id))
	defer lease.Release()

	missing := c.stillMissing(id, langs, requester, loaded)
	if len(missing) == 0 {
		return nil
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, l := range missing {
		g.Go(func() error {
			if err := fetch(ctx, l); err != nil {
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
		err = &cache.NotFoundError{ID: id, Err: err}
	}
	return c.strategy.Handle(c.logger.With().Str("op", op).Str("id", id.String()).Logger(), err, "load failed, serving cached data")
}

func (c *Cache) stillMissing(id urn.URN, langs []lang.Language, requester cacheitem.Entry, loaded func(cacheitem.SportEventEntry) []lang.Language) []lang.Language {
	e, ok := requester.(cacheitem.SportEventEntry)
	if !ok {
		e, ok = c.Lookup(id)
	}
	if !ok {
		return langs
	}
	return lang.NewSet(loaded(e)...).Missing(langs)
}

// GetEventIDsForTournament returns the schedule of a tournament or season,
// fetching it once per language.
func (c *Cache) GetEventIDsForTournament(ctx context.Context, id urn.URN, l lang.Language) ([]urn.URN, error) {
	e, err := c.GetOrBuild(id)
	if err != nil {
		return nil, err
	}
	t, ok := e.(*cacheitem.TournamentInfoCI)
	if !ok {
		return nil, &cache.NotFoundError{ID: id, Err: fmt.Errorf("%s has no schedule", e.Kind())}
	}
	if refs, done := t.Schedule(l); done {
		return refIDs(refs), nil
	}

	lease := c.coord.Acquire(ctx, c.keys.SerializeKey("tournament_schedule", t.ID(), l))
	defer lease.Release()
	if refs, done := t.Schedule(l); done {
		return refIDs(refs), nil
	}

	refs, err := c.facade.FetchScheduleForTournament(ctx, t.ID(), l)
	if err != nil {
		cached, _ := t.Schedule(l)
		return refIDs(cached), c.strategy.Handle(c.logger, err, "tournament schedule fetch failed")
	}
	t.MergeSchedule(refs, l)
	all, _ := t.Schedule(l)
	return refIDs(all), nil
}

// GetSeasonsForTournament returns the seasons of a tournament, fetching the
// season list once per language.
func (c *Cache) GetSeasonsForTournament(ctx context.Context, id urn.URN, l lang.Language) ([]urn.URN, error) {
	e, err := c.GetOrBuild(id)
	if err != nil {
		return nil, err
	}
	t, ok := e.(*cacheitem.TournamentInfoCI)
	if !ok {
		return nil, &cache.NotFoundError{ID: id, Err: fmt.Errorf("%s has no seasons", e.Kind())}
	}
	return t.Seasons(ctx, []lang.Language{l})
}

// GetEventIDsForDate returns the ids scheduled on date, or the live ones
// when date is nil. Date schedules are fetched at most once per memo TTL.
func (c *Cache) GetEventIDsForDate(ctx context.Context, date *time.Time, l lang.Language) ([]urn.URN, error) {
	key := c.keys.SerializeKey("date_schedule", cache.DateKey(date), l)
	if date != nil {
		if v, ok := c.memo.Get(key); ok {
			return v.([]urn.URN), nil
		}
	}

	ids, err := c.fetchDateSchedule(ctx, date, l)
	if err != nil {
		return nil, c.strategy.Handle(c.logger, err, "date schedule fetch failed")
	}
	return ids, nil
}

// fetchDateSchedule fetches the schedule of date under its fetch lease and
// memoizes dated results. A schedule memoized while waiting for the lease
// is returned without fetching.
func (c *Cache) fetchDateSchedule(ctx context.Context, date *time.Time, l lang.Language) ([]urn.URN, error) {
	key := c.keys.SerializeKey("date_schedule", cache.DateKey(date), l)
	lease := c.coord.Acquire(ctx, key)
	defer lease.Release()
	if date != nil {
		if v, ok := c.memo.Get(key); ok {
			return v.([]urn.URN), nil
		}
	}

	refs, err := c.facade.FetchScheduleForDate(ctx, date, l)
	if err != nil {
		return nil, err
	}
	ids := refIDs(refs)
	if date != nil {
		c.memo.SetDefault(key, ids)
	}
	return ids, nil
}

// ScheduleFetched reports whether the schedule of date in l is memoized.
func (c *Cache) ScheduleFetched(date time.Time, l lang.Language) bool {
	_, ok := c.memo.Get(c.keys.SerializeKey("date_schedule", cache.DateKey(&date), l))
	return ok
}

func refIDs(refs []cacheitem.EventRef) []urn.URN {
	if len(refs) == 0 {
		return nil
	}
	ids := make([]urn.URN, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}
