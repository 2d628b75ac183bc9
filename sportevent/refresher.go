package sportevent

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/lang"
)

// Refresher keeps the date schedules of the coming days warm and evicts
// events that ended long enough ago. It is meant to run under a suture
// supervisor.
type Refresher struct {
	cache      *Cache
	interval   time.Duration
	days       int
	evictAfter time.Duration
	languages  []lang.Language
	limit      int
	logger     zerolog.Logger
	now        func() time.Time

	runs atomic.Int64
}

var _ suture.Service = (*Refresher)(nil)

// NewRefresher builds a refresher over cfg.RefreshDays days starting today
// for every configured language.
func NewRefresher(c *Cache, cfg cache.Config, logger zerolog.Logger) *Refresher {
	return &Refresher{
		cache:      c,
		interval:   cfg.RefreshInterval,
		days:       cfg.RefreshDays,
		evictAfter: cfg.EvictAfter,
		languages:  append([]lang.Language(nil), cfg.Languages...),
		limit:      4,
		logger:     logger.With().Str("component", "schedule_refresher").Logger(),
		now:        time.Now,
	}
}

// Serve implements suture.Service.
func (r *Refresher) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.RefreshOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Refresher) String() string { return "schedule-refresher" }

// Runs returns how many refresh passes completed.
func (r *Refresher) Runs() int64 { return r.runs.Load() }

// RefreshOnce fetches every date and language that is not memoized yet,
// then evicts events scheduled before now minus the eviction delay. Units
// fail independently and are only logged. It returns the number of units
// that failed.
func (r *Refresher) RefreshOnce(ctx context.Context) int {
	today := r.now().UTC().Truncate(24 * time.Hour)

	var (
		g      errgroup.Group
		failed atomic.Int32
	)
	g.SetLimit(r.limit)
	for d := 0; d < r.days; d++ {
		date := today.AddDate(0, 0, d)
		for _, l := range r.languages {
			if r.cache.ScheduleFetched(date, l) {
				continue
			}
			g.Go(func() error {
				if err := r.refresh(ctx, date, l); err != nil {
					failed.Add(1)
					r.logger.Warn().Err(err).Str("date", cache.DateKey(&date)).Str("lang", l.String()).Msg("schedule refresh failed")
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	if n := r.cache.EvictBefore(r.now().Add(-r.evictAfter)); n > 0 {
		r.logger.Info().Int("evicted", n).Msg("evicted past sport events")
	}
	r.runs.Add(1)
	return int(failed.Load())
}

// refresh bypasses the store's exception strategy so failures are counted.
func (r *Refresher) refresh(ctx context.Context, date time.Time, l lang.Language) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := r.cache.fetchDateSchedule(ctx, &date, l); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("refresh %s: %w", cache.DateKey(&date), err)
	}
	return nil
}
