package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/cacheitem"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/internal/metrics"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

var errEmptyResponse = errors.New("empty response")

// Router fetches from a Source and saves every payload through the saver
// under the payload's category.
type Router struct {
	source  Source
	saver   cache.Saver
	logger  zerolog.Logger
	metrics *metrics.Collectors
}

var _ Facade = (*Router)(nil)

func NewRouter(source Source, saver cache.Saver, logger zerolog.Logger, m *metrics.Collectors) *Router {
	return &Router{
		source:  source,
		saver:   saver,
		logger:  logger.With().Str("component", "data_router").Logger(),
		metrics: m,
	}
}

func (r *Router) done(op, id string, l lang.Language, started time.Time, err error) error {
	r.metrics.RecordFetch(op, err)
	ev := r.logger.Debug()
	if err != nil {
		ev = r.logger.Warn().Err(err)
	}
	ev.Str("op", op).Str("id", id).Str("lang", l.String()).Dur("took", time.Since(started)).Msg("upstream fetch")
	return cache.NewFetchError(op, id, l, err)
}

func (r *Router) save(ctx context.Context, id urn.URN, p dto.Payload, l lang.Language, c dto.Category, requester cache.Requester) error {
	if err := r.saver.SaveDto(ctx, id, p, l, c, requester); err != nil {
		return fmt.Errorf("save %s %s: %w", c, id, err)
	}
	return nil
}

func (r *Router) FetchSummary(ctx context.Context, id urn.URN, l lang.Language, requester cache.Requester) error {
	started := time.Now()
	p, err := r.source.Summary(ctx, id, l)
	if err == nil && p == nil {
		err = errEmptyResponse
	}
	if err != nil {
		return r.done(OpSummary, id.String(), l, started, err)
	}
	_ = r.done(OpSummary, id.String(), l, started, nil)
	return r.save(ctx, id, p, l, SummaryCategory(p), requester)
}

func (r *Router) FetchFixture(ctx context.Context, id urn.URN, l lang.Language, useCached bool, requester cache.Requester) error {
	started := time.Now()
	p, err := r.source.Fixture(ctx, id, l, useCached)
	if err == nil && p == nil {
		err = errEmptyResponse
	}
	if err != nil {
		return r.done(OpFixture, id.String(), l, started, err)
	}
	_ = r.done(OpFixture, id.String(), l, started, nil)
	return r.save(ctx, id, p, l, dto.CategoryFixture, requester)
}

func (r *Router) FetchCompetitorOrPlayerProfile(ctx context.Context, id urn.URN, l lang.Language, requester cache.Requester) error {
	started := time.Now()
	p, err := r.source.Profile(ctx, id, l)
	if err == nil && p == nil {
		err = errEmptyResponse
	}
	if err != nil {
		return r.done(OpProfile, id.String(), l, started, err)
	}
	_ = r.done(OpProfile, id.String(), l, started, nil)
	return r.save(ctx, id, p, l, ProfileCategory(p), requester)
}

func (r *Router) FetchScheduleForDate(ctx context.Context, date *time.Time, l lang.Language) ([]cacheitem.EventRef, error) {
	started := time.Now()
	key := cache.DateKey(date)
	s, err := r.source.DateSchedule(ctx, date, l)
	if err != nil {
		return nil, r.done(OpDateSchedule, key, l, started, err)
	}
	_ = r.done(OpDateSchedule, key, l, started, nil)
	if s == nil {
		return nil, nil
	}
	if err := r.save(ctx, urn.URN{}, s, l, dto.CategorySportEventSummaryList, nil); err != nil {
		return nil, err
	}
	return ScheduleRefs(s), nil
}

func (r *Router) FetchScheduleForTournament(ctx context.Context, id urn.URN, l lang.Language) ([]cacheitem.EventRef, error) {
	started := time.Now()
	s, err := r.source.TournamentSchedule(ctx, id, l)
	if err != nil {
		return nil, r.done(OpTournamentSchedule, id.String(), l, started, err)
	}
	_ = r.done(OpTournamentSchedule, id.String(), l, started, nil)
	if s == nil {
		return nil, nil
	}
	if err := r.save(ctx, id, s, l, dto.CategorySportEventSummaryList, nil); err != nil {
		return nil, err
	}
	return ScheduleRefs(s), nil
}

func (r *Router) FetchSeasonsForTournament(ctx context.Context, id urn.URN, l lang.Language) ([]urn.URN, error) {
	started := time.Now()
	s, err := r.source.TournamentSeasons(ctx, id, l)
	if err == nil && s == nil {
		err = errEmptyResponse
	}
	if err != nil {
		return nil, r.done(OpSeasons, id.String(), l, started, err)
	}
	_ = r.done(OpSeasons, id.String(), l, started, nil)
	if err := r.save(ctx, id, s, l, dto.CategoryTournamentSeasons, nil); err != nil {
		return nil, err
	}
	ids := make([]urn.URN, 0, len(s.Seasons))
	for _, season := range s.Seasons {
		if !season.ID.IsZero() {
			ids = append(ids, season.ID)
		}
	}
	return ids, nil
}

func (r *Router) FetchOngoingEventTimeline(ctx context.Context, id urn.URN, l lang.Language) (*dto.MatchTimeline, error) {
	started := time.Now()
	tl, err := r.source.Timeline(ctx, id, l)
	if err == nil && tl == nil {
		err = errEmptyResponse
	}
	if err != nil {
		return nil, r.done(OpTimeline, id.String(), l, started, err)
	}
	_ = r.done(OpTimeline, id.String(), l, started, nil)
	if err := r.save(ctx, id, tl, l, dto.CategoryMatchTimeline, nil); err != nil {
		return nil, err
	}
	return tl, nil
}

func (r *Router) FetchVariantDescriptions(ctx context.Context, l lang.Language) error {
	started := time.Now()
	list, err := r.source.VariantDescriptions(ctx, l)
	if err == nil && list == nil {
		err = errEmptyResponse
	}
	if err != nil {
		return r.done(OpVariants, "variants", l, started, err)
	}
	_ = r.done(OpVariants, "variants", l, started, nil)
	return r.save(ctx, urn.URN{}, list, l, dto.CategoryVariantDescriptionList, nil)
}
