package sportevent

import (
	"context"
	"errors"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/cacheitem"
	"github.com/goliatone/go-sportdata-cache/dataaccess"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// CacheAddDto implements cache.Store.
func (c *Cache) CacheAddDto(ctx context.Context, id urn.URN, p dto.Payload, l lang.Language, cat dto.Category, requester cache.Requester) (bool, error) {
	if !dto.Conforms(cat, p) {
		c.logger.Warn().Err(cache.ShapeMismatch(StoreName, cat, p)).Str("id", id.String()).Msg("payload ignored")
		return false, nil
	}
	return p.Accept(&saver{c: c, ctx: ctx, requested: id, lang: l, requester: requester})
}

// saver applies one payload. requested is the identifier the fetch was
// issued for, which may differ from the payload's own.
type saver struct {
	c         *Cache
	ctx       context.Context
	requested urn.URN
	lang      lang.Language
	requester cache.Requester
}

var _ dto.Visitor = (*saver)(nil)

func (s *saver) forItem(id urn.URN) *saver {
	return &saver{c: s.c, ctx: s.ctx, requested: id, lang: s.lang}
}

// merge folds p into the entry of payloadID and into every other entry
// that is waiting for it.
func (s *saver) merge(payloadID urn.URN, p dto.Payload) (bool, error) {
	target := payloadID
	if target.IsZero() {
		target = s.requested
	}
	if target.IsZero() {
		return false, nil
	}
	entry, err := s.c.GetOrBuild(target)
	if err != nil {
		s.c.logger.Warn().Err(err).Str("id", target.String()).Msg("payload for unsupported identifier ignored")
		return false, nil
	}

	merged := map[cacheitem.Entry]struct{}{}
	s.mergeInto(entry, p, merged)

	if req := s.requested; !req.IsZero() && req != target {
		switch {
		case req.Group() == urn.Season && target.Group() != urn.Season:
			if se, err := s.c.GetOrBuild(req); err == nil {
				s.mergeInto(se, p, merged)
			}
		default:
			if old, ok := s.c.entries.Get(req.String()); ok && old != entry {
				s.mergeInto(old, p, merged)
				s.c.entries.Delete(req.String())
			}
			s.c.Alias(req, target)
		}
	}

	if r := s.requester; r != nil {
		if rid := r.ID(); rid == payloadID || rid == s.requested {
			s.mergeInto(r, p, merged)
		}
	}
	return true, nil
}

// mergeInto logs partial merges. A MergeError still marks the language as
// loaded so the offending child is not refetched forever.
func (s *saver) mergeInto(e cacheitem.Entry, p dto.Payload, merged map[cacheitem.Entry]struct{}) {
	if _, done := merged[e]; done {
		return
	}
	merged[e] = struct{}{}
	if err := e.Merge(p, s.lang); err != nil {
		var me *cacheitem.MergeError
		ev := s.c.logger.Warn().Err(err).Str("id", e.ID().String()).Str("kind", string(e.Kind())).Str("lang", s.lang.String())
		if errors.As(err, &me) {
			ev.Msg("partial merge")
			return
		}
		ev.Msg("merge rejected")
	}
}

// feedSeason saves a season carried by a tournament payload under its own
// identifier.
func (s *saver) feedSeason(t *dto.TournamentInfo, season *dto.Season) {
	if season == nil || season.ID.IsZero() || season.ID == t.ID {
		return
	}
	tournamentID := season.TournamentID
	if tournamentID.IsZero() {
		tournamentID = t.ID
	}
	sc := *season
	sc.TournamentID = tournamentID
	info := &dto.TournamentInfo{
		ID:           season.ID,
		Name:         season.Name,
		SportID:      t.SportID,
		Category:     t.Category,
		Scheduled:    season.StartDate,
		ScheduledEnd: season.EndDate,
		Season:       &sc,
	}
	_, _ = s.forItem(season.ID).merge(season.ID, info)
}

func (s *saver) VisitMatch(p *dto.Match) (bool, error) { return s.merge(p.ID, p) }
func (s *saver) VisitStage(p *dto.Stage) (bool, error) { return s.merge(p.ID, p) }
func (s *saver) VisitDraw(p *dto.Draw) (bool, error)   { return s.merge(p.ID, p) }

func (s *saver) VisitLottery(p *dto.Lottery) (bool, error) { return s.merge(p.ID, p) }

func (s *saver) VisitFixture(p *dto.Fixture) (bool, error) { return s.merge(p.ID, p) }

func (s *saver) VisitMatchTimeline(p *dto.MatchTimeline) (bool, error) {
	return s.merge(p.PayloadID(), p)
}

func (s *saver) VisitTournamentInfo(p *dto.TournamentInfo) (bool, error) {
	saved, err := s.merge(p.ID, p)
	if saved {
		s.feedSeason(p, p.CurrentSeason)
	}
	return saved, err
}

func (s *saver) VisitTournamentSeasons(p *dto.TournamentSeasons) (bool, error) {
	saved, err := s.merge(p.PayloadID(), p)
	if !saved || p.Tournament == nil {
		return saved, err
	}
	for i := range p.Seasons {
		s.feedSeason(p.Tournament, &p.Seasons[i])
	}
	return saved, err
}

func (s *saver) VisitSchedule(p *dto.Schedule) (bool, error) {
	saved := false
	for _, item := range p.Events {
		ok, _ := item.Accept(s.forItem(item.PayloadID()))
		saved = saved || ok
	}
	if s.requested.Group().IsTournamentLike() {
		if e, err := s.c.GetOrBuild(s.requested); err == nil {
			if t, ok := e.(*cacheitem.TournamentInfoCI); ok {
				t.MergeSchedule(dataaccess.ScheduleRefs(p), s.lang)
				saved = true
			}
		}
	}
	return saved, nil
}

func (s *saver) VisitSportList(p *dto.SportList) (bool, error) {
	saved := false
	for _, sport := range p.Sports {
		for i := range sport.Tournaments {
			t := sport.Tournaments[i]
			if t.SportID.IsZero() {
				t.SportID = sport.ID
			}
			ok, _ := s.forItem(t.ID).VisitTournamentInfo(&t)
			saved = saved || ok
		}
	}
	return saved, nil
}

func (s *saver) VisitLotteryList(p *dto.LotteryList) (bool, error) {
	saved := false
	for i := range p.Lotteries {
		ok, _ := s.forItem(p.Lotteries[i].ID).VisitLottery(&p.Lotteries[i])
		saved = saved || ok
	}
	return saved, nil
}

// Statuses and booking changes only touch entries that already exist.
func (s *saver) mergeExisting(id urn.URN, p dto.Payload) (bool, error) {
	e, ok := s.c.Lookup(id)
	if !ok {
		return false, nil
	}
	s.mergeInto(e, p, map[cacheitem.Entry]struct{}{})
	return true, nil
}

func (s *saver) VisitSportEventStatus(p *dto.SportEventStatus) (bool, error) {
	return s.mergeExisting(p.EventID, p)
}

func (s *saver) VisitBookingStatus(p *dto.BookingStatus) (bool, error) {
	return s.mergeExisting(p.EventID, p)
}

func (s *saver) VisitPlayerProfile(*dto.PlayerProfile) (bool, error)         { return false, nil }
func (s *saver) VisitCompetitorProfile(*dto.CompetitorProfile) (bool, error) { return false, nil }
func (s *saver) VisitSimpleTeamProfile(*dto.SimpleTeamProfile) (bool, error) { return false, nil }

func (s *saver) VisitVariantDescriptionList(*dto.VariantDescriptionList) (bool, error) {
	return false, nil
}
