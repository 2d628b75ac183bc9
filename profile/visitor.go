package profile

import (
	"context"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/cacheitem"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// CacheAddDto implements cache.Store.
func (c *Cache) CacheAddDto(_ context.Context, id urn.URN, p dto.Payload, l lang.Language, cat dto.Category, requester cache.Requester) (bool, error) {
	if !dto.Conforms(cat, p) {
		c.logger.Warn().Err(cache.ShapeMismatch(StoreName, cat, p)).Str("id", id.String()).Msg("payload ignored")
		return false, nil
	}
	return p.Accept(&saver{c: c, lang: l, requester: requester})
}

type saver struct {
	c         *Cache
	lang      lang.Language
	requester cache.Requester
}

var _ dto.Visitor = (*saver)(nil)

// mergeRequester folds p into the requester when it stands for the same
// identifier as the stored entry but is a different object.
func (s *saver) mergeRequester(stored cacheitem.Entry, p dto.Payload) {
	r := s.requester
	if r == nil || r == stored || r.ID() != stored.ID() {
		return
	}
	if err := r.Merge(p, s.lang); err != nil {
		s.c.logger.Warn().Err(err).Str("id", r.ID().String()).Msg("requester merge failed")
	}
}

func (s *saver) logMerge(e cacheitem.Entry, err error) {
	if err != nil {
		s.c.logger.Warn().Err(err).Str("id", e.ID().String()).Str("kind", string(e.Kind())).Str("lang", s.lang.String()).Msg("partial merge")
	}
}

func (s *saver) teams(in []dto.TeamCompetitor) bool {
	saved := false
	for _, tc := range in {
		if tc.ID.IsZero() {
			continue
		}
		s.c.teamCompetitor(tc.ID).MergeTeamCompetitor(tc, s.lang)
		saved = true
	}
	return saved
}

func (s *saver) plain(in []dto.Competitor) bool {
	saved := false
	for _, comp := range in {
		if comp.ID.IsZero() {
			continue
		}
		s.c.mergeCompetitor(comp.ID, func(e Competitor) { e.MergeCompetitor(comp, s.lang) })
		saved = true
	}
	return saved
}

func (s *saver) VisitMatch(p *dto.Match) (bool, error) { return s.teams(p.Competitors), nil }
func (s *saver) VisitStage(p *dto.Stage) (bool, error) { return s.teams(p.Competitors), nil }

func (s *saver) VisitFixture(p *dto.Fixture) (bool, error) { return s.teams(p.Competitors), nil }

func (s *saver) VisitTournamentInfo(p *dto.TournamentInfo) (bool, error) {
	saved := s.plain(p.Competitors)
	for _, g := range p.Groups {
		saved = s.plain(g.Competitors) || saved
	}
	return saved, nil
}

func (s *saver) VisitPlayerProfile(p *dto.PlayerProfile) (bool, error) {
	if p.ID.IsZero() {
		return false, nil
	}
	pl := s.c.player(p.ID)
	pl.MergeProfile(p, s.lang)
	s.mergeRequester(pl, p)
	return true, nil
}

func (s *saver) VisitCompetitorProfile(p *dto.CompetitorProfile) (bool, error) {
	id := p.Competitor.ID
	if id.IsZero() {
		return false, nil
	}
	e := s.c.mergeCompetitor(id, func(e Competitor) { s.logMerge(e, e.Merge(p, s.lang)) })
	for i := range p.Players {
		pp := p.Players[i]
		if pp.ID.IsZero() {
			continue
		}
		if pp.CompetitorID.IsZero() {
			pp.CompetitorID = id
		}
		s.c.player(pp.ID).MergeProfile(&pp, s.lang)
	}
	s.mergeRequester(e, p)
	return true, nil
}

func (s *saver) VisitSimpleTeamProfile(p *dto.SimpleTeamProfile) (bool, error) {
	id := p.Competitor.ID
	if id.IsZero() {
		return false, nil
	}
	e := s.c.mergeCompetitor(id, func(e Competitor) { s.logMerge(e, e.Merge(p, s.lang)) })
	s.mergeRequester(e, p)
	return true, nil
}

func (s *saver) VisitDraw(*dto.Draw) (bool, error)                           { return false, nil }
func (s *saver) VisitLottery(*dto.Lottery) (bool, error)                     { return false, nil }
func (s *saver) VisitMatchTimeline(*dto.MatchTimeline) (bool, error)         { return false, nil }
func (s *saver) VisitTournamentSeasons(*dto.TournamentSeasons) (bool, error) { return false, nil }
func (s *saver) VisitSchedule(*dto.Schedule) (bool, error)                   { return false, nil }
func (s *saver) VisitSportList(*dto.SportList) (bool, error)                 { return false, nil }
func (s *saver) VisitSportEventStatus(*dto.SportEventStatus) (bool, error)   { return false, nil }
func (s *saver) VisitLotteryList(*dto.LotteryList) (bool, error)             { return false, nil }
func (s *saver) VisitBookingStatus(*dto.BookingStatus) (bool, error)         { return false, nil }

func (s *saver) VisitVariantDescriptionList(*dto.VariantDescriptionList) (bool, error) {
	return false, nil
}
