package status

import (
	"context"
	"errors"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/cacheitem"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// CacheAddDto implements cache.Store. Every status saved through the
// manager is summary derived.
func (c *Cache) CacheAddDto(_ context.Context, id urn.URN, p dto.Payload, _ lang.Language, cat dto.Category, _ cache.Requester) (bool, error) {
	if !dto.Conforms(cat, p) {
		c.logger.Warn().Err(cache.ShapeMismatch(StoreName, cat, p)).Str("id", id.String()).Msg("payload ignored")
		return false, nil
	}
	return p.Accept(saver{c: c})
}

type saver struct{ c *Cache }

var _ dto.Visitor = saver{}

func (s saver) summary(eventID urn.URN, st *dto.SportEventStatus) (bool, error) {
	if st == nil || eventID.IsZero() {
		return false, nil
	}
	return s.c.apply(eventID, st, cacheitem.ProvenanceSummary), nil
}

func (s saver) VisitMatch(p *dto.Match) (bool, error) { return s.summary(p.ID, p.Status) }
func (s saver) VisitStage(p *dto.Stage) (bool, error) { return s.summary(p.ID, p.Status) }

func (s saver) VisitMatchTimeline(p *dto.MatchTimeline) (bool, error) {
	return s.summary(p.PayloadID(), p.Status)
}

func (s saver) VisitSportEventStatus(p *dto.SportEventStatus) (bool, error) {
	return s.summary(p.EventID, p)
}

func (s saver) VisitTournamentInfo(*dto.TournamentInfo) (bool, error)       { return false, nil }
func (s saver) VisitDraw(*dto.Draw) (bool, error)                           { return false, nil }
func (s saver) VisitLottery(*dto.Lottery) (bool, error)                     { return false, nil }
func (s saver) VisitFixture(*dto.Fixture) (bool, error)                     { return false, nil }
func (s saver) VisitTournamentSeasons(*dto.TournamentSeasons) (bool, error) { return false, nil }
func (s saver) VisitSchedule(*dto.Schedule) (bool, error)                   { return false, nil }
func (s saver) VisitSportList(*dto.SportList) (bool, error)                 { return false, nil }
func (s saver) VisitPlayerProfile(*dto.PlayerProfile) (bool, error)         { return false, nil }
func (s saver) VisitCompetitorProfile(*dto.CompetitorProfile) (bool, error) { return false, nil }
func (s saver) VisitSimpleTeamProfile(*dto.SimpleTeamProfile) (bool, error) { return false, nil }
func (s saver) VisitLotteryList(*dto.LotteryList) (bool, error)             { return false, nil }
func (s saver) VisitBookingStatus(*dto.BookingStatus) (bool, error)         { return false, nil }

func (s saver) VisitVariantDescriptionList(*dto.VariantDescriptionList) (bool, error) {
	return false, nil
}

// ExportAll implements cache.Exporter.
func (c *Cache) ExportAll(ctx context.Context) ([]cacheitem.Exportable, error) {
	var out []cacheitem.Exportable
	c.entries.Range(func(_ string, s *cacheitem.StatusCI) bool {
		out = append(out, s.Export())
		return ctx.Err() == nil
	})
	return out, ctx.Err()
}

// ImportAll implements cache.Exporter.
func (c *Cache) ImportAll(ctx context.Context, records []cacheitem.Exportable) error {
	var errs []error
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rec.Kind != cacheitem.KindStatus {
			continue
		}
		e, err := cacheitem.FromExportable(rec, nil)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s := e.(*cacheitem.StatusCI)
		c.entries.Set(s.ID().String(), s)
	}
	return errors.Join(errs...)
}
