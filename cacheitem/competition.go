package cacheitem

import (
	"context"
	"fmt"

	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// CompetitionCI is the part shared by matches and stages: venue,
// conditions, team competitors, a status snapshot and the booking status.
type CompetitionCI struct {
	sportEventCI

	tournamentID  urn.URN
	bookingStatus *dto.BookingStatusValue
	venue         *VenueCI
	conditions    *ConditionsCI
	competitors   []*TeamCompetitorCI
	status        *StatusCI
}

func (c *CompetitionCI) mergeTournamentLocked(t *dto.TournamentRef) {
	if t != nil && !t.ID.IsZero() {
		c.tournamentID = t.ID
	}
}

func (c *CompetitionCI) mergeCompetitorsLocked(in []dto.TeamCompetitor, l lang.Language, errs *fieldErrors) {
	for i := range in {
		tc := &in[i]
		if tc.ID.IsZero() {
			errs.add(fmt.Sprintf("competitors[%d]", i), errMissingID)
			continue
		}
		var child *TeamCompetitorCI
		for _, have := range c.competitors {
			if have.id == tc.ID {
				child = have
				break
			}
		}
		if child == nil {
			child = NewTeamCompetitorCI(tc.ID)
			c.competitors = append(c.competitors, child)
		}
		child.MergeTeamCompetitor(*tc, l)
	}
}

func (c *CompetitionCI) mergeStatusLocked(s *dto.SportEventStatus, errs *fieldErrors) {
	if s == nil {
		return
	}
	if !s.EventID.IsZero() && s.EventID != c.id {
		errs.add("status", fmt.Errorf("event id %s does not match", s.EventID))
		return
	}
	if c.status == nil {
		c.status = NewStatusCI(c.id)
	}
	c.status.Apply(s, ProvenanceSummary, nowFunc())
}

func (c *CompetitionCI) mergeBookingLocked(b *dto.BookingStatusValue) {
	if b != nil {
		v := *b
		c.bookingStatus = &v
	}
}

func (c *CompetitionCI) mergeCompetitionLocked(
	l lang.Language,
	t *dto.TournamentRef,
	venue *dto.Venue,
	conditions *dto.Conditions,
	competitors []dto.TeamCompetitor,
	errs *fieldErrors,
) {
	c.mergeTournamentLocked(t)
	c.venue = mergeVenue(c.venue, venue, l)
	if conditions != nil {
		if c.conditions == nil {
			c.conditions = &ConditionsCI{}
		}
		c.conditions.merge(conditions, l)
	}
	c.mergeCompetitorsLocked(competitors, l, errs)
}

// Competitors returns the team competitors, loading missing summaries first.
func (c *CompetitionCI) Competitors(ctx context.Context, langs []lang.Language) ([]*TeamCompetitorCI, error) {
	if err := c.ensure(ctx, ClassSummary, langs); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*TeamCompetitorCI(nil), c.competitors...), nil
}

// Venue returns a copy of the venue, loading missing summaries first.
func (c *CompetitionCI) Venue(ctx context.Context, langs []lang.Language) (*VenueCI, error) {
	if err := c.ensure(ctx, ClassSummary, langs); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.venue.clone(), nil
}

func (c *CompetitionCI) Conditions(ctx context.Context, langs []lang.Language) (*ConditionsCI, error) {
	if err := c.ensure(ctx, ClassSummary, langs); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conditions.clone(), nil
}

func (c *CompetitionCI) BookingStatus(ctx context.Context) (*dto.BookingStatusValue, error) {
	if err := c.ensureAny(ctx, ClassSummary); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.bookingStatus == nil {
		return nil, nil
	}
	v := *c.bookingStatus
	return &v, nil
}

func (c *CompetitionCI) TournamentID(ctx context.Context) (urn.URN, error) {
	if err := c.ensureAny(ctx, ClassSummary); err != nil {
		return urn.URN{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tournamentID, nil
}

// StatusSnapshot returns the status carried by the last summary, nil when
// none was seen. It never loads.
func (c *CompetitionCI) StatusSnapshot() *dto.SportEventStatus {
	c.mu.RLock()
	s := c.status
	c.mu.RUnlock()
	if s == nil {
		return nil
	}
	snap := s.Snapshot()
	return &snap
}

func (c *CompetitionCI) exportCompetitionLocked(r *EventRecord) {
	r.TournamentID = c.tournamentID
	if c.bookingStatus != nil {
		v := *c.bookingStatus
		r.BookingStatus = &v
	}
	r.Venue = c.venue.clone()
	r.Conditions = c.conditions.clone()
	for _, tc := range c.competitors {
		tc.mu.RLock()
		r.Competitors = append(r.Competitors, *tc.exportTeamLocked())
		tc.mu.RUnlock()
	}
	if c.status != nil {
		r.Status = c.status.record()
	}
}

func (c *CompetitionCI) importCompetitionLocked(r *EventRecord) {
	c.tournamentID = r.TournamentID
	if r.BookingStatus != nil {
		v := *r.BookingStatus
		c.bookingStatus = &v
	}
	c.venue = r.Venue.clone()
	c.conditions = r.Conditions.clone()
	c.competitors = nil
	for i := range r.Competitors {
		tc := NewTeamCompetitorCI(r.Competitors[i].ID)
		tc.importTeamLocked(&r.Competitors[i])
		c.competitors = append(c.competitors, tc)
	}
	if r.Status != nil {
		c.status = statusFromRecord(c.id, r.Status)
	}
}
