package cacheitem

import (
	"time"

	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// The value objects below are owned by an entry and guarded by its lock.
// Accessors hand out clones.

type VenueCI struct {
	ID          urn.URN      `json:"id"`
	Names       Translations `json:"names,omitempty"`
	Cities      Translations `json:"cities,omitempty"`
	Countries   Translations `json:"countries,omitempty"`
	CountryCode string       `json:"country_code,omitempty"`
	Capacity    *int         `json:"capacity,omitempty"`
	Coordinates string       `json:"coordinates,omitempty"`
}

func (v *VenueCI) merge(in *dto.Venue, l lang.Language) {
	if !in.ID.IsZero() {
		v.ID = in.ID
	}
	v.Names.Set(l, in.Name)
	v.Cities.Set(l, in.City)
	v.Countries.Set(l, in.Country)
	if in.CountryCode != "" {
		v.CountryCode = in.CountryCode
	}
	if in.Capacity != nil {
		v.Capacity = copyInt(in.Capacity)
	}
	if in.Coordinates != "" {
		v.Coordinates = in.Coordinates
	}
}

func (v *VenueCI) clone() *VenueCI {
	if v == nil {
		return nil
	}
	return &VenueCI{
		ID:          v.ID,
		Names:       v.Names.Clone(),
		Cities:      v.Cities.Clone(),
		Countries:   v.Countries.Clone(),
		CountryCode: v.CountryCode,
		Capacity:    copyInt(v.Capacity),
		Coordinates: v.Coordinates,
	}
}

// mergeVenue merges in into cur, replacing cur when the venue changed.
func mergeVenue(cur *VenueCI, in *dto.Venue, l lang.Language) *VenueCI {
	if in == nil {
		return cur
	}
	if cur == nil || (!in.ID.IsZero() && !cur.ID.IsZero() && cur.ID != in.ID) {
		cur = &VenueCI{}
	}
	cur.merge(in, l)
	return cur
}

type RefereeCI struct {
	ID            urn.URN      `json:"id"`
	Name          string       `json:"name,omitempty"`
	Nationalities Translations `json:"nationalities,omitempty"`
}

type ConditionsCI struct {
	Attendance string     `json:"attendance,omitempty"`
	EventMode  string     `json:"event_mode,omitempty"`
	Referee    *RefereeCI `json:"referee,omitempty"`
}

func (c *ConditionsCI) merge(in *dto.Conditions, l lang.Language) {
	if in.Attendance != "" {
		c.Attendance = in.Attendance
	}
	if in.EventMode != "" {
		c.EventMode = in.EventMode
	}
	if r := in.Referee; r != nil {
		if c.Referee == nil || (!r.ID.IsZero() && c.Referee.ID != r.ID) {
			c.Referee = &RefereeCI{ID: r.ID}
		}
		if r.Name != "" {
			c.Referee.Name = r.Name
		}
		c.Referee.Nationalities.Set(l, r.Nationality)
	}
}

func (c *ConditionsCI) clone() *ConditionsCI {
	if c == nil {
		return nil
	}
	out := &ConditionsCI{Attendance: c.Attendance, EventMode: c.EventMode}
	if c.Referee != nil {
		out.Referee = &RefereeCI{
			ID:            c.Referee.ID,
			Name:          c.Referee.Name,
			Nationalities: c.Referee.Nationalities.Clone(),
		}
	}
	return out
}

type SeasonCI struct {
	ID           urn.URN      `json:"id"`
	Names        Translations `json:"names,omitempty"`
	Year         string       `json:"year,omitempty"`
	TournamentID urn.URN      `json:"tournament_id"`
	StartDate    *time.Time   `json:"start_date,omitempty"`
	EndDate      *time.Time   `json:"end_date,omitempty"`
}

func (s *SeasonCI) merge(in *dto.Season, l lang.Language) {
	if !in.ID.IsZero() {
		s.ID = in.ID
	}
	s.Names.Set(l, in.Name)
	if in.Year != "" {
		s.Year = in.Year
	}
	if !in.TournamentID.IsZero() {
		s.TournamentID = in.TournamentID
	}
	if in.StartDate != nil {
		s.StartDate = copyTime(in.StartDate)
	}
	if in.EndDate != nil {
		s.EndDate = copyTime(in.EndDate)
	}
}

func (s *SeasonCI) clone() *SeasonCI {
	if s == nil {
		return nil
	}
	return &SeasonCI{
		ID:           s.ID,
		Names:        s.Names.Clone(),
		Year:         s.Year,
		TournamentID: s.TournamentID,
		StartDate:    copyTime(s.StartDate),
		EndDate:      copyTime(s.EndDate),
	}
}

func mergeSeason(cur *SeasonCI, in *dto.Season, l lang.Language) *SeasonCI {
	if in == nil {
		return cur
	}
	if cur == nil || (!in.ID.IsZero() && cur.ID != in.ID) {
		cur = &SeasonCI{}
	}
	cur.merge(in, l)
	return cur
}

type RoundCI struct {
	Type                string       `json:"type,omitempty"`
	Number              *int         `json:"number,omitempty"`
	Names               Translations `json:"names,omitempty"`
	GroupName           string       `json:"group_name,omitempty"`
	Phase               string       `json:"phase,omitempty"`
	CupRoundMatches     *int         `json:"cup_round_matches,omitempty"`
	CupRoundMatchNumber *int         `json:"cup_round_match_number,omitempty"`
}

func (r *RoundCI) merge(in *dto.Round, l lang.Language) {
	if in.Type != "" {
		r.Type = in.Type
	}
	if in.Number != nil {
		r.Number = copyInt(in.Number)
	}
	r.Names.Set(l, in.Name)
	if in.GroupName != "" {
		r.GroupName = in.GroupName
	}
	if in.Phase != "" {
		r.Phase = in.Phase
	}
	if in.CupRoundMatches != nil {
		r.CupRoundMatches = copyInt(in.CupRoundMatches)
	}
	if in.CupRoundMatchNumber != nil {
		r.CupRoundMatchNumber = copyInt(in.CupRoundMatchNumber)
	}
}

func (r *RoundCI) clone() *RoundCI {
	if r == nil {
		return nil
	}
	return &RoundCI{
		Type:                r.Type,
		Number:              copyInt(r.Number),
		Names:               r.Names.Clone(),
		GroupName:           r.GroupName,
		Phase:               r.Phase,
		CupRoundMatches:     copyInt(r.CupRoundMatches),
		CupRoundMatchNumber: copyInt(r.CupRoundMatchNumber),
	}
}

// GroupCI references competitors of the owning tournament by id.
type GroupCI struct {
	ID            string       `json:"id,omitempty"`
	Names         Translations `json:"names,omitempty"`
	CompetitorIDs []urn.URN    `json:"competitor_ids,omitempty"`
}

func (g *GroupCI) clone() *GroupCI {
	return &GroupCI{
		ID:            g.ID,
		Names:         g.Names.Clone(),
		CompetitorIDs: cloneURNs(g.CompetitorIDs),
	}
}

type ManagerCI struct {
	ID            urn.URN      `json:"id"`
	Names         Translations `json:"names,omitempty"`
	Nationalities Translations `json:"nationalities,omitempty"`
	CountryCode   string       `json:"country_code,omitempty"`
}

func (m *ManagerCI) clone() *ManagerCI {
	if m == nil {
		return nil
	}
	return &ManagerCI{
		ID:            m.ID,
		Names:         m.Names.Clone(),
		Nationalities: m.Nationalities.Clone(),
		CountryCode:   m.CountryCode,
	}
}

type DrawResultCI struct {
	Value int          `json:"value"`
	Names Translations `json:"names,omitempty"`
}

type OutcomeCI struct {
	ID    string       `json:"id"`
	Names Translations `json:"names,omitempty"`
}

// EventRef is a schedule item.
type EventRef struct {
	ID      urn.URN `json:"id"`
	SportID urn.URN `json:"sport_id"`
}

func cloneTVChannels(in []dto.TVChannel) []dto.TVChannel {
	if len(in) == 0 {
		return nil
	}
	out := make([]dto.TVChannel, len(in))
	for i, c := range in {
		out[i] = dto.TVChannel{Name: c.Name, StartTime: copyTime(c.StartTime)}
	}
	return out
}

func cloneTimelineEvent(e dto.TimelineEvent) dto.TimelineEvent {
	e.MatchTime = copyInt(e.MatchTime)
	e.HomeScore = copyFloat(e.HomeScore)
	e.AwayScore = copyFloat(e.AwayScore)
	return e
}

func cloneTimeline(in []dto.TimelineEvent) []dto.TimelineEvent {
	if len(in) == 0 {
		return nil
	}
	out := make([]dto.TimelineEvent, len(in))
	for i, e := range in {
		out[i] = cloneTimelineEvent(e)
	}
	return out
}
