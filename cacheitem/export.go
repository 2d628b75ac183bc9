package cacheitem

import (
	"fmt"
	"time"

	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// Exportable is the flat, serializable form of an entry. Exactly one of the
// body pointers is set, matching Kind.
type Exportable struct {
	Kind       Kind              `json:"kind"`
	ID         string            `json:"id"`
	Event      *EventRecord      `json:"event,omitempty"`
	Competitor *CompetitorRecord `json:"competitor,omitempty"`
	Player     *PlayerRecord     `json:"player,omitempty"`
	Status     *StatusRecord     `json:"status,omitempty"`
	Variant    *VariantRecord    `json:"variant,omitempty"`
}

// EventRecord carries every sport event kind. Fields that do not apply to
// a kind stay empty.
type EventRecord struct {
	SportID           urn.URN         `json:"sport_id"`
	Names             Translations    `json:"names,omitempty"`
	Scheduled         *time.Time      `json:"scheduled,omitempty"`
	ScheduledEnd      *time.Time      `json:"scheduled_end,omitempty"`
	StartTimeTBD      *bool           `json:"start_time_tbd,omitempty"`
	ReplacedBy        urn.URN         `json:"replaced_by"`
	LiveOdds          string          `json:"live_odds,omitempty"`
	SummaryLanguages  []lang.Language `json:"summary_languages,omitempty"`
	FixtureLanguages  []lang.Language `json:"fixture_languages,omitempty"`
	SeasonLanguages   []lang.Language `json:"season_languages,omitempty"`
	TimelineLanguages []lang.Language `json:"timeline_languages,omitempty"`

	TournamentID  urn.URN                 `json:"tournament_id"`
	BookingStatus *dto.BookingStatusValue `json:"booking_status,omitempty"`
	Venue         *VenueCI                `json:"venue,omitempty"`
	Conditions    *ConditionsCI           `json:"conditions,omitempty"`
	Competitors   []CompetitorRecord      `json:"competitors,omitempty"`
	Status        *StatusRecord           `json:"status,omitempty"`

	Season             *SeasonCI           `json:"season,omitempty"`
	Round              *RoundCI            `json:"round,omitempty"`
	StartTimeConfirmed *bool               `json:"start_time_confirmed,omitempty"`
	NextLiveTime       *time.Time          `json:"next_live_time,omitempty"`
	ExtraInfo          map[string]string   `json:"extra_info,omitempty"`
	ReferenceIDs       map[string]string   `json:"reference_ids,omitempty"`
	TVChannels         []dto.TVChannel     `json:"tv_channels,omitempty"`
	Timeline           []dto.TimelineEvent `json:"timeline,omitempty"`

	ParentID    urn.URN   `json:"parent_id"`
	StageType   string    `json:"stage_type,omitempty"`
	ChildStages []urn.URN `json:"child_stages,omitempty"`
	CategoryID  urn.URN   `json:"category_id"`

	CategoryNames       Translations    `json:"category_names,omitempty"`
	CategoryCountryCode string          `json:"category_country_code,omitempty"`
	CurrentSeason       *SeasonCI       `json:"current_season,omitempty"`
	Groups              []GroupCI       `json:"groups,omitempty"`
	SeasonIDs           []urn.URN       `json:"season_ids,omitempty"`
	ExhibitionGames     *bool           `json:"exhibition_games,omitempty"`
	ScheduleLanguages   []lang.Language `json:"schedule_languages,omitempty"`
	Schedule            []EventRef      `json:"schedule,omitempty"`

	LotteryID   urn.URN        `json:"lottery_id"`
	DrawStatus  string         `json:"draw_status,omitempty"`
	DisplayID   *int           `json:"display_id,omitempty"`
	DrawResults []DrawResultCI `json:"draw_results,omitempty"`
	DrawIDs     []urn.URN      `json:"draw_ids,omitempty"`
}

type CompetitorRecord struct {
	ID               urn.URN           `json:"id"`
	Names            Translations      `json:"names,omitempty"`
	Abbreviations    Translations      `json:"abbreviations,omitempty"`
	Countries        Translations      `json:"countries,omitempty"`
	CountryCode      string            `json:"country_code,omitempty"`
	Gender           string            `json:"gender,omitempty"`
	AgeGroup         string            `json:"age_group,omitempty"`
	IsVirtual        *bool             `json:"is_virtual,omitempty"`
	ReferenceIDs     map[string]string `json:"reference_ids,omitempty"`
	PlayerIDs        []urn.URN         `json:"player_ids,omitempty"`
	Venue            *VenueCI          `json:"venue,omitempty"`
	Manager          *ManagerCI        `json:"manager,omitempty"`
	Qualifier        string            `json:"qualifier,omitempty"`
	Division         *int              `json:"division,omitempty"`
	SummaryLanguages []lang.Language   `json:"summary_languages,omitempty"`
	ProfileLanguages []lang.Language   `json:"profile_languages,omitempty"`
}

type PlayerRecord struct {
	Names            Translations    `json:"names,omitempty"`
	Nationalities    Translations    `json:"nationalities,omitempty"`
	Type             string          `json:"type,omitempty"`
	DateOfBirth      *time.Time      `json:"date_of_birth,omitempty"`
	CountryCode      string          `json:"country_code,omitempty"`
	Gender           string          `json:"gender,omitempty"`
	Abbreviation     string          `json:"abbreviation,omitempty"`
	Height           *int            `json:"height,omitempty"`
	Weight           *int            `json:"weight,omitempty"`
	JerseyNumber     *int            `json:"jersey_number,omitempty"`
	CompetitorID     urn.URN         `json:"competitor_id"`
	ProfileLanguages []lang.Language `json:"profile_languages,omitempty"`
}

type StatusRecord struct {
	Status     dto.SportEventStatus `json:"status"`
	Provenance Provenance           `json:"provenance"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

type VariantRecord struct {
	Outcomes  []OutcomeCI          `json:"outcomes,omitempty"`
	Mappings  []dto.VariantMapping `json:"mappings,omitempty"`
	Languages []lang.Language      `json:"languages,omitempty"`
}

func invalidRecord(rec Exportable, reason string) error {
	return fmt.Errorf("%w: %s %q: %s", ErrInvalidRecord, rec.Kind, rec.ID, reason)
}

// FromExportable rebuilds an identifier keyed entry. Sport event entries
// are wired to loader.
func FromExportable(rec Exportable, loader Loader) (Entry, error) {
	id, err := urn.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	switch rec.Kind {
	case KindMatch, KindStage, KindTournament, KindDraw, KindLottery:
		if rec.Event == nil {
			return nil, invalidRecord(rec, "missing event body")
		}
	case KindCompetitor, KindTeamCompetitor:
		if rec.Competitor == nil {
			return nil, invalidRecord(rec, "missing competitor body")
		}
	case KindPlayer:
		if rec.Player == nil {
			return nil, invalidRecord(rec, "missing player body")
		}
	case KindStatus:
		if rec.Status == nil {
			return nil, invalidRecord(rec, "missing status body")
		}
	default:
		return nil, invalidRecord(rec, "unknown kind")
	}

	switch rec.Kind {
	case KindMatch:
		m := NewMatchCI(id, loader)
		m.importRecord(rec.Event)
		return m, nil
	case KindStage:
		s := NewStageCI(id, loader)
		s.importRecord(rec.Event)
		return s, nil
	case KindTournament:
		t := NewTournamentInfoCI(id, loader)
		t.importRecord(rec.Event)
		return t, nil
	case KindDraw:
		d := NewDrawCI(id, loader)
		d.importRecord(rec.Event)
		return d, nil
	case KindLottery:
		lt := NewLotteryCI(id, loader)
		lt.importRecord(rec.Event)
		return lt, nil
	case KindCompetitor:
		c := NewCompetitorCI(id)
		c.mu.Lock()
		c.importLocked(rec.Competitor)
		c.mu.Unlock()
		return c, nil
	case KindTeamCompetitor:
		t := NewTeamCompetitorCI(id)
		t.mu.Lock()
		t.importTeamLocked(rec.Competitor)
		t.mu.Unlock()
		return t, nil
	case KindPlayer:
		return playerFromRecord(id, rec.Player), nil
	default:
		return statusFromRecord(id, rec.Status), nil
	}
}

func playerFromRecord(id urn.URN, r *PlayerRecord) *PlayerCI {
	p := NewPlayerCI(id)
	p.names = r.Names.Clone()
	p.nationalities = r.Nationalities.Clone()
	p.typ = r.Type
	p.dateOfBirth = copyTime(r.DateOfBirth)
	p.countryCode = r.CountryCode
	p.gender = r.Gender
	p.abbreviation = r.Abbreviation
	p.height = copyInt(r.Height)
	p.weight = copyInt(r.Weight)
	p.jerseyNumber = copyInt(r.JerseyNumber)
	p.competitorID = r.CompetitorID
	p.langs.restore(ClassProfile, r.ProfileLanguages)
	return p
}

// NewSportEvent builds an empty entry for id, choosing the concrete type
// from the identifier group alone.
func NewSportEvent(id urn.URN, loader Loader) (SportEventEntry, error) {
	switch id.Group() {
	case urn.Match:
		return NewMatchCI(id, loader), nil
	case urn.Stage:
		return NewStageCI(id, loader), nil
	case urn.Tournament, urn.BasicTournament, urn.Season:
		return NewTournamentInfoCI(id, loader), nil
	case urn.Draw:
		return NewDrawCI(id, loader), nil
	case urn.Lottery:
		return NewLotteryCI(id, loader), nil
	default:
		return nil, fmt.Errorf("cacheitem: no sport event entry for %s (%s)", id, id.Group())
	}
}
