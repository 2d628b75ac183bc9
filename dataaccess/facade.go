// Package dataaccess is the boundary to the upstream sport data feed.
//
// Stores depend on Facade only. Every successful fetch saves its payload
// through a cache.Saver before returning, so callers re-read their entry
// instead of consuming the payload. Router implements Facade over a Source
// that performs the transport work, and Breaker guards any Facade with a
// circuit breaker.
package dataaccess

import (
	"context"
	"time"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/cacheitem"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// Facade fetches one language of upstream data and saves it.
type Facade interface {
	FetchSummary(ctx context.Context, id urn.URN, l lang.Language, requester cache.Requester) error
	FetchFixture(ctx context.Context, id urn.URN, l lang.Language, useCached bool, requester cache.Requester) error
	FetchCompetitorOrPlayerProfile(ctx context.Context, id urn.URN, l lang.Language, requester cache.Requester) error
	// FetchScheduleForDate fetches the schedule of date, or the live
	// schedule when date is nil.
	FetchScheduleForDate(ctx context.Context, date *time.Time, l lang.Language) ([]cacheitem.EventRef, error)
	FetchScheduleForTournament(ctx context.Context, id urn.URN, l lang.Language) ([]cacheitem.EventRef, error)
	FetchSeasonsForTournament(ctx context.Context, id urn.URN, l lang.Language) ([]urn.URN, error)
	FetchOngoingEventTimeline(ctx context.Context, id urn.URN, l lang.Language) (*dto.MatchTimeline, error)
	FetchVariantDescriptions(ctx context.Context, l lang.Language) error
}

// Source performs the transport work behind a Router. Implementations
// return decoded payloads and never touch the cache.
type Source interface {
	Summary(ctx context.Context, id urn.URN, l lang.Language) (dto.Payload, error)
	Fixture(ctx context.Context, id urn.URN, l lang.Language, useCached bool) (*dto.Fixture, error)
	Profile(ctx context.Context, id urn.URN, l lang.Language) (dto.Payload, error)
	DateSchedule(ctx context.Context, date *time.Time, l lang.Language) (*dto.Schedule, error)
	TournamentSchedule(ctx context.Context, id urn.URN, l lang.Language) (*dto.Schedule, error)
	TournamentSeasons(ctx context.Context, id urn.URN, l lang.Language) (*dto.TournamentSeasons, error)
	Timeline(ctx context.Context, id urn.URN, l lang.Language) (*dto.MatchTimeline, error)
	VariantDescriptions(ctx context.Context, l lang.Language) (*dto.VariantDescriptionList, error)
}

// Operation names used in FetchErrors, logs and metrics.
const (
	OpSummary            = "summary"
	OpFixture            = "fixture"
	OpProfile            = "profile"
	OpDateSchedule       = "date_schedule"
	OpTournamentSchedule = "tournament_schedule"
	OpSeasons            = "tournament_seasons"
	OpTimeline           = "timeline"
	OpVariants           = "variant_descriptions"
)

// SummaryCategory returns the category a summary payload is saved under.
func SummaryCategory(p dto.Payload) dto.Category {
	switch p.(type) {
	case *dto.Match:
		return dto.CategoryMatchSummary
	case *dto.Stage:
		return dto.CategoryRaceSummary
	case *dto.TournamentInfo:
		return dto.CategoryTournamentInfo
	case *dto.Draw:
		return dto.CategoryLotteryDraw
	default:
		return dto.CategorySportEventSummary
	}
}

// ProfileCategory returns the category a profile payload is saved under.
func ProfileCategory(p dto.Payload) dto.Category {
	switch p.(type) {
	case *dto.PlayerProfile:
		return dto.CategoryPlayerProfile
	case *dto.CompetitorProfile:
		return dto.CategoryCompetitorProfile
	case *dto.SimpleTeamProfile:
		return dto.CategorySimpleTeamProfile
	default:
		return dto.CategoryUnknown
	}
}

// ScheduleRefs lists the event ids of a schedule in order.
func ScheduleRefs(s *dto.Schedule) []cacheitem.EventRef {
	if s == nil {
		return nil
	}
	refs := make([]cacheitem.EventRef, 0, len(s.Events))
	for _, p := range s.Events {
		ref := cacheitem.EventRef{ID: p.PayloadID()}
		switch e := p.(type) {
		case *dto.Match:
			ref.SportID = e.SportID
		case *dto.Stage:
			ref.SportID = e.SportID
		case *dto.TournamentInfo:
			ref.SportID = e.SportID
		case *dto.Lottery:
			ref.SportID = e.SportID
		}
		if ref.ID.IsZero() {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}
