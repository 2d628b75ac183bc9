package dto

// Category tags the shape/source of a fetched payload. Stores declare the
// set of categories they are interested in and the cache manager fans a
// save out by category.
type Category int

const (
	CategoryUnknown Category = iota
	CategorySportEventSummary
	CategorySportEventSummaryList
	CategoryFixture
	CategoryMatchSummary
	CategoryRaceSummary
	CategoryTournamentInfo
	CategoryTournamentSeasons
	CategoryMatchTimeline
	CategoryPlayerProfile
	CategoryCompetitorProfile
	CategorySimpleTeamProfile
	CategorySportList
	CategorySportEventStatus
	CategoryVariantDescriptionList
	CategoryLotteryDraw
	CategoryLotteryList
	CategoryBookingStatus
)

var categoryNames = [...]string{
	CategoryUnknown:                "unknown",
	CategorySportEventSummary:      "sport_event_summary",
	CategorySportEventSummaryList:  "sport_event_summary_list",
	CategoryFixture:                "fixture",
	CategoryMatchSummary:           "match_summary",
	CategoryRaceSummary:            "race_summary",
	CategoryTournamentInfo:         "tournament_info",
	CategoryTournamentSeasons:      "tournament_seasons",
	CategoryMatchTimeline:          "match_timeline",
	CategoryPlayerProfile:          "player_profile",
	CategoryCompetitorProfile:      "competitor_profile",
	CategorySimpleTeamProfile:      "simple_team_profile",
	CategorySportList:              "sport_list",
	CategorySportEventStatus:       "sport_event_status",
	CategoryVariantDescriptionList: "variant_description_list",
	CategoryLotteryDraw:            "lottery_draw",
	CategoryLotteryList:            "lottery_list",
	CategoryBookingStatus:          "booking_status",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// IsFixture reports whether payloads of this category populate the fixture
// language set of an entry instead of the summary set.
func (c Category) IsFixture() bool {
	return c == CategoryFixture
}

// Conforms reports whether the runtime shape of p is one the category can
// carry. Several categories are unions, e.g. a sport event summary can be a
// match, a stage, a tournament or a draw.
func Conforms(c Category, p Payload) bool {
	if p == nil {
		return false
	}
	switch c {
	case CategorySportEventSummary:
		switch p.(type) {
		case *Match, *Stage, *TournamentInfo, *Draw, *Lottery:
			return true
		}
	case CategorySportEventSummaryList:
		_, ok := p.(*Schedule)
		return ok
	case CategoryFixture:
		_, ok := p.(*Fixture)
		return ok
	case CategoryMatchSummary:
		_, ok := p.(*Match)
		return ok
	case CategoryRaceSummary:
		_, ok := p.(*Stage)
		return ok
	case CategoryTournamentInfo:
		_, ok := p.(*TournamentInfo)
		return ok
	case CategoryTournamentSeasons:
		_, ok := p.(*TournamentSeasons)
		return ok
	case CategoryMatchTimeline:
		_, ok := p.(*MatchTimeline)
		return ok
	case CategoryPlayerProfile:
		_, ok := p.(*PlayerProfile)
		return ok
	case CategoryCompetitorProfile:
		_, ok := p.(*CompetitorProfile)
		return ok
	case CategorySimpleTeamProfile:
		_, ok := p.(*SimpleTeamProfile)
		return ok
	case CategorySportList:
		_, ok := p.(*SportList)
		return ok
	case CategorySportEventStatus:
		_, ok := p.(*SportEventStatus)
		return ok
	case CategoryVariantDescriptionList:
		_, ok := p.(*VariantDescriptionList)
		return ok
	case CategoryLotteryDraw:
		_, ok := p.(*Draw)
		return ok
	case CategoryLotteryList:
		_, ok := p.(*LotteryList)
		return ok
	case CategoryBookingStatus:
		_, ok := p.(*BookingStatus)
		return ok
	}
	return false
}
