// Package dto defines the closed set of payload shapes the feed produces.
//
// A payload is a single-language fragment. Pointer fields are optional: a nil
// pointer means "not supplied by this payload" and never clears cached data.
// Translatable values (names) are plain strings in the language the payload
// was fetched for.
//
// Dispatch over shapes goes through Visitor. A store implements every Visit
// method, so adding a shape here fails compilation of every store until the
// new shape is handled.
package dto

import (
	"time"

	"github.com/goliatone/go-sportdata-cache/urn"
)

// Payload is implemented only by the shapes in this package.
type Payload interface {
	// PayloadID is the primary identifier carried by the payload. List
	// shaped payloads return the zero identifier.
	PayloadID() urn.URN
	Accept(v Visitor) (bool, error)
	sealed()
}

// Visitor handles every payload shape. The bool result reports whether the
// visitor saved anything.
type Visitor interface {
	VisitMatch(*Match) (bool, error)
	VisitStage(*Stage) (bool, error)
	VisitTournamentInfo(*TournamentInfo) (bool, error)
	VisitDraw(*Draw) (bool, error)
	VisitLottery(*Lottery) (bool, error)
	VisitFixture(*Fixture) (bool, error)
	VisitMatchTimeline(*MatchTimeline) (bool, error)
	VisitTournamentSeasons(*TournamentSeasons) (bool, error)
	VisitSchedule(*Schedule) (bool, error)
	VisitSportList(*SportList) (bool, error)
	VisitSportEventStatus(*SportEventStatus) (bool, error)
	VisitPlayerProfile(*PlayerProfile) (bool, error)
	VisitCompetitorProfile(*CompetitorProfile) (bool, error)
	VisitSimpleTeamProfile(*SimpleTeamProfile) (bool, error)
	VisitVariantDescriptionList(*VariantDescriptionList) (bool, error)
	VisitLotteryList(*LotteryList) (bool, error)
	VisitBookingStatus(*BookingStatus) (bool, error)
}

// SportEvent is the header shared by every sport event summary.
type SportEvent struct {
	ID           urn.URN
	Name         string
	SportID      urn.URN
	Scheduled    *time.Time
	ScheduledEnd *time.Time
	StartTimeTBD *bool
	ReplacedBy   urn.URN
	LiveOdds     string
}

type SportCategory struct {
	ID          urn.URN
	Name        string
	CountryCode string
}

type TournamentRef struct {
	ID       urn.URN
	Name     string
	SportID  urn.URN
	Category *SportCategory
}

type Season struct {
	ID           urn.URN
	Name         string
	Year         string
	TournamentID urn.URN
	StartDate    *time.Time
	EndDate      *time.Time
}

type Round struct {
	Type                string
	Number              *int
	Name                string
	GroupName           string
	Phase               string
	CupRoundMatches     *int
	CupRoundMatchNumber *int
}

type Venue struct {
	ID          urn.URN
	Name        string
	City        string
	Country     string
	CountryCode string
	Capacity    *int
	Coordinates string
}

type Referee struct {
	ID          urn.URN
	Name        string
	Nationality string
}

type Conditions struct {
	Attendance string
	EventMode  string
	Referee    *Referee
}

type Competitor struct {
	ID           urn.URN
	Name         string
	Abbreviation string
	Country      string
	CountryCode  string
	Gender       string
	AgeGroup     string
	IsVirtual    *bool
	ReferenceIDs map[string]string
}

// TeamCompetitor is a competitor as it appears inside a sport event.
type TeamCompetitor struct {
	Competitor
	Qualifier string
	Division  *int
}

type Group struct {
	ID          string
	Name        string
	Competitors []Competitor
}

type TVChannel struct {
	Name      string
	StartTime *time.Time
}

type Match struct {
	SportEvent
	Tournament    *TournamentRef
	Season        *Season
	Round         *Round
	Venue         *Venue
	Conditions    *Conditions
	Competitors   []TeamCompetitor
	Status        *SportEventStatus
	BookingStatus *BookingStatusValue
}

type Stage struct {
	SportEvent
	Tournament  *TournamentRef
	ParentID    urn.URN
	StageType   string
	Stages      []SportEvent
	Venue       *Venue
	Conditions  *Conditions
	Competitors []TeamCompetitor
	Status      *SportEventStatus
}

type TournamentInfo struct {
	ID            urn.URN
	Name          string
	SportID       urn.URN
	Category      *SportCategory
	Scheduled     *time.Time
	ScheduledEnd  *time.Time
	CurrentSeason *Season
	// Season is set when the requested identifier is a season.
	Season          *Season
	Competitors     []Competitor
	Groups          []Group
	ExhibitionGames *bool
}

type DrawResult struct {
	Value int
	Name  string
}

type Draw struct {
	ID        urn.URN
	LotteryID urn.URN
	Scheduled *time.Time
	Status    string
	DisplayID *int
	Results   []DrawResult
}

type Lottery struct {
	ID       urn.URN
	Name     string
	SportID  urn.URN
	Category *SportCategory
	DrawIDs  []urn.URN
}

type Fixture struct {
	SportEvent
	Tournament         *TournamentRef
	Season             *Season
	Round              *Round
	Venue              *Venue
	Conditions         *Conditions
	Competitors        []TeamCompetitor
	StartTimeConfirmed *bool
	NextLiveTime       *time.Time
	ExtraInfo          map[string]string
	ReferenceIDs       map[string]string
	TVChannels         []TVChannel
}

type TimelineEvent struct {
	ID        int64
	Type      string
	Time      time.Time
	MatchTime *int
	Period    string
	Team      string
	Value     string
	HomeScore *float64
	AwayScore *float64
}

type MatchTimeline struct {
	Event  *Match
	Status *SportEventStatus
	Events []TimelineEvent
}

type TournamentSeasons struct {
	Tournament *TournamentInfo
	Seasons    []Season
}

// Schedule is a list of sport event summaries, e.g. a date or tournament
// schedule. Items are Match, Stage, TournamentInfo, Draw or Lottery.
type Schedule struct {
	Events []Payload
}

type Sport struct {
	ID          urn.URN
	Name        string
	Tournaments []TournamentInfo
}

type SportList struct {
	Sports []Sport
}

type PeriodScore struct {
	Number          int
	Type            string
	HomeScore       float64
	AwayScore       float64
	MatchStatusCode int
}

type SportEventStatus struct {
	EventID         urn.URN
	Status          EventStatus
	MatchStatusCode *int
	HomeScore       *float64
	AwayScore       *float64
	PeriodScores    []PeriodScore
	WinnerID        urn.URN
	Properties      map[string]string
}

type PlayerProfile struct {
	ID           urn.URN
	Name         string
	Type         string
	DateOfBirth  *time.Time
	Nationality  string
	CountryCode  string
	Gender       string
	Abbreviation string
	Height       *int
	Weight       *int
	JerseyNumber *int
	CompetitorID urn.URN
}

type Manager struct {
	ID          urn.URN
	Name        string
	Nationality string
	CountryCode string
}

type CompetitorProfile struct {
	Competitor Competitor
	Players    []PlayerProfile
	Venue      *Venue
	Manager    *Manager
}

type SimpleTeamProfile struct {
	Competitor Competitor
}

type Outcome struct {
	ID   string
	Name string
}

type VariantMapping struct {
	MarketID  int
	SportID   urn.URN
	ProductID int
}

type VariantDescription struct {
	ID       string
	Outcomes []Outcome
	Mappings []VariantMapping
}

type VariantDescriptionList struct {
	Variants []VariantDescription
}

type LotteryList struct {
	Lotteries []Lottery
}

type BookingStatus struct {
	EventID urn.URN
	Status  BookingStatusValue
}

func (p *Match) PayloadID() urn.URN                  { return p.ID }
func (p *Stage) PayloadID() urn.URN                  { return p.ID }
func (p *TournamentInfo) PayloadID() urn.URN         { return p.ID }
func (p *Draw) PayloadID() urn.URN                   { return p.ID }
func (p *Lottery) PayloadID() urn.URN                { return p.ID }
func (p *Fixture) PayloadID() urn.URN                { return p.ID }
func (p *SportEventStatus) PayloadID() urn.URN       { return p.EventID }
func (p *PlayerProfile) PayloadID() urn.URN          { return p.ID }
func (p *CompetitorProfile) PayloadID() urn.URN      { return p.Competitor.ID }
func (p *SimpleTeamProfile) PayloadID() urn.URN      { return p.Competitor.ID }
func (p *BookingStatus) PayloadID() urn.URN          { return p.EventID }
func (p *Schedule) PayloadID() urn.URN               { return urn.URN{} }
func (p *SportList) PayloadID() urn.URN              { return urn.URN{} }
func (p *VariantDescriptionList) PayloadID() urn.URN { return urn.URN{} }
func (p *LotteryList) PayloadID() urn.URN            { return urn.URN{} }

func (p *MatchTimeline) PayloadID() urn.URN {
	if p.Event == nil {
		return urn.URN{}
	}
	return p.Event.ID
}

func (p *TournamentSeasons) PayloadID() urn.URN {
	if p.Tournament == nil {
		return urn.URN{}
	}
	return p.Tournament.ID
}

func (p *Match) Accept(v Visitor) (bool, error)             { return v.VisitMatch(p) }
func (p *Stage) Accept(v Visitor) (bool, error)             { return v.VisitStage(p) }
func (p *TournamentInfo) Accept(v Visitor) (bool, error)    { return v.VisitTournamentInfo(p) }
func (p *Draw) Accept(v Visitor) (bool, error)              { return v.VisitDraw(p) }
func (p *Lottery) Accept(v Visitor) (bool, error)           { return v.VisitLottery(p) }
func (p *Fixture) Accept(v Visitor) (bool, error)           { return v.VisitFixture(p) }
func (p *MatchTimeline) Accept(v Visitor) (bool, error)     { return v.VisitMatchTimeline(p) }
func (p *TournamentSeasons) Accept(v Visitor) (bool, error) { return v.VisitTournamentSeasons(p) }
func (p *Schedule) Accept(v Visitor) (bool, error)          { return v.VisitSchedule(p) }
func (p *SportList) Accept(v Visitor) (bool, error)         { return v.VisitSportList(p) }
func (p *SportEventStatus) Accept(v Visitor) (bool, error)  { return v.VisitSportEventStatus(p) }
func (p *PlayerProfile) Accept(v Visitor) (bool, error)     { return v.VisitPlayerProfile(p) }
func (p *CompetitorProfile) Accept(v Visitor) (bool, error) { return v.VisitCompetitorProfile(p) }
func (p *SimpleTeamProfile) Accept(v Visitor) (bool, error) { return v.VisitSimpleTeamProfile(p) }
func (p *VariantDescriptionList) Accept(v Visitor) (bool, error) {
	return v.VisitVariantDescriptionList(p)
}
func (p *LotteryList) Accept(v Visitor) (bool, error)   { return v.VisitLotteryList(p) }
func (p *BookingStatus) Accept(v Visitor) (bool, error) { return v.VisitBookingStatus(p) }

func (*Match) sealed()                  {}
func (*Stage) sealed()                  {}
func (*TournamentInfo) sealed()         {}
func (*Draw) sealed()                   {}
func (*Lottery) sealed()                {}
func (*Fixture) sealed()                {}
func (*MatchTimeline) sealed()          {}
func (*TournamentSeasons) sealed()      {}
func (*Schedule) sealed()               {}
func (*SportList) sealed()              {}
func (*SportEventStatus) sealed()       {}
func (*PlayerProfile) sealed()          {}
func (*CompetitorProfile) sealed()      {}
func (*SimpleTeamProfile) sealed()      {}
func (*VariantDescriptionList) sealed() {}
func (*LotteryList) sealed()            {}
func (*BookingStatus) sealed()          {}
