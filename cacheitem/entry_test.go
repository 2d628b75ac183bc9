package cacheitem

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

var (
	en = lang.MustParse("en")
	de = lang.MustParse("de")
	hu = lang.MustParse("hu")

	matchID = urn.MustParse("sr:match:1001")
	homeID  = urn.MustParse("sr:competitor:1")
	awayID  = urn.MustParse("sr:competitor:2")
)

func ptr[T any](v T) *T { return &v }

func sampleMatch(name, venue string) *dto.Match {
	scheduled := time.Date(2024, 1, 9, 18, 0, 0, 0, time.UTC)
	return &dto.Match{
		SportEvent: dto.SportEvent{
			ID:        matchID,
			Name:      name,
			SportID:   urn.MustParse("sr:sport:1"),
			Scheduled: &scheduled,
		},
		Tournament: &dto.TournamentRef{ID: urn.MustParse("sr:tournament:17")},
		Season:     &dto.Season{ID: urn.MustParse("sr:season:99"), Name: "Season " + name},
		Round:      &dto.Round{Type: "cup", Number: ptr(3), Name: "Round " + name},
		Venue:      &dto.Venue{ID: urn.MustParse("sr:venue:5"), Name: venue, Capacity: ptr(40000)},
		Competitors: []dto.TeamCompetitor{
			{Competitor: dto.Competitor{ID: homeID, Name: "Team A"}, Qualifier: "home"},
			{Competitor: dto.Competitor{ID: awayID, Name: "Team B"}, Qualifier: "away"},
		},
		Status: &dto.SportEventStatus{EventID: matchID, Status: dto.EventStatusNotStarted},
	}
}

type recordingLoader struct {
	mu       sync.Mutex
	summary  [][]lang.Language
	fixture  [][]lang.Language
	seasons  [][]lang.Language
	timeline [][]lang.Language
	defaults []lang.Language
	onLoad   func(id urn.URN, l lang.Language, requester Entry) error
}

func (r *recordingLoader) LoadSummary(_ context.Context, id urn.URN, langs []lang.Language, requester Entry) error {
	r.mu.Lock()
	r.summary = append(r.summary, langs)
	r.mu.Unlock()
	for _, l := range langs {
		if r.onLoad != nil {
			if err := r.onLoad(id, l, requester); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *recordingLoader) LoadFixture(_ context.Context, _ urn.URN, langs []lang.Language, _ Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fixture = append(r.fixture, langs)
	return nil
}

func (r *recordingLoader) LoadSeasons(_ context.Context, _ urn.URN, langs []lang.Language, _ Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seasons = append(r.seasons, langs)
	return nil
}

func (r *recordingLoader) LoadTimeline(_ context.Context, _ urn.URN, langs []lang.Language, _ Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeline = append(r.timeline, langs)
	return nil
}

func (r *recordingLoader) DefaultLanguages() []lang.Language { return r.defaults }

func TestMatchMerge_LanguageIsolation(t *testing.T) {
	m := NewMatchCI(matchID, nil)
	ctx := context.Background()

	if err := m.Merge(sampleMatch("Team A vs Team B", "Stadium"), en); err != nil {
		t.Fatalf("merge en: %v", err)
	}
	if err := m.Merge(sampleMatch("Team A gegen Team B", "Stadion"), de); err != nil {
		t.Fatalf("merge de: %v", err)
	}

	names, err := m.Names(ctx, []lang.Language{en, de})
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if names[en] != "Team A vs Team B" {
		t.Errorf("expected english name unchanged, got %q", names[en])
	}
	if names[de] != "Team A gegen Team B" {
		t.Errorf("expected german name, got %q", names[de])
	}

	venue, err := m.Venue(ctx, []lang.Language{en, de})
	if err != nil {
		t.Fatalf("venue: %v", err)
	}
	if venue.Names[en] != "Stadium" || venue.Names[de] != "Stadion" {
		t.Errorf("unexpected venue names %v", venue.Names)
	}

	if got := m.SummaryLanguages(); !reflect.DeepEqual(got, []lang.Language{de, en}) {
		t.Errorf("expected summary languages [de en], got %v", got)
	}
	if got := m.FixtureLanguages(); got != nil {
		t.Errorf("expected no fixture languages, got %v", got)
	}
}

func TestMatchMerge_Idempotent(t *testing.T) {
	once := NewMatchCI(matchID, nil)
	twice := NewMatchCI(matchID, nil)

	p := sampleMatch("Team A vs Team B", "Stadium")
	if err := once.Merge(p, en); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := twice.Merge(p, en); err != nil {
			t.Fatal(err)
		}
	}

	a, b := once.Export(), twice.Export()
	// the status snapshot carries its update time
	a.Event.Status.UpdatedAt = time.Time{}
	b.Event.Status.UpdatedAt = time.Time{}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected identical state\nonce:  %+v\ntwice: %+v", a.Event, b.Event)
	}
}

func TestMatchMerge_ChildrenMergedByID(t *testing.T) {
	m := NewMatchCI(matchID, nil)
	ctx := context.Background()

	if err := m.Merge(sampleMatch("A vs B", "Stadium"), en); err != nil {
		t.Fatal(err)
	}
	partial := &dto.Match{
		SportEvent: dto.SportEvent{ID: matchID},
		Competitors: []dto.TeamCompetitor{
			{Competitor: dto.Competitor{ID: awayID, Name: "Mannschaft B"}},
			{Competitor: dto.Competitor{ID: urn.MustParse("sr:competitor:3"), Name: "Mannschaft C"}},
		},
	}
	if err := m.Merge(partial, de); err != nil {
		t.Fatal(err)
	}

	comps, err := m.Competitors(ctx, []lang.Language{en})
	if err != nil {
		t.Fatal(err)
	}
	if len(comps) != 3 {
		t.Fatalf("expected 3 competitors, got %d", len(comps))
	}
	if comps[0].ID() != homeID || comps[0].Name(en) != "Team A" {
		t.Errorf("expected home competitor kept, got %s %q", comps[0].ID(), comps[0].Name(en))
	}
	if comps[1].Name(en) != "Team B" || comps[1].Name(de) != "Mannschaft B" {
		t.Errorf("expected away competitor merged, got %v", comps[1].Names([]lang.Language{en, de}))
	}
	if comps[1].Qualifier() != "away" {
		t.Errorf("expected qualifier kept, got %q", comps[1].Qualifier())
	}

	start, _ := m.ScheduledTimes()
	if start == nil {
		t.Error("expected scheduled time kept after partial merge")
	}
}

func TestMatchMerge_PartialFailure(t *testing.T) {
	m := NewMatchCI(matchID, nil)
	p := sampleMatch("A vs B", "Stadium")
	p.Competitors = append(p.Competitors, dto.TeamCompetitor{Competitor: dto.Competitor{Name: "no id"}})

	err := m.Merge(p, en)
	var merr *MergeError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MergeError, got %v", err)
	}
	if len(merr.Fields) != 1 || merr.Fields[0].Field != "competitors[2]" {
		t.Errorf("unexpected field errors %+v", merr.Fields)
	}

	comps, _ := m.Competitors(context.Background(), nil)
	if len(comps) != 2 {
		t.Errorf("expected remaining competitors merged, got %d", len(comps))
	}
	if name, _ := m.Name(context.Background(), en); name != "A vs B" {
		t.Errorf("expected name merged, got %q", name)
	}
}

func TestMerge_UnsupportedPayload(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		p     dto.Payload
	}{
		{"match rejects player", NewMatchCI(matchID, nil), &dto.PlayerProfile{}},
		{"stage rejects tournament", NewStageCI(urn.MustParse("sr:stage:1"), nil), &dto.TournamentInfo{}},
		{"tournament rejects match", NewTournamentInfoCI(urn.MustParse("sr:tournament:1"), nil), &dto.Match{}},
		{"draw rejects lottery", NewDrawCI(urn.MustParse("wns:draw:1"), nil), &dto.Lottery{}},
		{"player rejects competitor", NewPlayerCI(urn.MustParse("sr:player:1")), &dto.CompetitorProfile{}},
		{"status rejects match", NewStatusCI(matchID), &dto.Match{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Merge(tt.p, en)
			if !errors.Is(err, ErrUnsupportedPayload) {
				t.Errorf("expected ErrUnsupportedPayload, got %v", err)
			}
		})
	}
}

func TestMatch_LazyLoadsOnlyMissingLanguages(t *testing.T) {
	loader := &recordingLoader{defaults: []lang.Language{en}}
	m := NewMatchCI(matchID, loader)
	loader.onLoad = func(_ urn.URN, l lang.Language, requester Entry) error {
		if requester != Entry(m) {
			t.Errorf("expected entry to name itself as requester")
		}
		return m.Merge(sampleMatch("name "+string(l), "venue"), l)
	}

	if err := m.Merge(sampleMatch("A vs B", "Stadium"), en); err != nil {
		t.Fatal(err)
	}

	names, err := m.Names(context.Background(), []lang.Language{en, de})
	if err != nil {
		t.Fatal(err)
	}
	if names[de] != "name de" || names[en] != "A vs B" {
		t.Errorf("unexpected names %v", names)
	}

	if len(loader.summary) != 1 || !reflect.DeepEqual(loader.summary[0], []lang.Language{de}) {
		t.Errorf("expected one load for [de], got %v", loader.summary)
	}

	if _, err := m.Names(context.Background(), []lang.Language{en, de}); err != nil {
		t.Fatal(err)
	}
	if len(loader.summary) != 1 {
		t.Errorf("expected no further loads, got %v", loader.summary)
	}
}

func TestMatch_FixtureAccessorLoadsDefaultLanguage(t *testing.T) {
	loader := &recordingLoader{defaults: []lang.Language{en}}
	m := NewMatchCI(matchID, loader)

	if _, err := m.StartTimeConfirmed(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(loader.fixture) != 1 || !reflect.DeepEqual(loader.fixture[0], []lang.Language{en}) {
		t.Errorf("expected fixture load for default language, got %v", loader.fixture)
	}
}

func TestMatch_LoaderErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	loader := &recordingLoader{onLoad: func(urn.URN, lang.Language, Entry) error { return boom }}
	m := NewMatchCI(matchID, loader)

	if _, err := m.Names(context.Background(), []lang.Language{en}); !errors.Is(err, boom) {
		t.Errorf("expected loader error, got %v", err)
	}
}

func TestNewTeamCompetitorFrom_PreservesLanguages(t *testing.T) {
	c := NewCompetitorCI(homeID)
	c.MergeCompetitor(dto.Competitor{ID: homeID, Name: "Team A"}, en)
	if err := c.Merge(&dto.SimpleTeamProfile{Competitor: dto.Competitor{ID: homeID, Name: "Mannschaft A"}}, de); err != nil {
		t.Fatal(err)
	}

	team := NewTeamCompetitorFrom(c)
	team.MergeTeamCompetitor(dto.TeamCompetitor{
		Competitor: dto.Competitor{ID: homeID, Name: "A csapat"},
		Qualifier:  "home",
	}, hu)

	names := team.Names([]lang.Language{en, de, hu})
	want := map[lang.Language]string{en: "Team A", de: "Mannschaft A", hu: "A csapat"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}
	if team.Kind() != KindTeamCompetitor {
		t.Errorf("expected team competitor kind, got %s", team.Kind())
	}
	if missing := team.MissingProfileLanguages([]lang.Language{de}); len(missing) != 0 {
		t.Errorf("expected profile language de copied, missing %v", missing)
	}

	// the source entry is untouched
	if _, ok := c.Names([]lang.Language{hu})[hu]; ok {
		t.Error("expected source competitor not to see hu")
	}
}

func TestTournamentMerge_GroupsAndSeasons(t *testing.T) {
	id := urn.MustParse("sr:tournament:17")
	tr := NewTournamentInfoCI(id, nil)
	ctx := context.Background()

	info := &dto.TournamentInfo{
		ID:            id,
		Name:          "Premier League",
		Category:      &dto.SportCategory{ID: urn.MustParse("sr:category:1"), Name: "England"},
		CurrentSeason: &dto.Season{ID: urn.MustParse("sr:season:99"), Name: "24/25"},
		Groups: []dto.Group{{
			ID:          "g1",
			Name:        "Group A",
			Competitors: []dto.Competitor{{ID: homeID, Name: "Team A"}},
		}},
	}
	if err := tr.Merge(info, en); err != nil {
		t.Fatal(err)
	}
	seasons := &dto.TournamentSeasons{Seasons: []dto.Season{
		{ID: urn.MustParse("sr:season:98")},
		{ID: urn.MustParse("sr:season:99")},
	}}
	if err := tr.Merge(seasons, en); err != nil {
		t.Fatal(err)
	}

	want := []urn.URN{urn.MustParse("sr:season:99"), urn.MustParse("sr:season:98")}
	if got := tr.SeasonIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected seasons %v, got %v", want, got)
	}

	groups, _ := tr.Groups(ctx, []lang.Language{en})
	if len(groups) != 1 || !reflect.DeepEqual(groups[0].CompetitorIDs, []urn.URN{homeID}) {
		t.Errorf("unexpected groups %+v", groups)
	}
	comps, _ := tr.Competitors(ctx, []lang.Language{en})
	if len(comps) != 1 || comps[0].Name(en) != "Team A" {
		t.Errorf("expected group competitor on tournament, got %d", len(comps))
	}
	season, _ := tr.CurrentSeason(ctx, []lang.Language{en})
	if season == nil || season.Names[en] != "24/25" {
		t.Errorf("unexpected current season %+v", season)
	}
}

func TestStatusApply_MergesPeriodScores(t *testing.T) {
	s := NewStatusCI(matchID)
	at := time.Date(2024, 1, 9, 18, 30, 0, 0, time.UTC)
	s.Apply(&dto.SportEventStatus{
		Status:       dto.EventStatusLive,
		HomeScore:    ptr(1.0),
		PeriodScores: []dto.PeriodScore{{Number: 1, Type: "regular", HomeScore: 1}},
	}, ProvenanceLive, at)
	s.Apply(&dto.SportEventStatus{
		Status:       dto.EventStatusLive,
		PeriodScores: []dto.PeriodScore{{Number: 1, Type: "regular", HomeScore: 2}, {Number: 2, Type: "regular"}},
	}, ProvenanceLive, at)

	snap := s.Snapshot()
	if len(snap.PeriodScores) != 2 || snap.PeriodScores[0].HomeScore != 2 {
		t.Errorf("unexpected period scores %+v", snap.PeriodScores)
	}
	if snap.HomeScore == nil || *snap.HomeScore != 1 {
		t.Errorf("expected home score kept, got %v", snap.HomeScore)
	}
	if src, when := s.Source(); src != ProvenanceLive || !when.Equal(at) {
		t.Errorf("unexpected source %s %v", src, when)
	}
}

func TestNewSportEvent_ByGroup(t *testing.T) {
	tests := []struct {
		id   string
		want Kind
	}{
		{"sr:match:1", KindMatch},
		{"sr:stage:1", KindStage},
		{"sr:race_event:1", KindStage},
		{"sr:tournament:1", KindTournament},
		{"sr:simple_tournament:1", KindTournament},
		{"sr:season:1", KindTournament},
		{"wns:draw:1", KindDraw},
		{"wns:lottery:1", KindLottery},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			e, err := NewSportEvent(urn.MustParse(tt.id), nil)
			if err != nil {
				t.Fatal(err)
			}
			if e.Kind() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, e.Kind())
			}
		})
	}

	if _, err := NewSportEvent(urn.MustParse("sr:competitor:1"), nil); err == nil {
		t.Error("expected error for competitor id")
	}
}
