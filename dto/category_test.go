package dto

import "testing"

func TestConforms(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		payload  Payload
		want     bool
	}{
		{"summary carries match", CategorySportEventSummary, &Match{}, true},
		{"summary carries stage", CategorySportEventSummary, &Stage{}, true},
		{"summary carries tournament", CategorySportEventSummary, &TournamentInfo{}, true},
		{"summary carries draw", CategorySportEventSummary, &Draw{}, true},
		{"summary rejects player", CategorySportEventSummary, &PlayerProfile{}, false},
		{"match summary rejects stage", CategoryMatchSummary, &Stage{}, false},
		{"race summary carries stage", CategoryRaceSummary, &Stage{}, true},
		{"fixture", CategoryFixture, &Fixture{}, true},
		{"fixture rejects match", CategoryFixture, &Match{}, false},
		{"timeline", CategoryMatchTimeline, &MatchTimeline{}, true},
		{"status", CategorySportEventStatus, &SportEventStatus{}, true},
		{"lottery draw", CategoryLotteryDraw, &Draw{}, true},
		{"unknown category", CategoryUnknown, &Match{}, false},
		{"nil payload", CategoryMatchSummary, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Conforms(tt.category, tt.payload); got != tt.want {
				t.Errorf("Conforms(%v, %T) = %v, want %v", tt.category, tt.payload, got, tt.want)
			}
		})
	}
}

func TestCategory_String(t *testing.T) {
	if CategoryMatchTimeline.String() != "match_timeline" {
		t.Errorf("unexpected name %q", CategoryMatchTimeline.String())
	}
	if Category(999).String() != "unknown" {
		t.Errorf("expected unknown for out of range category")
	}
}

func TestParseEventStatus(t *testing.T) {
	if ParseEventStatus("live") != EventStatusLive {
		t.Error("expected live")
	}
	if ParseEventStatus("nonsense") != EventStatusUnknown {
		t.Error("expected unknown")
	}
}
