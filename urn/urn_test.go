package urn

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantGroup ResourceTypeGroup
		wantStr   string
		wantError bool
	}{
		{name: "match", input: "sr:match:123", wantGroup: Match, wantStr: "sr:match:123"},
		{name: "stage", input: "sr:stage:7", wantGroup: Stage, wantStr: "sr:stage:7"},
		{name: "race event", input: "sr:race_event:7", wantGroup: Stage, wantStr: "sr:race_event:7"},
		{name: "tournament", input: "sr:tournament:1", wantGroup: Tournament, wantStr: "sr:tournament:1"},
		{name: "simple tournament", input: "sr:simple_tournament:1", wantGroup: BasicTournament, wantStr: "sr:simple_tournament:1"},
		{name: "season", input: "sr:season:55", wantGroup: Season, wantStr: "sr:season:55"},
		{name: "simple team", input: "sr:simpleteam:5", wantGroup: SimpleTeam, wantStr: "sr:simpleteam:5"},
		{name: "lottery", input: "wns:lottery:3", wantGroup: Lottery, wantStr: "wns:lottery:3"},
		{name: "draw", input: "wns:draw:9", wantGroup: Draw, wantStr: "wns:draw:9"},
		{name: "competitor is unknown group", input: "sr:competitor:9", wantGroup: Unknown, wantStr: "sr:competitor:9"},
		{name: "negative id", input: "sr:match:-1", wantGroup: Match, wantStr: "sr:match:-1"},
		{name: "upper case type normalized", input: "sr:MATCH:1", wantGroup: Match, wantStr: "sr:match:1"},
		{name: "empty", input: "", wantError: true},
		{name: "missing id", input: "sr:match", wantError: true},
		{name: "non numeric id", input: "sr:match:abc", wantError: true},
		{name: "extra segment", input: "sr:match:1:2", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantError {
				if !errors.Is(err, ErrMalformedIdentifier) {
					t.Fatalf("expected ErrMalformedIdentifier, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Group() != tt.wantGroup {
				t.Errorf("expected group %v, got %v", tt.wantGroup, got.Group())
			}
			if got.String() != tt.wantStr {
				t.Errorf("expected %q, got %q", tt.wantStr, got.String())
			}
		})
	}
}

func TestURN_Equality(t *testing.T) {
	a := MustParse("sr:match:1")
	b := MustParse("sr:match:1")
	if a != b {
		t.Fatal("expected identifiers parsed from the same text to be equal")
	}

	m := map[URN]int{a: 1}
	if m[b] != 1 {
		t.Fatal("expected identifiers to hash equally")
	}
}

func TestURN_TextRoundTrip(t *testing.T) {
	u := MustParse("sr:season:42")
	b, err := u.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back URN
	if err := back.UnmarshalText(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != u {
		t.Errorf("expected %v, got %v", u, back)
	}
}
