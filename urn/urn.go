// Package urn parses and formats the structured identifiers used by the
// sports data feed, e.g. "sr:match:123" or "wns:draw:9".
//
// An identifier carries a ResourceTypeGroup derived from its type segment.
// Caches use the group to decide which entry type to build for an id
// without calling upstream.
package urn

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedIdentifier is matched by every parse failure.
var ErrMalformedIdentifier = errors.New("malformed identifier")

// ResourceTypeGroup is the dispatch discriminant of an identifier.
type ResourceTypeGroup int

const (
	Unknown ResourceTypeGroup = iota
	Match
	Stage
	Tournament
	BasicTournament
	Season
	SimpleTeam
	Lottery
	Draw
)

var groupNames = map[ResourceTypeGroup]string{
	Unknown:         "unknown",
	Match:           "match",
	Stage:           "stage",
	Tournament:      "tournament",
	BasicTournament: "basic_tournament",
	Season:          "season",
	SimpleTeam:      "simple_team",
	Lottery:         "lottery",
	Draw:            "draw",
}

func (g ResourceTypeGroup) String() string {
	if name, ok := groupNames[g]; ok {
		return name
	}
	return "unknown"
}

// IsTournamentLike reports whether entries of this group are tournament shaped.
func (g ResourceTypeGroup) IsTournamentLike() bool {
	return g == Tournament || g == BasicTournament || g == Season
}

var typeGroups = map[string]ResourceTypeGroup{
	"match":             Match,
	"stage":             Stage,
	"race_event":        Stage,
	"race_tournament":   Stage,
	"tournament":        Tournament,
	"simple_tournament": BasicTournament,
	"season":            Season,
	"simpleteam":        SimpleTeam,
	"simple_team":       SimpleTeam,
	"lottery":           Lottery,
	"draw":              Draw,
}

var pattern = regexp.MustCompile(`^([a-zA-Z0-9]+):([a-zA-Z_2]+):(-?\d+)$`)

// URN is an immutable, comparable identifier.
type URN struct {
	prefix string
	typ    string
	id     int64
}

// New builds an identifier from its parts.
func New(prefix, typ string, id int64) URN {
	return URN{prefix: prefix, typ: strings.ToLower(typ), id: id}
}

// Parse parses the canonical "prefix:type:id" form.
func Parse(s string) (URN, error) {
	m := pattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return URN{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, s)
	}
	id, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return URN{}, fmt.Errorf("%w: %q: %v", ErrMalformedIdentifier, s, err)
	}
	return New(m[1], m[2], id), nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) URN {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func (u URN) Prefix() string { return u.prefix }
func (u URN) Type() string   { return u.typ }
func (u URN) ID() int64      { return u.id }

// IsZero reports whether u is the zero identifier.
func (u URN) IsZero() bool { return u == URN{} }

// Group derives the resource type group from the type segment.
func (u URN) Group() ResourceTypeGroup {
	if g, ok := typeGroups[u.typ]; ok {
		return g
	}
	return Unknown
}

func (u URN) String() string {
	if u.IsZero() {
		return ""
	}
	return u.prefix + ":" + u.typ + ":" + strconv.FormatInt(u.id, 10)
}

// MarshalText implements encoding.TextMarshaler.
func (u URN) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *URN) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*u = URN{}
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
