package cacheitem

import (
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// CompetitorCI is a competitor profile. Names learnt from sport event
// payloads are tracked as summary languages, names from profile payloads as
// profile languages.
type CompetitorCI struct {
	mu sync.RWMutex
	id urn.URN

	names         Translations
	abbreviations Translations
	countries     Translations
	countryCode   string
	gender        string
	ageGroup      string
	isVirtual     *bool
	referenceIDs  map[string]string
	playerIDs     []urn.URN
	venue         *VenueCI
	manager       *ManagerCI
	langs         LanguageTracker
}

func NewCompetitorCI(id urn.URN) *CompetitorCI {
	return &CompetitorCI{id: id, langs: newLanguageTracker()}
}

func (c *CompetitorCI) ID() urn.URN { return c.id }
func (c *CompetitorCI) Kind() Kind  { return KindCompetitor }

// Merge folds a competitor or simple team profile into the entry.
func (c *CompetitorCI) Merge(p dto.Payload, l lang.Language) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mergeProfileLocked(p, l, c.Kind())
}

// MergeCompetitor folds a competitor fragment of a sport event.
func (c *CompetitorCI) MergeCompetitor(in dto.Competitor, l lang.Language) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergeCompetitorLocked(&in, l)
	c.langs.Mark(ClassSummary, l)
}

func (c *CompetitorCI) mergeProfileLocked(p dto.Payload, l lang.Language, k Kind) error {
	errs := &fieldErrors{id: c.id}
	switch v := p.(type) {
	case *dto.CompetitorProfile:
		c.mergeCompetitorLocked(&v.Competitor, l)
		for i, pl := range v.Players {
			if pl.ID.IsZero() {
				errs.add(fmt.Sprintf("players[%d]", i), errMissingID)
				continue
			}
			c.playerIDs = appendMissing(c.playerIDs, pl.ID)
		}
		c.venue = mergeVenue(c.venue, v.Venue, l)
		if m := v.Manager; m != nil {
			if c.manager == nil || (!m.ID.IsZero() && c.manager.ID != m.ID) {
				c.manager = &ManagerCI{ID: m.ID}
			}
			c.manager.Names.Set(l, m.Name)
			c.manager.Nationalities.Set(l, m.Nationality)
			if m.CountryCode != "" {
				c.manager.CountryCode = m.CountryCode
			}
		}
	case *dto.SimpleTeamProfile:
		c.mergeCompetitorLocked(&v.Competitor, l)
	default:
		return unsupported(p, k)
	}
	c.langs.Mark(ClassProfile, l)
	return errs.err()
}

func (c *CompetitorCI) mergeCompetitorLocked(in *dto.Competitor, l lang.Language) {
	c.names.Set(l, in.Name)
	c.abbreviations.Set(l, in.Abbreviation)
	c.countries.Set(l, in.Country)
	if in.CountryCode != "" {
		c.countryCode = in.CountryCode
	}
	if in.Gender != "" {
		c.gender = in.Gender
	}
	if in.AgeGroup != "" {
		c.ageGroup = in.AgeGroup
	}
	if in.IsVirtual != nil {
		c.isVirtual = copyBool(in.IsVirtual)
	}
	mergeStrings(&c.referenceIDs, in.ReferenceIDs)
}

func (c *CompetitorCI) Names(langs []lang.Language) map[lang.Language]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.names.Pick(langs)
}

func (c *CompetitorCI) Name(l lang.Language) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.names[l]
}

func (c *CompetitorCI) Abbreviations(langs []lang.Language) map[lang.Language]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.abbreviations.Pick(langs)
}

func (c *CompetitorCI) CountryCode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.countryCode
}

func (c *CompetitorCI) ReferenceIDs() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneStrings(c.referenceIDs)
}

func (c *CompetitorCI) PlayerIDs() []urn.URN {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneURNs(c.playerIDs)
}

func (c *CompetitorCI) Venue() *VenueCI {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.venue.clone()
}

func (c *CompetitorCI) Manager() *ManagerCI {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.manager.clone()
}

// MissingProfileLanguages returns the languages of langs without a merged
// profile.
func (c *CompetitorCI) MissingProfileLanguages(langs []lang.Language) []lang.Language {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.langs.Missing(ClassProfile, langs)
}

// HasNames reports whether a name is cached for every language in langs,
// whatever payload supplied it.
func (c *CompetitorCI) HasNames(langs []lang.Language) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range langs {
		if _, ok := c.names[l]; !ok {
			return false
		}
	}
	return true
}

func (c *CompetitorCI) Export() Exportable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Exportable{Kind: KindCompetitor, ID: c.id.String(), Competitor: c.exportLocked()}
}

func (c *CompetitorCI) exportLocked() *CompetitorRecord {
	return &CompetitorRecord{
		ID:               c.id,
		Names:            c.names.Clone(),
		Abbreviations:    c.abbreviations.Clone(),
		Countries:        c.countries.Clone(),
		CountryCode:      c.countryCode,
		Gender:           c.gender,
		AgeGroup:         c.ageGroup,
		IsVirtual:        copyBool(c.isVirtual),
		ReferenceIDs:     cloneStrings(c.referenceIDs),
		PlayerIDs:        cloneURNs(c.playerIDs),
		Venue:            c.venue.clone(),
		Manager:          c.manager.clone(),
		SummaryLanguages: c.langs.Loaded(ClassSummary),
		ProfileLanguages: c.langs.Loaded(ClassProfile),
	}
}

func (c *CompetitorCI) importLocked(r *CompetitorRecord) {
	c.names = r.Names.Clone()
	c.abbreviations = r.Abbreviations.Clone()
	c.countries = r.Countries.Clone()
	c.countryCode = r.CountryCode
	c.gender = r.Gender
	c.ageGroup = r.AgeGroup
	c.isVirtual = copyBool(r.IsVirtual)
	c.referenceIDs = cloneStrings(r.ReferenceIDs)
	c.playerIDs = cloneURNs(r.PlayerIDs)
	c.venue = r.Venue.clone()
	c.manager = r.Manager.clone()
	c.langs.restore(ClassSummary, r.SummaryLanguages)
	c.langs.restore(ClassProfile, r.ProfileLanguages)
}

// copyFromLocked deep copies src into c. src must be read locked.
func (c *CompetitorCI) copyFromLocked(src *CompetitorCI) {
	c.importLocked(src.exportLocked())
}

// TeamCompetitorCI is a competitor as it takes part in a sport event.
type TeamCompetitorCI struct {
	CompetitorCI
	qualifier string
	division  *int
}

func NewTeamCompetitorCI(id urn.URN) *TeamCompetitorCI {
	return &TeamCompetitorCI{CompetitorCI: CompetitorCI{id: id, langs: newLanguageTracker()}}
}

// NewTeamCompetitorFrom re-types c, copying every loaded language.
func NewTeamCompetitorFrom(c *CompetitorCI) *TeamCompetitorCI {
	t := NewTeamCompetitorCI(c.ID())
	c.mu.RLock()
	defer c.mu.RUnlock()
	t.copyFromLocked(c)
	return t
}

func (t *TeamCompetitorCI) Kind() Kind { return KindTeamCompetitor }

func (t *TeamCompetitorCI) Merge(p dto.Payload, l lang.Language) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mergeProfileLocked(p, l, t.Kind())
}

// MergeTeamCompetitor folds a team competitor fragment of a sport event.
func (t *TeamCompetitorCI) MergeTeamCompetitor(in dto.TeamCompetitor, l lang.Language) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mergeTeamLocked(&in, l)
}

func (t *TeamCompetitorCI) mergeTeamLocked(in *dto.TeamCompetitor, l lang.Language) {
	t.mergeCompetitorLocked(&in.Competitor, l)
	if in.Qualifier != "" {
		t.qualifier = in.Qualifier
	}
	if in.Division != nil {
		t.division = copyInt(in.Division)
	}
	t.langs.Mark(ClassSummary, l)
}

func (t *TeamCompetitorCI) Qualifier() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.qualifier
}

func (t *TeamCompetitorCI) Division() *int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return copyInt(t.division)
}

func (t *TeamCompetitorCI) Export() Exportable {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Exportable{Kind: KindTeamCompetitor, ID: t.id.String(), Competitor: t.exportTeamLocked()}
}

func (t *TeamCompetitorCI) exportTeamLocked() *CompetitorRecord {
	r := t.exportLocked()
	r.Qualifier = t.qualifier
	r.Division = copyInt(t.division)
	return r
}

func (t *TeamCompetitorCI) importTeamLocked(r *CompetitorRecord) {
	t.importLocked(r)
	t.qualifier = r.Qualifier
	t.division = copyInt(r.Division)
}

// PlayerCI is a player profile.
type PlayerCI struct {
	mu sync.RWMutex
	id urn.URN

	names         Translations
	nationalities Translations
	typ           string
	dateOfBirth   *time.Time
	countryCode   string
	gender        string
	abbreviation  string
	height        *int
	weight        *int
	jerseyNumber  *int
	competitorID  urn.URN
	langs         LanguageTracker
}

func NewPlayerCI(id urn.URN) *PlayerCI {
	return &PlayerCI{id: id, langs: newLanguageTracker()}
}

func (p *PlayerCI) ID() urn.URN { return p.id }
func (p *PlayerCI) Kind() Kind  { return KindPlayer }

func (p *PlayerCI) Merge(payload dto.Payload, l lang.Language) error {
	in, ok := payload.(*dto.PlayerProfile)
	if !ok {
		return unsupported(payload, p.Kind())
	}
	p.MergeProfile(in, l)
	return nil
}

// MergeProfile folds a player profile, standalone or taken from a
// competitor profile.
func (p *PlayerCI) MergeProfile(in *dto.PlayerProfile, l lang.Language) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names.Set(l, in.Name)
	p.nationalities.Set(l, in.Nationality)
	if in.Type != "" {
		p.typ = in.Type
	}
	if in.DateOfBirth != nil {
		p.dateOfBirth = copyTime(in.DateOfBirth)
	}
	if in.CountryCode != "" {
		p.countryCode = in.CountryCode
	}
	if in.Gender != "" {
		p.gender = in.Gender
	}
	if in.Abbreviation != "" {
		p.abbreviation = in.Abbreviation
	}
	if in.Height != nil {
		p.height = copyInt(in.Height)
	}
	if in.Weight != nil {
		p.weight = copyInt(in.Weight)
	}
	if in.JerseyNumber != nil {
		p.jerseyNumber = copyInt(in.JerseyNumber)
	}
	if !in.CompetitorID.IsZero() {
		p.competitorID = in.CompetitorID
	}
	p.langs.Mark(ClassProfile, l)
}

func (p *PlayerCI) Names(langs []lang.Language) map[lang.Language]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.names.Pick(langs)
}

func (p *PlayerCI) Name(l lang.Language) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.names[l]
}

func (p *PlayerCI) CompetitorID() urn.URN {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.competitorID
}

func (p *PlayerCI) JerseyNumber() *int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyInt(p.jerseyNumber)
}

func (p *PlayerCI) MissingProfileLanguages(langs []lang.Language) []lang.Language {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.langs.Missing(ClassProfile, langs)
}

func (p *PlayerCI) Export() Exportable {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Exportable{Kind: KindPlayer, ID: p.id.String(), Player: &PlayerRecord{
		Names:            p.names.Clone(),
		Nationalities:    p.nationalities.Clone(),
		Type:             p.typ,
		DateOfBirth:      copyTime(p.dateOfBirth),
		CountryCode:      p.countryCode,
		Gender:           p.gender,
		Abbreviation:     p.abbreviation,
		Height:           copyInt(p.height),
		Weight:           copyInt(p.weight),
		JerseyNumber:     copyInt(p.jerseyNumber),
		CompetitorID:     p.competitorID,
		ProfileLanguages: p.langs.Loaded(ClassProfile),
	}}
}
