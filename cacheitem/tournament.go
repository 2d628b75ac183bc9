package cacheitem

import (
	"context"
	"fmt"

	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// TournamentInfoCI is a tournament, simple tournament or season.
type TournamentInfoCI struct {
	sportEventCI

	categoryID          urn.URN
	categoryNames       Translations
	categoryCountryCode string
	currentSeason       *SeasonCI
	season              *SeasonCI
	competitors         []*CompetitorCI
	groups              []*GroupCI
	seasonIDs           []urn.URN
	exhibitionGames     *bool
	scheduleLangs       lang.Set
	schedule            []EventRef
}

func NewTournamentInfoCI(id urn.URN, loader Loader) *TournamentInfoCI {
	t := &TournamentInfoCI{scheduleLangs: lang.NewSet()}
	t.init(id, loader, t)
	return t
}

func (t *TournamentInfoCI) Kind() Kind { return KindTournament }

func (t *TournamentInfoCI) Merge(p dto.Payload, l lang.Language) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	errs := &fieldErrors{id: t.id}
	switch v := p.(type) {
	case *dto.TournamentInfo:
		t.mergeInfoLocked(v, l, errs)
	case *dto.TournamentSeasons:
		if v.Tournament != nil {
			t.mergeInfoLocked(v.Tournament, l, errs)
			t.langs.Mark(ClassSummary, l)
		}
		for i, s := range v.Seasons {
			if s.ID.IsZero() {
				errs.add(fmt.Sprintf("seasons[%d]", i), errMissingID)
				continue
			}
			t.seasonIDs = appendMissing(t.seasonIDs, s.ID)
		}
		t.langs.Mark(ClassSeasons, l)
		return errs.err()
	default:
		return unsupported(p, t.Kind())
	}
	t.langs.Mark(ClassSummary, l)
	return errs.err()
}

func (t *TournamentInfoCI) mergeInfoLocked(v *dto.TournamentInfo, l lang.Language, errs *fieldErrors) {
	t.mergeHeaderLocked(&dto.SportEvent{
		Name:         v.Name,
		SportID:      v.SportID,
		Scheduled:    v.Scheduled,
		ScheduledEnd: v.ScheduledEnd,
	}, l)
	if c := v.Category; c != nil {
		if !c.ID.IsZero() {
			t.categoryID = c.ID
		}
		t.categoryNames.Set(l, c.Name)
		if c.CountryCode != "" {
			t.categoryCountryCode = c.CountryCode
		}
	}
	t.currentSeason = mergeSeason(t.currentSeason, v.CurrentSeason, l)
	t.season = mergeSeason(t.season, v.Season, l)
	if v.CurrentSeason != nil {
		t.seasonIDs = appendMissing(t.seasonIDs, v.CurrentSeason.ID)
	}
	for i := range v.Competitors {
		if v.Competitors[i].ID.IsZero() {
			errs.add(fmt.Sprintf("competitors[%d]", i), errMissingID)
			continue
		}
		t.mergeCompetitorLocked(v.Competitors[i], l)
	}
	for i := range v.Groups {
		t.mergeGroupLocked(i, &v.Groups[i], l, errs)
	}
	if v.ExhibitionGames != nil {
		t.exhibitionGames = copyBool(v.ExhibitionGames)
	}
}

func (t *TournamentInfoCI) mergeCompetitorLocked(in dto.Competitor, l lang.Language) {
	for _, have := range t.competitors {
		if have.id == in.ID {
			have.MergeCompetitor(in, l)
			return
		}
	}
	c := NewCompetitorCI(in.ID)
	c.MergeCompetitor(in, l)
	t.competitors = append(t.competitors, c)
}

// mergeGroupLocked matches groups by id. Groups without an id are matched
// by position.
func (t *TournamentInfoCI) mergeGroupLocked(pos int, in *dto.Group, l lang.Language, errs *fieldErrors) {
	var g *GroupCI
	if in.ID != "" {
		for _, have := range t.groups {
			if have.ID == in.ID {
				g = have
				break
			}
		}
	} else if pos < len(t.groups) && t.groups[pos].ID == "" {
		g = t.groups[pos]
	}
	if g == nil {
		g = &GroupCI{ID: in.ID}
		t.groups = append(t.groups, g)
	}
	g.Names.Set(l, in.Name)
	for i := range in.Competitors {
		c := in.Competitors[i]
		if c.ID.IsZero() {
			errs.add(fmt.Sprintf("groups[%d].competitors[%d]", pos, i), errMissingID)
			continue
		}
		g.CompetitorIDs = appendMissing(g.CompetitorIDs, c.ID)
		t.mergeCompetitorLocked(c, l)
	}
}

// MergeSchedule records the events of the tournament schedule for l.
func (t *TournamentInfoCI) MergeSchedule(refs []EventRef, l lang.Language) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range refs {
		found := false
		for i, have := range t.schedule {
			if have.ID == r.ID {
				if !r.SportID.IsZero() {
					t.schedule[i].SportID = r.SportID
				}
				found = true
				break
			}
		}
		if !found && !r.ID.IsZero() {
			t.schedule = append(t.schedule, r)
		}
	}
	t.scheduleLangs.Add(l)
}

// Schedule returns the cached schedule and whether it was loaded for l.
func (t *TournamentInfoCI) Schedule(l lang.Language) ([]EventRef, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]EventRef(nil), t.schedule...), t.scheduleLangs.Has(l)
}

func (t *TournamentInfoCI) CategoryID(ctx context.Context) (urn.URN, error) {
	if err := t.ensureAny(ctx, ClassSummary); err != nil {
		return urn.URN{}, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.categoryID, nil
}

func (t *TournamentInfoCI) CategoryNames(ctx context.Context, langs []lang.Language) (map[lang.Language]string, error) {
	if err := t.ensure(ctx, ClassSummary, langs); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.categoryNames.Pick(langs), nil
}

func (t *TournamentInfoCI) CurrentSeason(ctx context.Context, langs []lang.Language) (*SeasonCI, error) {
	if err := t.ensure(ctx, ClassSummary, langs); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.currentSeason.clone(), nil
}

// Season is set when the entry is itself a season.
func (t *TournamentInfoCI) Season(ctx context.Context, langs []lang.Language) (*SeasonCI, error) {
	if err := t.ensure(ctx, ClassSummary, langs); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.season.clone(), nil
}

func (t *TournamentInfoCI) Competitors(ctx context.Context, langs []lang.Language) ([]*CompetitorCI, error) {
	if err := t.ensure(ctx, ClassSummary, langs); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*CompetitorCI(nil), t.competitors...), nil
}

func (t *TournamentInfoCI) Groups(ctx context.Context, langs []lang.Language) ([]*GroupCI, error) {
	if err := t.ensure(ctx, ClassSummary, langs); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*GroupCI, 0, len(t.groups))
	for _, g := range t.groups {
		out = append(out, g.clone())
	}
	return out, nil
}

// SeasonIDs returns the known seasons without loading.
func (t *TournamentInfoCI) SeasonIDs() []urn.URN {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return cloneURNs(t.seasonIDs)
}

// Seasons returns the seasons of the tournament, fetching the season list
// in the languages it was not fetched in yet.
func (t *TournamentInfoCI) Seasons(ctx context.Context, langs []lang.Language) ([]urn.URN, error) {
	if err := t.ensure(ctx, ClassSeasons, langs); err != nil {
		return nil, err
	}
	return t.SeasonIDs(), nil
}

// SeasonLanguages returns the languages the season list was fetched in.
func (t *TournamentInfoCI) SeasonLanguages() []lang.Language {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.langs.Loaded(ClassSeasons)
}

func (t *TournamentInfoCI) ExhibitionGames(ctx context.Context) (*bool, error) {
	if err := t.ensureAny(ctx, ClassSummary); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return copyBool(t.exhibitionGames), nil
}

func (t *TournamentInfoCI) Export() Exportable {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r := t.exportLocked()
	r.CategoryID = t.categoryID
	r.CategoryNames = t.categoryNames.Clone()
	r.CategoryCountryCode = t.categoryCountryCode
	r.CurrentSeason = t.currentSeason.clone()
	r.Season = t.season.clone()
	for _, c := range t.competitors {
		c.mu.RLock()
		r.Competitors = append(r.Competitors, *c.exportLocked())
		c.mu.RUnlock()
	}
	for _, g := range t.groups {
		r.Groups = append(r.Groups, *g.clone())
	}
	r.SeasonIDs = cloneURNs(t.seasonIDs)
	r.ExhibitionGames = copyBool(t.exhibitionGames)
	if len(t.scheduleLangs) > 0 {
		r.ScheduleLanguages = t.scheduleLangs.Sorted()
	}
	if len(t.schedule) > 0 {
		r.Schedule = append([]EventRef(nil), t.schedule...)
	}
	return Exportable{Kind: KindTournament, ID: t.id.String(), Event: r}
}

func (t *TournamentInfoCI) importRecord(r *EventRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.importLocked(r)
	t.categoryID = r.CategoryID
	t.categoryNames = r.CategoryNames.Clone()
	t.categoryCountryCode = r.CategoryCountryCode
	t.currentSeason = r.CurrentSeason.clone()
	t.season = r.Season.clone()
	t.competitors = nil
	for i := range r.Competitors {
		c := NewCompetitorCI(r.Competitors[i].ID)
		c.importLocked(&r.Competitors[i])
		t.competitors = append(t.competitors, c)
	}
	t.groups = nil
	for i := range r.Groups {
		t.groups = append(t.groups, r.Groups[i].clone())
	}
	t.seasonIDs = cloneURNs(r.SeasonIDs)
	t.exhibitionGames = copyBool(r.ExhibitionGames)
	for _, l := range r.ScheduleLanguages {
		t.scheduleLangs.Add(l)
	}
	if len(r.Schedule) > 0 {
		t.schedule = append([]EventRef(nil), r.Schedule...)
	}
}
