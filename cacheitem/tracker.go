package cacheitem

import (
	"github.com/goliatone/go-sportdata-cache/lang"
)

// LanguageClass is the payload class a language was loaded for.
type LanguageClass int

const (
	ClassSummary LanguageClass = iota
	ClassFixture
	ClassProfile
	ClassSeasons
	ClassTimeline
)

// LanguageTracker records which languages were merged per payload class.
// A language is added only after a successful merge and is never removed.
// Not safe for concurrent use, the owning entry's lock guards it.
type LanguageTracker struct {
	summary  lang.Set
	fixture  lang.Set
	profile  lang.Set
	seasons  lang.Set
	timeline lang.Set
}

func newLanguageTracker() LanguageTracker {
	return LanguageTracker{
		summary:  lang.NewSet(),
		fixture:  lang.NewSet(),
		profile:  lang.NewSet(),
		seasons:  lang.NewSet(),
		timeline: lang.NewSet(),
	}
}

func (t *LanguageTracker) set(c LanguageClass) lang.Set {
	switch c {
	case ClassFixture:
		return t.fixture
	case ClassProfile:
		return t.profile
	case ClassSeasons:
		return t.seasons
	case ClassTimeline:
		return t.timeline
	default:
		return t.summary
	}
}

// Mark records l as loaded for class c.
func (t *LanguageTracker) Mark(c LanguageClass, l lang.Language) {
	t.set(c).Add(l)
}

// Has reports whether l is loaded for class c.
func (t *LanguageTracker) Has(c LanguageClass, l lang.Language) bool {
	return t.set(c).Has(l)
}

// Missing returns the languages in wanted not loaded for class c.
func (t *LanguageTracker) Missing(c LanguageClass, wanted []lang.Language) []lang.Language {
	return t.set(c).Missing(wanted)
}

// Loaded returns the sorted languages of class c, nil when none.
func (t *LanguageTracker) Loaded(c LanguageClass) []lang.Language {
	s := t.set(c)
	if len(s) == 0 {
		return nil
	}
	return s.Sorted()
}

func (t *LanguageTracker) restore(c LanguageClass, langs []lang.Language) {
	for _, l := range langs {
		t.Mark(c, l)
	}
}
