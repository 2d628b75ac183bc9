package cacheitem

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// sportEventCI is the header shared by every sport event entry. self points
// at the outer entry so loads can name it as the requester.
type sportEventCI struct {
	mu     sync.RWMutex
	id     urn.URN
	loader Loader
	self   Entry

	sportID      urn.URN
	names        Translations
	scheduled    *time.Time
	scheduledEnd *time.Time
	startTimeTBD *bool
	replacedBy   urn.URN
	liveOdds     string
	langs        LanguageTracker
}

func (e *sportEventCI) init(id urn.URN, loader Loader, self Entry) {
	e.id = id
	e.loader = loader
	e.self = self
	e.langs = newLanguageTracker()
}

func (e *sportEventCI) ID() urn.URN { return e.id }

func (e *sportEventCI) ScheduledTimes() (start, end *time.Time) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return copyTime(e.scheduled), copyTime(e.scheduledEnd)
}

func (e *sportEventCI) SummaryLanguages() []lang.Language {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.langs.Loaded(ClassSummary)
}

func (e *sportEventCI) FixtureLanguages() []lang.Language {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.langs.Loaded(ClassFixture)
}

// ensure loads the languages of class c that are missing.
func (e *sportEventCI) ensure(ctx context.Context, c LanguageClass, langs []lang.Language) error {
	if e.loader == nil || len(langs) == 0 {
		return nil
	}
	e.mu.RLock()
	missing := e.langs.Missing(c, langs)
	e.mu.RUnlock()
	if len(missing) == 0 {
		return nil
	}
	switch c {
	case ClassFixture:
		return e.loader.LoadFixture(ctx, e.id, missing, e.self)
	case ClassSeasons:
		return e.loader.LoadSeasons(ctx, e.id, missing, e.self)
	case ClassTimeline:
		return e.loader.LoadTimeline(ctx, e.id, missing, e.self)
	default:
		return e.loader.LoadSummary(ctx, e.id, missing, e.self)
	}
}

// ensureAny loads the default languages when nothing of class c is loaded.
func (e *sportEventCI) ensureAny(ctx context.Context, c LanguageClass) error {
	if e.loader == nil {
		return nil
	}
	e.mu.RLock()
	loaded := len(e.langs.set(c)) > 0
	e.mu.RUnlock()
	if loaded {
		return nil
	}
	return e.ensure(ctx, c, e.loader.DefaultLanguages())
}

// Names returns the names for langs, loading missing summaries first.
func (e *sportEventCI) Names(ctx context.Context, langs []lang.Language) (map[lang.Language]string, error) {
	if err := e.ensure(ctx, ClassSummary, langs); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.names.Pick(langs), nil
}

// Name returns the name for l. An empty string is returned when the feed
// has no name in l.
func (e *sportEventCI) Name(ctx context.Context, l lang.Language) (string, error) {
	names, err := e.Names(ctx, []lang.Language{l})
	if err != nil {
		return "", err
	}
	return names[l], nil
}

func (e *sportEventCI) SportID(ctx context.Context) (urn.URN, error) {
	if err := e.ensureAny(ctx, ClassSummary); err != nil {
		return urn.URN{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sportID, nil
}

func (e *sportEventCI) Scheduled(ctx context.Context) (*time.Time, error) {
	if err := e.ensureAny(ctx, ClassSummary); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return copyTime(e.scheduled), nil
}

func (e *sportEventCI) ScheduledEnd(ctx context.Context) (*time.Time, error) {
	if err := e.ensureAny(ctx, ClassSummary); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return copyTime(e.scheduledEnd), nil
}

func (e *sportEventCI) StartTimeTBD(ctx context.Context) (*bool, error) {
	if err := e.ensureAny(ctx, ClassSummary); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return copyBool(e.startTimeTBD), nil
}

func (e *sportEventCI) ReplacedBy(ctx context.Context) (urn.URN, error) {
	if err := e.ensureAny(ctx, ClassSummary); err != nil {
		return urn.URN{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.replacedBy, nil
}

func (e *sportEventCI) mergeHeaderLocked(h *dto.SportEvent, l lang.Language) {
	e.names.Set(l, h.Name)
	if !h.SportID.IsZero() {
		e.sportID = h.SportID
	}
	if h.Scheduled != nil {
		e.scheduled = copyTime(h.Scheduled)
	}
	if h.ScheduledEnd != nil {
		e.scheduledEnd = copyTime(h.ScheduledEnd)
	}
	if h.StartTimeTBD != nil {
		e.startTimeTBD = copyBool(h.StartTimeTBD)
	}
	if !h.ReplacedBy.IsZero() {
		e.replacedBy = h.ReplacedBy
	}
	if h.LiveOdds != "" {
		e.liveOdds = h.LiveOdds
	}
}

func (e *sportEventCI) exportLocked() *EventRecord {
	return &EventRecord{
		SportID:           e.sportID,
		Names:             e.names.Clone(),
		Scheduled:         copyTime(e.scheduled),
		ScheduledEnd:      copyTime(e.scheduledEnd),
		StartTimeTBD:      copyBool(e.startTimeTBD),
		ReplacedBy:        e.replacedBy,
		LiveOdds:          e.liveOdds,
		SummaryLanguages:  e.langs.Loaded(ClassSummary),
		FixtureLanguages:  e.langs.Loaded(ClassFixture),
		SeasonLanguages:   e.langs.Loaded(ClassSeasons),
		TimelineLanguages: e.langs.Loaded(ClassTimeline),
	}
}

func (e *sportEventCI) importLocked(r *EventRecord) {
	e.sportID = r.SportID
	e.names = r.Names.Clone()
	e.scheduled = copyTime(r.Scheduled)
	e.scheduledEnd = copyTime(r.ScheduledEnd)
	e.startTimeTBD = copyBool(r.StartTimeTBD)
	e.replacedBy = r.ReplacedBy
	e.liveOdds = r.LiveOdds
	e.langs.restore(ClassSummary, r.SummaryLanguages)
	e.langs.restore(ClassFixture, r.FixtureLanguages)
	e.langs.restore(ClassSeasons, r.SeasonLanguages)
	e.langs.restore(ClassTimeline, r.TimelineLanguages)
}
