package cacheitem

import (
	"context"
	"time"

	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// MatchCI is a match. Summary and timeline payloads mark summary languages,
// fixture payloads mark fixture languages. Timeline payloads also mark
// timeline languages.
type MatchCI struct {
	CompetitionCI

	season             *SeasonCI
	round              *RoundCI
	startTimeConfirmed *bool
	nextLiveTime       *time.Time
	extraInfo          map[string]string
	referenceIDs       map[string]string
	tvChannels         []dto.TVChannel
	timeline           []dto.TimelineEvent
}

func NewMatchCI(id urn.URN, loader Loader) *MatchCI {
	m := &MatchCI{}
	m.init(id, loader, m)
	return m
}

func (m *MatchCI) Kind() Kind { return KindMatch }

func (m *MatchCI) Merge(p dto.Payload, l lang.Language) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	errs := &fieldErrors{id: m.id}
	switch v := p.(type) {
	case *dto.Match:
		m.mergeMatchLocked(v, l, errs)
		m.langs.Mark(ClassSummary, l)
	case *dto.Fixture:
		m.mergeFixtureLocked(v, l, errs)
		m.langs.Mark(ClassFixture, l)
	case *dto.MatchTimeline:
		if v.Event != nil {
			m.mergeMatchLocked(v.Event, l, errs)
		}
		m.mergeStatusLocked(v.Status, errs)
		m.mergeTimelineLocked(v.Events)
		m.langs.Mark(ClassSummary, l)
		m.langs.Mark(ClassTimeline, l)
	case *dto.SportEventStatus:
		m.mergeStatusLocked(v, errs)
	case *dto.BookingStatus:
		m.mergeBookingLocked(&v.Status)
	default:
		return unsupported(p, m.Kind())
	}
	return errs.err()
}

func (m *MatchCI) mergeMatchLocked(v *dto.Match, l lang.Language, errs *fieldErrors) {
	m.mergeHeaderLocked(&v.SportEvent, l)
	m.mergeCompetitionLocked(l, v.Tournament, v.Venue, v.Conditions, v.Competitors, errs)
	m.season = mergeSeason(m.season, v.Season, l)
	if v.Round != nil {
		if m.round == nil {
			m.round = &RoundCI{}
		}
		m.round.merge(v.Round, l)
	}
	m.mergeStatusLocked(v.Status, errs)
	m.mergeBookingLocked(v.BookingStatus)
}

func (m *MatchCI) mergeFixtureLocked(v *dto.Fixture, l lang.Language, errs *fieldErrors) {
	m.mergeHeaderLocked(&v.SportEvent, l)
	m.mergeCompetitionLocked(l, v.Tournament, v.Venue, v.Conditions, v.Competitors, errs)
	m.season = mergeSeason(m.season, v.Season, l)
	if v.Round != nil {
		if m.round == nil {
			m.round = &RoundCI{}
		}
		m.round.merge(v.Round, l)
	}
	if v.StartTimeConfirmed != nil {
		m.startTimeConfirmed = copyBool(v.StartTimeConfirmed)
	}
	if v.NextLiveTime != nil {
		m.nextLiveTime = copyTime(v.NextLiveTime)
	}
	mergeStrings(&m.extraInfo, v.ExtraInfo)
	mergeStrings(&m.referenceIDs, v.ReferenceIDs)
	for _, ch := range v.TVChannels {
		replaced := false
		for i, have := range m.tvChannels {
			if have.Name == ch.Name {
				m.tvChannels[i] = dto.TVChannel{Name: ch.Name, StartTime: copyTime(ch.StartTime)}
				replaced = true
				break
			}
		}
		if !replaced {
			m.tvChannels = append(m.tvChannels, dto.TVChannel{Name: ch.Name, StartTime: copyTime(ch.StartTime)})
		}
	}
}

func (m *MatchCI) mergeTimelineLocked(events []dto.TimelineEvent) {
	for _, ev := range events {
		replaced := false
		for i, have := range m.timeline {
			if have.ID == ev.ID {
				m.timeline[i] = cloneTimelineEvent(ev)
				replaced = true
				break
			}
		}
		if !replaced {
			m.timeline = append(m.timeline, cloneTimelineEvent(ev))
		}
	}
}

func (m *MatchCI) Season(ctx context.Context, langs []lang.Language) (*SeasonCI, error) {
	if err := m.ensure(ctx, ClassSummary, langs); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.season.clone(), nil
}

func (m *MatchCI) Round(ctx context.Context, langs []lang.Language) (*RoundCI, error) {
	if err := m.ensure(ctx, ClassSummary, langs); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.round.clone(), nil
}

// StartTimeConfirmed is only carried by fixtures.
func (m *MatchCI) StartTimeConfirmed(ctx context.Context) (*bool, error) {
	if err := m.ensureAny(ctx, ClassFixture); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyBool(m.startTimeConfirmed), nil
}

func (m *MatchCI) NextLiveTime(ctx context.Context) (*time.Time, error) {
	if err := m.ensureAny(ctx, ClassFixture); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyTime(m.nextLiveTime), nil
}

func (m *MatchCI) ReferenceIDs(ctx context.Context) (map[string]string, error) {
	if err := m.ensureAny(ctx, ClassFixture); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneStrings(m.referenceIDs), nil
}

func (m *MatchCI) TVChannels(ctx context.Context) ([]dto.TVChannel, error) {
	if err := m.ensureAny(ctx, ClassFixture); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneTVChannels(m.tvChannels), nil
}

// Timeline returns the timeline events, fetching the ongoing timeline when
// it was not fetched in l yet.
func (m *MatchCI) Timeline(ctx context.Context, l lang.Language) ([]dto.TimelineEvent, error) {
	if err := m.ensure(ctx, ClassTimeline, []lang.Language{l}); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneTimeline(m.timeline), nil
}

// TimelineLanguages returns the languages a timeline was merged in.
func (m *MatchCI) TimelineLanguages() []lang.Language {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.langs.Loaded(ClassTimeline)
}

func (m *MatchCI) Export() Exportable {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r := m.exportLocked()
	m.exportCompetitionLocked(r)
	r.Season = m.season.clone()
	r.Round = m.round.clone()
	r.StartTimeConfirmed = copyBool(m.startTimeConfirmed)
	r.NextLiveTime = copyTime(m.nextLiveTime)
	r.ExtraInfo = cloneStrings(m.extraInfo)
	r.ReferenceIDs = cloneStrings(m.referenceIDs)
	r.TVChannels = cloneTVChannels(m.tvChannels)
	r.Timeline = cloneTimeline(m.timeline)
	return Exportable{Kind: KindMatch, ID: m.id.String(), Event: r}
}

func (m *MatchCI) importRecord(r *EventRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.importLocked(r)
	m.importCompetitionLocked(r)
	m.season = r.Season.clone()
	m.round = r.Round.clone()
	m.startTimeConfirmed = copyBool(r.StartTimeConfirmed)
	m.nextLiveTime = copyTime(r.NextLiveTime)
	m.extraInfo = cloneStrings(r.ExtraInfo)
	m.referenceIDs = cloneStrings(r.ReferenceIDs)
	m.tvChannels = cloneTVChannels(r.TVChannels)
	m.timeline = cloneTimeline(r.Timeline)
}
