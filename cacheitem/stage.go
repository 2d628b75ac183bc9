package cacheitem

import (
	"context"

	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// StageCI is a stage, race or multi-stage tournament event.
type StageCI struct {
	CompetitionCI

	parentID    urn.URN
	stageType   string
	childStages []urn.URN
	categoryID  urn.URN
}

func NewStageCI(id urn.URN, loader Loader) *StageCI {
	s := &StageCI{}
	s.init(id, loader, s)
	return s
}

func (s *StageCI) Kind() Kind { return KindStage }

func (s *StageCI) Merge(p dto.Payload, l lang.Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := &fieldErrors{id: s.id}
	switch v := p.(type) {
	case *dto.Stage:
		s.mergeHeaderLocked(&v.SportEvent, l)
		s.mergeCompetitionLocked(l, v.Tournament, v.Venue, v.Conditions, v.Competitors, errs)
		if v.Tournament != nil && v.Tournament.Category != nil && !v.Tournament.Category.ID.IsZero() {
			s.categoryID = v.Tournament.Category.ID
		}
		if !v.ParentID.IsZero() {
			s.parentID = v.ParentID
		}
		if v.StageType != "" {
			s.stageType = v.StageType
		}
		for _, child := range v.Stages {
			s.childStages = appendMissing(s.childStages, child.ID)
		}
		s.mergeStatusLocked(v.Status, errs)
		s.langs.Mark(ClassSummary, l)
	case *dto.Fixture:
		s.mergeHeaderLocked(&v.SportEvent, l)
		s.mergeCompetitionLocked(l, v.Tournament, v.Venue, v.Conditions, v.Competitors, errs)
		s.langs.Mark(ClassFixture, l)
	case *dto.SportEventStatus:
		s.mergeStatusLocked(v, errs)
	case *dto.BookingStatus:
		s.mergeBookingLocked(&v.Status)
	default:
		return unsupported(p, s.Kind())
	}
	return errs.err()
}

func (s *StageCI) ParentID(ctx context.Context) (urn.URN, error) {
	if err := s.ensureAny(ctx, ClassSummary); err != nil {
		return urn.URN{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parentID, nil
}

func (s *StageCI) StageType(ctx context.Context) (string, error) {
	if err := s.ensureAny(ctx, ClassSummary); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stageType, nil
}

func (s *StageCI) ChildStageIDs(ctx context.Context) ([]urn.URN, error) {
	if err := s.ensureAny(ctx, ClassSummary); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneURNs(s.childStages), nil
}

func (s *StageCI) Export() Exportable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.exportLocked()
	s.exportCompetitionLocked(r)
	r.ParentID = s.parentID
	r.StageType = s.stageType
	r.ChildStages = cloneURNs(s.childStages)
	r.CategoryID = s.categoryID
	return Exportable{Kind: KindStage, ID: s.id.String(), Event: r}
}

func (s *StageCI) importRecord(r *EventRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.importLocked(r)
	s.importCompetitionLocked(r)
	s.parentID = r.ParentID
	s.stageType = r.StageType
	s.childStages = cloneURNs(r.ChildStages)
	s.categoryID = r.CategoryID
}
