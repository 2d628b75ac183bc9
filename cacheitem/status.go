package cacheitem

import (
	"sync"
	"time"

	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

var nowFunc = time.Now

// Provenance records where a status came from.
type Provenance int

const (
	ProvenanceUnknown Provenance = iota
	ProvenanceSummary
	ProvenanceLive
	ProvenanceSynthetic
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceSummary:
		return "summary"
	case ProvenanceLive:
		return "live"
	case ProvenanceSynthetic:
		return "synthetic"
	default:
		return "unknown"
	}
}

// StatusCI is the status of a sport event. It has no language dimension.
type StatusCI struct {
	mu      sync.RWMutex
	eventID urn.URN

	status          dto.EventStatus
	matchStatusCode *int
	homeScore       *float64
	awayScore       *float64
	periodScores    []dto.PeriodScore
	winnerID        urn.URN
	properties      map[string]string
	provenance      Provenance
	updatedAt       time.Time
}

func NewStatusCI(eventID urn.URN) *StatusCI {
	return &StatusCI{eventID: eventID}
}

// NewSyntheticStatus is the placeholder used when the feed has no status.
func NewSyntheticStatus(eventID urn.URN) *StatusCI {
	return &StatusCI{
		eventID:    eventID,
		status:     dto.EventStatusNotStarted,
		provenance: ProvenanceSynthetic,
		updatedAt:  nowFunc(),
	}
}

func (s *StatusCI) ID() urn.URN { return s.eventID }
func (s *StatusCI) Kind() Kind  { return KindStatus }

// Merge applies a summary derived status. Language is ignored.
func (s *StatusCI) Merge(p dto.Payload, _ lang.Language) error {
	in, ok := p.(*dto.SportEventStatus)
	if !ok {
		return unsupported(p, s.Kind())
	}
	s.Apply(in, ProvenanceSummary, nowFunc())
	return nil
}

// Apply overwrites the status with in. Period scores are merged by type and
// number.
func (s *StatusCI) Apply(in *dto.SportEventStatus, src Provenance, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = in.Status
	if in.MatchStatusCode != nil {
		s.matchStatusCode = copyInt(in.MatchStatusCode)
	}
	if in.HomeScore != nil {
		s.homeScore = copyFloat(in.HomeScore)
	}
	if in.AwayScore != nil {
		s.awayScore = copyFloat(in.AwayScore)
	}
	for _, ps := range in.PeriodScores {
		replaced := false
		for i, have := range s.periodScores {
			if have.Type == ps.Type && have.Number == ps.Number {
				s.periodScores[i] = ps
				replaced = true
				break
			}
		}
		if !replaced {
			s.periodScores = append(s.periodScores, ps)
		}
	}
	if !in.WinnerID.IsZero() {
		s.winnerID = in.WinnerID
	}
	mergeStrings(&s.properties, in.Properties)
	s.provenance = src
	s.updatedAt = at
}

func (s *StatusCI) Status() dto.EventStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Source returns the provenance and time of the last update.
func (s *StatusCI) Source() (Provenance, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provenance, s.updatedAt
}

// Snapshot returns a deep copy as a payload value.
func (s *StatusCI) Snapshot() dto.SportEventStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *StatusCI) snapshotLocked() dto.SportEventStatus {
	var scores []dto.PeriodScore
	if len(s.periodScores) > 0 {
		scores = append(scores, s.periodScores...)
	}
	return dto.SportEventStatus{
		EventID:         s.eventID,
		Status:          s.status,
		MatchStatusCode: copyInt(s.matchStatusCode),
		HomeScore:       copyFloat(s.homeScore),
		AwayScore:       copyFloat(s.awayScore),
		PeriodScores:    scores,
		WinnerID:        s.winnerID,
		Properties:      cloneStrings(s.properties),
	}
}

func (s *StatusCI) Export() Exportable {
	return Exportable{Kind: KindStatus, ID: s.eventID.String(), Status: s.record()}
}

func (s *StatusCI) record() *StatusRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &StatusRecord{
		Status:     s.snapshotLocked(),
		Provenance: s.provenance,
		UpdatedAt:  s.updatedAt,
	}
}

func statusFromRecord(id urn.URN, r *StatusRecord) *StatusCI {
	s := NewStatusCI(id)
	snap := r.Status
	s.status = snap.Status
	s.matchStatusCode = copyInt(snap.MatchStatusCode)
	s.homeScore = copyFloat(snap.HomeScore)
	s.awayScore = copyFloat(snap.AwayScore)
	if len(snap.PeriodScores) > 0 {
		s.periodScores = append([]dto.PeriodScore(nil), snap.PeriodScores...)
	}
	s.winnerID = snap.WinnerID
	s.properties = cloneStrings(snap.Properties)
	s.provenance = r.Provenance
	s.updatedAt = r.UpdatedAt
	return s
}
