// Package snapshot persists exported cache records through a
// go-repository-bun repository so a restarted process starts warm.
//
// Each exported entry becomes one Record whose primary key is derived from
// the entry kind and identifier, so saving the same entry twice updates the
// row in place. Rows not touched by the latest save are removed.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sportdata-cache/cacheitem"
)

// namespace seeds the name based record ids.
var namespace = uuid.MustParse("6f1c2b1e-8a0d-4c57-9d1e-3f3a5e0b7c21")

// ErrDecode is wrapped when a stored body cannot be decoded.
var ErrDecode = errors.New("snapshot: decode record")

// Record is one persisted cache entry.
type Record struct {
	bun.BaseModel `bun:"table:sportcache_snapshots,alias:ss"`

	ID      uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Kind    string    `bun:"kind,notnull" json:"kind"`
	EntryID string    `bun:"entry_id,notnull" json:"entry_id"`
	Body    []byte    `bun:"body,notnull" json:"body"`
	SavedAt time.Time `bun:"saved_at,notnull" json:"saved_at"`
}

// RecordID returns the stable id of the entry kind/id.
func RecordID(kind cacheitem.Kind, id string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(string(kind)+"|"+id))
}

// Repository is the part of repository.Repository[*Record] the store uses.
type Repository interface {
	List(ctx context.Context, criteria ...repository.SelectCriteria) ([]*Record, int, error)
	UpsertMany(ctx context.Context, records []*Record, criteria ...repository.UpdateCriteria) ([]*Record, error)
	DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error
}

// Source exports and imports cache records. cache.Manager implements it.
type Source interface {
	ExportAll(ctx context.Context) ([]cacheitem.Exportable, error)
	ImportAll(ctx context.Context, records []cacheitem.Exportable) error
}

type Store struct {
	repo   Repository
	source Source
	logger zerolog.Logger
	now    func() time.Time
}

func New(repo Repository, source Source, logger zerolog.Logger) *Store {
	return &Store{
		repo:   repo,
		source: source,
		logger: logger.With().Str("component", "snapshot").Logger(),
		now:    time.Now,
	}
}

// Save writes every exported record and drops rows older than this save.
// It returns the number of records written. A partial export is still
// written and its error returned.
func (s *Store) Save(ctx context.Context) (int, error) {
	exported, exportErr := s.source.ExportAll(ctx)

	savedAt := s.now().UTC()
	records := make([]*Record, 0, len(exported))
	for _, e := range exported {
		body, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("encode %s %q: %w", e.Kind, e.ID, err)
		}
		records = append(records, &Record{
			ID:      RecordID(e.Kind, e.ID),
			Kind:    string(e.Kind),
			EntryID: e.ID,
			Body:    body,
			SavedAt: savedAt,
		})
	}

	if len(records) > 0 {
		if _, err := s.repo.UpsertMany(ctx, records); err != nil {
			return 0, fmt.Errorf("upsert snapshot: %w", err)
		}
	}
	if exportErr == nil {
		stale := func(q *bun.DeleteQuery) *bun.DeleteQuery {
			return q.Where("saved_at < ?", savedAt)
		}
		if err := s.repo.DeleteWhere(ctx, stale); err != nil {
			return len(records), fmt.Errorf("prune snapshot: %w", err)
		}
	}

	s.logger.Info().Int("records", len(records)).Msg("snapshot saved")
	return len(records), exportErr
}

// Restore reads every stored record and imports it. Undecodable rows are
// skipped and reported in the returned error.
func (s *Store) Restore(ctx context.Context) (int, error) {
	rows, _, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list snapshot: %w", err)
	}

	var errs []error
	records := make([]cacheitem.Exportable, 0, len(rows))
	for _, row := range rows {
		var e cacheitem.Exportable
		if err := json.Unmarshal(row.Body, &e); err != nil {
			errs = append(errs, fmt.Errorf("%w %s: %w", ErrDecode, row.ID, err))
			continue
		}
		records = append(records, e)
	}
	if len(records) > 0 {
		if err := s.source.ImportAll(ctx, records); err != nil {
			errs = append(errs, err)
		}
	}

	s.logger.Info().Int("records", len(records)).Int("skipped", len(rows)-len(records)).Msg("snapshot restored")
	return len(records), errors.Join(errs...)
}
