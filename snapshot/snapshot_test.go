package snapshot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/cacheitem"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/status"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// memoryRepository keeps rows in a map. DeleteWhere cannot evaluate bun
// criteria, so it drops every row older than the latest upsert, which is
// what Store asks for.
type memoryRepository struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*Record
	latest  time.Time
	calls   []string
	listErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{rows: make(map[uuid.UUID]*Record)}
}

func (r *memoryRepository) record(call string) {
	r.calls = append(r.calls, call)
}

func (r *memoryRepository) List(_ context.Context, _ ...repository.SelectCriteria) ([]*Record, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("List")
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	out := make([]*Record, 0, len(r.rows))
	for _, row := range r.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *memoryRepository) UpsertMany(_ context.Context, records []*Record, _ ...repository.UpdateCriteria) ([]*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("UpsertMany")
	for _, rec := range records {
		cp := *rec
		r.rows[rec.ID] = &cp
		if rec.SavedAt.After(r.latest) {
			r.latest = rec.SavedAt
		}
	}
	return records, nil
}

func (r *memoryRepository) DeleteWhere(_ context.Context, _ ...repository.DeleteCriteria) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("DeleteWhere")
	for id, row := range r.rows {
		if row.SavedAt.Before(r.latest) {
			delete(r.rows, id)
		}
	}
	return nil
}

func (r *memoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeSource struct {
	mu        sync.Mutex
	records   []cacheitem.Exportable
	exportErr error
	imported  []cacheitem.Exportable
}

func (f *fakeSource) ExportAll(context.Context) ([]cacheitem.Exportable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]cacheitem.Exportable(nil), f.records...), f.exportErr
}

func (f *fakeSource) ImportAll(_ context.Context, records []cacheitem.Exportable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imported = append(f.imported, records...)
	return nil
}

func variantRecord(id string) cacheitem.Exportable {
	return cacheitem.Exportable{Kind: cacheitem.KindVariant, ID: id, Variant: &cacheitem.VariantRecord{}}
}

func TestRecordID_IsStable(t *testing.T) {
	a := RecordID(cacheitem.KindStatus, "sr:match:1")
	if a != RecordID(cacheitem.KindStatus, "sr:match:1") {
		t.Fatal("expected the same id for the same entry")
	}
	if a == RecordID(cacheitem.KindVariant, "sr:match:1") {
		t.Fatal("kind must be part of the id")
	}
}

func TestStore_SavePrunesStaleRows(t *testing.T) {
	repo := newMemoryRepository()
	src := &fakeSource{records: []cacheitem.Exportable{variantRecord("a"), variantRecord("b")}}
	s := New(repo, src, zerolog.Nop())
	clock := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	n, err := s.Save(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("Save() = %d, %v", n, err)
	}

	src.records = []cacheitem.Exportable{variantRecord("a")}
	clock = clock.Add(time.Minute)
	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if got := repo.Len(); got != 1 {
		t.Fatalf("expected stale row pruned, %d rows left", got)
	}
}

func TestStore_SaveKeepsRowsOnPartialExport(t *testing.T) {
	repo := newMemoryRepository()
	src := &fakeSource{records: []cacheitem.Exportable{variantRecord("a")}, exportErr: errors.New("store failed")}
	s := New(repo, src, zerolog.Nop())

	n, err := s.Save(context.Background())
	if err == nil || n != 1 {
		t.Fatalf("Save() = %d, %v", n, err)
	}
	for _, call := range repo.calls {
		if call == "DeleteWhere" {
			t.Fatal("a partial export must not prune rows")
		}
	}
}

func TestStore_RestoreSkipsUndecodableRows(t *testing.T) {
	repo := newMemoryRepository()
	src := &fakeSource{records: []cacheitem.Exportable{variantRecord("a")}}
	s := New(repo, src, zerolog.Nop())
	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	repo.rows[uuid.New()] = &Record{Kind: "variant", Body: []byte("{not json")}

	n, err := s.Restore(context.Background())
	if n != 1 || !errors.Is(err, ErrDecode) {
		t.Fatalf("Restore() = %d, %v", n, err)
	}
	if len(src.imported) != 1 || src.imported[0].ID != "a" {
		t.Fatalf("unexpected import %+v", src.imported)
	}

	repo.listErr = errors.New("db down")
	if _, err := s.Restore(context.Background()); err == nil {
		t.Fatal("expected list error")
	}
}

func TestStore_RoundTripThroughManager(t *testing.T) {
	newManager := func() (*cache.Manager, *status.Cache) {
		m := cache.NewManager(zerolog.Nop(), nil, cache.Catch)
		st, err := status.New(cache.DefaultConfig(), nil, zerolog.Nop(), nil)
		if err != nil {
			t.Fatalf("status.New() error = %v", err)
		}
		if err := m.RegisterStore(status.StoreName, st); err != nil {
			t.Fatalf("RegisterStore() error = %v", err)
		}
		return m, st
	}

	id := urn.MustParse("sr:match:9")
	srcManager, srcStatus := newManager()
	if err := srcStatus.AddLiveStatus(id, &dto.SportEventStatus{EventID: id, Status: dto.EventStatusLive}); err != nil {
		t.Fatalf("AddLiveStatus() error = %v", err)
	}

	repo := newMemoryRepository()
	if _, err := New(repo, srcManager, zerolog.Nop()).Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	dstManager, dstStatus := newManager()
	n, err := New(repo, dstManager, zerolog.Nop()).Restore(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("Restore() = %d, %v", n, err)
	}
	s, ok := dstStatus.Lookup(id)
	if !ok || s.Status() != dto.EventStatusLive {
		t.Fatal("expected restored live status")
	}
}

func TestService_SavesOnShutdown(t *testing.T) {
	repo := newMemoryRepository()
	src := &fakeSource{records: []cacheitem.Exportable{variantRecord("a")}}
	svc := NewService(New(repo, src, zerolog.Nop()), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not stop")
	}
	if repo.Len() != 1 {
		t.Fatal("expected a final save on shutdown")
	}
	if svc.String() != "snapshot" {
		t.Fatalf("String() = %q", svc.String())
	}
}
