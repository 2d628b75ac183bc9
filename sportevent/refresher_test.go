package sportevent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/cacheitem"
	"github.com/goliatone/go-sportdata-cache/dataaccess"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

func newTestRefresher(h *harness, days int) *Refresher {
	cfg := cache.DefaultConfig()
	cfg.Languages = []lang.Language{en, de}
	cfg.RefreshDays = days
	r := NewRefresher(h.cache, cfg, zerolog.Nop())
	r.now = func() time.Time { return *at("2024-03-01T15:30:00Z") }
	return r
}

func TestRefresher_RefreshOnce_SkipsMemoizedDates(t *testing.T) {
	h := newHarness(t, nil)
	h.source.AddDateSchedule(at("2024-03-01T00:00:00Z"), en, &dto.Schedule{Events: []dto.Payload{match("sr:match:71", "today")}})
	r := newTestRefresher(h, 3)

	if failed := r.RefreshOnce(context.Background()); failed != 0 {
		t.Fatalf("RefreshOnce() failed = %d", failed)
	}
	if got := h.source.Calls(dataaccess.OpDateSchedule); got != 6 {
		t.Fatalf("expected 3 days x 2 languages fetched, got %d", got)
	}
	if !h.cache.CacheHasItem(urn.MustParse("sr:match:71"), cache.ItemTypeSportEvent) {
		t.Fatal("expected scheduled event cached")
	}
	if !h.cache.ScheduleFetched(*at("2024-03-03T00:00:00Z"), de) {
		t.Fatal("expected last day memoized")
	}

	r.RefreshOnce(context.Background())
	if got := h.source.Calls(dataaccess.OpDateSchedule); got != 6 {
		t.Fatalf("expected memoized dates skipped, got %d fetches", got)
	}
	if r.Runs() != 2 {
		t.Fatalf("Runs() = %d, want 2", r.Runs())
	}

	ids, err := h.cache.GetEventIDsForDate(context.Background(), at("2024-03-01T00:00:00Z"), en)
	if err != nil || len(ids) != 1 {
		t.Fatalf("GetEventIDsForDate() = %v, %v", ids, err)
	}
	if got := h.source.Calls(dataaccess.OpDateSchedule); got != 6 {
		t.Fatalf("expected refreshed date served from memo, got %d fetches", got)
	}
}

func TestRefresher_RefreshOnce_CountsFailures(t *testing.T) {
	h := newHarness(t, nil)
	h.source.Fail(dataaccess.OpDateSchedule, errors.New("timeout"))
	r := newTestRefresher(h, 2)

	if failed := r.RefreshOnce(context.Background()); failed != 4 {
		t.Fatalf("RefreshOnce() failed = %d, want 4", failed)
	}
	if h.cache.ScheduleFetched(*at("2024-03-01T00:00:00Z"), en) {
		t.Fatal("failed dates must not be memoized")
	}

	h.source.Fail(dataaccess.OpDateSchedule, nil)
	if failed := r.RefreshOnce(context.Background()); failed != 0 {
		t.Fatalf("RefreshOnce() after recovery failed = %d", failed)
	}
}

func TestRefresher_RefreshOnce_EvictsPastEvents(t *testing.T) {
	h := newHarness(t, nil)
	r := newTestRefresher(h, 1)
	r.evictAfter = 6 * time.Hour

	scheduled := func(id, start, end string) *dto.Match {
		m := match(id, id)
		m.Scheduled = at(start)
		if end != "" {
			m.ScheduledEnd = at(end)
		}
		return m
	}
	h.save(t, scheduled("sr:match:81", "2024-02-29T18:00:00Z", "2024-02-29T20:00:00Z"), en, dto.CategoryMatchSummary)
	h.save(t, scheduled("sr:match:82", "2024-03-01T08:00:00Z", "2024-03-01T10:00:00Z"), en, dto.CategoryMatchSummary)
	h.save(t, scheduled("sr:match:83", "2024-03-01T09:00:00Z", ""), en, dto.CategoryMatchSummary)
	h.save(t, match("sr:match:84", "unscheduled"), en, dto.CategoryMatchSummary)

	r.RefreshOnce(context.Background())

	tests := []struct {
		id   string
		kept bool
	}{
		{"sr:match:81", false},
		{"sr:match:82", true},
		{"sr:match:83", false},
		{"sr:match:84", true},
	}
	for _, tt := range tests {
		if got := h.cache.CacheHasItem(urn.MustParse(tt.id), cache.ItemTypeSportEvent); got != tt.kept {
			t.Errorf("%s cached = %v, want %v", tt.id, got, tt.kept)
		}
	}
}

func TestRefresher_SharesFetchWithConsumers(t *testing.T) {
	h := newHarness(t, nil)
	h.source.SetDelay(20 * time.Millisecond)
	day := at("2024-03-01T00:00:00Z")
	h.source.AddDateSchedule(day, en, &dto.Schedule{Events: []dto.Payload{match("sr:match:91", "today")}})
	r := newTestRefresher(h, 1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.RefreshOnce(context.Background())
	}()
	go func() {
		defer wg.Done()
		ids, err := h.cache.GetEventIDsForDate(context.Background(), day, en)
		if err != nil || len(ids) != 1 {
			t.Errorf("GetEventIDsForDate() = %v, %v", ids, err)
		}
	}()
	wg.Wait()

	if got := h.source.Calls(dataaccess.OpDateSchedule); got != 2 {
		t.Fatalf("expected one fetch per language, got %d", got)
	}
}

func TestRefresher_ServeStopsOnCancel(t *testing.T) {
	h := newHarness(t, nil)
	r := newTestRefresher(h, 1)
	r.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for r.Runs() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if r.Runs() == 0 {
		t.Fatal("expected an initial refresh pass")
	}
	if r.String() != "schedule-refresher" {
		t.Fatalf("String() = %q", r.String())
	}
}

func TestCache_ExportImportRoundTrip(t *testing.T) {
	src := newHarness(t, nil)
	m := loadMatchFixture(t)
	src.save(t, m, en, dto.CategoryMatchSummary)
	src.save(t, &dto.TournamentInfo{ID: urn.MustParse("sr:tournament:17"), Name: "Premier League"}, en, dto.CategoryTournamentInfo)

	records, err := src.cache.ExportAll(context.Background())
	if err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	dst := newHarness(t, nil)
	foreign := cacheitem.Exportable{Kind: cacheitem.KindPlayer, ID: "sr:player:1", Player: &cacheitem.PlayerRecord{}}
	if err := dst.cache.ImportAll(context.Background(), append(records, foreign)); err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}

	e, ok := dst.cache.Lookup(m.ID)
	if !ok {
		t.Fatal("expected imported match")
	}
	names, err := e.Names(context.Background(), []lang.Language{en})
	if err != nil || names[en] != m.Name {
		t.Fatalf("Names() = %v, %v", names, err)
	}
	start, end := e.ScheduledTimes()
	if start == nil || end == nil || !end.Equal(*m.ScheduledEnd) {
		t.Fatalf("unexpected schedule %v %v", start, end)
	}
	if dst.cache.Health().ItemCount != 2 {
		t.Fatalf("expected only owned kinds imported, got %d", dst.cache.Health().ItemCount)
	}
	if got := dst.source.TotalCalls(); got != 0 {
		t.Fatalf("imported entries must not refetch, got %d calls", got)
	}

	bad := cacheitem.Exportable{Kind: cacheitem.KindMatch, ID: "not-an-id", Event: &cacheitem.EventRecord{}}
	if err := dst.cache.ImportAll(context.Background(), []cacheitem.Exportable{bad}); !errors.Is(err, cacheitem.ErrInvalidRecord) {
		t.Fatalf("expected invalid record error, got %v", err)
	}
}
