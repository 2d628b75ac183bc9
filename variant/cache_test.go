package variant

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
	"github.com/goliatone/go-sportdata-cache/pkg/testsupport"
	"github.com/goliatone/go-sportdata-cache/urn"
)

var (
	en = lang.MustParse("en")
	de = lang.MustParse("de")
)

type harness struct {
	source *testsupport.FakeSource
	cache  *Cache
}

func newHarness(t *testing.T, strategy cache.ExceptionStrategy) *harness {
	t.Helper()
	cfg := cache.DefaultConfig()
	cfg.Languages = []lang.Language{en, de}
	cfg.ExceptionStrategy = strategy

	src := testsupport.NewFakeSource()
	manager := cache.NewManager(zerolog.Nop(), nil, strategy)
	router := dataaccess.NewRouter(src, manager, zerolog.Nop(), nil)
	c, err := New(cfg, router, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := manager.RegisterStore(StoreName, c); err != nil {
		t.Fatalf("RegisterStore() error = %v", err)
	}
	return &harness{source: src, cache: c}
}

func list(outcomes ...string) *dto.VariantDescriptionList {
	d := dto.VariantDescription{ID: "sr:exact_goals:5+", Mappings: []dto.VariantMapping{{MarketID: 21, ProductID: 1}}}
	for i := 0; i+1 < len(outcomes); i += 2 {
		d.Outcomes = append(d.Outcomes, dto.Outcome{ID: outcomes[i], Name: outcomes[i+1]})
	}
	return &dto.VariantDescriptionList{Variants: []dto.VariantDescription{d}}
}

func TestNew_RequiresFacade(t *testing.T) {
	_, err := New(cache.DefaultConfig(), nil, zerolog.Nop(), nil)
	var cfgErr *cache.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestCache_GetVariant_LoadsEveryLanguage(t *testing.T) {
	h := newHarness(t, cache.Catch)
	h.source.AddVariants(en, list("1", "0 goals", "2", "1+ goals"))
	h.source.AddVariants(de, list("1", "0 Tore", "2", "1+ Tore"))

	v, err := h.cache.GetVariant(context.Background(), "sr:exact_goals:5+", nil)
	if err != nil {
		t.Fatalf("GetVariant() error = %v", err)
	}
	if got := v.OutcomeNames(de)["2"]; got != "1+ Tore" {
		t.Fatalf("de outcome = %q", got)
	}
	if got := v.OutcomeNames(en)["1"]; got != "0 goals" {
		t.Fatalf("en outcome = %q", got)
	}
	if m := v.Mappings(); len(m) != 1 {
		t.Fatalf("expected mappings deduplicated, got %d", len(m))
	}

	if _, err := h.cache.GetVariant(context.Background(), "sr:exact_goals:5+", nil); err != nil {
		t.Fatalf("second GetVariant() error = %v", err)
	}
	if got := h.source.Calls(dataaccess.OpVariants); got != 2 {
		t.Fatalf("expected one list fetch per language, got %d", got)
	}
}

func TestCache_GetVariant_SharesListFetch(t *testing.T) {
	h := newHarness(t, cache.Catch)
	h.source.AddVariants(en, list("1", "0 goals"))
	h.source.SetDelay(20 * time.Millisecond)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.cache.GetVariant(context.Background(), "sr:exact_goals:5+", []lang.Language{en})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("GetVariant() error = %v", err)
		}
	}
	if got := h.source.Calls(dataaccess.OpVariants); got != 1 {
		t.Fatalf("expected a single shared fetch, got %d", got)
	}
}

func TestCache_GetVariant_UnknownVariant(t *testing.T) {
	h := newHarness(t, cache.Catch)
	h.source.AddVariants(en, list("1", "0 goals"))

	for range 3 {
		_, err := h.cache.GetVariant(context.Background(), "sr:unknown", []lang.Language{en})
		if !errors.Is(err, ErrUnknownVariant) || !errors.Is(err, cache.ErrCacheItemNotFound) {
			t.Fatalf("expected unknown variant, got %v", err)
		}
	}
	if got := h.source.Calls(dataaccess.OpVariants); got != 1 {
		t.Fatalf("a fetched list must not be refetched for absent variants, got %d", got)
	}

	h.cache.Delete("sr:unknown")
	_, _ = h.cache.GetVariant(context.Background(), "sr:unknown", []lang.Language{en})
	if got := h.source.Calls(dataaccess.OpVariants); got != 2 {
		t.Fatalf("expected refetch after Delete, got %d", got)
	}
}

func TestCache_GetVariant_FetchFailure(t *testing.T) {
	tests := []struct {
		name     string
		strategy cache.ExceptionStrategy
		cached   bool
		wantErr  error
	}{
		{"throw", cache.Throw, true, cache.ErrUpstreamFetch},
		{"catch serves cached", cache.Catch, true, nil},
		{"catch with nothing cached", cache.Catch, false, cache.ErrCacheItemNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.strategy)
			if tt.cached {
				h.source.AddVariants(en, list("1", "0 goals"))
				if _, err := h.cache.GetVariant(context.Background(), "sr:exact_goals:5+", []lang.Language{en}); err != nil {
					t.Fatalf("warm GetVariant() error = %v", err)
				}
			}
			h.source.Fail(dataaccess.OpVariants, errors.New("down"))

			v, err := h.cache.GetVariant(context.Background(), "sr:exact_goals:5+", []lang.Language{en, de})
			if tt.wantErr == nil {
				if err != nil || v == nil {
					t.Fatalf("GetVariant() = %v, %v", v, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCache_RejectsOtherPayloads(t *testing.T) {
	h := newHarness(t, cache.Catch)
	saved, err := h.cache.CacheAddDto(context.Background(), urn.MustParse("sr:match:1"), &dto.Match{}, en, dto.CategoryVariantDescriptionList, nil)
	if saved || err != nil {
		t.Fatalf("CacheAddDto() = %v, %v", saved, err)
	}
}

func TestCache_ExportImportAndHealth(t *testing.T) {
	src := newHarness(t, cache.Catch)
	src.source.AddVariants(en, list("1", "0 goals"))
	if _, err := src.cache.GetVariant(context.Background(), "sr:exact_goals:5+", []lang.Language{en}); err != nil {
		t.Fatalf("GetVariant() error = %v", err)
	}
	records, err := src.cache.ExportAll(context.Background())
	if err != nil || len(records) != 1 {
		t.Fatalf("ExportAll() = %d records, %v", len(records), err)
	}

	dst := newHarness(t, cache.Catch)
	records = append(records, cacheitem.Exportable{Kind: cacheitem.KindStatus, ID: "sr:match:1"})
	if err := dst.cache.ImportAll(context.Background(), records); err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}
	v, ok := dst.cache.Lookup("sr:exact_goals:5+")
	if !ok || v.OutcomeNames(en)["1"] != "0 goals" {
		t.Fatal("expected imported variant")
	}
	if h := dst.cache.Health(); h.ItemCount != 1 || h.ByType["variant"] != 1 {
		t.Fatalf("unexpected health %+v", h)
	}

	err = dst.cache.ImportAll(context.Background(), []cacheitem.Exportable{{Kind: cacheitem.KindVariant}})
	if !errors.Is(err, cacheitem.ErrInvalidRecord) {
		t.Fatalf("expected invalid record, got %v", err)
	}
}
