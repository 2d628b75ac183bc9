// Package variant caches market variant descriptions, i.e. the outcome
// names of a variant per language.
//
// Descriptions are only available as a full list per language, so a miss
// fetches the whole list for each missing language. Concurrent misses for
// the same language share one fetch.
package variant

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/cacheitem"
	"github.com/goliatone/go-sportdata-cache/dataaccess"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/internal/cacheinfra"
	"github.com/goliatone/go-sportdata-cache/internal/metrics"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

const StoreName = "variants"

// ErrUnknownVariant is wrapped when a variant is absent from every list
// fetched for the requested languages.
var ErrUnknownVariant = errors.New("unknown variant")

type Cache struct {
	logger    zerolog.Logger
	metrics   *metrics.Collectors
	strategy  cache.ExceptionStrategy
	languages []lang.Language
	facade    dataaccess.Facade

	group   singleflight.Group
	fetched *xsync.MapOf[lang.Language, struct{}]
	entries *cacheinfra.EntryStore[*cacheitem.VariantDescriptionCI]
}

var (
	_ cache.Store          = (*Cache)(nil)
	_ cache.Exporter       = (*Cache)(nil)
	_ cache.HealthReporter = (*Cache)(nil)
)

func New(cfg cache.Config, facade dataaccess.Facade, logger zerolog.Logger, m *metrics.Collectors) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if facade == nil {
		return nil, &cache.ConfigError{Field: "facade", Message: "a data access facade is required"}
	}
	entries, err := cacheinfra.NewEntryStore[*cacheitem.VariantDescriptionCI](cfg.VariantStorage.EntryStoreConfig())
	if err != nil {
		return nil, err
	}
	return &Cache{
		logger:    logger.With().Str("component", "variant_cache").Logger(),
		metrics:   m,
		strategy:  cfg.ExceptionStrategy,
		languages: append([]lang.Language(nil), cfg.Languages...),
		facade:    facade,
		fetched:   xsync.NewMapOf[lang.Language, struct{}](),
		entries:   entries,
	}, nil
}

// Categories implements cache.Store.
func (c *Cache) Categories() []dto.Category {
	return []dto.Category{dto.CategoryVariantDescriptionList}
}

func (c *Cache) Lookup(id string) (*cacheitem.VariantDescriptionCI, bool) {
	return c.entries.Get(id)
}

// missing returns the languages of langs the variant lacks and whose list
// was not fetched yet.
func (c *Cache) missing(id string, langs []lang.Language) []lang.Language {
	want := langs
	if v, ok := c.Lookup(id); ok {
		want = v.MissingLanguages(langs)
	}
	var out []lang.Language
	for _, l := range want {
		if _, done := c.fetched.Load(l); !done {
			out = append(out, l)
		}
	}
	return out
}

// GetVariant returns the description of variant id with every language in
// langs loaded when the feed has it.
func (c *Cache) GetVariant(ctx context.Context, id string, langs []lang.Language) (*cacheitem.VariantDescriptionCI, error) {
	if len(langs) == 0 {
		langs = c.languages
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, l := range c.missing(id, langs) {
		g.Go(func() error {
			if err := c.fetchList(ctx, l); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		err = fmt.Errorf("load variant %s: %w", id, err)
		if err := c.strategy.Handle(c.logger, err, "variant load failed, serving cached data"); err != nil {
			return nil, err
		}
	}
	v, ok := c.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %w %q", cache.ErrCacheItemNotFound, ErrUnknownVariant, id)
	}
	return v, nil
}

// fetchList fetches the description list of l once across concurrent
// callers. The list is merged through the manager fan-out.
func (c *Cache) fetchList(ctx context.Context, l lang.Language) error {
	_, err, shared := c.group.Do(l.String(), func() (any, error) {
		if _, done := c.fetched.Load(l); done {
			return nil, nil
		}
		return nil, c.facade.FetchVariantDescriptions(ctx, l)
	})
	if shared {
		c.logger.Debug().Str("lang", l.String()).Msg("joined in-flight variant list fetch")
	}
	return err
}

// CacheAddDto implements cache.Store.
func (c *Cache) CacheAddDto(_ context.Context, id urn.URN, p dto.Payload, l lang.Language, cat dto.Category, _ cache.Requester) (bool, error) {
	list, ok := p.(*dto.VariantDescriptionList)
	if !ok || !dto.Conforms(cat, p) {
		c.logger.Warn().Err(cache.ShapeMismatch(StoreName, cat, p)).Str("id", id.String()).Msg("payload ignored")
		return false, nil
	}
	for _, d := range list.Variants {
		if d.ID == "" {
			continue
		}
		v, _ := c.entries.GetOrCreate(d.ID, func() *cacheitem.VariantDescriptionCI {
			return cacheitem.NewVariantDescriptionCI(d.ID)
		})
		v.Merge(d, l)
	}
	c.fetched.Store(l, struct{}{})
	c.logger.Debug().Str("lang", l.String()).Int("variants", len(list.Variants)).Msg("variant list merged")
	return true, nil
}

// CacheHasItem implements cache.Store. Variants are keyed by free form
// ids, never by URN.
func (c *Cache) CacheHasItem(urn.URN, cache.ItemType) bool { return false }

// CacheDeleteItem implements cache.Store. See CacheHasItem.
func (c *Cache) CacheDeleteItem(context.Context, urn.URN, cache.ItemType) {}

// Delete drops variant id and forgets which lists were fetched, so the next
// miss refetches.
func (c *Cache) Delete(id string) {
	c.entries.Delete(id)
	c.fetched.Clear()
}

// ExportAll implements cache.Exporter.
func (c *Cache) ExportAll(ctx context.Context) ([]cacheitem.Exportable, error) {
	var out []cacheitem.Exportable
	c.entries.Range(func(_ string, v *cacheitem.VariantDescriptionCI) bool {
		out = append(out, v.Export())
		return ctx.Err() == nil
	})
	return out, ctx.Err()
}

// ImportAll implements cache.Exporter. Imported lists do not count as
// fetched.
func (c *Cache) ImportAll(ctx context.Context, records []cacheitem.Exportable) error {
	var errs []error
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rec.Kind != cacheitem.KindVariant {
			continue
		}
		v, err := cacheitem.VariantFromExportable(rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.entries.Set(v.ID(), v)
	}
	return errors.Join(errs...)
}

// Health implements cache.HealthReporter.
func (c *Cache) Health() cache.StoreHealth {
	n := c.entries.Len()
	h := cache.StoreHealth{ItemCount: n, ByType: map[string]int{}}
	if n > 0 {
		h.ByType[string(cacheitem.KindVariant)] = n
	}
	return h
}
