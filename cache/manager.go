package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-sportdata-cache/cacheitem"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/internal/metrics"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

type registration struct {
	name       string
	store      Store
	categories map[dto.Category]struct{}
}

// Manager routes fetched payloads to every store registered for the
// payload's category. Stores never see each other.
type Manager struct {
	logger   zerolog.Logger
	metrics  *metrics.Collectors
	strategy ExceptionStrategy

	mu     sync.RWMutex
	stores []*registration
}

var _ Saver = (*Manager)(nil)

// NewManager creates a manager with no stores. m may be nil.
func NewManager(logger zerolog.Logger, m *metrics.Collectors, strategy ExceptionStrategy) *Manager {
	return &Manager{
		logger:   logger.With().Str("component", "cache_manager").Logger(),
		metrics:  m,
		strategy: strategy,
	}
}

// Strategy returns the exception strategy the manager applies.
func (m *Manager) Strategy() ExceptionStrategy { return m.strategy }

// RegisterStore adds s under name. Registering a name twice replaces the
// earlier store.
func (m *Manager) RegisterStore(name string, s Store) error {
	if name == "" {
		return &ConfigError{Field: "name", Message: "store name is required"}
	}
	if s == nil {
		return &ConfigError{Field: "store", Message: fmt.Sprintf("store %q is nil", name)}
	}
	cats := s.Categories()
	if len(cats) == 0 {
		return &ConfigError{Field: "Categories", Message: fmt.Sprintf("store %q declares no payload categories", name)}
	}

	reg := &registration{name: name, store: s, categories: make(map[dto.Category]struct{}, len(cats))}
	for _, c := range cats {
		reg.categories[c] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.stores {
		if existing.name == name {
			m.logger.Warn().Str("store", name).Msg("store registered twice, replacing")
			m.stores[i] = reg
			return nil
		}
	}
	m.stores = append(m.stores, reg)
	m.logger.Debug().Str("store", name).Int("categories", len(cats)).Msg("store registered")
	return nil
}

// Stores returns the registered store names in registration order.
func (m *Manager) Stores() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.stores))
	for i, r := range m.stores {
		names[i] = r.name
	}
	return names
}

func (m *Manager) snapshot() []*registration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*registration, len(m.stores))
	copy(out, m.stores)
	return out
}

func (m *Manager) interested(c dto.Category) []*registration {
	var out []*registration
	for _, r := range m.snapshot() {
		if _, ok := r.categories[c]; ok {
			out = append(out, r)
		}
	}
	return out
}

// SaveDto hands p to every interested store concurrently and returns once
// all of them finished. A failing store does not affect the others. Under
// Throw the joined store errors are returned, under Catch they are only
// logged.
func (m *Manager) SaveDto(ctx context.Context, id urn.URN, p dto.Payload, l lang.Language, c dto.Category, requester Requester) error {
	return m.fanout(ctx, id, p, l, c, requester)
}

// SaveDtoAsync runs SaveDto in the background. The channel yields the
// result once and is then closed.
func (m *Manager) SaveDtoAsync(ctx context.Context, id urn.URN, p dto.Payload, l lang.Language, c dto.Category, requester Requester) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- m.fanout(ctx, id, p, l, c, requester)
	}()
	return done
}

func (m *Manager) fanout(ctx context.Context, id urn.URN, p dto.Payload, l lang.Language, c dto.Category, requester Requester) error {
	targets := m.interested(c)
	if len(targets) == 0 {
		m.logger.Debug().Str("category", c.String()).Str("id", id.String()).Msg("no store interested in payload")
		return nil
	}
	if !dto.Conforms(c, p) {
		err := ShapeMismatch("manager", c, p)
		m.logger.Warn().Err(err).Str("id", id.String()).Msg("payload rejected")
		if m.strategy == Catch {
			return nil
		}
		return err
	}

	// not errgroup.WithContext: one store failing must not cancel the rest
	var g errgroup.Group
	errs := make([]error, len(targets))
	for i, t := range targets {
		g.Go(func() error {
			errs[i] = m.saveTo(ctx, t, id, p, l, c, requester)
			return nil
		})
	}
	_ = g.Wait()

	joined := errors.Join(errs...)
	if joined == nil || m.strategy == Catch {
		return nil
	}
	return joined
}

func (m *Manager) saveTo(ctx context.Context, t *registration, id urn.URN, p dto.Payload, l lang.Language, c dto.Category, requester Requester) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("store %s panicked: %v", t.name, r)
			m.reportFailure(t.name, c, id, l, err)
		}
	}()

	saved, err := t.store.CacheAddDto(ctx, id, p, l, c, requester)
	switch {
	case err != nil:
		err = fmt.Errorf("store %s: %w", t.name, err)
		m.reportFailure(t.name, c, id, l, err)
		return err
	case saved:
		m.metrics.RecordSave(t.name, c.String(), "saved")
	default:
		m.metrics.RecordSave(t.name, c.String(), "skipped")
	}
	return nil
}

func (m *Manager) reportFailure(store string, c dto.Category, id urn.URN, l lang.Language, err error) {
	m.metrics.RecordSave(store, c.String(), "error")
	m.metrics.RecordFanoutFailure(store)
	m.logger.Warn().
		Err(err).
		Str("store", store).
		Str("category", c.String()).
		Str("id", id.String()).
		Str("lang", l.String()).
		Msg("store failed to save payload")
}

// RemoveCacheItem deletes id from every store except the one registered as
// requester.
func (m *Manager) RemoveCacheItem(ctx context.Context, id urn.URN, t ItemType, requester string) {
	for _, r := range m.snapshot() {
		if r.name == requester {
			continue
		}
		r.store.CacheDeleteItem(ctx, id, t)
	}
	m.logger.Debug().Str("id", id.String()).Str("type", t.String()).Str("requester", requester).Msg("item removed")
}

// HasItem reports whether any store holds id.
func (m *Manager) HasItem(id urn.URN, t ItemType) bool {
	for _, r := range m.snapshot() {
		if r.store.CacheHasItem(id, t) {
			return true
		}
	}
	return false
}

// ExportAll collects the records of every store that supports export.
func (m *Manager) ExportAll(ctx context.Context) ([]cacheitem.Exportable, error) {
	var (
		out  []cacheitem.Exportable
		errs []error
	)
	for _, r := range m.snapshot() {
		exp, ok := r.store.(Exporter)
		if !ok {
			continue
		}
		recs, err := exp.ExportAll(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("export %s: %w", r.name, err))
			continue
		}
		out = append(out, recs...)
	}
	return out, errors.Join(errs...)
}

// ImportAll offers every record to every store that supports import.
func (m *Manager) ImportAll(ctx context.Context, records []cacheitem.Exportable) error {
	var errs []error
	for _, r := range m.snapshot() {
		exp, ok := r.store.(Exporter)
		if !ok {
			continue
		}
		if err := exp.ImportAll(ctx, records); err != nil {
			errs = append(errs, fmt.Errorf("import %s: %w", r.name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	m.logger.Info().Int("records", len(records)).Msg("cache imported")
	return nil
}

// Health returns the health of every reporting store keyed by name.
func (m *Manager) Health() map[string]StoreHealth {
	out := make(map[string]StoreHealth)
	for _, r := range m.snapshot() {
		if hr, ok := r.store.(HealthReporter); ok {
			h := hr.Health()
			out[r.name] = h
			m.metrics.SetItems(r.name, h.ItemCount)
		}
	}
	return out
}
