package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/dataaccess"
	"github.com/goliatone/go-sportdata-cache/internal/inflight"
	"github.com/goliatone/go-sportdata-cache/internal/metrics"
	"github.com/goliatone/go-sportdata-cache/profile"
	"github.com/goliatone/go-sportdata-cache/snapshot"
	"github.com/goliatone/go-sportdata-cache/sportevent"
	"github.com/goliatone/go-sportdata-cache/status"
	"github.com/goliatone/go-sportdata-cache/variant"
)

// Container wires the cache manager, the data access router and every
// store around one upstream Source. Stores are registered with the manager
// before the container is returned.
type Container struct {
	config  cache.Config
	logger  zerolog.Logger
	metrics *metrics.Collectors

	manager     *cache.Manager
	coordinator *inflight.Coordinator
	router      *dataaccess.Router
	facade      dataaccess.Facade

	events    *sportevent.Cache
	profiles  *profile.Cache
	statuses  *status.Cache
	variants  *variant.Cache
	refresher *sportevent.Refresher

	snapshots       *snapshot.Store
	snapshotService *snapshot.Service
}

type options struct {
	logger           zerolog.Logger
	registerer       prometheus.Registerer
	breaker          *dataaccess.BreakerConfig
	snapshotRepo     snapshot.Repository
	snapshotInterval time.Duration
}

type Option func(*options)

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegisterer registers the cache collectors on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithBreaker puts a circuit breaker between the stores and the router.
func WithBreaker(cfg dataaccess.BreakerConfig) Option {
	return func(o *options) { o.breaker = &cfg }
}

// WithSnapshot persists the cache through repo every interval.
func WithSnapshot(repo snapshot.Repository, interval time.Duration) Option {
	return func(o *options) {
		o.snapshotRepo = repo
		o.snapshotInterval = interval
	}
}

// NewContainer builds every component for cfg on top of source.
func NewContainer(cfg cache.Config, source dataaccess.Source, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, &cache.ConfigError{Field: "Source", Message: "an upstream source is required"}
	}
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{
		config:  cfg,
		logger:  o.logger,
		metrics: metrics.New(o.registerer),
	}
	c.manager = cache.NewManager(c.logger, c.metrics, cfg.ExceptionStrategy)
	c.coordinator = inflight.New(c.logger, c.metrics, cfg.InflightWait)
	c.router = dataaccess.NewRouter(source, c.manager, c.logger, c.metrics)
	c.facade = c.router
	if o.breaker != nil {
		b, err := dataaccess.NewBreaker(c.router, *o.breaker, c.logger, c.metrics)
		if err != nil {
			return nil, err
		}
		c.facade = b
	}

	var err error
	if c.events, err = sportevent.New(cfg, c.facade, c.manager, c.coordinator, c.logger, c.metrics); err != nil {
		return nil, fmt.Errorf("sport event store: %w", err)
	}
	if c.profiles, err = profile.New(cfg, c.facade, c.coordinator, c.logger, c.metrics); err != nil {
		return nil, fmt.Errorf("profile store: %w", err)
	}
	if c.statuses, err = status.New(cfg, c.events, c.logger, c.metrics); err != nil {
		return nil, fmt.Errorf("status store: %w", err)
	}
	if c.variants, err = variant.New(cfg, c.facade, c.logger, c.metrics); err != nil {
		return nil, fmt.Errorf("variant store: %w", err)
	}

	stores := []struct {
		name  string
		store cache.Store
	}{
		{sportevent.StoreName, c.events},
		{profile.StoreName, c.profiles},
		{status.StoreName, c.statuses},
		{variant.StoreName, c.variants},
	}
	for _, s := range stores {
		if err := c.manager.RegisterStore(s.name, s.store); err != nil {
			return nil, err
		}
	}

	c.refresher = sportevent.NewRefresher(c.events, cfg, c.logger)
	if o.snapshotRepo != nil {
		if o.snapshotInterval <= 0 {
			return nil, &cache.ConfigError{Field: "SnapshotInterval", Message: "must be positive"}
		}
		c.snapshots = snapshot.New(o.snapshotRepo, c.manager, c.logger)
		c.snapshotService = snapshot.NewService(c.snapshots, o.snapshotInterval)
	}
	return c, nil
}

// NewContainerWithDefaults uses cache.DefaultConfig.
func NewContainerWithDefaults(source dataaccess.Source, opts ...Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), source, opts...)
}

func (c *Container) Config() cache.Config                { return c.config }
func (c *Container) Manager() *cache.Manager             { return c.manager }
func (c *Container) Facade() dataaccess.Facade           { return c.facade }
func (c *Container) Metrics() *metrics.Collectors        { return c.metrics }
func (c *Container) Coordinator() *inflight.Coordinator  { return c.coordinator }
func (c *Container) SportEvents() *sportevent.Cache      { return c.events }
func (c *Container) Profiles() *profile.Cache            { return c.profiles }
func (c *Container) Statuses() *status.Cache             { return c.statuses }
func (c *Container) Variants() *variant.Cache            { return c.variants }
func (c *Container) Refresher() *sportevent.Refresher    { return c.refresher }
func (c *Container) Snapshots() *snapshot.Store          { return c.snapshots }
func (c *Container) SnapshotService() *snapshot.Service  { return c.snapshotService }
func (c *Container) Health() map[string]cache.StoreHealth { return c.manager.Health() }

// Supervisor returns a new supervisor carrying the background services.
func (c *Container) Supervisor() *suture.Supervisor {
	sup := suture.New("sportdata-cache", suture.Spec{
		EventHook: func(e suture.Event) {
			c.logger.Warn().Fields(e.Map()).Msg(e.String())
		},
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	})
	sup.Add(c.refresher)
	if c.snapshotService != nil {
		sup.Add(c.snapshotService)
	}
	return sup
}

// Start restores the last snapshot when one is configured and serves the
// background services until ctx is done. A failed restore is logged and
// the cache starts cold.
func (c *Container) Start(ctx context.Context) <-chan error {
	if c.snapshots != nil {
		n, err := c.snapshots.Restore(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("snapshot restore incomplete")
		}
		c.logger.Info().Int("records", n).Msg("cache warmed from snapshot")
	}
	return c.Supervisor().ServeBackground(ctx)
}
