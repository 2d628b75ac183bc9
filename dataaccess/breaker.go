package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/cacheitem"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/internal/metrics"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// BreakerConfig tunes the circuit breaker around a Facade.
type BreakerConfig struct {
	Name string
	// MaxRequests is the number of calls let through while half open.
	MaxRequests uint32
	// Interval resets the counts while closed. Zero never resets.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// The breaker opens once MinRequests calls were seen and at least
	// FailureRatio of them failed upstream.
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerConfig returns the settings used when none are configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:         "sportdata-api",
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

func (c BreakerConfig) Validate() error {
	if c.Name == "" {
		return &cache.ConfigError{Field: "Name", Message: "breaker name is required"}
	}
	if c.MaxRequests == 0 {
		return &cache.ConfigError{Field: "MaxRequests", Message: "must be greater than 0"}
	}
	if c.Timeout <= 0 {
		return &cache.ConfigError{Field: "Timeout", Message: "must be greater than 0"}
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		return &cache.ConfigError{Field: "FailureRatio", Message: "must be in (0, 1]"}
	}
	return nil
}

// Breaker rejects calls while the upstream keeps failing. Only errors
// matching cache.ErrUpstreamFetch count as failures, a cancelled caller or a
// store rejecting a payload does not trip it.
type Breaker struct {
	next    Facade
	cb      *gobreaker.CircuitBreaker[any]
	name    string
	logger  zerolog.Logger
	metrics *metrics.Collectors
}

var _ Facade = (*Breaker)(nil)

func NewBreaker(next Facade, cfg BreakerConfig, logger zerolog.Logger, m *metrics.Collectors) (*Breaker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Breaker{
		next:    next,
		name:    cfg.Name,
		logger:  logger.With().Str("component", "breaker").Str("breaker", cfg.Name).Logger(),
		metrics: m,
	}
	m.SetBreakerState(cfg.Name, stateValue(gobreaker.StateClosed))

	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("breaker state changed")
			b.metrics.SetBreakerState(name, stateValue(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, cache.ErrUpstreamFetch)
		},
	})
	return b, nil
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

func (b *Breaker) execute(op string, id string, l lang.Language, fn func() (any, error)) (any, error) {
	res, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.logger.Debug().Str("op", op).Str("id", id).Msg("request rejected by breaker")
		return nil, cache.NewFetchError(op, id, l, err)
	}
	return res, err
}

func castResult[T any](res any, err error) (T, error) {
	var zero T
	if err != nil || res == nil {
		return zero, err
	}
	typed, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("breaker: unexpected result type %T", res)
	}
	return typed, nil
}

func (b *Breaker) FetchSummary(ctx context.Context, id urn.URN, l lang.Language, requester cache.Requester) error {
	_, err := b.execute(OpSummary, id.String(), l, func() (any, error) {
		return nil, b.next.FetchSummary(ctx, id, l, requester)
	})
	return err
}

func (b *Breaker) FetchFixture(ctx context.Context, id urn.URN, l lang.Language, useCached bool, requester cache.Requester) error {
	_, err := b.execute(OpFixture, id.String(), l, func() (any, error) {
		return nil, b.next.FetchFixture(ctx, id, l, useCached, requester)
	})
	return err
}

func (b *Breaker) FetchCompetitorOrPlayerProfile(ctx context.Context, id urn.URN, l lang.Language, requester cache.Requester) error {
	_, err := b.execute(OpProfile, id.String(), l, func() (any, error) {
		return nil, b.next.FetchCompetitorOrPlayerProfile(ctx, id, l, requester)
	})
	return err
}

func (b *Breaker) FetchScheduleForDate(ctx context.Context, date *time.Time, l lang.Language) ([]cacheitem.EventRef, error) {
	return castResult[[]cacheitem.EventRef](b.execute(OpDateSchedule, cache.DateKey(date), l, func() (any, error) {
		return b.next.FetchScheduleForDate(ctx, date, l)
	}))
}

func (b *Breaker) FetchScheduleForTournament(ctx context.Context, id urn.URN, l lang.Language) ([]cacheitem.EventRef, error) {
	return castResult[[]cacheitem.EventRef](b.execute(OpTournamentSchedule, id.String(), l, func() (any, error) {
		return b.next.FetchScheduleForTournament(ctx, id, l)
	}))
}

func (b *Breaker) FetchSeasonsForTournament(ctx context.Context, id urn.URN, l lang.Language) ([]urn.URN, error) {
	return castResult[[]urn.URN](b.execute(OpSeasons, id.String(), l, func() (any, error) {
		return b.next.FetchSeasonsForTournament(ctx, id, l)
	}))
}

func (b *Breaker) FetchOngoingEventTimeline(ctx context.Context, id urn.URN, l lang.Language) (*dto.MatchTimeline, error) {
	return castResult[*dto.MatchTimeline](b.execute(OpTimeline, id.String(), l, func() (any, error) {
		return b.next.FetchOngoingEventTimeline(ctx, id, l)
	}))
}

func (b *Breaker) FetchVariantDescriptions(ctx context.Context, l lang.Language) error {
	_, err := b.execute(OpVariants, "variants", l, func() (any, error) {
		return nil, b.next.FetchVariantDescriptions(ctx, l)
	})
	return err
}

func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
