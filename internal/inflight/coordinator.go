// Package inflight serializes who may issue an upstream fetch for a key.
//
// Acquire blocks while another caller owns the key and wakes as soon as the
// owner releases it. The wait is bounded: once the budget is spent the
// caller proceeds without ownership, so a stuck owner can cause a duplicate
// fetch but never a deadlock. The coordinator never fetches anything itself.
package inflight

import (
	"context"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-sportdata-cache/internal/metrics"
)

// DefaultWait is the acquire budget used when none is configured.
const DefaultWait = 30 * time.Second

type claim struct {
	done chan struct{}
	at   time.Time
}

// Coordinator hands out per-key fetch rights.
type Coordinator struct {
	logger  zerolog.Logger
	metrics *metrics.Collectors
	wait    time.Duration
	claims  *xsync.MapOf[string, *claim]
}

// New builds a coordinator. A non-positive wait uses DefaultWait.
func New(logger zerolog.Logger, m *metrics.Collectors, wait time.Duration) *Coordinator {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Coordinator{
		logger:  logger.With().Str("component", "inflight").Logger(),
		metrics: m,
		wait:    wait,
		claims:  xsync.NewMapOf[string, *claim](),
	}
}

// Lease is the result of Acquire. Release is safe to call more than once
// and on leases that do not own their key.
type Lease struct {
	c     *Coordinator
	key   string
	claim *claim
	once  sync.Once
}

// Owned reports whether the caller holds the key.
func (l *Lease) Owned() bool { return l != nil && l.claim != nil }

func (l *Lease) Release() {
	if !l.Owned() {
		return
	}
	l.once.Do(func() {
		removed := false
		l.c.claims.Compute(l.key, func(old *claim, loaded bool) (*claim, bool) {
			if loaded && old == l.claim {
				removed = true
				return nil, true
			}
			return old, !loaded
		})
		// a forced Coordinator.Release already closed it
		if removed {
			close(l.claim.done)
		}
	})
}

// Acquire waits until the caller owns key, the wait budget is spent or ctx
// is done. In the last two cases the returned lease is not owned.
func (c *Coordinator) Acquire(ctx context.Context, key string) *Lease {
	start := time.Now()
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		mine := &claim{done: make(chan struct{}), at: time.Now()}
		cur, loaded := c.claims.LoadOrStore(key, mine)
		if !loaded {
			c.metrics.ObserveWait(time.Since(start).Seconds())
			return &Lease{c: c, key: key, claim: mine}
		}

		if timer == nil {
			timer = time.NewTimer(c.wait)
		}
		select {
		case <-cur.done:
		case <-timer.C:
			c.metrics.RecordInflightTimeout()
			c.logger.Warn().
				Str("key", key).
				Dur("waited", time.Since(start)).
				Dur("held_for", time.Since(cur.at)).
				Msg("gave up waiting for fetch rights, proceeding without them")
			return &Lease{c: c, key: key}
		case <-ctx.Done():
			return &Lease{c: c, key: key}
		}
	}
}

// Release relinquishes key regardless of which lease owns it. Releasing an
// unclaimed key is a no-op.
func (c *Coordinator) Release(key string) {
	if cl, ok := c.claims.LoadAndDelete(key); ok {
		close(cl.done)
	}
}

// Pending returns the number of owned keys.
func (c *Coordinator) Pending() int {
	return c.claims.Size()
}
