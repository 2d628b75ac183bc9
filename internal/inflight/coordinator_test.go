package inflight

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-sportdata-cache/internal/metrics"
)

func TestAcquire_Exclusive(t *testing.T) {
	c := New(zerolog.Nop(), nil, time.Second)

	var active, maxActive atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease := c.Acquire(context.Background(), "sr:match:1")
			defer lease.Release()
			if !lease.Owned() {
				t.Error("expected ownership")
				return
			}
			n := active.Add(1)
			for {
				m := maxActive.Load()
				if n <= m || maxActive.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	if maxActive.Load() != 1 {
		t.Errorf("expected at most one owner at a time, saw %d", maxActive.Load())
	}
	if c.Pending() != 0 {
		t.Errorf("expected no pending claims, got %d", c.Pending())
	}
}

func TestAcquire_DifferentKeysDoNotBlock(t *testing.T) {
	c := New(zerolog.Nop(), nil, time.Second)
	a := c.Acquire(context.Background(), "a")
	defer a.Release()

	done := make(chan struct{})
	go func() {
		b := c.Acquire(context.Background(), "b")
		b.Release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("acquire on a different key blocked")
	}
}

func TestAcquire_TimeoutProceedsUnowned(t *testing.T) {
	m := metrics.New(nil)
	c := New(zerolog.Nop(), m, 20*time.Millisecond)

	held := c.Acquire(context.Background(), "k")
	defer held.Release()

	start := time.Now()
	lease := c.Acquire(context.Background(), "k")
	if lease.Owned() {
		t.Fatal("expected unowned lease after timeout")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("expected to wait for the budget")
	}
	lease.Release()

	if _, ok := c.claims.Load("k"); !ok {
		t.Error("releasing an unowned lease must not drop the owner's claim")
	}
	if got := testutil.ToFloat64(m.InflightTimeouts); got != 1 {
		t.Errorf("expected one timeout recorded, got %v", got)
	}
}

func TestAcquire_ContextCancelled(t *testing.T) {
	c := New(zerolog.Nop(), nil, time.Minute)
	held := c.Acquire(context.Background(), "k")
	defer held.Release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if lease := c.Acquire(ctx, "k"); lease.Owned() {
		t.Error("expected unowned lease on cancellation")
	}
}

func TestRelease_WakesWaiter(t *testing.T) {
	c := New(zerolog.Nop(), nil, time.Minute)
	held := c.Acquire(context.Background(), "k")

	got := make(chan *Lease)
	go func() { got <- c.Acquire(context.Background(), "k") }()

	time.Sleep(10 * time.Millisecond)
	held.Release()
	held.Release()

	select {
	case lease := <-got:
		if !lease.Owned() {
			t.Error("expected waiter to take ownership")
		}
		lease.Release()
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken")
	}
}

func TestCoordinatorRelease_ForcedThenLeaseRelease(t *testing.T) {
	c := New(zerolog.Nop(), nil, time.Minute)
	first := c.Acquire(context.Background(), "k")
	c.Release("k")

	second := c.Acquire(context.Background(), "k")
	if !second.Owned() {
		t.Fatal("expected second caller to own the key")
	}

	first.Release()
	if _, ok := c.claims.Load("k"); !ok {
		t.Error("stale lease must not release the new owner")
	}
	second.Release()
	c.Release("missing")
}
