package testsupport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-sportdata-cache/cache"
	"github.com/goliatone/go-sportdata-cache/dataaccess"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// ErrNotFound is returned for anything the FakeSource was not given.
var ErrNotFound = errors.New("testsupport: not found")

// FakeSource is an in-memory dataaccess.Source that counts its calls.
// Combine it with dataaccess.NewRouter to get a facade that saves through
// a real cache.Manager.
type FakeSource struct {
	mu        sync.Mutex
	payloads  map[string]dto.Payload
	failures  map[string]error
	calls     map[string]int
	delay     time.Duration
	onRequest func(op string, key string)
}

var _ dataaccess.Source = (*FakeSource)(nil)

func NewFakeSource() *FakeSource {
	return &FakeSource{
		payloads: make(map[string]dto.Payload),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

func sourceKey(op string, parts ...any) string {
	return cache.Key(op, parts...)
}

// SetDelay makes every call sleep for d, or until the context is done.
func (f *FakeSource) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// OnRequest registers a hook called on every request.
func (f *FakeSource) OnRequest(fn func(op, key string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onRequest = fn
}

// Fail makes every call of op return err. A nil err clears it.
func (f *FakeSource) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// Calls returns how many times op was called.
func (f *FakeSource) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// CallsFor returns how many times op was called for id in l.
func (f *FakeSource) CallsFor(op string, id urn.URN, l lang.Language) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[sourceKey(op, id, l)]
}

// TotalCalls returns the number of calls over every operation.
func (f *FakeSource) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, op := range []string{
		dataaccess.OpSummary, dataaccess.OpFixture, dataaccess.OpProfile, dataaccess.OpDateSchedule,
		dataaccess.OpTournamentSchedule, dataaccess.OpSeasons, dataaccess.OpTimeline, dataaccess.OpVariants,
	} {
		n += f.calls[op]
	}
	return n
}

func (f *FakeSource) put(key string, p dto.Payload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads[key] = p
}

// AddSummary serves p as the summary of its own id in l.
func (f *FakeSource) AddSummary(l lang.Language, p dto.Payload) {
	f.AddSummaryFor(p.PayloadID(), l, p)
}

// AddSummaryFor serves p as the summary of id in l, which may differ from
// the payload's id.
func (f *FakeSource) AddSummaryFor(id urn.URN, l lang.Language, p dto.Payload) {
	f.put(sourceKey(dataaccess.OpSummary, id, l), p)
}

func (f *FakeSource) AddFixture(l lang.Language, p *dto.Fixture) {
	f.put(sourceKey(dataaccess.OpFixture, p.ID, l), p)
}

func (f *FakeSource) AddProfile(l lang.Language, p dto.Payload) {
	f.put(sourceKey(dataaccess.OpProfile, p.PayloadID(), l), p)
}

// AddDateSchedule serves s for date, or for the live schedule when date is
// nil.
func (f *FakeSource) AddDateSchedule(date *time.Time, l lang.Language, s *dto.Schedule) {
	f.put(sourceKey(dataaccess.OpDateSchedule, cache.DateKey(date), l), s)
}

func (f *FakeSource) AddTournamentSchedule(id urn.URN, l lang.Language, s *dto.Schedule) {
	f.put(sourceKey(dataaccess.OpTournamentSchedule, id, l), s)
}

func (f *FakeSource) AddSeasons(id urn.URN, l lang.Language, s *dto.TournamentSeasons) {
	f.put(sourceKey(dataaccess.OpSeasons, id, l), s)
}

func (f *FakeSource) AddTimeline(l lang.Language, tl *dto.MatchTimeline) {
	f.put(sourceKey(dataaccess.OpTimeline, tl.PayloadID(), l), tl)
}

func (f *FakeSource) AddVariants(l lang.Language, list *dto.VariantDescriptionList) {
	f.put(sourceKey(dataaccess.OpVariants, l), list)
}

func (f *FakeSource) request(ctx context.Context, op, key string) (dto.Payload, error) {
	f.mu.Lock()
	f.calls[op]++
	f.calls[key]++
	delay := f.delay
	failure := f.failures[op]
	p, ok := f.payloads[key]
	hook := f.onRequest
	f.mu.Unlock()

	if hook != nil {
		hook(op, key)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failure != nil {
		return nil, failure
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return p, nil
}

func (f *FakeSource) Summary(ctx context.Context, id urn.URN, l lang.Language) (dto.Payload, error) {
	return f.request(ctx, dataaccess.OpSummary, sourceKey(dataaccess.OpSummary, id, l))
}

func (f *FakeSource) Fixture(ctx context.Context, id urn.URN, l lang.Language, _ bool) (*dto.Fixture, error) {
	p, err := f.request(ctx, dataaccess.OpFixture, sourceKey(dataaccess.OpFixture, id, l))
	if err != nil {
		return nil, err
	}
	return p.(*dto.Fixture), nil
}

func (f *FakeSource) Profile(ctx context.Context, id urn.URN, l lang.Language) (dto.Payload, error) {
	return f.request(ctx, dataaccess.OpProfile, sourceKey(dataaccess.OpProfile, id, l))
}

func (f *FakeSource) DateSchedule(ctx context.Context, date *time.Time, l lang.Language) (*dto.Schedule, error) {
	p, err := f.request(ctx, dataaccess.OpDateSchedule, sourceKey(dataaccess.OpDateSchedule, cache.DateKey(date), l))
	if errors.Is(err, ErrNotFound) {
		return &dto.Schedule{}, nil
	}
	if err != nil {
		return nil, err
	}
	return p.(*dto.Schedule), nil
}

func (f *FakeSource) TournamentSchedule(ctx context.Context, id urn.URN, l lang.Language) (*dto.Schedule, error) {
	p, err := f.request(ctx, dataaccess.OpTournamentSchedule, sourceKey(dataaccess.OpTournamentSchedule, id, l))
	if err != nil {
		return nil, err
	}
	return p.(*dto.Schedule), nil
}

func (f *FakeSource) TournamentSeasons(ctx context.Context, id urn.URN, l lang.Language) (*dto.TournamentSeasons, error) {
	p, err := f.request(ctx, dataaccess.OpSeasons, sourceKey(dataaccess.OpSeasons, id, l))
	if err != nil {
		return nil, err
	}
	return p.(*dto.TournamentSeasons), nil
}

func (f *FakeSource) Timeline(ctx context.Context, id urn.URN, l lang.Language) (*dto.MatchTimeline, error) {
	p, err := f.request(ctx, dataaccess.OpTimeline, sourceKey(dataaccess.OpTimeline, id, l))
	if err != nil {
		return nil, err
	}
	return p.(*dto.MatchTimeline), nil
}

func (f *FakeSource) VariantDescriptions(ctx context.Context, l lang.Language) (*dto.VariantDescriptionList, error) {
	p, err := f.request(ctx, dataaccess.OpVariants, sourceKey(dataaccess.OpVariants, l))
	if err != nil {
		return nil, err
	}
	return p.(*dto.VariantDescriptionList), nil
}
