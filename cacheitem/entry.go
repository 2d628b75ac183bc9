// Package cacheitem holds the long-lived, multi-language cache entries and
// their merge rules.
//
// An entry is mutated in place by Merge with single-language payload
// fragments. Merging a payload for language L only adds or overwrites the L
// slot of translatable fields, overwrites scalars the payload supplies and
// merges child collections by child identifier. Merge is idempotent and safe
// to call concurrently for different languages of the same entry; every
// entry guards its state with its own lock.
//
// Sport event entries load missing languages lazily through a Loader, which
// is implemented by the store that owns them.
package cacheitem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

var (
	// ErrUnsupportedPayload is returned by Merge when the payload shape
	// cannot be folded into the entry.
	ErrUnsupportedPayload = errors.New("cacheitem: unsupported payload")
	// ErrInvalidRecord is returned when an export record cannot be
	// turned back into an entry.
	ErrInvalidRecord = errors.New("cacheitem: invalid record")
)

// Kind names the concrete entry type.
type Kind string

const (
	KindMatch          Kind = "match"
	KindStage          Kind = "stage"
	KindTournament     Kind = "tournament"
	KindDraw           Kind = "draw"
	KindLottery        Kind = "lottery"
	KindCompetitor     Kind = "competitor"
	KindTeamCompetitor Kind = "team_competitor"
	KindPlayer         Kind = "player"
	KindStatus         Kind = "status"
	KindVariant        Kind = "variant"
)

// Entry is implemented by every identifier-keyed cache entry.
type Entry interface {
	ID() urn.URN
	Kind() Kind
	Merge(p dto.Payload, l lang.Language) error
	Export() Exportable
}

// SportEventEntry is implemented by Match, Stage, Tournament, Draw and
// Lottery entries.
type SportEventEntry interface {
	Entry
	// ScheduledTimes returns copies of the cached start and end without
	// loading anything.
	ScheduledTimes() (start, end *time.Time)
	SummaryLanguages() []lang.Language
	FixtureLanguages() []lang.Language
	Names(ctx context.Context, langs []lang.Language) (map[lang.Language]string, error)
}

// Loader fetches missing data for an entry. Implementations issue the
// upstream fetch and merge the result back, the requester included.
type Loader interface {
	LoadSummary(ctx context.Context, id urn.URN, langs []lang.Language, requester Entry) error
	LoadFixture(ctx context.Context, id urn.URN, langs []lang.Language, requester Entry) error
	// LoadSeasons fetches the season list of a tournament.
	LoadSeasons(ctx context.Context, id urn.URN, langs []lang.Language, requester Entry) error
	// LoadTimeline fetches the timeline of an ongoing event.
	LoadTimeline(ctx context.Context, id urn.URN, langs []lang.Language, requester Entry) error
	// DefaultLanguages is used by accessors of non-translatable fields when
	// nothing was loaded yet.
	DefaultLanguages() []lang.Language
}

// FieldError names the part of a payload that could not be merged.
type FieldError struct {
	Field string
	Err   error
}

// MergeError reports a partial merge. Every field not listed was merged.
type MergeError struct {
	ID     urn.URN
	Fields []FieldError
}

func (e *MergeError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Err.Error())
	}
	return fmt.Sprintf("cacheitem: partial merge of %s: %s", e.ID, strings.Join(parts, "; "))
}

func (e *MergeError) Unwrap() []error {
	out := make([]error, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Err)
	}
	return out
}

var errMissingID = errors.New("missing identifier")

type fieldErrors struct {
	id     urn.URN
	fields []FieldError
}

func (f *fieldErrors) add(field string, err error) {
	f.fields = append(f.fields, FieldError{Field: field, Err: err})
}

func (f *fieldErrors) err() error {
	if len(f.fields) == 0 {
		return nil
	}
	return &MergeError{ID: f.id, Fields: f.fields}
}

func unsupported(p dto.Payload, k Kind) error {
	return fmt.Errorf("%w: %T into %s", ErrUnsupportedPayload, p, k)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func copyInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneStrings(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// mergeStrings overwrites the keys present in src.
func mergeStrings(dst *map[string]string, src map[string]string) {
	if len(src) == 0 {
		return
	}
	if *dst == nil {
		*dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		(*dst)[k] = v
	}
}

func cloneURNs(ids []urn.URN) []urn.URN {
	if len(ids) == 0 {
		return nil
	}
	return append([]urn.URN(nil), ids...)
}

// appendMissing appends the ids not yet present, keeping order.
func appendMissing(dst []urn.URN, ids ...urn.URN) []urn.URN {
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		found := false
		for _, have := range dst {
			if have == id {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, id)
		}
	}
	return dst
}
