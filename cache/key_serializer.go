package cache

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// KeySerializer builds the keys stores use for the coordinator, memo
// tables and entry storage.
type KeySerializer interface {
	SerializeKey(scope string, parts ...any) string
}

type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return defaultKeySerializer{}
}

// SerializeKey joins scope and parts with KeySeparator. Keys are stable
// across processes.
func (s defaultKeySerializer) SerializeKey(scope string, parts ...any) string {
	if len(parts) == 0 {
		return scope
	}
	out := make([]string, 0, len(parts)+1)
	out = append(out, scope)
	for _, p := range parts {
		out = append(out, s.serializeValue(p))
	}
	return strings.Join(out, KeySeparator)
}

func (s defaultKeySerializer) serializeValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case urn.URN:
		if v.IsZero() {
			return "none"
		}
		return v.String()
	case lang.Language:
		return v.String()
	case []lang.Language:
		return serializeLanguages(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		// nil selects the live schedule
		if v == nil {
			return "live"
		}
		return v.UTC().Format(time.RFC3339Nano)
	case string:
		return v
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprintf("%v", v)
	case fmt.Stringer:
		return v.String()
	}
	return s.jsonFallback(v)
}

func serializeLanguages(langs []lang.Language) string {
	if len(langs) == 0 {
		return "langs:none"
	}
	sorted := make([]string, len(langs))
	for i, l := range langs {
		sorted[i] = l.String()
	}
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func (defaultKeySerializer) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("fallback:%T", v)
	}
	return "json:" + string(data)
}

var keys = NewDefaultKeySerializer()

// Key builds a key with the default serializer.
func Key(scope string, parts ...any) string {
	return keys.SerializeKey(scope, parts...)
}

// DateKey truncates t to its UTC calendar day. A nil t yields "live".
func DateKey(t *time.Time) string {
	if t == nil {
		return "live"
	}
	return t.UTC().Format("2006-01-02")
}
