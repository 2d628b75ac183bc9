package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

func joinWithSeparator(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

func TestDefaultKeySerializer_BasicTypes(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name  string
		scope string
		args  []any
		want  string
	}{
		{
			name:  "no args",
			scope: "sports",
			args:  []any{},
			want:  "sports",
		},
		{
			name:  "single int",
			scope: "variant",
			args:  []any{42},
			want:  joinWithSeparator("variant", "42"),
		},
		{
			name:  "multiple basic types",
			scope: "get",
			args:  []any{1, "hello", true, 3.14},
			want:  joinWithSeparator("get", "1", "hello", "true", "3.14"),
		},
		{
			name:  "string with separator chars",
			scope: "search",
			args:  []any{"hello:world"},
			want:  joinWithSeparator("search", "hello:world"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(tt.scope, tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_DomainTypes(t *testing.T) {
	serializer := NewDefaultKeySerializer()
	day := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		scope string
		args  []any
		want  string
	}{
		{
			name:  "urn and language",
			scope: "summary",
			args:  []any{urn.MustParse("sr:match:123"), lang.MustParse("en")},
			want:  joinWithSeparator("summary", "sr:match:123", "en"),
		},
		{
			name:  "zero urn",
			scope: "summary",
			args:  []any{urn.URN{}},
			want:  joinWithSeparator("summary", "none"),
		},
		{
			name:  "languages are sorted",
			scope: "profile",
			args:  []any{[]lang.Language{"hu", "de", "en"}},
			want:  joinWithSeparator("profile", "de,en,hu"),
		},
		{
			name:  "no languages",
			scope: "profile",
			args:  []any{[]lang.Language{}},
			want:  joinWithSeparator("profile", "langs:none"),
		},
		{
			name:  "time in utc",
			scope: "schedule",
			args:  []any{day.In(time.FixedZone("CET", 3600))},
			want:  joinWithSeparator("schedule", "2024-01-10T12:00:00Z"),
		},
		{
			name:  "nil time means live",
			scope: "schedule",
			args:  []any{(*time.Time)(nil)},
			want:  joinWithSeparator("schedule", "live"),
		},
		{
			name:  "stringer",
			scope: "save",
			args:  []any{dto.CategoryFixture},
			want:  joinWithSeparator("save", "fixture"),
		},
		{
			name:  "nil interface",
			scope: "get",
			args:  []any{nil},
			want:  joinWithSeparator("get", "nil"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(tt.scope, tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_JSONFallback(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name string
		arg  any
		want string
	}{
		{"int slice", []int{1, 2, 3}, "json:[1,2,3]"},
		{"map keys sorted", map[string]int{"b": 2, "a": 1}, `json:{"a":1,"b":2}`},
		{"struct", struct{ Name string }{"x"}, `json:{"Name":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey("k", tt.arg)
			if got != joinWithSeparator("k", tt.want) {
				t.Errorf("SerializeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_Deterministic(t *testing.T) {
	serializer := NewDefaultKeySerializer()
	args := []any{urn.MustParse("sr:season:7"), []lang.Language{"en", "de"}, map[string]string{"z": "1", "a": "2"}}

	first := serializer.SerializeKey("tournament", args...)
	for i := 0; i < 20; i++ {
		if got := serializer.SerializeKey("tournament", args...); got != first {
			t.Fatalf("iteration %d: %q != %q", i, got, first)
		}
	}
}

func TestDateKey(t *testing.T) {
	if got := DateKey(nil); got != "live" {
		t.Errorf("expected live, got %q", got)
	}
	late := time.Date(2024, 1, 10, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))
	if got := DateKey(&late); got != "2024-01-11" {
		t.Errorf("expected utc day, got %q", got)
	}
	if Key("schedule", DateKey(&late), lang.Language("en")) != joinWithSeparator("schedule", "2024-01-11", "en") {
		t.Error("unexpected composite key")
	}
}
