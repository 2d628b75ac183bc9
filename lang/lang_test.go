package lang

import (
	"reflect"
	"testing"
)

func TestParse_Canonicalizes(t *testing.T) {
	tests := []struct {
		input string
		want  Language
	}{
		{"en", "en"},
		{"EN", "en"},
		{" de ", "de"},
		{"pt-br", "pt-BR"},
		{"zh-hant", "zh-Hant"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse("not a tag!"); err == nil {
		t.Fatal("expected error for invalid tag")
	}
}

func TestParseAll_Dedupes(t *testing.T) {
	got, err := ParseAll([]string{"en", "de", "EN"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Language{"en", "de"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSet_Missing(t *testing.T) {
	s := NewSet("en", "de")
	missing := s.Missing([]Language{"en", "hu", "de", "fr"})
	want := []Language{"hu", "fr"}
	if !reflect.DeepEqual(missing, want) {
		t.Errorf("expected %v, got %v", want, missing)
	}
	if !s.HasAll([]Language{"de", "en"}) {
		t.Error("expected HasAll to be true")
	}
	if s.HasAll([]Language{"de", "hu"}) {
		t.Error("expected HasAll to be false")
	}
	if got := s.Sorted(); !reflect.DeepEqual(got, []Language{"de", "en"}) {
		t.Errorf("unexpected sorted order %v", got)
	}
}
