// Package lang holds the canonical language tag used as a key by every
// translatable cache field.
package lang

import (
	"fmt"
	"sort"
	"strings"

	xlanguage "golang.org/x/text/language"
)

// Language is a canonical BCP-47 tag. Equality is exact.
type Language string

// Parse canonicalizes s. Matching is exact after canonicalization, there is
// no fallback between related tags.
func Parse(s string) (Language, error) {
	tag, err := xlanguage.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("parse language %q: %w", s, err)
	}
	return Language(tag.String()), nil
}

// MustParse panics when s is not a valid tag.
func MustParse(s string) Language {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return l
}

// ParseAll parses every tag and drops duplicates, keeping order.
func ParseAll(tags []string) ([]Language, error) {
	out := make([]Language, 0, len(tags))
	seen := make(map[Language]struct{}, len(tags))
	for _, t := range tags {
		l, err := Parse(t)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out, nil
}

func (l Language) String() string { return string(l) }

// Set is a set of languages. The zero value is empty and ready to use for
// reads; use NewSet or Add to write.
type Set map[Language]struct{}

// NewSet builds a set holding langs.
func NewSet(langs ...Language) Set {
	s := make(Set, len(langs))
	for _, l := range langs {
		s[l] = struct{}{}
	}
	return s
}

// Add inserts l.
func (s Set) Add(l Language) { s[l] = struct{}{} }

// Has reports whether l is present.
func (s Set) Has(l Language) bool {
	_, ok := s[l]
	return ok
}

// HasAll reports whether every one of langs is present.
func (s Set) HasAll(langs []Language) bool {
	for _, l := range langs {
		if !s.Has(l) {
			return false
		}
	}
	return true
}

// Missing returns the subset of wanted not present in s, keeping order.
func (s Set) Missing(wanted []Language) []Language {
	var out []Language
	for _, l := range wanted {
		if !s.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []Language {
	out := make([]Language, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone copies the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for l := range s {
		out[l] = struct{}{}
	}
	return out
}
