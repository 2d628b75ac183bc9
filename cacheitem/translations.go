package cacheitem

import (
	"github.com/goliatone/go-sportdata-cache/lang"
)

// Translations maps a language to a translated value. Callers hold the
// owning entry's lock. The zero value is ready to use.
type Translations map[lang.Language]string

// Set writes the slot for l. Empty values never overwrite.
func (t *Translations) Set(l lang.Language, v string) {
	if v == "" {
		return
	}
	if *t == nil {
		*t = make(Translations)
	}
	(*t)[l] = v
}

// Get returns the value for l.
func (t Translations) Get(l lang.Language) (string, bool) {
	v, ok := t[l]
	return v, ok
}

// Pick copies the slots for langs that are present.
func (t Translations) Pick(langs []lang.Language) map[lang.Language]string {
	out := make(map[lang.Language]string, len(langs))
	for _, l := range langs {
		if v, ok := t[l]; ok {
			out[l] = v
		}
	}
	return out
}

// Clone returns a copy, nil when empty.
func (t Translations) Clone() Translations {
	if len(t) == 0 {
		return nil
	}
	out := make(Translations, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
