package cacheitem

import (
	"sync"

	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
)

// VariantDescriptionCI holds outcome names of a market variant. Variant
// ids are free form strings, so it is keyed by string rather than URN.
type VariantDescriptionCI struct {
	mu sync.RWMutex
	id string

	outcomes []OutcomeCI
	mappings []dto.VariantMapping
	langs    lang.Set
}

func NewVariantDescriptionCI(id string) *VariantDescriptionCI {
	return &VariantDescriptionCI{id: id, langs: lang.NewSet()}
}

func (v *VariantDescriptionCI) ID() string { return v.id }

// Merge folds one variant of a description list fetched for l.
func (v *VariantDescriptionCI) Merge(in dto.VariantDescription, l lang.Language) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, o := range in.Outcomes {
		idx := -1
		for i := range v.outcomes {
			if v.outcomes[i].ID == o.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			v.outcomes = append(v.outcomes, OutcomeCI{ID: o.ID})
			idx = len(v.outcomes) - 1
		}
		v.outcomes[idx].Names.Set(l, o.Name)
	}
	for _, m := range in.Mappings {
		found := false
		for _, have := range v.mappings {
			if have == m {
				found = true
				break
			}
		}
		if !found {
			v.mappings = append(v.mappings, m)
		}
	}
	v.langs.Add(l)
}

// OutcomeNames returns outcome id to name for l.
func (v *VariantDescriptionCI) OutcomeNames(l lang.Language) map[string]string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]string, len(v.outcomes))
	for _, o := range v.outcomes {
		if name, ok := o.Names[l]; ok {
			out[o.ID] = name
		}
	}
	return out
}

func (v *VariantDescriptionCI) Mappings() []dto.VariantMapping {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]dto.VariantMapping(nil), v.mappings...)
}

func (v *VariantDescriptionCI) MissingLanguages(langs []lang.Language) []lang.Language {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.langs.Missing(langs)
}

func (v *VariantDescriptionCI) Export() Exportable {
	v.mu.RLock()
	defer v.mu.RUnlock()
	r := &VariantRecord{}
	for _, o := range v.outcomes {
		r.Outcomes = append(r.Outcomes, OutcomeCI{ID: o.ID, Names: o.Names.Clone()})
	}
	if len(v.mappings) > 0 {
		r.Mappings = append([]dto.VariantMapping(nil), v.mappings...)
	}
	if len(v.langs) > 0 {
		r.Languages = v.langs.Sorted()
	}
	return Exportable{Kind: KindVariant, ID: v.id, Variant: r}
}

// VariantFromExportable rebuilds a variant description.
func VariantFromExportable(rec Exportable) (*VariantDescriptionCI, error) {
	if rec.Kind != KindVariant || rec.Variant == nil || rec.ID == "" {
		return nil, invalidRecord(rec, "not a variant record")
	}
	v := NewVariantDescriptionCI(rec.ID)
	for _, o := range rec.Variant.Outcomes {
		v.outcomes = append(v.outcomes, OutcomeCI{ID: o.ID, Names: o.Names.Clone()})
	}
	if len(rec.Variant.Mappings) > 0 {
		v.mappings = append([]dto.VariantMapping(nil), rec.Variant.Mappings...)
	}
	for _, l := range rec.Variant.Languages {
		v.langs.Add(l)
	}
	return v, nil
}
