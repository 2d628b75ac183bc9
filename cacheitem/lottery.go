package cacheitem

import (
	"context"

	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// DrawCI is a lottery draw.
type DrawCI struct {
	sportEventCI

	lotteryID urn.URN
	status    string
	displayID *int
	results   []DrawResultCI
}

func NewDrawCI(id urn.URN, loader Loader) *DrawCI {
	d := &DrawCI{}
	d.init(id, loader, d)
	return d
}

func (d *DrawCI) Kind() Kind { return KindDraw }

func (d *DrawCI) Merge(p dto.Payload, l lang.Language) error {
	v, ok := p.(*dto.Draw)
	if !ok {
		return unsupported(p, d.Kind())
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if v.Scheduled != nil {
		d.scheduled = copyTime(v.Scheduled)
	}
	if !v.LotteryID.IsZero() {
		d.lotteryID = v.LotteryID
	}
	if v.Status != "" {
		d.status = v.Status
	}
	if v.DisplayID != nil {
		d.displayID = copyInt(v.DisplayID)
	}
	for _, res := range v.Results {
		idx := -1
		for i := range d.results {
			if d.results[i].Value == res.Value {
				idx = i
				break
			}
		}
		if idx < 0 {
			d.results = append(d.results, DrawResultCI{Value: res.Value})
			idx = len(d.results) - 1
		}
		d.results[idx].Names.Set(l, res.Name)
	}
	d.langs.Mark(ClassSummary, l)
	return nil
}

func (d *DrawCI) LotteryID(ctx context.Context) (urn.URN, error) {
	if err := d.ensureAny(ctx, ClassSummary); err != nil {
		return urn.URN{}, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lotteryID, nil
}

func (d *DrawCI) Status(ctx context.Context) (string, error) {
	if err := d.ensureAny(ctx, ClassSummary); err != nil {
		return "", err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status, nil
}

func (d *DrawCI) Results(ctx context.Context, langs []lang.Language) ([]DrawResultCI, error) {
	if err := d.ensure(ctx, ClassSummary, langs); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneDrawResults(d.results), nil
}

func cloneDrawResults(in []DrawResultCI) []DrawResultCI {
	if len(in) == 0 {
		return nil
	}
	out := make([]DrawResultCI, len(in))
	for i, r := range in {
		out[i] = DrawResultCI{Value: r.Value, Names: r.Names.Clone()}
	}
	return out
}

func (d *DrawCI) Export() Exportable {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r := d.exportLocked()
	r.LotteryID = d.lotteryID
	r.DrawStatus = d.status
	r.DisplayID = copyInt(d.displayID)
	r.DrawResults = cloneDrawResults(d.results)
	return Exportable{Kind: KindDraw, ID: d.id.String(), Event: r}
}

func (d *DrawCI) importRecord(r *EventRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.importLocked(r)
	d.lotteryID = r.LotteryID
	d.status = r.DrawStatus
	d.displayID = copyInt(r.DisplayID)
	d.results = cloneDrawResults(r.DrawResults)
}

// LotteryCI is a lottery with the draws it schedules.
type LotteryCI struct {
	sportEventCI

	categoryID    urn.URN
	categoryNames Translations
	drawIDs       []urn.URN
}

func NewLotteryCI(id urn.URN, loader Loader) *LotteryCI {
	lt := &LotteryCI{}
	lt.init(id, loader, lt)
	return lt
}

func (lt *LotteryCI) Kind() Kind { return KindLottery }

func (lt *LotteryCI) Merge(p dto.Payload, l lang.Language) error {
	v, ok := p.(*dto.Lottery)
	if !ok {
		return unsupported(p, lt.Kind())
	}
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.mergeHeaderLocked(&dto.SportEvent{Name: v.Name, SportID: v.SportID}, l)
	if c := v.Category; c != nil {
		if !c.ID.IsZero() {
			lt.categoryID = c.ID
		}
		lt.categoryNames.Set(l, c.Name)
	}
	lt.drawIDs = appendMissing(lt.drawIDs, v.DrawIDs...)
	lt.langs.Mark(ClassSummary, l)
	return nil
}

func (lt *LotteryCI) DrawIDs(ctx context.Context) ([]urn.URN, error) {
	if err := lt.ensureAny(ctx, ClassSummary); err != nil {
		return nil, err
	}
	lt.mu.RLock()
	defer lt.mu.RUnlock()
	return cloneURNs(lt.drawIDs), nil
}

func (lt *LotteryCI) Export() Exportable {
	lt.mu.RLock()
	defer lt.mu.RUnlock()
	r := lt.exportLocked()
	r.CategoryID = lt.categoryID
	r.CategoryNames = lt.categoryNames.Clone()
	r.DrawIDs = cloneURNs(lt.drawIDs)
	return Exportable{Kind: KindLottery, ID: lt.id.String(), Event: r}
}

func (lt *LotteryCI) importRecord(r *EventRecord) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.importLocked(r)
	lt.categoryID = r.CategoryID
	lt.categoryNames = r.CategoryNames.Clone()
	lt.drawIDs = cloneURNs(r.DrawIDs)
}
