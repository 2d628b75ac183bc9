package sportevent

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-sportdata-cache/cacheitem"
)

func ownsKind(k cacheitem.Kind) bool {
	switch k {
	case cacheitem.KindMatch, cacheitem.KindStage, cacheitem.KindTournament, cacheitem.KindDraw, cacheitem.KindLottery:
		return true
	}
	return false
}

// ExportAll implements cache.Exporter.
func (c *Cache) ExportAll(ctx context.Context) ([]cacheitem.Exportable, error) {
	var out []cacheitem.Exportable
	c.entries.Range(func(_ string, e cacheitem.SportEventEntry) bool {
		out = append(out, e.Export())
		return ctx.Err() == nil
	})
	return out, ctx.Err()
}

// ImportAll implements cache.Exporter. Imported entries replace entries
// with the same identifier.
func (c *Cache) ImportAll(ctx context.Context, records []cacheitem.Exportable) error {
	var errs []error
	n := 0
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !ownsKind(rec.Kind) {
			continue
		}
		e, err := cacheitem.FromExportable(rec, c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		se, ok := e.(cacheitem.SportEventEntry)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s is not a sport event", cacheitem.ErrInvalidRecord, rec.ID))
			continue
		}
		c.entries.Set(se.ID().String(), se)
		n++
	}
	c.logger.Info().Int("imported", n).Int("failed", len(errs)).Msg("sport events imported")
	return errors.Join(errs...)
}
