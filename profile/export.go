package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-sportdata-cache/cacheitem"
)

// ExportAll implements cache.Exporter.
func (c *Cache) ExportAll(ctx context.Context) ([]cacheitem.Exportable, error) {
	var out []cacheitem.Exportable
	c.competitors.Range(func(_ string, e Competitor) bool {
		out = append(out, e.Export())
		return ctx.Err() == nil
	})
	c.players.Range(func(_ string, p *cacheitem.PlayerCI) bool {
		out = append(out, p.Export())
		return ctx.Err() == nil
	})
	return out, ctx.Err()
}

// ImportAll implements cache.Exporter.
func (c *Cache) ImportAll(ctx context.Context, records []cacheitem.Exportable) error {
	var errs []error
	n := 0
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch rec.Kind {
		case cacheitem.KindCompetitor, cacheitem.KindTeamCompetitor, cacheitem.KindPlayer:
		default:
			continue
		}
		e, err := cacheitem.FromExportable(rec, nil)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		switch v := e.(type) {
		case *cacheitem.PlayerCI:
			c.players.Set(v.ID().String(), v)
		case Competitor:
			c.competitors.Set(v.ID().String(), v)
		default:
			errs = append(errs, fmt.Errorf("%w: %s is not a profile", cacheitem.ErrInvalidRecord, rec.ID))
			continue
		}
		n++
	}
	c.logger.Info().Int("imported", n).Int("failed", len(errs)).Msg("profiles imported")
	return errors.Join(errs...)
}
