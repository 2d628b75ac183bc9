package snapshot

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"
)

// Service saves a snapshot on an interval and once more on shutdown.
type Service struct {
	store    *Store
	interval time.Duration
	timeout  time.Duration
}

var _ suture.Service = (*Service)(nil)

func NewService(s *Store, interval time.Duration) *Service {
	return &Service{store: s, interval: interval, timeout: 10 * time.Second}
}

// Serve implements suture.Service.
func (s *Service) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
			s.save(final)
			cancel()
			return ctx.Err()
		case <-ticker.C:
			s.save(ctx)
		}
	}
}

func (s *Service) save(ctx context.Context) {
	if _, err := s.store.Save(ctx); err != nil {
		s.store.logger.Warn().Err(err).Msg("snapshot save failed")
	}
}

func (s *Service) String() string { return "snapshot" }
