package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/redisplay/simple-gallery/internal/tenant"
)

// Scheduler runs the nightly orphan sweep. Picture deletion is
// metadata-first: a blob whose file removal failed stays on disk with no row
// pointing at it, and this job is what eventually reclaims it.
type Scheduler struct {
	cron     *cron.Cron
	registry *tenant.Registry
	log      zerolog.Logger
}

func NewScheduler(registry *tenant.Registry, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		registry: registry,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 30 3 * * *", s.sweepOrphans); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits for any running sweep to finish, up to a bounded grace period.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) sweepOrphans() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	keys, err := s.registry.DiscoverKeys()
	if err != nil {
		s.log.Error().Err(err).Msg("discover galleries failed")
		return
	}

	for _, key := range keys {
		if err := s.sweepGallery(ctx, key); err != nil {
			s.log.Error().Err(err).Str("gallery", key).Msg("orphan sweep failed")
		}
	}
}

func (s *Scheduler) sweepGallery(ctx context.Context, key string) error {
	g, err := s.registry.Get(ctx, key)
	if err != nil {
		return err
	}

	pictures, err := g.Pictures.List(ctx, "", 0, 0)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(pictures))
	for _, p := range pictures {
		known[p.Filename] = struct{}{}
	}

	blobs, err := g.Blobs.List(ctx)
	if err != nil {
		return err
	}

	removed := 0
	for _, name := range blobs {
		if _, ok := known[name]; ok {
			continue
		}
		if err := g.Blobs.Delete(ctx, name); err != nil {
			s.log.Warn().Err(err).Str("gallery", key).Str("blob", name).Msg("orphan removal failed")
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log.Info().Str("gallery", key).Int("removed", removed).Msg("orphan blobs swept")
	}
	return nil
}
