package jobs

import (
	"context"

	"github.com/robfig/cron/v3"

	"pawlift/internal/config"
	"pawlift/internal/corpus"
	"pawlift/internal/feature"
	"pawlift/internal/logging"
)

// StartSchedule starts the serve-mode cron: each tick refreshes the corpus
// and stores a divergence snapshot. An empty cron spec disables scheduling
// and returns nil. Callers stop the returned cron on shutdown.
func StartSchedule(ctx context.Context, db *corpus.DB, ex *feature.Extractor, cfg config.Config) (*cron.Cron, error) {
	if cfg.Snapshot.Cron == "" {
		return nil, nil
	}
	c := cron.New()
	_, err := c.AddFunc(cfg.Snapshot.Cron, func() {
		if _, err := RunRefreshOnce(ctx, db, ex, cfg); err != nil {
			logging.Error("scheduled refresh failed", map[string]any{"err": err.Error()})
			return
		}
		if _, err := RunSnapshotOnce(ctx, db, ex.Schema(), cfg.Snapshot.TopWords); err != nil {
			logging.Error("scheduled snapshot failed", map[string]any{"err": err.Error()})
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logging.Info("snapshot schedule started", map[string]any{"cron": cfg.Snapshot.Cron})
	return c, nil
}
