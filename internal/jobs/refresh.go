// Package jobs bundles the recurring corpus work: pulling the collection
// pipeline's CSV exports into the store, featurizing new posts, relabeling
// by engagement quantile, and persisting divergence snapshots. Everything
// runs one-shot from the CLI or on a cron schedule in serve mode.
package jobs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pawlift/internal/config"
	"pawlift/internal/corpus"
	"pawlift/internal/feature"
	"pawlift/internal/logging"
	"pawlift/internal/metrics"
)

const csvCursorPrefix = "csv:"

// RefreshStats sums one refresh pass over the export directory.
type RefreshStats struct {
	Files      int
	Skipped    int
	Upserted   int
	Featurized int
	Labels     map[string]corpus.LabelStats
}

// RunRefreshOnce scans the CSV export directory, ingests files that changed
// since the last pass (tracked by a per-file mtime cursor), extracts
// features for new posts, and relabels both kinds. Unchanged files are
// skipped so the pass is cheap to run on a schedule.
func RunRefreshOnce(ctx context.Context, db *corpus.DB, ex *feature.Extractor, cfg config.Config) (RefreshStats, error) {
	start := time.Now()
	metrics.IngestRuns.Inc()
	stats := RefreshStats{Labels: make(map[string]corpus.LabelStats)}

	entries, err := os.ReadDir(cfg.Storage.CSVDir)
	if err != nil {
		metrics.IngestErrors.Inc()
		return stats, err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			metrics.IngestErrors.Inc()
			return stats, err
		}
		mtime := info.ModTime().UTC().Format(time.RFC3339Nano)
		key := csvCursorPrefix + entry.Name()
		if v, err := db.LoadCursor(ctx, key); err == nil && v == mtime {
			stats.Skipped++
			continue
		}

		in, err := db.IngestCSV(ctx, filepath.Join(cfg.Storage.CSVDir, entry.Name()))
		if err != nil {
			metrics.IngestErrors.Inc()
			return stats, err
		}
		stats.Files++
		stats.Upserted += in.Upserted
		_ = db.SaveCursor(ctx, key, mtime)
	}

	n, err := db.FeaturizeAll(ctx, ex)
	if err != nil {
		metrics.IngestErrors.Inc()
		return stats, err
	}
	stats.Featurized = n

	for _, kind := range []string{"dog", "cat"} {
		ls, err := db.Relabel(ctx, kind, cfg.Labels.HighQuantile, cfg.Labels.LowQuantile)
		if err != nil {
			metrics.IngestErrors.Inc()
			return stats, err
		}
		stats.Labels[kind] = ls
	}

	logging.Info("corpus refreshed", map[string]any{
		"files": stats.Files, "skipped": stats.Skipped,
		"upserted": stats.Upserted, "featurized": stats.Featurized,
	})
	metrics.ObserveIngestDuration(start)
	return stats, nil
}
