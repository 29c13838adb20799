package corpus

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pawlift/internal/logging"
)

// IngestStats summarizes one CSV ingest.
type IngestStats struct {
	File     string
	Kind     string
	Rows     int
	Upserted int
	Skipped  int
}

// KindFromFilename maps an export filename to the pet kind it holds.
// The collection pipeline names its exports cat_posts.csv / dog_posts.csv.
func KindFromFilename(path string) string {
	base := strings.ToLower(filepath.Base(path))
	if strings.Contains(base, "cat") {
		return "cat"
	}
	return "dog"
}

// IngestCSV reads one collection-pipeline export and upserts every row.
// Expected header columns: id, title, body, score, num_comments, and
// optionally created_utc. Rows with unparseable numbers or no text are
// skipped, not fatal. Re-running over the same file is idempotent.
func (d *DB) IngestCSV(ctx context.Context, path string) (IngestStats, error) {
	stats := IngestStats{File: filepath.Base(path), Kind: KindFromFilename(path)}

	file, err := os.Open(path)
	if err != nil {
		return stats, fmt.Errorf("open export: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return stats, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"id", "score", "num_comments"} {
		if _, ok := col[required]; !ok {
			return stats, fmt.Errorf("export %s missing column %q", stats.File, required)
		}
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read row: %w", err)
		}
		stats.Rows++

		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		id := field("id")
		title := field("title")
		body := field("body")
		if id == "" || (title == "" && body == "") {
			stats.Skipped++
			continue
		}
		score, err := strconv.ParseFloat(field("score"), 64)
		if err != nil {
			stats.Skipped++
			continue
		}
		comments, err := strconv.Atoi(field("num_comments"))
		if err != nil {
			stats.Skipped++
			continue
		}
		var created time.Time
		if raw := field("created_utc"); raw != "" {
			if sec, err := strconv.ParseFloat(raw, 64); err == nil {
				created = time.Unix(int64(sec), 0).UTC()
			}
		}

		p := Post{
			Source:      stats.File,
			SourceID:    id,
			Kind:        stats.Kind,
			Title:       title,
			Body:        body,
			Score:       score,
			NumComments: comments,
			Engagement:  EngagementScore(score, comments),
			CreatedAt:   created,
		}
		if err := d.UpsertPost(ctx, p); err != nil {
			return stats, fmt.Errorf("upsert %s/%s: %w", stats.File, id, err)
		}
		stats.Upserted++
	}

	logging.Info("csv ingested", map[string]any{
		"file": stats.File, "kind": stats.Kind, "rows": stats.Rows,
		"upserted": stats.Upserted, "skipped": stats.Skipped,
	})
	return stats, nil
}
