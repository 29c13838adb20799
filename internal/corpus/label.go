package corpus

import (
	"context"
	"math"
	"sort"

	"pawlift/internal/logging"
	"pawlift/internal/predict"
)

// EngagementScore is the composite engagement measure a post is labeled by.
// Comments weigh half an upvote.
func EngagementScore(score float64, numComments int) float64 {
	return score + 0.5*float64(numComments)
}

// LabelStats summarizes one relabeling pass over a kind.
type LabelStats struct {
	Kind    string
	Total   int
	High    int
	Low     int
	Dropped int
	HighCut float64
	LowCut  float64
}

// Relabel recomputes HIGH/LOW labels for every post of a kind from the
// engagement distribution: HIGH at or above the highQ quantile, LOW at or
// below the lowQ quantile, the band between left unlabeled. Cut points are
// persisted so later ingests can be judged against the same calibration.
// An empty kind corpus is a no-op.
func (d *DB) Relabel(ctx context.Context, kind string, highQ, lowQ float64) (LabelStats, error) {
	stats := LabelStats{Kind: kind}

	rows, err := d.sql.QueryContext(ctx, `SELECT engagement FROM posts WHERE kind=?`, kind)
	if err != nil {
		return stats, err
	}
	var engagements []float64
	for rows.Next() {
		var e float64
		if err := rows.Scan(&e); err != nil {
			rows.Close()
			return stats, err
		}
		engagements = append(engagements, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return stats, err
	}
	if len(engagements) == 0 {
		return stats, nil
	}

	sort.Float64s(engagements)
	highCut := quantile(engagements, highQ)
	lowCut := quantile(engagements, lowQ)
	stats.Total = len(engagements)
	stats.HighCut = highCut
	stats.LowCut = lowCut

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return stats, err
	}
	defer tx.Rollback()

	// LOW first so HIGH wins when the cuts collide on heavy ties.
	if _, err := tx.ExecContext(ctx, `UPDATE posts SET label=? WHERE kind=? AND engagement<=?`,
		string(predict.Low), kind, lowCut); err != nil {
		return stats, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE posts SET label=? WHERE kind=? AND engagement>=?`,
		string(predict.High), kind, highCut); err != nil {
		return stats, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE posts SET label=NULL WHERE kind=? AND engagement>? AND engagement<?`,
		kind, lowCut, highCut); err != nil {
		return stats, err
	}
	if err := tx.Commit(); err != nil {
		return stats, err
	}
	if err := d.saveCuts(ctx, kind, highCut, lowCut); err != nil {
		return stats, err
	}

	row := d.sql.QueryRowContext(ctx, `SELECT
	  SUM(CASE WHEN label=? THEN 1 ELSE 0 END),
	  SUM(CASE WHEN label=? THEN 1 ELSE 0 END),
	  SUM(CASE WHEN label IS NULL THEN 1 ELSE 0 END)
	  FROM posts WHERE kind=?`, string(predict.High), string(predict.Low), kind)
	if err := row.Scan(&stats.High, &stats.Low, &stats.Dropped); err != nil {
		return stats, err
	}

	logging.Info("corpus relabeled", map[string]any{
		"kind": kind, "total": stats.Total, "high": stats.High,
		"low": stats.Low, "dropped": stats.Dropped,
		"high_cut": stats.HighCut, "low_cut": stats.LowCut,
	})
	return stats, nil
}

// quantile interpolates linearly over an ascending-sorted sample.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
