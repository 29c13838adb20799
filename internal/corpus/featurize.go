package corpus

import (
	"context"

	"pawlift/internal/feature"
)

// FeaturizeAll extracts and stores feature vectors for every post that has
// none yet, returning how many were filled. Extraction is total, so a pass
// over the corpus always converges.
func (d *DB) FeaturizeAll(ctx context.Context, ex *feature.Extractor) (int, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT id, title, body FROM posts WHERE features IS NULL`)
	if err != nil {
		return 0, err
	}
	type pending struct {
		id          int64
		title, body string
	}
	var todo []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.title, &p.body); err != nil {
			rows.Close()
			return 0, err
		}
		todo = append(todo, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for i, p := range todo {
		text := composeText(p.title, p.body)
		vec := ex.Extract(text)
		if err := d.UpdateFeatures(ctx, p.id, vec.Values()); err != nil {
			return i, err
		}
	}
	return len(todo), nil
}

func composeText(title, body string) string {
	if title == "" {
		return body
	}
	if body == "" {
		return title
	}
	return title + "\n" + body
}

// Text reassembles the scored text the way the extractor sees it: the
// title as the first line, then the body.
func (p Post) Text() string { return composeText(p.Title, p.Body) }
