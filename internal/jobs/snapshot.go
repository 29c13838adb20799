package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pawlift/internal/corpus"
	"pawlift/internal/divergence"
	"pawlift/internal/feature"
	"pawlift/internal/logging"
)

const snapshotName = "divergence"

// DivergencePayload is the persisted form of one divergence snapshot:
// feature contrasts between the dog and cat populations plus the
// corpus-derived word importance lexicon.
type DivergencePayload struct {
	DogPosts  int                   `json:"dog_posts"`
	CatPosts  int                   `json:"cat_posts"`
	Contrasts []divergence.Contrast `json:"contrasts"`
	Lexicon   divergence.Lexicon    `json:"lexicon"`
}

// RunSnapshotOnce computes the current corpus divergence and stores it
// under the snapshot history.
func RunSnapshotOnce(ctx context.Context, db *corpus.DB, schema *feature.Schema, topWords int) (DivergencePayload, error) {
	var payload DivergencePayload

	dogVecs, dogTexts, err := kindPopulation(ctx, db, schema, "dog")
	if err != nil {
		return payload, err
	}
	catVecs, catTexts, err := kindPopulation(ctx, db, schema, "cat")
	if err != nil {
		return payload, err
	}

	contrasts, err := divergence.Compare(dogVecs, catVecs)
	if err != nil {
		return payload, err
	}
	payload = DivergencePayload{
		DogPosts:  len(dogVecs),
		CatPosts:  len(catVecs),
		Contrasts: contrasts,
		Lexicon:   divergence.BuildLexicon(dogTexts, catTexts, topWords),
	}

	if err := db.PutSnapshot(ctx, time.Now().UTC(), snapshotName, payload); err != nil {
		return payload, err
	}
	logging.Info("divergence snapshot stored", map[string]any{
		"dog_posts": payload.DogPosts, "cat_posts": payload.CatPosts,
		"lexicon_words": len(payload.Lexicon),
	})
	return payload, nil
}

// LatestDivergence loads the most recent stored snapshot.
func LatestDivergence(ctx context.Context, db *corpus.DB) (DivergencePayload, time.Time, error) {
	var payload DivergencePayload
	snap, err := db.LoadLatestSnapshot(ctx, snapshotName)
	if err != nil {
		return payload, time.Time{}, err
	}
	if err := json.Unmarshal([]byte(snap.Payload), &payload); err != nil {
		return payload, time.Time{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return payload, snap.TakenAt, nil
}

// kindPopulation loads one pet kind's featurized vectors and raw texts.
// Posts without features yet contribute text only.
func kindPopulation(ctx context.Context, db *corpus.DB, schema *feature.Schema, kind string) ([]feature.Vector, []string, error) {
	posts, err := db.LoadPosts(ctx, kind, false)
	if err != nil {
		return nil, nil, err
	}
	var vecs []feature.Vector
	var texts []string
	for _, p := range posts {
		texts = append(texts, p.Text())
		if len(p.Features) == 0 {
			continue
		}
		v, err := feature.NewVector(schema, p.Features)
		if err != nil {
			return nil, nil, fmt.Errorf("post %d: %w", p.ID, err)
		}
		vecs = append(vecs, v)
	}
	return vecs, texts, nil
}
