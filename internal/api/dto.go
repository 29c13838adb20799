package api

import (
	"pawlift/internal/divergence"
	"pawlift/internal/predict"
	"pawlift/internal/replacement"
)

// ScoreRequest carries one post to score. Kind may force "cat" or "dog";
// empty defers to detection from the text.
type ScoreRequest struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

// ScoreResponse is the scored post plus its extracted feature values.
type ScoreResponse struct {
	Text        string             `json:"text"`
	Kind        string             `json:"kind"`
	Label       string             `json:"label"`
	Probability float64            `json:"probability"`
	Score       float64            `json:"score"`
	Features    map[string]float64 `json:"features"`
}

func scoreFromPost(p *predict.ScoredPost) ScoreResponse {
	return ScoreResponse{
		Text:        p.Text,
		Kind:        string(p.Kind),
		Label:       string(p.Label),
		Probability: p.Probability,
		Score:       p.Score,
		Features:    p.Features.Map(),
	}
}

// SuggestRequest mirrors ScoreRequest for the suggestion loop.
type SuggestRequest struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

// DivergenceResponse contrasts the dog population (mean_a) against the cat
// population (mean_b) over the featurized corpus.
type DivergenceResponse struct {
	DogPosts  int                   `json:"dog_posts"`
	CatPosts  int                   `json:"cat_posts"`
	Contrasts []divergence.Contrast `json:"contrasts"`
}

// SplitResponse is the closed-vocabulary percentage split for a word
// selection.
type SplitResponse struct {
	Words  []string `json:"words"`
	DogPct int      `json:"dog_pct"`
	CatPct int      `json:"cat_pct"`
}

// ReplacementsResponse lists word replacement suggestions for one pet kind.
type ReplacementsResponse struct {
	Kind        string                   `json:"kind"`
	Suggestions []replacement.Suggestion `json:"suggestions"`
}
