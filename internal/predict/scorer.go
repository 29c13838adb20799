package predict

import (
	"pawlift/internal/feature"
	"pawlift/internal/metrics"
)

// ScoredPost is one fully scored text. It is never mutated; rescoring a
// revision produces a fresh value.
type ScoredPost struct {
	Text        string         `json:"text"`
	Kind        feature.Kind   `json:"kind"`
	Features    feature.Vector `json:"-"`
	Label       Label          `json:"label"`
	Probability float64        `json:"probability"`
	Score       float64        `json:"score"`
}

// Scorer composes extraction, classification, and regression behind one call.
type Scorer struct {
	Extractor *feature.Extractor
	Handle    *Handle
	Threshold float64
}

// NewScorer wires a scorer over a model handle.
func NewScorer(ex *feature.Extractor, h *Handle, threshold float64) *Scorer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Scorer{Extractor: ex, Handle: h, Threshold: threshold}
}

// Score extracts and scores text. kindOverride may force "cat" or "dog";
// anything else defers to detection.
func (s *Scorer) Score(text, kindOverride string) (*ScoredPost, error) {
	params, err := s.Handle.Params()
	if err != nil {
		return nil, err
	}
	kind := feature.ParseKind(kindOverride, text)
	vec := s.Extractor.Extract(text)
	label, prob, err := Classify(params, kind, vec, s.Threshold)
	if err != nil {
		return nil, err
	}
	score, err := Regress(params, kind, vec)
	if err != nil {
		return nil, err
	}
	metrics.IncPrediction(string(kind), string(label))
	return &ScoredPost{
		Text:        text,
		Kind:        kind,
		Features:    vec,
		Label:       label,
		Probability: prob,
		Score:       score,
	}, nil
}
