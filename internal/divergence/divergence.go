// Package divergence contrasts two feature-vector populations, surfacing
// which features separate cat posts from dog posts. It also carries the
// closed-vocabulary word split heuristic used by the demo lexicon.
package divergence

import (
	"math"
	"sort"

	"pawlift/internal/feature"
	"pawlift/internal/predict"
)

// tieEpsilon bounds what counts as no contrast between populations.
const tieEpsilon = 1e-6

// Contrast is one feature's population-mean comparison. Delta is
// MeanA - MeanB; Tie marks deltas too small to distinguish the classes.
type Contrast struct {
	Feature string  `json:"feature"`
	MeanA   float64 `json:"mean_a"`
	MeanB   float64 `json:"mean_b"`
	Delta   float64 `json:"delta"`
	Tie     bool    `json:"tie"`
}

// Compare computes per-feature population means over both populations and
// returns one Contrast per schema field, ordered by descending delta.
// Either population being empty yields an empty result: means over nothing
// are not a comparison. All vectors must share one schema.
func Compare(popA, popB []feature.Vector) ([]Contrast, error) {
	if len(popA) == 0 || len(popB) == 0 {
		return []Contrast{}, nil
	}
	schema := popA[0].Schema()
	meansA, err := means(schema, popA)
	if err != nil {
		return nil, err
	}
	meansB, err := means(schema, popB)
	if err != nil {
		return nil, err
	}

	names := schema.FieldNames()
	out := make([]Contrast, 0, len(names))
	for i, name := range names {
		delta := meansA[i] - meansB[i]
		out = append(out, Contrast{
			Feature: name,
			MeanA:   meansA[i],
			MeanB:   meansB[i],
			Delta:   delta,
			Tie:     math.Abs(delta) < tieEpsilon,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Delta > out[j].Delta })
	return out, nil
}

func means(schema *feature.Schema, pop []feature.Vector) ([]float64, error) {
	sums := make([]float64, schema.Len())
	for _, v := range pop {
		s := v.Schema()
		if s == nil || !schema.SameShape(s) {
			got := "none"
			if s != nil {
				got = s.Version
			}
			return nil, &predict.SchemaMismatchError{
				Want: schema.Version, Got: got,
				Detail: "population vectors disagree on schema",
			}
		}
		for i := 0; i < v.Len(); i++ {
			sums[i] += v.At(i)
		}
	}
	n := float64(len(pop))
	for i := range sums {
		sums[i] /= n
	}
	return sums, nil
}
