package predict

import (
	"math"

	"pawlift/internal/feature"
	"pawlift/internal/metrics"
)

// Label is the binary engagement class.
type Label string

const (
	High Label = "HIGH"
	Low  Label = "LOW"
)

// DefaultThreshold is the positive-class probability cutoff when config
// supplies none.
const DefaultThreshold = 0.5

// Classify runs the logistic model for a pet kind over a vector and returns
// the label plus the positive-class probability. Pure in (params, vector);
// the threshold is a caller knob and never requires retraining.
func Classify(p *Params, kind feature.Kind, v feature.Vector, threshold float64) (Label, float64, error) {
	if err := p.checkVector(v); err != nil {
		metrics.SchemaMismatches.Inc()
		return "", 0, err
	}
	kp, err := p.Kind(kind)
	if err != nil {
		return "", 0, err
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	prob := sigmoid(linear(kp.Classifier, v))
	if prob >= threshold {
		return High, prob, nil
	}
	return Low, prob, nil
}

// Regress runs the linear model for a pet kind over a vector. Output is an
// unbounded engagement estimate; heavy-tailed magnitudes are legal and are
// never clamped.
func Regress(p *Params, kind feature.Kind, v feature.Vector) (float64, error) {
	if err := p.checkVector(v); err != nil {
		metrics.SchemaMismatches.Inc()
		return 0, err
	}
	kp, err := p.Kind(kind)
	if err != nil {
		return 0, err
	}
	return linear(kp.Regressor, v), nil
}

func linear(c Coefficients, v feature.Vector) float64 {
	z := c.Bias
	for i := 0; i < v.Len(); i++ {
		z += c.Weights[i] * v.At(i)
	}
	return z
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }
