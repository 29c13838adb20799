// Package evaluate measures trained models against the labeled corpus:
// RMSE and R² for the regressor, accuracy and a confusion table for the
// classifier.
package evaluate

import (
	"context"
	"fmt"
	"math"

	"pawlift/internal/corpus"
	"pawlift/internal/feature"
	"pawlift/internal/predict"
)

// Sample is one labeled evaluation row.
type Sample struct {
	Vector feature.Vector
	Label  predict.Label
	Target float64
}

// LoadSamples pulls the labeled posts of a kind and wraps their stored
// feature vectors. Posts without extracted features are skipped; run the
// featurize pass first if that matters.
func LoadSamples(ctx context.Context, db *corpus.DB, schema *feature.Schema, kind string) ([]Sample, error) {
	posts, err := db.LoadPosts(ctx, kind, true)
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, p := range posts {
		if len(p.Features) == 0 {
			continue
		}
		v, err := feature.NewVector(schema, p.Features)
		if err != nil {
			return nil, fmt.Errorf("post %s/%s: %w", p.Source, p.SourceID, err)
		}
		out = append(out, Sample{Vector: v, Label: predict.Label(p.Label), Target: p.Engagement})
	}
	return out, nil
}

// RegressionReport is the regressor's fit on a sample set.
type RegressionReport struct {
	Samples int     `json:"samples"`
	RMSE    float64 `json:"rmse"`
	R2      float64 `json:"r2"`
}

// Regression scores the kind's regressor over samples. Predictions stay
// unclamped, exactly as callers receive them.
func Regression(p *predict.Params, kind feature.Kind, samples []Sample) (RegressionReport, error) {
	if len(samples) == 0 {
		return RegressionReport{}, fmt.Errorf("no labeled samples")
	}
	var sumSq, sumTarget float64
	preds := make([]float64, len(samples))
	for i, s := range samples {
		pred, err := predict.Regress(p, kind, s.Vector)
		if err != nil {
			return RegressionReport{}, err
		}
		preds[i] = pred
		sumSq += (pred - s.Target) * (pred - s.Target)
		sumTarget += s.Target
	}
	n := float64(len(samples))
	mean := sumTarget / n

	var ssTot float64
	for _, s := range samples {
		ssTot += (s.Target - mean) * (s.Target - mean)
	}
	report := RegressionReport{
		Samples: len(samples),
		RMSE:    math.Sqrt(sumSq / n),
	}
	if ssTot > 0 {
		report.R2 = 1 - sumSq/ssTot
	}
	// Constant targets leave no variance to explain; R2 stays 0.
	return report, nil
}

// ClassifierReport is the classifier's confusion table on a sample set.
// HIGH is the positive class.
type ClassifierReport struct {
	Samples   int     `json:"samples"`
	TP        int     `json:"tp"`
	FP        int     `json:"fp"`
	TN        int     `json:"tn"`
	FN        int     `json:"fn"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Classifier scores the kind's classifier over samples at the given
// decision threshold.
func Classifier(p *predict.Params, kind feature.Kind, samples []Sample, threshold float64) (ClassifierReport, error) {
	if len(samples) == 0 {
		return ClassifierReport{}, fmt.Errorf("no labeled samples")
	}
	var report ClassifierReport
	report.Samples = len(samples)
	for _, s := range samples {
		pred, _, err := predict.Classify(p, kind, s.Vector, threshold)
		if err != nil {
			return ClassifierReport{}, err
		}
		switch {
		case pred == predict.High && s.Label == predict.High:
			report.TP++
		case pred == predict.High && s.Label != predict.High:
			report.FP++
		case pred == predict.Low && s.Label != predict.High:
			report.TN++
		default:
			report.FN++
		}
	}
	n := float64(report.Samples)
	report.Accuracy = float64(report.TP+report.TN) / n
	if report.TP+report.FP > 0 {
		report.Precision = float64(report.TP) / float64(report.TP+report.FP)
	}
	if report.TP+report.FN > 0 {
		report.Recall = float64(report.TP) / float64(report.TP+report.FN)
	}
	if report.Precision+report.Recall > 0 {
		report.F1 = 2 * report.Precision * report.Recall / (report.Precision + report.Recall)
	}
	return report, nil
}
