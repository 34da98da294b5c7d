// Package regression wraps the pre-trained price model. The artifact is
// produced by the offline training run; this package only loads it and
// serves predictions.
package regression

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Model computes a raw price prediction from an encoded feature vector.
type Model interface {
	// Predict returns the raw model output for the feature vector,
	// honoring ctx for cancellation.
	Predict(ctx context.Context, features []float64) (float64, error)
}

// artifact mirrors the JSON layout written by the training script.
type artifact struct {
	Intercept float64   `json:"intercept"`
	Weights   []float64 `json:"weights"`
	Features  []string  `json:"features"`
}

// LinearModel implements Model with a fitted linear regression:
// intercept plus one weight per feature.
type LinearModel struct {
	intercept float64
	weights   []float64
	features  []string
}

// Load reads a model artifact from disk. The returned model is immutable.
func Load(path string) (*LinearModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadArtifact, err)
	}
	var a artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadArtifact, err)
	}
	if len(a.Weights) == 0 {
		return nil, fmt.Errorf("%w: no weights in %s", ErrBadArtifact, path)
	}
	return &LinearModel{
		intercept: a.Intercept,
		weights:   a.Weights,
		features:  a.Features,
	}, nil
}

// NewLinear builds a model from explicit coefficients. Intended for tests.
func NewLinear(intercept float64, weights ...float64) *LinearModel {
	return &LinearModel{intercept: intercept, weights: weights}
}

// Predict computes intercept + sum(weight_i * feature_i).
func (m *LinearModel) Predict(ctx context.Context, features []float64) (float64, error) {
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("prediction cancelled: %w", ctx.Err())
	default:
	}
	if len(features) != len(m.weights) {
		return 0, fmt.Errorf("%w: got %d features, model expects %d",
			ErrFeatureMismatch, len(features), len(m.weights))
	}
	out := m.intercept
	for i, f := range features {
		out += m.weights[i] * f
	}
	return out, nil
}

// FeatureCount reports the number of features the model was fitted on.
func (m *LinearModel) FeatureCount() int {
	return len(m.weights)
}

// FeatureNames returns the fitted feature order, if the artifact carried it.
func (m *LinearModel) FeatureNames() []string {
	out := make([]string, len(m.features))
	copy(out, m.features)
	return out
}
