// Package estimate implements the price estimation pipeline: normalize,
// encode, predict, then sanity-check the model output against the manual
// total.
package estimate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nandira/taksir/internal/domain/encoder"
	"github.com/nandira/taksir/internal/domain/model"
	"github.com/nandira/taksir/internal/domain/regression"
	"github.com/nandira/taksir/pkg/metrics"
)

// Default plausibility bounds. A model output outside
// [MinRatio*manual, MaxRatio*manual] or above AbsoluteCap is replaced by
// the manual total. Lossy heuristic against extrapolation on
// out-of-distribution inputs, not a statistical bound.
const (
	DefaultMaxRatio    = 3.0
	DefaultMinRatio    = 0.3
	DefaultAbsoluteCap = 100_000_000
)

// Bounds holds the plausibility-correction thresholds.
type Bounds struct {
	MaxRatio    float64
	MinRatio    float64
	AbsoluteCap float64
}

// DefaultBounds returns the trained-in correction thresholds.
func DefaultBounds() Bounds {
	return Bounds{
		MaxRatio:    DefaultMaxRatio,
		MinRatio:    DefaultMinRatio,
		AbsoluteCap: DefaultAbsoluteCap,
	}
}

// Estimator runs the pipeline over an immutable model and encoder bank.
type Estimator struct {
	bank   *encoder.Bank
	model  regression.Model
	bounds Bounds
	now    func() time.Time
}

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithBounds overrides the plausibility-correction thresholds.
func WithBounds(b Bounds) Option {
	return func(e *Estimator) {
		if b.MaxRatio > 0 {
			e.bounds.MaxRatio = b.MaxRatio
		}
		if b.MinRatio > 0 {
			e.bounds.MinRatio = b.MinRatio
		}
		if b.AbsoluteCap > 0 {
			e.bounds.AbsoluteCap = b.AbsoluteCap
		}
	}
}

// WithClock overrides the date-stamp clock.
func WithClock(now func() time.Time) Option {
	return func(e *Estimator) {
		if now != nil {
			e.now = now
		}
	}
}

// New constructs an Estimator over a fitted encoder bank and model.
func New(bank *encoder.Bank, m regression.Model, opts ...Option) *Estimator {
	e := &Estimator{
		bank:   bank,
		model:  m,
		bounds: DefaultBounds(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate runs the full pipeline over a raw form submission. On any
// error nothing is produced and nothing should be persisted by callers.
func (e *Estimator) Estimate(ctx context.Context, raw model.RawLineItem) (model.PredictionResult, error) {
	item, err := coerce(raw)
	if err != nil {
		return model.PredictionResult{}, err
	}

	features := []float64{
		float64(e.bank.Encode(model.FieldCity, item.City)),
		float64(e.bank.Encode(model.FieldLocation, item.Location)),
		float64(e.bank.Encode(model.FieldConstructionType, item.ConstructionType)),
		float64(e.bank.Encode(model.FieldWorkType, item.WorkType)),
		float64(e.bank.Encode(model.FieldWorkDescription, item.WorkDescription)),
		float64(e.bank.Encode(model.FieldUnit, item.Unit)),
		item.Volume,
		item.UnitPrice,
	}

	raw0, err := e.model.Predict(ctx, features)
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("%w: %w", ErrModel, err)
	}

	prediction := raw0
	if prediction < 0 {
		prediction = 0
	}
	prediction = e.correct(prediction, item.ManualTotal())

	return model.PredictionResult{
		LineItem:   item,
		Prediction: prediction,
		Category:   item.WorkType,
		Date:       e.now().Format("2006-01-02"),
	}, nil
}

// correct applies the plausibility rule: an implausible prediction is
// replaced wholesale by the manual total.
func (e *Estimator) correct(prediction, manualTotal float64) float64 {
	if prediction > manualTotal*e.bounds.MaxRatio ||
		prediction > e.bounds.AbsoluteCap ||
		prediction < manualTotal*e.bounds.MinRatio {
		metrics.RecordCorrection()
		return manualTotal
	}
	return prediction
}

// coerce normalizes string fields and parses the numeric ones.
func coerce(raw model.RawLineItem) (model.LineItem, error) {
	volume, err := parseAmount("volume", raw.Volume)
	if err != nil {
		return model.LineItem{}, err
	}
	unitPrice, err := parseAmount("unit_price", raw.UnitPrice)
	if err != nil {
		return model.LineItem{}, err
	}
	return model.LineItem{
		City:             normalize(raw.City),
		Location:         normalize(raw.Location),
		ConstructionType: normalize(raw.ConstructionType),
		WorkType:         normalize(raw.WorkType),
		WorkDescription:  normalize(raw.WorkDescription),
		Volume:           volume,
		Unit:             normalize(raw.Unit),
		UnitPrice:        unitPrice,
	}, nil
}

func parseAmount(field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrValidation, field)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not numeric", ErrValidation, field)
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrValidation, field)
	}
	return f, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
