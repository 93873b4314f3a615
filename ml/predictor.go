package ml

import (
	"context"
	"fmt"
)

// Predictor is the loaded schema and classifier behind every request. It holds
// no mutable state besides an optional cache and is safe for concurrent use.
type Predictor struct {
	schema     *FeatureSchema
	classifier *Classifier
	threshold  float64
	cache      *resultCache
}

// PredictorOption configures a Predictor.
type PredictorOption func(*Predictor) error

// WithThreshold sets the confidence threshold. It must lie in (0, 1].
func WithThreshold(threshold float64) PredictorOption {
	return func(p *Predictor) error {
		if threshold <= 0 || threshold > 1 {
			return fmt.Errorf("threshold %v outside (0, 1]", threshold)
		}
		p.threshold = threshold
		return nil
	}
}

// WithCache keeps up to size distributions keyed by feature vector. Zero disables caching.
func WithCache(size int) PredictorOption {
	return func(p *Predictor) error {
		if size <= 0 {
			p.cache = nil
			return nil
		}
		cache, err := newResultCache(size)
		if err != nil {
			return err
		}
		p.cache = cache
		return nil
	}
}

// NewPredictor checks that schema and classifier agree on the feature count.
func NewPredictor(schema *FeatureSchema, classifier *Classifier, opts ...PredictorOption) (*Predictor, error) {
	if schema.Len() != classifier.FeatureCount() {
		return nil, schemaErr("", fmt.Sprintf("schema has %d features, model expects %d",
			schema.Len(), classifier.FeatureCount()), nil)
	}
	p := &Predictor{
		schema:     schema,
		classifier: classifier,
		threshold:  DefaultThreshold,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Predictor) Schema() *FeatureSchema { return p.schema }

func (p *Predictor) Labels() []string { return p.classifier.Labels() }

func (p *Predictor) Threshold() float64 { return p.threshold }

// Predict builds the feature vector, classifies it and applies the threshold.
func (p *Predictor) Predict(ctx context.Context, input RawInput) (PredictionResult, error) {
	vector, err := BuildFeatureVector(p.schema, input)
	if err != nil {
		return PredictionResult{}, err
	}

	if p.cache != nil {
		if probs, ok := p.cache.get(vector); ok {
			return Decide(probs, p.threshold), nil
		}
	}

	probs, err := p.classifier.Classify(ctx, vector)
	if err != nil {
		return PredictionResult{}, err
	}
	if p.cache != nil {
		p.cache.add(vector, probs)
	}
	return Decide(probs, p.threshold), nil
}
