package ml

import (
	"context"
	"fmt"
	"sync"
)

// Classifier adapts a Model to the prediction pipeline: it checks the input
// width, validates the output distribution and serialises models that are not
// safe for concurrent use.
type Classifier struct {
	model        Model
	labels       []string
	featureCount int
	mu           *sync.Mutex
}

// NewClassifier validates the model's labels and feature count once.
func NewClassifier(model Model) (*Classifier, error) {
	labels := model.Labels()
	if len(labels) == 0 {
		return nil, schemaErr("model", "model has no class labels", nil)
	}
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		if seen[label] {
			return nil, schemaErr("model", fmt.Sprintf("duplicate class label %q", label), nil)
		}
		seen[label] = true
	}
	if model.FeatureCount() <= 0 {
		return nil, schemaErr("model", "model feature count must be positive", nil)
	}

	c := &Classifier{
		model:        model,
		labels:       labels,
		featureCount: model.FeatureCount(),
	}
	if r, ok := model.(ConcurrencyReporter); !ok || !r.ConcurrencySafe() {
		c.mu = &sync.Mutex{}
	}
	return c, nil
}

func (c *Classifier) Labels() []string { return append([]string(nil), c.labels...) }

func (c *Classifier) FeatureCount() int { return c.featureCount }

// Classify returns the model's distribution for vector. Every failure is a *ClassificationError.
func (c *Classifier) Classify(ctx context.Context, vector FeatureVector) (ClassProbabilities, error) {
	if err := ctx.Err(); err != nil {
		return ClassProbabilities{}, classificationErr("request cancelled", err)
	}
	if len(vector) != c.featureCount {
		return ClassProbabilities{}, classificationErr(
			fmt.Sprintf("feature vector has %d entries, model expects %d", len(vector), c.featureCount), nil)
	}

	raw, err := c.predict(vector)
	if err != nil {
		return ClassProbabilities{}, classificationErr("model call failed", err)
	}
	probs, err := NewClassProbabilities(c.labels, raw)
	if err != nil {
		return ClassProbabilities{}, classificationErr("malformed model output", err)
	}
	return probs, nil
}

func (c *Classifier) predict(vector FeatureVector) (probs []float64, err error) {
	if c.mu != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
	}
	defer func() {
		if r := recover(); r != nil {
			probs, err = nil, fmt.Errorf("model panicked: %v", r)
		}
	}()
	return c.model.PredictProba(vector)
}
