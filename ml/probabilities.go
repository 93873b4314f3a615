package ml

import (
	"encoding/json"
	"fmt"
	"math"
)

// ProbabilityTolerance bounds how far a distribution may sum from 1.
const ProbabilityTolerance = 1e-6

// ClassProbability is one entry of a distribution.
type ClassProbability struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// ClassProbabilities is a distribution over the model's labels, kept in the
// model's label order.
type ClassProbabilities struct {
	entries []ClassProbability
}

// NewClassProbabilities pairs labels with probabilities and validates the distribution.
func NewClassProbabilities(labels []string, probs []float64) (ClassProbabilities, error) {
	if len(labels) == 0 {
		return ClassProbabilities{}, fmt.Errorf("no class labels")
	}
	if len(labels) != len(probs) {
		return ClassProbabilities{}, fmt.Errorf("got %d probabilities for %d labels", len(probs), len(labels))
	}
	seen := make(map[string]bool, len(labels))
	entries := make([]ClassProbability, len(labels))
	sum := 0.0
	for i, label := range labels {
		if seen[label] {
			return ClassProbabilities{}, fmt.Errorf("duplicate class label %q", label)
		}
		seen[label] = true
		p := probs[i]
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return ClassProbabilities{}, fmt.Errorf("invalid probability %v for %q", p, label)
		}
		sum += p
		entries[i] = ClassProbability{Label: label, Probability: p}
	}
	if math.Abs(sum-1) > ProbabilityTolerance {
		return ClassProbabilities{}, fmt.Errorf("probabilities sum to %v", sum)
	}
	return ClassProbabilities{entries: entries}, nil
}

// Entries returns the distribution in label order.
func (c ClassProbabilities) Entries() []ClassProbability {
	return append([]ClassProbability(nil), c.entries...)
}

func (c ClassProbabilities) Len() int { return len(c.entries) }

// Get returns the probability of label.
func (c ClassProbabilities) Get(label string) (float64, bool) {
	for _, e := range c.entries {
		if e.Label == label {
			return e.Probability, true
		}
	}
	return 0, false
}

func (c ClassProbabilities) Sum() float64 {
	sum := 0.0
	for _, e := range c.entries {
		sum += e.Probability
	}
	return sum
}

func (c ClassProbabilities) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.entries)
}
