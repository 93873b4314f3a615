package ml

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProbs(t *testing.T, labels []string, probs []float64) ClassProbabilities {
	t.Helper()
	cp, err := NewClassProbabilities(labels, probs)
	require.NoError(t, err)
	return cp
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name         string
		labels       []string
		probs        []float64
		label        string
		probability  float64
		inconclusive bool
	}{
		{
			name:   "confident occupied",
			labels: []string{"Occupied", "Vacant"}, probs: []float64{0.82, 0.18},
			label: "Occupied", probability: 0.82,
		},
		{
			name:   "near threshold still definitive",
			labels: []string{"Occupied", "Vacant"}, probs: []float64{0.45, 0.55},
			label: "Vacant", probability: 0.55,
		},
		{
			name:   "below threshold",
			labels: []string{"Occupied", "Vacant", "Unknown"}, probs: []float64{0.4, 0.4, 0.2},
			probability: 0.4, inconclusive: true,
		},
		{
			name:   "exactly threshold is definitive",
			labels: []string{"Occupied", "Vacant"}, probs: []float64{0.5, 0.5},
			label: "Occupied", probability: 0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probs := mustProbs(t, tt.labels, tt.probs)
			result := Decide(probs, DefaultThreshold)

			assert.Equal(t, tt.inconclusive, result.Inconclusive)
			assert.Equal(t, tt.label, result.Label)
			assert.Equal(t, tt.probability, result.Probability)
			assert.Equal(t, DefaultThreshold, result.Threshold)
			assert.Equal(t, probs.Entries(), result.Probabilities.Entries())
		})
	}
}

func TestDecideTieBreaksOnLabelOrder(t *testing.T) {
	forward := Decide(mustProbs(t, []string{"Occupied", "Vacant", "Unknown"}, []float64{0.4, 0.4, 0.2}), 0.3)
	assert.Equal(t, "Occupied", forward.Label)

	reversed := Decide(mustProbs(t, []string{"Vacant", "Occupied", "Unknown"}, []float64{0.4, 0.4, 0.2}), 0.3)
	assert.Equal(t, "Vacant", reversed.Label)

	for i := 0; i < 10; i++ {
		again := Decide(mustProbs(t, []string{"Occupied", "Vacant", "Unknown"}, []float64{0.4, 0.4, 0.2}), 0.3)
		assert.Equal(t, forward, again)
	}
}

func TestDecideInconclusiveKeepsTopLabel(t *testing.T) {
	result := Decide(mustProbs(t, []string{"Occupied", "Vacant", "Unknown"}, []float64{0.3, 0.45, 0.25}), 0.5)
	assert.True(t, result.Inconclusive)
	assert.Empty(t, result.Label)
	assert.Equal(t, "Vacant", result.TopLabel())
	assert.Equal(t, 3, result.Probabilities.Len())
}

func TestNewClassProbabilities(t *testing.T) {
	probs := mustProbs(t, []string{"Occupied", "Vacant"}, []float64{0.7, 0.3})
	assert.InDelta(t, 1.0, probs.Sum(), ProbabilityTolerance)
	p, ok := probs.Get("Vacant")
	require.True(t, ok)
	assert.Equal(t, 0.3, p)
	_, ok = probs.Get("Unknown")
	assert.False(t, ok)

	payload, err := json.Marshal(probs)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"label":"Occupied","probability":0.7},{"label":"Vacant","probability":0.3}]`, string(payload))

	_, err = NewClassProbabilities([]string{"A", "B"}, []float64{0.7, 0.2})
	assert.ErrorContains(t, err, "sum")
	_, err = NewClassProbabilities([]string{"A", "B"}, []float64{1.2, -0.2})
	assert.ErrorContains(t, err, "invalid probability")
	_, err = NewClassProbabilities([]string{"A", "A"}, []float64{0.5, 0.5})
	assert.ErrorContains(t, err, "duplicate")
	_, err = NewClassProbabilities([]string{"A"}, []float64{0.5, 0.5})
	assert.Error(t, err)
	_, err = NewClassProbabilities([]string{"A", "B"}, []float64{0.5, 0.5 + 5e-7})
	assert.NoError(t, err)
}
