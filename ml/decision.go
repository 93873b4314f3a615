package ml

// DefaultThreshold is the minimum top-class probability for a definitive answer.
const DefaultThreshold = 0.5

// InconclusiveMessage is shown in place of a label when confidence is too low.
const InconclusiveMessage = "Model not confident enough to make a prediction."

// PredictionResult is a definitive label or an inconclusive marker. The top
// probability and the full distribution are present either way.
type PredictionResult struct {
	Label         string             `json:"label,omitempty"`
	Probability   float64            `json:"probability"`
	Inconclusive  bool               `json:"inconclusive"`
	Threshold     float64            `json:"threshold"`
	Probabilities ClassProbabilities `json:"probabilities"`
}

// TopLabel is the highest-probability class, set even when inconclusive.
func (r PredictionResult) TopLabel() string {
	top, _ := argmax(r.Probabilities)
	return top.Label
}

// Decide picks the most probable class, first label winning ties, and reports
// it when its probability is at least threshold. The comparison is inclusive,
// so a top probability equal to threshold is definitive.
func Decide(probs ClassProbabilities, threshold float64) PredictionResult {
	result := PredictionResult{
		Threshold:     threshold,
		Probabilities: probs,
	}
	top, ok := argmax(probs)
	if !ok {
		result.Inconclusive = true
		return result
	}
	result.Probability = top.Probability
	if top.Probability < threshold {
		result.Inconclusive = true
		return result
	}
	result.Label = top.Label
	return result
}

func argmax(probs ClassProbabilities) (ClassProbability, bool) {
	if len(probs.entries) == 0 {
		return ClassProbability{}, false
	}
	best := probs.entries[0]
	for _, e := range probs.entries[1:] {
		if e.Probability > best.Probability {
			best = e
		}
	}
	return best, true
}
