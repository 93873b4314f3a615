package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// DecisionTree is a classification tree exported by the training pipeline as JSON.
// Leaves carry per-class sample counts, which are normalised once at load.
type DecisionTree struct {
	labels       []string
	featureCount int
	nodes        []TreeNode
}

type TreeNode struct {
	FeatureIdx int       `json:"feature_idx"`
	Threshold  float64   `json:"threshold"`
	LeftChild  int       `json:"left_child"`
	RightChild int       `json:"right_child"`
	Value      []float64 `json:"value,omitempty"`
	IsLeaf     bool      `json:"is_leaf"`
}

type treeArtifact struct {
	Labels       []string   `json:"labels"`
	FeatureCount int        `json:"feature_count"`
	Nodes        []TreeNode `json:"nodes"`
}

// NewDecisionTree validates nodes and normalises leaf values into probabilities.
func NewDecisionTree(labels []string, featureCount int, nodes []TreeNode) (*DecisionTree, error) {
	if len(labels) == 0 {
		return nil, errors.New("tree has no class labels")
	}
	if featureCount <= 0 {
		return nil, errors.New("tree feature count must be positive")
	}
	if len(nodes) == 0 {
		return nil, errors.New("tree has no nodes")
	}

	normalized := make([]TreeNode, len(nodes))
	for i, node := range nodes {
		if node.IsLeaf {
			probs, err := normalizeLeaf(node.Value, len(labels))
			if err != nil {
				return nil, fmt.Errorf("leaf %d: %w", i, err)
			}
			node.Value = probs
		} else {
			if node.FeatureIdx < 0 || node.FeatureIdx >= featureCount {
				return nil, fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
			}
			if !validChild(node.LeftChild, i, len(nodes)) || !validChild(node.RightChild, i, len(nodes)) {
				return nil, fmt.Errorf("node %d: invalid children", i)
			}
		}
		normalized[i] = node
	}

	return &DecisionTree{
		labels:       append([]string(nil), labels...),
		featureCount: featureCount,
		nodes:        normalized,
	}, nil
}

// LoadDecisionTree reads a tree artifact from path.
func LoadDecisionTree(path string) (*DecisionTree, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact treeArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, err
	}
	return NewDecisionTree(artifact.Labels, artifact.FeatureCount, artifact.Nodes)
}

func (dt *DecisionTree) Labels() []string { return append([]string(nil), dt.labels...) }

func (dt *DecisionTree) FeatureCount() int { return dt.featureCount }

// ConcurrencySafe is true: the tree is never mutated after load.
func (dt *DecisionTree) ConcurrencySafe() bool { return true }

func (dt *DecisionTree) PredictProba(features []float64) ([]float64, error) {
	if len(dt.nodes) == 0 {
		return nil, errors.New("model not loaded")
	}
	if len(features) != dt.featureCount {
		return nil, fmt.Errorf("expected %d features, got %d", dt.featureCount, len(features))
	}
	idx := 0
	for steps := 0; steps <= len(dt.nodes); steps++ {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return append([]float64(nil), node.Value...), nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
	return nil, errors.New("invalid tree state")
}

func (dt *DecisionTree) Save(path string) error {
	if len(dt.nodes) == 0 {
		return errors.New("model not loaded")
	}
	payload, err := json.Marshal(treeArtifact{
		Labels:       dt.labels,
		FeatureCount: dt.featureCount,
		Nodes:        dt.nodes,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func normalizeLeaf(values []float64, classes int) ([]float64, error) {
	if len(values) != classes {
		return nil, fmt.Errorf("expected %d class values, got %d", classes, len(values))
	}
	total := 0.0
	for _, v := range values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid class value %v", v)
		}
		total += v
	}
	if total == 0 {
		return nil, errors.New("leaf has no samples")
	}
	probs := make([]float64, len(values))
	for i, v := range values {
		probs[i] = v / total
	}
	return probs, nil
}

// children always point forward, which rules out cycles
func validChild(child, parent, count int) bool {
	return child > parent && child < count
}
