package ml

import (
	"fmt"
)

const (
	ModelTypeDecisionTree = "decision_tree"
	ModelTypeONNX         = "onnx"
)

// LoadModel opens a model artifact of the given type. Failures are fatal at
// startup and come back as *SchemaLoadError.
func LoadModel(modelType, path string, onnxOpts ONNXOptions) (Model, error) {
	switch modelType {
	case ModelTypeDecisionTree:
		model, err := LoadDecisionTree(path)
		if err != nil {
			return nil, schemaErr(path, "load decision tree", err)
		}
		return model, nil
	case ModelTypeONNX:
		model, err := LoadONNXModel(path, onnxOpts)
		if err != nil {
			return nil, schemaErr(path, "load onnx model", err)
		}
		return model, nil
	default:
		return nil, schemaErr(path, fmt.Sprintf("unsupported model type %q", modelType), nil)
	}
}
