package ml

import (
	"errors"
	"fmt"
	"sync"

	onnxruntime "github.com/yalue/onnxruntime_go"
)

// ONNXOptions describes how to drive an exported ONNX classifier.
type ONNXOptions struct {
	// SharedLibraryPath points at libonnxruntime; empty uses the platform default.
	SharedLibraryPath string
	InputName         string
	ProbabilityOutput string
	Labels            []string
	FeatureCount      int
}

var (
	onnxInitOnce sync.Once
	onnxInitErr  error
)

// ONNXModel wraps an ONNX Runtime session that outputs a [1, classes] float32
// probability tensor. Sessions are not shared between goroutines.
type ONNXModel struct {
	session      *onnxruntime.DynamicAdvancedSession
	labels       []string
	featureCount int
}

// LoadONNXModel loads an ONNX model from file
func LoadONNXModel(path string, opts ONNXOptions) (*ONNXModel, error) {
	if len(opts.Labels) == 0 {
		return nil, errors.New("onnx model requires class labels")
	}
	if opts.FeatureCount <= 0 {
		return nil, errors.New("onnx model requires a positive feature count")
	}
	if opts.InputName == "" {
		opts.InputName = "float_input"
	}
	if opts.ProbabilityOutput == "" {
		opts.ProbabilityOutput = "probabilities"
	}

	onnxInitOnce.Do(func() {
		if opts.SharedLibraryPath != "" {
			onnxruntime.SetSharedLibraryPath(opts.SharedLibraryPath)
		}
		onnxInitErr = onnxruntime.InitializeEnvironment()
	})
	if onnxInitErr != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", onnxInitErr)
	}

	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer options.Destroy()

	session, err := onnxruntime.NewDynamicAdvancedSession(path,
		[]string{opts.InputName}, []string{opts.ProbabilityOutput}, options)
	if err != nil {
		return nil, fmt.Errorf("load onnx model: %w", err)
	}

	return &ONNXModel{
		session:      session,
		labels:       append([]string(nil), opts.Labels...),
		featureCount: opts.FeatureCount,
	}, nil
}

func (m *ONNXModel) Labels() []string { return append([]string(nil), m.labels...) }

func (m *ONNXModel) FeatureCount() int { return m.featureCount }

func (m *ONNXModel) ConcurrencySafe() bool { return false }

func (m *ONNXModel) PredictProba(features []float64) ([]float64, error) {
	if m.session == nil {
		return nil, errors.New("model session is closed")
	}
	if len(features) != m.featureCount {
		return nil, fmt.Errorf("expected %d features, got %d", m.featureCount, len(features))
	}

	input := make([]float32, len(features))
	for i, v := range features {
		input[i] = float32(v)
	}
	inputTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1, int64(len(input))), input)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	output := make([]float32, len(m.labels))
	outputTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1, int64(len(output))), output)
	if err != nil {
		return nil, fmt.Errorf("create probability tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := m.session.Run([]onnxruntime.Value{inputTensor}, []onnxruntime.Value{outputTensor}); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	probs := make([]float64, len(output))
	for i, p := range outputTensor.GetData() {
		probs[i] = float64(p)
	}
	return probs, nil
}

// Close releases the session.
func (m *ONNXModel) Close() error {
	if m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	m.session = nil
	return err
}
