package model

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/Brownie44l1/ronde-api/internal/labels"
	"github.com/Brownie44l1/ronde-api/internal/preprocess"
)

type Options struct {
	ModelPath  string
	LabelsPath string
	// SharedLibraryPath points at libonnxruntime; empty uses the
	// library's default lookup.
	SharedLibraryPath string
}

// Server holds the loaded model and label table for the life of the process.
type Server struct {
	session      *ort.AdvancedSession
	Metadata     Metadata
	Labels       *labels.Dictionary
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]

	// input and output tensors are bound to the session
	mu sync.Mutex
}

func NewServer(opts Options) (*Server, error) {
	dict, err := labels.Load(opts.LabelsPath)
	if err != nil {
		return nil, err
	}

	if opts.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(opts.SharedLibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize ONNX environment")
	}

	s, err := newServer(opts.ModelPath, dict)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, err
	}
	return s, nil
}

func newServer(modelPath string, dict *labels.Dictionary) (*Server, error) {
	metadata, err := inspect(modelPath, dict.Len())
	if err != nil {
		return nil, err
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create input tensor")
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.Wrap(err, "failed to create output tensor")
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.Value{inputTensor}, []ort.Value{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "failed to create ONNX session")
	}

	log.WithFields(log.Fields{
		"input":   metadata.InputName,
		"output":  metadata.OutputName,
		"shape":   metadata.InputShape,
		"classes": metadata.Classes,
	}).Info("model loaded")

	return &Server{
		session:      session,
		Metadata:     metadata,
		Labels:       dict,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// inspect reads the model's first input and output and checks them against
// the preprocessing layout and the label count.
func inspect(modelPath string, classes int) (Metadata, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return Metadata{}, errors.Wrap(err, "failed to read model")
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return Metadata{}, errors.Errorf("model has %d inputs and %d outputs", len(inputs), len(outputs))
	}

	in, out := inputs[0], outputs[0]
	metadata := Metadata{
		InputName:   in.Name,
		InputShape:  fixBatch(in.Dimensions),
		OutputName:  out.Name,
		OutputShape: fixBatch(out.Dimensions),
		Classes:     classes,
	}

	if !sameShape(metadata.InputShape, preprocess.Shape) {
		return Metadata{}, errors.Errorf("model input %q has shape %v, want %v",
			in.Name, metadata.InputShape, preprocess.Shape)
	}
	if n := ort.NewShape(metadata.OutputShape...).FlattenedSize(); n != int64(classes) {
		return Metadata{}, errors.Errorf("model output %q has %d values but labels define %d classes",
			out.Name, n, classes)
	}

	return metadata, nil
}

// fixBatch replaces dynamic dimensions with 1.
func fixBatch(dims ort.Shape) []int64 {
	shape := make([]int64, len(dims))
	for i, d := range dims {
		if d <= 0 {
			d = 1
		}
		shape[i] = d
	}
	return shape
}

func sameShape(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Infer runs one forward pass and returns a copy of the output vector.
func (s *Server) Infer(tensor []float32) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	input := s.inputTensor.GetData()
	if len(tensor) != len(input) {
		return nil, errors.Errorf("input has %d values, model expects %d", len(tensor), len(input))
	}
	copy(input, tensor)

	if err := s.session.Run(); err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}

	output := s.outputTensor.GetData()
	result := make([]float32, len(output))
	copy(result, output)
	return result, nil
}

func (s *Server) Predict(tensor []float32) (*Prediction, error) {
	output, err := s.Infer(tensor)
	if err != nil {
		return nil, err
	}
	return Classify(output, s.Labels)
}

func (s *Server) Classes() int {
	return s.Labels.Len()
}

func (s *Server) Close() {
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
	}
	if s.session != nil {
		s.session.Destroy()
	}
	ort.DestroyEnvironment()
}
