package model

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Brownie44l1/ronde-api/internal/preprocess"
)

// The ONNX tests need a real model and runtime, e.g.
//
//	MODEL_PATH=models/ronde_anget_light.onnx LABELS_PATH=models/labelsronde.json \
//	ONNXRUNTIME_LIB=/usr/lib/libonnxruntime.so go test ./internal/model/
func loadServer(t *testing.T) *Server {
	t.Helper()
	modelPath, labelsPath, lib := os.Getenv("MODEL_PATH"), os.Getenv("LABELS_PATH"), os.Getenv("ONNXRUNTIME_LIB")
	if modelPath == "" || labelsPath == "" || lib == "" {
		t.Skip("MODEL_PATH, LABELS_PATH and ONNXRUNTIME_LIB must be set")
	}

	s, err := NewServer(Options{ModelPath: modelPath, LabelsPath: labelsPath, SharedLibraryPath: lib})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestServerZeroImageGolden(t *testing.T) {
	s := loadServer(t)
	zero := make([]float32, preprocess.TensorLen)

	first, err := s.Infer(zero)
	if err != nil {
		t.Fatalf("Infer() error = %v", err)
	}
	if len(first) != s.Classes() {
		t.Fatalf("output len = %d, want %d", len(first), s.Classes())
	}

	second, err := s.Infer(zero)
	if err != nil {
		t.Fatalf("Infer() error = %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("output[%d] not reproducible: %v vs %v", i, first[i], second[i])
		}
	}

	golden := filepath.Join("testdata", "zero_output.json")
	raw, err := os.ReadFile(golden)
	if os.IsNotExist(err) {
		t.Skipf("no %s; output was %v", golden, first)
	}
	if err != nil {
		t.Fatal(err)
	}
	var want []float32
	if err := json.Unmarshal(raw, &want); err != nil {
		t.Fatalf("bad golden file: %v", err)
	}
	if len(want) != len(first) {
		t.Fatalf("golden has %d values, output has %d", len(want), len(first))
	}
	for i := range want {
		if math.Abs(float64(want[i]-first[i])) > 1e-5 {
			t.Errorf("output[%d] = %v, golden %v", i, first[i], want[i])
		}
	}
}

func TestServerRejectsWrongLength(t *testing.T) {
	s := loadServer(t)
	if _, err := s.Infer(make([]float32, 10)); err == nil {
		t.Fatal("Infer() expected error for short tensor")
	}
}

func TestServerPredictLabelInDictionary(t *testing.T) {
	s := loadServer(t)
	pred, err := s.Predict(make([]float32, preprocess.TensorLen))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if _, ok := s.Labels.Label(pred.LabelID); !ok {
		t.Errorf("LabelID %q not in dictionary", pred.LabelID)
	}
}
