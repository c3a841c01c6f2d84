package model

import (
	"github.com/pkg/errors"

	"github.com/Brownie44l1/ronde-api/internal/labels"
)

// Classify takes the argmax of output and names it through dict. Ties go to
// the lowest index.
func Classify(output []float32, dict *labels.Dictionary) (*Prediction, error) {
	if len(output) == 0 {
		return nil, errors.New("empty output vector")
	}

	maxIdx := 0
	maxVal := output[0]
	for i, val := range output {
		if val > maxVal {
			maxVal = val
			maxIdx = i
		}
	}

	id, ok := dict.IDAt(maxIdx)
	if !ok {
		return nil, errors.Errorf("output index %d has no label (dictionary has %d)", maxIdx, dict.Len())
	}
	label, _ := dict.Label(id)

	return &Prediction{
		Index:   maxIdx,
		LabelID: id,
		Label:   label,
		Score:   maxVal,
	}, nil
}
