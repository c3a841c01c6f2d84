package model

import "math"

// Metadata describes the bound input and output of the loaded model.
type Metadata struct {
	InputName   string  `json:"input_name"`
	InputShape  []int64 `json:"input_shape"`
	OutputName  string  `json:"output_name"`
	OutputShape []int64 `json:"output_shape"`
	Classes     int     `json:"classes"`
}

// Prediction is the argmax of one output vector.
type Prediction struct {
	Index   int
	LabelID string
	Label   string
	Score   float32
}

type Verdict struct {
	Threshold    float64
	Confident    string
	NotConfident string
}

const DefaultThreshold = 60

var DefaultVerdict = Verdict{
	Threshold:    DefaultThreshold,
	Confident:    "✅ Sukses Yakin",
	NotConfident: "❓ Nggak yakin, Baka! Coba foto lagi!",
}

func (v Verdict) Check(confidence float64) string {
	if confidence >= v.Threshold {
		return v.Confident
	}
	return v.NotConfident
}

type PredictionRequest struct {
	Image []float32 `json:"image"`
}

type PredictionResponse struct {
	Label          string  `json:"label"`
	LabelID        string  `json:"label_id"`
	Confidence     float64 `json:"confidence"`
	ThresholdCheck string  `json:"threshold_check"`
}

// Percent converts a probability to a percentage rounded to 2 decimals.
func Percent(score float32) float64 {
	return math.Round(float64(score)*100*100) / 100
}

// NewResponse gates the verdict on the rounded confidence, so the returned
// body always agrees with itself.
func NewResponse(p *Prediction, v Verdict) PredictionResponse {
	confidence := Percent(p.Score)
	return PredictionResponse{
		Label:          p.Label,
		LabelID:        p.LabelID,
		Confidence:     confidence,
		ThresholdCheck: v.Check(confidence),
	}
}
