package gesture

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrLowConfidence is returned when a classification falls below the
// acceptance threshold.
var ErrLowConfidence = errors.New("classification below confidence threshold")

// Classification is the classifier's verdict for a single frame.
type Classification struct {
	Label      Move    `json:"label"`
	Confidence float64 `json:"confidence"`
}

// FromProbabilities picks the most likely label from a probability vector.
// Vectors that do not sum to one (raw logits) are softmax-normalized first.
func FromProbabilities(labels []Move, probs []float32) (Classification, error) {
	if len(probs) == 0 {
		return Classification{}, errors.New("empty probability vector")
	}
	if len(probs) != len(labels) {
		return Classification{}, fmt.Errorf("got %d probabilities for %d labels", len(probs), len(labels))
	}

	p := make([]float64, len(probs))
	for i, v := range probs {
		p[i] = float64(v)
	}
	if !isDistribution(p) {
		softmax(p)
	}

	idx := floats.MaxIdx(p)
	return Classification{Label: labels[idx], Confidence: p[idx]}, nil
}

func isDistribution(p []float64) bool {
	for _, v := range p {
		if v < 0 || v > 1 {
			return false
		}
	}
	return math.Abs(floats.Sum(p)-1) < 1e-3
}

func softmax(p []float64) {
	peak := floats.Max(p)
	for i := range p {
		p[i] = math.Exp(p[i] - peak)
	}
	floats.Scale(1/floats.Sum(p), p)
}
