package gesture

import "fmt"

// DefaultConfidenceThreshold is the minimum confidence for a classification
// to count toward the round decision.
const DefaultConfidenceThreshold = 0.60

// Stabilizer collects accepted classifications during a countdown and reduces
// them to one move.
//
// A label is buffered only when its confidence meets the threshold and it
// differs from the most recently buffered label, so the buffer records
// changes in the shown gesture rather than how many frames each one was held.
type Stabilizer struct {
	threshold float64
	buffer    []Move
}

// NewStabilizer creates a Stabilizer with the given confidence threshold.
func NewStabilizer(threshold float64) *Stabilizer {
	return &Stabilizer{
		threshold: threshold,
		buffer:    make([]Move, 0, 16),
	}
}

// Threshold returns the acceptance threshold.
func (s *Stabilizer) Threshold() float64 {
	return s.threshold
}

// Reset empties the buffer. The backing array is reused.
func (s *Stabilizer) Reset() {
	s.buffer = s.buffer[:0]
}

// Record offers a classification to the buffer. It returns ErrLowConfidence
// when the result is rejected for confidence. Immediate repeats of the last
// buffered label are dropped silently.
func (s *Stabilizer) Record(c Classification) error {
	if !c.Label.Valid() {
		return fmt.Errorf("record %q: not a gesture", c.Label)
	}
	if c.Confidence < s.threshold {
		return ErrLowConfidence
	}
	if n := len(s.buffer); n > 0 && s.buffer[n-1] == c.Label {
		return nil
	}
	s.buffer = append(s.buffer, c.Label)
	return nil
}

// Resolve returns the stabilized move for the current buffer.
func (s *Stabilizer) Resolve() Move {
	return Vote(s.buffer)
}

// Buffer returns a copy of the buffered labels.
func (s *Stabilizer) Buffer() []Move {
	out := make([]Move, len(s.buffer))
	copy(out, s.buffer)
	return out
}

// Vote returns the most frequent move in buffer. Ties go to the label that
// appeared first. An empty buffer yields NoMove.
func Vote(buffer []Move) Move {
	var (
		order  []Move
		counts = make(map[Move]int, len(Moves))
	)
	for _, m := range buffer {
		if counts[m] == 0 {
			order = append(order, m)
		}
		counts[m]++
	}

	best := NoMove
	bestCount := 0
	for _, m := range order {
		if counts[m] > bestCount {
			best, bestCount = m, counts[m]
		}
	}
	return best
}
