package classifier

import (
	"context"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/shifumi/internal/gesture"
)

// MockClassifier returns scripted results. Once the queue is drained the last
// result repeats.
type MockClassifier struct {
	mu      sync.Mutex
	results []gesture.Classification
	last    gesture.Classification
	err     error
	calls   int
}

// NewMockClassifier creates a MockClassifier that returns results in order.
func NewMockClassifier(results ...gesture.Classification) *MockClassifier {
	return &MockClassifier{results: results}
}

// SetResult replaces the queue with a single repeating result.
func (m *MockClassifier) SetResult(c gesture.Classification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = nil
	m.last = c
}

// SetError makes every Classify call fail with err.
func (m *MockClassifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Classify returns the next scripted result.
func (m *MockClassifier) Classify(ctx context.Context, tensor gocv.Mat) (gesture.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return gesture.Classification{}, m.err
	}
	if len(m.results) > 0 {
		m.last = m.results[0]
		m.results = m.results[1:]
	}
	return m.last, nil
}

// Calls returns how many times Classify was invoked.
func (m *MockClassifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close is a no-op.
func (m *MockClassifier) Close() error {
	return nil
}
