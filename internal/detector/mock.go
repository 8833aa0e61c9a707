package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	err      error
	startErr error
	calls    int
	closed   bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands ...HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetStartError makes Start fail with err.
func (m *MockDetector) SetStartError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

// Start returns the configured start error.
func (m *MockDetector) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startErr
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// RockLandmarks returns a closed fist centered in the lower half of the frame.
func RockLandmarks() HandLandmarks {
	lm := HandLandmarks{Handedness: "Right", Score: 0.95}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	// Thumb folded across the fingers
	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: -0.01}
	lm.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.71, Z: -0.02}
	lm.Points[ThumbIP] = Point3D{X: 0.55, Y: 0.66, Z: -0.03}
	lm.Points[ThumbTip] = Point3D{X: 0.51, Y: 0.65, Z: -0.03}

	// Fingers curled into the palm
	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.66, Z: -0.01}
	lm.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.60, Z: -0.04}
	lm.Points[IndexDIP] = Point3D{X: 0.54, Y: 0.63, Z: -0.05}
	lm.Points[IndexTip] = Point3D{X: 0.53, Y: 0.67, Z: -0.04}

	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.65, Z: -0.01}
	lm.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.59, Z: -0.04}
	lm.Points[MiddleDIP] = Point3D{X: 0.49, Y: 0.62, Z: -0.05}
	lm.Points[MiddleTip] = Point3D{X: 0.49, Y: 0.66, Z: -0.04}

	lm.Points[RingMCP] = Point3D{X: 0.46, Y: 0.66, Z: -0.01}
	lm.Points[RingPIP] = Point3D{X: 0.45, Y: 0.61, Z: -0.04}
	lm.Points[RingDIP] = Point3D{X: 0.45, Y: 0.64, Z: -0.05}
	lm.Points[RingTip] = Point3D{X: 0.45, Y: 0.67, Z: -0.04}

	lm.Points[PinkyMCP] = Point3D{X: 0.42, Y: 0.69, Z: -0.01}
	lm.Points[PinkyPIP] = Point3D{X: 0.41, Y: 0.65, Z: -0.03}
	lm.Points[PinkyDIP] = Point3D{X: 0.41, Y: 0.67, Z: -0.04}
	lm.Points[PinkyTip] = Point3D{X: 0.42, Y: 0.70, Z: -0.03}

	return lm
}

// PaperLandmarks returns an open palm with all fingers extended.
func PaperLandmarks() HandLandmarks {
	lm := HandLandmarks{Handedness: "Right", Score: 0.95}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	lm.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	lm.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	lm.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	lm.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55}
	lm.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45}
	lm.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35}

	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	lm.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52}
	lm.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40}
	lm.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28}

	lm.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68}
	lm.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55}
	lm.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45}
	lm.Points[RingTip] = Point3D{X: 0.42, Y: 0.35}

	lm.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70}
	lm.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60}
	lm.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50}
	lm.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42}

	return lm
}

// ScissorsLandmarks returns index and middle fingers extended in a V.
func ScissorsLandmarks() HandLandmarks {
	lm := RockLandmarks()

	lm.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.54}
	lm.Points[IndexDIP] = Point3D{X: 0.60, Y: 0.44}
	lm.Points[IndexTip] = Point3D{X: 0.62, Y: 0.35}

	lm.Points[MiddlePIP] = Point3D{X: 0.49, Y: 0.52}
	lm.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.41}
	lm.Points[MiddleTip] = Point3D{X: 0.45, Y: 0.31}

	return lm
}
