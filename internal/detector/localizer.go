package detector

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/shifumi/internal/region"
)

// Localizer finds the player's hand in a frame. Only the first detected hand
// is used.
type Localizer struct {
	det Detector

	mu    sync.Mutex
	ready bool
}

// NewLocalizer wraps a Detector.
func NewLocalizer(det Detector) *Localizer {
	return &Localizer{det: det}
}

// Init starts the detection backend. It is safe to call more than once.
func (l *Localizer) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ready {
		return nil
	}
	if s, ok := l.det.(Starter); ok {
		if err := s.Start(); err != nil {
			return fmt.Errorf("%w: %v", ErrLocalizerInit, err)
		}
	}
	l.ready = true
	return nil
}

// Ready reports whether Init has succeeded.
func (l *Localizer) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

// Locate returns the keypoints of the first hand in frame, in display pixels
// of layout. It returns ErrNoHandDetected when there is none.
func (l *Localizer) Locate(frame *gocv.Mat, layout region.Layout) (region.KeypointSet, error) {
	hands, err := l.det.Detect(frame)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	if len(hands) == 0 {
		return nil, ErrNoHandDetected
	}
	return hands[0].ToDisplay(layout), nil
}

// Close releases the detector.
func (l *Localizer) Close() error {
	l.mu.Lock()
	l.ready = false
	l.mu.Unlock()
	return l.det.Close()
}
