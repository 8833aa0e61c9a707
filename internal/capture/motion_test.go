package capture

import (
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func solidFrame(rows, cols int, v float64) *Frame {
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	m.SetTo(gocv.NewScalar(v, v, v, 0))
	return &Frame{Mat: m}
}

func TestNewMotionDetector(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{name: "explicit threshold", threshold: 5.0, want: 5.0},
		{name: "low threshold", threshold: 0.5, want: 0.5},
		{name: "zero selects default", threshold: 0, want: DefaultMotionThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			defer md.Close()

			if md.threshold != tt.want {
				t.Errorf("threshold = %f, want %f", md.threshold, tt.want)
			}
			if md.initialized {
				t.Error("motion detector should not be initialized initially")
			}
		})
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame1 := solidFrame(480, 640, 0)
	defer frame1.Close()
	frame2 := solidFrame(480, 640, 0)
	defer frame2.Close()

	detected, changePercent := md.Detect(frame1)
	if detected || changePercent != 0 {
		t.Errorf("first frame = (%v, %f), want (false, 0)", detected, changePercent)
	}

	detected, changePercent = md.Detect(frame2)
	if detected {
		t.Errorf("identical frames should not detect motion, changePercent = %f", changePercent)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black := solidFrame(480, 640, 0)
	defer black.Close()
	white := solidFrame(480, 640, 255)
	defer white.Close()

	md.Detect(black)
	detected, changePercent := md.Detect(white)
	if !detected {
		t.Errorf("black to white should detect motion, changePercent = %f", changePercent)
	}
	if changePercent < 50.0 {
		t.Errorf("changePercent = %f, expected > 50%% for black to white transition", changePercent)
	}
}

func TestMotionDetector_ResolutionChange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	small := solidFrame(240, 320, 0)
	defer small.Close()
	large := solidFrame(480, 640, 255)
	defer large.Close()

	md.Detect(small)
	if detected, _ := md.Detect(large); detected {
		t.Error("a new resolution should rebase instead of reporting motion")
	}
}

func TestMotionDetector_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black := solidFrame(480, 640, 0)
	defer black.Close()
	white := solidFrame(480, 640, 255)
	defer white.Close()

	md.Detect(black)
	md.Reset()

	if detected, _ := md.Detect(white); detected {
		t.Error("first frame after Reset should not detect motion")
	}
}

func TestMotionDetector_NilFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if detected, pct := md.Detect(nil); detected || pct != 0 {
		t.Errorf("Detect(nil) = (%v, %f), want (false, 0)", detected, pct)
	}
}

func TestMotionGate(t *testing.T) {
	now := time.Unix(0, 0)
	g := NewMotionGate(2 * time.Second)
	g.now = func() time.Time { return now }

	steps := []struct {
		advance     time.Duration
		motion      bool
		wantActive  bool
		wantChanged bool
	}{
		{advance: 0, motion: false, wantActive: false, wantChanged: false},
		{advance: 100 * time.Millisecond, motion: true, wantActive: true, wantChanged: true},
		{advance: 100 * time.Millisecond, motion: true, wantActive: true, wantChanged: false},
		{advance: time.Second, motion: false, wantActive: true, wantChanged: false},
		{advance: 1500 * time.Millisecond, motion: false, wantActive: false, wantChanged: true},
		{advance: time.Second, motion: false, wantActive: false, wantChanged: false},
	}

	for i, s := range steps {
		now = now.Add(s.advance)
		active, changed := g.Observe(s.motion)
		if active != s.wantActive || changed != s.wantChanged {
			t.Errorf("step %d: Observe(%v) = (%v, %v), want (%v, %v)", i, s.motion, active, changed, s.wantActive, s.wantChanged)
		}
	}
	if g.Active() {
		t.Error("gate should be closed")
	}
}
