package region

import (
	"testing"

	"gocv.io/x/gocv"
)

func handKeypoints() KeypointSet {
	return KeypointSet{
		{X: 180, Y: 200}, {X: 200, Y: 160}, {X: 220, Y: 120},
		{X: 250, Y: 110}, {X: 260, Y: 190}, {X: 240, Y: 230},
	}
}

func TestExtractor_Extract_Shape(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.SetTo(gocv.NewScalar(255, 128, 0, 0))

	e := NewExtractor(DefaultConfig())
	layout := ScaledLayout(Size{Width: 640, Height: 480}, Size{Width: 400, Height: 300})

	res, err := e.Extract(frame, handKeypoints(), layout)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	defer res.Close()

	if res.Tensor.Rows() != DefaultTargetSize || res.Tensor.Cols() != DefaultTargetSize {
		t.Errorf("tensor size = %dx%d, want %dx%d", res.Tensor.Cols(), res.Tensor.Rows(), DefaultTargetSize, DefaultTargetSize)
	}
	if res.Tensor.Channels() != 3 {
		t.Errorf("tensor channels = %d, want 3", res.Tensor.Channels())
	}
	if res.Tensor.Type() != gocv.MatTypeCV32FC3 {
		t.Errorf("tensor type = %v, want CV32FC3", res.Tensor.Type())
	}

	data, err := res.Tensor.DataPtrFloat32()
	if err != nil {
		t.Fatalf("DataPtrFloat32() error = %v", err)
	}
	for i, v := range data {
		if v < 0 || v > 1 {
			t.Fatalf("tensor value %d = %f, want within [0,1]", i, v)
		}
	}

	// BGR (255,128,0) becomes RGB (0,~0.5,1).
	if data[0] > 1e-6 || data[2] < 1-1e-6 {
		t.Errorf("first pixel = %v, want RGB order", data[:3])
	}
}

func TestExtractor_Extract_Idempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()
	fillPattern(frame)

	e := NewExtractor(DefaultConfig())
	layout := ScaledLayout(Size{Width: 640, Height: 480}, Size{Width: 400, Height: 300})

	first, err := e.Extract(frame, handKeypoints(), layout)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	defer first.Close()

	second, err := e.Extract(frame, handKeypoints(), layout)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	defer second.Close()

	if first.Crop != second.Crop || first.Box != second.Box {
		t.Fatalf("regions differ: %+v vs %+v", first.Crop, second.Crop)
	}

	a, _ := first.Tensor.DataPtrFloat32()
	b, _ := second.Tensor.DataPtrFloat32()
	if len(a) != len(b) {
		t.Fatalf("tensor lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("tensor differs at %d: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestExtractor_Extract_Degenerate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	e := NewExtractor(DefaultConfig())
	layout := IdentityLayout(Size{Width: 640, Height: 480})

	_, err := e.Extract(frame, KeypointSet{{X: 5000, Y: 5000}}, layout)
	if err != ErrNoHandRegion {
		t.Errorf("Extract() error = %v, want ErrNoHandRegion", err)
	}
}

func TestExtractor_Preview(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	e := NewExtractor(DefaultConfig())
	preview, err := e.Preview(frame, CropRegion{X: 10, Y: 10, Width: 120, Height: 90})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	defer preview.Close()

	if preview.Rows() != DefaultPreviewSize || preview.Cols() != DefaultPreviewSize {
		t.Errorf("preview size = %dx%d, want %dx%d", preview.Cols(), preview.Rows(), DefaultPreviewSize, DefaultPreviewSize)
	}
}

func fillPattern(m gocv.Mat) {
	for row := 0; row < m.Rows(); row++ {
		for col := 0; col < m.Cols()*3; col++ {
			m.SetUCharAt(row, col, uint8((row*7+col*13)%256))
		}
	}
}
