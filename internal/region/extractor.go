package region

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Default extraction settings.
const (
	DefaultPadding     = 30
	DefaultTargetSize  = 224
	DefaultPreviewSize = 300
)

// Config holds the extraction parameters.
type Config struct {
	// Padding in display pixels added around the keypoint extent.
	Padding int
	// TargetSize is the square edge of the classifier input.
	TargetSize int
	// PreviewSize is the square edge of the human-visible preview.
	PreviewSize int
}

// DefaultConfig returns the standard extraction parameters.
func DefaultConfig() Config {
	return Config{
		Padding:     DefaultPadding,
		TargetSize:  DefaultTargetSize,
		PreviewSize: DefaultPreviewSize,
	}
}

// Result is the output of a successful extraction. The caller owns Tensor and
// must close it.
type Result struct {
	Box    BoundingBox
	Crop   CropRegion
	Tensor gocv.Mat
}

// Close releases the tensor.
func (r *Result) Close() error {
	return r.Tensor.Close()
}

// Extractor crops the hand region out of sensor frames.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an Extractor. Non-positive settings fall back to the
// defaults.
func NewExtractor(cfg Config) *Extractor {
	if cfg.Padding < 0 {
		cfg.Padding = DefaultPadding
	}
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = DefaultTargetSize
	}
	if cfg.PreviewSize <= 0 {
		cfg.PreviewSize = DefaultPreviewSize
	}
	return &Extractor{cfg: cfg}
}

// Config returns the extractor's settings.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Locate computes the bounding box and crop region for a keypoint set without
// touching pixels.
func (e *Extractor) Locate(kp KeypointSet, layout Layout) (BoundingBox, CropRegion, error) {
	box, err := ComputeBoundingBox(kp, layout.CanvasSize(), e.cfg.Padding)
	if err != nil {
		return BoundingBox{}, CropRegion{}, err
	}
	crop := ToCrop(box, layout)
	if crop.Empty() {
		return box, crop, ErrNoHandRegion
	}
	return box, crop, nil
}

// Extract crops the hand out of a BGR sensor frame and returns a
// TargetSize x TargetSize x 3 float32 RGB tensor with values in [0,1].
// Intermediate buffers are released before returning.
func (e *Extractor) Extract(frame gocv.Mat, kp KeypointSet, layout Layout) (Result, error) {
	if frame.Empty() {
		return Result{}, errors.New("extract: empty frame")
	}

	box, crop, err := e.Locate(kp, layout)
	if err != nil {
		return Result{}, err
	}
	if crop.X+crop.Width > frame.Cols() || crop.Y+crop.Height > frame.Rows() {
		return Result{}, fmt.Errorf("extract: crop %v outside %dx%d frame", crop.Rect(), frame.Cols(), frame.Rows())
	}

	roi := frame.Region(crop.Rect())
	defer roi.Close()

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(roi, &rgb, gocv.ColorBGRToRGB)

	resized := gocv.NewMat()
	defer resized.Close()
	size := image.Point{X: e.cfg.TargetSize, Y: e.cfg.TargetSize}
	gocv.Resize(rgb, &resized, size, 0, 0, gocv.InterpolationLinear)

	tensor := gocv.NewMat()
	resized.ConvertToWithParams(&tensor, gocv.MatTypeCV32FC3, 1.0/255.0, 0)

	return Result{Box: box, Crop: crop, Tensor: tensor}, nil
}

// Preview returns the crop resized to PreviewSize x PreviewSize as an 8-bit
// BGR image. The caller owns the returned Mat.
func (e *Extractor) Preview(frame gocv.Mat, crop CropRegion) (gocv.Mat, error) {
	if crop.Empty() {
		return gocv.NewMat(), ErrNoHandRegion
	}
	if crop.X+crop.Width > frame.Cols() || crop.Y+crop.Height > frame.Rows() {
		return gocv.NewMat(), fmt.Errorf("preview: crop %v outside %dx%d frame", crop.Rect(), frame.Cols(), frame.Rows())
	}

	roi := frame.Region(crop.Rect())
	defer roi.Close()

	preview := gocv.NewMat()
	size := image.Point{X: e.cfg.PreviewSize, Y: e.cfg.PreviewSize}
	gocv.Resize(roi, &preview, size, 0, 0, gocv.InterpolationLinear)
	return preview, nil
}
