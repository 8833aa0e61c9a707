package region

import (
	"errors"
	"image"
)

// ErrNoHandRegion is returned when no usable crop can be derived from the
// keypoints: the set is empty or the mapped crop has no area.
var ErrNoHandRegion = errors.New("no hand region")

// BoundingBox is the padded keypoint extent in display pixels, clamped to the
// canvas. Width and Height are never negative.
type BoundingBox struct {
	XMin   int `json:"x_min"`
	YMin   int `json:"y_min"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CropRegion is a bounding box mapped into sensor pixels and clamped to the
// sensor frame.
type CropRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the crop has non-positive area.
func (c CropRegion) Empty() bool {
	return c.Width <= 0 || c.Height <= 0
}

// Rect returns the crop as an image.Rectangle.
func (c CropRegion) Rect() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

// ComputeBoundingBox pads the keypoint extent and clamps it to the canvas.
// A padded extent beyond the canvas is truncated.
func ComputeBoundingBox(kp KeypointSet, canvas Size, padding int) (BoundingBox, error) {
	if len(kp) == 0 {
		return BoundingBox{}, ErrNoHandRegion
	}

	minX, maxX := kp[0].X, kp[0].X
	minY, maxY := kp[0].Y, kp[0].Y
	for _, p := range kp[1:] {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	pad := float64(padding)
	xMin := max(0, floor(minX-pad))
	xMax := min(canvas.Width, floor(maxX+pad))
	yMin := max(0, floor(minY-pad))
	yMax := min(canvas.Height, floor(maxY+pad))

	return BoundingBox{
		XMin:   xMin,
		YMin:   yMin,
		Width:  max(0, xMax-xMin),
		Height: max(0, yMax-yMin),
	}, nil
}

// ToCrop maps a display bounding box into sensor pixels using the layout's
// offset and per-axis scale, then clamps it to the sensor frame.
func ToCrop(box BoundingBox, layout Layout) CropRegion {
	dx, dy := layout.Offset()
	sx, sy := layout.Scale()

	x := floor((float64(box.XMin) - dx) * sx)
	y := floor((float64(box.YMin) - dy) * sy)
	w := floor(float64(box.Width) * sx)
	h := floor(float64(box.Height) * sy)

	x, w = clampSpan(x, w, layout.Sensor.Width)
	y, h = clampSpan(y, h, layout.Sensor.Height)

	return CropRegion{X: x, Y: y, Width: w, Height: h}
}

// clampSpan fits [origin, origin+size) into [0, limit).
func clampSpan(origin, size, limit int) (int, int) {
	if origin < 0 {
		size += origin
		origin = 0
	}
	if origin > limit {
		origin = limit
	}
	size = min(size, limit-origin)
	return origin, max(0, size)
}
