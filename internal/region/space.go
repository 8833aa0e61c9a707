// Package region maps hand keypoints from display coordinates onto the sensor
// frame and extracts the normalized crop fed to the gesture classifier.
//
// Three coordinate spaces are involved:
//
//   - display: pixels of the rendered camera view, where keypoints live
//   - canvas: the overlay surface the bounding box is clamped to
//   - sensor: native pixels of the captured frame
//
// Each space has its own type so a conversion cannot be skipped or applied twice.
package region

import "math"

// Point is a keypoint in display pixels. Z is optional depth.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// KeypointSet is the ordered landmark list of one hand in display pixels.
// An empty set means no hand.
type KeypointSet []Point

// Size is the pixel extent of a surface.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the size has no area.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is an on-screen rectangle in page coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Layout describes how the sensor frame is presented on screen.
type Layout struct {
	// Sensor is the native frame size.
	Sensor Size `json:"sensor"`
	// Canvas is the overlay surface; its width and height bound the padded box.
	Canvas Rect `json:"canvas"`
	// Display is where the frame is rendered.
	Display Rect `json:"display"`
}

// IdentityLayout presents the sensor frame 1:1 with canvas and display aligned.
func IdentityLayout(sensor Size) Layout {
	r := Rect{Width: float64(sensor.Width), Height: float64(sensor.Height)}
	return Layout{Sensor: sensor, Canvas: r, Display: r}
}

// ScaledLayout renders the sensor frame at the given display size, with the
// canvas covering the display exactly.
func ScaledLayout(sensor Size, display Size) Layout {
	r := Rect{Width: float64(display.Width), Height: float64(display.Height)}
	return Layout{Sensor: sensor, Canvas: r, Display: r}
}

// CanvasSize returns the canvas extent in whole pixels.
func (l Layout) CanvasSize() Size {
	return Size{Width: int(l.Canvas.Width), Height: int(l.Canvas.Height)}
}

// Offset returns the display origin relative to the canvas origin.
func (l Layout) Offset() (dx, dy float64) {
	return l.Display.Left - l.Canvas.Left, l.Display.Top - l.Canvas.Top
}

// Scale returns the sensor pixels per display pixel on each axis.
func (l Layout) Scale() (sx, sy float64) {
	if l.Display.Width <= 0 || l.Display.Height <= 0 {
		return 0, 0
	}
	return float64(l.Sensor.Width) / l.Display.Width, float64(l.Sensor.Height) / l.Display.Height
}

// DisplayPoint maps a point normalized to [0,1] over the rendered view into
// display pixels.
func (l Layout) DisplayPoint(nx, ny, z float64) Point {
	return Point{
		X: nx * l.Display.Width,
		Y: ny * l.Display.Height,
		Z: z,
	}
}

func floor(v float64) int {
	return int(math.Floor(v))
}
