package geometry

import "math"

// The pipeline works in two pixel coordinate spaces: the source frame as
// delivered by the camera, and the processed (downscaled) frame every
// image operation runs on. Mixing the two silently corrupts geometry, so
// each space gets its own types and all crossings go through a ScaleMap.

// SourcePoint is a point in source-frame pixels.
type SourcePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ProcessedPoint is a point in processed-frame pixels.
type ProcessedPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SourceRect is an axis-aligned rectangle in source-frame pixels.
type SourceRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ProcessedRect is an axis-aligned rectangle in processed-frame pixels.
type ProcessedRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts to the untyped RectInt for space-agnostic helpers.
func (r SourceRect) Rect() RectInt {
	return RectInt{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// Rect converts to the untyped RectInt for space-agnostic helpers.
func (r ProcessedRect) Rect() RectInt {
	return RectInt{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// ScaleMap relates the two spaces: source = processed × Factor.
// Factor is 1 when the frame was small enough to pass through unscaled.
type ScaleMap struct {
	Factor float64 `json:"factor"`
}

// NewScaleMap builds the map from the two frame widths. A degenerate
// processed width yields the identity map.
func NewScaleMap(sourceWidth, processedWidth int) ScaleMap {
	if processedWidth <= 0 || sourceWidth <= 0 {
		return ScaleMap{Factor: 1}
	}
	return ScaleMap{Factor: float64(sourceWidth) / float64(processedWidth)}
}

// ToSource maps a processed-space point into source space.
func (m ScaleMap) ToSource(p ProcessedPoint) SourcePoint {
	return SourcePoint{X: p.X * m.Factor, Y: p.Y * m.Factor}
}

// ToProcessed maps a source-space point into processed space.
func (m ScaleMap) ToProcessed(p SourcePoint) ProcessedPoint {
	return ProcessedPoint{X: p.X / m.Factor, Y: p.Y / m.Factor}
}

// RectToSource maps a processed-space rectangle into source space.
// The result rounds outward so the mapped rectangle still covers the
// original region.
func (m ScaleMap) RectToSource(r ProcessedRect) SourceRect {
	x := math.Floor(float64(r.X) * m.Factor)
	y := math.Floor(float64(r.Y) * m.Factor)
	x2 := math.Ceil(float64(r.X+r.Width) * m.Factor)
	y2 := math.Ceil(float64(r.Y+r.Height) * m.Factor)
	return SourceRect{X: int(x), Y: int(y), Width: int(x2 - x), Height: int(y2 - y)}
}

// RectToProcessed maps a source-space rectangle into processed space.
func (m ScaleMap) RectToProcessed(r SourceRect) ProcessedRect {
	x := math.Floor(float64(r.X) / m.Factor)
	y := math.Floor(float64(r.Y) / m.Factor)
	x2 := math.Ceil(float64(r.X+r.Width) / m.Factor)
	y2 := math.Ceil(float64(r.Y+r.Height) / m.Factor)
	return ProcessedRect{X: int(x), Y: int(y), Width: int(x2 - x), Height: int(y2 - y)}
}

// ContourToSource maps a whole processed-space contour into source space.
func (m ScaleMap) ContourToSource(contour []ProcessedPoint) []SourcePoint {
	out := make([]SourcePoint, len(contour))
	for i, p := range contour {
		out[i] = m.ToSource(p)
	}
	return out
}

// ContourToProcessed maps a whole source-space contour into processed space.
func (m ScaleMap) ContourToProcessed(contour []SourcePoint) []ProcessedPoint {
	out := make([]ProcessedPoint, len(contour))
	for i, p := range contour {
		out[i] = m.ToProcessed(p)
	}
	return out
}

// ProcessedContourPoints converts a processed-space contour to untyped
// points for the polygon helpers.
func ProcessedContourPoints(contour []ProcessedPoint) []Point2D {
	out := make([]Point2D, len(contour))
	for i, p := range contour {
		out[i] = Point2D{X: p.X, Y: p.Y}
	}
	return out
}
