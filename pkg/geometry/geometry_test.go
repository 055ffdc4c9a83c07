package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScaleMapRoundTrip(t *testing.T) {
	m := NewScaleMap(1920, 640)
	require.InDelta(t, 3.0, m.Factor, 1e-9)

	p := ProcessedPoint{X: 100, Y: 50}
	back := m.ToProcessed(m.ToSource(p))
	require.InDelta(t, p.X, back.X, 1e-9)
	require.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestScaleMapDegenerate(t *testing.T) {
	m := NewScaleMap(0, 0)
	require.Equal(t, 1.0, m.Factor)
}

func TestRectToSourceCoversRegion(t *testing.T) {
	m := NewScaleMap(1000, 300)
	r := ProcessedRect{X: 10, Y: 20, Width: 30, Height: 40}
	s := m.RectToSource(r)

	// The mapped rectangle must cover every mapped corner.
	tl := m.ToSource(ProcessedPoint{X: float64(r.X), Y: float64(r.Y)})
	br := m.ToSource(ProcessedPoint{X: float64(r.X + r.Width), Y: float64(r.Y + r.Height)})
	require.LessOrEqual(t, float64(s.X), tl.X)
	require.LessOrEqual(t, float64(s.Y), tl.Y)
	require.GreaterOrEqual(t, float64(s.X+s.Width), br.X)
	require.GreaterOrEqual(t, float64(s.Y+s.Height), br.Y)
}

func TestPolygonAreaSquare(t *testing.T) {
	square := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	require.InDelta(t, 100.0, PolygonArea(square), 1e-9)

	// Winding order must not matter.
	reversed := []Point2D{{0, 10}, {10, 10}, {10, 0}, {0, 0}}
	require.InDelta(t, 100.0, PolygonArea(reversed), 1e-9)
}

func TestPolygonAreaDegenerate(t *testing.T) {
	require.Equal(t, 0.0, PolygonArea(nil))
	require.Equal(t, 0.0, PolygonArea([]Point2D{{0, 0}, {1, 1}}))
}

func TestConvexHullContainsExtremes(t *testing.T) {
	pts := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {5, 5}, {3, 7}}
	hull := ConvexHull(pts)
	require.Len(t, hull, 4)
	require.InDelta(t, 100.0, PolygonArea(hull), 1e-9)
}

func TestRectIntersect(t *testing.T) {
	a := RectInt{X: 0, Y: 0, Width: 10, Height: 10}
	b := RectInt{X: 5, Y: 5, Width: 10, Height: 10}
	got := a.Intersect(b)
	require.Equal(t, RectInt{X: 5, Y: 5, Width: 5, Height: 5}, got)

	c := RectInt{X: 20, Y: 20, Width: 10, Height: 10}
	require.True(t, a.Intersect(c).Empty())
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{1.2, 3.4}, {7.9, 2.1}, {4, 8.6}}
	box := BoundingBox(pts)
	require.Equal(t, 1, box.X)
	require.Equal(t, 2, box.Y)
	require.GreaterOrEqual(t, box.X+box.Width, 8)
	require.GreaterOrEqual(t, box.Y+box.Height, 9)
}
