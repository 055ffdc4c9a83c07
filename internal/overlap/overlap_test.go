package overlap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"puzzle-scanner/pkg/geometry"
)

func box(x, y, w, h int) geometry.SourceRect {
	return geometry.SourceRect{X: x, Y: y, Width: w, Height: h}
}

func TestEstimateDisjointBoxes(t *testing.T) {
	boxes := []geometry.SourceRect{box(0, 0, 10, 10), box(20, 20, 10, 10)}
	s := Estimate(boxes, DefaultOptions())
	require.Equal(t, 0, s.OverlappingPairs)
	require.Equal(t, 0.0, s.MaxOverlapFraction)
	require.False(t, s.Heavy)
}

func TestEstimateHeavyOverlap(t *testing.T) {
	boxes := []geometry.SourceRect{
		box(0, 0, 20, 20),
		box(5, 5, 20, 20),
		box(8, 8, 20, 20),
		box(12, 12, 20, 20),
	}
	opts := DefaultOptions()
	opts.MinPairs = 1
	s := Estimate(boxes, opts)
	require.Greater(t, s.OverlappingPairs, 0)
	require.Greater(t, s.MaxOverlapFraction, 0.2)
	require.True(t, s.Heavy)
}

func TestEstimateSymmetry(t *testing.T) {
	a := []geometry.SourceRect{box(0, 0, 30, 30), box(10, 10, 20, 20), box(100, 100, 10, 10)}
	b := []geometry.SourceRect{a[2], a[0], a[1]}

	sa := Estimate(a, DefaultOptions())
	sb := Estimate(b, DefaultOptions())
	require.Equal(t, sa.OverlappingPairs, sb.OverlappingPairs)
	require.InDelta(t, sa.MaxOverlapFraction, sb.MaxOverlapFraction, 1e-9)
	require.Equal(t, sa.Heavy, sb.Heavy)
}

func TestEstimateContainedBoxUsesSmallerArea(t *testing.T) {
	// A small box fully inside a large one overlaps 100% of itself.
	boxes := []geometry.SourceRect{box(0, 0, 100, 100), box(10, 10, 10, 10)}
	s := Estimate(boxes, DefaultOptions())
	require.InDelta(t, 1.0, s.MaxOverlapFraction, 1e-9)
	require.Equal(t, 1, s.OverlappingPairs)
	require.True(t, s.Heavy)
}

func TestEstimateComparisonCap(t *testing.T) {
	boxes := make([]geometry.SourceRect, 100)
	for i := range boxes {
		boxes[i] = box(i*2, 0, 10, 10)
	}
	opts := DefaultOptions()
	opts.MaxComparisons = 50
	s := Estimate(boxes, opts)
	require.Equal(t, 50, s.Comparisons)
}

func TestLooksHeavySizeRelativeFloor(t *testing.T) {
	opts := DefaultOptions()

	// One overlapping pair among few pieces is not heavy by count.
	s := Stats{OverlappingPairs: 1, MaxOverlapFraction: 0.2}
	require.False(t, looksHeavy(s, 10, opts))

	s.OverlappingPairs = 2
	require.True(t, looksHeavy(s, 10, opts))

	// A single terrible pair is heavy regardless of count.
	s = Stats{OverlappingPairs: 1, MaxOverlapFraction: 0.5}
	require.True(t, looksHeavy(s, 10, opts))
}

func TestEstimateFewerThanTwoBoxes(t *testing.T) {
	require.False(t, Estimate(nil, DefaultOptions()).Heavy)
	require.False(t, Estimate([]geometry.SourceRect{box(0, 0, 5, 5)}, DefaultOptions()).Heavy)
}
