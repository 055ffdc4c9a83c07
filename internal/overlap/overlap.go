// Package overlap estimates how heavily detected pieces overlap from
// their bounding boxes, so the guidance layer can tell the user to
// spread pieces apart.
package overlap

import (
	"puzzle-scanner/pkg/geometry"
)

// Options bounds the estimate.
type Options struct {
	// OverlapThreshold is the intersection-over-smaller-area fraction
	// above which a pair counts as overlapping.
	OverlapThreshold float64
	// HeavyMaxFraction flags heavy overlap from a single worst pair.
	HeavyMaxFraction float64
	// MinPairs is the overlapping-pair count that flags heavy overlap.
	// Zero means size-relative: 6% of the piece count, at least 2.
	MinPairs int
	// MaxComparisons caps the O(n²) pair scan.
	MaxComparisons int
}

// DefaultOptions returns the tuned thresholds.
func DefaultOptions() Options {
	return Options{
		OverlapThreshold: 0.18,
		HeavyMaxFraction: 0.42,
		MinPairs:         0,
		MaxComparisons:   2000,
	}
}

// Stats is the result of one overlap estimate.
type Stats struct {
	// OverlappingPairs counts pairs above the overlap threshold.
	OverlappingPairs int `json:"overlappingPairs"`
	// MaxOverlapFraction is the worst pairwise fraction observed.
	MaxOverlapFraction float64 `json:"maxOverlapFraction"`
	// Comparisons is how many pairs were actually examined.
	Comparisons int `json:"comparisons"`
	// Heavy reports whether overlap looks heavy enough to warn about.
	Heavy bool `json:"heavy"`
}

// Estimate computes pairwise intersection-over-smaller-area for the
// given boxes. Pure, order-independent, and bounded by MaxComparisons.
func Estimate(boxes []geometry.SourceRect, opts Options) Stats {
	var s Stats
	for i := 0; i < len(boxes); i++ {
		for j := i + 1; j < len(boxes); j++ {
			if opts.MaxComparisons > 0 && s.Comparisons >= opts.MaxComparisons {
				s.Heavy = looksHeavy(s, len(boxes), opts)
				return s
			}
			s.Comparisons++

			frac := pairFraction(boxes[i].Rect(), boxes[j].Rect())
			if frac > s.MaxOverlapFraction {
				s.MaxOverlapFraction = frac
			}
			if frac >= opts.OverlapThreshold {
				s.OverlappingPairs++
			}
		}
	}
	s.Heavy = looksHeavy(s, len(boxes), opts)
	return s
}

// pairFraction returns intersection area over the smaller box area.
func pairFraction(a, b geometry.RectInt) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	smaller := a.Area()
	if b.Area() < smaller {
		smaller = b.Area()
	}
	if smaller <= 0 {
		return 0
	}
	return float64(inter.Area()) / float64(smaller)
}

// looksHeavy applies the heavy-overlap predicate: enough overlapping
// pairs for the piece count, or one pair overlapping badly.
func looksHeavy(s Stats, pieceCount int, opts Options) bool {
	if pieceCount < 2 {
		return false
	}
	minPairs := opts.MinPairs
	if minPairs <= 0 {
		minPairs = int(float64(pieceCount)*0.06 + 0.5)
		if minPairs < 2 {
			minPairs = 2
		}
	}
	if s.OverlappingPairs >= minPairs {
		return true
	}
	return s.MaxOverlapFraction >= opts.HeavyMaxFraction
}
