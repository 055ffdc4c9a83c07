// Package classify decides whether an extracted piece is a corner piece,
// an edge piece, or neither, from straight segments found on its own
// boundary. Borderline evidence resolves to unknown, never to a
// confident guess.
package classify

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"puzzle-scanner/internal/extract"
	"puzzle-scanner/internal/sensitivity"
)

// Kind is the classification outcome.
type Kind int

const (
	Corner Kind = iota
	Edge
	NonEdge
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Corner:
		return "corner"
	case Edge:
		return "edge"
	case NonEdge:
		return "nonEdge"
	default:
		return "unknown"
	}
}

// Classification is the outcome attached to a piece.
type Classification struct {
	Kind       Kind    `json:"kind"`
	Confidence float64 `json:"confidence"`
	Detail     string  `json:"detail"`
}

// Options configures the boundary-line search.
type Options struct {
	CannyLow  float64
	CannyHigh float64
	// MinLineLengthRatio is the minimum segment length as a fraction of
	// the ROI's largest dimension.
	MinLineLengthRatio float64
	// AngleToleranceDeg is how far from perpendicular the secondary
	// segment may be.
	AngleToleranceDeg float64
	// ConservativeMargin downgrades corner/edge to unknown when the
	// best segment is within this fraction of the minimum length.
	ConservativeMargin float64
}

// DefaultOptions derives classifier options from the sensitivity bundle.
func DefaultOptions(p sensitivity.Params) Options {
	return Options{
		CannyLow:           p.CannyLow,
		CannyHigh:          p.CannyHigh,
		MinLineLengthRatio: p.MinLineLengthRatio,
		AngleToleranceDeg:  20,
		ConservativeMargin: 0.10,
	}
}

// minROIDim is the smallest ROI dimension worth running edge detection
// on; anything smaller is unknown by construction.
const minROIDim = 12

// nonEdgeConfidence is the fixed moderate confidence for pieces with no
// straight side: no strong evidence either way.
const nonEdgeConfidence = 0.5

// Bounds of the confidence band for downgraded borderline outcomes.
const (
	unknownConfMin = 0.05
	unknownConfMax = 0.25
)

type lineSegment struct {
	length   float64
	angleDeg float64
}

// Classify runs the decision tree for one piece. It is pure with respect
// to the piece (the piece is not mutated) and never fails: every problem
// resolves to an outcome, worst case unknown with zero confidence.
func Classify(piece extract.Piece, opts Options) Classification {
	if len(piece.ContourProcessed) < 3 {
		return Classification{Kind: Unknown, Confidence: 0, Detail: "degenerate contour"}
	}
	roi := piece.CutoutBox
	maxDim := roi.Width
	if roi.Height > maxDim {
		maxDim = roi.Height
	}
	if piece.Cutout == nil || maxDim < minROIDim {
		return Classification{Kind: Unknown, Confidence: 0, Detail: "roi too small"}
	}

	segments := boundarySegments(piece, opts, maxDim)
	primary, secondary := pickSegments(segments, opts.AngleToleranceDeg)

	maxF := float64(maxDim)
	var rPrim, rSec float64
	if primary != nil {
		rPrim = primary.length / maxF
	}
	if secondary != nil {
		rSec = secondary.length / maxF
	}
	return decide(rPrim, rSec, opts)
}

// boundarySegments detects straight segments restricted to the piece's
// outer boundary. Interior texture and print patterns must not
// contribute straight-line evidence, so edge detection is masked to the
// morphological gradient ring of the piece's own mask.
func boundarySegments(piece extract.Piece, opts Options, maxDim int) []lineSegment {
	roi := piece.CutoutBox

	// Piece mask inside the ROI.
	shifted := make([]image.Point, len(piece.ContourProcessed))
	for i, pt := range piece.ContourProcessed {
		shifted[i] = image.Pt(int(pt.X+0.5)-roi.X, int(pt.Y+0.5)-roi.Y)
	}
	mask := gocv.NewMatWithSize(roi.Height, roi.Width, gocv.MatTypeCV8U)
	defer mask.Close()
	polys := gocv.NewPointsVectorFromPoints([][]image.Point{shifted})
	defer polys.Close()
	gocv.FillPoly(&mask, polys, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	// Boundary ring, widened by one dilation so Canny responses right
	// at the mask edge stay inside it.
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(3, 3))
	defer kernel.Close()
	ring := gocv.NewMat()
	defer ring.Close()
	gocv.MorphologyEx(mask, &ring, gocv.MorphGradient, kernel)
	gocv.Dilate(ring, &ring, kernel)

	// Grayscale of the isolated cutout.
	cutMat, err := gocv.NewMatFromBytes(roi.Height, roi.Width, gocv.MatTypeCV8UC4, piece.Cutout.Pix)
	if err != nil {
		return nil
	}
	defer cutMat.Close()
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(cutMat, &gray, gocv.ColorRGBAToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, float32(opts.CannyLow), float32(opts.CannyHigh))

	boundary := gocv.NewMat()
	defer boundary.Close()
	gocv.BitwiseAnd(edges, ring, &boundary)

	minLen := opts.MinLineLengthRatio * float64(maxDim)
	votes := int(minLen * 0.6)
	if votes < 10 {
		votes = 10
	}
	maxGap := float32(float64(maxDim)*0.05 + 2)

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(boundary, &lines, 1, math.Pi/180, votes, float32(minLen), maxGap)

	segments := make([]lineSegment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		dx := float64(v[2] - v[0])
		dy := float64(v[3] - v[1])
		segments = append(segments, lineSegment{
			length:   math.Hypot(dx, dy),
			angleDeg: normalizeAngle(math.Atan2(dy, dx) * 180 / math.Pi),
		})
	}
	return segments
}

// pickSegments finds the longest segment and the longest segment roughly
// perpendicular to it. Judging the second side relative to the first,
// rather than against the image axes, keeps the decision independent of
// how the piece happens to be rotated in the frame.
func pickSegments(segments []lineSegment, toleranceDeg float64) (primary, secondary *lineSegment) {
	for i := range segments {
		if primary == nil || segments[i].length > primary.length {
			primary = &segments[i]
		}
	}
	if primary == nil {
		return nil, nil
	}
	for i := range segments {
		if &segments[i] == primary {
			continue
		}
		if !roughlyPerpendicular(primary.angleDeg, segments[i].angleDeg, toleranceDeg) {
			continue
		}
		if secondary == nil || segments[i].length > secondary.length {
			secondary = &segments[i]
		}
	}
	return primary, secondary
}

// decide is the pure decision tree over the primary and secondary length
// ratios. Ratios of zero mean no qualifying segment.
func decide(rPrim, rSec float64, opts Options) Classification {
	minRatio := opts.MinLineLengthRatio

	primOK := rPrim >= minRatio
	secOK := rSec >= minRatio

	if !primOK {
		return Classification{
			Kind:       NonEdge,
			Confidence: nonEdgeConfidence,
			Detail:     "no straight boundary segment",
		}
	}

	var c Classification
	weakest := rPrim
	if secOK {
		c = Classification{
			Kind:       Corner,
			Confidence: math.Min(lengthConfidence(rPrim, minRatio), lengthConfidence(rSec, minRatio)),
			Detail:     "two perpendicular straight sides",
		}
		if rSec < weakest {
			weakest = rSec
		}
	} else {
		c = Classification{
			Kind:       Edge,
			Confidence: lengthConfidence(rPrim, minRatio),
			Detail:     "one straight side",
		}
	}

	// Conservative override: evidence barely over the bar must not
	// produce a confident corner/edge call.
	if weakest < minRatio*(1+opts.ConservativeMargin) {
		conf := clamp(c.Confidence, unknownConfMin, unknownConfMax)
		return Classification{
			Kind:       Unknown,
			Confidence: conf,
			Detail:     fmt.Sprintf("borderline straight-edge evidence (ratio %.3f)", weakest),
		}
	}
	return c
}

// lengthConfidence maps a length ratio to [0, 1]: zero below the
// threshold, then linear up to 1 at the full ROI dimension.
func lengthConfidence(ratio, minRatio float64) float64 {
	if ratio < minRatio {
		return 0
	}
	if minRatio >= 1 {
		return 1
	}
	return clamp((ratio-minRatio)/(1-minRatio), 0, 1)
}

// normalizeAngle folds an angle in degrees into [0, 180).
func normalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 180)
	if deg < 0 {
		deg += 180
	}
	return deg
}

// roughlyPerpendicular reports whether two undirected line angles are
// within tolerance of 90 degrees apart.
func roughlyPerpendicular(a, b, toleranceDeg float64) bool {
	d := math.Abs(a - b)
	if d > 90 {
		d = 180 - d
	}
	return math.Abs(d-90) <= toleranceDeg
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
