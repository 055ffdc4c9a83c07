// Package extract filters segmentation candidates and produces isolated
// per-piece cutouts ready for classification.
package extract

import (
	"errors"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"puzzle-scanner/internal/segment"
	"puzzle-scanner/pkg/geometry"
)

// ErrNoPixelAccess reports that the processed-frame pixel data needed for
// cropping is unavailable. This is a broken execution environment, not a
// data problem, so it surfaces as a hard error instead of an empty result.
var ErrNoPixelAccess = errors.New("extract: processed frame pixels unavailable")

// Params configures candidate filtering.
type Params struct {
	// BorderMarginPx rejects candidates whose processed-space bounding
	// box comes within this many pixels of the frame edge. Clipped
	// pieces would fake straight-edge evidence from the frame border.
	BorderMarginPx int
	// PaddingPx expands the cutout crop on all sides, clamped to the
	// frame bounds.
	PaddingPx int
	// Shape gates, usually taken from the sensitivity params.
	MinSolidity    float64
	MaxAspectRatio float64
	// MaxPieces caps how many candidates are kept, in discovery order.
	MaxPieces int
}

// DefaultParams returns the filter constants that are not
// sensitivity-controlled.
func DefaultParams() Params {
	return Params{
		BorderMarginPx: 4,
		PaddingPx:      6,
		MinSolidity:    0.80,
		MaxAspectRatio: 4.0,
		MaxPieces:      48,
	}
}

// Piece is an extracted candidate with geometry in both coordinate
// spaces and an isolated pixel cutout.
type Piece struct {
	segment.Candidate

	// BoxProcessed is the bounding box in processed coordinates.
	BoxProcessed geometry.ProcessedRect `json:"boxProcessed"`
	// AreaProcessed is the contour area in processed pixels.
	AreaProcessed float64 `json:"areaProcessed"`
	// Solidity is contour area over convex-hull area, in (0, 1].
	Solidity float64 `json:"solidity"`
	// AspectRatio is max(w/h, h/w), always >= 1.
	AspectRatio float64 `json:"aspectRatio"`
	// ContourProcessed is the piece outline in the same pixel space as
	// the cutout; the classifier depends on that agreement.
	ContourProcessed []geometry.ProcessedPoint `json:"contourProcessed"`

	// Cutout holds the piece pixels with a mask-shaped alpha channel
	// and a transparent background. Its origin is CutoutBox.
	Cutout *image.NRGBA `json:"-"`
	// CutoutBox is the padded crop region in processed coordinates.
	CutoutBox geometry.ProcessedRect `json:"cutoutBox"`
}

// Stats summarizes why candidates were rejected, for troubleshooting
// "why did my piece disappear".
type Stats struct {
	Considered        int  `json:"considered"`
	Kept              int  `json:"kept"`
	DegenerateSkipped int  `json:"degenerateSkipped"`
	BorderRejected    int  `json:"borderRejected"`
	AspectRejected    int  `json:"aspectRejected"`
	SolidityRejected  int  `json:"solidityRejected"`
	CapReached        bool `json:"capReached"`
}

// Extract filters the candidates of one segmentation pass and crops a
// cutout for each survivor. Per-candidate geometry failures are skipped
// and counted; an unusable processed frame is a hard error.
func Extract(seg *segment.Result, p Params) ([]Piece, Stats, error) {
	var stats Stats
	if seg == nil || len(seg.Candidates) == 0 {
		return nil, stats, nil
	}
	if seg.Processed.Empty() {
		return nil, stats, ErrNoPixelAccess
	}

	scale := seg.Debug.Scale
	pw, ph := seg.Debug.ProcessedWidth, seg.Debug.ProcessedHeight

	var pieces []Piece
	for _, cand := range seg.Candidates {
		if len(pieces) >= p.MaxPieces && p.MaxPieces > 0 {
			stats.CapReached = true
			break
		}
		stats.Considered++

		if len(cand.Contour) < 3 {
			stats.DegenerateSkipped++
			continue
		}

		// Back into processed space: cropping and classification must
		// share one pixel space.
		contour := scale.ContourToProcessed(cand.Contour)
		contour = refineContour(contour)
		if len(contour) < 3 {
			stats.DegenerateSkipped++
			continue
		}

		pts := geometry.ProcessedContourPoints(contour)
		box := geometry.BoundingBox(pts)
		if box.Empty() {
			stats.DegenerateSkipped++
			continue
		}

		// Frame-border touch: a clipped piece cannot be classified.
		if box.X < p.BorderMarginPx || box.Y < p.BorderMarginPx ||
			box.X+box.Width > pw-p.BorderMarginPx ||
			box.Y+box.Height > ph-p.BorderMarginPx {
			stats.BorderRejected++
			continue
		}

		aspect := math.Max(
			float64(box.Width)/float64(box.Height),
			float64(box.Height)/float64(box.Width),
		)
		if aspect > p.MaxAspectRatio {
			stats.AspectRejected++
			continue
		}

		area := geometry.PolygonArea(pts)
		hullArea := geometry.PolygonArea(geometry.ConvexHull(pts))
		if hullArea <= 0 {
			stats.DegenerateSkipped++
			continue
		}
		solidity := area / hullArea
		if solidity < p.MinSolidity {
			stats.SolidityRejected++
			continue
		}

		crop := paddedCrop(box, p.PaddingPx, pw, ph)
		cutout := renderCutout(seg.Processed, contour, crop)
		if cutout == nil {
			stats.DegenerateSkipped++
			continue
		}

		pieces = append(pieces, Piece{
			Candidate:        cand,
			BoxProcessed:     geometry.ProcessedRect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height},
			AreaProcessed:    area,
			Solidity:         solidity,
			AspectRatio:      aspect,
			ContourProcessed: contour,
			Cutout:           cutout,
			CutoutBox:        crop,
		})
		stats.Kept++
	}

	return pieces, stats, nil
}

// refineContour re-simplifies at a finer tolerance (~0.5% of perimeter)
// for crisper geometry than the segmenter's coarse pass.
func refineContour(contour []geometry.ProcessedPoint) []geometry.ProcessedPoint {
	ipts := make([]image.Point, len(contour))
	for i, pt := range contour {
		ipts[i] = image.Pt(int(pt.X+0.5), int(pt.Y+0.5))
	}

	pv := gocv.NewPointVectorFromPoints(ipts)
	defer pv.Close()
	epsilon := 0.005 * gocv.ArcLength(pv, true)
	approx := gocv.ApproxPolyDP(pv, epsilon, true)
	defer approx.Close()

	out := make([]geometry.ProcessedPoint, approx.Size())
	for i, pt := range approx.ToPoints() {
		out[i] = geometry.ProcessedPoint{X: float64(pt.X), Y: float64(pt.Y)}
	}
	return out
}

// paddedCrop expands the bounding box by padding on all sides, clamped
// to the processed frame.
func paddedCrop(box geometry.RectInt, padding, pw, ph int) geometry.ProcessedRect {
	x1 := box.X - padding
	y1 := box.Y - padding
	x2 := box.X + box.Width + padding
	y2 := box.Y + box.Height + padding
	if x1 < 0 {
		x1 = 0
	}
	if y1 < 0 {
		y1 = 0
	}
	if x2 > pw {
		x2 = pw
	}
	if y2 > ph {
		y2 = ph
	}
	return geometry.ProcessedRect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// renderCutout fills the contour into a mask over the crop region and
// composites an RGBA cutout whose alpha channel is that mask, isolating
// the piece from background clutter.
func renderCutout(processed gocv.Mat, contour []geometry.ProcessedPoint, crop geometry.ProcessedRect) *image.NRGBA {
	if crop.Width <= 0 || crop.Height <= 0 {
		return nil
	}

	shifted := make([]image.Point, len(contour))
	for i, pt := range contour {
		shifted[i] = image.Pt(int(pt.X+0.5)-crop.X, int(pt.Y+0.5)-crop.Y)
	}

	mask := gocv.NewMatWithSize(crop.Height, crop.Width, gocv.MatTypeCV8U)
	defer mask.Close()
	polys := gocv.NewPointsVectorFromPoints([][]image.Point{shifted})
	defer polys.Close()
	gocv.FillPoly(&mask, polys, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	out := image.NewNRGBA(image.Rect(0, 0, crop.Width, crop.Height))
	for y := 0; y < crop.Height; y++ {
		for x := 0; x < crop.Width; x++ {
			if mask.GetUCharAt(y, x) == 0 {
				continue
			}
			px := processed.GetVecbAt(crop.Y+y, crop.X+x)
			i := out.PixOffset(x, y)
			out.Pix[i] = px[0]
			out.Pix[i+1] = px[1]
			out.Pix[i+2] = px[2]
			out.Pix[i+3] = 255
		}
	}
	return out
}
