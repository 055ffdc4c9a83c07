// Package segment separates puzzle pieces from the background and
// produces raw contour candidates in source-frame coordinates.
package segment

import (
	"image"

	"gocv.io/x/gocv"

	"puzzle-scanner/internal/frame"
	"puzzle-scanner/internal/quality"
	"puzzle-scanner/internal/sensitivity"
	"puzzle-scanner/pkg/geometry"
)

// Candidate is one raw piece candidate found during segmentation.
// IDs are 1-based and assigned in contour discovery order; they stay
// attached to the piece through extraction and classification.
type Candidate struct {
	ID int `json:"id"`
	// Area is the approximate contour area in source-frame pixels.
	Area float64 `json:"area"`
	// Box is the axis-aligned bounding box in source coordinates.
	Box geometry.SourceRect `json:"box"`
	// Contour is the ordered, closed, simplified polygon in source
	// coordinates. May hold fewer than 3 points for degenerate blobs;
	// downstream stages skip those.
	Contour []geometry.SourcePoint `json:"contour"`
}

// Debug carries segmentation diagnostics.
type Debug struct {
	SourceWidth     int               `json:"sourceWidth"`
	SourceHeight    int               `json:"sourceHeight"`
	ProcessedWidth  int               `json:"processedWidth"`
	ProcessedHeight int               `json:"processedHeight"`
	Scale           geometry.ScaleMap `json:"scale"`
	// Inverted records whether the binary mask polarity was flipped
	// because foreground covered the majority of the frame.
	Inverted bool `json:"inverted"`
	// ContourCount is the number of external contours found before the
	// minimum-area filter.
	ContourCount int `json:"contourCount"`
}

// Result is one segmentation pass. It owns two native mats that later
// stages reuse: the processed-resolution RGBA frame (for cutout
// cropping) and the grayscale frame (for the motion slot). Callers must
// Close the result on every path.
type Result struct {
	Candidates []Candidate
	Debug      Debug
	Metrics    quality.Metrics

	// Processed is the downscaled RGBA frame all processed-space
	// geometry refers to.
	Processed gocv.Mat
	// Gray is the grayscale of Processed; the session retains a copy as
	// the previous frame for motion scoring.
	Gray gocv.Mat
}

// Close releases the native buffers. Safe to call on an empty result.
func (r *Result) Close() {
	r.Processed.Close()
	r.Gray.Close()
}

func emptyResult() *Result {
	return &Result{Processed: gocv.NewMat(), Gray: gocv.NewMat()}
}

// Segment runs one segmentation pass. Frames wider than targetWidth are
// downscaled preserving aspect ratio; smaller frames pass through. A
// frame with no usable pixel data yields an empty result, never an
// error; one bad tick must not take down a live loop.
func Segment(f frame.Frame, p sensitivity.Params, targetWidth int) *Result {
	if f.Empty() {
		return emptyResult()
	}

	src, err := f.ToMat()
	if err != nil {
		return emptyResult()
	}

	// Downscale to the processing resolution.
	processed := src
	pw, ph := f.Width, f.Height
	if targetWidth > 0 && f.Width > targetWidth {
		pw = targetWidth
		ph = int(float64(f.Height)*float64(targetWidth)/float64(f.Width) + 0.5)
		if ph < 1 {
			ph = 1
		}
		resized := gocv.NewMat()
		gocv.Resize(src, &resized, image.Pt(pw, ph), 0, 0, gocv.InterpolationArea)
		src.Close()
		processed = resized
	}
	scale := geometry.NewScaleMap(f.Width, pw)

	gray := gocv.NewMat()
	gocv.CvtColor(processed, &gray, gocv.ColorRGBAToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := oddKernel(p.BlurKernelSize)
	gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	// Otsu picks the threshold automatically from the luma histogram.
	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(blurred, &bin, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	// Pieces are assumed to occupy a minority of a mostly-uniform
	// background. If white covers more than half the frame, Otsu picked
	// the opposite polarity; flip so the pieces are foreground.
	total := pw * ph
	inverted := false
	if total > 0 && float64(gocv.CountNonZero(bin))/float64(total) > 0.5 {
		gocv.BitwiseNot(bin, &bin)
		inverted = true
	}

	// Close before open: closing first merges near-touching foreground
	// fragments, so the following open strips isolated speckle without
	// eroding real piece edges.
	mk := oddKernel(p.MorphKernelSize)
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(mk, mk))
	defer kernel.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.MorphologyEx(bin, &mask, gocv.MorphClose, kernel)
	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)

	fgRatio := 0.0
	if total > 0 {
		fgRatio = float64(gocv.CountNonZero(mask)) / float64(total)
	}

	// External contours only: pieces are solid blobs, internal topology
	// is irrelevant.
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	minArea := p.MinAreaRatio * float64(total)
	factor := scale.Factor

	var candidates []Candidate
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < minArea {
			continue
		}

		// Simplify to bound downstream point counts without materially
		// changing the shape.
		epsilon := 0.01 * gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, epsilon, true)
		points := approx.ToPoints()
		rect := gocv.BoundingRect(approx)
		approx.Close()

		srcContour := make([]geometry.SourcePoint, len(points))
		for j, pt := range points {
			srcContour[j] = scale.ToSource(geometry.ProcessedPoint{X: float64(pt.X), Y: float64(pt.Y)})
		}

		candidates = append(candidates, Candidate{
			ID:   len(candidates) + 1,
			Area: area * factor * factor,
			Box: scale.RectToSource(geometry.ProcessedRect{
				X:      rect.Min.X,
				Y:      rect.Min.Y,
				Width:  rect.Dx(),
				Height: rect.Dy(),
			}),
			Contour: srcContour,
		})
	}

	return &Result{
		Candidates: candidates,
		Debug: Debug{
			SourceWidth:     f.Width,
			SourceHeight:    f.Height,
			ProcessedWidth:  pw,
			ProcessedHeight: ph,
			Scale:           scale,
			Inverted:        inverted,
			ContourCount:    contours.Size(),
		},
		Metrics:   quality.Compute(gray).WithForeground(fgRatio),
		Processed: processed,
		Gray:      gray,
	}
}

// oddKernel clamps a kernel size to a sane odd value.
func oddKernel(k int) int {
	if k < 3 {
		k = 3
	}
	if k%2 == 0 {
		k++
	}
	return k
}
