// Package quality computes frame-quality metrics from the grayscale data
// already produced during segmentation and turns them into graded
// guidance messages.
package quality

import (
	"image"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// Metrics holds the per-frame quality measurements. Motion and foreground
// coverage are optional because the first frame of a session has no
// previous frame and a failed segmentation has no mask.
type Metrics struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	LumaMean float64 `json:"lumaMean"`
	LumaStd  float64 `json:"lumaStd"`
	// LapVar is the variance of the Laplacian, a sharpness proxy.
	LapVar float64 `json:"lapVar"`

	Motion    float64 `json:"motion,omitempty"`
	HasMotion bool    `json:"hasMotion"`

	ForegroundRatio float64 `json:"foregroundRatio,omitempty"`
	HasForeground   bool    `json:"hasForeground"`
}

// Compute measures luma statistics and sharpness from a grayscale frame.
// An empty mat yields zeroed metrics.
func Compute(gray gocv.Mat) Metrics {
	if gray.Empty() {
		return Metrics{}
	}

	rows, cols := gray.Rows(), gray.Cols()
	luma := make([]float64, 0, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			luma = append(luma, float64(gray.GetUCharAt(y, x)))
		}
	}

	m := Metrics{
		Width:    cols,
		Height:   rows,
		LumaMean: stat.Mean(luma, nil),
	}
	m.LumaStd = stat.StdDev(luma, nil)
	m.LapVar = laplacianVariance(gray)
	return m
}

// WithForeground returns a copy of the metrics carrying the foreground
// coverage ratio measured from the segmentation mask.
func (m Metrics) WithForeground(ratio float64) Metrics {
	m.ForegroundRatio = ratio
	m.HasForeground = true
	return m
}

// WithMotion returns a copy of the metrics carrying the motion score.
func (m Metrics) WithMotion(score float64) Metrics {
	m.Motion = score
	m.HasMotion = true
	return m
}

// laplacianVariance measures sharpness: blurred frames have a flat
// Laplacian response and a low variance.
func laplacianVariance(gray gocv.Mat) float64 {
	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 3, 1, 0, gocv.BorderDefault)

	rows, cols := lap.Rows(), lap.Cols()
	n := float64(rows * cols)
	if n == 0 {
		return 0
	}

	var sum float64
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			sum += lap.GetDoubleAt(y, x)
		}
	}
	mean := sum / n

	var variance float64
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			d := lap.GetDoubleAt(y, x) - mean
			variance += d * d
		}
	}
	return variance / n
}

// MotionScore computes the mean absolute pixel difference between the
// current grayscale frame and the retained previous one. The previous
// frame is resized when the two passes ran at different resolutions
// (live vs capture). Returns 0 when either mat is empty.
func MotionScore(prev, cur gocv.Mat) float64 {
	if prev.Empty() || cur.Empty() {
		return 0
	}

	cmp := prev
	if prev.Rows() != cur.Rows() || prev.Cols() != cur.Cols() {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(prev, &resized, image.Pt(cur.Cols(), cur.Rows()), 0, 0, gocv.InterpolationArea)
		cmp = resized
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(cmp, cur, &diff)
	return diff.Mean().Val1
}
