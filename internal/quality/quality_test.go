package quality

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func nominal() Metrics {
	return Metrics{Width: 640, Height: 480, LumaMean: 128, LumaStd: 45, LapVar: 120}
}

func TestEvaluateGoodFrame(t *testing.T) {
	r := Evaluate(nominal())
	require.Equal(t, SeverityGood, r.Overall)
	require.Len(t, r.Items, 1)
	require.Equal(t, "ok", r.Items[0].Code)
}

func TestEvaluateVeryBlurryIsBad(t *testing.T) {
	m := nominal()
	m.LapVar = 10
	r := Evaluate(m)
	require.Equal(t, SeverityBad, r.Overall)
}

func TestEvaluateLowContrastIsWarn(t *testing.T) {
	m := nominal()
	m.LumaStd = 22
	r := Evaluate(m)
	require.Equal(t, SeverityWarn, r.Overall)
}

func TestEvaluateMotionIsWarn(t *testing.T) {
	m := nominal().WithMotion(20)
	r := Evaluate(m)
	require.Equal(t, SeverityWarn, r.Overall)

	heavy := nominal().WithMotion(40)
	require.Equal(t, SeverityBad, Evaluate(heavy).Overall)
}

func TestEvaluateDarkFrame(t *testing.T) {
	m := nominal()
	m.LumaMean = 40
	r := Evaluate(m)
	require.Equal(t, SeverityBad, r.Overall)

	found := false
	for _, item := range r.Items {
		if item.Code == "too-dark" {
			found = true
		}
	}
	require.True(t, found)
}

func TestEvaluateForegroundBands(t *testing.T) {
	none := nominal().WithForeground(0.002)
	require.Equal(t, SeverityWarn, Evaluate(none).Overall)

	flooded := nominal().WithForeground(0.9)
	require.Equal(t, SeverityBad, Evaluate(flooded).Overall)
}

func TestNotePiecesZeroIsWarn(t *testing.T) {
	r := Evaluate(nominal())
	r.NotePieces(0, false)
	require.Equal(t, SeverityWarn, r.Overall)

	found := false
	for _, item := range r.Items {
		if item.Code == "no-pieces" && item.Severity == SeverityWarn {
			found = true
		}
	}
	require.True(t, found)
}

func TestNotePiecesCap(t *testing.T) {
	r := Evaluate(nominal())
	r.NotePieces(12, true)
	require.Equal(t, SeverityWarn, r.Overall)
}

func TestOverallIsWorstSeverity(t *testing.T) {
	m := nominal()
	m.LumaStd = 22 // warn
	m.LapVar = 10  // bad
	r := Evaluate(m)
	require.Equal(t, SeverityBad, r.Overall)
	require.GreaterOrEqual(t, len(r.Items), 2)
}

func TestComputeUniformMat(t *testing.T) {
	gray := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 0, 0, 0), 32, 32, gocv.MatTypeCV8U)
	defer gray.Close()

	m := Compute(gray)
	require.Equal(t, 32, m.Width)
	require.Equal(t, 32, m.Height)
	require.InDelta(t, 128.0, m.LumaMean, 0.01)
	require.InDelta(t, 0.0, m.LumaStd, 0.01)
	require.InDelta(t, 0.0, m.LapVar, 0.01)
}

func TestComputeEmptyMat(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	require.Equal(t, Metrics{}, Compute(empty))
}

func TestMotionScoreIdenticalFrames(t *testing.T) {
	a := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 0, 0, 0), 16, 16, gocv.MatTypeCV8U)
	defer a.Close()
	b := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 0, 0, 0), 16, 16, gocv.MatTypeCV8U)
	defer b.Close()
	require.InDelta(t, 0.0, MotionScore(a, b), 0.01)
}

func TestMotionScoreDifference(t *testing.T) {
	a := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 0, 0, 0), 16, 16, gocv.MatTypeCV8U)
	defer a.Close()
	b := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(130, 0, 0, 0), 16, 16, gocv.MatTypeCV8U)
	defer b.Close()
	require.InDelta(t, 30.0, MotionScore(a, b), 0.01)
}
