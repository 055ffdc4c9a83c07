package extract

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"puzzle-scanner/internal/frame"
	"puzzle-scanner/internal/segment"
	"puzzle-scanner/internal/sensitivity"
)

func scanFrame(t *testing.T, w, h int, pieces []image.Rectangle) *segment.Result {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 235, G: 235, B: 235, A: 255}), image.Point{}, draw.Src)
	for _, r := range pieces {
		draw.Draw(img, r, image.NewUniform(color.RGBA{R: 25, G: 25, B: 25, A: 255}), image.Point{}, draw.Src)
	}
	res := segment.Segment(frame.FromImage(img), sensitivity.ToParams(sensitivity.Medium), 640)
	t.Cleanup(res.Close)
	return res
}

func TestExtractKeepsCenteredSquare(t *testing.T) {
	seg := scanFrame(t, 200, 160, []image.Rectangle{image.Rect(60, 50, 120, 110)})
	pieces, stats, err := Extract(seg, DefaultParams())
	require.NoError(t, err)
	require.Len(t, pieces, 1)
	require.Equal(t, 1, stats.Kept)

	p := pieces[0]
	require.Equal(t, 1, p.ID)
	require.GreaterOrEqual(t, p.Solidity, 0.9)
	require.InDelta(t, 1.0, p.AspectRatio, 0.2)
	require.GreaterOrEqual(t, len(p.ContourProcessed), 3)
	require.NotNil(t, p.Cutout)
}

func TestExtractRejectsBorderTouchingCandidates(t *testing.T) {
	// Square flush with the left frame edge.
	seg := scanFrame(t, 200, 160, []image.Rectangle{image.Rect(0, 50, 60, 110)})
	pieces, stats, err := Extract(seg, DefaultParams())
	require.NoError(t, err)
	require.Empty(t, pieces)
	require.Equal(t, 1, stats.BorderRejected)
}

func TestExtractRejectsElongatedBlobs(t *testing.T) {
	seg := scanFrame(t, 300, 200, []image.Rectangle{image.Rect(60, 90, 240, 104)})
	pieces, stats, err := Extract(seg, DefaultParams())
	require.NoError(t, err)
	require.Empty(t, pieces)
	require.Equal(t, 1, stats.AspectRejected)
}

func TestExtractRejectsLowSolidity(t *testing.T) {
	// A plus shape: two crossing bars. Its convex hull is much larger
	// than its area.
	seg := scanFrame(t, 300, 200, []image.Rectangle{
		image.Rect(120, 40, 150, 160),
		image.Rect(80, 85, 220, 115),
	})
	pieces, stats, err := Extract(seg, DefaultParams())
	require.NoError(t, err)
	require.Empty(t, pieces)
	require.Equal(t, 1, stats.SolidityRejected)
}

func TestExtractHonorsPieceCap(t *testing.T) {
	seg := scanFrame(t, 400, 200, []image.Rectangle{
		image.Rect(30, 60, 90, 120),
		image.Rect(150, 60, 210, 120),
		image.Rect(270, 60, 330, 120),
	})
	p := DefaultParams()
	p.MaxPieces = 2
	pieces, stats, err := Extract(seg, p)
	require.NoError(t, err)
	require.Len(t, pieces, 2)
	require.True(t, stats.CapReached)

	// Deterministic cap: the first candidates in discovery order win.
	require.Equal(t, 1, pieces[0].ID)
	require.Equal(t, 2, pieces[1].ID)
}

func TestExtractCutoutAlphaIsolatesPiece(t *testing.T) {
	seg := scanFrame(t, 200, 160, []image.Rectangle{image.Rect(60, 50, 120, 110)})
	pieces, _, err := Extract(seg, DefaultParams())
	require.NoError(t, err)
	require.Len(t, pieces, 1)

	cut := pieces[0].Cutout
	b := cut.Bounds()

	// Padding ring is transparent.
	require.Zero(t, cut.NRGBAAt(b.Min.X, b.Min.Y).A)
	// Piece center is opaque and dark.
	c := cut.NRGBAAt(b.Dx()/2, b.Dy()/2)
	require.Equal(t, uint8(255), c.A)
	require.Less(t, c.R, uint8(80))
}

func TestExtractDegenerateCandidateSkippedSilently(t *testing.T) {
	seg := scanFrame(t, 200, 160, []image.Rectangle{image.Rect(60, 50, 120, 110)})
	// Inject a degenerate candidate ahead of the good one.
	seg.Candidates = append([]segment.Candidate{{ID: 99}}, seg.Candidates...)

	pieces, stats, err := Extract(seg, DefaultParams())
	require.NoError(t, err)
	require.Len(t, pieces, 1)
	require.Equal(t, 1, stats.DegenerateSkipped)
}

func TestExtractNoPixelAccessIsHardError(t *testing.T) {
	seg := scanFrame(t, 200, 160, []image.Rectangle{image.Rect(60, 50, 120, 110)})
	res := &segment.Result{Candidates: seg.Candidates, Debug: seg.Debug, Processed: gocv.NewMat(), Gray: gocv.NewMat()}
	defer res.Close()
	_, _, err := Extract(res, DefaultParams())
	require.ErrorIs(t, err, ErrNoPixelAccess)
}

func TestExtractEmptyResultIsNotAnError(t *testing.T) {
	pieces, stats, err := Extract(&segment.Result{}, DefaultParams())
	require.NoError(t, err)
	require.Empty(t, pieces)
	require.Zero(t, stats.Considered)
}
