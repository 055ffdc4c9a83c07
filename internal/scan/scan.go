// Package scan wires the pipeline stages together: segmentation,
// extraction, classification, overlap estimation, and guidance, plus
// the session state around them.
package scan

import (
	"gocv.io/x/gocv"

	"puzzle-scanner/internal/classify"
	"puzzle-scanner/internal/extract"
	"puzzle-scanner/internal/frame"
	"puzzle-scanner/internal/overlap"
	"puzzle-scanner/internal/quality"
	"puzzle-scanner/internal/segment"
	"puzzle-scanner/internal/sensitivity"
	"puzzle-scanner/pkg/geometry"
)

// Config holds the pipeline settings that are not sensitivity-derived.
type Config struct {
	Level sensitivity.Level
	// TargetWidth is the processing width for live ticks.
	TargetWidth int
	// CaptureWidth is the processing width for one-shot captures.
	CaptureWidth int
	// Filter holds the extraction constants; the solidity and aspect
	// gates are overridden from the sensitivity bundle at run time.
	Filter  extract.Params
	Overlap overlap.Options
}

// DefaultConfig returns the standard pipeline settings.
func DefaultConfig() Config {
	return Config{
		Level:        sensitivity.Medium,
		TargetWidth:  640,
		CaptureWidth: 1280,
		Filter:       extract.DefaultParams(),
		Overlap:      overlap.DefaultOptions(),
	}
}

// Result is one full pipeline pass. All per-piece geometry is reported
// in source-frame coordinates so overlay rendering never sees the
// processed space.
type Result struct {
	Pieces     []ClassifiedPiece `json:"pieces"`
	Counts     Counts            `json:"counts"`
	Quality    quality.Report    `json:"quality"`
	Overlap    overlap.Stats     `json:"overlap"`
	Debug      segment.Debug     `json:"debug"`
	Extraction extract.Stats     `json:"extraction"`
}

// runPass executes the pipeline once. prev is the retained previous
// grayscale frame (may be empty on the first pass); on success the
// returned Mat is the new slot value and the caller owns both. The
// returned Mat is empty when the pass failed.
func runPass(f frame.Frame, params sensitivity.Params, cfg Config, width int, prev gocv.Mat) (*Result, gocv.Mat, error) {
	seg := segment.Segment(f, params, width)
	defer seg.Close()

	metrics := seg.Metrics
	if !prev.Empty() && !seg.Gray.Empty() {
		metrics = metrics.WithMotion(quality.MotionScore(prev, seg.Gray))
	}

	fp := cfg.Filter
	fp.MinSolidity = params.MinSolidity
	fp.MaxAspectRatio = params.MaxAspectRatio

	extracted, stats, err := extract.Extract(seg, fp)
	if err != nil {
		return nil, gocv.NewMat(), err
	}

	opts := classify.DefaultOptions(params)
	pieces := make([]ClassifiedPiece, len(extracted))
	boxes := make([]geometry.SourceRect, len(extracted))
	for i, p := range extracted {
		pieces[i] = ClassifiedPiece{Piece: p, Classification: classify.Classify(p, opts)}
		boxes[i] = p.Box
	}

	ov := overlap.Estimate(boxes, cfg.Overlap)

	report := quality.Evaluate(metrics)
	report.NotePieces(len(pieces), stats.CapReached)
	report.NoteOverlap(ov.Heavy)

	newGray := gocv.NewMat()
	if !seg.Gray.Empty() {
		newGray = seg.Gray.Clone()
	}

	return &Result{
		Pieces:     pieces,
		Counts:     CountPieces(pieces),
		Quality:    report,
		Overlap:    ov,
		Debug:      seg.Debug,
		Extraction: stats,
	}, newGray, nil
}
