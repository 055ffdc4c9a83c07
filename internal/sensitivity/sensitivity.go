// Package sensitivity maps the single user-facing sensitivity control to
// the numeric thresholds used by segmentation, extraction, and
// classification, so one setting tunes the whole chain consistently.
package sensitivity

import "fmt"

// Level is the three-step user control.
type Level int

const (
	// Low suppresses false positives: stricter area, solidity, and
	// aspect gates, a wider Canny band, and longer required lines.
	Low Level = iota
	// Medium is the default midpoint.
	Medium
	// High surfaces more candidates at the cost of noise.
	High
)

func (l Level) String() string {
	switch l {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// ParseLevel converts the wire form back to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	default:
		return Medium, fmt.Errorf("unknown sensitivity level %q", s)
	}
}

// Params is the immutable bundle of thresholds derived from a Level.
type Params struct {
	// Kernel sizes are odd so the morphology stays centered.
	BlurKernelSize  int
	MorphKernelSize int

	// MinAreaRatio is the minimum contour area as a fraction of the
	// processed frame area.
	MinAreaRatio float64

	// Candidate shape gates.
	MinSolidity    float64
	MaxAspectRatio float64

	// Canny hysteresis band for boundary edge detection.
	CannyLow  float64
	CannyHigh float64

	// MinLineLengthRatio is the minimum straight-segment length as a
	// fraction of the piece ROI's largest dimension.
	MinLineLengthRatio float64
}

// ToParams maps a Level to its parameter bundle. Pure and total over the
// three levels; anything else falls back to Medium.
func ToParams(level Level) Params {
	switch level {
	case Low:
		return Params{
			BlurKernelSize:     5,
			MorphKernelSize:    5,
			MinAreaRatio:       0.0020,
			MinSolidity:        0.85,
			MaxAspectRatio:     3.5,
			CannyLow:           80,
			CannyHigh:          160,
			MinLineLengthRatio: 0.35,
		}
	case High:
		return Params{
			BlurKernelSize:     7,
			MorphKernelSize:    7,
			MinAreaRatio:       0.0010,
			MinSolidity:        0.75,
			MaxAspectRatio:     5.0,
			CannyLow:           40,
			CannyHigh:          80,
			MinLineLengthRatio: 0.25,
		}
	default:
		return Params{
			BlurKernelSize:     5,
			MorphKernelSize:    5,
			MinAreaRatio:       0.0015,
			MinSolidity:        0.80,
			MaxAspectRatio:     4.0,
			CannyLow:           60,
			CannyHigh:          120,
			MinLineLengthRatio: 0.30,
		}
	}
}
