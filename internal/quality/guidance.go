package quality

// Severity grades a guidance item. The overall frame status is the worst
// severity among all triggered items.
type Severity int

const (
	SeverityGood Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityBad
)

func (s Severity) String() string {
	switch s {
	case SeverityGood:
		return "good"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityBad:
		return "bad"
	default:
		return "unknown"
	}
}

// Guidance is one user-facing message derived from the metrics.
type Guidance struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Report is the full guidance output for one frame.
type Report struct {
	Metrics Metrics    `json:"metrics"`
	Items   []Guidance `json:"items"`
	Overall Severity   `json:"overall"`
}

// Thresholds for the graded guidance bands. The "bad" bands mark frames
// the classifier cannot be trusted on; the "warn" bands mark degraded
// but usable frames.
const (
	darkBad    = 60
	darkWarn   = 85
	brightWarn = 195
	brightBad  = 220

	contrastBad  = 18
	contrastWarn = 28

	sharpBad  = 35
	sharpWarn = 70

	motionWarn = 15
	motionBad  = 35

	foregroundMin = 0.01
	foregroundMax = 0.75
)

// Evaluate maps metrics to graded guidance. Pure: it reads nothing but
// the metrics passed in.
func Evaluate(m Metrics) Report {
	r := Report{Metrics: m, Overall: SeverityGood}

	switch {
	case m.LumaMean < darkBad:
		r.add("too-dark", "Too dark: add more light", SeverityBad)
	case m.LumaMean < darkWarn:
		r.add("dim", "A bit dark: more light will help", SeverityWarn)
	case m.LumaMean > brightBad:
		r.add("too-bright", "Too bright: reduce glare or direct light", SeverityBad)
	case m.LumaMean > brightWarn:
		r.add("bright", "Quite bright: watch for glare", SeverityWarn)
	}

	switch {
	case m.LumaStd < contrastBad:
		r.add("low-contrast", "Low contrast: use a plainer, contrasting background", SeverityBad)
	case m.LumaStd < contrastWarn:
		r.add("flat", "Contrast is low: a plainer background helps", SeverityWarn)
	}

	switch {
	case m.LapVar < sharpBad:
		r.add("very-blurry", "Very blurry: hold the camera steady and refocus", SeverityBad)
	case m.LapVar < sharpWarn:
		r.add("blurry", "Slightly blurry: hold steadier", SeverityWarn)
	}

	if m.HasMotion {
		switch {
		case m.Motion > motionBad:
			r.add("heavy-motion", "Heavy motion: hold the camera still", SeverityBad)
		case m.Motion > motionWarn:
			r.add("motion", "Some motion: steadier is better", SeverityWarn)
		}
	}

	if m.HasForeground {
		switch {
		case m.ForegroundRatio < foregroundMin:
			r.add("no-foreground", "No pieces in view: point the camera at the pieces", SeverityWarn)
		case m.ForegroundRatio > foregroundMax:
			r.add("too-much-foreground", "Too much foreground: move the camera back", SeverityBad)
		}
	}

	if len(r.Items) == 0 {
		r.add("ok", "Frame looks good", SeverityGood)
	}
	return r
}

// NotePieces appends the piece-count-aware guidance: zero survivors after
// filtering, and hitting the extraction cap.
func (r *Report) NotePieces(kept int, capReached bool) {
	if kept == 0 {
		r.add("no-pieces", "No pieces detected: spread them out on a plain background", SeverityWarn)
	}
	if capReached {
		r.add("pieces-cap", "Piece limit reached: some pieces were not analyzed", SeverityWarn)
	}
}

// NoteOverlap appends a warning when pieces overlap too heavily to
// classify reliably.
func (r *Report) NoteOverlap(heavy bool) {
	if heavy {
		r.add("heavy-overlap", "Pieces overlap heavily: spread them apart", SeverityWarn)
	}
}

func (r *Report) add(code, message string, sev Severity) {
	r.Items = append(r.Items, Guidance{Code: code, Message: message, Severity: sev})
	if sev > r.Overall {
		r.Overall = sev
	}
}
