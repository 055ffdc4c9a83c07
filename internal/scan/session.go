package scan

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"puzzle-scanner/internal/frame"
	"puzzle-scanner/internal/sensitivity"
)

// Session runs the pipeline over a stream of frames from one camera.
// It keeps the previous grayscale frame for motion scoring and
// serializes passes so at most one runs at a time.
type Session struct {
	ID     uuid.UUID
	cfg    Config
	params sensitivity.Params

	mu       sync.Mutex
	prevGray gocv.Mat
	closed   bool

	inFlight   atomic.Bool
	captureSeq atomic.Uint64
}

// NewSession creates a session with the given config.
func NewSession(cfg Config) *Session {
	return &Session{
		ID:       uuid.New(),
		cfg:      cfg,
		params:   sensitivity.ToParams(cfg.Level),
		prevGray: gocv.NewMat(),
	}
}

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// Params returns the sensitivity bundle the session runs with.
func (s *Session) Params() sensitivity.Params { return s.params }

// Scan runs one live pass at the live processing width. Blocks until
// any pass already in progress has finished.
func (s *Session) Scan(f frame.Frame) (*Result, error) {
	return s.run(f, s.cfg.TargetWidth)
}

// TryScan runs a live pass unless one is already in progress, in which
// case the frame is skipped rather than queued. The second return is
// false when the frame was skipped.
func (s *Session) TryScan(f frame.Frame) (*Result, bool, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, false, nil
	}
	defer s.inFlight.Store(false)
	res, err := s.run(f, s.cfg.TargetWidth)
	if err != nil {
		return nil, true, err
	}
	return res, true, nil
}

// Capture runs a one-shot pass at the capture width. Each call bumps
// the capture sequence; if another Capture starts before this one
// finishes, the older result is discarded and fresh is false.
func (s *Session) Capture(f frame.Frame) (res *Result, fresh bool, err error) {
	seq := s.captureSeq.Add(1)
	res, err = s.run(f, s.cfg.CaptureWidth)
	if err != nil {
		return nil, false, err
	}
	if !s.captureLatest(seq) {
		return nil, false, nil
	}
	return res, true, nil
}

// captureLatest reports whether seq is still the newest capture.
func (s *Session) captureLatest(seq uint64) bool {
	return s.captureSeq.Load() == seq
}

func (s *Session) run(f frame.Frame, width int) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, gray, err := runPass(f, s.params, s.cfg, width, s.prevGray)
	if err != nil {
		gray.Close()
		return nil, err
	}
	s.prevGray.Close()
	s.prevGray = gray
	return res, nil
}

// Close releases the retained motion frame. The session must not be
// used afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.prevGray.Close()
}
