package overlay

import "github.com/bryanchriswhite/RegionShot/internal/capture"

type phase int

const (
	phaseIdle phase = iota
	phaseDragging
	phaseDone
	phaseCancelled
)

// session is the drag state machine for one overlay interaction. It is kept
// free of X so pointer/key sequences can be driven directly in tests. The
// surface owns the window; the session only decides what the events mean.
type session struct {
	phase    phase
	anchorX  int
	anchorY  int
	curX     int
	curY     int
	box      capture.Box
	selected bool
}

// press records the drag anchor. Presses while already dragging re-anchor,
// matching a fresh button press after a missed release.
func (s *session) press(x, y int) {
	if s.phase != phaseIdle && s.phase != phaseDragging {
		return
	}
	s.phase = phaseDragging
	s.anchorX, s.anchorY = x, y
	s.curX, s.curY = x, y
}

// motion moves the free corner. Returns true when the visuals need a
// repaint, which is every motion event while dragging.
func (s *session) motion(x, y int) bool {
	if s.phase != phaseDragging {
		return false
	}
	s.curX, s.curY = x, y
	return true
}

// release finalizes the selection. A zero extent on either axis is discarded
// rather than producing a degenerate box.
func (s *session) release(x, y int) {
	if s.phase != phaseDragging {
		return
	}
	s.curX, s.curY = x, y
	if box, ok := capture.NormalizeBox(s.anchorX, s.anchorY, x, y); ok {
		s.box = box
		s.selected = true
	}
	s.phase = phaseDone
}

// escape discards any in-progress rectangle and ends the session.
func (s *session) escape() {
	if s.phase == phaseDone || s.phase == phaseCancelled {
		return
	}
	s.phase = phaseCancelled
}

// finished reports whether the session reached a terminal phase.
func (s *session) finished() bool {
	return s.phase == phaseDone || s.phase == phaseCancelled
}

// dragging reports whether a rectangle is currently being drawn.
func (s *session) dragging() bool { return s.phase == phaseDragging }

// corners returns the current visual rectangle, normalized per axis for
// drawing. Valid only while dragging.
func (s *session) corners() (x0, y0, x1, y1 int) {
	x0, x1 = s.anchorX, s.curX
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	y0, y1 = s.anchorY, s.curY
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return x0, y0, x1, y1
}

// result returns the finalized box. cancelled is true when no valid
// selection was made, whether by Escape or a zero-extent drag.
func (s *session) result() (box capture.Box, cancelled bool) {
	if !s.selected {
		return capture.Box{}, true
	}
	return s.box, false
}
