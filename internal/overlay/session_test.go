package overlay

import (
	"testing"

	"github.com/bryanchriswhite/RegionShot/internal/capture"
)

func TestSessionDragProducesNormalizedBox(t *testing.T) {
	var s session
	s.press(200, 200)
	s.motion(120, 150)
	s.release(50, 50)

	if !s.finished() {
		t.Fatal("release should finish the session")
	}
	box, cancelled := s.result()
	if cancelled {
		t.Fatal("a real drag should not be cancelled")
	}
	want := capture.Box{Left: 50, Top: 50, Right: 200, Bottom: 200}
	if box != want {
		t.Errorf("box = %+v, want %+v", box, want)
	}
}

func TestSessionZeroExtentReleaseCancels(t *testing.T) {
	var s session
	s.press(100, 100)
	s.release(100, 180)

	if !s.finished() {
		t.Fatal("release should finish the session")
	}
	if _, cancelled := s.result(); !cancelled {
		t.Error("zero-width drag should count as cancelled")
	}
}

func TestSessionClickWithoutDragCancels(t *testing.T) {
	var s session
	s.press(100, 100)
	s.release(100, 100)

	if _, cancelled := s.result(); !cancelled {
		t.Error("a plain click should count as cancelled")
	}
}

func TestSessionEscapeDiscardsDrag(t *testing.T) {
	var s session
	s.press(10, 10)
	s.motion(90, 90)
	s.escape()

	if !s.finished() {
		t.Fatal("escape should finish the session")
	}
	if _, cancelled := s.result(); !cancelled {
		t.Error("escaped session should be cancelled")
	}
}

func TestSessionEscapeAfterReleaseIsNoop(t *testing.T) {
	var s session
	s.press(10, 10)
	s.release(60, 60)
	s.escape()

	box, cancelled := s.result()
	if cancelled {
		t.Error("escape after release must not discard the selection")
	}
	if box != (capture.Box{Left: 10, Top: 10, Right: 60, Bottom: 60}) {
		t.Errorf("box = %+v", box)
	}
}

func TestSessionMotionBeforePress(t *testing.T) {
	var s session
	if s.motion(50, 50) {
		t.Error("motion before press should not request a repaint")
	}
	if s.dragging() {
		t.Error("motion alone must not start a drag")
	}
}

func TestSessionRepressReanchors(t *testing.T) {
	var s session
	s.press(10, 10)
	s.motion(50, 50)
	s.press(100, 100)
	s.release(150, 160)

	box, cancelled := s.result()
	if cancelled {
		t.Fatal("drag should complete")
	}
	want := capture.Box{Left: 100, Top: 100, Right: 150, Bottom: 160}
	if box != want {
		t.Errorf("box = %+v, want %+v", box, want)
	}
}

func TestSessionCornersNormalized(t *testing.T) {
	var s session
	s.press(200, 50)
	if !s.motion(40, 120) {
		t.Fatal("motion while dragging should request a repaint")
	}

	x0, y0, x1, y1 := s.corners()
	if x0 != 40 || y0 != 50 || x1 != 200 || y1 != 120 {
		t.Errorf("corners = (%d,%d)-(%d,%d), want (40,50)-(200,120)", x0, y0, x1, y1)
	}
}

func TestSessionReleaseAfterEscapeIgnored(t *testing.T) {
	var s session
	s.press(10, 10)
	s.escape()
	s.release(90, 90)

	if _, cancelled := s.result(); !cancelled {
		t.Error("release after escape must not produce a selection")
	}
}
