package overlay

import (
	"context"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/bryanchriswhite/RegionShot/internal/capture"
	"github.com/bryanchriswhite/RegionShot/internal/logger"
)

// Selection visuals: two glow outlines around an accent outline.
const (
	glowOuterPixel  = 0x5bb0ff
	glowInnerPixel  = 0x2f80ed
	accentPixel     = 0x02e16e
	overlayOpacity  = 0.3
	escapeKeysym    = 0xff1b // XK_Escape
	crosshairCursor = 34     // XC_crosshair in the "cursor" font
)

// x11Selector runs the selection overlay on a fresh X connection per call.
// No window is reused across calls.
type x11Selector struct {
	mu         sync.Mutex
	conn       *xgb.Conn
	win        xproto.Window
	cancelAtom xproto.Atom
}

// Select opens a full-screen override-redirect window above all others,
// grabs pointer and keyboard, and blocks in its own event loop until the
// user releases a drag or cancels.
func (s *x11Selector) Select(ctx context.Context) (capture.Box, bool, error) {
	if err := ctx.Err(); err != nil {
		return capture.Box{}, false, err
	}

	log := logger.WithComponent("overlay")

	conn, err := xgb.NewConn()
	if err != nil {
		return capture.Box{}, false, fmt.Errorf("connect to X server: %w", err)
	}
	defer conn.Close()

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	win, cancelAtom, err := s.createWindow(conn, screen)
	if err != nil {
		return capture.Box{}, false, err
	}
	defer func() {
		xproto.UngrabKeyboard(conn, xproto.TimeCurrentTime)
		xproto.UngrabPointer(conn, xproto.TimeCurrentTime)
		xproto.DestroyWindow(conn, win)
		conn.Sync()
	}()

	if err := s.grabInput(conn, win); err != nil {
		return capture.Box{}, false, err
	}

	escape, err := lookupKeycode(conn, setup, escapeKeysym)
	if err != nil {
		log.Warn().Err(err).Msg("Escape keycode lookup failed, keyboard cancel disabled")
	}

	gcs, err := s.createGCs(conn, win)
	if err != nil {
		return capture.Box{}, false, err
	}

	s.mu.Lock()
	s.conn = conn
	s.win = win
	s.cancelAtom = cancelAtom
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.win = 0
		s.mu.Unlock()
	}()

	// Force-close the session when the caller's context ends.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			s.Cancel()
		case <-watchDone:
		}
	}()

	sess := &session{}
	log.Debug().Msg("Overlay session started")

	for !sess.finished() {
		ev, xerr := conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return capture.Box{}, false, fmt.Errorf("overlay: X connection closed")
		}
		if xerr != nil {
			log.Debug().Str("error", xerr.Error()).Msg("X error during overlay session")
			continue
		}

		switch e := ev.(type) {
		case xproto.ButtonPressEvent:
			if e.Detail == xproto.ButtonIndex1 {
				sess.press(int(e.EventX), int(e.EventY))
				s.repaint(conn, win, gcs, sess)
			}
		case xproto.MotionNotifyEvent:
			if sess.motion(int(e.EventX), int(e.EventY)) {
				s.repaint(conn, win, gcs, sess)
			}
		case xproto.ButtonReleaseEvent:
			if e.Detail == xproto.ButtonIndex1 {
				sess.release(int(e.EventX), int(e.EventY))
				xproto.ClearArea(conn, false, win, 0, 0, 0, 0)
			}
		case xproto.KeyPressEvent:
			if escape != 0 && e.Detail == escape {
				sess.escape()
			}
		case xproto.ClientMessageEvent:
			if e.Type == cancelAtom {
				sess.escape()
			}
		case xproto.ExposeEvent:
			s.repaint(conn, win, gcs, sess)
		}
	}

	box, cancelled := sess.result()
	if cancelled {
		log.Debug().Msg("Overlay session ended without a selection")
	} else {
		log.Debug().
			Int("width", box.Width()).
			Int("height", box.Height()).
			Msg("Overlay selection finalized")
	}
	return box, cancelled, nil
}

// Cancel wakes an active session's event loop with a client message so it
// closes as if Escape were pressed. No-op when no session is active.
func (s *x11Selector) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.win == 0 {
		return
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: s.win,
		Type:   s.cancelAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{0, 0, 0, 0, 0}),
	}
	xproto.SendEvent(s.conn, false, s.win, xproto.EventMaskNoEvent, string(ev.Bytes()))
	s.conn.Sync()
}

// createWindow builds the full-screen, semi-transparent, override-redirect
// selection surface and maps it above all other windows.
func (s *x11Selector) createWindow(conn *xgb.Conn, screen *xproto.ScreenInfo) (xproto.Window, xproto.Atom, error) {
	win, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, 0, fmt.Errorf("allocate window id: %w", err)
	}

	cursor, err := createCrosshairCursor(conn)
	if err != nil {
		cursor = xproto.CursorNone
	}

	const eventMask = xproto.EventMaskButtonPress |
		xproto.EventMaskButtonRelease |
		xproto.EventMaskPointerMotion |
		xproto.EventMaskKeyPress |
		xproto.EventMaskExposure

	// Value list order follows ascending CW mask bits.
	mask := uint32(xproto.CwBackPixel | xproto.CwOverrideRedirect | xproto.CwEventMask | xproto.CwCursor)
	values := []uint32{
		screen.BlackPixel,
		1, // override-redirect: bypass the window manager
		eventMask,
		uint32(cursor),
	}

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		win,
		screen.Root,
		0, 0,
		screen.WidthInPixels, screen.HeightInPixels,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		mask,
		values,
	).Check()
	if err != nil {
		return 0, 0, fmt.Errorf("create overlay window: %w", err)
	}

	// Semi-transparency is compositor-honored via _NET_WM_WINDOW_OPACITY.
	if opacityAtom, err := internAtom(conn, "_NET_WM_WINDOW_OPACITY"); err == nil {
		alpha := float64(overlayOpacity)
		opacity := uint32(alpha * 0xffffffff)
		data := []byte{
			byte(opacity),
			byte(opacity >> 8),
			byte(opacity >> 16),
			byte(opacity >> 24),
		}
		xproto.ChangeProperty(conn, xproto.PropModeReplace, win, opacityAtom,
			xproto.AtomCardinal, 32, 1, data)
	}

	cancelAtom, err := internAtom(conn, "REGIONSHOT_CANCEL")
	if err != nil {
		return 0, 0, fmt.Errorf("intern cancel atom: %w", err)
	}

	if err := xproto.MapWindowChecked(conn, win).Check(); err != nil {
		return 0, 0, fmt.Errorf("map overlay window: %w", err)
	}
	xproto.ConfigureWindow(conn, win, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
	conn.Sync()

	return win, cancelAtom, nil
}

// grabInput takes exclusive pointer and keyboard input for the session.
func (s *x11Selector) grabInput(conn *xgb.Conn, win xproto.Window) error {
	const pointerMask = uint16(xproto.EventMaskButtonPress |
		xproto.EventMaskButtonRelease |
		xproto.EventMaskPointerMotion)

	pReply, err := xproto.GrabPointer(conn, false, win, pointerMask,
		xproto.GrabModeAsync, xproto.GrabModeAsync,
		win, xproto.CursorNone, xproto.TimeCurrentTime).Reply()
	if err != nil {
		return fmt.Errorf("grab pointer: %w", err)
	}
	if pReply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("grab pointer: status %d", pReply.Status)
	}

	kReply, err := xproto.GrabKeyboard(conn, false, win, xproto.TimeCurrentTime,
		xproto.GrabModeAsync, xproto.GrabModeAsync).Reply()
	if err != nil {
		return fmt.Errorf("grab keyboard: %w", err)
	}
	if kReply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("grab keyboard: status %d", kReply.Status)
	}
	return nil
}

// overlayGCs holds the drawing contexts for the two-layer rectangle.
type overlayGCs struct {
	glowOuter xproto.Gcontext
	glowInner xproto.Gcontext
	accent    xproto.Gcontext
}

func (s *x11Selector) createGCs(conn *xgb.Conn, win xproto.Window) (overlayGCs, error) {
	styles := []struct {
		pixel uint32
		width uint32
	}{
		{glowOuterPixel, 2},
		{glowInnerPixel, 1},
		{accentPixel, 1},
	}

	var gcs [3]xproto.Gcontext
	for i, style := range styles {
		gc, err := xproto.NewGcontextId(conn)
		if err != nil {
			return overlayGCs{}, fmt.Errorf("allocate gc id: %w", err)
		}
		err = xproto.CreateGCChecked(conn, gc, xproto.Drawable(win),
			xproto.GcForeground|xproto.GcLineWidth,
			[]uint32{style.pixel, style.width}).Check()
		if err != nil {
			return overlayGCs{}, fmt.Errorf("create gc: %w", err)
		}
		gcs[i] = gc
	}
	return overlayGCs{glowOuter: gcs[0], glowInner: gcs[1], accent: gcs[2]}, nil
}

// repaint clears the surface and redraws both outline layers spanning the
// current drag rectangle. Called on every motion event, no throttling.
func (s *x11Selector) repaint(conn *xgb.Conn, win xproto.Window, gcs overlayGCs, sess *session) {
	xproto.ClearArea(conn, false, win, 0, 0, 0, 0)
	if !sess.dragging() {
		return
	}

	x0, y0, x1, y1 := sess.corners()
	rect := []xproto.Rectangle{{
		X:      int16(x0),
		Y:      int16(y0),
		Width:  uint16(x1 - x0),
		Height: uint16(y1 - y0),
	}}
	xproto.PolyRectangle(conn, xproto.Drawable(win), gcs.glowOuter, rect)
	xproto.PolyRectangle(conn, xproto.Drawable(win), gcs.glowInner, rect)
	xproto.PolyRectangle(conn, xproto.Drawable(win), gcs.accent, rect)
}

func internAtom(conn *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

// createCrosshairCursor builds the standard crosshair cursor from the X
// cursor font.
func createCrosshairCursor(conn *xgb.Conn) (xproto.Cursor, error) {
	font, err := xproto.NewFontId(conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.OpenFontChecked(conn, font, uint16(len("cursor")), "cursor").Check(); err != nil {
		return 0, err
	}
	defer xproto.CloseFont(conn, font)

	cursor, err := xproto.NewCursorId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateGlyphCursorChecked(conn, cursor, font, font,
		crosshairCursor, crosshairCursor+1,
		0, 0, 0,
		0xffff, 0xffff, 0xffff).Check()
	if err != nil {
		return 0, err
	}
	return cursor, nil
}

// lookupKeycode scans the keyboard mapping for the keycode bound to keysym.
func lookupKeycode(conn *xgb.Conn, setup *xproto.SetupInfo, keysym xproto.Keysym) (xproto.Keycode, error) {
	first := setup.MinKeycode
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)

	reply, err := xproto.GetKeyboardMapping(conn, first, count).Reply()
	if err != nil {
		return 0, fmt.Errorf("get keyboard mapping: %w", err)
	}

	per := int(reply.KeysymsPerKeycode)
	for i := 0; i < int(count); i++ {
		for j := 0; j < per; j++ {
			idx := i*per + j
			if idx < len(reply.Keysyms) && reply.Keysyms[idx] == keysym {
				return first + xproto.Keycode(i), nil
			}
		}
	}
	return 0, fmt.Errorf("keysym %#x not mapped", keysym)
}
