package capture

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/bryanchriswhite/RegionShot/internal/logger"
)

// X11RegionGrab reads a rectangle straight off the X root window. It is the
// Linux fallback when the native facility rejects the grab. The X connection
// is opened lazily on first use; if the server cannot be reached the backend
// is permanently disabled.
type X11RegionGrab struct {
	avail  availability
	mu     sync.Mutex
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo
}

// NewX11RegionGrab creates the X11 fallback backend. No connection is made
// until the first grab.
func NewX11RegionGrab() *X11RegionGrab { return &X11RegionGrab{} }

// Name returns the backend name.
func (g *X11RegionGrab) Name() string { return "x11-region" }

// Eligible reports whether this backend can run on the given host.
func (g *X11RegionGrab) Eligible(env Environment) bool { return env.Linux() }

// Status describes the backend probe state.
func (g *X11RegionGrab) Status() string { return g.avail.String() }

// Grab captures the pixels inside box from the root window. The region is
// validated before any X call is issued.
func (g *X11RegionGrab) Grab(box Box) (*image.RGBA, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.ensureConn(); err != nil {
		return nil, err
	}

	reply, err := xproto.GetImage(
		g.conn,
		xproto.ImageFormatZPixmap,
		xproto.Drawable(g.root),
		int16(box.Left), int16(box.Top),
		uint16(box.Width()), uint16(box.Height()),
		0xffffffff,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("get image from root window: %w", err)
	}

	return convertZPixmap(reply.Data, box.Width(), box.Height(), int(g.screen.RootDepth)), nil
}

// Close releases the X connection, if one was opened.
func (g *X11RegionGrab) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn != nil {
		g.conn.Close()
		g.conn = nil
	}
}

// ensureConn opens the X connection on first use. A failed probe disables
// the backend for the rest of the process; later grabs fail immediately.
func (g *X11RegionGrab) ensureConn() error {
	if disabled, cause := g.avail.disabled(); disabled {
		return fmt.Errorf("%w: %s", ErrBackendUnavailable, cause)
	}
	if g.conn != nil {
		return nil
	}

	conn, err := xgb.NewConn()
	if err != nil {
		g.avail.markUnavailable(err)
		logger.WithComponent("x11-region").Warn().
			Err(err).
			Msg("X server not reachable, disabling X11 region grab")
		return fmt.Errorf("%w: connect to X server: %s", ErrBackendUnavailable, err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	g.conn = conn
	g.root = screen.Root
	g.screen = screen
	g.avail.markAvailable()

	logger.WithComponent("x11-region").Debug().
		Uint8("depth", screen.RootDepth).
		Msg("X11 region grab initialized")
	return nil
}

// convertZPixmap normalizes raw ZPixmap data (BGRA on 24/32-bit visuals)
// into an RGBA image.
func convertZPixmap(data []byte, width, height, depth int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	if depth == 24 || depth == 32 {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				i := (y*width + x) * 4
				if i+3 < len(data) {
					img.SetRGBA(x, y, color.RGBA{
						R: data[i+2],
						G: data[i+1],
						B: data[i],
						A: 255,
					})
				}
			}
		}
	}

	return img
}
