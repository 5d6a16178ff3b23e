package capture

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/bryanchriswhite/RegionShot/internal/logger"
)

// Portal D-Bus constants
const (
	portalService   = "org.freedesktop.portal.Desktop"
	portalPath      = "/org/freedesktop/portal/desktop"
	screenshotIface = "org.freedesktop.portal.Screenshot"
	requestIface    = "org.freedesktop.portal.Request"
)

const defaultPortalTimeout = 60 * time.Second

// PortalBackend obtains a screenshot through the xdg-desktop-portal broker.
// It is the only backend usable on compositors that forbid direct pixel
// grabs: the broker itself runs the interactive region picking and hands back
// a file URI. The session-bus connection is opened lazily on first use; a
// failed connection permanently disables the backend.
type PortalBackend struct {
	avail   availability
	mu      sync.Mutex
	conn    *dbus.Conn
	timeout time.Duration
}

// NewPortalBackend creates the portal backend. A non-positive timeout falls
// back to the 60s portal default.
func NewPortalBackend(timeout time.Duration) *PortalBackend {
	if timeout <= 0 {
		timeout = defaultPortalTimeout
	}
	return &PortalBackend{timeout: timeout}
}

// Name returns the backend name.
func (p *PortalBackend) Name() string { return "portal" }

// Eligible reports whether the portal should be attempted on this host.
func (p *PortalBackend) Eligible(env Environment) bool {
	return env.Linux() && env.Wayland()
}

// Disabled reports whether the backend was permanently disabled.
func (p *PortalBackend) Disabled() bool {
	disabled, _ := p.avail.disabled()
	return disabled
}

// Status describes the backend probe state.
func (p *PortalBackend) Status() string { return p.avail.String() }

// Capture runs one Screenshot exchange with the portal broker and returns
// the resulting image. The broker performs its own interactive region
// selection, so no bounding box is passed in.
func (p *PortalBackend) Capture(ctx context.Context) (*image.RGBA, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := p.ensureConn()
	if err != nil {
		return nil, err
	}

	log := logger.WithComponent("portal")

	// Register the signal channel before issuing the request so the
	// Response cannot slip past us.
	sigc := make(chan *dbus.Signal, 10)
	conn.Signal(sigc)
	defer conn.RemoveSignal(sigc)

	matchRule := fmt.Sprintf("type='signal',interface='%s',member='Response'", requestIface)
	if err := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, matchRule).Err; err != nil {
		return nil, fmt.Errorf("%w: add match rule: %s", ErrPortalProtocol, err)
	}
	defer conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, matchRule)

	token := fmt.Sprintf("regionshot%d_%d", os.Getpid(), time.Now().UnixMilli())
	options := map[string]dbus.Variant{
		"handle_token": dbus.MakeVariant(token),
		"interactive":  dbus.MakeVariant(true),
	}

	var handle dbus.ObjectPath
	obj := conn.Object(portalService, portalPath)
	if err := obj.Call(screenshotIface+".Screenshot", 0, "", options).Store(&handle); err != nil {
		return nil, fmt.Errorf("%w: Screenshot call failed: %s", ErrPortalProtocol, err)
	}

	log.Debug().Str("handle", string(handle)).Msg("Waiting for portal Response signal")

	status, results, err := p.waitResponse(ctx, sigc, handle)
	if err != nil {
		return nil, err
	}
	if status != 0 {
		return nil, fmt.Errorf("%w: portal reported status %d", ErrSelectionCancelled, status)
	}

	uri, err := resultURI(results)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("uri", uri).Msg("Portal delivered screenshot file")
	return loadPortalFile(uri)
}

// ensureConn opens the session-bus connection on first use. A failed probe
// disables the backend for the rest of the process.
func (p *PortalBackend) ensureConn() (*dbus.Conn, error) {
	if disabled, cause := p.avail.disabled(); disabled {
		return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, cause)
	}
	if p.conn != nil {
		return p.conn, nil
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		p.avail.markUnavailable(err)
		logger.WithComponent("portal").Warn().
			Err(err).
			Msg("Session bus not reachable, disabling portal backend")
		return nil, fmt.Errorf("%w: connect to session bus: %s", ErrBackendUnavailable, err)
	}

	p.conn = conn
	p.avail.markAvailable()
	return conn, nil
}

// Close releases the session-bus connection, if one was opened.
func (p *PortalBackend) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

// waitResponse blocks until the Response signal for handle arrives, the
// timeout elapses, or ctx is cancelled. The caller removes the signal
// channel, so the listener is released on every exit path.
func (p *PortalBackend) waitResponse(ctx context.Context, sigc <-chan *dbus.Signal, handle dbus.ObjectPath) (uint32, map[string]dbus.Variant, error) {
	timeout := time.After(p.timeout)
	for {
		select {
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		case <-timeout:
			return 0, nil, fmt.Errorf("%w: no Response within %s", ErrPortalTimeout, p.timeout)
		case sig, ok := <-sigc:
			if !ok {
				return 0, nil, fmt.Errorf("%w: signal channel closed", ErrPortalProtocol)
			}
			if sig.Path != handle || sig.Name != requestIface+".Response" {
				continue
			}
			return parseResponse(sig.Body)
		}
	}
}

// parseResponse splits a Request.Response signal body into its status code
// and results mapping.
func parseResponse(body []interface{}) (uint32, map[string]dbus.Variant, error) {
	if len(body) < 2 {
		return 0, nil, fmt.Errorf("%w: short Response body (%d fields)", ErrPortalProtocol, len(body))
	}
	status, ok := body[0].(uint32)
	if !ok {
		return 0, nil, fmt.Errorf("%w: unexpected status type %T", ErrPortalProtocol, body[0])
	}
	results, ok := body[1].(map[string]dbus.Variant)
	if !ok {
		return 0, nil, fmt.Errorf("%w: unexpected results type %T", ErrPortalProtocol, body[1])
	}
	return status, results, nil
}

// resultURI extracts the mandatory "uri" entry from a zero-status response.
func resultURI(results map[string]dbus.Variant) (string, error) {
	variant, ok := results["uri"]
	if !ok {
		return "", fmt.Errorf("%w: missing result uri", ErrPortalProtocol)
	}
	uri, ok := variant.Value().(string)
	if !ok {
		return "", fmt.Errorf("%w: unexpected uri type %T", ErrPortalProtocol, variant.Value())
	}
	return uri, nil
}

// uriToPath turns a file:// URI into a filesystem path.
func uriToPath(uri string) (string, error) {
	if !strings.HasPrefix(uri, "file://") {
		return "", fmt.Errorf("%w: unrecognized URI scheme in %q", ErrPortalProtocol, uri)
	}
	path, err := url.PathUnescape(strings.TrimPrefix(uri, "file://"))
	if err != nil {
		return "", fmt.Errorf("%w: malformed URI %q: %s", ErrPortalProtocol, uri, err)
	}
	return path, nil
}

// loadPortalFile copies the broker-written file into a private temp
// directory, decodes it, and releases the copy whether or not decoding
// succeeded.
func loadPortalFile(uri string) (*image.RGBA, error) {
	source, err := uriToPath(uri)
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "regionshot-portal-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	local := filepath.Join(tmpDir, "portal.png")
	if err := copyFile(source, local); err != nil {
		return nil, fmt.Errorf("copy portal file: %w", err)
	}

	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("open portal file: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode portal screenshot: %w", err)
	}

	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
