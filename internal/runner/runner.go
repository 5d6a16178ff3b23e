// Package runner serializes capture requests from the hotkey listener and
// the HTTP API through a single flow: at most one selection/capture may be
// in progress at a time.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"golang.design/x/clipboard"

	"github.com/bryanchriswhite/RegionShot/internal/encode"
	"github.com/bryanchriswhite/RegionShot/internal/logger"
)

// ErrBusy is returned to API callers while another capture is in progress.
var ErrBusy = errors.New("capture already in progress")

// Coordinator is the capture entry point the loop drives.
type Coordinator interface {
	Screenshot(ctx context.Context) (*image.RGBA, error)
	Cancel()
}

// Options controls what happens with hotkey-triggered captures.
type Options struct {
	OutputDir    string
	OutputFormat string
	Clipboard    bool
}

// Loop is the single-goroutine coordinator for hotkey and API capture flows.
type Loop struct {
	coord    Coordinator
	opts     Options
	hotkeyCh chan struct{}
	requests chan *request
	results  chan outcome
	busy     bool
}

type request struct {
	ctx  context.Context
	resp chan response
}

type response struct {
	img *image.RGBA
	err error
}

type outcome struct {
	img *image.RGBA
	err error
	req *request
}

// New creates a run loop around the given coordinator.
func New(coord Coordinator, opts Options) *Loop {
	return &Loop{
		coord:    coord,
		opts:     opts,
		hotkeyCh: make(chan struct{}, 4),
		requests: make(chan *request),
		results:  make(chan outcome, 1),
	}
}

// Trigger posts a hotkey capture request. Safe to call from the hook
// goroutine; drops the event when the queue is full.
func (l *Loop) Trigger() {
	select {
	case l.hotkeyCh <- struct{}{}:
	default:
	}
}

// Submit runs a capture on behalf of an API caller and blocks until it
// completes. Returns ErrBusy when another capture is in progress.
func (l *Loop) Submit(ctx context.Context) (*image.RGBA, error) {
	req := &request{ctx: ctx, resp: make(chan response, 1)}
	select {
	case l.requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-req.resp:
		return r.img, r.err
	case <-ctx.Done():
		// The in-flight capture finishes on its own; the buffered resp
		// channel absorbs the result.
		return nil, ctx.Err()
	}
}

// Run processes capture requests until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	log := logger.WithComponent("runner")
	for {
		select {
		case <-ctx.Done():
			l.coord.Cancel()
			return ctx.Err()
		case <-l.hotkeyCh:
			if l.busy {
				log.Debug().Msg("Capture already in progress, ignoring hotkey")
				continue
			}
			l.start(ctx, nil)
		case req := <-l.requests:
			if l.busy {
				req.resp <- response{err: ErrBusy}
				continue
			}
			l.start(ctx, req)
		case out := <-l.results:
			l.busy = false
			l.finish(out)
		}
	}
}

// start launches one capture flow. The overlay blocks inside its own event
// loop, so the flow runs off the run goroutine and posts back via results.
func (l *Loop) start(ctx context.Context, req *request) {
	l.busy = true
	capCtx := ctx
	if req != nil && req.ctx != nil {
		capCtx = req.ctx
	}
	go func() {
		img, err := l.coord.Screenshot(capCtx)
		l.results <- outcome{img: img, err: err, req: req}
	}()
}

func (l *Loop) finish(out outcome) {
	log := logger.WithComponent("runner")

	if out.req != nil {
		out.req.resp <- response{img: out.img, err: out.err}
		return
	}

	// Hotkey flow: persist the capture and optionally mirror it to the
	// clipboard.
	if out.err != nil {
		log.Error().Err(out.err).Msg("Capture failed")
		return
	}
	if out.img == nil {
		log.Info().Msg("Capture cancelled")
		return
	}

	path, err := l.save(out.img)
	if err != nil {
		log.Error().Err(err).Msg("Failed to save capture")
		return
	}
	log.Info().
		Str("path", path).
		Int("width", out.img.Bounds().Dx()).
		Int("height", out.img.Bounds().Dy()).
		Msg("Capture saved")

	if l.opts.Clipboard {
		l.copyToClipboard(out.img)
	}
}

// save writes the image into the output directory with a timestamped name.
func (l *Loop) save(img *image.RGBA) (string, error) {
	dir := l.opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := "shot-" + time.Now().Format("20060102-150405") + encode.Extension(l.opts.OutputFormat)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := encode.Encode(f, img, l.opts.OutputFormat); err != nil {
		return "", err
	}
	return path, f.Close()
}

// copyToClipboard mirrors the capture as PNG bytes. clipboard.Init must have
// succeeded before Options.Clipboard is enabled.
func (l *Loop) copyToClipboard(img *image.RGBA) {
	var buf bytes.Buffer
	if err := encode.Encode(&buf, img, "png"); err != nil {
		logger.WithComponent("runner").Warn().Err(err).Msg("Clipboard encode failed")
		return
	}
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
	logger.WithComponent("runner").Debug().Msg("Capture copied to clipboard")
}
