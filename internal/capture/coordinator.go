package capture

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/bryanchriswhite/RegionShot/internal/logger"
)

// Selector is the interactive region-selection surface. Select blocks until
// the user finishes or cancels; Cancel force-closes an active session and is
// a no-op otherwise.
type Selector interface {
	Select(ctx context.Context) (Box, bool, error)
	Cancel()
}

// Grabber turns a bounding box into pixels.
type Grabber interface {
	Name() string
	Eligible(env Environment) bool
	Grab(box Box) (*image.RGBA, error)
}

// Negotiator obtains a whole-or-interactive capture through an external
// broker that owns its own region picking.
type Negotiator interface {
	Name() string
	Eligible(env Environment) bool
	Disabled() bool
	Capture(ctx context.Context) (*image.RGBA, error)
}

// Coordinator routes a capture request through the backend preference chain:
// portal (Wayland only), then overlay selection + direct grab, then the X11
// region grab on Linux. Exactly one backend runs at a time; a later backend
// is attempted only after the earlier one is confirmed unusable.
type Coordinator struct {
	env      Environment
	portal   Negotiator
	selector Selector
	direct   Grabber
	region   Grabber
}

// NewCoordinator wires the backend chain for the given environment. portal
// and region may be nil when the host cannot use them.
func NewCoordinator(env Environment, selector Selector, portal Negotiator, direct, region Grabber) *Coordinator {
	return &Coordinator{
		env:      env,
		portal:   portal,
		selector: selector,
		direct:   direct,
		region:   region,
	}
}

// Screenshot executes one capture request. A nil image with a nil error
// means the user cancelled; any other failure is the final backend's error
// wrapped with the backend name.
func (c *Coordinator) Screenshot(ctx context.Context) (*image.RGBA, error) {
	log := logger.WithComponent("coordinator")

	if c.portal != nil && c.portal.Eligible(c.env) && !c.portal.Disabled() {
		img, err := c.portal.Capture(ctx)
		switch {
		case err == nil:
			return img, nil
		case errors.Is(err, ErrSelectionCancelled):
			log.Info().Msg("Portal capture cancelled by user")
			return nil, nil
		case errors.Is(err, ErrBackendUnavailable):
			log.Warn().Err(err).Msg("Portal backend unavailable, falling back to overlay selection")
		default:
			// Timeouts, protocol errors, and anything unexpected all fall
			// through to the overlay path.
			log.Warn().Err(err).Msg("Portal capture failed, falling back to overlay selection")
		}
	}

	box, cancelled, err := c.selector.Select(ctx)
	if err != nil {
		return nil, fmt.Errorf("region selection: %w", err)
	}
	if cancelled {
		log.Info().Msg("Region selection cancelled by user")
		return nil, nil
	}

	img, err := c.direct.Grab(box)
	if err == nil {
		return img, nil
	}

	if c.region != nil && c.region.Eligible(c.env) {
		log.Warn().
			Err(err).
			Str("backend", c.direct.Name()).
			Msg("Direct grab failed, trying X11 region grab")
		img, regionErr := c.region.Grab(box)
		if regionErr != nil {
			return nil, fmt.Errorf("%s grab failed after %s: %w", c.region.Name(), c.direct.Name(), regionErr)
		}
		return img, nil
	}

	return nil, fmt.Errorf("%s grab: %w", c.direct.Name(), err)
}

// Cancel force-closes an in-progress overlay selection, if any.
func (c *Coordinator) Cancel() {
	if c.selector != nil {
		c.selector.Cancel()
	}
}

// Status reports per-backend availability for the status API.
func (c *Coordinator) Status() map[string]string {
	type describer interface{ Status() string }

	status := make(map[string]string)
	if c.portal != nil {
		if d, ok := c.portal.(describer); ok {
			status[c.portal.Name()] = d.Status()
		}
	}
	if c.direct != nil {
		status[c.direct.Name()] = "available"
	}
	if c.region != nil {
		if d, ok := c.region.(describer); ok {
			status[c.region.Name()] = d.Status()
		}
	}
	return status
}

// Wayland reports whether the coordinator detected a Wayland session.
func (c *Coordinator) Wayland() bool { return c.env.Wayland() }
