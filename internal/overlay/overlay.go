package overlay

import (
	"context"

	"github.com/bryanchriswhite/RegionShot/internal/capture"
)

// Selector defines the blocking region-selection API. Select presents a
// full-screen surface, drives its own event loop, and returns the finalized
// box or cancelled=true. Cancel force-closes an active session as if Escape
// were pressed and is a no-op when no session is active.
type Selector interface {
	Select(ctx context.Context) (capture.Box, bool, error)
	Cancel()
}

// NewSelector returns the X11 overlay implementation.
func NewSelector() Selector {
	return &x11Selector{}
}
