package capture

import (
	"fmt"
	"image"
)

// Box is an axis-aligned screen rectangle in pixel coordinates.
// A valid Box has Right > Left and Bottom > Top.
type Box struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// NormalizeBox builds a Box from two arbitrary corner points, ordering each
// axis independently. Returns ok=false when either axis has zero extent.
func NormalizeBox(x0, y0, x1, y1 int) (Box, bool) {
	left, right := x0, x1
	if right < left {
		left, right = right, left
	}
	top, bottom := y0, y1
	if bottom < top {
		top, bottom = bottom, top
	}
	if left == right || top == bottom {
		return Box{}, false
	}
	return Box{Left: left, Top: top, Right: right, Bottom: bottom}, true
}

// Width returns the horizontal extent of the box.
func (b Box) Width() int { return b.Right - b.Left }

// Height returns the vertical extent of the box.
func (b Box) Height() int { return b.Bottom - b.Top }

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// Validate rejects boxes with zero or negative extent.
func (b Box) Validate() error {
	if b.Width() <= 0 || b.Height() <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidRegion, b.Width(), b.Height())
	}
	return nil
}
