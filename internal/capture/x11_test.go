package capture

import (
	"errors"
	"image/color"
	"testing"
)

func TestX11GrabRejectsInvalidRegionBeforeConnecting(t *testing.T) {
	g := NewX11RegionGrab()

	_, err := g.Grab(Box{Left: 10, Top: 10, Right: 10, Bottom: 50})
	if !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("expected ErrInvalidRegion, got %v", err)
	}
	if g.conn != nil {
		t.Error("invalid region must not open an X connection")
	}
	if g.Status() != "not probed" {
		t.Errorf("status = %q, want not probed", g.Status())
	}
}

func TestConvertZPixmapBGRA(t *testing.T) {
	// 2x1 ZPixmap: blue pixel then red pixel, BGRA byte order.
	data := []byte{
		0xff, 0x00, 0x00, 0x00,
		0x00, 0x00, 0xff, 0x00,
	}
	img := convertZPixmap(data, 2, 1, 24)

	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 0, G: 0, B: 0xff, A: 0xff}) {
		t.Errorf("pixel 0 = %+v, want blue", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{R: 0xff, G: 0, B: 0, A: 0xff}) {
		t.Errorf("pixel 1 = %+v, want red", got)
	}
}

func TestConvertZPixmapUnsupportedDepth(t *testing.T) {
	img := convertZPixmap([]byte{0xff, 0xff}, 1, 1, 16)
	if got := img.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("16-bit visual should leave pixels zeroed, got %+v", got)
	}
	if img.Bounds().Dx() != 1 || img.Bounds().Dy() != 1 {
		t.Errorf("bounds = %v, want 1x1", img.Bounds())
	}
}

func TestConvertZPixmapShortData(t *testing.T) {
	// Data shorter than width*height*4 must not panic.
	img := convertZPixmap([]byte{0x01, 0x02, 0x03, 0x04}, 2, 2, 24)
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Errorf("bounds = %v, want 2x2", img.Bounds())
	}
}
