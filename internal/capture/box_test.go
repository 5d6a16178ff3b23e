package capture

import (
	"errors"
	"image"
	"testing"
)

func TestNormalizeBoxDragDirections(t *testing.T) {
	cases := []struct {
		name           string
		x0, y0, x1, y1 int
		want           Box
	}{
		{"down-right", 50, 50, 200, 200, Box{50, 50, 200, 200}},
		{"up-left", 200, 200, 50, 50, Box{50, 50, 200, 200}},
		{"down-left", 200, 50, 50, 200, Box{50, 50, 200, 200}},
		{"up-right", 50, 200, 200, 50, Box{50, 50, 200, 200}},
	}
	for _, c := range cases {
		box, ok := NormalizeBox(c.x0, c.y0, c.x1, c.y1)
		if !ok {
			t.Fatalf("%s: expected a valid box", c.name)
		}
		if box != c.want {
			t.Errorf("%s: got %+v, want %+v", c.name, box, c.want)
		}
	}
}

func TestNormalizeBoxZeroExtent(t *testing.T) {
	if _, ok := NormalizeBox(10, 10, 10, 50); ok {
		t.Error("zero width should be rejected")
	}
	if _, ok := NormalizeBox(10, 10, 50, 10); ok {
		t.Error("zero height should be rejected")
	}
	if _, ok := NormalizeBox(10, 10, 10, 10); ok {
		t.Error("single-click box should be rejected")
	}
}

func TestBoxDimensions(t *testing.T) {
	b := Box{Left: 10, Top: 20, Right: 110, Bottom: 70}
	if b.Width() != 100 {
		t.Errorf("Width() = %d, want 100", b.Width())
	}
	if b.Height() != 50 {
		t.Errorf("Height() = %d, want 50", b.Height())
	}
	if got, want := b.Rect(), image.Rect(10, 20, 110, 70); got != want {
		t.Errorf("Rect() = %v, want %v", got, want)
	}
}

func TestBoxValidate(t *testing.T) {
	if err := (Box{Left: 0, Top: 0, Right: 1, Bottom: 1}).Validate(); err != nil {
		t.Errorf("1x1 box should be valid, got %v", err)
	}

	err := (Box{Left: 10, Top: 10, Right: 10, Bottom: 50}).Validate()
	if err == nil {
		t.Fatal("zero-width box should fail validation")
	}
	if !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("expected ErrInvalidRegion, got %v", err)
	}

	if err := (Box{Left: 50, Top: 10, Right: 10, Bottom: 50}).Validate(); !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("negative-width box should fail with ErrInvalidRegion, got %v", err)
	}
}
