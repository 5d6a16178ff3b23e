// Package encode writes captured images in the configured output format.
package encode

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Formats lists the supported output formats.
var Formats = []string{"png", "bmp", "tiff"}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "", "png":
		return png.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff", "tif":
		return tiff.Encode(w, img, nil)
	default:
		return fmt.Errorf("unsupported output format %q (use png, bmp, or tiff)", format)
	}
}

// Extension returns the file extension for format, including the dot.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case "bmp":
		return ".bmp"
	case "tiff", "tif":
		return ".tiff"
	default:
		return ".png"
	}
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "bmp":
		return "image/bmp"
	case "tiff", "tif":
		return "image/tiff"
	default:
		return "image/png"
	}
}
