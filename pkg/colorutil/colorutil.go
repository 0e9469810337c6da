// Package colorutil provides the overlay palette.
package colorutil

import (
	"image/color"
)

// Default overlay colors.
var (
	BeamMark      = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Corner        = color.RGBA{R: 0, G: 192, B: 0, A: 255}
	CurrentCorner = color.RGBA{R: 64, G: 64, B: 255, A: 255}
	Grid          = color.RGBA{R: 192, G: 192, B: 192, A: 255}
)

// RGB returns an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Triplet returns the red, green and blue components of c.
func Triplet(c color.RGBA) [3]uint8 {
	return [3]uint8{c.R, c.G, c.B}
}
