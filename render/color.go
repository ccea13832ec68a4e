package render

import (
	"image/color"

	"spherecull/geom"
	"spherecull/sim/pointset"
)

// Color is an RGBA color in 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 0xFF} }

// MulScalar scales the color channels by s clamped to [0,1].
func (c Color) MulScalar(s geom.Scalar) Color {
	t := uint32(geom.Clamp01(s) * 255)
	mul := func(ch uint8) uint8 {
		return uint8((uint32(ch) * t) / 255)
	}
	return Color{R: mul(c.R), G: mul(c.G), B: mul(c.B), A: c.A}
}

func (c Color) ToRGBA() color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

var (
	Background = RGB(0x08, 0x0A, 0x12)
	Cyan       = RGB(0x00, 0xFF, 0xFF)
	Crimson    = RGB(0xDC, 0x14, 0x3C)
	Gold       = RGB(0xFF, 0xD7, 0x00)
	HUDText    = RGB(0xE0, 0xE6, 0xF0)
)

// VisualColor maps a point's visual state to its palette color.
func VisualColor(v pointset.Visual) Color {
	switch v {
	case pointset.VisualCandidate:
		return Crimson
	case pointset.VisualCenter:
		return Gold
	default:
		return Cyan
	}
}
