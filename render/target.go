package render

import "spherecull/hal"

// Target is a minimal pixel target for software rendering.
//
// Implementations should clip out-of-bounds coordinates.
type Target interface {
	Size() (w, h int)
	SetPixel(x, y int, c Color)
	Clear(c Color)
}

// RGB565Target renders into an RGB565 buffer laid out with Stride bytes per row.
type RGB565Target struct {
	Buf    []byte
	Stride int
	W      int
	H      int
}

// NewFramebufferTarget wraps the back buffer of fb. It returns nil for
// framebuffers that are not RGB565.
func NewFramebufferTarget(fb hal.Framebuffer) *RGB565Target {
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 {
		return nil
	}
	return &RGB565Target{Buf: fb.Buffer(), Stride: fb.StrideBytes(), W: fb.Width(), H: fb.Height()}
}

func (t *RGB565Target) Size() (w, h int) { return t.W, t.H }

func (t *RGB565Target) Clear(c Color) {
	if t == nil || t.Buf == nil || t.Stride <= 0 || t.W <= 0 || t.H <= 0 {
		return
	}
	p := hal.RGB565(c.R, c.G, c.B)
	lo := byte(p)
	hi := byte(p >> 8)
	for y := 0; y < t.H; y++ {
		row := y * t.Stride
		for x := 0; x < t.W; x++ {
			off := row + x*2
			if off < 0 || off+1 >= len(t.Buf) {
				continue
			}
			t.Buf[off] = lo
			t.Buf[off+1] = hi
		}
	}
}

func (t *RGB565Target) SetPixel(x, y int, c Color) {
	if t == nil || t.Buf == nil || t.Stride <= 0 {
		return
	}
	if x < 0 || y < 0 || x >= t.W || y >= t.H {
		return
	}
	off := y*t.Stride + x*2
	if off < 0 || off+1 >= len(t.Buf) {
		return
	}
	p := hal.RGB565(c.R, c.G, c.B)
	t.Buf[off] = byte(p)
	t.Buf[off+1] = byte(p >> 8)
}

// At returns the RGB565 pixel at x, y, or 0 when out of bounds.
func (t *RGB565Target) At(x, y int) uint16 {
	if x < 0 || y < 0 || x >= t.W || y >= t.H {
		return 0
	}
	off := y*t.Stride + x*2
	if off < 0 || off+1 >= len(t.Buf) {
		return 0
	}
	return uint16(t.Buf[off]) | uint16(t.Buf[off+1])<<8
}
