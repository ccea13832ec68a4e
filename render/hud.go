package render

import (
	"image/color"

	"spherecull/hal"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Display adapts a hal.Framebuffer to drivers.Displayer so tinyfont can draw
// into it.
type Display struct {
	fb hal.Framebuffer
}

var _ drivers.Displayer = (*Display)(nil)

func NewDisplay(fb hal.Framebuffer) *Display {
	return &Display{fb: fb}
}

func (d *Display) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *Display) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return
	}

	ix := int(x)
	iy := int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}

	pixel := hal.RGB565(c.R, c.G, c.B)
	off := iy*d.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d *Display) Display() error {
	if d.fb == nil {
		return nil
	}
	return d.fb.Present()
}

// HUD writes status lines in the top-left corner.
type HUD struct {
	disp       *Display
	font       tinyfont.Fonter
	lineHeight int16
	Color      Color
}

func NewHUD(fb hal.Framebuffer) *HUD {
	font := &tinyfont.TomThumb
	lh := int16(font.GetYAdvance())
	if lh <= 0 {
		lh = 6
	}
	return &HUD{disp: NewDisplay(fb), font: font, lineHeight: lh + 1, Color: HUDText}
}

// LineHeight is the vertical distance between HUD baselines.
func (h *HUD) LineHeight() int16 { return h.lineHeight }

// Draw writes one line per entry, starting below the top edge.
func (h *HUD) Draw(lines ...string) {
	c := h.Color.ToRGBA()
	y := h.lineHeight + 1
	_, maxY := h.disp.Size()
	for _, line := range lines {
		if y > maxY {
			return
		}
		tinyfont.WriteLine(h.disp, h.font, 2, y, line, c)
		y += h.lineHeight
	}
}
