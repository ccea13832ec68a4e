package app

import (
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"spherecull/hal"
	"spherecull/render"

	"tinygo.org/x/tinyfont"
)

// StepFunc returns the per-frame function handed to the host. A panic inside
// a step is logged, painted onto the framebuffer and returned as an error so
// the host loop stops.
func (a *App) StepFunc() func() error {
	return func() (err error) {
		defer func() {
			if v := recover(); v != nil {
				stack := debug.Stack()
				showPanic(a.h, v, stack)
				err = fmt.Errorf("panic: %v", v)
			}
		}()
		return a.Step()
	}
}

func showPanic(h hal.HAL, v any, stack []byte) {
	var stackLines []string
	for _, line := range strings.Split(string(stack), "\n") {
		if line != "" {
			stackLines = append(stackLines, line)
		}
	}

	if l := h.Logger(); l != nil {
		l.WriteLineString(fmt.Sprintf("spherecull panic: %v", v))
		for _, line := range stackLines {
			l.WriteLineString(line)
		}
	}

	disp := h.Display()
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil {
		return
	}

	fb.ClearRGB(255, 255, 255)

	font := &tinyfont.TomThumb
	fontHeight := int16(font.GetYAdvance()) + 1
	_, outboxWidth := tinyfont.LineWidth(font, "0")
	fontWidth := int16(outboxWidth)
	if fontWidth <= 0 || fontHeight <= 1 {
		_ = fb.Present()
		return
	}

	d := render.NewDisplay(fb)

	lines := []string{
		"spherecull panic:",
		fmt.Sprintf("panic: %v", v),
	}
	if len(stackLines) > 0 {
		lines = append(lines, "stack:")
		lines = append(lines, stackLines...)
	} else {
		lines = append(lines, "stack: unavailable")
	}

	fg := color.RGBA{R: 0, G: 0, B: 0, A: 255}

	y := int16(0)
	maxW, maxH := fb.Width(), fb.Height()
	cols := int16(maxW) / fontWidth
	if cols <= 0 {
		cols = 1
	}

	for _, line := range lines {
		for len(line) > 0 {
			if y+fontHeight > int16(maxH) {
				_ = fb.Present()
				return
			}
			chunk, rest := takeRunes(line, cols)
			drawTextLine(d, font, fontWidth, 0, y+fontHeight-1, chunk, fg)
			y += fontHeight
			line = strings.TrimLeft(rest, " \t")
		}
	}

	_ = fb.Present()
}

func drawTextLine(d *render.Display, font tinyfont.Fonter, fontWidth, x0, baseline int16, s string, fg color.RGBA) {
	x := x0
	for _, r := range s {
		tinyfont.DrawChar(d, font, x, baseline, r, fg)
		x += fontWidth
	}
}

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
