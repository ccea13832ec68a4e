package render

import (
	"io"
	"math"
	"testing"

	"spherecull/geom"
	"spherecull/hal"
	"spherecull/sim/pointset"
)

func newTarget(t *testing.T, w, h int) (hal.Framebuffer, *RGB565Target) {
	t.Helper()
	fb := hal.New(hal.Options{Width: w, Height: h, Log: io.Discard}).Display().Framebuffer()
	tgt := NewFramebufferTarget(fb)
	if tgt == nil {
		t.Fatal("NewFramebufferTarget returned nil")
	}
	return fb, tgt
}

func rgb565(c Color) uint16 { return hal.RGB565(c.R, c.G, c.B) }

func TestDefaultOrbitMatchesDefaultCamera(t *testing.T) {
	cam := Camera{}
	orbit := DefaultOrbit()
	orbit.Apply(&cam)
	want := DefaultCamera().Position
	if geom.Distance(cam.Position, want) > 1e-5 {
		t.Fatalf("Apply() position = %v, want %v", cam.Position, want)
	}
}

func TestOrbitClamps(t *testing.T) {
	o := DefaultOrbit()
	o.Zoom(-100)
	if o.Radius != o.MinRadius {
		t.Fatalf("Radius = %v, want %v", o.Radius, o.MinRadius)
	}
	o.Zoom(100)
	if o.Radius != o.MaxRadius {
		t.Fatalf("Radius = %v, want %v", o.Radius, o.MaxRadius)
	}
	o.Rotate(0, 10)
	if o.Pitch != maxPitch {
		t.Fatalf("Pitch = %v, want %v", o.Pitch, maxPitch)
	}
}

func TestDrawOriginAtCenter(t *testing.T) {
	_, tgt := newTarget(t, 64, 64)
	r := NewRenderer(64, 64)
	r.Shade = false

	st := r.Draw(tgt, DefaultCamera(), []pointset.Point{{ID: 1, Pos: geom.V3(0, 0, 0)}})
	if st.Drawn != 1 || st.Culled != 0 {
		t.Fatalf("Draw() = %+v, want one drawn", st)
	}
	if got := tgt.At(32, 32); got != rgb565(Cyan) {
		t.Fatalf("center pixel = %#04x, want cyan %#04x", got, rgb565(Cyan))
	}
	if got := tgt.At(0, 0); got != rgb565(Background) {
		t.Fatalf("corner pixel = %#04x, want background", got)
	}
}

func TestDrawDepthTest(t *testing.T) {
	_, tgt := newTarget(t, 64, 64)
	r := NewRenderer(64, 64)
	r.Shade = false

	near := pointset.Point{ID: 1, Pos: geom.V3(0, 0, -1), Visual: pointset.VisualCandidate}
	far := pointset.Point{ID: 2, Pos: geom.V3(0, 0, 0), Visual: pointset.VisualCenter}
	r.Draw(tgt, DefaultCamera(), []pointset.Point{near, far})
	if got := tgt.At(32, 32); got != rgb565(Crimson) {
		t.Fatalf("center pixel = %#04x, want crimson %#04x", got, rgb565(Crimson))
	}
}

func TestDrawCullsBehindCamera(t *testing.T) {
	_, tgt := newTarget(t, 32, 32)
	r := NewRenderer(32, 32)
	st := r.Draw(tgt, DefaultCamera(), []pointset.Point{{ID: 1, Pos: geom.V3(0, 0, -10)}})
	if st.Drawn != 0 || st.Culled != 1 {
		t.Fatalf("Draw() = %+v, want culled", st)
	}
}

func TestShadeDimsFarPoints(t *testing.T) {
	c := Cyan.MulScalar(0.5)
	if c.G >= Cyan.G || c.G == 0 {
		t.Fatalf("MulScalar(0.5).G = %d", c.G)
	}
	if got := Cyan.MulScalar(geom.Scalar(math.NaN())); got.A != Cyan.A {
		t.Fatalf("MulScalar(NaN) changed alpha")
	}
}

func TestVisualColor(t *testing.T) {
	if VisualColor(pointset.VisualDefault) != Cyan || VisualColor(pointset.VisualCandidate) != Crimson || VisualColor(pointset.VisualCenter) != Gold {
		t.Fatalf("VisualColor palette mismatch")
	}
}

func TestHUDDrawsText(t *testing.T) {
	fb, tgt := newTarget(t, 64, 32)
	tgt.Clear(Background)
	h := NewHUD(fb)
	h.Draw("LIVE 10")

	lit := 0
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			if tgt.At(x, y) == rgb565(HUDText) {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatalf("HUD drew no pixels")
	}
}

func TestDisplayClipsOutOfBounds(t *testing.T) {
	fb, _ := newTarget(t, 8, 8)
	d := NewDisplay(fb)
	d.SetPixel(-1, 0, HUDText.ToRGBA())
	d.SetPixel(8, 8, HUDText.ToRGBA())
	if w, h := d.Size(); w != 8 || h != 8 {
		t.Fatalf("Size() = %d,%d, want 8,8", w, h)
	}
}
