package render

import (
	"math"

	"spherecull/geom"
	"spherecull/sim/pointset"
)

// Renderer splats points into a Target.
//
// Create it once and reuse it to avoid allocations.
type Renderer struct {
	ClearColor Color

	// Shade dims points with distance from the camera.
	Shade bool

	depthBuf []float32
}

// Stats reports what the last Draw call did.
type Stats struct {
	Drawn  int
	Culled int
}

func NewRenderer(w, h int) *Renderer {
	r := &Renderer{ClearColor: Background, Shade: true}
	r.ensureDepth(w, h)
	return r
}

func (r *Renderer) ensureDepth(w, h int) {
	if w <= 0 || h <= 0 {
		r.depthBuf = nil
		return
	}
	if cap(r.depthBuf) < w*h {
		r.depthBuf = make([]float32, w*h)
	} else {
		r.depthBuf = r.depthBuf[:w*h]
	}
}

func (r *Renderer) clearDepth() {
	inf := float32(math.Inf(1))
	for i := range r.depthBuf {
		r.depthBuf[i] = inf
	}
}

// PointSize is the splat edge length in pixels for a visual state.
func PointSize(v pointset.Visual) int {
	switch v {
	case pointset.VisualCandidate:
		return 3
	case pointset.VisualCenter:
		return 4
	default:
		return 2
	}
}

// Draw clears t and renders points as seen from cam.
func (r *Renderer) Draw(t Target, cam Camera, points []pointset.Point) Stats {
	var st Stats
	if r == nil || t == nil {
		return st
	}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return st
	}
	t.Clear(r.ClearColor)
	r.ensureDepth(w, h)
	r.clearDepth()

	aspect := geom.Scalar(w) / geom.Scalar(h)
	mvp := geom.Mat4Mul(cam.Projection(aspect), cam.View())
	dist := geom.Distance(cam.Position, cam.Target)

	for _, p := range points {
		clip := geom.Mat4MulV4(mvp, geom.Vec4{X: p.Pos.X, Y: p.Pos.Y, Z: p.Pos.Z, W: 1})
		ndc, ok := clipToNDC(clip)
		if !ok || ndc.Z < -1 || ndc.Z > 1 || ndc.X < -1.1 || ndc.X > 1.1 || ndc.Y < -1.1 || ndc.Y > 1.1 {
			st.Culled++
			continue
		}
		x, y := ndcToScreen(ndc, w, h)

		c := VisualColor(p.Visual)
		if r.Shade {
			// Points on the far side of the cube fade to half brightness.
			c = c.MulScalar(1 - 0.5*geom.Clamp01((clip.W-(dist-1.8))/3.6))
		}
		r.splat(t, x, y, w, h, PointSize(p.Visual), clip.W, c)
		st.Drawn++
	}
	return st
}

func (r *Renderer) splat(t Target, cx, cy, w, h, size int, depth float32, c Color) {
	x0 := cx - size/2
	y0 := cy - size/2
	for y := y0; y < y0+size; y++ {
		if y < 0 || y >= h {
			continue
		}
		for x := x0; x < x0+size; x++ {
			if x < 0 || x >= w {
				continue
			}
			i := y*w + x
			if depth >= r.depthBuf[i] {
				continue
			}
			r.depthBuf[i] = depth
			t.SetPixel(x, y, c)
		}
	}
}

type ndcPoint struct {
	X, Y, Z float32
}

// clipToNDC rejects points on or behind the eye plane.
func clipToNDC(p geom.Vec4) (ndcPoint, bool) {
	if p.W <= 0 {
		return ndcPoint{}, false
	}
	invW := 1.0 / p.W
	return ndcPoint{X: p.X * invW, Y: p.Y * invW, Z: p.Z * invW}, true
}

func ndcToScreen(p ndcPoint, w, h int) (x, y int) {
	sx := (p.X*0.5 + 0.5) * float32(w-1)
	sy := (1 - (p.Y*0.5 + 0.5)) * float32(h-1)
	return int(sx + 0.5), int(sy + 0.5)
}
