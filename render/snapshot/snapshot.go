// Package snapshot renders the point set offline as lit spheres and saves or
// uploads the result as a PNG.
package snapshot

import (
	"bytes"
	"image"
	"image/png"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"

	"spherecull/render"
	"spherecull/sim/pointset"
)

// Options controls a snapshot render. Zero fields take the defaults below.
type Options struct {
	Width       int
	Height      int
	Supersample int

	// Radius of each sphere in world units.
	Radius float64
	// Detail is the icosphere subdivision level.
	Detail int

	Eye    fauxgl.Vector
	Center fauxgl.Vector
	Up     fauxgl.Vector
	FOVY   float64
	Near   float64
	Far    float64
}

func DefaultOptions() Options {
	return Options{
		Width:       800,
		Height:      800,
		Supersample: 2,
		Radius:      0.01,
		Detail:      1,
		Eye:         fauxgl.V(0, 0, -5),
		Center:      fauxgl.V(0, 0, 0),
		Up:          fauxgl.V(0, 1, 0),
		FOVY:        45,
		Near:        1,
		Far:         20,
	}
}

func (o *Options) fill() {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Supersample <= 0 {
		o.Supersample = d.Supersample
	}
	if o.Radius <= 0 {
		o.Radius = d.Radius
	}
	if o.Detail <= 0 {
		o.Detail = d.Detail
	}
	if o.Eye == (fauxgl.Vector{}) {
		o.Eye = d.Eye
	}
	if o.Up == (fauxgl.Vector{}) {
		o.Up = d.Up
	}
	if o.FOVY <= 0 {
		o.FOVY = d.FOVY
	}
	if o.Near <= 0 {
		o.Near = d.Near
	}
	if o.Far <= o.Near {
		o.Far = d.Far
	}
}

func toFaux(c render.Color) fauxgl.Color {
	return fauxgl.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255, A: 1}
}

// Render draws points as icospheres colored by visual state, lit by a light
// at the eye.
func Render(points []pointset.Point, opts Options) image.Image {
	opts.fill()
	w, h := opts.Width*opts.Supersample, opts.Height*opts.Supersample

	context := fauxgl.NewContext(w, h)
	context.ClearColorBufferWith(toFaux(render.Background))

	aspect := float64(opts.Width) / float64(opts.Height)
	matrix := fauxgl.LookAt(opts.Eye, opts.Center, opts.Up).Perspective(opts.FOVY, aspect, opts.Near, opts.Far)
	light := opts.Eye.Sub(opts.Center).Normalize()

	sphere := fauxgl.NewSphere(opts.Detail)
	groups := map[pointset.Visual]*fauxgl.Mesh{}
	for _, p := range points {
		m := sphere.Copy()
		r := opts.Radius
		m.Transform(fauxgl.Scale(fauxgl.V(r, r, r)).Translate(fauxgl.V(float64(p.Pos.X), float64(p.Pos.Y), float64(p.Pos.Z))))
		if g, ok := groups[p.Visual]; ok {
			g.Add(m)
		} else {
			groups[p.Visual] = m
		}
	}

	// Fixed order keeps output identical between runs.
	for _, v := range []pointset.Visual{pointset.VisualDefault, pointset.VisualCandidate, pointset.VisualCenter} {
		mesh, ok := groups[v]
		if !ok {
			continue
		}
		shader := fauxgl.NewPhongShader(matrix, light, opts.Eye)
		shader.ObjectColor = toFaux(render.VisualColor(v))
		context.Shader = shader
		context.DrawMesh(mesh)
	}

	img := context.Image()
	if opts.Supersample > 1 {
		img = resize.Resize(uint(opts.Width), uint(opts.Height), img, resize.Bilinear)
	}
	return img
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	return fauxgl.SavePNG(path, img)
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
