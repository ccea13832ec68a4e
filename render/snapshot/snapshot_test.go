package snapshot

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"spherecull/geom"
	"spherecull/render"
	"spherecull/sim/pointset"
)

func TestRenderDrawsSphereAtCenter(t *testing.T) {
	opts := Options{Width: 64, Height: 64, Supersample: 2, Radius: 0.5}
	img := Render([]pointset.Point{{ID: 1, Pos: geom.V3(0, 0, 0), Visual: pointset.VisualCenter}}, opts)

	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("bounds = %v, want 64x64", b)
	}
	r, g, b, _ := img.At(32, 32).RGBA()
	br, bg, bb, _ := img.At(0, 0).RGBA()
	if r == br && g == bg && b == bb {
		t.Fatalf("center pixel matches background")
	}
	if bg>>8 > 0x20 {
		t.Fatalf("corner pixel = %d,%d,%d, want background", br>>8, bg>>8, bb>>8)
	}
}

func TestRenderEmpty(t *testing.T) {
	img := Render(nil, Options{Width: 16, Height: 8, Supersample: 1})
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Fatalf("bounds = %v", b)
	}
	r, g, b, _ := img.At(4, 4).RGBA()
	want := render.Background
	near := func(got uint32, want uint8) bool {
		d := int(got>>8) - int(want)
		return d >= -1 && d <= 1
	}
	if !near(r, want.R) || !near(g, want.G) || !near(b, want.B) {
		t.Fatalf("pixel = %d,%d,%d, want background %v", r>>8, g>>8, b>>8, want)
	}
}

func TestSaveAndEncodePNG(t *testing.T) {
	img := Render(nil, Options{Width: 8, Height: 8, Supersample: 1})

	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("decode: %v", err)
	}

	p := filepath.Join(t.TempDir(), "final.png")
	if err := SavePNG(p, img); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	if st, err := os.Stat(p); err != nil || st.Size() == 0 {
		t.Fatalf("stat = %v, %v", st, err)
	}
}

func TestUploaderKey(t *testing.T) {
	u, err := NewUploader(S3Config{Bucket: "renders", Region: "us-east-1", Endpoint: "http://127.0.0.1:9000", Prefix: "runs/7", AccessKey: "k", SecretKey: "s"})
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	if got := u.Key("final.png"); got != "runs/7/final.png" {
		t.Fatalf("Key() = %q", got)
	}
	if _, err := NewUploader(S3Config{}); err == nil {
		t.Fatalf("NewUploader(no bucket) error = nil")
	}
}
