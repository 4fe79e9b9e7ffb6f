package textlayer

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"linux-lavalamp/internal/config"
	"linux-lavalamp/internal/geometry"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func newLayer(t *testing.T, lines ...string) *Layer {
	t.Helper()
	cfg := config.Default().Text
	cfg.Lines = lines
	cfg.FontSize = 40
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return l
}

var cornerGeometry = geometry.Geometry{
	Container: geometry.Size{W: 200, H: 100},
	Surface:   geometry.Size{W: 50, H: 40},
	Anchor:    geometry.Offset{X: -100, Y: -50},
	Ratio:     1,
	Scale:     1,
}

func TestComposeNeedsMask(t *testing.T) {
	l := newLayer(t)
	_, err := l.Compose(cornerGeometry, nil, solid(50, 40, color.White), nil)
	if !errors.Is(err, ErrNoMask) {
		t.Errorf("Expected ErrNoMask, got %v", err)
	}
}

func TestComposeRejectsMisSizedBlobImage(t *testing.T) {
	l := newLayer(t)
	l.ApplyMask(cornerGeometry.Mask())

	g := cornerGeometry
	g.Ratio = 2
	// Correct at ratio 1, stale at ratio 2.
	_, err := l.Compose(g, nil, solid(50, 40, color.White), nil)
	if !errors.Is(err, ErrMaskMismatch) {
		t.Errorf("Expected ErrMaskMismatch, got %v", err)
	}
	if _, err := l.Compose(g, nil, solid(100, 80, color.White), nil); err != nil {
		t.Errorf("Expected matching image to compose, got %v", err)
	}
}

func TestMaskAlphaPlacement(t *testing.T) {
	blob := solid(10, 10, color.NRGBA{R: 255, A: 255})
	mask := MaskAlpha(blob, geometry.Size{W: 40, H: 30}, image.Pt(5, 7))

	if a := mask.AlphaAt(5, 7).A; a != 255 {
		t.Errorf("Expected opaque mask at placement origin, got %d", a)
	}
	if a := mask.AlphaAt(14, 16).A; a != 255 {
		t.Errorf("Expected opaque mask at far corner, got %d", a)
	}
	if a := mask.AlphaAt(15, 7).A; a != 0 {
		t.Errorf("Expected clear mask right of blob, got %d", a)
	}
	if a := mask.AlphaAt(4, 7).A; a != 0 {
		t.Errorf("Expected clear mask left of blob, got %d", a)
	}
}

func TestComposeLayersBlobAtMask(t *testing.T) {
	l := newLayer(t)
	l.ApplyMask(cornerGeometry.Mask())

	blobColor := color.NRGBA{R: 255, G: 90, B: 54, A: 255}
	img, err := l.Compose(cornerGeometry, nil, solid(50, 40, blobColor), nil)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if got := color.NRGBAModel.Convert(img.At(10, 10)); got != blobColor {
		t.Errorf("Expected blob colour inside mask, got %v", got)
	}
	bg := config.MustColor(config.Default().Text.Background)
	if got := color.NRGBAModel.Convert(img.At(150, 80)); got != bg {
		t.Errorf("Expected background outside mask, got %v", got)
	}
}

func TestTextInvertsUnderBlob(t *testing.T) {
	g := cornerGeometry
	g.Surface = g.Container
	g.Anchor = geometry.FillAnchor(g.Container)
	blob := solid(200, 100, color.NRGBA{R: 255, G: 90, B: 54, A: 255})

	plain := newLayer(t)
	plain.ApplyMask(g.Mask())
	without, err := plain.Compose(g, nil, blob, nil)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	captioned := newLayer(t, "LAVA")
	captioned.ApplyMask(g.Mask())
	with, err := captioned.Compose(g, nil, blob, nil)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	bg := config.MustColor(config.Default().Text.Background)
	revealed := 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if color.NRGBAModel.Convert(with.At(x, y)) == bg &&
				color.NRGBAModel.Convert(without.At(x, y)) != bg {
				revealed++
			}
		}
	}
	if revealed == 0 {
		t.Error("Expected caption drawn in background colour over the blob")
	}
}

func TestLinesAreCentred(t *testing.T) {
	l := newLayer(t, "LAVA", "LAMP")
	lines := l.Lines(geometry.Size{W: 900, H: 600})
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0].X != 450 || lines[1].X != 450 {
		t.Errorf("Expected lines centred at x=450, got %v and %v", lines[0].X, lines[1].X)
	}
	mid := (lines[0].Y + lines[1].Y) / 2
	if math.Abs(mid-300) > 1e-9 {
		t.Errorf("Expected lines centred around y=300, got %v", mid)
	}
}
