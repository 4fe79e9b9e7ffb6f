// Package soft is a CPU render backend on top of fogleman/gg. It needs no
// window or GPU and is what headless capture and the tests draw with.
package soft

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"linux-lavalamp/internal/engine2D"
)

// MaxSide bounds a single buffer side.
const MaxSide = 16384

type Backend struct{}

func (Backend) Name() string { return "software" }

func (Backend) NewTarget(w, h int) (engine2D.Target, error) {
	t := &Target{}
	if err := t.Resize(w, h); err != nil {
		return nil, err
	}
	return t, nil
}

// Target draws into an RGBA image owned by a gg context.
type Target struct {
	dc *gg.Context
}

func (t *Target) Size() (int, int) {
	if t.dc == nil {
		return 0, 0
	}
	return t.dc.Width(), t.dc.Height()
}

func (t *Target) Resize(w, h int) error {
	if w <= 0 || h <= 0 || w > MaxSide || h > MaxSide {
		return fmt.Errorf("buffer size %dx%d out of range", w, h)
	}
	if t.dc != nil && t.dc.Width() == w && t.dc.Height() == h {
		return nil
	}
	t.dc = gg.NewContext(w, h)
	return nil
}

func (t *Target) Begin() {}

func (t *Target) Clear() {
	t.dc.SetRGBA(0, 0, 0, 0)
	t.dc.Clear()
}

func (t *Target) FillCircle(x, y, r float64, c color.NRGBA) {
	t.dc.DrawCircle(x, y, r)
	t.dc.SetColor(c)
	t.dc.Fill()
}

func (t *Target) FillSoftCircle(x, y, r, softness float64, c color.NRGBA) {
	if softness <= 0 {
		t.FillCircle(x, y, r, c)
		return
	}
	edge := c
	edge.A = 0
	grad := gg.NewRadialGradient(x, y, 0, x, y, r)
	grad.AddColorStop(0, c)
	grad.AddColorStop(1-softness, c)
	grad.AddColorStop(1, edge)

	t.dc.DrawCircle(x, y, r)
	t.dc.SetFillStyle(grad)
	t.dc.Fill()
}

func (t *Target) End() {}

func (t *Target) Release() { t.dc = nil }

// Image exposes the drawn pixels. It is nil after Release.
func (t *Target) Image() image.Image {
	if t.dc == nil {
		return nil
	}
	return t.dc.Image()
}

// SavePNG writes the current buffer to path.
func (t *Target) SavePNG(path string) error {
	if t.dc == nil {
		return fmt.Errorf("target released")
	}
	return t.dc.SavePNG(path)
}

// ImageOf returns the pixels of a software surface, or nil when the
// surface lives on another backend.
func ImageOf(s *engine2D.Surface) image.Image {
	if s == nil {
		return nil
	}
	if t, ok := s.Target.(*Target); ok {
		return t.Image()
	}
	return nil
}
