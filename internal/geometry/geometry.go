package geometry

import (
	"fmt"
	"math"
)

// DefaultRatioCap limits the backing-buffer density.
const DefaultRatioCap = 2.0

// Size is a width/height pair in logical (unscaled) pixels.
type Size struct {
	W, H int
}

func (s Size) Empty() bool    { return s.W <= 0 || s.H <= 0 }
func (s Size) String() string { return fmt.Sprintf("%dx%d", s.W, s.H) }

// Offset places a rectangle's top-left corner relative to the centre of its
// container, in logical pixels. {-265, -20} means 265px left of centre and
// 20px above it.
type Offset struct {
	X, Y float64
}

// Point is an absolute position in container coordinates.
type Point struct {
	X, Y float64
}

// MaskDescriptor is the geometry a text layer clips against. It always
// equals the blob surface's logical size and anchor.
type MaskDescriptor struct {
	Size     Size
	Position Offset
}

// Resolve turns the centre-relative position into a top-left point for a
// container of the given logical size.
func (m MaskDescriptor) Resolve(container Size) Point {
	return Point{
		X: float64(container.W)/2 + m.Position.X,
		Y: float64(container.H)/2 + m.Position.Y,
	}
}

// CapRatio limits a reported device pixel ratio to cap. Ratios below 1
// pass through; non-positive or NaN reports count as 1.
func CapRatio(ratio, limit float64) float64 {
	if limit < 1 {
		limit = DefaultRatioCap
	}
	if !(ratio > 0) {
		return 1
	}
	return math.Min(ratio, limit)
}

// PhysicalSize scales a logical size by ratio, rounding to whole pixels.
// A non-empty side never rounds down to zero.
func PhysicalSize(logical Size, ratio float64) Size {
	return Size{
		W: scaleSide(logical.W, ratio),
		H: scaleSide(logical.H, ratio),
	}
}

func scaleSide(n int, ratio float64) int {
	v := int(math.Round(float64(n) * ratio))
	if n > 0 && v < 1 {
		return 1
	}
	return v
}

// Geometry is the one place container, surface and mask geometry live.
// Surfaces and the mask both derive from it.
type Geometry struct {
	Container Size
	Surface   Size
	Anchor    Offset
	Ratio     float64
	Scale     float64
}

// Physical is the backing-buffer size of every surface.
func (g Geometry) Physical() Size {
	return PhysicalSize(g.Surface, g.Ratio)
}

func (g Geometry) Mask() MaskDescriptor {
	return MaskDescriptor{Size: g.Surface, Position: g.Anchor}
}

// SurfaceOrigin is the surface top-left in unscaled container coordinates.
func (g Geometry) SurfaceOrigin() Point {
	return g.Mask().Resolve(g.Container)
}

// Presented is the on-screen wrapper size after the presentation scale.
func (g Geometry) Presented() (float64, float64) {
	return float64(g.Container.W) * g.Scale, float64(g.Container.H) * g.Scale
}

// PresentPoint maps an unscaled container point to the scaled wrapper.
func (g Geometry) PresentPoint(p Point) Point {
	return Point{X: p.X * g.Scale, Y: p.Y * g.Scale}
}

// PresentRect returns the scaled on-screen rectangle of the surface.
func (g Geometry) PresentRect() (x, y, w, h float64) {
	o := g.PresentPoint(g.SurfaceOrigin())
	return o.X, o.Y, float64(g.Surface.W) * g.Scale, float64(g.Surface.H) * g.Scale
}

// FillAnchor centres a rectangle of size s inside its container.
func FillAnchor(s Size) Offset {
	return Offset{X: -float64(s.W) / 2, Y: -float64(s.H) / 2}
}

// FitScale is the uniform scale that fits (or, for "fill", covers) a
// container inside a screen, together with the centring offset.
func FitScale(screen, container Size, mode string) (scale, offsetX, offsetY float64) {
	scaleW := float64(screen.W) / float64(container.W)
	scaleH := float64(screen.H) / float64(container.H)

	if mode == "fill" {
		scale = math.Max(scaleW, scaleH)
	} else {
		scale = math.Min(scaleW, scaleH)
	}

	offsetX = (float64(screen.W) - float64(container.W)*scale) / 2
	offsetY = (float64(screen.H) - float64(container.H)*scale) / 2
	return scale, offsetX, offsetY
}

// View places the presented container inside a window.
type View struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// NewView fits the presented container of g into screen.
func NewView(screen Size, g Geometry, mode string) View {
	w, h := g.Presented()
	presented := Size{W: int(math.Round(w)), H: int(math.Round(h))}
	if presented.Empty() || screen.Empty() {
		return View{Scale: 1}
	}
	s, ox, oy := FitScale(screen, presented, mode)
	return View{Scale: s, OffsetX: ox, OffsetY: oy}
}

// Point maps an unscaled container point to window coordinates.
func (v View) Point(g Geometry, p Point) Point {
	q := g.PresentPoint(p)
	return Point{X: v.OffsetX + q.X*v.Scale, Y: v.OffsetY + q.Y*v.Scale}
}

// Length maps an unscaled container length to window pixels.
func (v View) Length(g Geometry, l float64) float64 { return l * g.Scale * v.Scale }

// SurfaceRect is the surface rectangle in window coordinates.
func (v View) SurfaceRect(g Geometry) (x, y, w, h float64) {
	o := v.Point(g, g.SurfaceOrigin())
	return o.X, o.Y, v.Length(g, float64(g.Surface.W)), v.Length(g, float64(g.Surface.H))
}
