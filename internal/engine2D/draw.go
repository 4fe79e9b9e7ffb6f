package engine2D

import (
	"math"

	"linux-lavalamp/internal/physics"
)

// BlobRenderer draws blobs as soft discs on the blob surface.
type BlobRenderer struct {
	Softness float64
}

// Draw clears the surface and paints every blob at normalized × physical
// size. It returns false, drawing nothing, when the buffer does not have
// the surface's physical size yet.
func (r BlobRenderer) Draw(s *Surface, blobs []physics.Body) bool {
	if !s.Ready() {
		return false
	}
	w, h := s.Target.Size()
	unit := math.Min(float64(w), float64(h))

	s.Target.Begin()
	s.Target.Clear()
	for _, b := range blobs {
		p := b.Position.ToPixel(w, h)
		if r.Softness > 0 {
			s.Target.FillSoftCircle(p.X, p.Y, b.Radius*unit, r.Softness, b.Color)
		} else {
			s.Target.FillCircle(p.X, p.Y, b.Radius*unit, b.Color)
		}
	}
	s.Target.End()
	return true
}

// ParticleRenderer draws particles as hard discs on their own surface.
// Sub-pixel particles are drawn one device pixel wide.
type ParticleRenderer struct{}

func (ParticleRenderer) Draw(s *Surface, particles []physics.Body) bool {
	if !s.Ready() {
		return false
	}
	w, h := s.Target.Size()
	unit := math.Min(float64(w), float64(h))

	s.Target.Begin()
	s.Target.Clear()
	for _, p := range particles {
		pos := p.Position.ToPixel(w, h)
		s.Target.FillCircle(pos.X, pos.Y, math.Max(p.Radius*unit, 0.5), p.Color)
	}
	s.Target.End()
	return true
}
