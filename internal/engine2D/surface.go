package engine2D

import (
	"fmt"

	"linux-lavalamp/internal/geometry"
	"linux-lavalamp/internal/utils"
)

// Surface is a named render target sized from the shared Geometry.
type Surface struct {
	Name    string
	Target  Target
	logical geometry.Size
	ratio   float64
	anchor  geometry.Offset
}

func newSurface(name string, backend Backend, g geometry.Geometry) (*Surface, error) {
	phys := g.Physical()
	target, err := backend.NewTarget(phys.W, phys.H)
	if err != nil {
		return nil, fmt.Errorf("%w: %s surface on %s: %v", ErrSurfaceUnavailable, name, backend.Name(), err)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s surface on %s returned no target", ErrSurfaceUnavailable, name, backend.Name())
	}
	return &Surface{
		Name:    name,
		Target:  target,
		logical: g.Surface,
		ratio:   g.Ratio,
		anchor:  g.Anchor,
	}, nil
}

// Logical is the unscaled CSS-space size.
func (s *Surface) Logical() geometry.Size { return s.logical }

func (s *Surface) Anchor() geometry.Offset { return s.anchor }

func (s *Surface) Ratio() float64 { return s.ratio }

// Physical is the size the backing buffer must have.
func (s *Surface) Physical() geometry.Size {
	return geometry.PhysicalSize(s.logical, s.ratio)
}

// Ready reports whether the target matches the expected physical size.
func (s *Surface) Ready() bool {
	w, h := s.Target.Size()
	p := s.Physical()
	return w == p.W && h == p.H
}

// apply adopts new geometry and reallocates the buffer when the physical
// size changed. A failed reallocation leaves the surface not Ready; the
// next resize or frame retries.
func (s *Surface) apply(g geometry.Geometry) error {
	s.logical = g.Surface
	s.ratio = g.Ratio
	s.anchor = g.Anchor
	return s.realloc()
}

func (s *Surface) realloc() error {
	if s.Ready() {
		return nil
	}
	p := s.Physical()
	if err := s.Target.Resize(p.W, p.H); err != nil {
		return fmt.Errorf("resize %s surface to %s: %w", s.Name, p, err)
	}
	utils.Debug("Surface %s: buffer %s (logical %s @%.2fx)", s.Name, p, s.logical, s.ratio)
	return nil
}

// Mask derives the descriptor from the surface's own state.
func (s *Surface) Mask() geometry.MaskDescriptor {
	return geometry.MaskDescriptor{Size: s.logical, Position: s.anchor}
}

func (s *Surface) release() {
	if s.Target != nil {
		s.Target.Release()
		s.Target = nil
	}
}
