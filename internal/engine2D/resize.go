package engine2D

import (
	"fmt"
	"sync"

	"linux-lavalamp/internal/config"
	"linux-lavalamp/internal/geometry"
)

// Layout is what the host reports: its own logical rectangle, where the
// lamp surface sits in it, and the device pixel ratio.
type Layout struct {
	Container        geometry.Size
	Surface          geometry.Size
	Anchor           geometry.Offset
	DevicePixelRatio float64
}

// LayoutFor builds a layout for a container from the configured surface
// rectangle. A filling surface takes the whole container. A configured
// pixel ratio overrides the reported one.
func LayoutFor(cfg config.Config, container geometry.Size, reportedRatio float64) Layout {
	l := Layout{
		Container:        container,
		Surface:          geometry.Size{W: cfg.Surface.Width, H: cfg.Surface.Height},
		Anchor:           geometry.Offset{X: cfg.Surface.OffsetX, Y: cfg.Surface.OffsetY},
		DevicePixelRatio: reportedRatio,
	}
	if cfg.Surface.Fill {
		l.Surface = container
		l.Anchor = geometry.FillAnchor(container)
	}
	if cfg.PixelRatio > 0 {
		l.DevicePixelRatio = cfg.PixelRatio
	}
	return l
}

func (l Layout) validate() error {
	if l.Container.Empty() {
		return fmt.Errorf("%w: container size %s is empty", config.ErrInvalid, l.Container)
	}
	if l.Surface.Empty() {
		return fmt.Errorf("%w: surface size %s is empty", config.ErrInvalid, l.Surface)
	}
	return nil
}

// ResizeCoordinator owns the Geometry. Requests may arrive from any
// goroutine; they coalesce to the latest and are applied by the frame loop.
type ResizeCoordinator struct {
	RatioCap float64
	Scale    float64

	mu        sync.Mutex
	pending   *Layout
	coalesced int

	geometry geometry.Geometry
}

// Request buffers l for the next frame.
func (c *ResizeCoordinator) Request(l Layout) error {
	if err := l.validate(); err != nil {
		return err
	}
	c.mu.Lock()
	if c.pending != nil {
		c.coalesced++
	}
	c.pending = &l
	c.mu.Unlock()
	return nil
}

func (c *ResizeCoordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Coalesced counts requests that were replaced before being applied.
func (c *ResizeCoordinator) Coalesced() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coalesced
}

// take removes the pending layout and makes it the current geometry.
func (c *ResizeCoordinator) take() (geometry.Geometry, bool) {
	c.mu.Lock()
	l := c.pending
	c.pending = nil
	c.mu.Unlock()

	if l == nil {
		return c.geometry, false
	}
	c.geometry = c.compute(*l)
	return c.geometry, true
}

func (c *ResizeCoordinator) compute(l Layout) geometry.Geometry {
	return geometry.Geometry{
		Container: l.Container,
		Surface:   l.Surface,
		Anchor:    l.Anchor,
		Ratio:     geometry.CapRatio(l.DevicePixelRatio, c.RatioCap),
		Scale:     c.Scale,
	}
}

// Geometry is the geometry currently applied to the surfaces.
func (c *ResizeCoordinator) Geometry() geometry.Geometry { return c.geometry }
