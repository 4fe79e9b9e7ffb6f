package engine2D

import (
	"math"

	"linux-lavalamp/internal/config"
	"linux-lavalamp/internal/geometry"
)

// Host turns screen sizes into layouts with one device pixel ratio. A
// window host reports its own resizes; once it follows the X11 root, only
// the root watcher does, and window resizes are presentation only.
type Host struct {
	cfg        config.Config
	ratio      float64
	followRoot bool
}

func NewHost(cfg config.Config, ratio float64) *Host {
	return &Host{cfg: cfg, ratio: ratio}
}

// FollowRoot switches the host to the root window and its ratio. Call it
// before the watcher goroutine starts.
func (h *Host) FollowRoot(ratio float64) {
	h.ratio = ratio
	h.followRoot = true
}

func (h *Host) FollowsRoot() bool { return h.followRoot }

func (h *Host) Ratio() float64 { return h.ratio }

// Container is the unscaled wrapper for a screen. A filling surface
// follows the screen; otherwise the configured wrapper is used as is.
func (h *Host) Container(screen geometry.Size) geometry.Size {
	if !h.cfg.Surface.Fill {
		return geometry.Size{W: h.cfg.Container.Width, H: h.cfg.Container.Height}
	}
	return geometry.Size{
		W: int(math.Round(float64(screen.W) / h.cfg.Scale)),
		H: int(math.Round(float64(screen.H) / h.cfg.Scale)),
	}
}

func (h *Host) Layout(screen geometry.Size) Layout {
	return LayoutFor(h.cfg, h.Container(screen), h.ratio)
}

// WindowResized returns the layout for a window resize, or false when the
// root watcher owns resizes.
func (h *Host) WindowResized(screen geometry.Size) (Layout, bool) {
	if h.followRoot {
		return Layout{}, false
	}
	return h.Layout(screen), true
}
