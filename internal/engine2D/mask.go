package engine2D

import (
	"linux-lavalamp/internal/geometry"
)

// MaskConsumer receives mask geometry, e.g. a text layer that clips its
// second copy of the text to the blob surface.
type MaskConsumer interface {
	ApplyMask(m geometry.MaskDescriptor)
}

// MaskConsumerFunc adapts a function to MaskConsumer.
type MaskConsumerFunc func(m geometry.MaskDescriptor)

func (f MaskConsumerFunc) ApplyMask(m geometry.MaskDescriptor) { f(m) }

// MaskSynchronizer republishes the blob surface geometry. It never keeps
// a copy of its own that could drift: every Sync re-derives from the
// surface.
type MaskSynchronizer struct {
	current   geometry.MaskDescriptor
	published bool
	consumers []MaskConsumer
}

// Subscribe registers c and hands it the current descriptor right away.
func (m *MaskSynchronizer) Subscribe(c MaskConsumer) {
	m.consumers = append(m.consumers, c)
	if m.published {
		c.ApplyMask(m.current)
	}
}

// Sync derives the descriptor from s and publishes it if it changed.
func (m *MaskSynchronizer) Sync(s *Surface) bool {
	next := s.Mask()
	if m.published && next == m.current {
		return false
	}
	m.current = next
	m.published = true
	for _, c := range m.consumers {
		c.ApplyMask(next)
	}
	return true
}

func (m *MaskSynchronizer) Current() geometry.MaskDescriptor { return m.current }
