package engine2D

import (
	"fmt"
	"sync/atomic"

	"linux-lavalamp/internal/config"
	"linux-lavalamp/internal/geometry"
	"linux-lavalamp/internal/physics"
	"linux-lavalamp/internal/utils"
)

type State int

const (
	StateUninitialized State = iota
	StateRunning
	StateResizing
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateResizing:
		return "resizing"
	case StateDisposed:
		return "disposed"
	}
	return "unknown"
}

// Stats counts what happened across frames.
type Stats struct {
	Frames        int
	Resizes       int
	FailedResizes int
	SkippedDraws  int
	Heals         int
	Bounces       int
}

// Session ties simulation, surfaces and the mask together and runs one
// frame at a time. Only Resize may be called from other goroutines.
type Session struct {
	cfg config.Config

	blobs     *physics.BlobSimulator
	particles *physics.ParticleSimulator

	blobSurface     *Surface
	particleSurface *Surface
	blobRenderer    BlobRenderer
	particleRender  ParticleRenderer

	coord *ResizeCoordinator
	mask  MaskSynchronizer
	stats Stats

	running  atomic.Bool
	disposed atomic.Bool
}

func population(e config.EntityConfig) (physics.Population, error) {
	c, err := config.ParseColor(e.Color)
	if err != nil {
		return physics.Population{}, err
	}
	return physics.Population{
		Count:    e.Count,
		Radius:   e.Radius,
		Margin:   e.Margin,
		MinSpeed: e.MinSpeed,
		MaxSpeed: e.MaxSpeed,
		Color:    c,
	}, nil
}

// NewSession validates cfg, seeds both simulators, acquires both surfaces
// from backend and publishes the first mask.
func NewSession(cfg config.Config, backend Backend, layout Layout) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := layout.validate(); err != nil {
		return nil, err
	}

	blobPop, err := population(cfg.Blobs)
	if err != nil {
		return nil, fmt.Errorf("%w: blobs: %v", config.ErrInvalid, err)
	}
	particlePop, err := population(cfg.Particles)
	if err != nil {
		return nil, fmt.Errorf("%w: particles: %v", config.ErrInvalid, err)
	}

	blobs, err := physics.NewBlobSimulator(blobPop, physics.Influence{
		Radius:   cfg.Influence.Radius,
		Strength: cfg.Influence.Strength,
		Wander:   cfg.Influence.Wander,
	}, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	particles, err := physics.NewParticleSimulator(particlePop, cfg.Seed+1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	coord := &ResizeCoordinator{RatioCap: cfg.RatioCap, Scale: cfg.Scale}
	if err := coord.Request(layout); err != nil {
		return nil, err
	}
	g, _ := coord.take()

	blobSurface, err := newSurface("blob", backend, g)
	if err != nil {
		return nil, err
	}
	particleSurface, err := newSurface("particle", backend, g)
	if err != nil {
		blobSurface.release()
		return nil, err
	}

	s := &Session{
		cfg:             cfg,
		blobs:           blobs,
		particles:       particles,
		blobSurface:     blobSurface,
		particleSurface: particleSurface,
		blobRenderer:    BlobRenderer{Softness: cfg.Blobs.Softness},
		coord:           coord,
	}
	s.mask.Sync(blobSurface)
	s.running.Store(true)

	utils.Info("Session: %d blobs, %d particles, surface %s -> buffer %s on %s",
		cfg.Blobs.Count, cfg.Particles.Count, g.Surface, g.Physical(), backend.Name())
	return s, nil
}

func (s *Session) State() State {
	switch {
	case s.disposed.Load():
		return StateDisposed
	case !s.running.Load():
		return StateUninitialized
	case s.coord.Pending():
		return StateResizing
	}
	return StateRunning
}

// Resize queues a layout change. It is safe to call from any goroutine;
// the change lands atomically at the start of the next frame.
func (s *Session) Resize(l Layout) error {
	if s.disposed.Load() {
		return ErrDisposed
	}
	return s.coord.Request(l)
}

// Frame runs one tick: apply pending resize, simulate, render, publish
// the mask. dt is in seconds.
func (s *Session) Frame(dt float64) error {
	if s.disposed.Load() {
		return ErrDisposed
	}

	s.applyPending()

	before := s.blobs.Bounces
	s.blobs.Advance(dt)
	s.particles.Advance(dt)
	s.stats.Bounces += s.blobs.Bounces - before

	if !s.blobRenderer.Draw(s.blobSurface, s.blobs.Blobs) {
		s.stats.SkippedDraws++
	}
	if !s.particleRender.Draw(s.particleSurface, s.particles.Particles) {
		s.stats.SkippedDraws++
	}

	// Anything published here means the mask disagreed with the surface
	// after applyPending.
	if s.mask.Sync(s.blobSurface) {
		s.stats.Heals++
		utils.Debug("Session: mask re-derived from blob surface %s", s.blobSurface.Logical())
	}

	s.stats.Frames++
	return nil
}

func (s *Session) applyPending() {
	g, ok := s.coord.take()
	if !ok {
		for _, surf := range []*Surface{s.blobSurface, s.particleSurface} {
			if !surf.Ready() {
				if err := surf.realloc(); err != nil {
					utils.Debug("Session: %v", err)
				}
			}
		}
		return
	}

	for _, surf := range []*Surface{s.blobSurface, s.particleSurface} {
		if err := surf.apply(g); err != nil {
			s.stats.FailedResizes++
			utils.Warn("Session: %v", err)
		}
	}
	s.mask.Sync(s.blobSurface)
	s.stats.Resizes++
}

// Dispose releases both surfaces. Later frames return ErrDisposed.
func (s *Session) Dispose() {
	if !s.disposed.CompareAndSwap(false, true) {
		return
	}
	s.blobSurface.release()
	s.particleSurface.release()
	utils.Info("Session: disposed after %d frames", s.stats.Frames)
}

// Subscribe registers a mask consumer; it receives the current mask now.
func (s *Session) Subscribe(c MaskConsumer) { s.mask.Subscribe(c) }

func (s *Session) Mask() geometry.MaskDescriptor { return s.mask.Current() }
func (s *Session) Geometry() geometry.Geometry   { return s.coord.Geometry() }
func (s *Session) BlobSurface() *Surface         { return s.blobSurface }
func (s *Session) ParticleSurface() *Surface     { return s.particleSurface }
func (s *Session) Blobs() []physics.Body         { return s.blobs.Blobs }
func (s *Session) Particles() []physics.Body     { return s.particles.Particles }
func (s *Session) Config() config.Config         { return s.cfg }
func (s *Session) Coalesced() int                { return s.coord.Coalesced() }
func (s *Session) Stats() Stats                  { return s.stats }
