package physics

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
)

// Population describes how a simulator seeds its bodies.
type Population struct {
	Count    int
	Radius   float64
	Margin   float64
	MinSpeed float64
	MaxSpeed float64
	Color    color.NRGBA
}

func (p Population) check(kind string) error {
	if p.Count <= 0 {
		return fmt.Errorf("%s count must be positive, got %d", kind, p.Count)
	}
	if p.Radius <= 0 {
		return fmt.Errorf("%s radius must be positive, got %g", kind, p.Radius)
	}
	if p.Margin < 0 || p.Margin >= 0.5 {
		return fmt.Errorf("%s margin must be in [0, 0.5), got %g", kind, p.Margin)
	}
	if p.MinSpeed < 0 || p.MaxSpeed < p.MinSpeed {
		return fmt.Errorf("%s speed range [%g, %g] is invalid", kind, p.MinSpeed, p.MaxSpeed)
	}
	return nil
}

func spawn(p Population, rng *rand.Rand) []Body {
	bounds := BoundsForMargin(p.Margin)
	span := bounds.Max - bounds.Min
	bodies := make([]Body, p.Count)
	for i := range bodies {
		angle := rng.Float64() * 2 * math.Pi
		speed := p.MinSpeed + rng.Float64()*(p.MaxSpeed-p.MinSpeed)
		bodies[i] = Body{
			Position: Vec2{
				X: bounds.Min + rng.Float64()*span,
				Y: bounds.Min + rng.Float64()*span,
			},
			Velocity: Vec2{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed},
			Radius:   p.Radius,
			Color:    p.Color,
		}
	}
	return bodies
}

// Influence is the optional blob-to-blob force. Inside Radius each pair
// pushes (Strength < 0) or pulls (Strength > 0) with linear falloff.
// Wander adds a Perlin-noise drift per blob.
type Influence struct {
	Radius   float64
	Strength float64
	Wander   float64
}

func (in Influence) pairwise() bool { return in.Radius > 0 && in.Strength != 0 }

// BlobSimulator owns the fixed blob population.
type BlobSimulator struct {
	Blobs     []Body
	Bounds    Bounds
	Influence Influence
	MaxSpeed  float64
	Time      float64
	Bounces   int

	noise *perlin.Perlin
	force []Vec2
}

// NewBlobSimulator seeds blobs from seed. Equal seeds give equal runs.
func NewBlobSimulator(p Population, in Influence, seed int64) (*BlobSimulator, error) {
	if err := p.check("blob"); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	return &BlobSimulator{
		Blobs:     spawn(p, rng),
		Bounds:    BoundsForMargin(p.Margin),
		Influence: in,
		MaxSpeed:  p.MaxSpeed,
		noise:     perlin.NewPerlin(2, 2, 3, seed),
		force:     make([]Vec2, p.Count),
	}, nil
}

// Advance steps every blob by dt seconds.
func (s *BlobSimulator) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	s.Time += dt

	if s.Influence.pairwise() || s.Influence.Wander > 0 {
		s.accumulate()
		for i := range s.Blobs {
			b := &s.Blobs[i]
			b.Velocity = ClampSpeed(b.Velocity.Add(s.force[i].Scale(dt)), s.MaxSpeed)
		}
	}

	for i := range s.Blobs {
		if Integrate(&s.Blobs[i], s.Bounds, dt) {
			s.Bounces++
		}
	}
}

func (s *BlobSimulator) accumulate() {
	for i := range s.force {
		s.force[i] = Vec2{}
	}

	if s.Influence.pairwise() {
		r := s.Influence.Radius
		for i := 0; i < len(s.Blobs); i++ {
			for j := i + 1; j < len(s.Blobs); j++ {
				d := s.Blobs[j].Position.Sub(s.Blobs[i].Position)
				dist := d.Len()
				if dist == 0 || dist >= r {
					continue
				}
				f := d.Scale(s.Influence.Strength * (r - dist) / r / dist)
				s.force[i] = s.force[i].Add(f)
				s.force[j] = s.force[j].Sub(f)
			}
		}
	}

	if s.Influence.Wander > 0 {
		for i := range s.Blobs {
			angle := s.noise.Noise2D(float64(i)*7.31, s.Time*0.25) * 2 * math.Pi
			s.force[i] = s.force[i].Add(Vec2{
				X: math.Cos(angle) * s.Influence.Wander,
				Y: math.Sin(angle) * s.Influence.Wander,
			})
		}
	}
}

// ParticleSimulator moves a larger population without interaction.
type ParticleSimulator struct {
	Particles []Body
	Bounds    Bounds
}

func NewParticleSimulator(p Population, seed int64) (*ParticleSimulator, error) {
	if err := p.check("particle"); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	return &ParticleSimulator{
		Particles: spawn(p, rng),
		Bounds:    BoundsForMargin(p.Margin),
	}, nil
}

// Advance is O(n): integrate and reflect each particle.
func (s *ParticleSimulator) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	for i := range s.Particles {
		Integrate(&s.Particles[i], s.Bounds, dt)
	}
}
