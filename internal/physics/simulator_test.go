package physics

import (
	"image/color"
	"math"
	"testing"
)

func blobPopulation() Population {
	return Population{
		Count:    8,
		Radius:   0.16,
		Margin:   0.22,
		MinSpeed: 0.05,
		MaxSpeed: 0.4,
		Color:    color.NRGBA{R: 255, A: 255},
	}
}

func particlePopulation() Population {
	return Population{
		Count:    200,
		Radius:   0.006,
		Margin:   0.08,
		MinSpeed: 0.1,
		MaxSpeed: 0.9,
		Color:    color.NRGBA{R: 255, G: 255, B: 255, A: 200},
	}
}

func TestReflectAtBlobMargin(t *testing.T) {
	b := Body{Position: Vec2{X: 0.23, Y: 0.5}, Velocity: Vec2{X: -0.5, Y: 0}, Radius: 0.1}
	bounds := BoundsForMargin(0.22)

	if !Integrate(&b, bounds, 0.1) {
		t.Fatalf("Expected a bounce when crossing x=0.22")
	}
	if b.Velocity.X <= 0 {
		t.Errorf("Expected velocity.x to flip positive, got %f", b.Velocity.X)
	}
	if b.Position.X < 0.22 {
		t.Errorf("Expected x >= 0.22 after reflection, got %f", b.Position.X)
	}
	if math.Abs(b.Position.X-0.26) > 1e-9 {
		t.Errorf("Expected mirrored position near 0.26, got %f", b.Position.X)
	}
}

func TestReflectHugeStepClamps(t *testing.T) {
	b := Body{Position: Vec2{X: 0.5, Y: 0.5}, Velocity: Vec2{X: 10, Y: -10}}
	bounds := BoundsForMargin(0.22)

	Integrate(&b, bounds, 1)

	if !b.Position.In(bounds) {
		t.Errorf("Expected position inside bounds, got (%f, %f)", b.Position.X, b.Position.Y)
	}
	if b.Velocity.X >= 0 || b.Velocity.Y <= 0 {
		t.Errorf("Expected both velocity components to point inward, got (%f, %f)", b.Velocity.X, b.Velocity.Y)
	}
}

func TestBlobContainment(t *testing.T) {
	tests := []struct {
		name      string
		influence Influence
		dt        float64
	}{
		{"No influence", Influence{}, 1.0 / 60},
		{"Repulsion", Influence{Radius: 0.4, Strength: -0.5}, 1.0 / 60},
		{"Attraction", Influence{Radius: 0.4, Strength: 0.5}, 1.0 / 60},
		{"Wander", Influence{Wander: 0.3}, 1.0 / 60},
		{"Coarse steps", Influence{Radius: 0.4, Strength: -2, Wander: 1}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := NewBlobSimulator(blobPopulation(), tt.influence, 42)
			if err != nil {
				t.Fatalf("NewBlobSimulator: %v", err)
			}
			for tick := 0; tick < 2000; tick++ {
				sim.Advance(tt.dt)
				for i, b := range sim.Blobs {
					if !b.Position.In(sim.Bounds) {
						t.Fatalf("Tick %d: blob %d escaped to (%f, %f)", tick, i, b.Position.X, b.Position.Y)
					}
				}
			}
		})
	}
}

func TestParticleContainment(t *testing.T) {
	sim, err := NewParticleSimulator(particlePopulation(), 7)
	if err != nil {
		t.Fatalf("NewParticleSimulator: %v", err)
	}
	if sim.Bounds.Min != 0.08 || sim.Bounds.Max != 0.92 {
		t.Fatalf("Expected particle bounds [0.08, 0.92], got [%f, %f]", sim.Bounds.Min, sim.Bounds.Max)
	}
	for tick := 0; tick < 1000; tick++ {
		sim.Advance(1.0 / 30)
		for i, p := range sim.Particles {
			if !p.Position.In(sim.Bounds) {
				t.Fatalf("Tick %d: particle %d escaped to (%f, %f)", tick, i, p.Position.X, p.Position.Y)
			}
		}
	}
}

func TestSeededDeterminism(t *testing.T) {
	in := Influence{Radius: 0.35, Strength: -0.2, Wander: 0.05}
	a, _ := NewBlobSimulator(blobPopulation(), in, 99)
	b, _ := NewBlobSimulator(blobPopulation(), in, 99)
	pa, _ := NewParticleSimulator(particlePopulation(), 100)
	pb, _ := NewParticleSimulator(particlePopulation(), 100)

	for tick := 0; tick < 500; tick++ {
		a.Advance(1.0 / 60)
		b.Advance(1.0 / 60)
		pa.Advance(1.0 / 60)
		pb.Advance(1.0 / 60)
		for i := range a.Blobs {
			if a.Blobs[i] != b.Blobs[i] {
				t.Fatalf("Tick %d: blob %d diverged: %+v vs %+v", tick, i, a.Blobs[i], b.Blobs[i])
			}
		}
		for i := range pa.Particles {
			if pa.Particles[i] != pb.Particles[i] {
				t.Fatalf("Tick %d: particle %d diverged", tick, i)
			}
		}
	}

	c, _ := NewBlobSimulator(blobPopulation(), in, 100)
	if c.Blobs[0] == a.Blobs[0] {
		t.Errorf("Expected a different seed to produce a different layout")
	}
}

func TestPopulationRejected(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Population)
	}{
		{"Zero count", func(p *Population) { p.Count = 0 }},
		{"Zero radius", func(p *Population) { p.Radius = 0 }},
		{"Negative radius", func(p *Population) { p.Radius = -0.1 }},
		{"Margin half", func(p *Population) { p.Margin = 0.5 }},
		{"Negative margin", func(p *Population) { p.Margin = -0.01 }},
		{"Inverted speeds", func(p *Population) { p.MinSpeed, p.MaxSpeed = 0.5, 0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := blobPopulation()
			tt.mutate(&p)
			if _, err := NewBlobSimulator(p, Influence{}, 1); err == nil {
				t.Errorf("Expected blob simulator to reject %s", tt.name)
			}
			if _, err := NewParticleSimulator(p, 1); err == nil {
				t.Errorf("Expected particle simulator to reject %s", tt.name)
			}
		})
	}
}

func TestZeroDeltaIsNoop(t *testing.T) {
	sim, _ := NewBlobSimulator(blobPopulation(), Influence{Radius: 0.3, Strength: 1}, 3)
	before := append([]Body(nil), sim.Blobs...)
	sim.Advance(0)
	sim.Advance(-1)
	for i := range before {
		if before[i] != sim.Blobs[i] {
			t.Errorf("Expected blob %d unchanged on non-positive dt", i)
		}
	}
}
