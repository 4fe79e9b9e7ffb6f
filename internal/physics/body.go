package physics

import (
	"image/color"
	"math"
)

// Vec2 is a point or velocity in the unit square.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2       { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2       { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2  { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Len() float64          { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dot(o Vec2) float64    { return v.X*o.X + v.Y*o.Y }
func (v Vec2) In(b Bounds) bool      { return v.X >= b.Min && v.X <= b.Max && v.Y >= b.Min && v.Y <= b.Max }
func (v Vec2) ToPixel(w, h int) Vec2 { return Vec2{v.X * float64(w), v.Y * float64(h)} }

// Body is a blob or a particle. Radius is normalized against the shorter
// side of the surface it is drawn on.
type Body struct {
	Position Vec2
	Velocity Vec2
	Radius   float64
	Color    color.NRGBA
}

// Bounds is the square region a body centre may occupy.
type Bounds struct {
	Min, Max float64
}

// BoundsForMargin insets the unit square by margin on every side.
func BoundsForMargin(margin float64) Bounds {
	return Bounds{Min: margin, Max: 1 - margin}
}

// reflectAxis mirrors p back inside [lo, hi] and points v inward.
// Returns true when a bounce happened.
func reflectAxis(p, v *float64, lo, hi float64) bool {
	switch {
	case *p < lo:
		*p = lo + (lo - *p)
		*v = math.Abs(*v)
	case *p > hi:
		*p = hi - (*p - hi)
		*v = -math.Abs(*v)
	default:
		return false
	}
	// overshoot wider than the span
	if *p < lo {
		*p = lo
	} else if *p > hi {
		*p = hi
	}
	return true
}

// Integrate moves b by its velocity and reflects it off bounds.
// Returns true if either axis bounced.
func Integrate(b *Body, bounds Bounds, dt float64) bool {
	b.Position.X += b.Velocity.X * dt
	b.Position.Y += b.Velocity.Y * dt
	bx := reflectAxis(&b.Position.X, &b.Velocity.X, bounds.Min, bounds.Max)
	by := reflectAxis(&b.Position.Y, &b.Velocity.Y, bounds.Min, bounds.Max)
	return bx || by
}

// ClampSpeed limits |v| to max, keeping its direction.
func ClampSpeed(v Vec2, max float64) Vec2 {
	l := v.Len()
	if max <= 0 || l <= max {
		return v
	}
	return v.Scale(max / l)
}
