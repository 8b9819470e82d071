package particles

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	// ErrChamberTooSmall indicates a chamber that cannot hold a particle
	// without an immediate wall violation.
	ErrChamberTooSmall = errors.New("particles: chamber too small for particle radius")

	// ErrInvalidParticle indicates a non-positive radius or mass.
	ErrInvalidParticle = errors.New("particles: radius and mass must be positive")
)

// Vec2 is a position in chamber coordinates (cm).
type Vec2 struct {
	X, Y float64
}

// Particle is a single sphere. Velocities are in cm/s with VY > 0 pointing down.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Radius float64
	Mass   float64
}

// Chamber is the rectangular container. ClosedTop enables the ceiling wall.
type Chamber struct {
	Width     float64
	Height    float64
	ClosedTop bool
}

// Fits reports whether a particle of radius r can sit inside c.
func (c Chamber) Fits(r float64) bool {
	return c.Width > 2*r && c.Height > 2*r
}

// System owns the particle cloud. Its size is fixed at construction.
type System struct {
	chamber Chamber
	p       []Particle
}

// New scatters n particles of uniform radius and mass. Horizontal positions
// are uniform across the chamber, vertical positions follow placement, and
// both velocity components are uniform in [-v0, v0].
func New(n int, chamber Chamber, placement Placement, v0, radius, mass float64, rng *rand.Rand) (*System, error) {
	if n < 0 {
		return nil, fmt.Errorf("particles: negative particle count %d", n)
	}
	if radius <= 0 || mass <= 0 {
		return nil, ErrInvalidParticle
	}
	if !chamber.Fits(radius) {
		return nil, fmt.Errorf("%w: %gx%g with radius %g", ErrChamberTooSmall, chamber.Width, chamber.Height, radius)
	}
	lo, hi, err := placement.Range(chamber, radius)
	if err != nil {
		return nil, err
	}

	s := &System{chamber: chamber, p: make([]Particle, n)}
	for i := range s.p {
		s.p[i] = Particle{
			X:      uniform(rng, radius, chamber.Width-radius),
			Y:      uniform(rng, lo, hi),
			VX:     uniform(rng, -v0, v0),
			VY:     uniform(rng, -v0, v0),
			Radius: radius,
			Mass:   mass,
		}
	}
	return s, nil
}

// FromParticles builds a system from explicit particles. The slice is copied.
func FromParticles(chamber Chamber, ps []Particle) (*System, error) {
	for i, p := range ps {
		if p.Radius <= 0 || p.Mass <= 0 {
			return nil, fmt.Errorf("%w: particle %d", ErrInvalidParticle, i)
		}
		if !chamber.Fits(p.Radius) {
			return nil, fmt.Errorf("%w: particle %d radius %g", ErrChamberTooSmall, i, p.Radius)
		}
	}
	s := &System{chamber: chamber, p: make([]Particle, len(ps))}
	copy(s.p, ps)
	return s, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func (s *System) Len() int          { return len(s.p) }
func (s *System) Chamber() Chamber  { return s.chamber }
func (s *System) At(i int) Particle { return s.p[i] }

// Ref returns a pointer into the backing slice for in-place resolvers.
func (s *System) Ref(i int) *Particle { return &s.p[i] }

// Particles returns a copy of every particle.
func (s *System) Particles() []Particle {
	out := make([]Particle, len(s.p))
	copy(out, s.p)
	return out
}

// Integrate advances every particle by dt. When gravityApplies is set the
// vertical velocity first picks up gEff*dt.
func (s *System) Integrate(dt, gEff float64, gravityApplies bool) {
	for i := range s.p {
		p := &s.p[i]
		if gravityApplies {
			p.VY += gEff * dt
		}
		p.X += p.VX * dt
		p.Y -= p.VY * dt
	}
}

// Snapshot returns the current positions for rendering.
func (s *System) Snapshot() []Vec2 {
	out := make([]Vec2, len(s.p))
	for i, p := range s.p {
		out[i] = Vec2{X: p.X, Y: p.Y}
	}
	return out
}

// KineticEnergy returns the total kinetic energy (g·cm²/s² for cgs inputs).
func (s *System) KineticEnergy() float64 {
	e := 0.0
	for _, p := range s.p {
		e += 0.5 * p.Mass * (p.VX*p.VX + p.VY*p.VY)
	}
	return e
}

// Momentum returns the total linear momentum.
func (s *System) Momentum() Vec2 {
	var m Vec2
	for _, p := range s.p {
		m.X += p.Mass * p.VX
		m.Y += p.Mass * p.VY
	}
	return m
}

// MeanHeight returns the average Y, or 0 for an empty system.
func (s *System) MeanHeight() float64 {
	if len(s.p) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range s.p {
		sum += p.Y
	}
	return sum / float64(len(s.p))
}

// Contained reports whether every particle lies inside the chamber within tol.
// The ceiling is only checked when the chamber is closed on top.
func (s *System) Contained(tol float64) bool {
	for _, p := range s.p {
		if p.X < p.Radius-tol || p.X > s.chamber.Width-p.Radius+tol {
			return false
		}
		if p.Y < p.Radius-tol {
			return false
		}
		if s.chamber.ClosedTop && p.Y > s.chamber.Height-p.Radius+tol {
			return false
		}
	}
	return true
}
