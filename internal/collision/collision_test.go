package collision

import (
	"math"
	"testing"

	"github.com/san-kum/droptower/internal/particles"
)

func mustSystem(t *testing.T, c particles.Chamber, ps ...particles.Particle) *particles.System {
	t.Helper()
	sys, err := particles.FromParticles(c, ps)
	if err != nil {
		t.Fatalf("system: %v", err)
	}
	return sys
}

func TestResolveWalls(t *testing.T) {
	closed := particles.Chamber{Width: 10, Height: 10, ClosedTop: true}
	open := particles.Chamber{Width: 10, Height: 10}

	tests := []struct {
		name        string
		chamber     particles.Chamber
		in          particles.Particle
		restitution float64
		want        particles.Particle
		contacts    int
	}{
		{
			name:        "left",
			chamber:     closed,
			in:          particles.Particle{X: 0.5, Y: 5, VX: -4, VY: 0, Radius: 1, Mass: 1},
			restitution: 0.5,
			want:        particles.Particle{X: 1, Y: 5, VX: 2, VY: 0, Radius: 1, Mass: 1},
			contacts:    1,
		},
		{
			name:        "right",
			chamber:     closed,
			in:          particles.Particle{X: 9.5, Y: 5, VX: 4, Radius: 1, Mass: 1},
			restitution: 1,
			want:        particles.Particle{X: 9, Y: 5, VX: -4, Radius: 1, Mass: 1},
			contacts:    1,
		},
		{
			name:        "bottom inelastic",
			chamber:     closed,
			in:          particles.Particle{X: 5, Y: 0.2, VY: 7, Radius: 1, Mass: 1},
			restitution: 0,
			want:        particles.Particle{X: 5, Y: 1, VY: 0, Radius: 1, Mass: 1},
			contacts:    1,
		},
		{
			name:        "top closed",
			chamber:     closed,
			in:          particles.Particle{X: 5, Y: 9.5, VY: -3, Radius: 1, Mass: 1},
			restitution: 1,
			want:        particles.Particle{X: 5, Y: 9, VY: 3, Radius: 1, Mass: 1},
			contacts:    1,
		},
		{
			name:        "top open",
			chamber:     open,
			in:          particles.Particle{X: 5, Y: 9.5, VY: -3, Radius: 1, Mass: 1},
			restitution: 1,
			want:        particles.Particle{X: 5, Y: 9.5, VY: -3, Radius: 1, Mass: 1},
			contacts:    0,
		},
		{
			name:        "corner",
			chamber:     closed,
			in:          particles.Particle{X: 0.1, Y: 0.1, VX: -2, VY: 2, Radius: 1, Mass: 1},
			restitution: 1,
			want:        particles.Particle{X: 1, Y: 1, VX: 2, VY: -2, Radius: 1, Mass: 1},
			contacts:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := mustSystem(t, tt.chamber, tt.in)
			got := ResolveWalls(sys, tt.restitution)
			if got != tt.contacts {
				t.Errorf("contacts = %d, want %d", got, tt.contacts)
			}
			// -0 and 0 compare equal
			if p := sys.At(0); p != tt.want {
				t.Errorf("got %+v, want %+v", p, tt.want)
			}
		})
	}
}

func TestResolveWallsEnergyNonIncreasing(t *testing.T) {
	c := particles.Chamber{Width: 10, Height: 10, ClosedTop: true}
	sys := mustSystem(t, c,
		particles.Particle{X: 0.5, Y: 0.5, VX: -3, VY: 4, Radius: 1, Mass: 2},
		particles.Particle{X: 9.7, Y: 9.9, VX: 6, VY: -1, Radius: 1, Mass: 1},
		particles.Particle{X: 5, Y: 5, VX: 1, VY: 1, Radius: 1, Mass: 1},
	)

	before := sys.KineticEnergy()
	ResolveWalls(sys, 0.8)
	after := sys.KineticEnergy()
	if after > before {
		t.Errorf("kinetic energy rose from %f to %f", before, after)
	}
	if !sys.Contained(1e-12) {
		t.Error("particles left the chamber after wall resolution")
	}
}

func TestResolvePairsHeadOn(t *testing.T) {
	c := particles.Chamber{Width: 20, Height: 20}

	tests := []struct {
		name        string
		restitution float64
		wantVI      float64
		wantVJ      float64
	}{
		{"elastic swaps velocities", 1, -1, 1},
		{"inelastic equalises", 0, 0, 0},
		{"partial", 0.2, -0.2, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := mustSystem(t, c,
				particles.Particle{X: 9.5, Y: 10, VX: 1, Radius: 1, Mass: 1},
				particles.Particle{X: 10.5, Y: 10, VX: -1, Radius: 1, Mass: 1},
			)
			if n := ResolvePairs(sys, tt.restitution); n != 1 {
				t.Fatalf("expected 1 resolved pair, got %d", n)
			}
			if got := sys.At(0).VX; math.Abs(got-tt.wantVI) > 1e-12 {
				t.Errorf("vi = %f, want %f", got, tt.wantVI)
			}
			if got := sys.At(1).VX; math.Abs(got-tt.wantVJ) > 1e-12 {
				t.Errorf("vj = %f, want %f", got, tt.wantVJ)
			}
		})
	}
}

func TestResolvePairsMomentumConserved(t *testing.T) {
	c := particles.Chamber{Width: 20, Height: 20}
	sys := mustSystem(t, c,
		particles.Particle{X: 10, Y: 10, VX: 3, VY: 2, Radius: 1, Mass: 100},
		particles.Particle{X: 11.2, Y: 10.9, VX: -1, VY: -4, Radius: 1, Mass: 100},
	)

	before := sys.Momentum()
	if n := ResolvePairs(sys, 0.2); n != 1 {
		t.Fatalf("expected the pair to resolve, got %d", n)
	}
	after := sys.Momentum()

	if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
		t.Errorf("momentum changed: %v -> %v", before, after)
	}
}

func TestResolvePairsSkipsSeparatingAndCoincident(t *testing.T) {
	c := particles.Chamber{Width: 20, Height: 20}

	separating := mustSystem(t, c,
		particles.Particle{X: 9.5, Y: 10, VX: -1, Radius: 1, Mass: 1},
		particles.Particle{X: 10.5, Y: 10, VX: 1, Radius: 1, Mass: 1},
	)
	if n := ResolvePairs(separating, 1); n != 0 {
		t.Errorf("separating pair resolved %d times", n)
	}
	if separating.At(0).VX != -1 || separating.At(1).VX != 1 {
		t.Error("separating velocities modified")
	}

	coincident := mustSystem(t, c,
		particles.Particle{X: 10, Y: 10, VX: 1, Radius: 1, Mass: 1},
		particles.Particle{X: 10, Y: 10, VX: -1, Radius: 1, Mass: 1},
	)
	if n := ResolvePairs(coincident, 1); n != 0 {
		t.Errorf("coincident pair resolved %d times", n)
	}
	for i := 0; i < coincident.Len(); i++ {
		p := coincident.At(i)
		if math.IsNaN(p.VX) || math.IsNaN(p.VY) {
			t.Fatalf("particle %d velocity became NaN", i)
		}
	}

	apart := mustSystem(t, c,
		particles.Particle{X: 5, Y: 10, VX: 1, Radius: 1, Mass: 1},
		particles.Particle{X: 15, Y: 10, VX: -1, Radius: 1, Mass: 1},
	)
	if n := ResolvePairs(apart, 1); n != 0 {
		t.Errorf("distant pair resolved %d times", n)
	}
}
