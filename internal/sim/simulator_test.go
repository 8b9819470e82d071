package sim

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/droptower/internal/gravity"
	"github.com/san-kum/droptower/internal/logging"
	"github.com/san-kum/droptower/internal/particles"
)

func boxConfig() Config {
	return Config{
		NumParticles:    2,
		TubeWidth:       10,
		TubeHeight:      10,
		ClosedTop:       true,
		ParticleRadius:  1,
		ParticleMass:    1,
		Placement:       particles.LowQuarter(),
		Gravity:         0,
		StartTime:       0,
		SimulationTime:  100,
		Dt:              0.1,
		WallRestitution: 1,
		GravityPolicy:   GravityAlways,
		GravityModel:    gravity.NameIdeal,
	}
}

func TestWallOscillation(t *testing.T) {
	cfg := boxConfig()
	sys, err := particles.FromParticles(cfg.Chamber(), []particles.Particle{
		{X: 1, Y: 5, VX: 5, Radius: 1, Mass: 1},
		{X: 9, Y: 5, VX: -5, Radius: 1, Mass: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewWithSystem(cfg, sys)
	if err != nil {
		t.Fatal(err)
	}

	flips := [2]int{}
	last := [2]float64{5, -5}
	for i := 0; i < 400; i++ {
		if _, err := s.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		for k := 0; k < 2; k++ {
			p := s.System().At(k)
			if math.Abs(p.VX) != 5 {
				t.Fatalf("step %d particle %d: |vx| = %f, want 5", i, k, math.Abs(p.VX))
			}
			if p.X < 1-1e-9 || p.X > 9+1e-9 {
				t.Fatalf("step %d particle %d: x = %f outside [1, 9]", i, k, p.X)
			}
			if p.Y != 5 || p.VY != 0 {
				t.Fatalf("step %d particle %d: vertical motion (%f, %f) with zero gravity", i, k, p.Y, p.VY)
			}
			if p.VX != last[k] {
				flips[k]++
				last[k] = p.VX
			}
		}
	}

	// 400 steps of 0.5 cm over an 8 cm span is 25 wall hits each
	for k, n := range flips {
		if n < 20 {
			t.Errorf("particle %d reversed only %d times", k, n)
		}
	}
}

func TestImmediateFreeFallIdealLoadedOnly(t *testing.T) {
	cfg := boxConfig()
	cfg.NumParticles = 1
	cfg.Gravity = 980
	cfg.Dt = 0.01
	cfg.StartTime = 0
	cfg.SimulationTime = 1
	cfg.GravityPolicy = GravityLoadedOnly

	sys, _ := particles.FromParticles(cfg.Chamber(), []particles.Particle{
		{X: 5, Y: 5, VX: 0, VY: 2, Radius: 1, Mass: 1},
	})
	s, err := NewWithSystem(cfg, sys)
	if err != nil {
		t.Fatal(err)
	}

	for !s.IsTerminal() {
		status, err := s.Step()
		if err != nil {
			t.Fatal(err)
		}
		if status.GEff != 0 {
			t.Fatalf("t=%f: g_eff = %f, want 0", status.Time, status.GEff)
		}
		if status.Phase != gravity.FreeFall {
			t.Fatalf("t=%f: phase = %v, want free fall", status.Time, status.Phase)
		}
		if vy := s.System().At(0).VY; vy != 2 {
			t.Fatalf("t=%f: vy = %f, want exactly 2", status.Time, vy)
		}
	}
}

func TestTermination(t *testing.T) {
	cfg := boxConfig()
	cfg.Dt = 0.25
	cfg.StartTime = 0.5
	cfg.SimulationTime = 1

	s, err := Initialize(cfg, 3)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 5; i++ {
		if s.IsTerminal() {
			t.Fatalf("terminal early before step %d", i)
		}
		if _, err := s.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if !s.IsTerminal() || !IsTerminal(s.State()) {
		t.Fatalf("expected terminal after t=%f", s.State().Time)
	}

	before := s.State()
	snap := s.Snapshot()
	if _, err := s.Step(); !errors.Is(err, ErrAlreadyTerminated) {
		t.Fatalf("expected ErrAlreadyTerminated, got %v", err)
	}
	if s.State() != before {
		t.Error("state changed on terminated step")
	}
	for i, p := range s.Snapshot() {
		if p != snap[i] {
			t.Errorf("particle %d moved after termination", i)
		}
	}
	if !s.IsTerminal() {
		t.Error("terminal flag cleared")
	}
}

func TestPhaseTransitionLoggedOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimulationTime = 2

	var buf bytes.Buffer
	s, err := Initialize(cfg, 11, WithLogger(logging.NewLogger("info", &buf)))
	if err != nil {
		t.Fatal(err)
	}

	transitions := 0
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, tick := range res.Trace {
		if tick.Transitioned {
			transitions++
			if tick.Time-cfg.Dt < cfg.StartTime-1e-9 {
				t.Errorf("transitioned at t=%f before start time", tick.Time-cfg.Dt)
			}
		}
	}
	if transitions != 1 {
		t.Errorf("expected 1 transition, got %d", transitions)
	}
	if n := strings.Count(buf.String(), "free fall started"); n != 1 {
		t.Errorf("free fall logged %d times", n)
	}
	if n := strings.Count(buf.String(), "simulation completed"); n != 1 {
		t.Errorf("completion logged %d times", n)
	}
}

func TestRunCancelled(t *testing.T) {
	s, err := Initialize(DefaultConfig(), 1)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Steps != 0 {
		t.Errorf("expected no steps, got %d", res.Steps)
	}
}

func TestRunWithCallbackStops(t *testing.T) {
	s, err := Initialize(DefaultConfig(), 1)
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	err = s.RunWithCallback(context.Background(), func(_ *particles.System, tick Tick) bool {
		calls++
		return tick.Step < 10
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 10 || s.State().Steps != 10 {
		t.Errorf("expected 10 steps, got calls=%d steps=%d", calls, s.State().Steps)
	}
}

type countMetric struct{ n int }

func (c *countMetric) Name() string                   { return "count" }
func (c *countMetric) Observe(*particles.System, Tick) { c.n++ }
func (c *countMetric) Value() float64                  { return float64(c.n) }
func (c *countMetric) Reset()                          { c.n = 0 }

func TestRunReportsMetrics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimulationTime = 1.5

	s, err := Initialize(cfg, 5, WithMetric(&countMetric{}))
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trace) != res.Steps {
		t.Errorf("trace has %d ticks for %d steps", len(res.Trace), res.Steps)
	}
	if got := res.Metrics["count"]; int(got) != res.Steps {
		t.Errorf("metric observed %v steps, want %d", got, res.Steps)
	}
	if len(res.Final) != cfg.NumParticles {
		t.Errorf("expected %d final particles, got %d", cfg.NumParticles, len(res.Final))
	}
}

func TestInitializeDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimulationTime = 1.2

	run := func() []particles.Particle {
		s, err := Initialize(cfg, 99)
		if err != nil {
			t.Fatal(err)
		}
		res, err := s.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res.Final
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("particle %d diverged between identical seeds", i)
		}
	}
}

func TestNewWithSystemChamberMismatch(t *testing.T) {
	cfg := boxConfig()
	sys, _ := particles.FromParticles(particles.Chamber{Width: 20, Height: 10, ClosedTop: true}, nil)
	if _, err := NewWithSystem(cfg, sys); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestEnsemble(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumParticles = 10
	cfg.SimulationTime = 1.1

	e := NewEnsemble(cfg, 4, 100)
	e.NewMetrics = func() []Metric { return []Metric{&countMetric{}} }

	results, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Seed != 100+uint64(i) {
			t.Errorf("result %d has seed %d", i, r.Seed)
		}
		if int(r.Metrics["count"]) != r.Steps {
			t.Errorf("result %d: metric saw %v of %d steps", i, r.Metrics["count"], r.Steps)
		}
	}
	if results[0].Final[0] == results[1].Final[0] {
		t.Error("different seeds produced identical particles")
	}
}

func TestEnsembleInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = -1
	if _, err := NewEnsemble(cfg, 2, 0).Run(context.Background()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestEnsembleNegativeRuns(t *testing.T) {
	results, err := NewEnsemble(DefaultConfig(), -3, 0).Run(context.Background())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Field != "num_runs" {
		t.Errorf("expected num_runs config error, got %v", err)
	}
	if results != nil {
		t.Errorf("expected no results, got %d", len(results))
	}
}
