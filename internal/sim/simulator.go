package sim

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/san-kum/droptower/internal/particles"
)

// Simulation bundles a particle system with its state for drivers that do
// not want to thread State themselves.
type Simulation struct {
	stepper *Stepper
	system  *particles.System
	state   State
	seed    uint64
}

// NewRand returns the generator Initialize uses for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Initialize validates cfg and scatters the particles from a generator seeded
// with seed. Identical (cfg, seed) pairs produce identical runs.
func Initialize(cfg Config, seed uint64, opts ...Option) (*Simulation, error) {
	stepper, err := NewStepper(cfg, opts...)
	if err != nil {
		return nil, err
	}
	sys, err := particles.New(cfg.NumParticles, cfg.Chamber(), cfg.Placement,
		cfg.InitialSpeed, cfg.ParticleRadius, cfg.ParticleMass, NewRand(seed))
	if err != nil {
		return nil, fmt.Errorf("sim: initialize particles: %w", err)
	}
	return &Simulation{stepper: stepper, system: sys, state: InitialState(cfg), seed: seed}, nil
}

// NewWithSystem wraps an explicitly built particle system. The system's
// chamber must match cfg.
func NewWithSystem(cfg Config, sys *particles.System, opts ...Option) (*Simulation, error) {
	stepper, err := NewStepper(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if sys.Chamber() != cfg.Chamber() {
		return nil, configErr("tube", sys.Chamber(), "particle system chamber differs from config")
	}
	return &Simulation{stepper: stepper, system: sys, state: InitialState(cfg)}, nil
}

// Step advances one tick and returns the new status.
func (s *Simulation) Step() (Status, error) {
	next, err := s.stepper.Step(s.system, s.state)
	if err != nil {
		return StatusOf(s.state), err
	}
	s.state = next
	return StatusOf(next), nil
}

func (s *Simulation) State() State               { return s.state }
func (s *Simulation) Status() Status             { return StatusOf(s.state) }
func (s *Simulation) System() *particles.System  { return s.system }
func (s *Simulation) Snapshot() []particles.Vec2 { return s.system.Snapshot() }
func (s *Simulation) IsTerminal() bool           { return s.state.Terminal }
func (s *Simulation) Config() Config             { return s.stepper.cfg }
func (s *Simulation) Seed() uint64               { return s.seed }

// Run steps until the simulation terminates or ctx is done. The trace holds
// one Tick per completed step.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		Seed:    s.seed,
		Trace:   make([]Tick, 0, s.stepper.cfg.Steps()),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.stepper.opts.metrics {
		m.Reset()
	}

	err := s.RunWithCallback(ctx, func(_ *particles.System, tick Tick) bool {
		result.Trace = append(result.Trace, tick)
		return true
	})

	result.Steps = s.state.Steps
	result.Final = s.system.Particles()
	for _, m := range s.stepper.opts.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, err
}

// RunWithCallback steps until termination, cancellation, or callback
// returning false.
func (s *Simulation) RunWithCallback(ctx context.Context, callback func(*particles.System, Tick) bool) error {
	for !s.state.Terminal {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		next, tick, err := s.stepper.StepTick(s.system, s.state)
		if err != nil {
			return err
		}
		s.state = next

		if !callback(s.system, tick) {
			return nil
		}
	}
	return nil
}
