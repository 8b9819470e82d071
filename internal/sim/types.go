package sim

import (
	"github.com/san-kum/droptower/internal/gravity"
	"github.com/san-kum/droptower/internal/particles"
)

// GravityPolicy decides when g_eff is integrated into particle velocities.
type GravityPolicy string

const (
	// GravityAlways integrates g_eff on every tick.
	GravityAlways GravityPolicy = "always"
	// GravityLoadedOnly integrates g_eff only while the chamber is held.
	GravityLoadedOnly GravityPolicy = "loaded_only"
)

// Applies reports whether gravity is integrated during phase.
func (p GravityPolicy) Applies(phase gravity.Phase) bool {
	if p == GravityLoadedOnly {
		return phase == gravity.Loaded
	}
	return true
}

// Config holds the immutable parameters of one simulation. Lengths are in
// cm, masses in g, times in s.
type Config struct {
	NumParticles   int
	TubeWidth      float64
	TubeHeight     float64
	ClosedTop      bool
	ParticleRadius float64
	ParticleMass   float64
	InitialSpeed   float64
	Placement      particles.Placement

	Gravity        float64
	StartTime      float64
	SimulationTime float64
	Dt             float64

	WallRestitution float64
	// PairCollisions enables particle-particle resolution with
	// ParticleRestitution.
	PairCollisions      bool
	ParticleRestitution float64

	GravityPolicy GravityPolicy
	GravityModel  string

	// Drag parameters, required when GravityModel is drag_coupled.
	DragCoefficient float64
	AirDensity      float64
	ChamberMass     float64
	FrontalArea     float64
}

// DefaultConfig is the zero-g collision setup: a 50x25 cm chamber
// released after one second.
func DefaultConfig() Config {
	return Config{
		NumParticles:        50,
		TubeWidth:           50,
		TubeHeight:          25,
		ClosedTop:           true,
		ParticleRadius:      0.9,
		ParticleMass:        100,
		InitialSpeed:        5,
		Placement:           particles.NearTop(particles.DefaultTopDepth),
		Gravity:             980,
		StartTime:           1,
		SimulationTime:      10,
		Dt:                  0.01,
		WallRestitution:     0.8,
		PairCollisions:      true,
		ParticleRestitution: 0.2,
		GravityPolicy:       GravityLoadedOnly,
		GravityModel:        gravity.NameIdeal,
		DragCoefficient:     0.5,
		AirDensity:          0.0012,
		ChamberMass:         500,
		FrontalArea:         50,
	}
}

// Chamber returns the container described by c.
func (c Config) Chamber() particles.Chamber {
	return particles.Chamber{Width: c.TubeWidth, Height: c.TubeHeight, ClosedTop: c.ClosedTop}
}

// GravityParams returns the inputs for gravity.Parse.
func (c Config) GravityParams() gravity.Params {
	return gravity.Params{
		Gravity:         c.Gravity,
		DragCoefficient: c.DragCoefficient,
		AirDensity:      c.AirDensity,
		ChamberMass:     c.ChamberMass,
		FrontalArea:     c.FrontalArea,
	}
}

// Steps is the number of ticks a full run takes.
func (c Config) Steps() int {
	return int(c.SimulationTime/c.Dt) + 1
}

// State is the mutable per-tick record. It is passed into and returned from
// Stepper.Step.
type State struct {
	Time            float64
	Phase           gravity.Phase
	ChamberVelocity float64
	GEff            float64
	Steps           int
	Terminal        bool
}

// InitialState is the state before the first tick.
func InitialState(cfg Config) State {
	return State{Phase: gravity.Loaded, GEff: cfg.Gravity}
}

// IsTerminal reports whether st has passed the simulation time.
func IsTerminal(st State) bool { return st.Terminal }

// Status is the display view of a State.
type Status struct {
	Time            float64
	Phase           gravity.Phase
	GEff            float64
	ChamberVelocity float64
}

// StatusOf projects st for a status line.
func StatusOf(st State) Status {
	return Status{Time: st.Time, Phase: st.Phase, GEff: st.GEff, ChamberVelocity: st.ChamberVelocity}
}

// Tick describes one completed step.
type Tick struct {
	Status
	Step         int
	Transitioned bool
	WallContacts int
	PairContacts int
}

type Observer interface {
	OnStep(sys *particles.System, tick Tick)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(sys *particles.System, tick Tick)

func (f ObserverFunc) OnStep(sys *particles.System, tick Tick) { f(sys, tick) }

type Metric interface {
	Name() string
	Observe(sys *particles.System, tick Tick)
	Value() float64
	Reset()
}

// Result collects a headless run.
type Result struct {
	Seed    uint64
	Trace   []Tick
	Final   []particles.Particle
	Metrics map[string]float64
	Steps   int
}
