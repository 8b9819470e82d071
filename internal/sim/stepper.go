package sim

import (
	"log/slog"

	"github.com/san-kum/droptower/internal/collision"
	"github.com/san-kum/droptower/internal/gravity"
	"github.com/san-kum/droptower/internal/logging"
	"github.com/san-kum/droptower/internal/particles"
)

type options struct {
	logger    *slog.Logger
	observers []Observer
	metrics   []Metric
}

type Option func(*options)

// WithLogger routes phase and completion events to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver registers o to run after every completed step.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// WithMetric registers m as an observer whose value is reported by Run.
func WithMetric(m Metric) Option {
	return func(o *options) { o.metrics = append(o.metrics, m) }
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Stepper advances a particle system by one tick.
type Stepper struct {
	cfg   Config
	model gravity.Model
	opts  options
}

// NewStepper validates cfg and resolves its gravity model.
func NewStepper(cfg Config, opts ...Option) (*Stepper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model, err := gravity.Parse(cfg.GravityModel, cfg.GravityParams())
	if err != nil {
		return nil, configErr("gravity_model", cfg.GravityModel, err.Error())
	}
	return &Stepper{cfg: cfg, model: model, opts: buildOptions(opts)}, nil
}

func (s *Stepper) Config() Config       { return s.cfg }
func (s *Stepper) Model() gravity.Model { return s.model }

// Step runs one tick: phase check, g_eff evaluation, integration, wall and
// pair resolution, time advance and termination check. sys is mutated in
// place and the next state is returned. A terminal state yields
// ErrAlreadyTerminated with sys and st unchanged.
func (s *Stepper) Step(sys *particles.System, st State) (State, error) {
	next, _, err := s.StepTick(sys, st)
	return next, err
}

// StepTick is Step that also reports what happened during the tick.
func (s *Stepper) StepTick(sys *particles.System, st State) (State, Tick, error) {
	if st.Terminal {
		return st, Tick{}, ErrAlreadyTerminated
	}
	cfg := s.cfg

	phase, transitioned := st.Phase.Advance(st.Time, cfg.StartTime)
	if transitioned {
		s.opts.logger.Info("free fall started", "t", st.Time, "model", s.model.Name())
	}
	st.Phase = phase

	gEff, v := s.model.OnTick(st.Phase, st.ChamberVelocity, cfg.Dt)
	st.GEff = gEff
	st.ChamberVelocity = v

	sys.Integrate(cfg.Dt, gEff, cfg.GravityPolicy.Applies(st.Phase))

	walls := collision.ResolveWalls(sys, cfg.WallRestitution)
	pairs := 0
	if cfg.PairCollisions {
		pairs = collision.ResolvePairs(sys, cfg.ParticleRestitution)
	}

	st.Time += cfg.Dt
	st.Steps++

	tick := Tick{
		Status:       StatusOf(st),
		Step:         st.Steps,
		Transitioned: transitioned,
		WallContacts: walls,
		PairContacts: pairs,
	}
	s.opts.logger.Debug("step", "n", st.Steps, "t", st.Time, "g_eff", gEff, "walls", walls, "pairs", pairs)

	if st.Time > cfg.SimulationTime {
		st.Terminal = true
		s.opts.logger.Info("simulation completed", "t", st.Time, "steps", st.Steps)
	}

	for _, obs := range s.opts.observers {
		obs.OnStep(sys, tick)
	}
	for _, m := range s.opts.metrics {
		m.Observe(sys, tick)
	}
	return st, tick, nil
}
