package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/droptower/internal/gravity"
	"github.com/san-kum/droptower/internal/particles"
	"github.com/san-kum/droptower/internal/sim"
)

const tol = 1e-9

var _ = Describe("Stepper", func() {
	var cfg sim.Config

	BeforeEach(func() {
		cfg = sim.DefaultConfig()
		cfg.SimulationTime = 3
	})

	Describe("containment", func() {
		DescribeTable("keeps every particle inside the chamber after each step",
			func(mutate func(*sim.Config)) {
				mutate(&cfg)
				s, err := sim.Initialize(cfg, 2024)
				Expect(err).NotTo(HaveOccurred())

				for !s.IsTerminal() {
					_, err := s.Step()
					Expect(err).NotTo(HaveOccurred())
					Expect(s.System().Contained(tol)).To(BeTrue(), "t=%f", s.State().Time)
				}
			},
			Entry("zero-g with pair collisions", func(*sim.Config) {}),
			Entry("gravity always on", func(c *sim.Config) { c.GravityPolicy = sim.GravityAlways }),
			Entry("drag coupled", func(c *sim.Config) {
				c.GravityModel = gravity.NameDragCoupled
				c.GravityPolicy = sim.GravityAlways
			}),
			Entry("fast particles", func(c *sim.Config) { c.InitialSpeed = 500 }),
			Entry("low band start", func(c *sim.Config) { c.Placement = particles.LowQuarter() }),
		)
	})

	Describe("phase", func() {
		It("moves to free fall exactly once and never reverts", func() {
			cfg.Dt = 0.25
			cfg.StartTime = 1
			stepper, err := sim.NewStepper(cfg)
			Expect(err).NotTo(HaveOccurred())

			sys, err := particles.FromParticles(cfg.Chamber(), nil)
			Expect(err).NotTo(HaveOccurred())

			st := sim.InitialState(cfg)
			var phases []gravity.Phase
			for !sim.IsTerminal(st) {
				before := st.Time
				st, err = stepper.Step(sys, st)
				Expect(err).NotTo(HaveOccurred())
				phases = append(phases, st.Phase)
				if before < cfg.StartTime {
					Expect(st.Phase).To(Equal(gravity.Loaded))
				} else {
					Expect(st.Phase).To(Equal(gravity.FreeFall))
				}
			}
			Expect(phases[:4]).To(HaveEach(gravity.Loaded))
			Expect(phases[4:]).To(HaveEach(gravity.FreeFall))
		})
	})

	Describe("energy", func() {
		It("never gains kinetic energy in an idle chamber with lossy walls", func() {
			cfg.Gravity = 0
			cfg.PairCollisions = false
			cfg.WallRestitution = 0.7
			cfg.InitialSpeed = 200
			s, err := sim.Initialize(cfg, 8)
			Expect(err).NotTo(HaveOccurred())

			prev := s.System().KineticEnergy()
			for !s.IsTerminal() {
				_, err := s.Step()
				Expect(err).NotTo(HaveOccurred())
				ke := s.System().KineticEnergy()
				Expect(ke).To(BeNumerically("<=", prev+tol))
				prev = ke
			}
		})
	})

	Describe("pair collisions", func() {
		It("conserves momentum for an isolated equal-mass pair", func() {
			cfg = sim.Config{
				TubeWidth: 40, TubeHeight: 40, ClosedTop: true,
				ParticleRadius: 1, ParticleMass: 100,
				Placement:      particles.LowQuarter(),
				Gravity:        0, StartTime: 0, SimulationTime: 1, Dt: 0.01,
				WallRestitution: 1, PairCollisions: true, ParticleRestitution: 0.2,
				GravityPolicy: sim.GravityAlways, GravityModel: gravity.NameIdeal,
			}
			sys, err := particles.FromParticles(cfg.Chamber(), []particles.Particle{
				{X: 18, Y: 20, VX: 10, VY: 1, Radius: 1, Mass: 100},
				{X: 22, Y: 20.5, VX: -10, VY: -1, Radius: 1, Mass: 100},
			})
			Expect(err).NotTo(HaveOccurred())

			contacts := 0
			s, err := sim.NewWithSystem(cfg, sys, sim.WithObserver(sim.ObserverFunc(
				func(_ *particles.System, tick sim.Tick) { contacts += tick.PairContacts },
			)))
			Expect(err).NotTo(HaveOccurred())

			p0 := s.System().Momentum()
			_, err = s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			p1 := s.System().Momentum()

			Expect(contacts).To(BeNumerically(">", 0))
			Expect(p1.X).To(BeNumerically("~", p0.X, 1e-6))
			Expect(p1.Y).To(BeNumerically("~", p0.Y, 1e-6))
		})
	})

	Describe("drag coupled model", func() {
		It("feels full gravity before release and a growing residual after", func() {
			cfg.GravityModel = gravity.NameDragCoupled
			cfg.StartTime = 0.5
			cfg.Dt = 0.05
			s, err := sim.Initialize(cfg, 1)
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			prevV := 0.0
			for _, tick := range res.Trace {
				if tick.Phase == gravity.Loaded {
					Expect(tick.GEff).To(Equal(cfg.Gravity))
					Expect(tick.ChamberVelocity).To(BeZero())
					continue
				}
				Expect(tick.GEff).To(BeNumerically(">=", 0))
				Expect(tick.GEff).To(BeNumerically("<", cfg.Gravity))
				Expect(tick.ChamberVelocity).To(BeNumerically(">", prevV))
				prevV = tick.ChamberVelocity
			}
		})
	})

	Describe("gravity policy", func() {
		It("integrates g_eff in free fall only under the always policy", func() {
			cfg.GravityModel = gravity.NameDragCoupled
			cfg.StartTime = 0
			cfg.NumParticles = 1
			cfg.PairCollisions = false
			cfg.TubeHeight = 1000
			cfg.Placement = particles.Band(500, 500)

			vy := func(policy sim.GravityPolicy) float64 {
				c := cfg
				c.GravityPolicy = policy
				sys, err := particles.FromParticles(c.Chamber(), []particles.Particle{
					{X: 25, Y: 500, Radius: c.ParticleRadius, Mass: c.ParticleMass},
				})
				Expect(err).NotTo(HaveOccurred())
				s, err := sim.NewWithSystem(c, sys)
				Expect(err).NotTo(HaveOccurred())
				for i := 0; i < 50; i++ {
					_, err := s.Step()
					Expect(err).NotTo(HaveOccurred())
				}
				return s.System().At(0).VY
			}

			Expect(vy(sim.GravityLoadedOnly)).To(BeZero())
			Expect(vy(sim.GravityAlways)).To(BeNumerically(">", 0))
		})
	})

	Describe("termination", func() {
		It("rejects steps once terminal", func() {
			cfg.SimulationTime = 1.05
			s, err := sim.Initialize(cfg, 4)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.IsTerminal()).To(BeTrue())
			Expect(s.State().Time).To(BeNumerically(">", cfg.SimulationTime))

			_, err = s.Step()
			Expect(errors.Is(err, sim.ErrAlreadyTerminated)).To(BeTrue())
			Expect(s.IsTerminal()).To(BeTrue())
		})
	})
})
