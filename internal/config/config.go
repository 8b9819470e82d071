package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/droptower/internal/gravity"
	"github.com/san-kum/droptower/internal/particles"
	"github.com/san-kum/droptower/internal/sim"
)

// ErrUnknownFormat is returned for config files that are neither YAML nor TOML.
var ErrUnknownFormat = errors.New("config: unknown file format")

const (
	DefaultSeed     = 42
	DefaultLogLevel = "info"
	DefaultDataDir  = ".droptower"
)

// Config is the on-disk form of a run. Field names follow the sim.Config
// validation names so errors point at the right key.
type Config struct {
	Seed     uint64 `yaml:"seed" toml:"seed"`
	LogLevel string `yaml:"log_level" toml:"log_level"`

	Tube      TubeConfig      `yaml:"tube" toml:"tube"`
	Particles ParticleConfig  `yaml:"particles" toml:"particles"`
	Timing    TimingConfig    `yaml:"timing" toml:"timing"`
	Gravity   GravityConfig   `yaml:"gravity" toml:"gravity"`
	Collision CollisionConfig `yaml:"collision" toml:"collision"`
}

type TubeConfig struct {
	Width     float64 `yaml:"width" toml:"width"`
	Height    float64 `yaml:"height" toml:"height"`
	ClosedTop bool    `yaml:"closed_top" toml:"closed_top"`
}

type ParticleConfig struct {
	Count        int             `yaml:"count" toml:"count"`
	Radius       float64         `yaml:"radius" toml:"radius"`
	Mass         float64         `yaml:"mass" toml:"mass"`
	InitialSpeed float64         `yaml:"initial_speed" toml:"initial_speed"`
	Placement    PlacementConfig `yaml:"placement" toml:"placement"`
}

type PlacementConfig struct {
	Kind  string  `yaml:"kind" toml:"kind"`
	Depth float64 `yaml:"depth" toml:"depth"`
	YMin  float64 `yaml:"y_min" toml:"y_min"`
	YMax  float64 `yaml:"y_max" toml:"y_max"`
}

type TimingConfig struct {
	StartTime      float64 `yaml:"start_time" toml:"start_time"`
	SimulationTime float64 `yaml:"simulation_time" toml:"simulation_time"`
	Dt             float64 `yaml:"dt" toml:"dt"`
}

type GravityConfig struct {
	Acceleration    float64 `yaml:"acceleration" toml:"acceleration"`
	Model           string  `yaml:"model" toml:"model"`
	Policy          string  `yaml:"policy" toml:"policy"`
	DragCoefficient float64 `yaml:"drag_coefficient" toml:"drag_coefficient"`
	AirDensity      float64 `yaml:"air_density" toml:"air_density"`
	ChamberMass     float64 `yaml:"chamber_mass" toml:"chamber_mass"`
	FrontalArea     float64 `yaml:"frontal_area" toml:"frontal_area"`
}

type CollisionConfig struct {
	WallRestitution     float64 `yaml:"wall_restitution" toml:"wall_restitution"`
	PairCollisions      bool    `yaml:"pair_collisions" toml:"pair_collisions"`
	ParticleRestitution float64 `yaml:"particle_restitution" toml:"particle_restitution"`
}

// DefaultConfig is the file form of sim.DefaultConfig.
func DefaultConfig() *Config {
	cfg := FromSim(sim.DefaultConfig())
	cfg.Seed = DefaultSeed
	cfg.LogLevel = DefaultLogLevel
	return cfg
}

// FromSim converts a validated simulation config to its file form.
func FromSim(sc sim.Config) *Config {
	cfg := &Config{
		Tube: TubeConfig{Width: sc.TubeWidth, Height: sc.TubeHeight, ClosedTop: sc.ClosedTop},
		Particles: ParticleConfig{
			Count:        sc.NumParticles,
			Radius:       sc.ParticleRadius,
			Mass:         sc.ParticleMass,
			InitialSpeed: sc.InitialSpeed,
			Placement: PlacementConfig{
				Kind:  string(sc.Placement.Kind),
				Depth: sc.Placement.Depth,
				YMin:  sc.Placement.YMin,
				YMax:  sc.Placement.YMax,
			},
		},
		Timing: TimingConfig{StartTime: sc.StartTime, SimulationTime: sc.SimulationTime, Dt: sc.Dt},
		Gravity: GravityConfig{
			Acceleration:    sc.Gravity,
			Model:           sc.GravityModel,
			Policy:          string(sc.GravityPolicy),
			DragCoefficient: sc.DragCoefficient,
			AirDensity:      sc.AirDensity,
			ChamberMass:     sc.ChamberMass,
			FrontalArea:     sc.FrontalArea,
		},
		Collision: CollisionConfig{
			WallRestitution:     sc.WallRestitution,
			PairCollisions:      sc.PairCollisions,
			ParticleRestitution: sc.ParticleRestitution,
		},
	}
	return cfg
}

// Sim converts c to a simulation config and validates it.
func (c *Config) Sim() (sim.Config, error) {
	sc := sim.Config{
		NumParticles:        c.Particles.Count,
		TubeWidth:           c.Tube.Width,
		TubeHeight:          c.Tube.Height,
		ClosedTop:           c.Tube.ClosedTop,
		ParticleRadius:      c.Particles.Radius,
		ParticleMass:        c.Particles.Mass,
		InitialSpeed:        c.Particles.InitialSpeed,
		Placement:           c.Particles.Placement.placement(),
		Gravity:             c.Gravity.Acceleration,
		StartTime:           c.Timing.StartTime,
		SimulationTime:      c.Timing.SimulationTime,
		Dt:                  c.Timing.Dt,
		WallRestitution:     c.Collision.WallRestitution,
		PairCollisions:      c.Collision.PairCollisions,
		ParticleRestitution: c.Collision.ParticleRestitution,
		GravityPolicy:       sim.GravityPolicy(c.Gravity.Policy),
		GravityModel:        c.Gravity.Model,
		DragCoefficient:     c.Gravity.DragCoefficient,
		AirDensity:          c.Gravity.AirDensity,
		ChamberMass:         c.Gravity.ChamberMass,
		FrontalArea:         c.Gravity.FrontalArea,
	}
	if sc.GravityModel == "" {
		sc.GravityModel = gravity.NameIdeal
	}
	if sc.GravityPolicy == "" {
		sc.GravityPolicy = sim.GravityLoadedOnly
	}
	if err := sc.Validate(); err != nil {
		return sim.Config{}, err
	}
	return sc, nil
}

func (p PlacementConfig) placement() particles.Placement {
	switch particles.PlacementKind(p.Kind) {
	case particles.PlaceLowQuarter:
		return particles.LowQuarter()
	case particles.PlaceBand:
		return particles.Band(p.YMin, p.YMax)
	case particles.PlaceNearTop, "":
		return particles.NearTop(p.Depth)
	default:
		// left for Validate to reject
		return particles.Placement{Kind: particles.PlacementKind(p.Kind)}
	}
}

// Load reads a YAML or TOML file over the defaults, so omitted keys keep
// their default values.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver decodes path on top of a copy of base.
func LoadOver(path string, base *Config) (*Config, error) {
	cfg := *base
	switch ext(path) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	return &cfg, nil
}

// Save writes cfg in the format implied by the extension of path.
func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	switch ext(path) {
	case ".toml":
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(cfg)
		data = []byte(sb.String())
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
