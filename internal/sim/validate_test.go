package sim

import (
	"errors"
	"testing"

	"github.com/san-kum/droptower/internal/gravity"
	"github.com/san-kum/droptower/internal/particles"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative count", func(c *Config) { c.NumParticles = -1 }, "num_particles"},
		{"zero width", func(c *Config) { c.TubeWidth = 0 }, "tube_width"},
		{"negative height", func(c *Config) { c.TubeHeight = -5 }, "tube_height"},
		{"zero radius", func(c *Config) { c.ParticleRadius = 0 }, "particle_radius"},
		{"zero mass", func(c *Config) { c.ParticleMass = 0 }, "particle_mass"},
		{"zero dt", func(c *Config) { c.Dt = 0 }, "dt"},
		{"negative dt", func(c *Config) { c.Dt = -0.1 }, "dt"},
		{"width equals diameter", func(c *Config) { c.TubeWidth = 2 * c.ParticleRadius }, "tube_width"},
		{"height below diameter", func(c *Config) { c.TubeHeight = c.ParticleRadius }, "tube_height"},
		{"negative start", func(c *Config) { c.StartTime = -1 }, "start_time"},
		{"end before start", func(c *Config) { c.SimulationTime = c.StartTime }, "simulation_time"},
		{"wall restitution above one", func(c *Config) { c.WallRestitution = 1.1 }, "wall_restitution"},
		{"wall restitution negative", func(c *Config) { c.WallRestitution = -0.1 }, "wall_restitution"},
		{"particle restitution above one", func(c *Config) { c.ParticleRestitution = 2 }, "particle_restitution"},
		{"unknown policy", func(c *Config) { c.GravityPolicy = "sometimes" }, "gravity_policy"},
		{"unknown model", func(c *Config) { c.GravityModel = "magnetic" }, "gravity_model"},
		{"drag without area", func(c *Config) {
			c.GravityModel = gravity.NameDragCoupled
			c.FrontalArea = 0
		}, "frontal_area"},
		{"drag without chamber mass", func(c *Config) {
			c.GravityModel = gravity.NameDragCoupled
			c.ChamberMass = -500
		}, "chamber_mass"},
		{"band outside chamber", func(c *Config) { c.Placement = particles.Band(100, 200) }, "placement"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if ce.Field != tt.field {
				t.Errorf("field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestValidateIgnoresParticleRestitutionWhenPairsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PairCollisions = false
	cfg.ParticleRestitution = 5
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateIgnoresDragParamsForIdeal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GravityModel = gravity.NameIdeal
	cfg.DragCoefficient = 0
	cfg.ChamberMass = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "dt", Value: -0.1, Reason: "must be positive and finite"}
	expected := "sim: invalid config dt=-0.1: must be positive and finite"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestInitializeRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = 0
	if _, err := Initialize(cfg, 1); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
