package sim

import (
	"math"

	"github.com/san-kum/droptower/internal/gravity"
)

// Validate returns the first violated constraint as a *ConfigError.
func (c Config) Validate() error {
	if c.NumParticles < 0 {
		return configErr("num_particles", c.NumParticles, "must be non-negative")
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"tube_width", c.TubeWidth},
		{"tube_height", c.TubeHeight},
		{"particle_radius", c.ParticleRadius},
		{"particle_mass", c.ParticleMass},
		{"dt", c.Dt},
	} {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return configErr(f.name, f.value, "must be positive and finite")
		}
	}
	if c.TubeWidth <= 2*c.ParticleRadius {
		return configErr("tube_width", c.TubeWidth, "must exceed twice the particle radius")
	}
	if c.TubeHeight <= 2*c.ParticleRadius {
		return configErr("tube_height", c.TubeHeight, "must exceed twice the particle radius")
	}
	if math.IsNaN(c.Gravity) || math.IsInf(c.Gravity, 0) {
		return configErr("gravity", c.Gravity, "must be finite")
	}
	if !(c.StartTime >= 0) {
		return configErr("start_time", c.StartTime, "must be non-negative")
	}
	if !(c.SimulationTime > c.StartTime) {
		return configErr("simulation_time", c.SimulationTime, "must exceed start_time")
	}
	if !(c.InitialSpeed >= 0) {
		return configErr("initial_speed", c.InitialSpeed, "must be non-negative")
	}
	if !unit(c.WallRestitution) {
		return configErr("wall_restitution", c.WallRestitution, "must be within [0, 1]")
	}
	if c.PairCollisions && !unit(c.ParticleRestitution) {
		return configErr("particle_restitution", c.ParticleRestitution, "must be within [0, 1]")
	}

	switch c.GravityPolicy {
	case GravityAlways, GravityLoadedOnly:
	default:
		return configErr("gravity_policy", c.GravityPolicy, "must be always or loaded_only")
	}

	switch c.GravityModel {
	case gravity.NameIdeal:
	case gravity.NameDragCoupled:
		for _, f := range []struct {
			name  string
			value float64
		}{
			{"drag_coefficient", c.DragCoefficient},
			{"air_density", c.AirDensity},
			{"chamber_mass", c.ChamberMass},
			{"frontal_area", c.FrontalArea},
		} {
			if !(f.value > 0) || math.IsInf(f.value, 0) {
				return configErr(f.name, f.value, "must be positive for drag_coupled")
			}
		}
	default:
		return configErr("gravity_model", c.GravityModel, "must be ideal or drag_coupled")
	}

	if _, _, err := c.Placement.Range(c.Chamber(), c.ParticleRadius); err != nil {
		return configErr("placement", c.Placement.Kind, err.Error())
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
