package config

import (
	"sort"

	"github.com/san-kum/droptower/internal/gravity"
	"github.com/san-kum/droptower/internal/particles"
	"github.com/san-kum/droptower/internal/sim"
)

func preset(mutate func(*sim.Config)) sim.Config {
	cfg := sim.DefaultConfig()
	mutate(&cfg)
	return cfg
}

// open-top tubes: particles rest in the lower quarter and
// bounce under full gravity for the whole run
func openTube(c *sim.Config) {
	c.ClosedTop = false
	c.Placement = particles.LowQuarter()
	c.Gravity = 981
	c.StartTime = 2
	c.Dt = 0.05
	c.PairCollisions = false
	c.GravityPolicy = sim.GravityAlways
}

var Presets = map[string]sim.Config{
	"tall-tube": preset(func(c *sim.Config) {
		openTube(c)
		c.TubeWidth, c.TubeHeight = 25, 50
		c.ParticleRadius = 0.5
	}),
	"drag-low-band": preset(func(c *sim.Config) {
		openTube(c)
		c.GravityModel = gravity.NameDragCoupled
	}),
	"drag-long": preset(func(c *sim.Config) {
		openTube(c)
		c.GravityModel = gravity.NameDragCoupled
		c.SimulationTime = 200
	}),
	"zero-g-top": preset(func(c *sim.Config) {
		c.PairCollisions = false
	}),
	"zero-g-collide": sim.DefaultConfig(),
}

// GetPreset returns the named preset and whether it exists.
func GetPreset(name string) (sim.Config, bool) {
	cfg, ok := Presets[name]
	return cfg, ok
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
