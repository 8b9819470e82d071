// Package metrics provides sim.Metric implementations summarising a run.
package metrics

import "github.com/san-kum/droptower/internal/sim"

// ContainmentTolerance is the slack, in cm, allowed by the containment check.
const ContainmentTolerance = 1e-9

// Default returns a fresh instance of every metric. Metrics hold per-run
// state, so each run needs its own set.
func Default() []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewEnergyLoss(),
		NewMinGEff(),
		NewMaxGEff(),
		NewMeanHeight(),
		NewContacts(WallContacts),
		NewContacts(PairContacts),
		NewContainment(ContainmentTolerance),
	}
}

// Options wraps metrics as sim options.
func Options(ms []sim.Metric) []sim.Option {
	opts := make([]sim.Option, len(ms))
	for i, m := range ms {
		opts[i] = sim.WithMetric(m)
	}
	return opts
}
