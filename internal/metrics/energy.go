package metrics

import (
	"github.com/san-kum/droptower/internal/particles"
	"github.com/san-kum/droptower/internal/sim"
)

// KineticEnergy averages the total kinetic energy of the system over all
// observed steps.
type KineticEnergy struct {
	name    string
	samples int
	total   float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "mean_kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(sys *particles.System, _ sim.Tick) {
	k.total += sys.KineticEnergy()
	k.samples++
}

func (k *KineticEnergy) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.total / float64(k.samples)
}

func (k *KineticEnergy) Reset() {
	k.total = 0
	k.samples = 0
}

// EnergyLoss is the first observed kinetic energy minus the last observed
// one. Gravity can add energy, so the value may be negative.
type EnergyLoss struct {
	name    string
	initial float64
	current float64
	samples int
}

func NewEnergyLoss() *EnergyLoss {
	return &EnergyLoss{name: "energy_loss"}
}

func (e *EnergyLoss) Name() string { return e.name }

func (e *EnergyLoss) Observe(sys *particles.System, _ sim.Tick) {
	ke := sys.KineticEnergy()
	if e.samples == 0 {
		e.initial = ke
	}
	e.current = ke
	e.samples++
}

func (e *EnergyLoss) Value() float64 {
	return e.initial - e.current
}

func (e *EnergyLoss) Reset() {
	e.initial = 0
	e.current = 0
	e.samples = 0
}
