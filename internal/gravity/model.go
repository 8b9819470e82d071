package gravity

import (
	"errors"
	"fmt"
	"math"
)

var ErrUnknownModel = errors.New("gravity: unknown model")

const (
	NameIdeal       = "ideal"
	NameDragCoupled = "drag_coupled"
)

// Model computes the effective gravity for one tick.
type Model interface {
	Name() string
	// OnTick returns g_eff for this tick and the chamber velocity to carry
	// into the next one.
	OnTick(phase Phase, chamberVelocity, dt float64) (gEff, nextVelocity float64)
}

// Ideal applies full gravity until release and nothing afterwards.
type Ideal struct {
	Gravity float64
}

func NewIdeal(gravity float64) *Ideal {
	return &Ideal{Gravity: gravity}
}

func (m *Ideal) Name() string { return NameIdeal }

func (m *Ideal) OnTick(phase Phase, chamberVelocity, _ float64) (float64, float64) {
	if phase == FreeFall {
		return 0, chamberVelocity
	}
	return m.Gravity, chamberVelocity
}

// DragCoupled models a capsule of mass ChamberMass falling through air.
// Units are cm, g and s.
type DragCoupled struct {
	Gravity         float64
	DragCoefficient float64
	AirDensity      float64
	ChamberMass     float64
	FrontalArea     float64
}

func NewDragCoupled(gravity, dragCoefficient, airDensity, chamberMass, frontalArea float64) *DragCoupled {
	return &DragCoupled{
		Gravity:         gravity,
		DragCoefficient: dragCoefficient,
		AirDensity:      airDensity,
		ChamberMass:     chamberMass,
		FrontalArea:     frontalArea,
	}
}

func (m *DragCoupled) Name() string { return NameDragCoupled }

// DragForce returns the quadratic drag on the chamber at velocity v.
func (m *DragCoupled) DragForce(v float64) float64 {
	return 0.5 * m.AirDensity * m.DragCoefficient * m.FrontalArea * v * v
}

// TerminalVelocity is the speed at which drag balances gravity.
func (m *DragCoupled) TerminalVelocity() float64 {
	k := 0.5 * m.AirDensity * m.DragCoefficient * m.FrontalArea
	if k <= 0 || m.Gravity <= 0 {
		return 0
	}
	return math.Sqrt(m.ChamberMass * m.Gravity / k)
}

func (m *DragCoupled) OnTick(phase Phase, chamberVelocity, dt float64) (float64, float64) {
	if phase != FreeFall {
		return m.Gravity, 0
	}
	// drag uses the velocity entering the tick
	aChamber := m.Gravity - m.DragForce(chamberVelocity)/m.ChamberMass
	next := chamberVelocity + aChamber*dt
	return max(m.Gravity-aChamber, 0), next
}

// Params carries everything Parse needs to build a model.
type Params struct {
	Gravity         float64
	DragCoefficient float64
	AirDensity      float64
	ChamberMass     float64
	FrontalArea     float64
}

// Parse builds the model registered under name.
func Parse(name string, p Params) (Model, error) {
	switch name {
	case NameIdeal:
		return NewIdeal(p.Gravity), nil
	case NameDragCoupled:
		return NewDragCoupled(p.Gravity, p.DragCoefficient, p.AirDensity, p.ChamberMass, p.FrontalArea), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
}

// Names lists the registered model names.
func Names() []string {
	return []string{NameIdeal, NameDragCoupled}
}
