package metrics

import (
	"github.com/san-kum/droptower/internal/particles"
	"github.com/san-kum/droptower/internal/sim"
)

type MeanHeight struct {
	samples int
	total   float64
}

func NewMeanHeight() *MeanHeight { return &MeanHeight{} }

func (m *MeanHeight) Name() string { return "mean_height" }

func (m *MeanHeight) Observe(sys *particles.System, _ sim.Tick) {
	if sys.Len() == 0 {
		return
	}
	m.total += sys.MeanHeight()
	m.samples++
}

func (m *MeanHeight) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanHeight) Reset() {
	m.total = 0
	m.samples = 0
}

// Containment is the fraction of steps after which every particle sat
// inside the chamber. Anything below 1 is a resolver bug.
type Containment struct {
	tolerance  float64
	violations int
	samples    int
}

func NewContainment(tolerance float64) *Containment {
	return &Containment{tolerance: tolerance}
}

func (c *Containment) Name() string { return "containment" }

func (c *Containment) Observe(sys *particles.System, _ sim.Tick) {
	c.samples++
	if !sys.Contained(c.tolerance) {
		c.violations++
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
