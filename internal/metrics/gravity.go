package metrics

import (
	"math"

	"github.com/san-kum/droptower/internal/gravity"
	"github.com/san-kum/droptower/internal/particles"
	"github.com/san-kum/droptower/internal/sim"
)

// GEffExtreme tracks the smallest or largest effective gravity seen during
// free fall. Loaded ticks always report full gravity and are skipped.
type GEffExtreme struct {
	name  string
	max   bool
	value float64
	seen  bool
}

func NewMinGEff() *GEffExtreme { return &GEffExtreme{name: "min_g_eff"} }
func NewMaxGEff() *GEffExtreme { return &GEffExtreme{name: "max_g_eff", max: true} }

func (g *GEffExtreme) Name() string { return g.name }

func (g *GEffExtreme) Observe(_ *particles.System, tick sim.Tick) {
	if tick.Phase != gravity.FreeFall {
		return
	}
	switch {
	case !g.seen:
		g.value = tick.GEff
		g.seen = true
	case g.max:
		g.value = math.Max(g.value, tick.GEff)
	default:
		g.value = math.Min(g.value, tick.GEff)
	}
}

// Value is NaN when no free-fall tick was observed.
func (g *GEffExtreme) Value() float64 {
	if !g.seen {
		return math.NaN()
	}
	return g.value
}

func (g *GEffExtreme) Reset() {
	g.value = 0
	g.seen = false
}
