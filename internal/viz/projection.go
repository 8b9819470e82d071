package viz

import (
	"math"

	"github.com/san-kum/droptower/internal/particles"
)

// projection maps chamber coordinates in cm onto canvas dots with a uniform
// scale. Chamber y grows upwards, canvas y downwards.
type projection struct {
	scale  float64
	height int
}

func newProjection(c *Canvas, chamber particles.Chamber) projection {
	w, h := c.Pixels()
	scale := math.Min(float64(w-1)/chamber.Width, float64(h-1)/chamber.Height)
	return projection{scale: scale, height: int(math.Round(chamber.Height * scale))}
}

func (p projection) point(x, y float64) (int, int) {
	return int(math.Round(x * p.scale)), p.height - int(math.Round(y*p.scale))
}

// drawChamber outlines the walls. The top edge is drawn only when closed.
func drawChamber(c *Canvas, p projection, chamber particles.Chamber) {
	x0, y0 := p.point(0, 0)
	x1, y1 := p.point(chamber.Width, chamber.Height)
	c.HLine(x0, x1, y0)
	c.VLine(x0, y0, y1)
	c.VLine(x1, y0, y1)
	if chamber.ClosedTop {
		c.HLine(x0, x1, y1)
	}
}

func drawParticles(c *Canvas, p projection, sys *particles.System) {
	for i := 0; i < sys.Len(); i++ {
		pt := sys.At(i)
		x, y := p.point(pt.X, pt.Y)
		// a dot of margin keeps touching particles apart
		c.DrawDisc(x, y, pt.Radius*p.scale-1)
	}
}
