package collision

import (
	"math"

	"github.com/san-kum/droptower/internal/particles"
)

// MinSeparation is the centre distance below which a pair is treated as
// coincident and skipped.
const MinSeparation = 1e-9

// ResolvePairs applies an impulse along the line of centres to every
// overlapping pair that is approaching. Tangential velocity is preserved and
// positions are left alone, so overlaps can persist across steps.
//
// Cost is O(N²).
func ResolvePairs(sys *particles.System, restitution float64) int {
	n := sys.Len()
	resolved := 0

	for i := 0; i < n; i++ {
		pi := sys.Ref(i)
		for j := i + 1; j < n; j++ {
			pj := sys.Ref(j)

			// normal points from i towards j, so vn > 0 means closing
			dx := pj.X - pi.X
			dy := pj.Y - pi.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist >= pi.Radius+pj.Radius || dist < MinSeparation {
				continue
			}

			nx, ny := dx/dist, dy/dist
			rvx := pi.VX - pj.VX
			rvy := pi.VY - pj.VY
			vn := rvx*nx + rvy*ny
			if vn <= 0 {
				continue
			}

			// reduces to (1+e)*vn/2 for equal masses
			total := pi.Mass + pj.Mass
			ji := (1 + restitution) * vn * pj.Mass / total
			jj := (1 + restitution) * vn * pi.Mass / total

			pi.VX -= ji * nx
			pi.VY -= ji * ny
			pj.VX += jj * nx
			pj.VY += jj * ny
			resolved++
		}
	}
	return resolved
}
