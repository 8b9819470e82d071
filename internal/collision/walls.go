// Package collision resolves wall and particle-particle contacts in place.
//
// Both resolvers only touch velocities and, for walls, clamp positions back
// inside the chamber. Overlapping particles are never pushed apart.
package collision

import "github.com/san-kum/droptower/internal/particles"

// ResolveWalls reflects every particle that crossed a wall, scaling the
// normal velocity by restitution and clamping the position onto the wall.
// Axes are handled independently, so a corner hit applies both corrections.
// It returns the number of wall contacts.
func ResolveWalls(sys *particles.System, restitution float64) int {
	c := sys.Chamber()
	contacts := 0

	for i := 0; i < sys.Len(); i++ {
		p := sys.Ref(i)
		r := p.Radius

		if p.X < r {
			p.VX *= -restitution
			p.X = r
			contacts++
		}
		if p.X > c.Width-r {
			p.VX *= -restitution
			p.X = c.Width - r
			contacts++
		}
		if p.Y < r {
			p.VY *= -restitution
			p.Y = r
			contacts++
		}
		if c.ClosedTop && p.Y > c.Height-r {
			p.VY *= -restitution
			p.Y = c.Height - r
			contacts++
		}
	}
	return contacts
}
