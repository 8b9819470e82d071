// Package particles holds the kinematic state of the particle cloud.
//
// A [System] is an ordered, fixed-size collection of [Particle] values
// living inside a [Chamber]. The package knows nothing about collisions or
// gravity phases: [System.Integrate] is a plain explicit-Euler update and
// callers supply the acceleration.
//
// # Sign convention
//
// Positive VY means the particle moves down. Integration therefore applies
// y -= vy*dt, which matches a chamber whose origin sits in the bottom-left
// corner.
//
//	sys, _ := particles.New(50, chamber, particles.NearTop(5), 5, 0.9, 100, rng)
//	sys.Integrate(0.01, 980, true)
package particles
