// Package sim drives the drop-tower particle simulation.
//
// The package ties the physics packages together:
//
//   - [Config]: immutable run parameters, validated once by [Config.Validate]
//   - [State]: the explicit per-tick record (time, phase, chamber velocity)
//   - [Stepper]: the single authoritative tick
//   - [Simulation]: a particle system and its state bundled for drivers
//   - [Ensemble]: independent seeds run in parallel
//
// # Example
//
//	s, err := sim.Initialize(cfg, 42, sim.WithLogger(logger))
//	for !s.IsTerminal() {
//	    if _, err := s.Step(); err != nil { ... }
//	    draw(s.Snapshot(), s.Status())
//	}
//
// # Thread Safety
//
// A Simulation is NOT safe for concurrent use. Separate simulations share no
// state, so each may run on its own goroutine without locking.
package sim
