// Package viz renders a running drop-tower simulation in the terminal.
//
// [Model] is a Bubble Tea model that advances a [sim.Simulation] a few steps
// per frame and draws the chamber and particles on a braille [Canvas], with
// a status panel for phase, effective gravity and chamber velocity.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	.     - Single step while paused
//	R     - Restart from the same seed
//	+/-   - Double/halve steps per frame
//	T     - Cycle color themes
//	Q     - Quit
package viz
