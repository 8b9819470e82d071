// Package gravity computes the effective gravity felt by the chamber contents.
//
// The chamber moves through two phases, [Loaded] and [FreeFall]. The switch
// is one-way. A [Model] maps the current phase and chamber velocity to the
// acceleration applied to particles and the chamber velocity for the next
// tick:
//
//   - [Ideal]: full gravity while loaded, exact zero-g in free fall.
//   - [DragCoupled]: the capsule falls against aerodynamic drag, so the
//     contents feel the acceleration the chamber fails to reach.
//
// Models hold only immutable parameters. Chamber velocity lives in the
// caller's state record and is threaded through [Model.OnTick].
package gravity
