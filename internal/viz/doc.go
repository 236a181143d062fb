// Package viz renders a running simulation in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: steps an experiment each frame and draws it
//   - [Canvas]: Braille dot canvas, 2x4 dots per character cell
//   - [Camera]: perspective projection of the periodic box
//
// Particles are folded into the primary box for display only; the
// simulation itself keeps unwrapped coordinates.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial state
//	[ ]   - Halve/double steps per frame
//	x y z - Rotate the box (shift reverses)
//	+ -   - Zoom
//	T     - Cycle color themes
//	?     - Help overlay
package viz
