// Package viz renders propagation runs in the terminal.
//
// [Model] is a Bubble Tea program that animates every body of a run on a
// braille [Canvas], projected through a rotatable [Camera], with a radius
// chart and solver statistics for the selected body.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to t = 0
//	Tab   - Select next body
//	[ ]   - Step time backward/forward
//	x y z - Rotate view (shift reverses)
//	+ -   - Zoom
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
