// Package viz renders scenes in the terminal.
//
// [Model] is a Bubble Tea program that advances a scene one frame per tick
// and draws every body as a braille wireframe inside the wall box, next to
// a kinetic energy chart and the material parameters. [Picker] chooses a
// preset first.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset all bodies to their rest shape
//	Tab   - Select alpha, beta or delta
//	Up/Dn - Tune the selected parameter
//	M     - Cycle the goal mode
//	F     - Lift the selected body
//	?     - Show help
package viz
