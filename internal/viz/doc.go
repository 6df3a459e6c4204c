// Package viz renders three-body series in the terminal.
//
//   - [PlotEnergy], [PlotAngularMomentum], [PlotDistances]: static asciigraph
//     charts of a stored series
//   - [Player]: Bubble Tea playback with projected bodies and trails
//   - [Menu]: list of presets or runs that opens the player
//   - [Canvas]: Braille-based pixel canvas
//
// # Player Key Bindings
//
//	Space   - Pause/Resume playback
//	← →     - Step one frame
//	[ ]     - Seek ten frames
//	x y z   - Rotate the camera (shift reverses)
//	+ -     - Zoom
//	f s     - Double or halve the playback speed
//	T       - Cycle color themes
//	G       - Toggle GIF recording
//	?       - Show help overlay
package viz
