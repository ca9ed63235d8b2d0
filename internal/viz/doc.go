// Package viz renders terminal charts for solver runs and a live
// training monitor.
//
// Batch charts are asciigraph line plots ([PlotSeries], [PlotLoss],
// [PlotConvergence], [PlotSpectrum]) plus a braille phase portrait
// ([PhasePlot], with [PhaseCanvas] exposing the bare canvas for SVG
// export). The live monitor is a Bubble Tea program that advances a
// trainer one epoch per tick and charts the loss as it falls.
//
// # Key Bindings
//
//	Space - Pause/Resume training
//	R     - Reset parameters and start over
//	Q     - Quit
package viz
