package viz

import "github.com/guptarohit/asciigraph"

// PlotSeries renders a stored time series as an ASCII chart for the
// plot subcommand.
func PlotSeries(data []float64, caption string, width, height int) string {
	if len(data) == 0 {
		return "no data"
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption))
}
