package analysis

// PopulationCurve returns the dislocation count in every snapshot.
func PopulationCurve(snapshots [][]float64) []float64 {
	out := make([]float64, len(snapshots))
	for i, snap := range snapshots {
		out[i] = float64(len(snap))
	}
	return out
}

// Trace extracts the line coordinate of one dislocation index across
// snapshots. Snapshots too narrow to contain the index are skipped, so
// the trace may be shorter than the run.
func Trace(snapshots [][]float64, index int) []float64 {
	out := make([]float64, 0, len(snapshots))
	for _, snap := range snapshots {
		if index < len(snap) {
			out = append(out, snap[index])
		}
	}
	return out
}

// MeanPositions returns the mean line coordinate per snapshot. Empty
// snapshots contribute zero.
func MeanPositions(snapshots [][]float64) []float64 {
	out := make([]float64, len(snapshots))
	for i, snap := range snapshots {
		if len(snap) == 0 {
			continue
		}
		sum := 0.0
		for _, v := range snap {
			sum += v
		}
		out[i] = sum / float64(len(snap))
	}
	return out
}
