package defect

import "github.com/ddsim/dd2d/internal/tensor"

// history keeps the per-iteration traces of a dislocation's stress, force and
// velocity. Entries are appended once per simulation step; birth is the
// global iteration at which the first entry was recorded, so lookups by
// global iteration stay valid for dislocations nucleated mid-run.
type history struct {
	birth      int
	stresses   []tensor.Stress
	forces     []tensor.Vector3
	velocities []tensor.Vector3
}

func (h *history) index(iteration int) (int, bool) {
	i := iteration - h.birth
	if i < 0 || i >= len(h.stresses) {
		return 0, false
	}
	return i, true
}

// StressAtIteration returns the recorded total stress at a global iteration.
// The second return value reports whether the iteration was recorded.
func (d *Dislocation) StressAtIteration(iteration int) (tensor.Stress, bool) {
	i, ok := d.hist.index(iteration)
	if !ok {
		return tensor.Stress{}, false
	}
	return d.hist.stresses[i], true
}

// ForceAtIteration returns the recorded Peach-Koehler force at a global
// iteration.
func (d *Dislocation) ForceAtIteration(iteration int) (tensor.Vector3, bool) {
	i, ok := d.hist.index(iteration)
	if !ok || i >= len(d.hist.forces) {
		return tensor.Vector3{}, false
	}
	return d.hist.forces[i], true
}

// VelocityAtIteration returns the recorded velocity at a global iteration.
func (d *Dislocation) VelocityAtIteration(iteration int) (tensor.Vector3, bool) {
	i, ok := d.hist.index(iteration)
	if !ok || i >= len(d.hist.velocities) {
		return tensor.Vector3{}, false
	}
	return d.hist.velocities[i], true
}

// HistoryLen reports how many iterations have been recorded.
func (d *Dislocation) HistoryLen() int { return len(d.hist.stresses) }

// BirthIteration reports the global iteration of the first recorded entry.
func (d *Dislocation) BirthIteration() int { return d.hist.birth }
