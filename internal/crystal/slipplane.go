package crystal

import (
	"sort"

	"github.com/ddsim/dd2d/internal/defect"
	"github.com/ddsim/dd2d/internal/tensor"
)

// SlipPlane is an ordered, line-shaped container of dislocations and
// dislocation sources. Dislocations are kept sorted by their signed scalar
// coordinate along the line joining the two extremities; the order is
// re-established after every insert, move or removal.
type SlipPlane struct {
	extremities [2]tensor.Vector3
	normal      tensor.Vector3
	pos         tensor.Vector3

	dislocations []*defect.Dislocation
	sources      []*defect.DislocationSource
}

func NewSlipPlane(e0, e1, normal, position tensor.Vector3) *SlipPlane {
	return &SlipPlane{
		extremities: [2]tensor.Vector3{e0, e1},
		normal:      normal,
		pos:         position,
	}
}

func (sp *SlipPlane) Extremities() [2]tensor.Vector3 { return sp.extremities }
func (sp *SlipPlane) Normal() tensor.Vector3         { return sp.normal }
func (sp *SlipPlane) Position() tensor.Vector3       { return sp.pos }

func (sp *SlipPlane) Dislocations() []*defect.Dislocation      { return sp.dislocations }
func (sp *SlipPlane) Sources() []*defect.DislocationSource     { return sp.sources }
func (sp *SlipPlane) InsertSource(s *defect.DislocationSource) { sp.sources = append(sp.sources, s) }

// LineDirection is the unit vector from the first extremity to the second.
func (sp *SlipPlane) LineDirection() tensor.Vector3 {
	return sp.extremities[1].Sub(sp.extremities[0]).Normalize()
}

// LineCoordinate is the signed scalar coordinate of p along the line
// direction, measured from the first extremity.
func (sp *SlipPlane) LineCoordinate(p tensor.Vector3) float64 {
	return p.Sub(sp.extremities[0]).Dot(sp.LineDirection())
}

// InsertDislocation adds d and restores the ordering invariant.
func (sp *SlipPlane) InsertDislocation(d *defect.Dislocation) {
	sp.dislocations = append(sp.dislocations, d)
	sp.sortDislocations()
}

func (sp *SlipPlane) sortDislocations() {
	dir := sp.LineDirection()
	origin := sp.extremities[0]
	sort.SliceStable(sp.dislocations, func(i, j int) bool {
		a := sp.dislocations[i].Position().Sub(origin).Dot(dir)
		b := sp.dislocations[j].Position().Sub(origin).Dot(dir)
		return a < b
	})
}

// TotalStressAt superposes the stress fields of every dislocation on the
// plane except excluding, plus the supplied background stress.
func (sp *SlipPlane) TotalStressAt(p tensor.Vector3, mu, nu float64, excluding defect.Defect, background tensor.Stress) tensor.Stress {
	total := background
	for _, d := range sp.dislocations {
		if defect.Defect(d) == excluding {
			continue
		}
		total = total.Add(d.StressField(p, mu, nu))
	}
	return total
}

// CalculateVelocities derives Peach-Koehler forces from each dislocation's
// recorded total stress and applies the overdamped mobility law v = f/drag.
// Pinned dislocations record their force but always receive zero velocity.
func (sp *SlipPlane) CalculateVelocities(drag, tauCRSS float64) {
	for _, d := range sp.dislocations {
		f := d.ForcePeachKoehler(d.TotalStress(), tauCRSS)
		d.SetTotalForce(f)
		if d.IsMobile() {
			d.SetVelocity(f.Scale(1.0 / drag))
		} else {
			d.SetVelocity(tensor.Vector3{})
		}
	}
}

// IdealTimeIncrement returns the governing time increment for the plane: the
// minimum over every ordered-neighbor pair, capped by maxDt.
func (sp *SlipPlane) IdealTimeIncrement(minDistance, maxDt float64) float64 {
	dt := maxDt
	for i := 0; i+1 < len(sp.dislocations); i++ {
		a, b := sp.dislocations[i], sp.dislocations[i+1]
		if pair := a.IdealTimeIncrement(minDistance, b, b.Velocity()); pair < dt {
			dt = pair
		}
	}
	return dt
}

// MoveDislocations advances every mobile dislocation by its velocity over dt,
// projected onto the line so positions stay on the plane, then re-sorts.
func (sp *SlipPlane) MoveDislocations(dt float64) {
	dir := sp.LineDirection()
	for _, d := range sp.dislocations {
		if !d.IsMobile() {
			continue
		}
		step := d.Velocity().Dot(dir) * dt
		d.SetPosition(d.Position().Add(dir.Scale(step)))
	}
	sp.sortDislocations()
}

// CheckLocalReactions annihilates neighbor pairs with opposite-sign Burgers
// vectors whose separation is within reactionRadius. Returns the number of
// dislocations removed.
func (sp *SlipPlane) CheckLocalReactions(reactionRadius float64) int {
	n := len(sp.dislocations)
	if n < 2 {
		return 0
	}

	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}

	removed := 0
	for i := 0; i+1 < n; {
		a, b := sp.dislocations[i], sp.dislocations[i+1]
		sep := b.Position().Sub(a.Position()).Magnitude()
		if keep[i] && keep[i+1] && a.Burgers().Dot(b.Burgers()) < 0 && sep <= reactionRadius {
			keep[i] = false
			keep[i+1] = false
			removed += 2
			i += 2
			continue
		}
		i++
	}

	if removed == 0 {
		return 0
	}

	survivors := make([]*defect.Dislocation, 0, n-removed)
	for i, d := range sp.dislocations {
		if keep[i] {
			survivors = append(survivors, d)
		}
	}
	sp.dislocations = survivors
	sp.sortDislocations()
	return removed
}

// CheckSources advances every source's nucleation state under the current
// stress and inserts any emitted dipole. An emission that would violate the
// minimum-distance invariant against existing defects is skipped; the source
// stays ready and retries on a later iteration. Returns the number of
// dislocations nucleated.
func (sp *SlipPlane) CheckSources(iteration int, mu, nu, minDistance float64, background tensor.Stress) int {
	nucleated := 0
	for _, src := range sp.sources {
		sigma := sp.TotalStressAt(src.Position(), mu, nu, src, background)
		tau := src.ResolvedShear(sigma)
		if !src.Accumulate(tau) {
			continue
		}

		plus, minus := src.EmitDipole(sp.LineDirection(), minDistance, tau)
		if !sp.clearOf(plus.Position(), minDistance, src) || !sp.clearOf(minus.Position(), minDistance, src) {
			continue
		}

		plus.SetBirthIteration(iteration)
		minus.SetBirthIteration(iteration)
		sp.dislocations = append(sp.dislocations, plus, minus)
		sp.sortDislocations()
		src.ResetCounter()
		nucleated += 2
	}
	return nucleated
}

// clearOf reports whether p keeps at least minDistance from every defect on
// the plane other than ignore. A relative tolerance absorbs rounding in the
// dipole offsets, which sit exactly at the limit from their source.
func (sp *SlipPlane) clearOf(p tensor.Vector3, minDistance float64, ignore defect.Defect) bool {
	limit := minDistance * (1 - 1e-9)
	for _, d := range sp.dislocations {
		if d.Position().Sub(p).Magnitude() < limit {
			return false
		}
	}
	for _, s := range sp.sources {
		if defect.Defect(s) == ignore {
			continue
		}
		if s.Position().Sub(p).Magnitude() < limit {
			return false
		}
	}
	return true
}
