package crystal

import (
	"github.com/ddsim/dd2d/internal/defect"
	"github.com/ddsim/dd2d/internal/tensor"
)

// Polycrystal owns the full grain structure and the externally applied
// stress. It is the root coordinate frame: its base and local expressions of
// the applied stress coincide.
type Polycrystal struct {
	grains       []*Grain
	appliedBase  tensor.Stress
	appliedLocal tensor.Stress
}

func NewPolycrystal() *Polycrystal {
	return &Polycrystal{}
}

func (p *Polycrystal) AddGrain(g *Grain) { p.grains = append(p.grains, g) }
func (p *Polycrystal) Grains() []*Grain  { return p.grains }

// Grain returns the i-th grain, or nil if the index is out of range.
func (p *Polycrystal) Grain(i int) *Grain {
	if i < 0 || i >= len(p.grains) {
		return nil
	}
	return p.grains[i]
}

// SetAppliedStress assigns the externally applied stress. The polycrystal
// frame has no parent, so base and local expressions are equal.
func (p *Polycrystal) SetAppliedStress(s tensor.Stress) {
	p.appliedBase = s
	p.appliedLocal = s
}

func (p *Polycrystal) AppliedStressBase() tensor.Stress  { return p.appliedBase }
func (p *Polycrystal) AppliedStressLocal() tensor.Stress { return p.appliedLocal }

// SetGrainOrientations assigns one orientation per grain, in order. Extra
// orientations are ignored; grains beyond the list keep their frame.
func (p *Polycrystal) SetGrainOrientations(orientations []tensor.Vector3) {
	for i, g := range p.grains {
		if i >= len(orientations) {
			break
		}
		g.SetOrientation(orientations[i])
	}
}

// SetGrainBoundaries assigns tessellation polygons to grains, in order.
func (p *Polycrystal) SetGrainBoundaries(polygons [][]tensor.Vector3) {
	for i, g := range p.grains {
		if i >= len(polygons) {
			break
		}
		g.SetBoundary(polygons[i])
	}
}

// CalculateGrainAppliedStress projects the applied stress into every grain's
// local frame (step 1 of the simulation step).
func (p *Polycrystal) CalculateGrainAppliedStress() {
	for _, g := range p.grains {
		g.SetAppliedStress(p.appliedLocal)
	}
}

// DislocationRef locates a dislocation within the structure.
type DislocationRef struct {
	Grain *Grain
	Plane *SlipPlane
	D     *defect.Dislocation
}

// AllDislocations flattens every dislocation in the structure with its
// owning grain and plane.
func (p *Polycrystal) AllDislocations() []DislocationRef {
	var refs []DislocationRef
	for _, g := range p.grains {
		for _, sp := range g.SlipPlanes() {
			for _, d := range sp.Dislocations() {
				refs = append(refs, DislocationRef{Grain: g, Plane: sp, D: d})
			}
		}
	}
	return refs
}

// DislocationCount reports the number of live dislocations in the structure.
func (p *Polycrystal) DislocationCount() int {
	n := 0
	for _, g := range p.grains {
		n += g.DislocationCount()
	}
	return n
}

// StressOnDislocation superposes the stress fields of every defect in the
// structure, own-grain and cross-grain, at the dislocation's position,
// excluding the dislocation itself, plus the grain's share of the applied
// stress. Slip plane geometry is grain-local, so the result is expressed in
// the query dislocation's grain frame: the applied stress enters as the
// grain-local projection, and cross-grain contributions are mapped through
// the base frame. It reads positions only and never mutates any defect, so
// it is safe to evaluate concurrently for distinct query dislocations.
func (p *Polycrystal) StressOnDislocation(ref DislocationRef, mu, nu float64) tensor.Stress {
	grot := ref.Grain.Rotation()
	total := ref.Grain.AppliedStressLocal()
	pos := ref.D.Position()
	posBase := grot.Unrotate(pos)
	for _, g := range p.grains {
		same := g == ref.Grain
		hrot := g.Rotation()
		posH := pos
		if !same {
			posH = hrot.Rotate(posBase)
		}
		for _, sp := range g.SlipPlanes() {
			for _, d := range sp.Dislocations() {
				if d == ref.D {
					continue
				}
				field := d.StressField(posH, mu, nu)
				if !same {
					field = grot.RotateStress(hrot.UnrotateStress(field))
				}
				total = total.Add(field)
			}
		}
	}
	return total
}

// CalculateAllStresses evaluates and records the total stress on every
// dislocation (step 2). All reads use the positions as they stand when the
// call begins; nothing moves until MoveDislocations.
func (p *Polycrystal) CalculateAllStresses(mu, nu float64) {
	refs := p.AllDislocations()
	stresses := make([]tensor.Stress, len(refs))
	for i, ref := range refs {
		stresses[i] = p.StressOnDislocation(ref, mu, nu)
	}
	for i, ref := range refs {
		ref.D.SetTotalStress(stresses[i])
	}
}

// TotalStressAt probes the superposed stress field of the whole structure at
// an arbitrary base-frame point, plus the applied stress. Each grain's
// contribution is evaluated in its local frame and rotated back.
func (p *Polycrystal) TotalStressAt(point tensor.Vector3, mu, nu float64) tensor.Stress {
	total := p.appliedBase
	for _, g := range p.grains {
		rot := g.Rotation()
		posLocal := rot.Rotate(point)
		var sub tensor.Stress
		for _, sp := range g.SlipPlanes() {
			for _, d := range sp.Dislocations() {
				sub = sub.Add(d.StressField(posLocal, mu, nu))
			}
		}
		total = total.Add(rot.UnrotateStress(sub))
	}
	return total
}

// CalculateDislocationVelocities derives forces and velocities for every
// dislocation (step 3).
func (p *Polycrystal) CalculateDislocationVelocities(drag, tauCRSS float64) {
	for _, g := range p.grains {
		g.CalculateVelocities(drag, tauCRSS)
	}
}

// IdealTimeIncrement is the single governing dt: the minimum across all
// grains, capped by maxDt (step 4).
func (p *Polycrystal) IdealTimeIncrement(minDistance, maxDt float64) float64 {
	dt := maxDt
	for _, g := range p.grains {
		if grainDt := g.IdealTimeIncrement(minDistance, maxDt); grainDt < dt {
			dt = grainDt
		}
	}
	return dt
}

// MoveDislocations advances all mobile dislocations (step 5).
func (p *Polycrystal) MoveDislocations(dt float64) {
	for _, g := range p.grains {
		g.MoveDislocations(dt)
	}
}

// CheckDislocationSources evaluates every source for nucleation (step 6) and
// reports how many dislocations were emitted.
func (p *Polycrystal) CheckDislocationSources(iteration int, mu, nu, minDistance float64) int {
	nucleated := 0
	for _, g := range p.grains {
		nucleated += g.CheckSources(iteration, mu, nu, minDistance)
	}
	return nucleated
}

// CheckLocalReactions evaluates annihilation per slip plane (step 7).
// Reactions never cross grain boundaries: dislocations cannot leave their
// plane, so cross-grain pairs are unreachable.
func (p *Polycrystal) CheckLocalReactions(reactionRadius float64) int {
	removed := 0
	for _, g := range p.grains {
		removed += g.CheckLocalReactions(reactionRadius)
	}
	return removed
}

// DefectRow collects the scalar line coordinate of every live dislocation,
// in grain/plane/order position, for snapshot output. The width varies as
// dislocations are nucleated or annihilated.
func (p *Polycrystal) DefectRow() []float64 {
	var row []float64
	for _, g := range p.grains {
		for _, sp := range g.SlipPlanes() {
			for _, d := range sp.Dislocations() {
				row = append(row, sp.LineCoordinate(d.Position()))
			}
		}
	}
	return row
}
