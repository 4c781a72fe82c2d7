package crystal

import (
	"github.com/ddsim/dd2d/internal/defect"
	"github.com/ddsim/dd2d/internal/tensor"
)

// Grain is a set of slip planes sharing one crystallographic orientation.
// The orientation defines the grain's local frame as a child of the
// polycrystal's; the grain's share of the applied stress is kept in both
// frames.
type Grain struct {
	boundary    []tensor.Vector3
	orientation tensor.Vector3
	rot         tensor.Rotation

	planes []*SlipPlane

	appliedLocal tensor.Stress
	appliedBase  tensor.Stress
}

func NewGrain() *Grain {
	return &Grain{rot: tensor.IdentityRotation()}
}

// SetOrientation assigns the crystallographic orientation vector and derives
// the grain's local frame with its z-axis along the orientation.
func (g *Grain) SetOrientation(v tensor.Vector3) {
	g.orientation = v
	if v.IsZero() {
		g.rot = tensor.IdentityRotation()
		return
	}
	g.rot = tensor.RotationAlignZ(v)
}

func (g *Grain) Orientation() tensor.Vector3 { return g.orientation }
func (g *Grain) Rotation() tensor.Rotation   { return g.rot }

// SetBoundary assigns the grain boundary polygon produced by the
// tessellation. The polygon is opaque to the physics core.
func (g *Grain) SetBoundary(polygon []tensor.Vector3) { g.boundary = polygon }
func (g *Grain) Boundary() []tensor.Vector3           { return g.boundary }

func (g *Grain) AddSlipPlane(sp *SlipPlane) { g.planes = append(g.planes, sp) }
func (g *Grain) SlipPlanes() []*SlipPlane   { return g.planes }

// SetAppliedStress projects the polycrystal's applied stress into the
// grain's local frame.
func (g *Grain) SetAppliedStress(base tensor.Stress) {
	g.appliedBase = base
	g.appliedLocal = g.rot.RotateStress(base)
}

// AppliedStressLocal is the applied stress expressed in the grain frame.
func (g *Grain) AppliedStressLocal() tensor.Stress { return g.appliedLocal }

// AppliedStressBase is the applied stress expressed in the polycrystal's
// base frame, recovered from the grain-local projection.
func (g *Grain) AppliedStressBase() tensor.Stress {
	return g.rot.UnrotateStress(g.appliedLocal)
}

// Dislocations flattens the dislocations of every slip plane.
func (g *Grain) Dislocations() []*defect.Dislocation {
	var all []*defect.Dislocation
	for _, sp := range g.planes {
		all = append(all, sp.Dislocations()...)
	}
	return all
}

// DislocationCount reports the number of live dislocations in the grain.
func (g *Grain) DislocationCount() int {
	n := 0
	for _, sp := range g.planes {
		n += len(sp.Dislocations())
	}
	return n
}

func (g *Grain) CalculateVelocities(drag, tauCRSS float64) {
	for _, sp := range g.planes {
		sp.CalculateVelocities(drag, tauCRSS)
	}
}

// IdealTimeIncrement aggregates the minimum governing dt across the grain's
// slip planes.
func (g *Grain) IdealTimeIncrement(minDistance, maxDt float64) float64 {
	dt := maxDt
	for _, sp := range g.planes {
		if planeDt := sp.IdealTimeIncrement(minDistance, maxDt); planeDt < dt {
			dt = planeDt
		}
	}
	return dt
}

func (g *Grain) MoveDislocations(dt float64) {
	for _, sp := range g.planes {
		sp.MoveDislocations(dt)
	}
}

// CheckSources evaluates nucleation on every plane. Plane geometry is
// grain-local, so sources resolve the grain-local applied stress.
func (g *Grain) CheckSources(iteration int, mu, nu, minDistance float64) int {
	nucleated := 0
	for _, sp := range g.planes {
		nucleated += sp.CheckSources(iteration, mu, nu, minDistance, g.AppliedStressLocal())
	}
	return nucleated
}

func (g *Grain) CheckLocalReactions(reactionRadius float64) int {
	removed := 0
	for _, sp := range g.planes {
		removed += sp.CheckLocalReactions(reactionRadius)
	}
	return removed
}
