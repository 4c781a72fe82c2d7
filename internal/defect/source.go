package defect

import (
	"math"

	"github.com/ddsim/dd2d/internal/tensor"
)

// DislocationSource is a latent Frank-Read style nucleation site on a slip
// plane. While the resolved shear stress on it stays at or above tauCritical
// it accumulates; after nucleationDelay consecutive iterations it emits a
// dislocation dipole.
type DislocationSource struct {
	pos     tensor.Vector3
	burgers tensor.Vector3
	line    tensor.Vector3
	bmag    float64

	tauCritical     float64
	nucleationDelay int
	counter         int

	rot tensor.Rotation
}

// NewDislocationSource builds a source whose emitted dislocations carry the
// given Burgers/line template. bmag must be positive.
func NewDislocationSource(burgers, line, position tensor.Vector3, bmag, tauCritical float64, nucleationDelay int) (*DislocationSource, error) {
	if bmag <= 0 {
		return nil, ErrBurgersMagnitude
	}
	if line.IsZero() {
		return nil, ErrDegenerateLine
	}
	s := &DislocationSource{
		pos:             position,
		burgers:         burgers,
		line:            line,
		bmag:            bmag,
		tauCritical:     tauCritical,
		nucleationDelay: nucleationDelay,
	}
	// The template dislocation's frame resolves shear on the source.
	tmpl, _ := NewDislocation(burgers, line, position, bmag, true)
	s.rot = tmpl.Rotation()
	return s, nil
}

func (s *DislocationSource) Position() tensor.Vector3 { return s.pos }
func (s *DislocationSource) Burgers() tensor.Vector3  { return s.burgers }
func (s *DislocationSource) LineVector() tensor.Vector3 {
	return s.line
}
func (s *DislocationSource) BurgersMagnitude() float64 { return s.bmag }
func (s *DislocationSource) TauCritical() float64      { return s.tauCritical }
func (s *DislocationSource) Counter() int              { return s.counter }

// StressField implements Defect. A latent source has not yet introduced any
// displacement discontinuity, so its long-range field is zero.
func (s *DislocationSource) StressField(p tensor.Vector3, mu, nu float64) tensor.Stress {
	return tensor.Stress{}
}

// ResolvedShear returns the shear component of sigma resolved on the source's
// slip system.
func (s *DislocationSource) ResolvedShear(sigma tensor.Stress) float64 {
	return s.rot.RotateStress(sigma).XY
}

// Accumulate advances the nucleation state machine by one iteration under the
// given resolved shear. The counter grows while |tau| >= tauCritical and
// resets to zero otherwise. It reports whether the source is ready to emit.
func (s *DislocationSource) Accumulate(tau float64) bool {
	if math.Abs(tau) >= s.tauCritical {
		s.counter++
	} else {
		s.counter = 0
	}
	return s.counter >= s.nucleationDelay
}

// ResetCounter clears the accumulation state after a successful emission.
func (s *DislocationSource) ResetCounter() { s.counter = 0 }

// EmitDipole creates the two dislocations of a nucleated dipole, offset
// symmetrically from the source along the glide direction by minDistance
// each so their mutual separation is 2*minDistance. glide is the slip
// plane's line direction, so both dislocations stay on the plane's line.
// The sign of tau orients the dipole so the applied shear drives the pair
// apart. The caller is responsible for the minimum-distance check against
// existing defects before inserting them.
func (s *DislocationSource) EmitDipole(glide tensor.Vector3, minDistance, tau float64) (*Dislocation, *Dislocation) {
	offset := glide.Normalize().Scale(minDistance)

	plus := s.burgers
	minus := s.burgers.Scale(-1)
	if tau < 0 {
		plus, minus = minus, plus
	}

	dPlus, _ := NewDislocation(plus, s.line, s.pos.Add(offset), s.bmag, true)
	dMinus, _ := NewDislocation(minus, s.line, s.pos.Sub(offset), s.bmag, true)
	return dPlus, dMinus
}
