package defect

import (
	"math"

	"github.com/ddsim/dd2d/internal/tensor"
)

// Default Burgers and line vectors for dislocations built without explicit
// geometry ([110]-type directions).
var (
	DefaultBurgers = tensor.Vector3{X: 1, Y: 1, Z: 0}
	DefaultLine    = tensor.Vector3{X: 1, Y: -1, Z: 0}
)

// NoApproach is the time increment returned when two defects are stationary
// relative to each other or separating: any step is collision-free.
const NoApproach = 1000.0

// Dislocation is a line defect confined to a slip plane. Its local frame has
// the line vector along z and the Burgers direction informing x; the frame is
// re-derived whenever either vector changes.
type Dislocation struct {
	pos     tensor.Vector3
	burgers tensor.Vector3
	line    tensor.Vector3
	bmag    float64
	mobile  bool

	rot tensor.Rotation

	totalStress tensor.Stress
	force       tensor.Vector3
	velocity    tensor.Vector3
	hist        history
}

// NewDislocation builds a dislocation with explicit geometry. bmag is the
// Burgers vector magnitude in metres and must be positive.
func NewDislocation(burgers, line, position tensor.Vector3, bmag float64, mobile bool) (*Dislocation, error) {
	if bmag <= 0 {
		return nil, ErrBurgersMagnitude
	}
	if line.IsZero() {
		return nil, ErrDegenerateLine
	}
	d := &Dislocation{
		pos:     position,
		burgers: burgers,
		line:    line,
		bmag:    bmag,
		mobile:  mobile,
	}
	d.calculateRotationMatrix()
	return d, nil
}

// NewDefaultDislocation builds a mobile dislocation at the origin with the
// default Burgers and line vectors and unit Burgers magnitude.
func NewDefaultDislocation() *Dislocation {
	d, _ := NewDislocation(DefaultBurgers, DefaultLine, tensor.Vector3{}, 1.0, true)
	return d
}

func (d *Dislocation) Position() tensor.Vector3 { return d.pos }
func (d *Dislocation) Burgers() tensor.Vector3  { return d.burgers }
func (d *Dislocation) LineVector() tensor.Vector3 {
	return d.line
}
func (d *Dislocation) BurgersMagnitude() float64 { return d.bmag }
func (d *Dislocation) IsMobile() bool            { return d.mobile }
func (d *Dislocation) Rotation() tensor.Rotation { return d.rot }

func (d *Dislocation) TotalStress() tensor.Stress { return d.totalStress }
func (d *Dislocation) TotalForce() tensor.Vector3 { return d.force }
func (d *Dislocation) Velocity() tensor.Vector3   { return d.velocity }

func (d *Dislocation) SetPosition(p tensor.Vector3) { d.pos = p }
func (d *Dislocation) SetMobile()                   { d.mobile = true }
func (d *Dislocation) SetPinned()                   { d.mobile = false }

// SetBurgers replaces the Burgers vector and re-derives the local frame.
func (d *Dislocation) SetBurgers(b tensor.Vector3) {
	d.burgers = b
	d.calculateRotationMatrix()
}

// SetLineVector replaces the line vector and re-derives the local frame.
func (d *Dislocation) SetLineVector(l tensor.Vector3) {
	d.line = l
	d.calculateRotationMatrix()
}

// SetBirthIteration anchors the history traces to the global iteration
// counter. Called once when the dislocation enters the structure.
func (d *Dislocation) SetBirthIteration(iteration int) {
	d.hist.birth = iteration
}

// SetTotalStress records the superposed stress for the current iteration.
func (d *Dislocation) SetTotalStress(s tensor.Stress) {
	d.totalStress = s
	d.hist.stresses = append(d.hist.stresses, s)
}

// SetTotalForce records the Peach-Koehler force for the current iteration.
func (d *Dislocation) SetTotalForce(f tensor.Vector3) {
	d.force = f
	d.hist.forces = append(d.hist.forces, f)
}

// SetVelocity records the velocity for the current iteration.
func (d *Dislocation) SetVelocity(v tensor.Vector3) {
	d.velocity = v
	d.hist.velocities = append(d.hist.velocities, v)
}

// calculateRotationMatrix derives the local frame: z along the line vector,
// x along the in-plane Burgers direction (orthogonalized against z), y
// completing the right-handed triad.
func (d *Dislocation) calculateRotationMatrix() {
	z := d.line.Normalize()
	x := d.burgers.Sub(z.Scale(d.burgers.Dot(z)))
	if x.Magnitude() < 1e-12 {
		// Screw orientation: Burgers parallel to the line. Any in-plane
		// x-axis serves; reuse the stable perpendicular choice.
		d.rot = tensor.RotationAlignZ(z)
		return
	}
	x = x.Normalize()
	y := z.Cross(x)
	d.rot = tensor.RotationFromAxes(x, y, z)
}

// StressField evaluates the isotropic elastic stress field of the dislocation
// at point p and returns it in the global frame. The singular core (in-plane
// r -> 0) evaluates to the zero tensor.
func (d *Dislocation) StressField(p tensor.Vector3, mu, nu float64) tensor.Stress {
	local := d.rot.Rotate(p.Sub(d.pos))
	s := d.stressFieldLocal(local, mu, nu)
	if s.IsZero() {
		return s
	}
	return d.rot.UnrotateStress(s)
}

// stressFieldLocal evaluates the plane-strain edge-dislocation solution in
// the dislocation's own frame (line along z, Burgers along x).
func (d *Dislocation) stressFieldLocal(p tensor.Vector3, mu, nu float64) tensor.Stress {
	x, y := p.X, p.Y
	r2 := x*x + y*y
	if r2 < coreCutoff2 {
		return tensor.Stress{}
	}

	D := mu * d.bmag / (2.0 * math.Pi * (1.0 - nu))
	denom := r2 * r2

	sxx := -D * y * (3.0*x*x + y*y) / denom
	syy := D * y * (x*x - y*y) / denom
	sxy := D * x * (x*x - y*y) / denom

	return tensor.Stress{
		XX: sxx,
		YY: syy,
		ZZ: nu * (sxx + syy),
		XY: sxy,
	}
}

// ForcePeachKoehler computes the force per unit length on the dislocation due
// to sigma (global frame). If the resolved shear stress in the local frame is
// below tauCRSS in magnitude the dislocation is held by lattice friction and
// the force is exactly zero.
func (d *Dislocation) ForcePeachKoehler(sigma tensor.Stress, tauCRSS float64) tensor.Vector3 {
	local := d.rot.RotateStress(sigma)
	if math.Abs(local.XY) < tauCRSS {
		return tensor.Vector3{}
	}

	// f = (sigma . b) x t with b = bmag*ex and t = ez in the local frame.
	sb := tensor.Vector3{X: local.XX, Y: local.XY, Z: local.ZX}.Scale(d.bmag)
	f := sb.Cross(tensor.Vector3{Z: 1})
	return d.rot.Unrotate(f)
}

// ResolvedShear returns the local-frame xy shear component of sigma, the
// component driving glide on this dislocation's slip system.
func (d *Dislocation) ResolvedShear(sigma tensor.Stress) float64 {
	return d.rot.RotateStress(sigma).XY
}

// IdealTimeIncrement returns the largest non-negative dt for which this
// dislocation, moving at its current velocity, and the other defect, moving
// at otherVelocity, stay at least minDistance apart under linear
// extrapolation. Stationary or separating pairs return NoApproach. A pair
// already inside minDistance and still approaching closes at most half its
// remaining separation, so time keeps advancing until a local reaction
// resolves the pair.
func (d *Dislocation) IdealTimeIncrement(minDistance float64, other Defect, otherVelocity tensor.Vector3) float64 {
	dp := other.Position().Sub(d.pos)
	dv := otherVelocity.Sub(d.velocity)

	dist := dp.Magnitude()
	if dist == 0 {
		return 0
	}

	// Rate of change of separation at t=0; negative means approaching.
	rate := dp.Dot(dv) / dist
	if rate >= 0 {
		return NoApproach
	}

	if dist <= minDistance {
		return dist / (2.0 * -rate)
	}
	return (dist - minDistance) / -rate
}
