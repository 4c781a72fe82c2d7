package tensor

import "math"

// Rotation maps between a base (global) frame and a local frame. The rows of
// the underlying matrix are the local axes expressed in the base frame, so
// v_local = R v_base and sigma_local = R sigma_base R^T.
type Rotation struct {
	m Matrix3
}

// IdentityRotation leaves vectors and tensors unchanged.
func IdentityRotation() Rotation {
	return Rotation{m: Identity()}
}

// RotationFromAxes builds a rotation whose local axes are the given vectors.
// The axes are normalized; they must be mutually orthogonal.
func RotationFromAxes(x, y, z Vector3) Rotation {
	x = x.Normalize()
	y = y.Normalize()
	z = z.Normalize()
	return Rotation{m: Matrix3{
		{x.X, x.Y, x.Z},
		{y.X, y.Y, y.Z},
		{z.X, z.Y, z.Z},
	}}
}

// RotationAlignZ builds an orthonormal frame with the local z-axis along v.
// The local x-axis is an arbitrary perpendicular, stable for a given v.
func RotationAlignZ(v Vector3) Rotation {
	z := v.Normalize()
	ref := Vector3{X: 1}
	if math.Abs(z.Dot(ref)) > 0.9 {
		ref = Vector3{Y: 1}
	}
	x := ref.Sub(z.Scale(ref.Dot(z))).Normalize()
	y := z.Cross(x)
	return RotationFromAxes(x, y, z)
}

// Matrix returns the underlying 3x3 matrix.
func (r Rotation) Matrix() Matrix3 {
	return r.m
}

// Rotate transforms a vector from the base frame into the local frame.
func (r Rotation) Rotate(v Vector3) Vector3 {
	return r.m.MulVec(v)
}

// Unrotate transforms a vector from the local frame back to the base frame.
func (r Rotation) Unrotate(v Vector3) Vector3 {
	return r.m.Transpose().MulVec(v)
}

// RotateStress expresses a base-frame stress tensor in the local frame
// (sigma' = R sigma R^T).
func (r Rotation) RotateStress(s Stress) Stress {
	rt := r.m.Transpose()
	return StressFromMatrix(r.m.Mul(s.Matrix()).Mul(rt))
}

// UnrotateStress expresses a local-frame stress tensor in the base frame.
func (r Rotation) UnrotateStress(s Stress) Stress {
	rt := r.m.Transpose()
	return StressFromMatrix(rt.Mul(s.Matrix()).Mul(r.m))
}

// Compose returns the rotation equivalent to applying first other, then r.
func (r Rotation) Compose(other Rotation) Rotation {
	return Rotation{m: r.m.Mul(other.m)}
}
