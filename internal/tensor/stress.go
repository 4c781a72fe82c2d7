package tensor

// Stress is a symmetric second-rank stress tensor, stored as its three
// principal (diagonal) and three shear (off-diagonal) components. Values are
// immutable; operations return new tensors.
type Stress struct {
	XX, YY, ZZ float64
	XY, YZ, ZX float64
}

func (s Stress) Add(other Stress) Stress {
	return Stress{
		XX: s.XX + other.XX,
		YY: s.YY + other.YY,
		ZZ: s.ZZ + other.ZZ,
		XY: s.XY + other.XY,
		YZ: s.YZ + other.YZ,
		ZX: s.ZX + other.ZX,
	}
}

func (s Stress) Scale(f float64) Stress {
	return Stress{
		XX: s.XX * f, YY: s.YY * f, ZZ: s.ZZ * f,
		XY: s.XY * f, YZ: s.YZ * f, ZX: s.ZX * f,
	}
}

func (s Stress) IsZero() bool {
	return s == Stress{}
}

// Matrix expands the tensor into its full 3x3 form.
func (s Stress) Matrix() Matrix3 {
	return Matrix3{
		{s.XX, s.XY, s.ZX},
		{s.XY, s.YY, s.YZ},
		{s.ZX, s.YZ, s.ZZ},
	}
}

// StressFromMatrix collapses a 3x3 matrix to the six-component form. Small
// asymmetries from floating-point rotation are averaged away so symmetry is
// preserved exactly.
func StressFromMatrix(m Matrix3) Stress {
	return Stress{
		XX: m[0][0],
		YY: m[1][1],
		ZZ: m[2][2],
		XY: 0.5 * (m[0][1] + m[1][0]),
		YZ: 0.5 * (m[1][2] + m[2][1]),
		ZX: 0.5 * (m[2][0] + m[0][2]),
	}
}

// Strain mirrors Stress for symmetric strain tensors.
type Strain struct {
	XX, YY, ZZ float64
	XY, YZ, ZX float64
}

func (e Strain) Add(other Strain) Strain {
	return Strain{
		XX: e.XX + other.XX,
		YY: e.YY + other.YY,
		ZZ: e.ZZ + other.ZZ,
		XY: e.XY + other.XY,
		YZ: e.YZ + other.YZ,
		ZX: e.ZX + other.ZX,
	}
}

func (e Strain) Scale(f float64) Strain {
	return Strain{
		XX: e.XX * f, YY: e.YY * f, ZZ: e.ZZ * f,
		XY: e.XY * f, YZ: e.YZ * f, ZX: e.ZX * f,
	}
}
