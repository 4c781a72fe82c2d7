package defect

import (
	"errors"

	"github.com/ddsim/dd2d/internal/tensor"
)

// Domain errors for defect construction and queries.
var (
	// ErrBurgersMagnitude indicates a non-positive Burgers vector magnitude.
	ErrBurgersMagnitude = errors.New("defect: burgers magnitude must be positive")

	// ErrDegenerateLine indicates a zero line vector.
	ErrDegenerateLine = errors.New("defect: line vector must be nonzero")
)

// Defect is a crystalline defect that sits at a point and radiates an elastic
// stress field. Dislocation and DislocationSource are the two variants.
type Defect interface {
	Position() tensor.Vector3

	// StressField evaluates the defect's stress contribution at point p in
	// the frame the defect's position is expressed in. mu is the shear
	// modulus, nu the Poisson ratio. Evaluation at the defect's own core
	// returns the zero tensor.
	StressField(p tensor.Vector3, mu, nu float64) tensor.Stress
}

// coreCutoff2 is the squared in-plane radius below which the singular field
// is zeroed instead of evaluated.
const coreCutoff2 = 1e-30
