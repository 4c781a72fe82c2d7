package sim

import "errors"

// Domain errors for stepper operations.
var (
	// ErrEmptyStructure indicates a polycrystal with no grains.
	ErrEmptyStructure = errors.New("sim: polycrystal has no grains")

	// ErrParameterBounds indicates a configuration value outside its valid
	// range.
	ErrParameterBounds = errors.New("sim: parameter out of valid bounds")
)
