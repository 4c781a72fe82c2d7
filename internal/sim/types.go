package sim

import "github.com/ddsim/dd2d/internal/crystal"

// Config carries the immutable scalars the physics core consumes.
type Config struct {
	Mu             float64 // shear modulus, Pa
	Nu             float64 // Poisson ratio
	Drag           float64 // drag coefficient B in v = f/B
	TauCRSS        float64 // critical resolved shear stress for glide, Pa
	MinDistance    float64 // minimum allowed defect separation, m
	ReactionRadius float64 // annihilation distance, m
	MaxDt          float64 // cap on the adaptive time increment, s
	Iterations     int     // iteration budget
	SnapshotStride int     // record a defect snapshot every N iterations
}

func DefaultConfig() Config {
	return Config{
		Mu:             27e9,
		Nu:             0.33,
		Drag:           1e-4,
		TauCRSS:        0,
		MinDistance:    2.5e-9,
		ReactionRadius: 1e-9,
		MaxDt:          1e-6,
		Iterations:     1000,
		SnapshotStride: 1,
	}
}

// Result accumulates the outcome of a run.
type Result struct {
	// Times holds the simulation time after every iteration.
	Times []float64

	// SnapshotTimes and Snapshots hold the recorded defect rows; row width
	// varies as dislocations are nucleated or annihilated.
	SnapshotTimes []float64
	Snapshots     [][]float64

	Metrics     map[string]float64
	StepsTaken  int
	Nucleated   int
	Annihilated int
}

// StepInfo summarizes a single iteration.
type StepInfo struct {
	Dt          float64
	Nucleated   int
	Annihilated int
}

// Metric observes the polycrystal once per iteration and reduces to a scalar.
type Metric interface {
	Name() string
	Observe(p *crystal.Polycrystal, t float64)
	Value() float64
	Reset()
}

// Observer is notified after each completed iteration.
type Observer interface {
	OnStep(p *crystal.Polycrystal, iteration int, t float64)
}
