package sim

import (
	"context"
	"fmt"

	"github.com/ddsim/dd2d/internal/crystal"
	"github.com/ddsim/dd2d/internal/tensor"
)

// Stepper drives the synchronous simulation step across a polycrystal. One
// call to Step performs the full phase sequence: applied-stress projection,
// stress superposition, force/velocity derivation, global time-increment
// selection, motion, nucleation and annihilation.
type Stepper struct {
	pc        *crystal.Polycrystal
	metrics   []Metric
	observers []Observer

	iteration int
	time      float64
}

func New(pc *crystal.Polycrystal) *Stepper {
	return &Stepper{pc: pc}
}

func (s *Stepper) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Stepper) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Stepper) Polycrystal() *crystal.Polycrystal { return s.pc }
func (s *Stepper) Iteration() int                    { return s.iteration }
func (s *Stepper) Time() float64                     { return s.time }

// minChunk keeps goroutine overhead below the cost of a stress superposition
// for small defect populations.
const minChunk = 8

// Step advances the structure by one synchronous iteration and returns the
// time increment taken.
func (s *Stepper) Step(cfg Config) StepInfo {
	// Phase 1: project the applied stress into every grain's frame.
	s.pc.CalculateGrainAppliedStress()

	// Phase 2: superpose stresses for all dislocations against the
	// previous iteration's positions. Results land in a fresh buffer and
	// are committed only after the full barrier, so no defect observes
	// another's already-updated state within the step.
	refs := s.pc.AllDislocations()
	stresses := make([]tensor.Stress, len(refs))
	ParallelFor(len(refs), minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			stresses[i] = s.pc.StressOnDislocation(refs[i], cfg.Mu, cfg.Nu)
		}
	})
	for i, ref := range refs {
		ref.D.SetTotalStress(stresses[i])
	}

	// Phase 3: forces and velocities under the drag law.
	s.pc.CalculateDislocationVelocities(cfg.Drag, cfg.TauCRSS)

	// Phase 4: one governing dt for the whole structure.
	dt := s.pc.IdealTimeIncrement(cfg.MinDistance, cfg.MaxDt)

	// Phase 5: synchronous motion.
	s.pc.MoveDislocations(dt)

	// Phases 6-7: topology changes.
	nucleated := s.pc.CheckDislocationSources(s.iteration+1, cfg.Mu, cfg.Nu, cfg.MinDistance)
	annihilated := s.pc.CheckLocalReactions(cfg.ReactionRadius)

	s.iteration++
	s.time += dt

	return StepInfo{Dt: dt, Nucleated: nucleated, Annihilated: annihilated}
}

// Run executes the configured iteration budget, recording times, snapshots
// and metrics. The context cancels the run between iterations.
func (s *Stepper) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(s.pc.Grains()) == 0 {
		return nil, ErrEmptyStructure
	}

	result := &Result{
		Times:   make([]float64, 0, cfg.Iterations),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < cfg.Iterations; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		info := s.Step(cfg)
		result.StepsTaken++
		result.Nucleated += info.Nucleated
		result.Annihilated += info.Annihilated
		result.Times = append(result.Times, s.time)

		for _, m := range s.metrics {
			m.Observe(s.pc, s.time)
		}
		for _, obs := range s.observers {
			obs.OnStep(s.pc, s.iteration, s.time)
		}

		if cfg.SnapshotStride > 0 && s.iteration%cfg.SnapshotStride == 0 {
			result.SnapshotTimes = append(result.SnapshotTimes, s.time)
			result.Snapshots = append(result.Snapshots, s.pc.DefectRow())
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Mu <= 0 {
		return fmt.Errorf("%w: shear modulus must be positive, got %g", ErrParameterBounds, cfg.Mu)
	}
	if cfg.Nu <= -1 || cfg.Nu >= 0.5 {
		return fmt.Errorf("%w: poisson ratio must be in (-1, 0.5), got %g", ErrParameterBounds, cfg.Nu)
	}
	if cfg.Drag <= 0 {
		return fmt.Errorf("%w: drag coefficient must be positive, got %g", ErrParameterBounds, cfg.Drag)
	}
	if cfg.MinDistance <= 0 {
		return fmt.Errorf("%w: min distance must be positive, got %g", ErrParameterBounds, cfg.MinDistance)
	}
	if cfg.ReactionRadius < 0 {
		return fmt.Errorf("%w: reaction radius must be non-negative, got %g", ErrParameterBounds, cfg.ReactionRadius)
	}
	if cfg.MaxDt <= 0 {
		return fmt.Errorf("%w: max dt must be positive, got %g", ErrParameterBounds, cfg.MaxDt)
	}
	if cfg.Iterations <= 0 {
		return fmt.Errorf("%w: iteration budget must be positive, got %d", ErrParameterBounds, cfg.Iterations)
	}
	return nil
}
