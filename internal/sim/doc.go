// Package sim orchestrates discrete dislocation dynamics steps.
//
// A [Stepper] drives one [crystal.Polycrystal] through synchronous
// iterations. Each iteration runs the fixed phase sequence: applied-stress
// projection, stress superposition over all defects (parallelized with a
// full barrier before any state is committed), Peach-Koehler forces and
// drag-law velocities, selection of a single governing time increment,
// motion, dipole nucleation and annihilation.
//
// Stepper instances are not safe for concurrent use; the internal
// parallelism of the stress phase is contained behind [ParallelFor]'s
// barrier.
package sim
