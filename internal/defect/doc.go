// Package defect models the line defects of the simulation.
//
// Two concrete types implement the [Defect] capability:
//
//   - [Dislocation]: a mobile or pinned line defect with a Burgers vector,
//     line vector and per-iteration stress/force/velocity history
//   - [DislocationSource]: a latent nucleation site that emits a dipole once
//     a critical resolved shear stress is sustained
//
// Stress fields are evaluated in each defect's local frame (line vector along
// z, Burgers direction along x) and rotated back to the global frame. The
// singular core is guarded: self-evaluation yields the zero tensor.
package defect
