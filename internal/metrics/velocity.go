package metrics

import (
	"math"

	"github.com/ddsim/dd2d/internal/crystal"
)

// MeanVelocity averages the dislocation speed over the whole run.
type MeanVelocity struct {
	name    string
	sum     float64
	samples int
}

func NewMeanVelocity() *MeanVelocity {
	return &MeanVelocity{name: "mean_velocity"}
}

func (m *MeanVelocity) Name() string { return m.name }

func (m *MeanVelocity) Observe(p *crystal.Polycrystal, t float64) {
	for _, ref := range p.AllDislocations() {
		m.sum += ref.D.Velocity().Magnitude()
		m.samples++
	}
}

func (m *MeanVelocity) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanVelocity) Reset() {
	m.sum = 0
	m.samples = 0
}

// PlasticStrainRate accumulates b*v summed over mobile dislocations,
// the Orowan rate up to the swept-volume normalization.
type PlasticStrainRate struct {
	name    string
	current float64
	max     float64
}

func NewPlasticStrainRate() *PlasticStrainRate {
	return &PlasticStrainRate{name: "plastic_strain_rate"}
}

func (m *PlasticStrainRate) Name() string { return m.name }

func (m *PlasticStrainRate) Observe(p *crystal.Polycrystal, t float64) {
	rate := 0.0
	for _, ref := range p.AllDislocations() {
		rate += ref.D.BurgersMagnitude() * ref.D.Velocity().Magnitude()
	}
	m.current = rate
	m.max = math.Max(m.max, rate)
}

func (m *PlasticStrainRate) Value() float64 {
	return m.current
}

func (m *PlasticStrainRate) Reset() {
	m.current = 0
	m.max = 0
}
