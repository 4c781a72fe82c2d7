package metrics

import (
	"github.com/ddsim/dd2d/internal/crystal"
)

type DislocationCount struct {
	name    string
	current float64
	peak    float64
}

func NewDislocationCount() *DislocationCount {
	return &DislocationCount{name: "dislocation_count"}
}

func (c *DislocationCount) Name() string { return c.name }

func (c *DislocationCount) Observe(p *crystal.Polycrystal, t float64) {
	c.current = float64(p.DislocationCount())
	if c.current > c.peak {
		c.peak = c.current
	}
}

func (c *DislocationCount) Value() float64 {
	return c.current
}

func (c *DislocationCount) Peak() float64 {
	return c.peak
}

func (c *DislocationCount) Reset() {
	c.current = 0
	c.peak = 0
}
