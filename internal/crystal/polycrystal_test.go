package crystal

import (
	"math"
	"testing"

	"github.com/ddsim/dd2d/internal/defect"
	"github.com/ddsim/dd2d/internal/tensor"
)

func singleGrainPolycrystal(t *testing.T, ds ...*defect.Dislocation) (*Polycrystal, *SlipPlane) {
	t.Helper()
	sp := testPlane()
	for _, d := range ds {
		sp.InsertDislocation(d)
	}
	g := NewGrain()
	g.AddSlipPlane(sp)
	p := NewPolycrystal()
	p.AddGrain(g)
	return p, sp
}

func TestGrainAppliedStressRoundTrip(t *testing.T) {
	g := NewGrain()
	g.SetOrientation(tensor.Vector3{X: 1, Y: 2, Z: -1})

	base := tensor.Stress{XX: 10e6, YY: -5e6, XY: 3e6, ZX: 1e6}
	g.SetAppliedStress(base)

	back := g.AppliedStressBase()
	if math.Abs(back.XX-base.XX) > 1 || math.Abs(back.XY-base.XY) > 1 {
		t.Errorf("grain frame round trip drifted: %+v", back)
	}

	local := g.AppliedStressLocal()
	baseTrace := base.XX + base.YY + base.ZZ
	localTrace := local.XX + local.YY + local.ZZ
	if math.Abs(baseTrace-localTrace) > 1e-3 {
		t.Errorf("trace not preserved by grain projection: %g vs %g", baseTrace, localTrace)
	}
}

func TestStressOnDislocationCrossGrain(t *testing.T) {
	// Two grains, one dislocation each: the query dislocation must see the
	// other grain's field plus the applied stress, never its own.
	mkGrain := func(x float64) (*Grain, *defect.Dislocation) {
		sp := NewSlipPlane(
			tensor.Vector3{X: x - 1e-6},
			tensor.Vector3{X: x + 1e-6},
			tensor.Vector3{Y: 1},
			tensor.Vector3{X: x},
		)
		d, _ := defect.NewDislocation(tensor.Vector3{X: 1}, tensor.Vector3{Z: 1}, tensor.Vector3{X: x}, 2.5e-10, true)
		sp.InsertDislocation(d)
		g := NewGrain()
		g.AddSlipPlane(sp)
		return g, d
	}

	g1, d1 := mkGrain(0)
	g2, d2 := mkGrain(4e-7)

	p := NewPolycrystal()
	p.AddGrain(g1)
	p.AddGrain(g2)
	applied := tensor.Stress{XY: 30e6}
	p.SetAppliedStress(applied)
	p.CalculateGrainAppliedStress()

	refs := p.AllDislocations()
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}

	sigma := p.StressOnDislocation(refs[0], mu, nu)
	want := applied.Add(d2.StressField(d1.Position(), mu, nu))
	if math.Abs(sigma.XY-want.XY) > math.Abs(want.XY)*1e-9 {
		t.Errorf("cross-grain superposition wrong: got %g want %g", sigma.XY, want.XY)
	}
	_ = d1
}

func TestGrainOrientationChangesResolvedStress(t *testing.T) {
	// A tilted grain must resolve a different share of the applied shear
	// than an upright one.
	build := func(orientation tensor.Vector3) tensor.Stress {
		d := mustDislocation(t, 0, 1)
		p, _ := singleGrainPolycrystal(t, d)
		p.Grain(0).SetOrientation(orientation)
		p.SetAppliedStress(tensor.Stress{XY: 30e6})
		p.CalculateGrainAppliedStress()
		refs := p.AllDislocations()
		if len(refs) != 1 {
			t.Fatalf("expected 1 ref, got %d", len(refs))
		}
		return p.StressOnDislocation(refs[0], mu, nu)
	}

	upright := build(tensor.Vector3{Z: 1})
	tilted := build(tensor.Vector3{Y: 1, Z: 1})

	if math.Abs(upright.XY-30e6) > 1 {
		t.Errorf("upright grain should see the full applied shear, got %g", upright.XY)
	}
	wantTilted := 30e6 / math.Sqrt2
	if math.Abs(tilted.XY-wantTilted) > 1 {
		t.Errorf("tilted grain resolved shear: got %g want %g", tilted.XY, wantTilted)
	}
	if math.Abs(upright.XY-tilted.XY) < 1e6 {
		t.Error("orientation must change the resolved stress")
	}
}

func TestIdealTimeIncrementGoverningMinimum(t *testing.T) {
	a := mustDislocation(t, -2e-7, 1)
	b := mustDislocation(t, 2e-7, -1)
	p, _ := singleGrainPolycrystal(t, a, b)

	a.SetVelocity(tensor.Vector3{X: 1e-3})
	b.SetVelocity(tensor.Vector3{X: -1e-3})

	maxDt := 1.0
	minDist := 1e-8
	dt := p.IdealTimeIncrement(minDist, maxDt)
	if dt >= maxDt {
		t.Fatal("approaching pair must govern below maxDt")
	}

	// Post-move separation must respect the minimum distance.
	p.MoveDislocations(dt)
	sep := b.Position().Sub(a.Position()).Magnitude()
	if sep < minDist*(1-1e-9) {
		t.Errorf("post-move separation %g below minimum %g", sep, minDist)
	}
}

func TestIdealTimeIncrementCappedByMax(t *testing.T) {
	a := mustDislocation(t, -2e-7, 1)
	b := mustDislocation(t, 2e-7, 1)
	p, _ := singleGrainPolycrystal(t, a, b)

	// Stationary: the cap governs.
	maxDt := 1e-6
	if dt := p.IdealTimeIncrement(1e-8, maxDt); dt != maxDt {
		t.Errorf("expected maxDt %g for stationary pair, got %g", maxDt, dt)
	}
}

func TestCalculateAllStressesRecordsHistory(t *testing.T) {
	a := mustDislocation(t, -2e-7, 1)
	b := mustDislocation(t, 2e-7, -1)
	p, _ := singleGrainPolycrystal(t, a, b)
	p.SetAppliedStress(tensor.Stress{XY: 10e6})
	p.CalculateGrainAppliedStress()

	p.CalculateAllStresses(mu, nu)
	p.CalculateAllStresses(mu, nu)

	if a.HistoryLen() != 2 {
		t.Errorf("expected 2 recorded iterations, got %d", a.HistoryLen())
	}
	if _, ok := a.StressAtIteration(1); !ok {
		t.Error("iteration 1 should be recorded")
	}
	if _, ok := a.StressAtIteration(2); ok {
		t.Error("iteration 2 should not be recorded")
	}
}

func TestTotalStressAtProbe(t *testing.T) {
	a := mustDislocation(t, 0, 1)
	p, _ := singleGrainPolycrystal(t, a)
	applied := tensor.Stress{XX: 5e6}
	p.SetAppliedStress(applied)

	probe := tensor.Vector3{X: 3e-7, Y: 1e-7}
	got := p.TotalStressAt(probe, mu, nu)
	want := applied.Add(a.StressField(probe, mu, nu))
	if math.Abs(got.XX-want.XX) > 1e-3 {
		t.Errorf("probe mismatch: got %+v want %+v", got, want)
	}
}

func TestGrainAccessOutOfRange(t *testing.T) {
	p := NewPolycrystal()
	p.AddGrain(NewGrain())
	if p.Grain(0) == nil {
		t.Error("grain 0 should exist")
	}
	if p.Grain(1) != nil || p.Grain(-1) != nil {
		t.Error("out-of-range grain access must return nil")
	}
}

func TestDefectRowWidthTracksPopulation(t *testing.T) {
	radius := 1e-8
	plus := mustDislocation(t, 0, 1)
	minus := mustDislocation(t, radius/2, -1)
	p, _ := singleGrainPolycrystal(t, plus, minus)

	if got := len(p.DefectRow()); got != 2 {
		t.Fatalf("expected row width 2, got %d", got)
	}
	p.CheckLocalReactions(radius)
	if got := len(p.DefectRow()); got != 0 {
		t.Errorf("expected empty row after annihilation, got width %d", got)
	}
}
