package crystal

import (
	"math"
	"testing"

	"github.com/ddsim/dd2d/internal/defect"
	"github.com/ddsim/dd2d/internal/tensor"
)

const (
	mu = 27e9
	nu = 0.33
)

func testPlane() *SlipPlane {
	return NewSlipPlane(
		tensor.Vector3{X: -1e-6},
		tensor.Vector3{X: 1e-6},
		tensor.Vector3{Y: 1},
		tensor.Vector3{},
	)
}

func mustDislocation(t *testing.T, x float64, sign float64) *defect.Dislocation {
	t.Helper()
	d, err := defect.NewDislocation(
		tensor.Vector3{X: sign},
		tensor.Vector3{Z: 1},
		tensor.Vector3{X: x},
		2.5e-10,
		true,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return d
}

func assertSorted(t *testing.T, sp *SlipPlane) {
	t.Helper()
	ds := sp.Dislocations()
	for i := 0; i+1 < len(ds); i++ {
		a := sp.LineCoordinate(ds[i].Position())
		b := sp.LineCoordinate(ds[i+1].Position())
		if a > b {
			t.Fatalf("ordering invariant broken at %d: %g > %g", i, a, b)
		}
	}
}

func TestInsertKeepsOrder(t *testing.T) {
	sp := testPlane()
	for _, x := range []float64{3e-7, -5e-7, 0, 8e-7, -1e-7} {
		sp.InsertDislocation(mustDislocation(t, x, 1))
		assertSorted(t, sp)
	}
	if len(sp.Dislocations()) != 5 {
		t.Fatalf("expected 5 dislocations, got %d", len(sp.Dislocations()))
	}
}

func TestTotalStressExcludesQueryDefect(t *testing.T) {
	sp := testPlane()
	a := mustDislocation(t, 0, 1)
	b := mustDislocation(t, 5e-7, 1)
	sp.InsertDislocation(a)
	sp.InsertDislocation(b)

	sigma := sp.TotalStressAt(a.Position(), mu, nu, a, tensor.Stress{})
	want := b.StressField(a.Position(), mu, nu)
	if math.Abs(sigma.XY-want.XY) > math.Abs(want.XY)*1e-12 {
		t.Errorf("stress at a should be b's field alone: got %g want %g", sigma.XY, want.XY)
	}
}

func TestTotalStressIncludesBackground(t *testing.T) {
	sp := testPlane()
	applied := tensor.Stress{XY: 40e6}
	sigma := sp.TotalStressAt(tensor.Vector3{X: 1e-7}, mu, nu, nil, applied)
	if sigma != applied {
		t.Errorf("empty plane should return the background stress, got %+v", sigma)
	}
}

func TestPinnedDislocationGetsZeroVelocity(t *testing.T) {
	sp := testPlane()
	pinned, _ := defect.NewDislocation(tensor.Vector3{X: 1}, tensor.Vector3{Z: 1}, tensor.Vector3{X: 2e-7}, 2.5e-10, false)
	sp.InsertDislocation(pinned)

	pinned.SetTotalStress(tensor.Stress{XY: 50e6})
	sp.CalculateVelocities(1e-4, 0)

	if !pinned.Velocity().IsZero() {
		t.Errorf("pinned dislocation must have zero velocity, got %+v", pinned.Velocity())
	}
	if pinned.TotalForce().IsZero() {
		t.Error("pinned dislocation should still record its force")
	}
}

func TestMoveKeepsOrderAndLine(t *testing.T) {
	sp := testPlane()
	a := mustDislocation(t, -2e-7, 1)
	b := mustDislocation(t, 2e-7, 1)
	sp.InsertDislocation(a)
	sp.InsertDislocation(b)

	// Drive a past b so the sort must reorder.
	a.SetVelocity(tensor.Vector3{X: 1e-2})
	b.SetVelocity(tensor.Vector3{})
	sp.MoveDislocations(1e-4)

	assertSorted(t, sp)
	if sp.Dislocations()[0] != b {
		t.Error("expected b first after a overtakes it")
	}
	if a.Position().Y != 0 || a.Position().Z != 0 {
		t.Error("motion must stay on the slip plane line")
	}
}

func TestAnnihilation(t *testing.T) {
	sp := testPlane()
	radius := 1e-8
	plus := mustDislocation(t, 0, 1)
	minus := mustDislocation(t, radius/2, -1)
	bystander := mustDislocation(t, 5e-7, 1)
	sp.InsertDislocation(plus)
	sp.InsertDislocation(minus)
	sp.InsertDislocation(bystander)

	removed := sp.CheckLocalReactions(radius)
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if len(sp.Dislocations()) != 1 || sp.Dislocations()[0] != bystander {
		t.Fatal("only the bystander should survive")
	}
	assertSorted(t, sp)

	// Annihilated pair must no longer contribute to stress queries.
	sigma := sp.TotalStressAt(tensor.Vector3{X: -3e-7}, mu, nu, nil, tensor.Stress{})
	want := bystander.StressField(tensor.Vector3{X: -3e-7}, mu, nu)
	if math.Abs(sigma.XY-want.XY) > math.Abs(want.XY)*1e-12+1e-20 {
		t.Error("annihilated dislocations still contribute to superposition")
	}
}

func TestSameSignPairsDoNotAnnihilate(t *testing.T) {
	sp := testPlane()
	sp.InsertDislocation(mustDislocation(t, 0, 1))
	sp.InsertDislocation(mustDislocation(t, 1e-9, 1))

	if removed := sp.CheckLocalReactions(1e-8); removed != 0 {
		t.Errorf("same-sign pair must not react, removed %d", removed)
	}
}

func TestCheckSourcesEmitsDipole(t *testing.T) {
	sp := testPlane()
	src, _ := defect.NewDislocationSource(
		tensor.Vector3{X: 1}, tensor.Vector3{Z: 1}, tensor.Vector3{},
		2.5e-10, 10e6, 2,
	)
	sp.InsertSource(src)

	applied := tensor.Stress{XY: 20e6}
	minDist := 1e-8

	if n := sp.CheckSources(0, mu, nu, minDist, applied); n != 0 {
		t.Fatalf("no emission before the delay elapses, got %d", n)
	}
	if n := sp.CheckSources(1, mu, nu, minDist, applied); n != 2 {
		t.Fatalf("expected dipole emission on iteration 2, got %d", n)
	}

	ds := sp.Dislocations()
	if len(ds) != 2 {
		t.Fatalf("expected 2 dislocations, got %d", len(ds))
	}
	if !ds[0].Burgers().Add(ds[1].Burgers()).IsZero() {
		t.Error("dipole must carry opposite Burgers vectors")
	}
	assertSorted(t, sp)
	if src.Counter() != 0 {
		t.Error("counter should reset after emission")
	}
}

func TestNucleatedDipoleStaysOnPlaneLine(t *testing.T) {
	sp := testPlane()
	minDist := 1e-8
	src, _ := defect.NewDislocationSource(
		tensor.Vector3{X: 1}, tensor.Vector3{Z: 1}, tensor.Vector3{},
		2.5e-10, 10e6, 1,
	)
	sp.InsertSource(src)

	if n := sp.CheckSources(0, mu, nu, minDist, tensor.Stress{XY: 500e6}); n != 2 {
		t.Fatalf("expected dipole emission, got %d", n)
	}

	// The plane runs along x through the origin, so both dislocations must
	// land at y = z = 0 with symmetric line coordinates.
	coords := make([]float64, 0, 2)
	for _, d := range sp.Dislocations() {
		p := d.Position()
		if math.Abs(p.Y) > 1e-20 || math.Abs(p.Z) > 1e-20 {
			t.Errorf("dislocation at %+v left the plane line", p)
		}
		coords = append(coords, sp.LineCoordinate(p))
	}
	if math.Abs(coords[0]+coords[1]) > 1e-20 {
		t.Errorf("line coordinates %g, %g not symmetric about the source", coords[0], coords[1])
	}
	if math.Abs(math.Abs(coords[0])-minDist) > 1e-20 {
		t.Errorf("offset %g, want %g from the source", math.Abs(coords[0]), minDist)
	}
}

func TestCheckSourcesBlockedByCrowding(t *testing.T) {
	sp := testPlane()
	minDist := 1e-8
	src, _ := defect.NewDislocationSource(
		tensor.Vector3{X: 1}, tensor.Vector3{Z: 1}, tensor.Vector3{},
		2.5e-10, 10e6, 1,
	)
	sp.InsertSource(src)
	// An existing dislocation sits exactly where the dipole would land.
	sp.InsertDislocation(mustDislocation(t, minDist, 1))

	applied := tensor.Stress{XY: 500e6}
	before := len(sp.Dislocations())
	if n := sp.CheckSources(0, mu, nu, minDist, applied); n != 0 {
		t.Fatalf("crowded emission must be a no-op, nucleated %d", n)
	}
	if len(sp.Dislocations()) != before {
		t.Error("blocked emission must not change the population")
	}
	if src.Counter() == 0 {
		t.Error("blocked source must keep accumulating")
	}
}
