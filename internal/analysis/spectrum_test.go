package analysis

import (
	"math"
	"testing"
)

func TestPowerSpectrumSinePeak(t *testing.T) {
	n := 256
	cycles := 16
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * float64(cycles) * float64(i) / float64(n))
	}

	idx, mag := DominantFrequency(data)
	if idx != cycles {
		t.Errorf("dominant bin = %d, want %d", idx, cycles)
	}
	if mag < float64(n)/4 {
		t.Errorf("peak magnitude = %v, too small", mag)
	}
}

func TestPowerSpectrumPadsToPow2(t *testing.T) {
	ps := PowerSpectrum(make([]float64, 100))
	if len(ps) != 64 {
		t.Errorf("spectrum length = %d, want 64", len(ps))
	}
}

func TestPopulationCurve(t *testing.T) {
	snaps := [][]float64{{1, 2}, {1, 2, 3, 4}, {}}
	got := PopulationCurve(snaps)
	want := []float64{2, 4, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("count[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTraceSkipsNarrowSnapshots(t *testing.T) {
	snaps := [][]float64{{1, 2, 3}, {4, 5}, {6, 7, 8}}
	got := Trace(snaps, 2)
	if len(got) != 2 || got[0] != 3 || got[1] != 8 {
		t.Errorf("trace = %v, want [3 8]", got)
	}
}

func TestMeanPositions(t *testing.T) {
	snaps := [][]float64{{-1, 1}, {}, {3, 5, 7}}
	got := MeanPositions(snaps)
	if math.Abs(got[0]) > 1e-12 {
		t.Errorf("mean[0] = %v, want 0", got[0])
	}
	if got[1] != 0 {
		t.Errorf("mean[1] = %v, want 0", got[1])
	}
	if math.Abs(got[2]-5) > 1e-12 {
		t.Errorf("mean[2] = %v, want 5", got[2])
	}
}
