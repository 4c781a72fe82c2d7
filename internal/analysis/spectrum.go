// Package analysis post-processes recorded runs: spectral content of
// defect trajectories and summary statistics over snapshots.
package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the one-sided FFT of data.
// The input is zero-padded to the next power of two.
func PowerSpectrum(data []float64) []float64 {
	n := nextPow2(len(data))
	padded := make([]float64, n)
	copy(padded, data)

	spec := fft.FFTReal(padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantFrequency returns the index and magnitude of the largest
// non-DC bin of the power spectrum.
func DominantFrequency(data []float64) (int, float64) {
	ps := PowerSpectrum(data)
	best, bestVal := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > bestVal {
			best, bestVal = i, ps[i]
		}
	}
	return best, bestVal
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
