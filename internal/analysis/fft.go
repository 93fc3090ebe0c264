package analysis

import (
	"errors"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

var ErrShortSeries = errors.New("analysis: series too short")

// PowerSpectrum returns the magnitude of each non-negative frequency bin
// of data, n/2+1 values for n samples.
func PowerSpectrum(data []float64) ([]float64, error) {
	if len(data) < 2 {
		return nil, ErrShortSeries
	}
	fft := fourier.NewFFT(len(data))
	coeff := fft.Coefficients(nil, data)

	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps, nil
}

// DominantFrequency returns the strongest non-zero frequency of data in
// cycles per unit time, for samples dt apart. The mean is removed first.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	if len(data) < 4 {
		return 0, ErrShortSeries
	}
	if dt <= 0 {
		return 0, errors.New("analysis: sample spacing must be positive")
	}

	mean := stat.Mean(data, nil)
	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	fft := fourier.NewFFT(len(centred))
	coeff := fft.Coefficients(nil, centred)

	best, bestMag := 0, 0.0
	for i := 1; i < len(coeff); i++ {
		if m := cmplx.Abs(coeff[i]); m > bestMag {
			best, bestMag = i, m
		}
	}
	if best == 0 {
		return 0, nil
	}
	return fft.Freq(best) / dt, nil
}
