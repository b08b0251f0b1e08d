// Package spectrum estimates power spectral density with Welch's method and
// post-processes the estimate for display.
package spectrum

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

var (
	// ErrEmptySignal indicates an estimate was requested for no samples.
	ErrEmptySignal = errors.New("signal is empty")

	// ErrInvalidParams indicates unusable Welch parameters.
	ErrInvalidParams = errors.New("invalid spectrum parameters")
)

// PSD is a one-sided power spectral density estimate.
type PSD struct {
	Freqs []float64 // Hz, bin k at k*fs/SegmentLength
	Power []float64 // Units²/Hz

	SegmentLength int
	Segments      int
}

// Welch estimates the one-sided PSD of y sampled at fs using Hann-windowed
// segments of segLen samples overlapping by the given fraction. No detrending
// is applied and segment periodograms are averaged with the mean. segLen is
// clamped to len(y).
func Welch(y []float64, fs float64, segLen int, overlap float64) (*PSD, error) {
	n := len(y)
	if n == 0 {
		return nil, ErrEmptySignal
	}
	if fs <= 0 || segLen <= 0 || overlap < 0 || overlap >= 1 {
		return nil, fmt.Errorf("%w: fs=%g segment=%d overlap=%g", ErrInvalidParams, fs, segLen, overlap)
	}

	nperseg := min(segLen, n)
	noverlap := int(float64(nperseg) * overlap)
	step := nperseg - noverlap
	segments := (n - noverlap) / step

	win := HannPeriodic(nperseg)
	// density scaling
	scale := 1.0 / (fs * f64.DotProductUnsafe(win, win))

	bins := nperseg/2 + 1
	fft := fourier.NewFFT(nperseg)
	seg := make([]float64, nperseg)
	coeffs := make([]complex128, bins)
	acc := make([]float64, bins)

	for s := range segments {
		start := s * step
		for i := range nperseg {
			seg[i] = y[start+i] * win[i]
		}
		coeffs = fft.Coefficients(coeffs, seg)
		for k, c := range coeffs {
			re, im := real(c), imag(c)
			acc[k] += re*re + im*im
		}
	}

	f64.Scale(acc, acc, scale/float64(segments))

	// Double everything except DC, and Nyquist when it exists.
	last := bins
	if nperseg%2 == 0 {
		last--
	}
	if last > 1 {
		f64.Scale(acc[1:last], acc[1:last], oneSidedFactor)
	}

	freqs := make([]float64, bins)
	df := fs / float64(nperseg)
	for k := range freqs {
		freqs[k] = float64(k) * df
	}

	return &PSD{
		Freqs:         freqs,
		Power:         acc,
		SegmentLength: nperseg,
		Segments:      segments,
	}, nil
}

// HannPeriodic returns the periodic (DFT-even) Hann window used for
// spectral analysis.
func HannPeriodic(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{1}
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// ToDB converts power to decibels, flooring at 1e-20 to avoid log of zero.
func ToDB(power []float64) []float64 {
	out := make([]float64, len(power))
	for i, p := range power {
		out[i] = 10 * math.Log10(math.Max(p, powerFloor))
	}
	return out
}

// Band returns the points whose frequency lies in [fmin, fmax].
func Band(freqs, values []float64, fmin, fmax float64) (bandFreqs, bandValues []float64) {
	for i, f := range freqs {
		if f >= fmin && f <= fmax {
			bandFreqs = append(bandFreqs, f)
			bandValues = append(bandValues, values[i])
		}
	}
	return bandFreqs, bandValues
}
