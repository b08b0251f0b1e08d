// Package response predicts the magnitude response of the linear stages of
// an ffmpeg filter chain. Coefficients follow the RBJ audio EQ cookbook,
// which is what ffmpeg's biquad filters implement.
package response

import (
	"math"
	"math/cmplx"
)

// Coefficients of a normalized biquad (a0 = 1).
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Identity passes the signal unchanged.
var Identity = Coefficients{B0: 1}

// Bandwidth describes a filter width the way ffmpeg's "t" and "w" options do.
type Bandwidth struct {
	Type  string
	Value float64
}

// alpha returns the RBJ alpha term for the given normalized frequency.
// gainA is only used by shelf slope widths.
func (bw Bandwidth) alpha(freq, w0, gainA float64) float64 {
	sw := math.Sin(w0)
	switch bw.Type {
	case widthHertz:
		return sw / (2 * freq / bw.Value)
	case widthKHertz:
		return sw / (2 * freq / (bw.Value * 1000))
	case widthOctave:
		return sw * math.Sinh(math.Ln2/2*bw.Value*w0/sw)
	case widthSlope:
		return sw / 2 * math.Sqrt((gainA+1/gainA)*(1/bw.Value-1)+2)
	default:
		return sw / (2 * bw.Value)
	}
}

// Highpass designs a high-pass filter. poles selects the one-pole or the
// two-pole (biquad) form.
func Highpass(freq float64, bw Bandwidth, poles int, sampleRate float64) Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return Identity
	}

	if poles == 1 {
		a1 := -math.Exp(-w0)
		b0 := (1 - a1) / 2
		return Coefficients{B0: b0, B1: -b0, A1: a1}
	}

	cw := math.Cos(w0)
	alpha := bw.alpha(freq, w0, 1)
	return normalize(
		(1+cw)/2, -(1 + cw), (1+cw)/2,
		1+alpha, -2*cw, 1-alpha,
	)
}

// Peak designs a peaking EQ with gain in dB.
func Peak(freq, gainDB float64, bw Bandwidth, sampleRate float64) Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return Identity
	}

	a := math.Pow(10, gainDB/40)
	cw := math.Cos(w0)
	alpha := bw.alpha(freq, w0, a)
	return normalize(
		1+alpha*a, -2*cw, 1-alpha*a,
		1+alpha/a, -2*cw, 1-alpha/a,
	)
}

// LowShelf designs a low-shelf filter with gain in dB.
func LowShelf(freq, gainDB float64, bw Bandwidth, sampleRate float64) Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return Identity
	}

	a := math.Pow(10, gainDB/40)
	cw := math.Cos(w0)
	beta := 2 * math.Sqrt(a) * bw.alpha(freq, w0, a)
	return normalize(
		a*((a+1)-(a-1)*cw+beta),
		2*a*((a-1)-(a+1)*cw),
		a*((a+1)-(a-1)*cw-beta),
		(a+1)+(a-1)*cw+beta,
		-2*((a-1)+(a+1)*cw),
		(a+1)+(a-1)*cw-beta,
	)
}

// Response returns the complex frequency response H(e^jw) at freq.
func (c Coefficients) Response(freq, sampleRate float64) complex128 {
	w := 2 * math.Pi * freq / sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
	return num / den
}

// MagnitudeSquared returns |H(f)|².
func (c Coefficients) MagnitudeSquared(freq, sampleRate float64) float64 {
	h := c.Response(freq, sampleRate)
	return real(h)*real(h) + imag(h)*imag(h)
}

// MagnitudeDB returns the gain at freq in decibels.
func (c Coefficients) MagnitudeDB(freq, sampleRate float64) float64 {
	return 10 * math.Log10(c.MagnitudeSquared(freq, sampleRate))
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || freq <= 0 || freq >= sampleRate/2 {
		return 0, false
	}
	return 2 * math.Pi * freq / sampleRate, true
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return Identity
	}
	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
