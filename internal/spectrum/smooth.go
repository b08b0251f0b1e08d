package spectrum

import (
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/mat"
)

// Smooth applies a Savitzky-Golay filter, reducing the variance of a
// spectrum while keeping its features. The window is clamped to the longest
// odd length not exceeding len(y) and raised to 5 if smaller; the polynomial
// order is clamped to window-2. Edges are fitted with the polynomial of the
// first and last full windows. Inputs shorter than 5 points are returned
// unchanged.
func Smooth(y []float64, window, order int) []float64 {
	n := len(y)
	out := make([]float64, n)
	copy(out, y)

	w := min(window, n-(1-n%2))
	if w < minSmoothWindow || w%2 == 0 {
		w = minSmoothWindow
	}
	order = max(min(order, w-2), 0)
	if n < w {
		return out
	}

	pinv, ok := savgolProjection(w, order)
	if !ok {
		return out
	}

	half := w / 2
	coeffs := mat.Row(nil, 0, pinv)
	f64.ConvolveValid(out[half:n-half], y, coeffs)

	head := fitPolynomial(pinv, y[:w])
	tail := fitPolynomial(pinv, y[n-w:])
	for i := range half {
		out[i] = evalPolynomial(head, float64(i-half))
		out[n-w+half+1+i] = evalPolynomial(tail, float64(i+1))
	}

	return out
}

// savgolProjection returns the (order+1)×w least squares projection
// (AᵀA)⁻¹Aᵀ for the Vandermonde matrix A over x = -half..half. Row 0 is the
// smoothing kernel.
func savgolProjection(w, order int) (*mat.Dense, bool) {
	half := w / 2
	a := mat.NewDense(w, order+1, nil)
	for i := range w {
		x := float64(i - half)
		v := 1.0
		for j := 0; j <= order; j++ {
			a.Set(i, j, v)
			v *= x
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)

	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		return nil, false
	}

	var pinv mat.Dense
	pinv.Mul(&inv, a.T())
	return &pinv, true
}

func fitPolynomial(pinv *mat.Dense, window []float64) []float64 {
	var c mat.VecDense
	c.MulVec(pinv, mat.NewVecDense(len(window), window))
	return c.RawVector().Data
}

func evalPolynomial(c []float64, x float64) float64 {
	var y float64
	for j := len(c) - 1; j >= 0; j-- {
		y = y*x + c[j]
	}
	return y
}
