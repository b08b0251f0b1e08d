package testutil

import (
	"math"
	"math/rand/v2"
)

// WhiteNoise returns n uniformly distributed samples in [-amp, amp] from a
// seeded generator, so tests are reproducible.
func WhiteNoise(n int, amp float64, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * (2*rng.Float64() - 1)
	}
	return out
}

// Sine returns n samples of a sine wave at freq Hz.
func Sine(n int, freq, sampleRate, amp float64) []float64 {
	out := make([]float64, n)
	omega := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = amp * math.Sin(omega*float64(i))
	}
	return out
}
