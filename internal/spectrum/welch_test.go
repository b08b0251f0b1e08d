package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-postprocess/internal/testutil"
)

const (
	testRate = 44100.0
	testSeed = 42
)

func TestWelch_ParsevalWhiteNoise(t *testing.T) {
	const (
		n   = 44100 * 4
		amp = 0.5
	)
	y := testutil.WhiteNoise(n, amp, testSeed)

	psd, err := Welch(y, testRate, 4096, DefaultOverlap)
	require.NoError(t, err)

	df := psd.Freqs[1] - psd.Freqs[0]
	var total float64
	for _, p := range psd.Power {
		total += p * df
	}

	// Uniform noise on [-a, a] has variance a²/3.
	variance := amp * amp / 3
	assert.InEpsilon(t, variance, total, 0.05)
}

func TestWelch_WhiteNoiseIsFlat(t *testing.T) {
	y := testutil.WhiteNoise(44100*4, 0.5, testSeed)
	psd, err := Welch(y, testRate, 4096, DefaultOverlap)
	require.NoError(t, err)

	db := ToDB(psd.Power)
	low := testutil.MeanInBand(psd.Freqs, db, 100, 1000)
	high := testutil.MeanInBand(psd.Freqs, db, 5000, 15000)
	assert.InDelta(t, low, high, 0.5)
}

func TestWelch_SinePeak(t *testing.T) {
	const (
		fs     = 8000.0
		segLen = 1024
		toneHz = 1000.0 // exactly bin 128
	)
	y := testutil.Sine(segLen*8, toneHz, fs, 1)

	psd, err := Welch(y, fs, segLen, DefaultOverlap)
	require.NoError(t, err)

	peak := 0
	for k, p := range psd.Power {
		if p > psd.Power[peak] {
			peak = k
		}
	}
	assert.InDelta(t, toneHz, psd.Freqs[peak], 1e-9)
}

func TestWelch_ConstantSignalOneSidedScaling(t *testing.T) {
	// For a constant of 1 with a periodic Hann window of length N the DFT
	// has |X0| = N/2 and |X1| = N/4; Σw² = 3N/8.
	const n = 8
	y := []float64{1, 1, 1, 1, 1, 1, 1, 1}

	psd, err := Welch(y, 1, n, DefaultOverlap)
	require.NoError(t, err)
	require.Len(t, psd.Power, n/2+1)
	assert.Equal(t, 1, psd.Segments)

	assert.InDelta(t, 16.0/3, psd.Power[0], testutil.DefaultTolerance, "DC not doubled")
	assert.InDelta(t, 8.0/3, psd.Power[1], testutil.DefaultTolerance, "positive bin doubled")
	for k := 2; k < len(psd.Power); k++ {
		assert.InDelta(t, 0, psd.Power[k], testutil.DefaultTolerance)
	}
}

func TestWelch_SegmentClamping(t *testing.T) {
	y := testutil.WhiteNoise(100, 1, testSeed)

	psd, err := Welch(y, testRate, DefaultSegmentLength, DefaultOverlap)
	require.NoError(t, err)

	assert.Equal(t, 100, psd.SegmentLength)
	assert.Equal(t, 1, psd.Segments)
	assert.Len(t, psd.Freqs, 51)
	assert.InDelta(t, testRate/2, psd.Freqs[50], testutil.DefaultTolerance)
	testutil.AssertStrictlyIncreasing(t, psd.Freqs)
}

func TestWelch_SegmentCount(t *testing.T) {
	y := make([]float64, DefaultSegmentLength*4)

	psd, err := Welch(y, testRate, DefaultSegmentLength, DefaultOverlap)
	require.NoError(t, err)

	// (n - noverlap) / step
	assert.Equal(t, 7, psd.Segments)
}

func TestWelch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		y       []float64
		fs      float64
		segLen  int
		overlap float64
		want    error
	}{
		{"empty", nil, testRate, 16, 0.5, ErrEmptySignal},
		{"zero rate", []float64{1, 2}, 0, 16, 0.5, ErrInvalidParams},
		{"zero segment", []float64{1, 2}, testRate, 0, 0.5, ErrInvalidParams},
		{"full overlap", []float64{1, 2}, testRate, 16, 1, ErrInvalidParams},
		{"negative overlap", []float64{1, 2}, testRate, 16, -0.1, ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Welch(tt.y, tt.fs, tt.segLen, tt.overlap)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHannPeriodic(t *testing.T) {
	assert.Nil(t, HannPeriodic(0))
	assert.Equal(t, []float64{1}, HannPeriodic(1))

	w := HannPeriodic(4)
	want := []float64{0, 0.5, 1, 0.5}
	for i := range want {
		assert.InDelta(t, want[i], w[i], testutil.DefaultTolerance)
	}

	// Periodic windows are symmetric once the first sample is dropped.
	testutil.AssertSymmetric(t, HannPeriodic(16)[1:], testutil.DefaultTolerance)
}

func TestToDB(t *testing.T) {
	db := ToDB([]float64{1, 0.01, 0, -1})

	assert.InDelta(t, 0, db[0], testutil.DefaultTolerance)
	assert.InDelta(t, -20, db[1], testutil.DefaultTolerance)
	assert.InDelta(t, -200, db[2], testutil.DefaultTolerance)
	assert.InDelta(t, -200, db[3], testutil.DefaultTolerance)
	testutil.AssertNoNaNOrInf(t, db)
}

func TestBand(t *testing.T) {
	freqs := []float64{0, 5, 10, 500, 10000, 10001, 22050}
	vals := []float64{0, 1, 2, 3, 4, 5, 6}

	f, v := Band(freqs, vals, DefaultFMin, DefaultFMax)
	assert.Equal(t, []float64{10, 500, 10000}, f)
	assert.Equal(t, []float64{2, 3, 4}, v)

	f, v = Band(freqs, vals, 30000, 40000)
	assert.Empty(t, f)
	assert.Empty(t, v)
}

func TestSmooth_PreservesCubic(t *testing.T) {
	const n = 200
	y := make([]float64, n)
	for i := range y {
		x := float64(i) / 10
		y[i] = 2 + 0.5*x - 0.3*x*x + 0.02*x*x*x
	}

	got := Smooth(y, DefaultSmoothWindow, DefaultSmoothOrder)
	require.Len(t, got, n)
	for i := range y {
		assert.InDelta(t, y[i], got[i], 1e-4, "index %d", i)
	}
}

func TestSmooth_ReducesNoiseVariance(t *testing.T) {
	y := testutil.WhiteNoise(2000, 1, testSeed)

	got := Smooth(y, DefaultSmoothWindow, DefaultSmoothOrder)

	in := testutil.Variance(y[100:1900])
	out := testutil.Variance(got[100:1900])
	assert.Less(t, out, in/5)
}

func TestSmooth_ShortInputs(t *testing.T) {
	tests := []struct {
		name string
		y    []float64
	}{
		{"empty", []float64{}},
		{"single", []float64{3}},
		{"four points", []float64{1, 5, 2, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Smooth(tt.y, DefaultSmoothWindow, DefaultSmoothOrder)
			assert.Equal(t, tt.y, got)
		})
	}
}

func TestSmooth_WindowClampedToLength(t *testing.T) {
	// n=10 clamps the window to 9 and a quadratic survives exactly.
	y := make([]float64, 10)
	for i := range y {
		x := float64(i)
		y[i] = 1 - 2*x + 0.5*x*x
	}

	got := Smooth(y, DefaultSmoothWindow, DefaultSmoothOrder)
	for i := range y {
		assert.InDelta(t, y[i], got[i], 1e-9, "index %d", i)
	}
}

func TestSmooth_DoesNotModifyInput(t *testing.T) {
	y := testutil.WhiteNoise(300, 1, testSeed)
	orig := append([]float64(nil), y...)

	_ = Smooth(y, DefaultSmoothWindow, DefaultSmoothOrder)
	assert.Equal(t, orig, y)
}
