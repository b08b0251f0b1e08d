package postprocess

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/go-audio-postprocess/internal/audiofile"
	"github.com/tphakala/go-audio-postprocess/internal/ffmpeg"
	"github.com/tphakala/go-audio-postprocess/internal/plotting"
	"github.com/tphakala/go-audio-postprocess/internal/response"
	"github.com/tphakala/go-audio-postprocess/internal/spectrum"
)

// CompareOptions controls spectrum estimation for Compare.
type CompareOptions struct {
	// SampleRate both files are decoded at.
	SampleRate int

	// Welch parameters.
	SegmentLength int
	Overlap       float64

	// Smooth applies Savitzky-Golay smoothing to the dB curves.
	Smooth       bool
	SmoothWindow int
	SmoothOrder  int

	// Frequency range kept, in Hz.
	FMin float64
	FMax float64

	// FFmpeg decodes formats the package cannot read natively.
	FFmpeg string
	Logger *zap.Logger
}

// DefaultCompareOptions returns the settings used to check the H2n chain.
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{
		SampleRate:    DefaultSampleRate,
		SegmentLength: spectrum.DefaultSegmentLength,
		Overlap:       spectrum.DefaultOverlap,
		Smooth:        true,
		SmoothWindow:  spectrum.DefaultSmoothWindow,
		SmoothOrder:   spectrum.DefaultSmoothOrder,
		FMin:          spectrum.DefaultFMin,
		FMax:          spectrum.DefaultFMax,
		FFmpeg:        ffmpeg.DefaultBinary,
	}
}

// Spectrum is the PSD of one file in dB/Hz.
type Spectrum struct {
	Name  string
	Path  string
	Freqs []float64
	DB    []float64
}

// Comparison holds the spectra of two files over the same frequencies.
type Comparison struct {
	A, B       Spectrum
	SampleRate int
	Samples    int
	FMin, FMax float64
}

// Compare estimates the power spectral density of a and b. Both files are
// decoded to mono, peak-normalized and truncated to the shorter length so
// Welch averages the same number of segments.
func Compare(ctx context.Context, a, b string, opts CompareOptions) (*Comparison, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}
	if opts.FMin <= 0 || opts.FMax <= opts.FMin {
		return nil, fmt.Errorf("%w: frequency range must satisfy 0 < fmin < fmax", ErrInvalidConfig)
	}

	var runner *ffmpeg.Runner
	if opts.FFmpeg != "" {
		runner = ffmpeg.NewRunner(opts.FFmpeg, logger)
	}
	loader := audiofile.NewLoader(runner, logger)

	var sigA, sigB *audiofile.Signal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sigA, err = loader.LoadMono(gctx, a, opts.SampleRate)
		return err
	})
	g.Go(func() (err error) {
		sigB, err = loader.LoadMono(gctx, b, opts.SampleRate)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := min(len(sigA.Samples), len(sigB.Samples))
	if n == 0 {
		return nil, fmt.Errorf("%w: %s has %d samples, %s has %d",
			ErrEmptySignal, a, len(sigA.Samples), b, len(sigB.Samples))
	}

	cmp := &Comparison{
		SampleRate: opts.SampleRate,
		Samples:    n,
		FMin:       opts.FMin,
		FMax:       opts.FMax,
	}

	var err error
	if cmp.A, err = estimate(a, sigA.Samples[:n], opts); err != nil {
		return nil, err
	}
	if cmp.B, err = estimate(b, sigB.Samples[:n], opts); err != nil {
		return nil, err
	}

	logger.Debug("spectra estimated",
		zap.Int("samples", n),
		zap.Int("bins", len(cmp.A.Freqs)),
		zap.Bool("smoothed", opts.Smooth))
	return cmp, nil
}

func estimate(path string, samples []float64, opts CompareOptions) (Spectrum, error) {
	psd, err := spectrum.Welch(samples, float64(opts.SampleRate), opts.SegmentLength, opts.Overlap)
	if err != nil {
		if errors.Is(err, spectrum.ErrEmptySignal) {
			return Spectrum{}, fmt.Errorf("%w: %s", ErrEmptySignal, path)
		}
		return Spectrum{}, fmt.Errorf("%s: %w", path, err)
	}

	db := spectrum.ToDB(psd.Power)
	if opts.Smooth {
		db = spectrum.Smooth(db, opts.SmoothWindow, opts.SmoothOrder)
	}
	freqs, db := spectrum.Band(psd.Freqs, db, opts.FMin, opts.FMax)

	return Spectrum{
		Name:  filepath.Base(path),
		Path:  path,
		Freqs: freqs,
		DB:    db,
	}, nil
}

// Difference returns B minus A in dB at each frequency.
func (c *Comparison) Difference() []float64 {
	d := make([]float64, len(c.A.DB))
	for i := range d {
		d[i] = c.B.DB[i] - c.A.DB[i]
	}
	return d
}

// MeanDifference averages Difference over [lo, hi] Hz.
func (c *Comparison) MeanDifference(lo, hi float64) (float64, bool) {
	d := c.Difference()
	var sum float64
	var n int
	for i, f := range c.A.Freqs {
		if f >= lo && f <= hi {
			sum += d[i]
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Plot writes both spectra to path. The image format follows the extension
// (.png, .svg, .pdf).
func (c *Comparison) Plot(path string) error {
	fig := plotting.PSDFigure(
		plotting.Series{Name: c.A.Name, Freqs: c.A.Freqs, Values: c.A.DB},
		plotting.Series{Name: c.B.Name, Freqs: c.B.Freqs, Values: c.B.DB},
	)
	fig.XMin, fig.XMax = c.FMin, c.FMax
	return fig.Save(path)
}

// ResponseCurve is the predicted gain of a chain's linear filters.
type ResponseCurve struct {
	Freqs []float64
	DB    []float64
}

// PredictResponse computes the combined magnitude response of the chain's
// highpass, equalizer and shelf filters. Dynamics and loudness filters
// depend on the signal and are left out.
func PredictResponse(chain Chain, sampleRate float64) (*ResponseCurve, error) {
	if sampleRate <= 2*response.DefaultFMin {
		return nil, fmt.Errorf("%w: sample rate %g is too low", ErrInvalidConfig, sampleRate)
	}
	freqs := response.LogFrequencies(response.DefaultFMin, min(response.DefaultFMax, sampleRate/2), response.DefaultPoints)
	curve, err := response.Chain(chain.LinearFilters(), sampleRate, freqs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidChain, err)
	}
	return &ResponseCurve{Freqs: curve.Freqs, DB: curve.DB}, nil
}

// Plot writes the response curve to path, labelled with name.
func (r *ResponseCurve) Plot(path, name string) error {
	return plotting.ResponseFigure(
		plotting.Series{Name: name, Freqs: r.Freqs, Values: r.DB},
	).Save(path)
}

// GainAt returns the predicted gain at the sample closest to hz.
func (r *ResponseCurve) GainAt(hz float64) float64 {
	best := 0
	for i, f := range r.Freqs {
		if math.Abs(f-hz) < math.Abs(r.Freqs[best]-hz) {
			best = i
		}
	}
	return r.DB[best]
}
