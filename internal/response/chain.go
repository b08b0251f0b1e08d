package response

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/tphakala/go-audio-postprocess/internal/pipeline"
)

// ErrUnsupportedStage indicates a stage whose response cannot be predicted.
var ErrUnsupportedStage = errors.New("stage response cannot be predicted")

// Curve is a sampled magnitude response.
type Curve struct {
	Freqs []float64
	DB    []float64
}

// Design converts a highpass, equalizer or bass/lowshelf stage to biquad
// coefficients, applying ffmpeg's defaults for omitted options. Both the
// short and long option names are recognized.
func Design(stage pipeline.StageSpec, sampleRate float64) (Coefficients, error) {
	p := params{stage: stage}

	var c Coefficients
	switch stage.Type() {
	case pipeline.StageHighPass:
		freq := p.float(defaultHighPassFreq, "f", "frequency")
		bw := p.bandwidth(defaultHighPassWidth)
		poles := int(p.float(defaultHighPassPoles, "p", "poles"))
		c = Highpass(freq, bw, poles, sampleRate)
	case pipeline.StageEqualizer:
		freq := p.float(0, "f", "frequency")
		gain := p.float(0, "g", "gain")
		c = Peak(freq, gain, p.bandwidth(defaultEqualizerWidth), sampleRate)
	case pipeline.StageBassShelf:
		freq := p.float(defaultBassFreq, "f", "frequency")
		gain := p.float(0, "g", "gain")
		c = LowShelf(freq, gain, p.bandwidth(defaultBassWidth), sampleRate)
	default:
		return Identity, fmt.Errorf("%w: %s", ErrUnsupportedStage, stage.Name)
	}

	if p.err != nil {
		return Identity, fmt.Errorf("stage %s: %w", stage.Name, p.err)
	}
	return c, nil
}

// Chain sums the magnitude responses of the linear stages at each frequency.
// Stages that are not linear (compressors, loudness normalization, unknown
// filters) are skipped.
func Chain(stages []pipeline.StageSpec, sampleRate float64, freqs []float64) (*Curve, error) {
	var sections []Coefficients
	for _, s := range stages {
		if !s.Type().Linear() {
			continue
		}
		c, err := Design(s, sampleRate)
		if err != nil {
			return nil, err
		}
		sections = append(sections, c)
	}

	db := make([]float64, len(freqs))
	for i, f := range freqs {
		for _, c := range sections {
			db[i] += c.MagnitudeDB(f, sampleRate)
		}
	}

	out := make([]float64, len(freqs))
	copy(out, freqs)
	return &Curve{Freqs: out, DB: db}, nil
}

// LogFrequencies returns n points spaced logarithmically over [fmin, fmax].
func LogFrequencies(fmin, fmax float64, n int) []float64 {
	if n <= 0 || fmin <= 0 || fmax < fmin {
		return nil
	}
	if n == 1 {
		return []float64{fmin}
	}

	out := make([]float64, n)
	lo, hi := math.Log10(fmin), math.Log10(fmax)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = math.Pow(10, lo+step*float64(i))
	}
	out[n-1] = fmax
	return out
}

type params struct {
	stage pipeline.StageSpec
	err   error
}

func (p *params) float(def float64, keys ...string) float64 {
	for _, k := range keys {
		v, ok := p.stage.Get(k)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			if p.err == nil {
				p.err = fmt.Errorf("option %s=%q: %w", k, v, err)
			}
			return def
		}
		return f
	}
	return def
}

func (p *params) bandwidth(def float64) Bandwidth {
	typ := widthQFactor
	for _, k := range []string{"t", "width_type"} {
		if v, ok := p.stage.Get(k); ok {
			typ = v
			break
		}
	}
	switch typ {
	case widthHertz, widthKHertz, widthOctave, widthQFactor, widthSlope:
	default:
		if p.err == nil {
			p.err = fmt.Errorf("unknown width type %q", typ)
		}
	}
	return Bandwidth{Type: typ, Value: p.float(def, "w", "width")}
}
