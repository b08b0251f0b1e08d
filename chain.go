package postprocess

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tphakala/go-audio-postprocess/internal/pipeline"
)

// Option is a single key=value filter argument.
type Option = pipeline.Option

// Filter is one ffmpeg audio filter with its options in order.
type Filter = pipeline.StageSpec

// Chain is an ordered list of filters. Filters are applied left to right.
type Chain []Filter

// Float returns an option with the shortest exact decimal form of v.
func Float(key string, v float64) Option {
	return Option{Key: key, Value: strconv.FormatFloat(v, 'f', -1, 64)}
}

// Int returns an integer option.
func Int(key string, v int) Option {
	return Option{Key: key, Value: strconv.Itoa(v)}
}

// String returns an option with a literal value.
func String(key, v string) Option {
	return Option{Key: key, Value: v}
}

// DefaultChain returns the chain used for Zoom H2n recordings.
func DefaultChain() Chain {
	return Chain{
		// sub-bass rumble
		{Name: "highpass", Options: []Option{Float("f", 20), String("t", "q"), Float("width", 0.7)}},
		// low boost
		{Name: "equalizer", Options: []Option{Float("f", 75), String("t", "q"), Float("w", 1), Float("g", 5)}},
		// mud cut
		{Name: "equalizer", Options: []Option{Float("f", 350), String("t", "q"), Float("w", 1), Float("g", -5)}},
		// low-shelf fattening
		{Name: "bass", Options: []Option{Float("g", 3), Float("f", 90), String("t", "q"), Float("w", 0.7)}},
		loudnorm(),
	}
}

func loudnorm() Filter {
	return Filter{Name: loudnormFilter, Options: []Option{
		Float("I", targetIntegrated),
		Float("TP", targetTruePeak),
		Float("LRA", targetLRA),
	}}
}

// Presets lists the built-in chain names.
func Presets() []string {
	return []string{PresetH2N, PresetPunch, PresetCompressed}
}

// ChainForPreset returns the named built-in chain.
func ChainForPreset(name string) (Chain, error) {
	switch strings.ToLower(name) {
	case PresetH2N, "":
		return DefaultChain(), nil

	case PresetPunch:
		// A focused bump instead of the wide shelf.
		c := DefaultChain()
		i := c.Index("bass")
		c[i] = Filter{Name: "equalizer", Options: []Option{Float("f", 100), String("t", "q"), Float("w", 1), Float("g", 3)}}
		return c, nil

	case PresetCompressed:
		c := DefaultChain()
		comp := Filter{Name: "acompressor", Options: []Option{
			String("threshold", "-18dB"),
			Float("ratio", 3),
			Float("attack", 20),
			Float("release", 250),
			Float("makeup", 1),
		}}
		return slices.Insert(c, c.Index(loudnormFilter), comp), nil

	default:
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownPreset, name, strings.Join(Presets(), ", "))
	}
}

// String renders the chain as an ffmpeg filtergraph for -af.
func (c Chain) String() string {
	parts := make([]string, len(c))
	for i, f := range c {
		parts[i] = f.Render()
	}
	return strings.Join(parts, ",")
}

// Validate checks that the chain is non-empty, that filter names and option
// keys are well formed and unique, and that loudness normalization, if
// present, comes last.
func (c Chain) Validate() error {
	if _, err := pipeline.BuildPipeline(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChain, err)
	}
	return nil
}

// Clone returns a deep copy.
func (c Chain) Clone() Chain {
	if c == nil {
		return nil
	}
	out := make(Chain, len(c))
	for i, f := range c {
		out[i] = Filter{Name: f.Name, Options: slices.Clone(f.Options)}
	}
	return out
}

// Find returns the first filter with the given name.
func (c Chain) Find(name string) (Filter, bool) {
	if i := c.Index(name); i >= 0 {
		return c[i], true
	}
	return Filter{}, false
}

// Index returns the position of the first filter with the given name, or -1.
func (c Chain) Index(name string) int {
	return slices.IndexFunc(c, func(f Filter) bool { return f.Name == name })
}

// Set returns a copy of the chain with the option set on every filter with
// the given name, replacing an existing value or appending a new option.
func (c Chain) Set(name string, opt Option) Chain {
	out := c.Clone()
	for i := range out {
		if out[i].Name != name {
			continue
		}
		j := slices.IndexFunc(out[i].Options, func(o Option) bool { return o.Key == opt.Key })
		if j >= 0 {
			out[i].Options[j] = opt
		} else {
			out[i].Options = append(out[i].Options, opt)
		}
	}
	return out
}

// withLoudnessReport makes loudnorm print its measurements as JSON.
func (c Chain) withLoudnessReport() Chain {
	return c.Set(loudnormFilter, String(printFormatKey, printFormatJSON))
}

// LinearFilters returns the filters whose frequency response is fixed by
// their parameters.
func (c Chain) LinearFilters() []Filter {
	var out []Filter
	for _, f := range c {
		if f.Type().Linear() {
			out = append(out, f)
		}
	}
	return out
}
