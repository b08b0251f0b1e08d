// Package pipeline models an ffmpeg audio filtergraph as an ordered list of
// stages. Stages are applied left to right; the rendered form is what ffmpeg
// accepts after -af.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyPipeline indicates a pipeline without stages.
	ErrEmptyPipeline = errors.New("pipeline has no stages")

	// ErrInvalidStage indicates a malformed stage specification.
	ErrInvalidStage = errors.New("invalid stage")
)

// StageType identifies the kind of processing a stage performs.
type StageType int

const (
	// StageGeneric is any filter this package has no special knowledge of.
	StageGeneric StageType = iota

	// StageHighPass is a two-pole high-pass biquad.
	StageHighPass

	// StageEqualizer is a peaking EQ biquad.
	StageEqualizer

	// StageBassShelf is a low-shelf biquad (ffmpeg "bass"/"lowshelf").
	StageBassShelf

	// StageCompressor is a dynamic range compressor.
	StageCompressor

	// StageLoudNorm is EBU R128 loudness normalization.
	StageLoudNorm
)

// TypeOf maps an ffmpeg filter name to its stage type.
func TypeOf(name string) StageType {
	switch name {
	case nameHighPass:
		return StageHighPass
	case nameEqualizer:
		return StageEqualizer
	case nameBass, nameLowShelf:
		return StageBassShelf
	case nameCompressor:
		return StageCompressor
	case nameLoudNorm:
		return StageLoudNorm
	default:
		return StageGeneric
	}
}

// String returns a short human readable name.
func (t StageType) String() string {
	switch t {
	case StageHighPass:
		return "highpass"
	case StageEqualizer:
		return "equalizer"
	case StageBassShelf:
		return "bass-shelf"
	case StageCompressor:
		return "compressor"
	case StageLoudNorm:
		return "loudnorm"
	default:
		return "generic"
	}
}

// Linear reports whether the stage is a linear time-invariant filter whose
// magnitude response can be computed from its parameters alone.
func (t StageType) Linear() bool {
	switch t {
	case StageHighPass, StageEqualizer, StageBassShelf:
		return true
	default:
		return false
	}
}

// Option is a single key=value filter argument.
type Option struct {
	Key   string
	Value string
}

// StageSpec specifies one filter in the graph.
type StageSpec struct {
	Name    string
	Options []Option
}

// Type returns the stage type derived from the filter name.
func (s StageSpec) Type() StageType {
	return TypeOf(s.Name)
}

// Get returns the value of the named option.
func (s StageSpec) Get(key string) (string, bool) {
	for _, o := range s.Options {
		if o.Key == key {
			return o.Value, true
		}
	}
	return "", false
}

// Validate checks the filter name and option keys.
func (s StageSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: empty filter name", ErrInvalidStage)
	}
	for _, r := range s.Name {
		if !isNameRune(r) {
			return fmt.Errorf("%w: filter name %q contains %q", ErrInvalidStage, s.Name, r)
		}
	}

	seen := make(map[string]struct{}, len(s.Options))
	for _, o := range s.Options {
		if o.Key == "" {
			return fmt.Errorf("%w: %s has an option without a key", ErrInvalidStage, s.Name)
		}
		for _, r := range o.Key {
			if !isNameRune(r) {
				return fmt.Errorf("%w: %s option key %q contains %q", ErrInvalidStage, s.Name, o.Key, r)
			}
		}
		if _, dup := seen[o.Key]; dup {
			return fmt.Errorf("%w: %s has duplicate option %q", ErrInvalidStage, s.Name, o.Key)
		}
		seen[o.Key] = struct{}{}
	}
	return nil
}

// Render returns the filter description, e.g. "highpass=f=20:t=q".
func (s StageSpec) Render() string {
	if len(s.Options) == 0 {
		return s.Name
	}

	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString(nameValueSep)
	for i, o := range s.Options {
		if i > 0 {
			b.WriteString(optionSeparator)
		}
		b.WriteString(o.Key)
		b.WriteString(keyValueSep)
		b.WriteString(Escape(o.Value))
	}
	return b.String()
}

// Pipeline is a validated, ordered filtergraph.
type Pipeline struct {
	stages []StageSpec
}

// BuildPipeline validates the stages and returns a pipeline that applies them
// in the given order. Loudness normalization must be the final stage because
// it measures the signal it receives.
func BuildPipeline(stages []StageSpec) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, ErrEmptyPipeline
	}
	if len(stages) > maxStages {
		return nil, fmt.Errorf("%w: %d stages exceeds limit of %d", ErrInvalidStage, len(stages), maxStages)
	}

	p := &Pipeline{
		stages: make([]StageSpec, 0, max(len(stages), defaultStageCapacity)),
	}

	for i, stage := range stages {
		if err := stage.Validate(); err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		if stage.Type() == StageLoudNorm && i != len(stages)-1 {
			return nil, fmt.Errorf("%w: %s must be the last stage (found at %d of %d)",
				ErrInvalidStage, stage.Name, i, len(stages))
		}
		opts := make([]Option, len(stage.Options))
		copy(opts, stage.Options)
		p.stages = append(p.stages, StageSpec{Name: stage.Name, Options: opts})
	}

	return p, nil
}

// GetStages returns the pipeline stages.
func (p *Pipeline) GetStages() []StageSpec {
	return p.stages
}

// Render returns the filtergraph string for ffmpeg's -af argument.
func (p *Pipeline) Render() string {
	parts := make([]string, len(p.stages))
	for i, s := range p.stages {
		parts[i] = s.Render()
	}
	return strings.Join(parts, stageSeparator)
}

// Escape quotes an option value for both filtergraph quoting levels.
// Plain values (numbers, identifiers, "-18dB") are returned unchanged.
func Escape(value string) string {
	if !strings.ContainsAny(value, optionSpecialChars+graphSpecialChars) {
		return value
	}
	return escapeChars(escapeChars(value, optionSpecialChars), graphSpecialChars)
}

func escapeChars(s, special string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isNameRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
