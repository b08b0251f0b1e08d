package postprocess

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors returned by the package.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid postprocess configuration")

	// ErrInvalidChain indicates a malformed filter chain.
	ErrInvalidChain = errors.New("invalid filter chain")

	// ErrUnknownPreset indicates a preset name that is not built in.
	ErrUnknownPreset = errors.New("unknown preset")

	// ErrSameFile indicates an output path that would overwrite its input.
	ErrSameFile = errors.New("output path equals input path")

	// ErrEmptySignal indicates a comparison with no overlapping samples.
	ErrEmptySignal = errors.New("signal is empty")
)

// Output selects the encoding of processed files.
type Output struct {
	// Codec is the ffmpeg audio encoder (-c:a).
	Codec string `yaml:"codec"`

	// Bitrate is the target bitrate (-b:a), e.g. "192k".
	Bitrate string `yaml:"bitrate"`

	// Extension replaces the input file extension when set (".mp3").
	// Empty keeps the input name unchanged.
	Extension string `yaml:"extension"`
}

// DefaultOutput returns MP3 at 192 kbit/s with the input extension kept.
func DefaultOutput() Output {
	return Output{Codec: DefaultCodec, Bitrate: DefaultBitrate}
}

// Config holds processing configuration.
type Config struct {
	// Prefix is prepended to the input base name to form the output name.
	Prefix string

	// Chain is the filter chain applied to every file.
	Chain Chain

	// Output selects codec, bitrate and extension.
	Output Output

	// Jobs bounds how many files ProcessFiles runs at once.
	Jobs int

	// DryRun logs the ffmpeg command instead of running it.
	DryRun bool

	// ReportLoudness asks loudnorm for its measurements and attaches them
	// to each Result.
	ReportLoudness bool

	// FFmpeg is the ffmpeg binary name or path.
	FFmpeg string
}

// DefaultConfig returns the configuration for H2n recordings.
func DefaultConfig() Config {
	return Config{
		Prefix: DefaultPrefix,
		Chain:  DefaultChain(),
		Output: DefaultOutput(),
		Jobs:   defaultJobs,
		FFmpeg: "ffmpeg",
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Chain.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.Jobs < 1 || c.Jobs > maxJobs {
		return fmt.Errorf("%w: jobs must be 1-%d", ErrInvalidConfig, maxJobs)
	}

	if strings.ContainsAny(c.Prefix, `/\`) {
		return fmt.Errorf("%w: prefix %q must not contain a path separator", ErrInvalidConfig, c.Prefix)
	}

	if c.Output.Extension != "" && !strings.HasPrefix(c.Output.Extension, ".") {
		return fmt.Errorf("%w: extension %q must start with a dot", ErrInvalidConfig, c.Output.Extension)
	}

	if c.FFmpeg == "" {
		return fmt.Errorf("%w: ffmpeg binary is empty", ErrInvalidConfig)
	}

	return nil
}

// fileConfig is the YAML form. Pointer fields distinguish "unset" from zero.
type fileConfig struct {
	Prefix         *string    `yaml:"prefix"`
	Preset         string     `yaml:"preset"`
	Jobs           *int       `yaml:"jobs"`
	ReportLoudness *bool      `yaml:"report_loudness"`
	FFmpeg         *string    `yaml:"ffmpeg"`
	Output         Output     `yaml:"output"`
	Chain          *yamlChain `yaml:"chain"`
}

// yamlChain decodes a sequence of single-key mappings, keeping option order:
//
//	chain:
//	  - highpass: {f: 20, t: q, width: 0.7}
//	  - loudnorm: {I: -14, TP: -1.5, LRA: 11}
type yamlChain struct {
	chain Chain
}

func (y *yamlChain) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: chain must be a list of filters", node.Line)
	}

	chain := make(Chain, 0, len(node.Content))
	for _, item := range node.Content {
		f, err := decodeFilter(item)
		if err != nil {
			return err
		}
		chain = append(chain, f)
	}
	y.chain = chain
	return nil
}

func decodeFilter(node *yaml.Node) (Filter, error) {
	// A bare name is a filter without options.
	if node.Kind == yaml.ScalarNode {
		return Filter{Name: node.Value}, nil
	}
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return Filter{}, fmt.Errorf("line %d: filter must be a single name: options mapping", node.Line)
	}

	name, body := node.Content[0], node.Content[1]
	f := Filter{Name: name.Value}

	switch body.Kind {
	case yaml.ScalarNode:
		if body.Tag != "!!null" {
			return Filter{}, fmt.Errorf("line %d: options of %s must be a mapping", body.Line, f.Name)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(body.Content); i += 2 {
			k, v := body.Content[i], body.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				return Filter{}, fmt.Errorf("line %d: option %s.%s must be a scalar", v.Line, f.Name, k.Value)
			}
			f.Options = append(f.Options, Option{Key: k.Value, Value: v.Value})
		}
	default:
		return Filter{}, fmt.Errorf("line %d: options of %s must be a mapping", body.Line, f.Name)
	}
	return f, nil
}

// ParseConfig applies YAML overrides to base. Unknown keys are rejected.
// A preset replaces the chain; an explicit chain takes precedence over both.
func ParseConfig(data []byte, base Config) (Config, error) {
	cfg := base
	cfg.Chain = base.Chain.Clone()

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if fc.Prefix != nil {
		cfg.Prefix = *fc.Prefix
	}
	if fc.Jobs != nil {
		cfg.Jobs = *fc.Jobs
	}
	if fc.ReportLoudness != nil {
		cfg.ReportLoudness = *fc.ReportLoudness
	}
	if fc.FFmpeg != nil {
		cfg.FFmpeg = *fc.FFmpeg
	}
	if fc.Output.Codec != "" {
		cfg.Output.Codec = fc.Output.Codec
	}
	if fc.Output.Bitrate != "" {
		cfg.Output.Bitrate = fc.Output.Bitrate
	}
	if fc.Output.Extension != "" {
		cfg.Output.Extension = fc.Output.Extension
	}

	if fc.Preset != "" {
		chain, err := ChainForPreset(fc.Preset)
		if err != nil {
			return Config{}, err
		}
		cfg.Chain = chain
	}
	if fc.Chain != nil {
		cfg.Chain = fc.Chain.chain
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML configuration file and applies it to base.
func LoadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := ParseConfig(data, base)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
