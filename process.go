package postprocess

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/go-audio-postprocess/internal/ffmpeg"
	"github.com/tphakala/go-audio-postprocess/internal/pipeline"
)

// ExecError is returned when ffmpeg exits unsuccessfully. Stderr carries
// ffmpeg's diagnostics.
type ExecError = ffmpeg.ExecError

// LoudnormStats is the measurement report printed by loudnorm.
type LoudnormStats = ffmpeg.LoudnormStats

// Result describes one processed file.
type Result struct {
	Input    string
	Output   string
	Args     []string
	Duration time.Duration
	DryRun   bool

	// Loudness is set when Config.ReportLoudness is enabled and ffmpeg
	// printed a report.
	Loudness *LoudnormStats
}

// ProgressFunc is called after each file of a batch, successful or not.
// It may be called from several goroutines when Jobs is above 1.
type ProgressFunc func(input string, res *Result, err error)

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProgress registers a callback for batch progress.
func WithProgress(fn ProgressFunc) ProcessorOption {
	return func(p *Processor) {
		p.progress = fn
	}
}

// Processor applies a filter chain to audio files with ffmpeg.
type Processor struct {
	cfg      Config
	graph    string
	runner   *ffmpeg.Runner
	logger   *zap.Logger
	progress ProgressFunc
}

// New creates a processor. The configuration is validated and copied.
func New(cfg Config, opts ...ProcessorOption) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Chain = cfg.Chain.Clone()

	p := &Processor{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	chain := cfg.Chain
	if cfg.ReportLoudness {
		if chain.Index(loudnormFilter) < 0 {
			p.logger.Warn("loudness report requested but the chain has no loudnorm filter")
		}
		chain = chain.withLoudnessReport()
	}
	pipe, err := pipeline.BuildPipeline(chain)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidChain, err)
	}
	p.graph = pipe.Render()
	p.logger.Debug("filter chain ready",
		zap.Int("stages", len(pipe.GetStages())),
		zap.String("graph", p.graph))
	p.runner = ffmpeg.NewRunner(cfg.FFmpeg, p.logger)
	p.runner.ProbeBinary = probeBinaryFor(cfg.FFmpeg)

	return p, nil
}

// Config returns a copy of the processor configuration.
func (p *Processor) Config() Config {
	cfg := p.cfg
	cfg.Chain = p.cfg.Chain.Clone()
	return cfg
}

// Filtergraph returns the rendered -af argument.
func (p *Processor) Filtergraph() string {
	return p.graph
}

// Args returns the ffmpeg arguments that process in into out.
func (p *Processor) Args(in, out string) []string {
	return ffmpeg.NewCommand().
		Input(in).
		AudioFilter(p.graph).
		Codec(p.cfg.Output.Codec).
		Bitrate(p.cfg.Output.Bitrate).
		Output(out).
		Args()
}

// LookPath resolves the configured ffmpeg binary.
func (p *Processor) LookPath() (string, error) {
	return p.runner.LookPath()
}

// OutputPath places the output next to the input, named prefix + base name.
// A non-empty ext replaces the input extension.
func OutputPath(in, prefix, ext string) string {
	dir, base := filepath.Split(in)
	if ext != "" {
		base = strings.TrimSuffix(base, filepath.Ext(base)) + ext
	}
	return filepath.Join(dir, prefix+base)
}

// OutputPathFor returns the output path for in under the configured naming.
func (p *Processor) OutputPathFor(in string) string {
	return OutputPath(in, p.cfg.Prefix, p.cfg.Output.Extension)
}

// ProcessFile runs the chain over in, writing out. An existing out is
// overwritten. The call blocks until ffmpeg exits; a failing ffmpeg yields
// an *ExecError.
func (p *Processor) ProcessFile(ctx context.Context, in, out string) (*Result, error) {
	if samePath(in, out) {
		return nil, fmt.Errorf("%w: %s", ErrSameFile, in)
	}
	if _, err := os.Stat(in); err != nil {
		return nil, fmt.Errorf("input %s: %w", in, err)
	}

	res := &Result{
		Input:  in,
		Output: out,
		Args:   p.Args(in, out),
		DryRun: p.cfg.DryRun,
	}

	p.logger.Info(fmt.Sprintf("Processing %s → %s", in, out))
	if p.cfg.DryRun {
		p.logger.Info("dry run", zap.String("command", p.runner.Binary+" "+strings.Join(res.Args, " ")))
		return res, nil
	}

	output, err := p.runner.Run(ctx, res.Args)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", in, err)
	}
	res.Duration = output.Duration

	if p.cfg.ReportLoudness {
		p.attachLoudness(res, output.Stderr)
	}

	p.logger.Debug("processed",
		zap.String("input", in),
		zap.String("output", out),
		zap.Duration("elapsed", res.Duration))
	return res, nil
}

func (p *Processor) attachLoudness(res *Result, stderr []byte) {
	stats, err := ffmpeg.ParseLoudnormStats(stderr)
	if err != nil {
		p.logger.Warn("no loudness report", zap.String("output", res.Output), zap.Error(err))
		return
	}
	res.Loudness = stats

	fields := []zap.Field{
		zap.String("output", res.Output),
		zap.String("input_i", stats.InputI),
		zap.String("output_i", stats.OutputI),
		zap.String("output_tp", stats.OutputTP),
		zap.String("normalization", stats.NormalizationType),
	}
	if n, err := stats.Numeric(); err == nil && math.Abs(n.TargetOffset) > loudnessOffsetLimit {
		p.logger.Warn("output misses loudness target", append(fields, zap.Float64("target_offset", n.TargetOffset))...)
		return
	}
	p.logger.Info("loudness", fields...)
}

// ProcessFiles processes every input to OutputPathFor(input). All inputs are
// attempted; failures are combined into the returned error. Results are in
// input order, with nil entries for failed files. Up to Config.Jobs files
// are processed concurrently.
func (p *Processor) ProcessFiles(ctx context.Context, inputs []string) ([]*Result, error) {
	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run", runID))
	logger.Info("batch started", zap.Int("files", len(inputs)), zap.Int("jobs", p.cfg.Jobs))

	results := make([]*Result, len(inputs))
	errs := make([]error, len(inputs))

	var g errgroup.Group
	g.SetLimit(p.cfg.Jobs)

	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = fmt.Errorf("%s: %w", in, err)
			} else {
				results[i], errs[i] = p.ProcessFile(ctx, in, p.OutputPathFor(in))
			}
			if errs[i] != nil {
				logger.Error("failed to process file", zap.String("input", in), zap.Error(errs[i]))
			}
			if p.progress != nil {
				p.progress(in, results[i], errs[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	err := multierr.Combine(errs...)
	logger.Info("batch finished",
		zap.Int("files", len(inputs)),
		zap.Int("failed", len(multierr.Errors(err))))
	return results, err
}

func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// IsExecError reports whether err came from a failing ffmpeg run and
// returns it.
func IsExecError(err error) (*ExecError, bool) {
	var execErr *ExecError
	if errors.As(err, &execErr) {
		return execErr, true
	}
	return nil, false
}
