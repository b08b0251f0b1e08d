// Command h2n-postprocess cleans up Zoom H2n recordings with a fixed ffmpeg
// filter chain and checks the chain by comparing spectra.
//
// Usage:
//
//	h2n-postprocess STE-000.WAV STE-001.WAV          # writes processed-STE-000.WAV, ...
//	h2n-postprocess --prefix eq- --ext .mp3 *.WAV
//	h2n-postprocess --preset compressed --jobs 4 --progress *.WAV
//	h2n-postprocess compare white_noise.mp3 processed.mp3 -o spectrum.png
//	h2n-postprocess noise -d 10 white_noise.mp3
//	h2n-postprocess selftest --dir /tmp/h2n
//	h2n-postprocess chain --plot response.png
//	h2n-postprocess watch /media/H2N/STEREO/FOLDER01
//	h2n-postprocess probe STE-000.WAV
//
// ffmpeg must be on PATH or given with --ffmpeg.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	postprocess "github.com/tphakala/go-audio-postprocess"
)

// app holds state shared by all subcommands.
type app struct {
	out    io.Writer
	errOut io.Writer
	logger *zap.Logger

	prefix         string
	preset         string
	configPath     string
	codec          string
	bitrate        string
	ext            string
	jobs           int
	dryRun         bool
	ffmpeg         string
	verbose        bool
	progress       bool
	reportLoudness bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(&app{out: os.Stdout, errOut: os.Stderr}).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "h2n-postprocess [flags] FILE...",
		Short: "Apply the H2n filter chain to recordings with ffmpeg",
		Long: `Applies a fixed chain of ffmpeg audio filters to field recordings:

  highpass   20 Hz      removes sub-bass rumble
  equalizer  75 Hz +5   low boost
  equalizer  350 Hz -5  mud cut
  bass       90 Hz +3   low-shelf fattening
  loudnorm   -14 LUFS   EBU R128 loudness normalization

Each FILE is written next to itself with the output prefix prepended.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initLogger()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runProcess(cmd, args)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.prefix, "prefix", postprocess.DefaultPrefix, "prefix prepended to output file names")
	pf.StringVar(&a.preset, "preset", "", "built-in filter chain: h2n, punch or compressed")
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&a.codec, "codec", postprocess.DefaultCodec, "ffmpeg audio encoder")
	pf.StringVar(&a.bitrate, "bitrate", postprocess.DefaultBitrate, "audio bitrate")
	pf.StringVar(&a.ext, "ext", "", "replace the output file extension, e.g. .mp3")
	pf.IntVarP(&a.jobs, "jobs", "j", 1, "files processed concurrently")
	pf.BoolVarP(&a.dryRun, "dry-run", "n", false, "print ffmpeg commands without running them")
	pf.StringVar(&a.ffmpeg, "ffmpeg", "ffmpeg", "ffmpeg binary")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&a.progress, "progress", false, "show a progress bar")
	pf.BoolVar(&a.reportLoudness, "report-loudness", false, "log loudnorm measurements for each file")

	root.AddCommand(
		newCompareCmd(a),
		newNoiseCmd(a),
		newSelftestCmd(a),
		newChainCmd(a),
		newWatchCmd(a),
		newProbeCmd(a),
	)
	return root
}

// initLogger builds a console logger unless one was injected.
func (a *app) initLogger() error {
	if a.logger != nil {
		return nil
	}
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	if a.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

// config merges defaults, the optional config file and explicitly set flags,
// in that order of precedence from lowest to highest.
func (a *app) config(cmd *cobra.Command) (postprocess.Config, error) {
	cfg := postprocess.DefaultConfig()
	if a.configPath != "" {
		var err error
		if cfg, err = postprocess.LoadConfigFile(a.configPath, cfg); err != nil {
			return postprocess.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("preset") {
		chain, err := postprocess.ChainForPreset(a.preset)
		if err != nil {
			return postprocess.Config{}, err
		}
		cfg.Chain = chain
	}
	if flags.Changed("prefix") {
		cfg.Prefix = a.prefix
	}
	if flags.Changed("codec") {
		cfg.Output.Codec = a.codec
	}
	if flags.Changed("bitrate") {
		cfg.Output.Bitrate = a.bitrate
	}
	if flags.Changed("ext") {
		cfg.Output.Extension = a.ext
	}
	if flags.Changed("jobs") {
		cfg.Jobs = a.jobs
	}
	if flags.Changed("ffmpeg") {
		cfg.FFmpeg = a.ffmpeg
	}
	if flags.Changed("report-loudness") {
		cfg.ReportLoudness = a.reportLoudness
	}
	cfg.DryRun = a.dryRun

	if err := cfg.Validate(); err != nil {
		return postprocess.Config{}, err
	}
	return cfg, nil
}

func (a *app) processor(cmd *cobra.Command, opts ...postprocess.ProcessorOption) (*postprocess.Processor, error) {
	cfg, err := a.config(cmd)
	if err != nil {
		return nil, err
	}
	return postprocess.New(cfg, append([]postprocess.ProcessorOption{postprocess.WithLogger(a.logger)}, opts...)...)
}
