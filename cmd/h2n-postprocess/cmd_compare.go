package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	postprocess "github.com/tphakala/go-audio-postprocess"
)

// Default output file names
const (
	defaultSpectrumPlot = "spectrum.png"
	defaultResponsePlot = "response.png"
	defaultNoiseFile    = "white_noise.mp3"
	defaultSelftestOut  = "processed.mp3"
)

// Bands reported after a comparison, matching the stages of the H2n chain.
var reportBands = []struct {
	name   string
	lo, hi float64
}{
	{"rumble", 10, 18},
	{"low boost", 60, 90},
	{"mud cut", 300, 400},
	{"mids", 1000, 5000},
}

type compareFlags struct {
	output   string
	noSmooth bool
	fmin     float64
	fmax     float64
	rate     int
}

func (f *compareFlags) register(cmd *cobra.Command) {
	defaults := postprocess.DefaultCompareOptions()
	cmd.Flags().StringVarP(&f.output, "output", "o", defaultSpectrumPlot, "plot file (.png, .svg or .pdf)")
	cmd.Flags().BoolVar(&f.noSmooth, "no-smooth", false, "disable Savitzky-Golay smoothing")
	cmd.Flags().Float64Var(&f.fmin, "fmin", defaults.FMin, "lowest plotted frequency in Hz")
	cmd.Flags().Float64Var(&f.fmax, "fmax", defaults.FMax, "highest plotted frequency in Hz")
	cmd.Flags().IntVar(&f.rate, "rate", defaults.SampleRate, "analysis sample rate")
}

func (f *compareFlags) options(a *app, cfg postprocess.Config) postprocess.CompareOptions {
	opts := postprocess.DefaultCompareOptions()
	opts.Smooth = !f.noSmooth
	opts.FMin = f.fmin
	opts.FMax = f.fmax
	opts.SampleRate = f.rate
	opts.FFmpeg = cfg.FFmpeg
	opts.Logger = a.logger
	return opts
}

func newCompareCmd(a *app) *cobra.Command {
	var flags compareFlags
	cmd := &cobra.Command{
		Use:   "compare A B",
		Short: "Plot the power spectral density of two recordings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config(cmd)
			if err != nil {
				return err
			}
			return a.compare(cmd, args[0], args[1], flags.output, flags.options(a, cfg))
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) compare(cmd *cobra.Command, in, out, plot string, opts postprocess.CompareOptions) error {
	cmp, err := postprocess.Compare(cmd.Context(), in, out, opts)
	if err != nil {
		return err
	}
	if err := cmp.Plot(plot); err != nil {
		return err
	}
	a.logger.Info("Wrote spectrum plot",
		zap.String("path", plot),
		zap.Int("samples", cmp.Samples),
		zap.Int("sample_rate", cmp.SampleRate))

	fmt.Fprintf(a.out, "%s vs %s\n", filepath.Base(in), filepath.Base(out))
	for _, band := range reportBands {
		if d, ok := cmp.MeanDifference(band.lo, band.hi); ok {
			fmt.Fprintf(a.out, "  %-10s %6g-%-6g Hz  %+6.2f dB\n", band.name, band.lo, band.hi, d)
		}
	}
	fmt.Fprintln(a.out, "plot:", plot)
	return nil
}
