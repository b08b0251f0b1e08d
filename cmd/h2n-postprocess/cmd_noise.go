package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	postprocess "github.com/tphakala/go-audio-postprocess"
)

func newNoiseCmd(a *app) *cobra.Command {
	var seconds float64
	cmd := &cobra.Command{
		Use:   "noise [OUT]",
		Short: "Generate loudness-normalized white noise with ffmpeg",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := defaultNoiseFile
			if len(args) == 1 {
				out = args[0]
			}
			p, err := a.processor(cmd)
			if err != nil {
				return err
			}
			if a.dryRun {
				fmt.Fprintln(a.out, shellJoin(append([]string{p.Config().FFmpeg}, p.NoiseArgs(seconds, out)...)))
				return nil
			}
			if err := p.GenerateWhiteNoise(cmd.Context(), seconds, out); err != nil {
				return err
			}
			fmt.Fprintln(a.out, out)
			return nil
		},
	}
	cmd.Flags().Float64VarP(&seconds, "duration", "d", postprocess.DefaultNoiseSeconds, "length in seconds")
	return cmd
}

func newSelftestCmd(a *app) *cobra.Command {
	var (
		seconds float64
		dir     string
		flags   compareFlags
	)
	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run white noise through the chain and plot both spectra",
		Long: `Generates white noise, processes it with the configured chain and plots
the spectrum of both files. The processed curve should show the highpass
roll-off, the boost around 75 Hz and the cut around 350 Hz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.processor(cmd)
			if err != nil {
				return err
			}
			noise := filepath.Join(dir, defaultNoiseFile)
			processed := filepath.Join(dir, defaultSelftestOut)
			plot := flags.output
			if !cmd.Flags().Changed("output") {
				plot = filepath.Join(dir, defaultSpectrumPlot)
			}

			if a.dryRun {
				ffmpeg := p.Config().FFmpeg
				fmt.Fprintln(a.out, shellJoin(append([]string{ffmpeg}, p.NoiseArgs(seconds, noise)...)))
				fmt.Fprintln(a.out, shellJoin(append([]string{ffmpeg}, p.Args(noise, processed)...)))
				return nil
			}

			if err := p.GenerateWhiteNoise(cmd.Context(), seconds, noise); err != nil {
				return err
			}
			if _, err := p.ProcessFile(cmd.Context(), noise, processed); err != nil {
				return err
			}
			return a.compare(cmd, noise, processed, plot, flags.options(a, p.Config()))
		},
	}
	cmd.Flags().Float64VarP(&seconds, "duration", "d", postprocess.DefaultNoiseSeconds, "noise length in seconds")
	cmd.Flags().StringVar(&dir, "dir", ".", "directory for the generated files")
	flags.register(cmd)
	return cmd
}
