package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe FILE...",
		Short: "Show codec, sample rate, channels and duration of recordings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			p, err := a.processor(cmd)
			if err != nil {
				return err
			}
			var errs error
			for _, file := range files {
				info, err := p.Probe(cmd.Context(), file)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				fmt.Fprintf(a.out, "%s: %s, %d Hz, %d ch, %.2fs\n",
					file, info.Codec, info.SampleRate, info.Channels, info.Duration)
			}
			return errs
		},
	}
}
