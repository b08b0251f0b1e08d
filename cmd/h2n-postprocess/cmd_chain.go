package main

import (
	"fmt"

	"github.com/spf13/cobra"

	postprocess "github.com/tphakala/go-audio-postprocess"
)

func newChainCmd(a *app) *cobra.Command {
	var (
		plot string
		rate float64
	)
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Print the filtergraph and optionally plot its frequency response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, cfg.Chain.String())
			if plot == "" {
				return nil
			}

			curve, err := postprocess.PredictResponse(cfg.Chain, rate)
			if err != nil {
				return err
			}
			if err := curve.Plot(plot, "predicted"); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "plot:", plot)
			return nil
		},
	}
	cmd.Flags().StringVar(&plot, "plot", "", "write the predicted response to this file, e.g. "+defaultResponsePlot)
	cmd.Flags().Float64Var(&rate, "rate", postprocess.DefaultSampleRate, "sample rate used for the response")
	return cmd
}
