package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	postprocess "github.com/tphakala/go-audio-postprocess"
	"github.com/tphakala/go-audio-postprocess/internal/watch"
)

// Extensions the H2n records in.
var recordingExtensions = []string{".wav", ".mp3"}

func newWatchCmd(a *app) *cobra.Command {
	var (
		existing bool
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch DIR...",
		Short: "Process recordings as they appear in the given directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, dirs []string) error {
			p, err := a.processor(cmd)
			if err != nil {
				return err
			}
			if p.Config().Prefix == "" {
				return fmt.Errorf("%w: watch needs a non-empty --prefix to tell outputs from recordings", postprocess.ErrInvalidConfig)
			}
			w, err := watch.New(watch.Config{
				Dirs:       dirs,
				Extensions: recordingExtensions,
				SkipPrefix: p.Config().Prefix,
				Existing:   existing,
				Debounce:   debounce,
				Logger:     a.logger,
			}, func(ctx context.Context, path string) error {
				_, err := p.ProcessFile(ctx, path, p.OutputPathFor(path))
				return err
			})
			if err != nil {
				return err
			}

			err = w.Run(cmd.Context())
			stats := w.Stats()
			a.logger.Info("Watcher stopped",
				zap.Int("handled", stats.Handled),
				zap.Int("failed", stats.Failed),
				zap.Int("ignored", stats.Ignored))
			return err
		},
	}
	cmd.Flags().BoolVar(&existing, "existing", false, "also process recordings already in the directories")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "time a file must stay unchanged before processing")
	return cmd
}
