package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"

	postprocess "github.com/tphakala/go-audio-postprocess"
)

// Progress bar layout
const (
	progressWidth   = 64
	etaAverageItems = 60
)

func (a *app) runProcess(cmd *cobra.Command, inputs []string) error {
	var bar *mpb.Bar
	p, err := a.processor(cmd, postprocess.WithProgress(func(string, *postprocess.Result, error) {
		if bar != nil {
			bar.Increment()
		}
	}))
	if err != nil {
		return err
	}
	if !a.dryRun {
		path, err := p.LookPath()
		if err != nil {
			return err
		}
		a.logger.Debug("using ffmpeg", zap.String("path", path))
	}

	var bars *mpb.Progress
	if a.progress && !a.dryRun {
		bars = mpb.NewWithContext(cmd.Context(), mpb.WithWidth(progressWidth), mpb.WithOutput(a.errOut))
		bar = bars.AddBar(int64(len(inputs)),
			mpb.PrependDecorators(
				decor.Name("Processing: "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
				decor.EwmaETA(decor.ET_STYLE_GO, etaAverageItems),
			),
		)
	}

	results, err := p.ProcessFiles(cmd.Context(), inputs)
	if bars != nil {
		bars.Wait()
	}

	for _, res := range results {
		if res == nil {
			continue
		}
		if res.DryRun {
			fmt.Fprintln(a.out, shellJoin(append([]string{p.Config().FFmpeg}, res.Args...)))
			continue
		}
		line := res.Input + " → " + res.Output
		if res.Loudness != nil {
			line += fmt.Sprintf(" (%s LUFS → %s LUFS, true peak %s dBTP)",
				res.Loudness.InputI, res.Loudness.OutputI, res.Loudness.OutputTP)
		}
		fmt.Fprintln(a.out, line)
	}
	return err
}

// shellJoin quotes arguments that a POSIX shell would split or expand.
func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t\n'\"\\$`*?[]{}();&|<>#~!") {
			quoted[i] = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
		} else {
			quoted[i] = arg
		}
	}
	return strings.Join(quoted, " ")
}
