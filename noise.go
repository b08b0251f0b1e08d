package postprocess

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/tphakala/go-audio-postprocess/internal/ffmpeg"
)

// NoiseSource returns the lavfi source description for seconds of white
// noise at 44.1 kHz.
func NoiseSource(seconds float64) string {
	return "anoisesrc=d=" + strconv.FormatFloat(seconds, 'f', -1, 64) +
		":c=" + noiseColor +
		":r=" + strconv.Itoa(noiseSampleRate)
}

// NoiseArgs returns the ffmpeg arguments GenerateWhiteNoise runs.
func (p *Processor) NoiseArgs(seconds float64, path string) []string {
	return ffmpeg.NewCommand().
		InputFormat(lavfiFormat, NoiseSource(seconds)).
		AudioFilter(Chain{loudnorm()}.String()).
		Codec(p.cfg.Output.Codec).
		Bitrate(p.cfg.Output.Bitrate).
		Output(path).
		Args()
}

// GenerateWhiteNoise writes seconds of loudness-normalized white noise to
// path. It is the reference input for checking a chain with Compare.
func (p *Processor) GenerateWhiteNoise(ctx context.Context, seconds float64, path string) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: noise duration must be positive, got %g", ErrInvalidConfig, seconds)
	}

	args := p.NoiseArgs(seconds, path)
	p.logger.Info("generating white noise", zap.String("output", path), zap.Float64("seconds", seconds))
	if p.cfg.DryRun {
		return nil
	}

	if _, err := p.runner.Run(ctx, args); err != nil {
		return fmt.Errorf("generate noise: %w", err)
	}
	return nil
}
