package postprocess

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tphakala/go-audio-postprocess/internal/ffmpeg"
)

// StreamInfo describes the first audio stream of a file.
type StreamInfo = ffmpeg.StreamInfo

// Probe reads the audio stream parameters of path with ffprobe.
func (p *Processor) Probe(ctx context.Context, path string) (*StreamInfo, error) {
	info, err := p.runner.ProbeAudio(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	return info, nil
}

// probeBinaryFor returns the ffprobe that ships with ffmpeg. A bare command
// name is resolved through PATH.
func probeBinaryFor(ffmpegBinary string) string {
	dir := filepath.Dir(ffmpegBinary)
	if dir == "." && filepath.Base(ffmpegBinary) == ffmpegBinary {
		return ffmpeg.DefaultProbeBinary
	}
	return filepath.Join(dir, ffmpeg.DefaultProbeBinary)
}
