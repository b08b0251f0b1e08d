package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// StreamInfo describes the first audio stream of a file.
type StreamInfo struct {
	Codec      string
	SampleRate int
	Channels   int
	Duration   float64 // Seconds, 0 when unknown
}

type probeOutput struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
		Duration   string `json:"duration"`
	} `json:"streams"`
}

// ProbeAudio reads stream parameters with ffprobe.
func (r *Runner) ProbeAudio(ctx context.Context, path string) (*StreamInfo, error) {
	out, err := r.Probe(ctx, []string{
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name,sample_rate,channels,duration",
		"-of", "json",
		path,
	})
	if err != nil {
		return nil, err
	}
	return parseProbe(out.Stdout)
}

func parseProbe(data []byte) (*StreamInfo, error) {
	var po probeOutput
	if err := json.Unmarshal(data, &po); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(po.Streams) == 0 {
		return nil, fmt.Errorf("no audio stream found")
	}

	s := po.Streams[0]
	info := &StreamInfo{
		Codec:    s.CodecName,
		Channels: s.Channels,
	}
	if s.SampleRate != "" {
		rate, err := strconv.Atoi(s.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("invalid sample rate %q: %w", s.SampleRate, err)
		}
		info.SampleRate = rate
	}
	if s.Duration != "" && s.Duration != "N/A" {
		d, err := strconv.ParseFloat(s.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", s.Duration, err)
		}
		info.Duration = d
	}
	return info, nil
}
