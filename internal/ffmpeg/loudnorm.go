package ffmpeg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrNoLoudnormStats indicates stderr did not contain a loudnorm JSON report.
var ErrNoLoudnormStats = errors.New("no loudnorm statistics in output")

// LoudnormStats holds the report printed by loudnorm with print_format=json.
// ffmpeg prints every value as a string.
type LoudnormStats struct {
	InputI            string `json:"input_i"`
	InputTP           string `json:"input_tp"`
	InputLRA          string `json:"input_lra"`
	InputThresh       string `json:"input_thresh"`
	OutputI           string `json:"output_i"`
	OutputTP          string `json:"output_tp"`
	OutputLRA         string `json:"output_lra"`
	OutputThresh      string `json:"output_thresh"`
	NormalizationType string `json:"normalization_type"`
	TargetOffset      string `json:"target_offset"`
}

// Loudness is LoudnormStats with numeric values.
type Loudness struct {
	InputI            float64
	InputTP           float64
	InputLRA          float64
	InputThresh       float64
	OutputI           float64
	OutputTP          float64
	OutputLRA         float64
	OutputThresh      float64
	TargetOffset      float64
	NormalizationType string
}

// ParseLoudnormStats extracts the last JSON object from ffmpeg's stderr.
// loudnorm prints it after the "[Parsed_loudnorm_N @ 0x...]" line when the
// filter graph is torn down.
func ParseLoudnormStats(stderr []byte) (*LoudnormStats, error) {
	end := bytes.LastIndexByte(stderr, '}')
	if end < 0 {
		return nil, ErrNoLoudnormStats
	}
	start := bytes.LastIndexByte(stderr[:end], '{')
	if start < 0 {
		return nil, ErrNoLoudnormStats
	}

	var stats LoudnormStats
	if err := json.Unmarshal(stderr[start:end+1], &stats); err != nil {
		return nil, fmt.Errorf("failed to parse loudnorm JSON: %w", err)
	}
	if stats.InputI == "" && stats.OutputI == "" {
		return nil, ErrNoLoudnormStats
	}
	return &stats, nil
}

// Numeric converts the report to floats. "-inf" (silence) maps to -Inf.
func (s *LoudnormStats) Numeric() (*Loudness, error) {
	l := &Loudness{NormalizationType: s.NormalizationType}

	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"input_i", s.InputI, &l.InputI},
		{"input_tp", s.InputTP, &l.InputTP},
		{"input_lra", s.InputLRA, &l.InputLRA},
		{"input_thresh", s.InputThresh, &l.InputThresh},
		{"output_i", s.OutputI, &l.OutputI},
		{"output_tp", s.OutputTP, &l.OutputTP},
		{"output_lra", s.OutputLRA, &l.OutputLRA},
		{"output_thresh", s.OutputThresh, &l.OutputThresh},
		{"target_offset", s.TargetOffset, &l.TargetOffset},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("loudnorm %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return l, nil
}
