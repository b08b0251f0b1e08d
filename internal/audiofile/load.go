// Package audiofile loads recordings as mono sample slices for analysis and
// writes PCM WAV files.
package audiofile

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/tphakala/simd/f64"
	"go.uber.org/zap"

	"github.com/tphakala/go-audio-postprocess/internal/ffmpeg"
)

var (
	// ErrUnsupported indicates the file needs ffmpeg to decode but no runner
	// is configured.
	ErrUnsupported = errors.New("unsupported audio file")

	// ErrInvalidWAV indicates a file with a .wav extension that is not a WAV.
	ErrInvalidWAV = errors.New("invalid WAV file")
)

// Signal is a mono signal normalized to [-1, 1].
type Signal struct {
	Samples    []float64
	SampleRate int

	// Decoder names the path the samples came through: "wav", "mp3" or "ffmpeg".
	Decoder string
}

// Duration returns the signal length in seconds.
func (s *Signal) Duration() float64 {
	if s.SampleRate == 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Loader decodes audio files. WAV and MP3 at the requested rate are decoded
// in-process; everything else is transcoded by ffmpeg.
type Loader struct {
	runner *ffmpeg.Runner
	logger *zap.Logger
}

// NewLoader creates a loader. runner may be nil, in which case only WAV and
// MP3 files already at the requested rate can be loaded.
func NewLoader(runner *ffmpeg.Runner, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{runner: runner, logger: logger}
}

// LoadMono loads path as a mono signal at sampleRate and scales it so the
// peak magnitude is 1. An all-zero signal is returned unscaled.
func (l *Loader) LoadMono(ctx context.Context, path string, sampleRate int) (*Signal, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	sig, err := l.decodeNative(path)
	switch {
	case err != nil && !errors.Is(err, ErrUnsupported):
		return nil, err
	case sig != nil && sig.SampleRate == sampleRate:
		// decoded in-process at the right rate
	default:
		if sig != nil {
			l.logger.Debug("sample rate mismatch, decoding with ffmpeg",
				zap.String("path", path),
				zap.Int("rate", sig.SampleRate),
				zap.Int("want", sampleRate))
		}
		sig, err = l.decodeFFmpeg(ctx, path, sampleRate)
		if err != nil {
			return nil, err
		}
	}

	PeakNormalize(sig.Samples)

	l.logger.Debug("loaded signal",
		zap.String("path", path),
		zap.String("decoder", sig.Decoder),
		zap.Int("samples", len(sig.Samples)),
		zap.Int("rate", sig.SampleRate))

	return sig, nil
}

func (l *Loader) decodeNative(path string) (*Signal, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return decodeWAV(path)
	case ".mp3":
		return decodeMP3(path)
	default:
		return nil, ErrUnsupported
	}
}

func (l *Loader) decodeFFmpeg(ctx context.Context, path string, sampleRate int) (*Signal, error) {
	if l.runner == nil {
		return nil, fmt.Errorf("%w: %s needs ffmpeg", ErrUnsupported, path)
	}

	args := ffmpeg.NewCommand().
		Input(path).
		Channels(1).
		SampleRate(sampleRate).
		Format(rawFormat).
		Output("pipe:1").
		Args()

	out, err := l.runner.Run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg decode: %w", err)
	}

	samples, err := decodeFloat32LE(out.Stdout)
	if err != nil {
		return nil, err
	}
	return &Signal{Samples: samples, SampleRate: sampleRate, Decoder: "ffmpeg"}, nil
}

// decodeWAV reads an integer PCM WAV file and averages its channels.
func decodeWAV(path string) (*Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		// float and extensible formats go through ffmpeg
		return nil, ErrUnsupported
	}

	maxVal, ok := maxValue(int(decoder.BitDepth))
	if !ok {
		return nil, ErrUnsupported
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidWAV, channels)
	}

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	scale := 1.0 / (maxVal * float64(channels))
	for i := range frames {
		var sum int
		base := i * channels
		for ch := range channels {
			sum += buf.Data[base+ch]
		}
		samples[i] = float64(sum) * scale
	}

	return &Signal{Samples: samples, SampleRate: buf.Format.SampleRate, Decoder: "wav"}, nil
}

// decodeMP3 reads an MP3 file and averages its two output channels.
func decodeMP3(path string) (*Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3 %s: %w", path, err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	frames := len(raw) / mp3FrameBytes
	samples := make([]float64, frames)
	for i := range frames {
		off := i * mp3FrameBytes
		left := int16(binary.LittleEndian.Uint16(raw[off:]))
		right := int16(binary.LittleEndian.Uint16(raw[off+mp3BytesPerSample:]))
		samples[i] = (float64(left) + float64(right)) / (2 * mp3Scale)
	}

	return &Signal{Samples: samples, SampleRate: decoder.SampleRate(), Decoder: "mp3"}, nil
}

func decodeFloat32LE(raw []byte) ([]float64, error) {
	if len(raw)%rawBytesPerSample != 0 {
		return nil, fmt.Errorf("unexpected raw audio length %d", len(raw))
	}
	n := len(raw) / rawBytesPerSample
	samples := make([]float64, n)
	for i := range n {
		bits := binary.LittleEndian.Uint32(raw[i*rawBytesPerSample:])
		samples[i] = float64(math.Float32frombits(bits))
	}
	return samples, nil
}

// PeakNormalize scales samples in place so the peak magnitude is 1 and
// returns the original peak. Silence is left untouched.
func PeakNormalize(samples []float64) float64 {
	var peak float64
	for _, v := range samples {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		f64.Scale(samples, samples, 1/peak)
	}
	return peak
}

func maxValue(bitDepth int) (float64, bool) {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16, true
	case bitsPerSample24:
		return maxInt24, true
	case bitsPerSample32:
		return maxInt32, true
	default:
		return 0, false
	}
}
