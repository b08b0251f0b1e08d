package audiofile

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes mono samples in [-1, 1] as integer PCM. Samples outside
// that range are clipped.
func WriteWAV(path string, samples []float64, sampleRate, bitDepth int) (err error) {
	maxVal, ok := maxValue(bitDepth)
	if !ok {
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	data := make([]int, len(samples))
	for i, s := range samples {
		s = math.Max(-1, math.Min(1, s))
		data[i] = int(math.Round(s * maxVal))
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, wavFormatPCM)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV header: %w", err)
	}
	return nil
}

// WriteWhiteNoiseWAV writes seconds of uniform white noise peaking at amp.
// It stands in for ffmpeg's anoisesrc when no binary is available.
func WriteWhiteNoiseWAV(path string, seconds float64, sampleRate int, amp float64, seed uint64) error {
	if seconds <= 0 || sampleRate <= 0 {
		return fmt.Errorf("invalid noise parameters: seconds=%g rate=%d", seconds, sampleRate)
	}
	n := int(seconds * float64(sampleRate))
	rng := rand.New(rand.NewPCG(seed, seed^noiseSeedMix))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amp * (2*rng.Float64() - 1)
	}
	return WriteWAV(path, samples, sampleRate, noiseBitDepth)
}
