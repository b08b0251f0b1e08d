package postprocess

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-postprocess/internal/testutil"
)

func TestNoiseSource(t *testing.T) {
	assert.Equal(t, "anoisesrc=d=10:c=white:r=44100", NoiseSource(10))
	assert.Equal(t, "anoisesrc=d=1.5:c=white:r=44100", NoiseSource(1.5))
}

func TestProcessor_NoiseArgs(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	want := []string{
		"-hide_banner", "-nostdin", "-y",
		"-f", "lavfi", "-i", "anoisesrc=d=10:c=white:r=44100",
		"-vn",
		"-af", "loudnorm=I=-14:TP=-1.5:LRA=11",
		"-c:a", "libmp3lame",
		"-b:a", "192k",
		"white_noise.mp3",
	}
	assert.Equal(t, want, p.NoiseArgs(DefaultNoiseSeconds, "white_noise.mp3"))
}

func TestGenerateWhiteNoise(t *testing.T) {
	p, fake := newTestProcessor(t, testutil.FakeOptions{}, nil)
	path := filepath.Join(t.TempDir(), "white_noise.mp3")

	require.NoError(t, p.GenerateWhiteNoise(context.Background(), 1, path))
	assert.FileExists(t, path)
	assert.Equal(t, p.NoiseArgs(1, path), fake.Args(t))
}

func TestGenerateWhiteNoise_Errors(t *testing.T) {
	p, _ := newTestProcessor(t, testutil.FakeOptions{ExitCode: 1, Stderr: "Unknown encoder"}, nil)
	path := filepath.Join(t.TempDir(), "white_noise.mp3")

	err := p.GenerateWhiteNoise(context.Background(), 0, path)
	require.ErrorIs(t, err, ErrInvalidConfig)

	err = p.GenerateWhiteNoise(context.Background(), 1, path)
	_, ok := IsExecError(err)
	assert.True(t, ok)
}

func TestGenerateWhiteNoise_DryRun(t *testing.T) {
	p, fake := newTestProcessor(t, testutil.FakeOptions{}, func(c *Config) { c.DryRun = true })
	path := filepath.Join(t.TempDir(), "white_noise.mp3")

	require.NoError(t, p.GenerateWhiteNoise(context.Background(), 1, path))
	assert.NoFileExists(t, path)
	assert.NoFileExists(t, fake.ArgsFile)
}
