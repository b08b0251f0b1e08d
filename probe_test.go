package postprocess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-postprocess/internal/testutil"
)

const h2nProbeJSON = `{"streams":[{"codec_name":"pcm_s24le","sample_rate":"96000","channels":2,"duration":"12.500000"}]}`

func TestProbe(t *testing.T) {
	fake := testutil.NewFake(t, testutil.FakeOptions{Stdout: h2nProbeJSON})
	probe := filepath.Join(filepath.Dir(fake.Path), "ffprobe")
	script, err := os.ReadFile(fake.Path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(probe, script, 0o755))

	cfg := DefaultConfig()
	cfg.FFmpeg = fake.Path
	p, err := New(cfg)
	require.NoError(t, err)

	in := writeInput(t, t.TempDir(), "STE-000.WAV")
	info, err := p.Probe(t.Context(), in)
	require.NoError(t, err)

	assert.Equal(t, "pcm_s24le", info.Codec)
	assert.Equal(t, 96000, info.SampleRate)
	assert.Equal(t, 2, info.Channels)
	assert.InDelta(t, 12.5, info.Duration, 1e-9)

	args := fake.Args(t)
	assert.Contains(t, args, "a:0")
	assert.Equal(t, in, args[len(args)-1])
}

func TestProbe_Failure(t *testing.T) {
	fake := testutil.NewFake(t, testutil.FakeOptions{ExitCode: 1, Stderr: "No such file"})
	probe := filepath.Join(filepath.Dir(fake.Path), "ffprobe")
	script, err := os.ReadFile(fake.Path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(probe, script, 0o755))

	cfg := DefaultConfig()
	cfg.FFmpeg = fake.Path
	p, err := New(cfg)
	require.NoError(t, err)

	_, err = p.Probe(t.Context(), "missing.wav")
	require.Error(t, err)
	_, ok := IsExecError(err)
	assert.True(t, ok)
}

func TestProbeBinaryFor(t *testing.T) {
	tests := []struct {
		ffmpeg string
		want   string
	}{
		{"ffmpeg", "ffprobe"},
		{"/opt/ffmpeg/bin/ffmpeg", filepath.Join("/opt/ffmpeg/bin", "ffprobe")},
		{filepath.Join("bin", "ffmpeg"), filepath.Join("bin", "ffprobe")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, probeBinaryFor(tt.ffmpeg), tt.ffmpeg)
	}
}
