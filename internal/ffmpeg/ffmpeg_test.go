package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-audio-postprocess/internal/testutil"
)

func TestCommand_Args(t *testing.T) {
	args := NewCommand().
		Input("in.wav").
		AudioFilter("highpass=f=20").
		Codec("libmp3lame").
		Bitrate("192k").
		Output("out.mp3").
		Args()

	want := []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", "in.wav",
		"-vn",
		"-af", "highpass=f=20",
		"-c:a", "libmp3lame",
		"-b:a", "192k",
		"out.mp3",
	}
	assert.Equal(t, want, args)
}

func TestCommand_LavfiDecodeArgs(t *testing.T) {
	args := NewCommand().
		InputFormat("lavfi", "anoisesrc=d=1:c=white:r=44100").
		Channels(1).
		SampleRate(44100).
		Format("f32le").
		Output("pipe:1").
		Args()

	assert.Equal(t, []string{
		"-hide_banner", "-nostdin", "-y",
		"-f", "lavfi", "-i", "anoisesrc=d=1:c=white:r=44100",
		"-vn",
		"-ac", "1", "-ar", "44100", "-f", "f32le",
		"pipe:1",
	}, args)
}

func TestCommand_EmptyCodecAndBitrateOmitted(t *testing.T) {
	args := NewCommand().Input("a").Codec("").Bitrate("").Output("b").Args()
	assert.NotContains(t, args, "-c:a")
	assert.NotContains(t, args, "-b:a")
}

func TestRunner_RunSuccess(t *testing.T) {
	fake := testutil.NewFake(t, testutil.FakeOptions{Stderr: "size=1kB"})
	out := filepath.Join(t.TempDir(), "out.mp3")

	r := NewRunner(fake.Path, nil)
	res, err := r.Run(context.Background(), NewCommand().Input("in.wav").Output(out).Args())
	require.NoError(t, err)

	assert.Contains(t, string(res.Stderr), "size=1kB")
	assert.FileExists(t, out)
	assert.Equal(t, "in.wav", fake.Args(t)[4])
}

// TestRunner_RunFailure verifies ffmpeg's diagnostics are surfaced in the error.
func TestRunner_RunFailure(t *testing.T) {
	fake := testutil.NewFake(t, testutil.FakeOptions{
		ExitCode: 1,
		Stderr:   "in.wav: No such file or directory",
	})

	r := NewRunner(fake.Path, nil)
	_, err := r.Run(context.Background(), []string{"-i", "in.wav", "out.mp3"})
	require.Error(t, err)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 1, execErr.ExitCode)
	assert.Contains(t, execErr.Stderr, "No such file or directory")
	assert.Contains(t, err.Error(), "No such file or directory")
	assert.Equal(t, []string{"-i", "in.wav", "out.mp3"}, execErr.Args)
}

func TestRunner_MissingBinary(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "no-such-ffmpeg"), nil)
	_, err := r.Run(context.Background(), []string{"-version"})
	require.Error(t, err)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, -1, execErr.ExitCode)
}

func TestRunner_LookPathNotFound(t *testing.T) {
	r := NewRunner("definitely-not-an-ffmpeg-binary", nil)
	_, err := r.LookPath()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunner_ContextCanceled(t *testing.T) {
	fake := testutil.NewFake(t, testutil.FakeOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(fake.Path, nil)
	_, err := r.Run(ctx, []string{"out"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseLoudnormStats(t *testing.T) {
	stderr := []byte("size=   23kB time=00:00:01.00\n" + testutil.SampleLoudnormReport)

	stats, err := ParseLoudnormStats(stderr)
	require.NoError(t, err)
	assert.Equal(t, "-27.61", stats.InputI)
	assert.Equal(t, "dynamic", stats.NormalizationType)

	l, err := stats.Numeric()
	require.NoError(t, err)
	assert.InDelta(t, -14.05, l.OutputI, testutil.DefaultTolerance)
	assert.InDelta(t, -1.5, l.OutputTP, testutil.DefaultTolerance)
	assert.InDelta(t, 0.05, l.TargetOffset, testutil.DefaultTolerance)
}

func TestParseLoudnormStats_Missing(t *testing.T) {
	_, err := ParseLoudnormStats([]byte("size=23kB"))
	assert.ErrorIs(t, err, ErrNoLoudnormStats)

	_, err = ParseLoudnormStats([]byte(`{"foo": "bar"}`))
	assert.ErrorIs(t, err, ErrNoLoudnormStats)
}

func TestLoudnormStats_NumericSilence(t *testing.T) {
	stats := &LoudnormStats{InputI: "-inf", OutputI: "-70.00"}
	l, err := stats.Numeric()
	require.NoError(t, err)
	assert.True(t, l.InputI < -1e300)
}

func TestParseProbe(t *testing.T) {
	data := []byte(`{"streams":[{"codec_name":"pcm_s24le","sample_rate":"48000","channels":2,"duration":"12.500000"}]}`)

	info, err := parseProbe(data)
	require.NoError(t, err)
	assert.Equal(t, "pcm_s24le", info.Codec)
	assert.Equal(t, 48000, info.SampleRate)
	assert.Equal(t, 2, info.Channels)
	assert.InDelta(t, 12.5, info.Duration, testutil.DefaultTolerance)

	_, err = parseProbe([]byte(`{"streams":[]}`))
	assert.Error(t, err)
}

// TestRunner_RealFFmpeg runs a tiny lavfi render through the real binary.
func TestRunner_RealFFmpeg(t *testing.T) {
	r := NewRunner("", nil)
	if _, err := r.LookPath(); err != nil {
		t.Skip("ffmpeg not installed")
	}

	out := filepath.Join(t.TempDir(), "tone.wav")
	_, err := r.Run(context.Background(), NewCommand().
		InputFormat("lavfi", "sine=frequency=1000:duration=0.2").
		Output(out).
		Args())
	require.NoError(t, err)

	st, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, st.Size())
}
