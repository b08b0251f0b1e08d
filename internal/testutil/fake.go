package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleLoudnormReport is what loudnorm prints with print_format=json.
const SampleLoudnormReport = `[Parsed_loudnorm_4 @ 0x5581c0a3c2c0] 
{
	"input_i" : "-27.61",
	"input_tp" : "-9.42",
	"input_lra" : "3.20",
	"input_thresh" : "-37.93",
	"output_i" : "-14.05",
	"output_tp" : "-1.50",
	"output_lra" : "2.90",
	"output_thresh" : "-24.31",
	"normalization_type" : "dynamic",
	"target_offset" : "0.05"
}
`

// FakeOptions controls the behaviour of a fake ffmpeg binary.
type FakeOptions struct {
	// ExitCode is returned by the script. Non-zero skips writing output.
	ExitCode int

	// Stderr is printed to standard error.
	Stderr string

	// Stdout is printed to standard output.
	Stdout string

	// StdoutFile is copied byte for byte to standard output.
	StdoutFile string
}

// Fake is a shell script standing in for ffmpeg. It records its arguments,
// one per line, and writes a small file to its last argument on success.
type Fake struct {
	Path     string
	ArgsFile string
}

// NewFake writes the fake binary into a temporary directory.
// Tests using it are skipped on Windows.
func NewFake(t *testing.T, opts FakeOptions) *Fake {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg requires a POSIX shell")
	}

	dir := t.TempDir()
	f := &Fake{
		Path:     filepath.Join(dir, "ffmpeg"),
		ArgsFile: filepath.Join(dir, "args.txt"),
	}

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "printf '%%s\\n' \"$@\" > '%s'\n", f.ArgsFile)
	if opts.Stdout != "" {
		fmt.Fprintf(&b, "cat <<'__STDOUT__'\n%s\n__STDOUT__\n", opts.Stdout)
	}
	if opts.StdoutFile != "" {
		fmt.Fprintf(&b, "cat '%s'\n", opts.StdoutFile)
	}
	if opts.Stderr != "" {
		fmt.Fprintf(&b, "cat >&2 <<'__STDERR__'\n%s\n__STDERR__\n", opts.Stderr)
	}
	if opts.ExitCode == 0 {
		b.WriteString("for last; do :; done\n")
		b.WriteString("case \"$last\" in pipe:*) ;; *) printf 'fake-audio' > \"$last\" ;; esac\n")
	}
	fmt.Fprintf(&b, "exit %d\n", opts.ExitCode)

	require.NoError(t, os.WriteFile(f.Path, []byte(b.String()), 0o755))
	return f
}

// Args returns the arguments recorded by the most recent invocation.
func (f *Fake) Args(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(f.ArgsFile)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
