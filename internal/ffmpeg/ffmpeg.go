// Package ffmpeg runs the ffmpeg and ffprobe command line tools and collects
// their diagnostic output.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Default binary names, resolved through PATH.
const (
	DefaultBinary      = "ffmpeg"
	DefaultProbeBinary = "ffprobe"
)

// maxDiagnosticLines bounds how much stderr ExecError.Error includes.
const maxDiagnosticLines = 20

// ErrNotFound indicates the ffmpeg binary could not be located.
var ErrNotFound = errors.New("ffmpeg binary not found")

// ExecError is returned when an external tool exits unsuccessfully.
// Stderr holds the tool's complete diagnostic output.
type ExecError struct {
	Binary   string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("%s failed (exit code %d)", e.Binary, e.ExitCode)
	if tail := lastLines(e.Stderr, maxDiagnosticLines); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Output is the captured output of a successful run.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Runner executes ffmpeg commands.
type Runner struct {
	Binary      string
	ProbeBinary string
	Logger      *zap.Logger
}

// NewRunner returns a runner for the given binary. An empty binary means
// DefaultBinary.
func NewRunner(binary string, logger *zap.Logger) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Binary:      binary,
		ProbeBinary: DefaultProbeBinary,
		Logger:      logger,
	}
}

// LookPath resolves the runner's binary.
func (r *Runner) LookPath() (string, error) {
	path, err := exec.LookPath(r.Binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotFound, r.Binary, err)
	}
	return path, nil
}

// Run executes ffmpeg synchronously with the given arguments, capturing
// stdout and stderr.
func (r *Runner) Run(ctx context.Context, args []string) (*Output, error) {
	return r.exec(ctx, r.Binary, args)
}

// Probe executes ffprobe synchronously with the given arguments.
func (r *Runner) Probe(ctx context.Context, args []string) (*Output, error) {
	return r.exec(ctx, r.ProbeBinary, args)
}

func (r *Runner) exec(ctx context.Context, binary string, args []string) (*Output, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Logger.Debug("exec", zap.String("binary", binary), zap.Strings("args", args))

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		if errors.Is(err, exec.ErrNotFound) {
			err = fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &ExecError{
			Binary:   binary,
			Args:     args,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	r.Logger.Debug("exec finished",
		zap.String("binary", binary),
		zap.Duration("elapsed", elapsed),
		zap.Int("stderr_bytes", stderr.Len()))

	return &Output{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: elapsed,
	}, nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
