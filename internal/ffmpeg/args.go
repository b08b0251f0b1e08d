package ffmpeg

import (
	"strconv"
)

// Command builds an ffmpeg argument list.
type Command struct {
	inputs  [][]string
	filter  string
	outOpts []string
	output  string
}

// NewCommand starts an argument list with the flags every invocation uses:
// no banner, no interaction on stdin, overwrite existing outputs.
func NewCommand() *Command {
	return &Command{}
}

// Input adds a file input.
func (c *Command) Input(path string) *Command {
	c.inputs = append(c.inputs, []string{"-i", path})
	return c
}

// InputFormat adds an input read through the named demuxer, e.g. lavfi.
func (c *Command) InputFormat(format, source string) *Command {
	c.inputs = append(c.inputs, []string{"-f", format, "-i", source})
	return c
}

// AudioFilter sets the -af filtergraph.
func (c *Command) AudioFilter(graph string) *Command {
	c.filter = graph
	return c
}

// Codec sets the audio encoder.
func (c *Command) Codec(codec string) *Command {
	if codec != "" {
		c.outOpts = append(c.outOpts, "-c:a", codec)
	}
	return c
}

// Bitrate sets the audio bitrate, e.g. "192k".
func (c *Command) Bitrate(bitrate string) *Command {
	if bitrate != "" {
		c.outOpts = append(c.outOpts, "-b:a", bitrate)
	}
	return c
}

// Channels sets the output channel count.
func (c *Command) Channels(n int) *Command {
	c.outOpts = append(c.outOpts, "-ac", strconv.Itoa(n))
	return c
}

// SampleRate sets the output sample rate.
func (c *Command) SampleRate(rate int) *Command {
	c.outOpts = append(c.outOpts, "-ar", strconv.Itoa(rate))
	return c
}

// Format forces the output muxer, e.g. f32le.
func (c *Command) Format(format string) *Command {
	c.outOpts = append(c.outOpts, "-f", format)
	return c
}

// Output sets the output target. Use "pipe:1" for stdout.
func (c *Command) Output(path string) *Command {
	c.output = path
	return c
}

// Args returns the complete argument list.
func (c *Command) Args() []string {
	args := []string{"-hide_banner", "-nostdin", "-y"}
	for _, in := range c.inputs {
		args = append(args, in...)
	}
	args = append(args, "-vn")
	if c.filter != "" {
		args = append(args, "-af", c.filter)
	}
	args = append(args, c.outOpts...)
	if c.output != "" {
		args = append(args, c.output)
	}
	return args
}
