// Package postprocess cleans up field recordings from a Zoom H2n handheld
// recorder by running them through a fixed ffmpeg audio filter chain.
//
// The chain removes sub-bass rumble, boosts the low end, cuts low-mid mud,
// adds a gentle bass shelf and finally normalizes loudness to -14 LUFS
// (EBU R128). All signal processing of the output file is done by ffmpeg;
// this package configures the chain, invokes ffmpeg and names the outputs.
//
// # Quick Start
//
// Process a recording with the default chain:
//
//	p, err := postprocess.New(postprocess.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := p.ProcessFile(ctx, "STE-000.WAV", "processed-STE-000.WAV")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Process a batch next to the inputs, named with the configured prefix:
//
//	results, err := p.ProcessFiles(ctx, []string{"STE-000.WAV", "STE-001.WAV"})
//
// # Filter Chains
//
// A Chain is an ordered list of ffmpeg filters applied left to right.
// DefaultChain returns the H2n chain:
//
//	highpass=f=20:t=q:width=0.7,
//	equalizer=f=75:t=q:w=1:g=5,
//	equalizer=f=350:t=q:w=1:g=-5,
//	bass=g=3:f=90:t=q:w=0.7,
//	loudnorm=I=-14:TP=-1.5:LRA=11
//
// Alternative presets are available through ChainForPreset, and a YAML
// configuration file can replace the chain entirely (see LoadConfigFile).
//
// # Verifying a Chain
//
// Compare estimates the power spectral density of two files with Welch's
// method so the effect of the chain on white noise can be plotted.
// GenerateWhiteNoise produces a suitable test signal.
package postprocess
