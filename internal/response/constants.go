package response

// Width types accepted by ffmpeg's biquad filters (option "t").
const (
	widthHertz   = "h"
	widthKHertz  = "k"
	widthOctave  = "o"
	widthQFactor = "q"
	widthSlope   = "s"
)

// Defaults ffmpeg applies when an option is omitted.
const (
	defaultHighPassFreq  = 3000.0
	defaultHighPassWidth = 0.707
	defaultHighPassPoles = 2

	defaultEqualizerWidth = 1.0

	defaultBassFreq  = 100.0
	defaultBassWidth = 0.5
)

// Curve sampling
const (
	DefaultPoints = 512
	DefaultFMin   = 10.0
	DefaultFMax   = 20000.0
)
