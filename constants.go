package postprocess

// Output naming and encoding defaults
const (
	DefaultPrefix  = "processed-"
	DefaultCodec   = "libmp3lame"
	DefaultBitrate = "192k"
)

// Batch limits
const (
	defaultJobs = 1
	maxJobs     = 64
)

// Preset names
const (
	PresetH2N        = "h2n"
	PresetPunch      = "punch"
	PresetCompressed = "compressed"
)

// Loudness target (EBU R128)
const (
	targetIntegrated = -14.0
	targetTruePeak   = -1.5
	targetLRA        = 11.0
)

// loudnorm options
const (
	loudnormFilter      = "loudnorm"
	printFormatKey      = "print_format"
	printFormatJSON     = "json"
	loudnessOffsetLimit = 1.0 // warn when output misses the target by more (LU)
)

// White noise test signal
const (
	DefaultNoiseSeconds = 10.0
	noiseSampleRate     = 44100
	noiseColor          = "white"
	lavfiFormat         = "lavfi"
)

// Spectrum comparison
const (
	DefaultSampleRate = 44100
)
