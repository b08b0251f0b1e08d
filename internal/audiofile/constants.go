package audiofile

// DefaultSampleRate is the rate signals are loaded at for analysis.
const DefaultSampleRate = 44100

// Sample format constants
const (
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// go-mp3 always produces 16-bit little-endian stereo
	mp3Channels       = 2
	mp3BytesPerSample = 2
	mp3FrameBytes     = mp3Channels * mp3BytesPerSample
	mp3Scale          = 32768.0

	// ffmpeg raw output format used for decoding
	rawFormat         = "f32le"
	rawBytesPerSample = 4
)

// WAV format tags
const (
	wavFormatPCM = 1
)

// White noise fallback
const (
	noiseBitDepth = bitsPerSample16
	noiseSeedMix  = 0x9e3779b97f4a7c15
)
