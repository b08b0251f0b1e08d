package pipeline

// Filtergraph syntax
const (
	stageSeparator  = ","
	optionSeparator = ":"
	keyValueSep     = "="
	nameValueSep    = "="
)

// Characters that must be backslash-escaped in an option value before the
// value is embedded in a filter description (first quoting level).
const optionSpecialChars = `\':=`

// Characters that must be backslash-escaped in a filter description before it
// is embedded in a filtergraph (second quoting level).
const graphSpecialChars = `\'[],;`

// Stage limits
const (
	defaultStageCapacity = 8 // Initial capacity for stages slice
	maxStages            = 64
)

// Well-known ffmpeg audio filter names
const (
	nameHighPass   = "highpass"
	nameEqualizer  = "equalizer"
	nameBass       = "bass"
	nameLowShelf   = "lowshelf"
	nameCompressor = "acompressor"
	nameLoudNorm   = "loudnorm"
)
