package spectrum

// Welch defaults
const (
	DefaultSegmentLength = 1024 * 16
	DefaultOverlap       = 0.5
)

// Savitzky-Golay defaults
const (
	DefaultSmoothWindow = 51
	DefaultSmoothOrder  = 3

	minSmoothWindow = 5
)

// Audible band shown in comparison plots
const (
	DefaultFMin = 10.0
	DefaultFMax = 10000.0
)

// powerFloor keeps log10 finite for empty bins.
const powerFloor = 1e-20

// oneSidedFactor folds negative-frequency power into positive bins.
const oneSidedFactor = 2.0
