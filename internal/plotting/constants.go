package plotting

import (
	"image/color"

	"gonum.org/v1/plot/vg"
)

// Figure text
const (
	PSDTitle       = "Power Spectral Density (Welch) — White Noise vs. EQ’d"
	ResponseTitle  = "Predicted Filter Chain Response"
	FrequencyLabel = "Frequency (Hz, log scale)"
	PSDLabel       = "Level (dB / Hz)"
	ResponseLabel  = "Gain (dB)"
)

// Figure size
const (
	DefaultWidth  = 9 * vg.Inch
	DefaultHeight = 5.5 * vg.Inch
)

var (
	lineWidth  = vg.Points(1.2)
	gridDashes = []vg.Length{vg.Points(1), vg.Points(3)}
	gridColor  = color.Gray{Y: 200}
)
