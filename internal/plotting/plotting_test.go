package plotting

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func testSeries() []Series {
	freqs := []float64{0, 10, 100, 1000, 10000}
	return []Series{
		{Name: "noise.mp3", Freqs: freqs, Values: []float64{-60, -60, -61, -60, -59}},
		{Name: "processed-noise.mp3", Freqs: freqs, Values: []float64{-90, -75, -58, -60, -60}},
	}
}

func TestFigure_WriteToPNG(t *testing.T) {
	var buf bytes.Buffer
	n, err := PSDFigure(testSeries()...).WriteTo(&buf, "png")
	require.NoError(t, err)

	assert.Equal(t, int64(buf.Len()), n)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
}

func TestFigure_WriteToSVG(t *testing.T) {
	var buf bytes.Buffer
	_, err := ResponseFigure(testSeries()...).WriteTo(&buf, "SVG")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")
}

func TestFigure_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectrum.png")
	require.NoError(t, PSDFigure(testSeries()...).Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngSignature))
}

func TestFigure_Errors(t *testing.T) {
	tests := []struct {
		name   string
		series []Series
		path   string
		want   error
	}{
		{
			name:   "unsupported extension",
			series: testSeries(),
			path:   "spectrum.bmp",
			want:   ErrUnsupportedFormat,
		},
		{
			name: "no series",
			path: "spectrum.png",
			want: ErrNoData,
		},
		{
			name:   "only non-positive frequencies",
			series: []Series{{Name: "dc", Freqs: []float64{0}, Values: []float64{1}}},
			path:   "spectrum.png",
			want:   ErrNoData,
		},
		{
			name:   "length mismatch",
			series: []Series{{Name: "bad", Freqs: []float64{1, 2}, Values: []float64{1}}},
			path:   "spectrum.png",
			want:   ErrLengthMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.path)
			err := PSDFigure(tt.series...).Save(path)
			require.ErrorIs(t, err, tt.want)
			assert.NoFileExists(t, path)
		})
	}
}

func TestFigure_Plot(t *testing.T) {
	p, err := PSDFigure(testSeries()...).Plot()
	require.NoError(t, err)

	assert.Equal(t, PSDTitle, p.Title.Text)
	assert.Equal(t, FrequencyLabel, p.X.Label.Text)
	assert.Equal(t, PSDLabel, p.Y.Label.Text)

	ticks := p.X.Tick.Marker.Ticks(p.X.Min, p.X.Max)
	require.Len(t, ticks, len(DefaultTicks()))
	assert.Equal(t, "1k", ticks[7].Label)
}

func TestFigure_FixedRange(t *testing.T) {
	fig := PSDFigure(testSeries()...)
	fig.XMin, fig.XMax = 10, 10000

	p, err := fig.Plot()
	require.NoError(t, err)
	assert.InDelta(t, 10, p.X.Min, 1e-12)
	assert.InDelta(t, 10000, p.X.Max, 1e-12)
}

func TestTickLabel(t *testing.T) {
	tests := []struct {
		hz   float64
		want string
	}{
		{20, "20"},
		{70, "70"},
		{700, "700"},
		{1000, "1k"},
		{2500, "2.5k"},
		{10000, "10k"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, TickLabel(tt.hz))
		})
	}
}
