// Package plotting renders spectra and response curves to image files with a
// logarithmic frequency axis.
package plotting

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var (
	// ErrNoData indicates a figure without any plottable points.
	ErrNoData = errors.New("no data to plot")

	// ErrLengthMismatch indicates a series whose x and y lengths differ.
	ErrLengthMismatch = errors.New("series length mismatch")

	// ErrUnsupportedFormat indicates an output file type gonum/plot cannot write.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Series is one labelled curve.
type Series struct {
	Name   string
	Freqs  []float64
	Values []float64
}

// Figure describes a frequency-domain plot.
type Figure struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series

	// Ticks are the labelled positions on the frequency axis.
	Ticks []float64

	// XMin and XMax fix the frequency range. Zero values fit the data.
	XMin float64
	XMax float64

	Width  vg.Length
	Height vg.Length
}

// PSDFigure returns the figure used to compare the spectrum of a recording
// before and after processing.
func PSDFigure(series ...Series) *Figure {
	return &Figure{
		Title:  PSDTitle,
		XLabel: FrequencyLabel,
		YLabel: PSDLabel,
		Series: series,
		Ticks:  DefaultTicks(),
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}

// ResponseFigure returns the figure used for the predicted chain response.
func ResponseFigure(series ...Series) *Figure {
	f := PSDFigure(series...)
	f.Title = ResponseTitle
	f.YLabel = ResponseLabel
	return f
}

// DefaultTicks returns the frequency axis labels used by all figures.
func DefaultTicks() []float64 {
	return []float64{20, 50, 70, 100, 200, 500, 700, 1000, 2000, 5000, 10000}
}

// Plot builds the gonum plot for the figure.
func (f *Figure) Plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = f.XLabel
	p.Y.Label.Text = f.YLabel
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.ConstantTicks(tickMarks(f.Ticks))
	p.Legend.Top = true

	grid := plotter.NewGrid()
	grid.Vertical.Dashes = gridDashes
	grid.Horizontal.Dashes = gridDashes
	grid.Vertical.Color = gridColor
	grid.Horizontal.Color = gridColor
	p.Add(grid)

	var points int
	for i, s := range f.Series {
		if len(s.Freqs) != len(s.Values) {
			return nil, fmt.Errorf("%w: %s has %d frequencies and %d values",
				ErrLengthMismatch, s.Name, len(s.Freqs), len(s.Values))
		}

		xys := make(plotter.XYs, 0, len(s.Freqs))
		for j, x := range s.Freqs {
			// log axis
			if x <= 0 {
				continue
			}
			xys = append(xys, plotter.XY{X: x, Y: s.Values[j]})
		}
		if len(xys) == 0 {
			continue
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = lineWidth
		p.Add(line)
		p.Legend.Add(s.Name, line)
		points += len(xys)
	}

	if points == 0 {
		return nil, ErrNoData
	}
	if f.XMin > 0 {
		p.X.Min = f.XMin
	}
	if f.XMax > 0 {
		p.X.Max = f.XMax
	}
	return p, nil
}

// Save writes the figure to path. The format follows the file extension.
func (f *Figure) Save(path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !supportedFormat(format) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	p, err := f.Plot()
	if err != nil {
		return err
	}
	if err := p.Save(f.Width, f.Height, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

// WriteTo renders the figure in the given format ("png", "svg", "pdf", ...).
func (f *Figure) WriteTo(w io.Writer, format string) (int64, error) {
	format = strings.ToLower(format)
	if !supportedFormat(format) {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	p, err := f.Plot()
	if err != nil {
		return 0, err
	}
	wt, err := p.WriterTo(f.Width, f.Height, format)
	if err != nil {
		return 0, fmt.Errorf("failed to render plot: %w", err)
	}
	return wt.WriteTo(w)
}

// TickLabel formats a frequency for the axis: 700 → "700", 2000 → "2k".
func TickLabel(hz float64) string {
	if hz >= 1000 {
		return strconv.FormatFloat(hz/1000, 'f', -1, 64) + "k"
	}
	return strconv.FormatFloat(hz, 'f', -1, 64)
}

func tickMarks(values []float64) []plot.Tick {
	ticks := make([]plot.Tick, len(values))
	for i, v := range values {
		ticks[i] = plot.Tick{Value: v, Label: TickLabel(v)}
	}
	return ticks
}

func supportedFormat(format string) bool {
	switch format {
	case "png", "svg", "pdf", "eps", "jpg", "jpeg", "tif", "tiff":
		return true
	default:
		return false
	}
}
