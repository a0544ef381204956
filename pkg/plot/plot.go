package plot

import (
	"errors"
	"fmt"
	"path/filepath"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/edp1096/toy-mna/pkg/output"
)

// ErrNoData is returned when no series has a single point.
var ErrNoData = errors.New("nothing to plot")

type Options struct {
	Title  string
	XLabel string
	YLabel string
	LogX   bool // frequency sweeps spaced per decade or octave
	Width  vg.Length
	Height vg.Length
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 8 * vg.Inch
	}
	if h <= 0 {
		h = 5 * vg.Inch
	}
	return w, h
}

// Render builds a line chart with one line per series.
func Render(series []output.Series, opts Options) (*gplot.Plot, error) {
	p := gplot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Add(plotter.NewGrid())
	if opts.LogX {
		p.X.Scale = gplot.LogScale{}
		p.X.Tick.Marker = gplot.LogTicks{}
	}

	drawn := 0
	for i, s := range series {
		if len(s.X) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.X))
		for k := range s.X {
			xys[k].X = s.X[k]
			xys[k].Y = s.Y[k]
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Label, err)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i / 7)
		p.Add(line)
		p.Legend.Add(s.Label, line)
		drawn++
	}
	if drawn == 0 {
		return nil, ErrNoData
	}
	return p, nil
}

// Save renders series to path. The image format follows the extension
// (png, svg, pdf, ...).
func Save(path string, series []output.Series, opts Options) error {
	p, err := Render(series, opts)
	if err != nil {
		return err
	}
	w, h := opts.size()
	if filepath.Ext(path) == "" {
		path += ".png"
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}
