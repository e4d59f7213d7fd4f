/*
 * pahplot.go, part of gopahdb.
 *
 *
 * Copyright 2021 Raul Mera rauldotmeraatusachdotcl
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 *
 */

//Package pahplot draws PAH spectra, stick spectra of transitions and
//spectral fits. Static plots use gonum/plot, and their format (png, pdf,
//svg, eps...) follows the extension of the file name. SpectrumHTML writes an
//interactive chart.
package pahplot

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	pahdb "github.com/rmera/gopahdb"
	"github.com/rmera/gopahdb/histo"
)

//Size of the saved plots.
var (
	Width  = 16 * vg.Centimeter
	Height = 10 * vg.Centimeter
)

//Component groupings for fit plots.
const (
	ByUID         = "uids"
	ByCharge      = "charge"
	BySize        = "size"
	ByComposition = "composition"
)

var kindClasses = map[string][]string{
	ByCharge:      {"anion", "neutral", "cation"},
	BySize:        {"small", "large"},
	ByComposition: {"pure", "nitrogen"},
}

//FitPlotOptions contains the options for Fit.
type FitPlotOptions struct {
	Wavelength bool   //plot against wavelength, in micron, instead of frequency
	Residual   bool   //also plot the residual, in <name>_residual.<ext>
	Kind       string //ByUID, ByCharge, BySize or ByComposition
	Small      int    //largest number of carbons of a small PAH
}

//newPlot returns a plot with the axes set for spectra.
func newPlot(title, ylabel string, wavelength bool) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.Y.Label.Text = ylabel
	if wavelength {
		p.X.Label.Text = "wavelength [micron]"
	} else {
		p.X.Label.Text = "frequency [cm-1]"
		p.X.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

//xys returns the points, with the abscissa in micron if wavelength is true.
//Points with a non-finite value are skipped.
func xys(x, y []float64, wavelength bool) plotter.XYs {
	r := make(plotter.XYs, 0, len(x))
	for i, v := range x {
		if wavelength {
			if v == 0 {
				continue
			}
			v = 1e4 / v
		}
		if isBad(v) || isBad(y[i]) {
			continue
		}
		r = append(r, plotter.XY{X: v, Y: y[i]})
	}
	sort.Slice(r, func(i, j int) bool { return r[i].X < r[j].X })
	return r
}

func isBad(v float64) bool {
	return v != v || v > 1e300 || v < -1e300
}

//addLine adds a line with the given color and legend entry.
func addLine(p *plot.Plot, pts plotter.XYs, c color.Color, name string, dashed bool) error {
	l, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(1)
	if dashed {
		l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	}
	p.Add(l)
	if name != "" {
		p.Legend.Add(name, l)
	}
	return nil
}

func save(p *plot.Plot, filename string) error {
	if filepath.Ext(filename) == "" {
		filename += ".png"
	}
	if err := p.Save(Width, Height, filename); err != nil {
		return fmt.Errorf("pahplot: saving %s: %w", filename, err)
	}
	return nil
}

//Transitions draws a stick spectrum of the transitions, one color per UID.
func Transitions(t *pahdb.Transitions, filename string) error {
	p := newPlot("Transitions", t.Units.Ordinate.String(), false)
	for i, uid := range t.UIDs {
		modes := append([]pahdb.Mode(nil), t.Modes[uid]...)
		sort.Slice(modes, func(i, j int) bool { return modes[i].Frequency < modes[j].Frequency })
		pts := make(plotter.XYs, 0, 3*len(modes))
		for _, m := range modes {
			pts = append(pts, plotter.XY{X: m.Frequency, Y: 0}, plotter.XY{X: m.Frequency, Y: m.Intensity}, plotter.XY{X: m.Frequency, Y: 0})
		}
		if len(pts) == 0 {
			continue
		}
		if err := addLine(p, pts, colors(i, len(t.UIDs)), fmt.Sprintf("UID %d", uid), false); err != nil {
			return err
		}
	}
	return save(p, filename)
}

//Spectrum draws one line per UID.
func Spectrum(s *pahdb.Spectrum, filename string) error {
	p := newPlot("Spectrum", s.Units.Ordinate.String(), false)
	for i, uid := range s.UIDs {
		if err := addLine(p, xys(s.Grid, s.Intensities[uid], false), colors(i, len(s.UIDs)), fmt.Sprintf("UID %d", uid), false); err != nil {
			return err
		}
	}
	return save(p, filename)
}

//observed adds the observation, with error bars if it has uncertainties.
func observed(p *plot.Plot, obs pahdb.Observed, grid []float64, wavelength bool) error {
	x := obs.Grid()
	if len(x) == 0 {
		x = grid
	}
	pts := xys(x, obs.Flux(), wavelength)
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.GlyphStyle.Color = classColors["observed"]
	s.GlyphStyle.Radius = vg.Points(1.5)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(s)
	p.Legend.Add("observed", s)
	sigma := obs.Uncertainty()
	if len(sigma) != len(x) {
		return nil
	}
	var e struct {
		plotter.XYs
		plotter.YErrors
	}
	for i, v := range x {
		if wavelength {
			if v == 0 {
				continue
			}
			v = 1e4 / v
		}
		e.XYs = append(e.XYs, plotter.XY{X: v, Y: obs.Flux()[i]})
		e.YErrors = append(e.YErrors, struct{ Low, High float64 }{sigma[i], sigma[i]})
	}
	eb, err := plotter.NewYErrorBars(e)
	if err != nil {
		return err
	}
	eb.LineStyle.Color = classColors["observed"]
	p.Add(eb)
	return nil
}

//Fit draws the observation, the fit and its components.
func Fit(f *pahdb.Fitted, filename string, O FitPlotOptions) error {
	p := newPlot(fmt.Sprintf("%s fit", f.Method), f.Units.Ordinate.String(), O.Wavelength)
	if err := observed(p, f.Observation, f.Grid, O.Wavelength); err != nil {
		return err
	}
	if err := addLine(p, xys(f.Grid, f.GetFit(), O.Wavelength), classColors["fit"], "fit", false); err != nil {
		return err
	}
	kind := O.Kind
	if kind == "" {
		kind = ByUID
	}
	if kind == ByUID {
		for i, uid := range f.UIDs {
			if err := addLine(p, xys(f.Grid, f.Intensities[uid], O.Wavelength), colors(i, len(f.UIDs)), fmt.Sprintf("UID %d", uid), true); err != nil {
				return err
			}
		}
	} else {
		classes, ok := kindClasses[kind]
		if !ok {
			return fmt.Errorf("pahplot: unknown plot kind %q", kind)
		}
		c := f.GetClasses(O.Small)
		for _, name := range classes {
			if err := addLine(p, xys(f.Grid, c[name], O.Wavelength), classColors[name], name, true); err != nil {
				return err
			}
		}
	}
	if err := save(p, filename); err != nil {
		return err
	}
	if !O.Residual {
		return nil
	}
	r := newPlot("Residual", f.Units.Ordinate.String(), O.Wavelength)
	if err := addLine(r, xys(f.Grid, f.GetResidual(), O.Wavelength), classColors["fit"], "", false); err != nil {
		return err
	}
	ext := filepath.Ext(filename)
	return save(r, strings.TrimSuffix(filename, ext)+"_residual"+ext)
}

//MCFit draws the mean fit, with dashed lines one standard deviation away, and the mean
//spectra of the classes of the given kind (ByCharge by default).
func MCFit(m *pahdb.MCFitted, filename, kind string) error {
	if kind == "" || kind == ByUID {
		kind = ByCharge
	}
	classes, ok := kindClasses[kind]
	if !ok {
		return fmt.Errorf("pahplot: unknown plot kind %q", kind)
	}
	grid := m.Spectrum.Grid
	p := newPlot(fmt.Sprintf("Monte Carlo fit, %d samples", m.Len()), m.Spectrum.Units.Ordinate.String(), false)
	if err := observed(p, m.Observation, grid, false); err != nil {
		return err
	}
	c := m.GetClasses()
	fit := c["fit"]
	lo := make([]float64, len(grid))
	hi := make([]float64, len(grid))
	for i := range grid {
		lo[i] = fit.Mean[i] - fit.Std[i]
		hi[i] = fit.Mean[i] + fit.Std[i]
	}
	if err := addLine(p, xys(grid, fit.Mean, false), classColors["fit"], "fit", false); err != nil {
		return err
	}
	for _, b := range [][]float64{lo, hi} {
		if err := addLine(p, xys(grid, b, false), classColors["fit"], "", true); err != nil {
			return err
		}
	}
	for _, name := range classes {
		if err := addLine(p, xys(grid, c[name].Mean, false), classColors[name], name, false); err != nil {
			return err
		}
	}
	return save(p, filename)
}

//WeightHistograms draws the weight histograms of a Monte Carlo fit, as returned
//by MCFitted.WeightHistograms, one line per UID, normalized to fractions of the samples.
func WeightHistograms(set *histo.Set, filename string) error {
	p := plot.New()
	p.Title.Text = "Monte Carlo weights"
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = "weight"
	p.Y.Label.Text = "fraction of samples"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	set.NormalizeAll()
	ids := set.IDs()
	for i, uid := range ids {
		h := set.Get(uid)
		if !h.Normalized() {
			continue
		}
		x, y := h.Centers(), h.View()
		pts := make(plotter.XYs, len(x))
		for j := range x {
			pts[j] = plotter.XY{X: x[j], Y: y[j]}
		}
		name := fmt.Sprintf("UID %d, mode %.3g", uid, h.Mode())
		if err := addLine(p, pts, colors(i, len(ids)), name, false); err != nil {
			return err
		}
	}
	return save(p, filename)
}

//SpectrumHTML writes to w an interactive line chart of the spectra.
func SpectrumHTML(s *pahdb.Spectrum, w io.Writer) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "PAH spectrum", Width: "1000px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "PAH spectrum", Subtitle: fmt.Sprintf("%s %s, %d species", s.Type, s.Version, len(s.UIDs))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{Name: s.Units.Abscissa.String(), Type: "value", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: s.Units.Ordinate.String(), Type: "value"}),
	)
	for _, uid := range s.UIDs {
		pts := xys(s.Grid, s.Intensities[uid], false)
		data := make([]opts.LineData, 0, len(pts))
		for _, v := range pts {
			data = append(data, opts.LineData{Value: []interface{}{v.X, v.Y}})
		}
		line.AddSeries(fmt.Sprintf("UID %d", uid), data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("pahplot: rendering chart: %w", err)
	}
	return nil
}
