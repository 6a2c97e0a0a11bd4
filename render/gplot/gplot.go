// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gplot is a rendering backend over gonum.org/v1/plot. Unlike
// the gg backend it hands the whole scene to a renderer that owns its
// own layout, legends, and tick logic, so it covers fewer kinds but
// can also rasterize to PNG.
//
// Select it with the backend option:
//
//	a.Line(quickplot.Options{"backend": "gonum"})
package gplot

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/quickplot/quickplot/core"
	"github.com/quickplot/quickplot/render"
	"github.com/quickplot/quickplot/render/ggsvg"
)

// Renderer is the gonum backend. The zero value is ready to use.
type Renderer struct{}

func init() {
	render.RegisterBackend(&Renderer{})
}

// Name returns "gonum".
func (*Renderer) Name() string { return "gonum" }

// RenderSVG draws the frames into one SVG document.
func (*Renderer) RenderSVG(w io.Writer, frames []render.Frame) error {
	p, width, height, err := build(frames)
	if err != nil {
		return err
	}
	c := vgsvg.New(vg.Points(float64(width)), vg.Points(float64(height)))
	p.Draw(draw.New(c))
	_, err = c.WriteTo(w)
	return err
}

// RenderPNG draws the frames as a PNG image. SVG output goes through
// the render.Handle writers; PNG is this backend's extra talent.
func (*Renderer) RenderPNG(w io.Writer, frames []render.Frame) error {
	p, width, height, err := build(frames)
	if err != nil {
		return err
	}
	c := vgimg.New(vg.Points(float64(width)), vg.Points(float64(height)))
	p.Draw(draw.New(c))
	_, err = vgimg.PngCanvas{Canvas: c}.WriteTo(w)
	return err
}

// WritePNG renders a handle to PNG through this backend, regardless of
// the backend its specs name.
func WritePNG(w io.Writer, h render.Handle) error {
	els := h.Elements()
	if len(els) == 0 {
		return errors.New("gplot: nothing to draw")
	}
	frames := make([]render.Frame, len(els))
	for i, el := range els {
		frames[i] = render.Frame{Spec: el.Spec, Data: el.Data}
	}
	r := new(Renderer)
	if err := r.RenderPNG(w, frames); err != nil {
		return &render.DelegationError{Backend: r.Name(), Err: err}
	}
	return nil
}

// build assembles one plot from the frames. The first frame's spec
// decides figure-level properties.
func build(frames []render.Frame) (p *plot.Plot, width, height int, err error) {
	if len(frames) == 0 {
		return nil, 0, 0, errors.New("gplot: no frames to draw")
	}
	first := frames[0].Spec
	width, height = first.Width(), first.Height()

	p = plot.New()
	p.Title.Text = first.Title()
	applyAxes(p, first, frames[0].Data)

	for _, f := range frames {
		if err := addFrame(p, f); err != nil {
			return nil, 0, 0, err
		}
	}
	if !first.Legend() {
		p.Legend = plot.NewLegend()
	}
	p.Legend.Top = true
	return p, width, height, nil
}

// applyAxes sets labels, limits, and scales from the leading spec.
// Data labels fill in where the spec does not override them.
func applyAxes(p *plot.Plot, spec *core.Spec, data core.Container) {
	xname := spec.X()
	if xname == "" {
		xname = "index"
	}
	yname := spec.ValueLabel()
	if ys := spec.Ys(); len(ys) == 1 {
		yname = ys[0]
	}
	if spec.Kind().Distribution() {
		xname, yname = "value", "count"
	}
	p.X.Label.Text = label(spec.XLabel(), xname)
	p.Y.Label.Text = label(spec.YLabel(), yname)

	if lim, ok := spec.XLim(); ok {
		p.X.Min, p.X.Max = lim[0], lim[1]
	}
	if lim, ok := spec.YLim(); ok {
		p.Y.Min, p.Y.Max = lim[0], lim[1]
	}
	if spec.LogX() {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if spec.LogY() {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if f, ok := data.Schema().Lookup(spec.X()); ok && f.Kind == core.Time && !spec.Kind().Grid() {
		p.X.Tick.Marker = plot.TimeTicks{}
	}
}

func label(override, name string) string {
	if override != "" {
		return override
	}
	return name
}

// addFrame adds one frame's layers to the plot.
func addFrame(p *plot.Plot, f render.Frame) error {
	spec := f.Spec
	switch kind := spec.Kind(); kind {
	case core.KindLine, core.KindStep, core.KindArea:
		return addLines(p, f, kind)
	case core.KindScatter, core.KindPoints:
		return addScatter(p, f)
	case core.KindBar, core.KindBarh:
		return addBars(p, f, kind == core.KindBarh)
	case core.KindHist:
		return addHist(p, f)
	case core.KindBox:
		return addBox(p, f)
	case core.KindHeatmap, core.KindImage, core.KindQuadmesh:
		return addHeatmap(p, f)
	case core.KindContour:
		return addContour(p, f)
	}
	return fmt.Errorf("gplot: kind %q not supported by the gonum backend (use the gg backend)", spec.Kind())
}

func addLines(p *plot.Plot, f render.Frame, kind core.Kind) error {
	spec := f.Spec
	d, err := extract(f)
	if err != nil {
		return err
	}
	for i, s := range d.sers {
		s = clean(s, spec.LogX(), spec.LogY())
		if len(s.xs) == 0 {
			continue
		}
		l, err := plotter.NewLine(xyPoints(s))
		if err != nil {
			return err
		}
		l.Color = d.colors[i]
		if spec.Size() > 0 {
			l.Width = vg.Points(spec.Size())
		}
		switch kind {
		case core.KindStep:
			l.StepStyle = plotter.PostStep
		case core.KindArea:
			l.FillColor = d.colors[i]
		}
		p.Add(l)
		if s.name != "" {
			p.Legend.Add(s.name, l)
		}
	}
	return nil
}

func addScatter(p *plot.Plot, f render.Frame) error {
	spec := f.Spec
	d, err := extract(f)
	if err != nil {
		return err
	}
	for i, s := range d.sers {
		s = clean(s, spec.LogX(), spec.LogY())
		if len(s.xs) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(xyPoints(s))
		if err != nil {
			return err
		}
		radius := vg.Points(2)
		if spec.Size() > 0 {
			radius = vg.Points(spec.Size() / 2)
		}
		sc.GlyphStyle.Color = d.colors[i]
		sc.GlyphStyle.Radius = radius
		if d.ramp != nil {
			rows := s.rows
			sc.GlyphStyleFunc = func(j int) draw.GlyphStyle {
				return draw.GlyphStyle{
					Color:  d.ramp[rows[j]],
					Radius: radius,
					Shape:  draw.CircleGlyph{},
				}
			}
		}
		p.Add(sc)
		if s.name != "" && d.ramp == nil {
			p.Legend.Add(s.name, sc)
		}
	}
	return nil
}

// addBars draws one bar group per series, offset so groups sit side by
// side. The x field supplies the nominal category labels.
func addBars(p *plot.Plot, f render.Frame, horizontal bool) error {
	spec := f.Spec
	d, err := extract(f)
	if err != nil {
		return err
	}
	n := len(d.sers)
	if n == 0 {
		return errors.New("gplot: no series to draw")
	}
	barw := vg.Points(40 / float64(n))
	var last *plotter.BarChart
	for i, s := range d.sers {
		b, err := plotter.NewBarChart(plotter.Values(s.ys), barw)
		if err != nil {
			return err
		}
		b.Color = d.colors[i]
		b.LineStyle.Width = 0
		b.Horizontal = horizontal
		if spec.Stacked() && last != nil {
			b.StackOn(last)
		} else {
			b.Offset = barw * vg.Length(i-n/2)
		}
		last = b
		p.Add(b)
		if s.name != "" {
			p.Legend.Add(s.name, b)
		}
	}
	if labels, err := categoryLabels(f, d); err == nil && labels != nil {
		if horizontal {
			p.NominalY(labels...)
		} else {
			p.NominalX(labels...)
		}
	}
	return nil
}

// categoryLabels returns the x field's values as nominal labels, or
// nil when there is no x field or the series diverge on row sets.
func categoryLabels(f render.Frame, d *dataset) ([]string, error) {
	if f.Spec.X() == "" || len(d.sers) == 0 {
		return nil, nil
	}
	data, err := tabular(f.Data)
	if err != nil {
		return nil, err
	}
	all, err := stringsOf(data, f.Spec.X())
	if err != nil {
		return nil, err
	}
	rows := d.sers[0].rows
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = all[r]
	}
	return labels, nil
}

func addHist(p *plot.Plot, f render.Frame) error {
	spec := f.Spec
	bins := spec.Bins()
	if bins <= 0 {
		bins = 20
	}
	d, err := extract(f)
	if err != nil {
		return err
	}
	for i, s := range d.sers {
		vals := finite(s)
		if len(vals) == 0 {
			continue
		}
		h, err := plotter.NewHist(plotter.Values(vals), bins)
		if err != nil {
			return err
		}
		h.FillColor = d.colors[i]
		p.Add(h)
		if s.name != "" {
			p.Legend.Add(s.name, h)
		}
	}
	return nil
}

func addBox(p *plot.Plot, f render.Frame) error {
	d, err := extract(f)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(d.sers))
	for i, s := range d.sers {
		vals := finite(s)
		if len(vals) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(vals))
		if err != nil {
			return err
		}
		p.Add(b)
		names = append(names, s.name)
	}
	p.NominalX(names...)
	return nil
}

func addHeatmap(p *plot.Plot, f render.Frame) error {
	g, cname, err := gridOf(f)
	if err != nil {
		return err
	}
	pal, err := cmapPalette(f.Spec.Cmap(), f.Spec.Alpha())
	if err != nil {
		return err
	}
	p.Add(plotter.NewHeatMap(g, pal))
	if p.Title.Text == "" {
		p.Title.Text = cname
	}
	return nil
}

func addContour(p *plot.Plot, f render.Frame) error {
	spec := f.Spec
	g, _, err := gridOf(f)
	if err != nil {
		return err
	}
	n := spec.Levels()
	if n <= 0 {
		n = 7
	}
	lo, hi := minMax(g.z)
	levels := innerLevels(lo, hi, n)
	if levels == nil {
		return errors.New("gplot: no contour levels in data range")
	}
	pal, err := cmapPalette(spec.Cmap(), spec.Alpha())
	if err != nil {
		return err
	}
	p.Add(plotter.NewContour(g, levels, pal))
	return nil
}

func xyPoints(s series) plotter.XYs {
	pts := make(plotter.XYs, len(s.xs))
	for i := range pts {
		pts[i].X, pts[i].Y = s.xs[i], s.ys[i]
	}
	return pts
}

// cmapPalette samples a quickplot colormap into a fixed gonum palette.
type cmapSamples []color.Color

func (p cmapSamples) Colors() []color.Color { return p }

func cmapPalette(name string, alpha float64) (palette.Palette, error) {
	m, err := ggsvg.ParseColormap(name)
	if err != nil {
		return nil, err
	}
	const n = 255
	cs := make(cmapSamples, n)
	for i := range cs {
		cs[i] = m.At(float64(i)/(n-1), alpha)
	}
	return cs, nil
}
