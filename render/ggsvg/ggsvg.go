// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ggsvg is the default rendering backend. It draws every plot
// kind through the gg grammar-of-graphics pipeline and writes a
// self-contained SVG document, composing a legend beside the plot
// when the figure carries one.
package ggsvg

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/aclements/go-gg/gg"
	svg "github.com/ajstarks/svgo"
	"github.com/quickplot/quickplot/core"
	"github.com/quickplot/quickplot/render"
)

// Renderer is the gg backend. The zero value is ready to use.
type Renderer struct{}

func init() {
	render.RegisterBackend(&Renderer{})
}

// Name returns "gg".
func (*Renderer) Name() string { return "gg" }

// RenderSVG draws the frames into one SVG document. The first frame's
// spec decides the figure size, title, and axis labels; facets apply
// only to single-frame figures.
func (*Renderer) RenderSVG(w io.Writer, frames []render.Frame) error {
	if len(frames) == 0 {
		return errors.New("ggsvg: no frames to draw")
	}
	first := frames[0].Spec
	if first.Kind() == core.KindTable {
		if len(frames) > 1 {
			core.Warning.Printf("table kind cannot overlay; drawing the first frame only")
		}
		return renderTable(w, frames[0])
	}

	prepared := make([]*frame, 0, len(frames))
	for _, r := range frames {
		if r.Spec.Kind() == core.KindTable {
			core.Warning.Printf("skipping table frame inside an overlay")
			continue
		}
		f, err := buildFrame(r)
		if err != nil {
			return err
		}
		prepared = append(prepared, f)
	}
	if len(prepared) == 0 {
		return errors.New("ggsvg: no drawable frames")
	}

	p := gg.NewPlot(prepared[0].tab)
	for _, f := range prepared {
		p.SetData(f.tab)
		if len(prepared) == 1 {
			applyFacets(p, f)
		} else if f.facetRow != "" || f.facetCol != "" {
			core.Warning.Printf("facets are ignored in overlays")
		}
		p.Save()
		if err := f.addLayers(p); err != nil {
			return err
		}
		p.Restore()
	}
	applyFigure(p, prepared)

	width, height := first.Width(), first.Height()
	li := collectLegend(prepared)
	lw := li.width()
	if lw == 0 || width-lw < 100 {
		return p.WriteSVG(w, width, height)
	}

	var plotBuf, legBuf bytes.Buffer
	if err := p.WriteSVG(&plotBuf, width-lw, height); err != nil {
		return err
	}
	li.write(&legBuf, lw, height)

	s := svg.New(w)
	s.Start(width, height)
	if err := render.EmbedSVG(w, plotBuf.Bytes(), 0, 0); err != nil {
		return err
	}
	if err := render.EmbedSVG(w, legBuf.Bytes(), width-lw, 0); err != nil {
		return err
	}
	s.End()
	return nil
}

// buildFrame runs the per-kind data preparation.
func buildFrame(r render.Frame) (*frame, error) {
	spec := r.Spec
	switch kind := spec.Kind(); kind {
	case core.KindLine, core.KindStep, core.KindArea:
		return prepXY(r, false)

	case core.KindScatter, core.KindPoints:
		if spec.Rasterize() {
			if len(spec.Ys()) > 1 {
				core.Warning.Printf("rasterize uses the first value field only")
			}
			return prepGrid(r)
		}
		return prepXY(r, false)

	case core.KindBar, core.KindBarh:
		f, err := prepXY(r, true)
		if err != nil {
			return nil, err
		}
		if kind == core.KindBarh {
			f.x, f.y = f.y, f.x
		}
		return f, nil

	case core.KindErrorbars:
		f, err := prepXY(r, false)
		if err != nil {
			return nil, err
		}
		return f, prepErrorbars(f)

	case core.KindLabels:
		f, err := prepXY(r, false)
		if err != nil {
			return nil, err
		}
		return f, prepLabels(f)

	case core.KindHist, core.KindKDE:
		return prepDist(r, !spec.Invert())

	case core.KindBox, core.KindViolin:
		return prepDist(r, spec.Invert())

	case core.KindHeatmap, core.KindImage, core.KindQuadmesh,
		core.KindContour, core.KindHexbin, core.KindBivariate:
		return prepGrid(r)
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedKind, spec.Kind())
}

// addLayers runs the per-kind geometry builder against the plot's
// current data. Builders may regroup and replace the data; the caller
// brackets the call with Save and Restore.
func (f *frame) addLayers(p *gg.Plot) error {
	spec := f.spec
	switch kind := spec.Kind(); kind {
	case core.KindLine:
		addLine(p, f)
	case core.KindStep:
		addStep(p, f)
	case core.KindArea:
		addArea(p, f)
	case core.KindScatter, core.KindPoints:
		if spec.Rasterize() {
			nx, ny := rasterGrid(spec.Width(), spec.Height())
			return addBinned2D(p, f, nx, ny)
		}
		addScatter(p, f)
	case core.KindBar:
		addBar(p, f, spec.Invert())
	case core.KindBarh:
		addBar(p, f, !spec.Invert())
	case core.KindErrorbars:
		addErrorbars(p, f)
	case core.KindLabels:
		addLabels(p, f)
	case core.KindHist:
		addHist(p, f)
	case core.KindKDE:
		addKDE(p, f)
	case core.KindBox:
		addBox(p, f)
	case core.KindViolin:
		addViolin(p, f)
	case core.KindHeatmap, core.KindImage:
		return addGrid(p, f)
	case core.KindQuadmesh:
		return addQuadmesh(p, f)
	case core.KindContour:
		return addContour(p, f)
	case core.KindHexbin:
		return addHexbin(p, f)
	case core.KindBivariate:
		bins := spec.Bins()
		if bins <= 0 {
			bins = 40
		}
		return addBinned2D(p, f, bins, bins)
	default:
		return fmt.Errorf("%w: %q", core.ErrUnsupportedKind, kind)
	}
	return nil
}

// applyFacets splits the plot into subplot rows and columns. Facets
// restructure the plot's data, so they must run before the layer
// builders.
func applyFacets(p *gg.Plot, f *frame) {
	if f.facetRow != "" {
		p.Add(gg.FacetY{Col: f.facetRow})
	}
	if f.facetCol != "" {
		p.Add(gg.FacetX{Col: f.facetCol})
	}
}

// applyFigure sets the title, axis labels, and axis scales from the
// prepared frames. The first frame's spec wins for labels; axis
// requirements merge across overlaid frames.
func applyFigure(p *gg.Plot, frames []*frame) {
	first := frames[0].spec
	if t := first.Title(); t != "" {
		p.Add(gg.Title(t))
	}
	xa, ya := mergeAxes(frames)
	if l := axisLabel(first.XLabel(), xa); l != "" {
		p.Add(gg.AxisLabel("x", l))
	}
	if l := axisLabel(first.YLabel(), ya); l != "" {
		p.Add(gg.AxisLabel("y", l))
	}
	setScale(p, "x", xa)
	setScale(p, "y", ya)
}

func axisLabel(override string, a axis) string {
	if override != "" {
		return override
	}
	return a.label
}

// mergeAxes folds the drawn-axis requirements of overlaid frames into
// one pair, warning when frames disagree on axis treatment.
func mergeAxes(frames []*frame) (xa, ya axis) {
	xa, ya = frames[0].x, frames[0].y
	for _, f := range frames[1:] {
		if f.x.includeZero {
			xa.includeZero = true
		}
		if f.y.includeZero {
			ya.includeZero = true
		}
		if !xa.limSet && f.x.limSet {
			xa.lim, xa.limSet = f.x.lim, true
		}
		if !ya.limSet && f.y.limSet {
			ya.lim, ya.limSet = f.y.lim, true
		}
		if f.x.log != xa.log || f.y.log != ya.log {
			core.Warning.Printf("overlaid frames disagree on log axes")
		}
		if (f.x.cats == nil) != (xa.cats == nil) || (f.y.cats == nil) != (ya.cats == nil) {
			core.Warning.Printf("overlaid frames mix categorical and numeric axes")
		}
	}
	return
}

// setScale installs an explicit linear scale when the axis needs
// limits, zero anchoring, categorical padding, or tick formatting.
func setScale(p *gg.Plot, aes string, a axis) {
	if a.cats == nil && !a.time && !a.log && !a.limSet && !a.includeZero {
		return
	}
	sc := gg.NewLinearScaler()
	if a.limSet {
		sc.SetMin(a.lim[0])
		sc.SetMax(a.lim[1])
	} else if a.includeZero {
		sc.Include(0)
	}
	if a.cats != nil {
		sc.Include(-0.5)
		sc.Include(float64(len(a.cats)) - 0.5)
	}
	if fm := a.formatter(); fm != nil {
		sc.SetFormatter(fm)
	}
	p.SetScale(aes, sc)
}
