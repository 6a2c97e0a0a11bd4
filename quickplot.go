// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package quickplot plots data containers with one call.
//
// Plot binds an accessor to any supported container — a go-gg table, a
// labelled array, a stream buffer, a graph, or anything with a
// registered adapter — and the accessor exposes one method per plot
// kind:
//
//	a, err := quickplot.Plot(tab)
//	h, err := a.Scatter(quickplot.Options{"x": "day", "y": "temp", "by": "city"})
//	err = h.WriteSVG(os.Stdout)
//
// Handles compose: Overlay superimposes plots in one coordinate frame
// and Layout places them side by side. Indexed dimensions a call does
// not consume become interactive widgets; see packages widget and
// serve.
//
// Importing this package registers the tabular container adapter and
// both rendering backends. Programs that want a smaller closure import
// the adapter and backend packages they need directly.
package quickplot

import (
	"fmt"

	"github.com/quickplot/quickplot/accessor"
	"github.com/quickplot/quickplot/core"
	"github.com/quickplot/quickplot/render"

	// Default container adapters and rendering backends.
	_ "github.com/quickplot/quickplot/container/ggtable"
	_ "github.com/quickplot/quickplot/container/ndarray"
	_ "github.com/quickplot/quickplot/render/ggsvg"
	_ "github.com/quickplot/quickplot/render/gplot"
)

// Options is the keyword option set of a plot call; see core.Options
// for the recognized keys and their types.
type Options = core.Options

// An Accessor is a plotting namespace bound to one container. Obtain
// one with Plot; the zero value has no container and every call fails.
type Accessor struct {
	data core.Container
}

// Namespace is the name accessors register under.
const Namespace = "plot"

func init() {
	accessor.RegisterNamespace(Namespace, newNamespace)
}

func newNamespace(c core.Container) (any, error) {
	return &Accessor{data: c}, nil
}

// Plot binds a plotting accessor to v. v is either a core.Container or
// a value some registered adapter can wrap, such as a *table.Table.
func Plot(v any) (*Accessor, error) {
	ns, err := accessor.Default.Namespace(v, Namespace)
	if err != nil {
		return nil, err
	}
	return ns.(*Accessor), nil
}

// Data returns the bound container.
func (a *Accessor) Data() core.Container { return a.data }

// Dispatch resolves a call to its normalized spec without rendering.
// Multiple option sets merge left to right, later sets winning.
func (a *Accessor) Dispatch(kind core.Kind, opts ...Options) (*core.Spec, error) {
	if a.data == nil {
		return nil, fmt.Errorf("quickplot: accessor has no container")
	}
	merged := Options{}
	for _, o := range opts {
		merged = o.Merge(merged)
	}
	return core.Call(a.data, kind, merged)
}

// Call dispatches a plot call by kind name and returns its handle.
func (a *Accessor) Call(kind string, opts ...Options) (render.Handle, error) {
	k, err := core.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	return a.kind(k, opts)
}

// Auto plots the container with everything defaulted: a line plot of
// the numeric fields over the first index dimension. It is the
// no-argument accessor call.
func (a *Accessor) Auto(opts ...Options) (render.Handle, error) {
	return a.kind(core.KindLine, opts)
}

func (a *Accessor) kind(k core.Kind, opts []Options) (render.Handle, error) {
	spec, err := a.Dispatch(k, opts...)
	if err != nil {
		return nil, err
	}
	return render.NewPlot(spec, a.data), nil
}

// The per-kind accessor methods.

func (a *Accessor) Line(opts ...Options) (render.Handle, error)    { return a.kind(core.KindLine, opts) }
func (a *Accessor) Scatter(opts ...Options) (render.Handle, error) { return a.kind(core.KindScatter, opts) }
func (a *Accessor) Area(opts ...Options) (render.Handle, error)    { return a.kind(core.KindArea, opts) }
func (a *Accessor) Step(opts ...Options) (render.Handle, error)    { return a.kind(core.KindStep, opts) }
func (a *Accessor) Bar(opts ...Options) (render.Handle, error)     { return a.kind(core.KindBar, opts) }
func (a *Accessor) Barh(opts ...Options) (render.Handle, error)    { return a.kind(core.KindBarh, opts) }
func (a *Accessor) Hist(opts ...Options) (render.Handle, error)    { return a.kind(core.KindHist, opts) }
func (a *Accessor) KDE(opts ...Options) (render.Handle, error)     { return a.kind(core.KindKDE, opts) }
func (a *Accessor) Box(opts ...Options) (render.Handle, error)     { return a.kind(core.KindBox, opts) }
func (a *Accessor) Violin(opts ...Options) (render.Handle, error)  { return a.kind(core.KindViolin, opts) }
func (a *Accessor) Heatmap(opts ...Options) (render.Handle, error) { return a.kind(core.KindHeatmap, opts) }
func (a *Accessor) Hexbin(opts ...Options) (render.Handle, error)  { return a.kind(core.KindHexbin, opts) }
func (a *Accessor) Bivariate(opts ...Options) (render.Handle, error) {
	return a.kind(core.KindBivariate, opts)
}
func (a *Accessor) Errorbars(opts ...Options) (render.Handle, error) {
	return a.kind(core.KindErrorbars, opts)
}
func (a *Accessor) Labels(opts ...Options) (render.Handle, error) { return a.kind(core.KindLabels, opts) }
func (a *Accessor) Points(opts ...Options) (render.Handle, error) { return a.kind(core.KindPoints, opts) }
func (a *Accessor) Image(opts ...Options) (render.Handle, error)  { return a.kind(core.KindImage, opts) }
func (a *Accessor) Quadmesh(opts ...Options) (render.Handle, error) {
	return a.kind(core.KindQuadmesh, opts)
}
func (a *Accessor) Contour(opts ...Options) (render.Handle, error) { return a.kind(core.KindContour, opts) }
func (a *Accessor) Table(opts ...Options) (render.Handle, error)   { return a.kind(core.KindTable, opts) }

// Overlay superimposes handles in one coordinate frame. It is the *
// composition operator.
func Overlay(hs ...render.Handle) render.Handle { return render.Overlay(hs...) }

// Layout places handles side by side in a single row. It is the +
// composition operator; render.Layout offers grid control.
func Layout(hs ...render.Handle) render.Handle { return render.Layout(0, hs...) }
