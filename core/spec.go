// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"strings"
)

// A Spec is a normalized plot request: the kind, the fields bound to
// each visual role, the style options, and the slice dimensions left
// over for widgets. Specs are built by Call and immutable afterwards;
// accessors that return slices or maps return copies.
type Spec struct {
	kind    Kind
	backend string

	x   string
	ys  []string
	c   string
	by  []string
	row string
	col string

	sliceDims []Field

	width, height          int
	title, xlabel, ylabel  string
	color, cmap            string
	groupLabel, valueLabel string
	projection             string

	legend, dynamic, rasterize bool
	invert, logx, logy         bool
	stacked, globalExtent      bool

	alpha, size, bandwidth float64
	bins, levels, backlog  int

	xlim, ylim       [2]float64
	xlimSet, ylimSet bool

	pass Options
}

func (s *Spec) Kind() Kind      { return s.kind }
func (s *Spec) Backend() string { return s.backend }

// X returns the field bound to the x axis, or "" for kinds without one.
func (s *Spec) X() string { return s.x }

// Y returns the first value field.
func (s *Spec) Y() string {
	if len(s.ys) == 0 {
		return ""
	}
	return s.ys[0]
}

// Ys returns all value fields. More than one means wide data: backends
// fold the extra fields into a group column named GroupLabel with
// values in a column named ValueLabel.
func (s *Spec) Ys() []string { return append([]string(nil), s.ys...) }

// C returns the cell-value field of grid kinds, or "" if unset.
func (s *Spec) C() string { return s.c }

// By returns the fields that split the data into styled groups.
func (s *Spec) By() []string { return append([]string(nil), s.by...) }

// Row and Col return the facet fields, or "".
func (s *Spec) Row() string { return s.row }
func (s *Spec) Col() string { return s.col }

// SliceDims returns the slice dimensions of the call: the container's
// index dimensions the call did not consume, plus any fields named by
// the groupby option. Each becomes a selection widget.
func (s *Spec) SliceDims() []Field { return append([]Field(nil), s.sliceDims...) }

func (s *Spec) Width() int  { return s.width }
func (s *Spec) Height() int { return s.height }

func (s *Spec) Title() string  { return s.title }
func (s *Spec) XLabel() string { return s.xlabel }
func (s *Spec) YLabel() string { return s.ylabel }

// Color returns the color option: either a field name (grouping) or a
// literal color (constant style). Backends decide which by checking
// the schema.
func (s *Spec) Color() string { return s.color }

// Cmap returns the colormap name for continuous fills.
func (s *Spec) Cmap() string { return s.cmap }

func (s *Spec) GroupLabel() string { return s.groupLabel }
func (s *Spec) ValueLabel() string { return s.valueLabel }

func (s *Spec) Legend() bool    { return s.legend }
func (s *Spec) Dynamic() bool   { return s.dynamic }
func (s *Spec) Rasterize() bool { return s.rasterize }
func (s *Spec) Invert() bool    { return s.invert }
func (s *Spec) LogX() bool      { return s.logx }
func (s *Spec) LogY() bool      { return s.logy }
func (s *Spec) Stacked() bool   { return s.stacked }

func (s *Spec) Projection() string { return s.projection }

func (s *Spec) Alpha() float64     { return s.alpha }
func (s *Spec) Size() float64      { return s.size }
func (s *Spec) Bandwidth() float64 { return s.bandwidth }
func (s *Spec) Bins() int          { return s.bins }
func (s *Spec) Levels() int        { return s.levels }

// Backlog returns the row-window cap for streaming re-renders. Zero
// means unbounded.
func (s *Spec) Backlog() int { return s.backlog }

// XLim returns the explicit x range. ok is false if the caller set
// none.
func (s *Spec) XLim() (lim [2]float64, ok bool) { return s.xlim, s.xlimSet }
func (s *Spec) YLim() (lim [2]float64, ok bool) { return s.ylim, s.ylimSet }

// GlobalExtent reports whether geographic calls asked for the full
// world extent.
func (s *Spec) GlobalExtent() bool { return s.globalExtent }

// Passthrough returns a copy of the options the dispatcher did not
// consume. Backends receive them verbatim.
func (s *Spec) Passthrough() Options { return s.pass.Clone() }

// Consumed returns the fields the call consumed, in resolution order:
// x, value fields, cell value, grouping, and facets. These are exactly
// the fields excluded from slice-dimension classification.
func (s *Spec) Consumed() []string {
	var con []string
	add := func(f string) {
		if f == "" {
			return
		}
		for _, c := range con {
			if c == f {
				return
			}
		}
		con = append(con, f)
	}
	add(s.x)
	for _, y := range s.ys {
		add(y)
	}
	add(s.c)
	for _, b := range s.by {
		add(b)
	}
	add(s.row)
	add(s.col)
	return con
}

func (s *Spec) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(", s.kind)
	if s.x != "" {
		fmt.Fprintf(&b, "x=%s", s.x)
	}
	if len(s.ys) > 0 {
		if s.x != "" {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "y=%s", strings.Join(s.ys, "+"))
	}
	if s.c != "" {
		fmt.Fprintf(&b, ", c=%s", s.c)
	}
	if len(s.by) > 0 {
		fmt.Fprintf(&b, ", by=%s", strings.Join(s.by, "+"))
	}
	b.WriteString(")")
	if len(s.sliceDims) > 0 {
		names := make([]string, len(s.sliceDims))
		for i, f := range s.sliceDims {
			names[i] = f.Name
		}
		fmt.Fprintf(&b, " [widgets: %s]", strings.Join(names, ", "))
	}
	return b.String()
}
