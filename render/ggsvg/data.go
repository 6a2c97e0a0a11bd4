// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ggsvg

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aclements/go-gg/table"
	"github.com/quickplot/quickplot/core"
	"github.com/quickplot/quickplot/render"
)

// Synthetic column names, bracketed the way gg brackets its generated
// const columns so they cannot collide with user fields.
const (
	colSeries = "[series]"
	colColor  = "[color]"
	colElem   = "[elem]"
)

// An axis describes how one prepared axis column maps back to the
// source data: the category labels for discrete sources, and whether
// ticks need time or log formatting.
type axis struct {
	col    string
	label  string
	cats   []string
	time   bool
	log    bool
	min    float64
	max    float64
	lim    [2]float64
	limSet bool

	// includeZero is set by layers whose geometry is anchored at
	// zero, such as bars and histogram counts.
	includeZero bool
}

// formatter returns the tick formatter for the axis, or nil for plain
// numeric ticks.
func (a axis) formatter() func(float64) string {
	switch {
	case a.cats != nil:
		cats := a.cats
		return func(v float64) string {
			i := int(math.Round(v))
			if math.Abs(v-float64(i)) > 1e-9 || i < 0 || i >= len(cats) {
				return ""
			}
			return cats[i]
		}
	case a.time:
		layout := "15:04:05"
		if a.max-a.min >= 48*60*60 {
			layout = "2006-01-02"
		}
		return func(v float64) string {
			return time.Unix(int64(v), 0).UTC().Format(layout)
		}
	case a.log:
		return func(v float64) string {
			return strconv.FormatFloat(math.Pow(10, v), 'g', 4, 64)
		}
	}
	return nil
}

// A series describes the grouped sub-series of a frame: the grouping
// column and the ordered names and colors, for grouping and for the
// legend.
type series struct {
	col    string
	names  []string
	colors []color.Color
}

// A frame is a prepared render.Frame: a long-form table with float
// axis columns, a per-row color column, and the series and axis
// metadata the layers and the legend need.
type frame struct {
	spec *core.Spec
	data core.Tabular

	tab  *table.Table
	x, y axis
	ser  series

	// facetRow and facetCol are the prepared facet column names,
	// or "" when the frame is not faceted on that axis.
	facetRow, facetCol string

	// literal is set when the color option was a literal color
	// rather than a field; it overrides the palette.
	literal color.Color

	// Continuous color ramp legend, when a cmap was applied.
	cbar     *Colormap
	cbarName string
	cbarMin  float64
	cbarMax  float64
}

// tabular rejects containers that cannot expose rows.
func tabular(c core.Container) (core.Tabular, error) {
	t, ok := c.(core.Tabular)
	if !ok {
		return nil, fmt.Errorf("ggsvg: container %T is not tabular", c)
	}
	return t, nil
}

// columnFloats fetches a column as float64 values. Ints and bools
// convert; times become Unix seconds. String columns are an error.
func columnFloats(c core.Tabular, name string) ([]float64, core.FieldKind, error) {
	col, err := c.Column(name)
	if err != nil {
		return nil, core.Invalid, err
	}
	switch col := col.(type) {
	case []float64:
		return col, core.Float, nil
	case []int:
		out := make([]float64, len(col))
		for i, v := range col {
			out[i] = float64(v)
		}
		return out, core.Int, nil
	case []bool:
		out := make([]float64, len(col))
		for i, v := range col {
			if v {
				out[i] = 1
			}
		}
		return out, core.Bool, nil
	case []time.Time:
		out := make([]float64, len(col))
		for i, v := range col {
			out[i] = float64(v.Unix())
		}
		return out, core.Time, nil
	}
	return nil, core.Invalid, fmt.Errorf("ggsvg: field %q is not numeric", name)
}

// columnStrings fetches a column as display strings.
func columnStrings(c core.Tabular, name string) ([]string, error) {
	col, err := c.Column(name)
	if err != nil {
		return nil, err
	}
	switch col := col.(type) {
	case []string:
		return col, nil
	case []float64:
		out := make([]string, len(col))
		for i, v := range col {
			out[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return out, nil
	case []int:
		out := make([]string, len(col))
		for i, v := range col {
			out[i] = strconv.Itoa(v)
		}
		return out, nil
	case []bool:
		out := make([]string, len(col))
		for i, v := range col {
			out[i] = strconv.FormatBool(v)
		}
		return out, nil
	case []time.Time:
		out := make([]string, len(col))
		for i, v := range col {
			out[i] = v.UTC().Format(time.RFC3339)
		}
		return out, nil
	}
	return nil, fmt.Errorf("ggsvg: cannot format column %q (%T)", name, col)
}

// categories assigns positions 0..n-1 to distinct values in first-
// appearance order.
type categories struct {
	names []string
	pos   map[string]int
}

func catPositions(vals []string) *categories {
	c := &categories{pos: make(map[string]int)}
	for _, v := range vals {
		if _, ok := c.pos[v]; !ok {
			c.pos[v] = len(c.names)
			c.names = append(c.names, v)
		}
	}
	return c
}

func (c *categories) positions(vals []string) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = float64(c.pos[v])
	}
	return out
}

// applyLog replaces values with their base-10 logarithm in place.
// Non-positive values become NaN, which the marks skip.
func applyLog(vals []float64, what string) {
	bad := 0
	for i, v := range vals {
		if v <= 0 {
			vals[i] = math.NaN()
			bad++
			continue
		}
		vals[i] = math.Log10(v)
	}
	if bad > 0 {
		core.Warning.Printf("dropped %d non-positive %s values for log scale", bad, what)
	}
}

// limFilter turns values outside [lim[0], lim[1]] into NaN so marks
// skip them.
func limFilter(vals []float64, lim [2]float64) {
	for i, v := range vals {
		if v < lim[0] || v > lim[1] {
			vals[i] = math.NaN()
		}
	}
}

func minMax(vals []float64) (lo, hi float64) {
	lo, hi = math.NaN(), math.NaN()
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	return lo, hi
}

// colBuilder wraps a table builder and keeps track of taken column
// names, aliasing on collision so one field can serve two roles.
type colBuilder struct {
	b     *table.Builder
	taken map[string]bool
}

func newColBuilder() *colBuilder {
	return &colBuilder{b: new(table.Builder), taken: make(map[string]bool)}
}

// add adds data under name, or under a bracketed alias if name is
// taken, and returns the name used.
func (cb *colBuilder) add(name string, data any) string {
	if cb.taken[name] {
		name = "[" + name + "]"
		for cb.taken[name] {
			name = "[" + name + "]"
		}
	}
	cb.taken[name] = true
	cb.b.Add(name, data)
	return name
}

func (cb *colBuilder) done() *table.Table { return cb.b.Done() }

// prepOpts selects which axis columns prep builds and where the value
// axis takes its log and limit options from.
type prepOpts struct {
	// withX builds the x axis column; catX forces it categorical.
	withX bool
	catX  bool

	// valFromX applies the x-axis log and limit options to the
	// value fields, for distribution kinds whose values are drawn
	// on the x axis.
	valFromX bool
}

// prepXY prepares the frame for the x/y kinds: axis columns, wide->
// long folding of multiple value fields, facet columns, series
// grouping, and per-row colors. catX forces a categorical x axis, for
// bar kinds.
func prepXY(r render.Frame, catX bool) (*frame, error) {
	return prep(r, prepOpts{withX: true, catX: catX})
}

// prepDist prepares the frame for the distribution kinds. There is no
// x axis column; the folded value fields land in f.y. valX indicates
// the values will be drawn on the x axis, which decides whether the x
// or y log and limit options apply to them.
func prepDist(r render.Frame, valX bool) (*frame, error) {
	return prep(r, prepOpts{valFromX: valX})
}

func prep(r render.Frame, opts prepOpts) (*frame, error) {
	spec := r.Spec
	data, err := tabular(r.Data)
	if err != nil {
		return nil, err
	}
	if data.Len() == 0 {
		return nil, fmt.Errorf("ggsvg: no rows to draw")
	}
	schema := data.Schema()
	f := &frame{spec: spec, data: data}
	cb := newColBuilder()

	// The x axis. An empty x means row order.
	if opts.withX {
		var xs []float64
		f.x.label = spec.X()
		if spec.X() == "" {
			xs = make([]float64, data.Len())
			for i := range xs {
				xs[i] = float64(i)
			}
			f.x.col = cb.add("index", xs)
			f.x.label = "index"
		} else if fld, _ := schema.Lookup(spec.X()); opts.catX || fld.Kind == core.String || fld.Kind == core.Bool {
			ss, err := columnStrings(data, spec.X())
			if err != nil {
				return nil, err
			}
			cats := catPositions(ss)
			xs = cats.positions(ss)
			f.x.cats = cats.names
			f.x.col = cb.add(spec.X(), xs)
		} else {
			var kind core.FieldKind
			xs, kind, err = columnFloats(data, spec.X())
			if err != nil {
				return nil, err
			}
			xs = append([]float64(nil), xs...)
			f.x.time = kind == core.Time
			f.x.col = cb.add(spec.X(), xs)
		}
		if spec.LogX() && f.x.cats == nil && !f.x.time {
			applyLog(xs, "x")
			f.x.log = true
		}
		if lim, ok := spec.XLim(); ok {
			limFilter(xs, lim)
			f.x.lim, f.x.limSet = lim, true
		}
		f.x.min, f.x.max = minMax(xs)
	}

	// The value fields.
	valLog, what := spec.LogY(), "y"
	valLim, valLimOK := spec.YLim()
	if opts.valFromX {
		valLog, what = spec.LogX(), "x"
		valLim, valLimOK = spec.XLim()
	}
	ys := spec.Ys()
	ynames := make([]string, len(ys))
	for i, y := range ys {
		col, _, err := columnFloats(data, y)
		if err != nil {
			return nil, err
		}
		col = append([]float64(nil), col...)
		if valLog {
			applyLog(col, what)
			f.y.log = true
		}
		if valLimOK {
			limFilter(col, valLim)
			f.y.lim, f.y.limSet = valLim, true
		}
		ynames[i] = cb.add(y, col)
	}

	// Color source field: an explicit color= field wins over c=.
	colorField := ""
	if spec.Color() != "" && schema.Has(spec.Color()) {
		colorField = spec.Color()
	} else if spec.C() != "" {
		colorField = spec.C()
	}
	continuous := false
	if colorField != "" {
		if fld, _ := schema.Lookup(colorField); fld.Kind.Numeric() {
			continuous = true
		}
	}

	// Grouping components: folded value fields, by fields, and a
	// categorical color field.
	type comp struct{ name, alias string }
	var comps []comp
	for _, by := range spec.By() {
		ss, err := columnStrings(data, by)
		if err != nil {
			return nil, err
		}
		comps = append(comps, comp{by, cb.add(by, ss)})
	}
	if colorField != "" && !continuous {
		ss, err := columnStrings(data, colorField)
		if err != nil {
			return nil, err
		}
		comps = append(comps, comp{colorField, cb.add(colorField, ss)})
	}

	// Continuous color ramp.
	var rowColors []color.Color
	if continuous {
		cvals, _, err := columnFloats(data, colorField)
		if err != nil {
			return nil, err
		}
		m, err := ParseColormap(spec.Cmap())
		if err != nil {
			return nil, err
		}
		lo, hi := minMax(cvals)
		rowColors = make([]color.Color, len(cvals))
		for i, v := range cvals {
			rowColors[i] = m.At(norm(v, lo, hi), spec.Alpha())
		}
		f.cbar, f.cbarName, f.cbarMin, f.cbarMax = m, colorField, lo, hi
		cb.add(colColor, rowColors)
	}

	// Facet columns, as display strings.
	for i, fc := range []string{spec.Row(), spec.Col()} {
		if fc == "" {
			continue
		}
		ss, err := columnStrings(data, fc)
		if err != nil {
			return nil, err
		}
		name := cb.add(fc, ss)
		if i == 0 {
			f.facetRow = name
		} else {
			f.facetCol = name
		}
	}

	tab := cb.done()

	// Fold multiple value fields into one, the folded field name
	// becoming a grouping component.
	ycol := ynames[0]
	f.y.label = spec.Ys()[0]
	if len(ynames) > 1 {
		glabel, vlabel := spec.GroupLabel(), spec.ValueLabel()
		if cb.taken[glabel] {
			glabel = "[" + glabel + "]"
		}
		if cb.taken[vlabel] {
			vlabel = "[" + vlabel + "]"
		}
		g := table.Unpivot(tab, glabel, vlabel, ynames...)
		tab = g.Table(table.RootGroupID)
		ycol = vlabel
		f.y.label = spec.ValueLabel()
		comps = append([]comp{{glabel, glabel}}, comps...)
	}
	f.y.col = ycol

	// Combine grouping components into one series column and color
	// rows by series.
	if len(comps) > 0 {
		parts := make([][]string, len(comps))
		for i, c := range comps {
			parts[i] = tab.MustColumn(c.alias).([]string)
		}
		ser := make([]string, tab.Len())
		for i := range ser {
			vals := make([]string, len(comps))
			for j := range comps {
				vals[j] = parts[j][i]
			}
			ser[i] = strings.Join(vals, "/")
		}
		cats := catPositions(ser)
		f.ser = series{col: colSeries, names: cats.names}
		nb := table.NewBuilder(tab).Add(colSeries, ser)
		if rowColors == nil {
			colors := make([]color.Color, len(ser))
			for i, s := range ser {
				colors[i] = seriesColor(cats.pos[s], spec.Alpha())
			}
			for _, name := range cats.names {
				f.ser.colors = append(f.ser.colors, seriesColor(cats.pos[name], spec.Alpha()))
			}
			nb.Add(colColor, colors)
		}
		tab = nb.Done()
	} else if rowColors == nil {
		// Single series: default palette color, or the literal
		// color option.
		c := seriesColor(0, spec.Alpha())
		if spec.Color() != "" && !schema.Has(spec.Color()) {
			if lit, ok := parseColor(spec.Color(), spec.Alpha()); ok {
				c = lit
				f.literal = lit
			}
		}
		colors := make([]color.Color, tab.Len())
		for i := range colors {
			colors[i] = c
		}
		tab = table.NewBuilder(tab).Add(colColor, colors).Done()
	}

	// A literal color overrides series palette colors too.
	if spec.Color() != "" && !schema.Has(spec.Color()) && len(comps) > 0 {
		if lit, ok := parseColor(spec.Color(), spec.Alpha()); ok {
			f.literal = lit
			colors := make([]color.Color, tab.Len())
			for i := range colors {
				colors[i] = lit
			}
			for i := range f.ser.colors {
				f.ser.colors[i] = lit
			}
			tab = table.NewBuilder(tab).Add(colColor, colors).Done()
		}
	}

	f.y.min, f.y.max = minMax(tab.MustColumn(ycol).([]float64))

	f.tab = tab
	if opts.withX && spec.Invert() {
		f.x, f.y = f.y, f.x
	}
	return f, nil
}

// norm maps v into [0, 1] over [lo, hi].
func norm(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}
