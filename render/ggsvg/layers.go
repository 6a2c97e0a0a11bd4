// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ggsvg

import (
	"fmt"
	"image/color"
	"math"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"
	"github.com/quickplot/quickplot/core"
)

// Geometry column names used by the synthesized layer tables.
const (
	colUpper = "[upper]"
	colLower = "[lower]"
	colErr   = "[err]"
	colLabel = "[label]"
)

// dropNaN filters out rows whose col is NaN.
func dropNaN(g table.Grouping, col string) table.Grouping {
	return table.Filter(g, func(v float64) bool {
		return !math.IsNaN(v)
	}, col)
}

// rowsAt builds a table that repeats tab's rows in the given order.
// Geometry builders use it to carry series, color, and facet columns
// into exploded per-element tables.
func rowsAt(tab *table.Table, rows []int) *table.Builder {
	b := new(table.Builder)
	for _, name := range tab.Columns() {
		switch col := tab.Column(name).(type) {
		case []float64:
			out := make([]float64, len(rows))
			for i, r := range rows {
				out[i] = col[r]
			}
			b.Add(name, out)
		case []int:
			out := make([]int, len(rows))
			for i, r := range rows {
				out[i] = col[r]
			}
			b.Add(name, out)
		case []string:
			out := make([]string, len(rows))
			for i, r := range rows {
				out[i] = col[r]
			}
			b.Add(name, out)
		case []color.Color:
			out := make([]color.Color, len(rows))
			for i, r := range rows {
				out[i] = col[r]
			}
			b.Add(name, out)
		}
	}
	return b
}

// seriesRank maps each row to its series position, or all zeros when
// there is no series grouping.
func seriesRank(tab *table.Table, ser *series) []int {
	rank := make([]int, tab.Len())
	if ser.col == "" {
		return rank
	}
	pos := make(map[string]int, len(ser.names))
	for i, name := range ser.names {
		pos[name] = i
	}
	for i, s := range tab.MustColumn(ser.col).([]string) {
		rank[i] = pos[s]
	}
	return rank
}

// stackBounds computes per-row lower and upper value bounds,
// accumulating series in order at each position when stacked.
func stackBounds(pos, val []float64, rank []int, nser int, stacked bool) (lower, upper []float64) {
	n := len(pos)
	lower = make([]float64, n)
	upper = make([]float64, n)
	if !stacked || nser <= 1 {
		copy(upper, val)
		return
	}
	acc := make(map[float64]float64)
	for s := 0; s < nser; s++ {
		for i := range pos {
			if rank[i] != s {
				continue
			}
			if math.IsNaN(val[i]) {
				lower[i], upper[i] = math.NaN(), math.NaN()
				continue
			}
			lower[i] = acc[pos[i]]
			upper[i] = lower[i] + val[i]
			acc[pos[i]] = upper[i]
		}
	}
	return
}

func addLine(p *gg.Plot, f *frame) {
	p.SetData(dropNaN(p.Data(), f.x.col))
	if f.ser.col != "" {
		p.GroupBy(f.ser.col)
	}
	p.Add(gg.LayerLines{X: f.x.col, Y: f.y.col, Color: colColor})
}

func addStep(p *gg.Plot, f *frame) {
	p.SetData(dropNaN(dropNaN(p.Data(), f.x.col), f.y.col))
	if f.ser.col != "" {
		p.GroupBy(f.ser.col)
	}
	p.SortBy(f.x.col)
	p.Add(gg.LayerSteps{
		LayerPaths: gg.LayerPaths{X: f.x.col, Y: f.y.col, Color: colColor},
		Step:       gg.StepHV,
	})
}

func addScatter(p *gg.Plot, f *frame) {
	l := gg.LayerPoints{X: f.x.col, Y: f.y.col, Color: colColor}
	if s := f.spec.Size(); s > 0 {
		l.Size = p.Const(gg.Unscaled(sizeFrac(s, f.spec.Width(), f.spec.Height())))
	}
	p.Add(l)
}

// sizeFrac converts a point radius in pixels to the unscaled fraction
// the point mark's size ranger expects.
func sizeFrac(px float64, w, h int) float64 {
	min := float64(w)
	if float64(h) < min {
		min = float64(h)
	}
	if min <= 0 {
		return 0
	}
	t := (px/min - 0.01) / 0.09
	return math.Max(0, math.Min(1, t))
}

func addArea(p *gg.Plot, f *frame) {
	if f.spec.Invert() {
		f.x.includeZero = true
		addAreaPolygons(p, f)
		return
	}
	f.y.includeZero = true
	p.SetData(dropNaN(dropNaN(p.Data(), f.x.col), f.y.col))
	stacked := f.spec.Stacked()
	p.SetData(table.MapTables(p.Data(), func(_ table.GroupID, t *table.Table) *table.Table {
		rank := seriesRank(t, &f.ser)
		lower, upper := stackBounds(
			t.MustColumn(f.x.col).([]float64),
			t.MustColumn(f.y.col).([]float64),
			rank, len(f.ser.names), stacked)
		return table.NewBuilder(t).Add(colLower, lower).Add(colUpper, upper).Done()
	}))
	if f.ser.col != "" {
		p.GroupBy(f.ser.col)
	}
	p.Add(gg.LayerArea{X: f.x.col, Upper: colUpper, Lower: colLower, Fill: colColor})
}

// addAreaPolygons draws areas as explicit closed polygons. The area
// layer can only shade vertically, so inverted areas take this route.
// After an invert, f.x carries the value axis and f.y the position
// axis.
func addAreaPolygons(p *gg.Plot, f *frame) {
	p.SetData(dropNaN(dropNaN(p.Data(), f.x.col), f.y.col))
	stacked := f.spec.Stacked()
	p.SetData(table.MapTables(p.Data(), func(_ table.GroupID, t *table.Table) *table.Table {
		rank := seriesRank(t, &f.ser)
		pos := t.MustColumn(f.y.col).([]float64)
		val := t.MustColumn(f.x.col).([]float64)
		lower, upper := stackBounds(pos, val, rank, len(f.ser.names), stacked)

		// One polygon per series: up the upper edge, back down
		// the lower edge.
		bySer := make([][]int, max(len(f.ser.names), 1))
		for i := range pos {
			bySer[rank[i]] = append(bySer[rank[i]], i)
		}
		var rows, elems []int
		var xs, ys []float64
		for s, idxs := range bySer {
			for _, i := range idxs {
				rows = append(rows, i)
				xs = append(xs, upper[i])
				ys = append(ys, pos[i])
				elems = append(elems, s)
			}
			for j := len(idxs) - 1; j >= 0; j-- {
				i := idxs[j]
				rows = append(rows, i)
				xs = append(xs, lower[i])
				ys = append(ys, pos[i])
				elems = append(elems, s)
			}
		}
		return rowsAt(t, rows).Add(f.x.col, xs).Add(f.y.col, ys).Add(colElem, elems).Done()
	}))
	p.GroupBy(colElem)
	p.Add(gg.LayerPaths{X: f.x.col, Y: f.y.col, Fill: colColor})
}

// addBar draws bars as per-element rectangles, side by side within
// each position when grouped, or stacked. For horizontal bars the
// position axis is y and the value axis is x.
func addBar(p *gg.Plot, f *frame, horiz bool) {
	posCol, valCol := f.x.col, f.y.col
	if horiz {
		posCol, valCol = f.y.col, f.x.col
		f.x.includeZero = true
	} else {
		f.y.includeZero = true
	}
	p.SetData(dropNaN(p.Data(), valCol))

	stacked := f.spec.Stacked()
	nser := max(len(f.ser.names), 1)
	width := 0.8
	if !stacked && nser > 1 {
		width = 0.8 / float64(nser)
	}

	p.SetData(table.MapTables(p.Data(), func(_ table.GroupID, t *table.Table) *table.Table {
		rank := seriesRank(t, &f.ser)
		ps := t.MustColumn(posCol).([]float64)
		vs := t.MustColumn(valCol).([]float64)
		lower, upper := stackBounds(ps, vs, rank, nser, stacked)

		var rows, elems []int
		var xs, lo, hi []float64
		for i := range ps {
			if math.IsNaN(ps[i]) || math.IsNaN(upper[i]) {
				continue
			}
			c := ps[i]
			if !stacked && nser > 1 {
				c += -0.4 + width*(float64(rank[i])+0.5)
			}
			elem := len(rows) / 2
			rows = append(rows, i, i)
			elems = append(elems, elem, elem)
			if horiz {
				xs = append(xs, lower[i], upper[i])
				lo = append(lo, c-width/2, c-width/2)
				hi = append(hi, c+width/2, c+width/2)
			} else {
				xs = append(xs, c-width/2, c+width/2)
				lo = append(lo, lower[i], lower[i])
				hi = append(hi, upper[i], upper[i])
			}
		}
		return rowsAt(t, rows).Add(colElem, elems).
			Add(f.x.col, xs).Add(colLower, lo).Add(colUpper, hi).Done()
	}))
	p.GroupBy(colElem)
	p.Add(gg.LayerArea{X: f.x.col, Upper: colUpper, Lower: colLower, Fill: colColor})
}

// prepErrorbars bakes the error magnitudes into the prepared table as
// a row-aligned column. It must run before any regrouping.
func prepErrorbars(f *frame) error {
	field, err := auxField(f, "yerr", nil)
	if err != nil {
		return err
	}
	if field == "" {
		return fmt.Errorf("ggsvg: errorbars need a yerr option naming the error field")
	}
	errs, _, err := columnFloats(f.data, field)
	if err != nil {
		return err
	}
	if f.tab.Len() != len(errs) {
		return fmt.Errorf("ggsvg: errorbars need a single value field")
	}
	f.tab = table.NewBuilder(f.tab).Add(colErr, errs).Done()
	return nil
}

func addErrorbars(p *gg.Plot, f *frame) {
	p.SetData(table.MapTables(p.Data(), func(_ table.GroupID, t *table.Table) *table.Table {
		xs := t.MustColumn(f.x.col).([]float64)
		ys := t.MustColumn(f.y.col).([]float64)
		errs := t.MustColumn(colErr).([]float64)
		var rows, elems []int
		var ex, ey []float64
		for i := range xs {
			if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsNaN(errs[i]) {
				continue
			}
			rows = append(rows, i, i)
			elems = append(elems, i, i)
			ex = append(ex, xs[i], xs[i])
			ey = append(ey, ys[i]-errs[i], ys[i]+errs[i])
		}
		return rowsAt(t, rows).Add(colElem, elems).
			Add(f.x.col, ex).Add(f.y.col, ey).Done()
	}))
	p.GroupBy(colElem)
	p.Add(gg.LayerPaths{X: f.x.col, Y: f.y.col, Color: colColor})

	// Center points on top of the bars.
	p.Restore().Save()
	p.Add(gg.LayerPoints{X: f.x.col, Y: f.y.col, Color: colColor})
}

// prepLabels bakes the label text into the prepared table as a
// row-aligned column. Folded frames repeat each source label once per
// value field.
func prepLabels(f *frame) error {
	field, err := auxField(f, "text", func(fld core.Field) bool {
		return fld.Kind == core.String
	})
	if err != nil {
		return err
	}
	if field == "" {
		return fmt.Errorf("ggsvg: labels need a text option naming the label field")
	}
	ss, err := columnStrings(f.data, field)
	if err != nil {
		return err
	}
	k := f.tab.Len() / len(ss)
	labels := make([]string, f.tab.Len())
	for i := range labels {
		labels[i] = ss[i/k]
	}
	f.tab = table.NewBuilder(f.tab).Add(colLabel, labels).Done()
	return nil
}

func addLabels(p *gg.Plot, f *frame) {
	p.SetData(dropNaN(dropNaN(p.Data(), f.x.col), f.y.col))
	p.Add(gg.LayerTags{X: f.x.col, Y: f.y.col, Label: colLabel})
}

// auxField resolves a field named by a passthrough option, falling
// back to a field with the option's own name and then to the first
// schema field matching ok. It returns "" when nothing matches.
func auxField(f *frame, opt string, ok func(core.Field) bool) (string, error) {
	v, present, err := f.spec.Passthrough().String(opt)
	if err != nil {
		return "", err
	}
	if present {
		if !f.data.Schema().Has(v) {
			return "", fmt.Errorf("%w: %q", core.ErrSchemaMismatch, v)
		}
		return v, nil
	}
	if f.data.Schema().Has(opt) {
		return opt, nil
	}
	if ok != nil {
		for _, fld := range f.data.Schema() {
			if ok(fld) {
				return fld.Name, nil
			}
		}
	}
	return "", nil
}
