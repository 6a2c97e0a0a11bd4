// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ggsvg

import (
	"image/color"
	"math"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"
)

// Columns synthesized by the distribution builders. px and py are
// drawn coordinates, so horizontal orientations are decided at build
// time and the scale setup stays uniform.
const (
	colPX    = "[px]"
	colPY    = "[py]"
	colCount = "[count]"
	colPart  = "[part]"
)

// densityCol is the density estimate column produced by the KDE stat.
const densityCol = "probability density"

// constify converts uniform row columns into constant columns so
// table-replacing stats carry them through.
func constify(g table.Grouping, cols []string) table.Grouping {
	return table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		b := table.NewBuilder(t)
		for _, col := range cols {
			if _, ok := t.Const(col); ok {
				continue
			}
			switch c := t.Column(col).(type) {
			case []string:
				if len(c) > 0 {
					b.Add(col, nil).AddConst(col, c[0])
				}
			case []color.Color:
				if len(c) > 0 {
					b.Add(col, nil).AddConst(col, c[0])
				}
			}
		}
		return b.Done()
	})
}

// constCols lists the uniform-per-series columns a frame carries.
func (f *frame) constCols() []string {
	cols := []string{colColor}
	if f.ser.col != "" {
		cols = append(cols, f.ser.col)
	}
	if f.facetRow != "" {
		cols = append(cols, f.facetRow)
	}
	if f.facetCol != "" {
		cols = append(cols, f.facetCol)
	}
	return cols
}

// binIndex places v into one of bins equal-width bins over [lo, hi].
// The last bin is closed on the right.
func binIndex(v, lo, hi float64, bins int) int {
	b := int(float64(bins) * (v - lo) / (hi - lo))
	if b < 0 {
		b = 0
	}
	if b >= bins {
		b = bins - 1
	}
	return b
}

// binCounts counts each series' values into shared bins.
func binCounts(vals []float64, rank []int, nser, bins int, lo, hi float64) [][]float64 {
	counts := make([][]float64, nser)
	for s := range counts {
		counts[s] = make([]float64, bins)
	}
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		counts[rank[i]][binIndex(v, lo, hi, bins)]++
	}
	return counts
}

// repRows picks the first row of each series, for carrying series and
// color columns into synthesized tables. Series with no rows get -1.
func repRows(rank []int, nser int) []int {
	rep := make([]int, nser)
	for i := range rep {
		rep[i] = -1
	}
	for i, s := range rank {
		if rep[s] < 0 {
			rep[s] = i
		}
	}
	return rep
}

// histBounds widens a degenerate value range so binning has a
// nonempty domain.
func histBounds(lo, hi float64) (float64, float64) {
	if math.IsNaN(lo) {
		return 0, 1
	}
	if hi <= lo {
		return lo - 0.5, lo + 0.5
	}
	return lo, hi
}

// The count floor for log-scaled count axes, drawn in place of zero.
var logCountFloor = math.Log10(0.5)

func addHist(p *gg.Plot, f *frame) {
	horiz := f.spec.Invert()
	bins := f.spec.Bins()
	countLog := f.spec.LogY()
	if horiz {
		countLog = f.spec.LogX()
	}
	lo, hi := histBounds(f.y.min, f.y.max)
	edges := vec.Linspace(lo, hi, bins+1)
	nser := max(len(f.ser.names), 1)

	p.SetData(table.MapTables(p.Data(), func(_ table.GroupID, t *table.Table) *table.Table {
		rank := seriesRank(t, &f.ser)
		vals := t.MustColumn(f.y.col).([]float64)
		counts := binCounts(vals, rank, nser, bins, lo, hi)
		rep := repRows(rank, nser)

		var rows, elems []int
		var xs, lower, upper []float64
		for s, sc := range counts {
			if rep[s] < 0 {
				continue
			}
			for b, n := range sc {
				if n == 0 {
					continue
				}
				h, base := n, 0.0
				if countLog {
					h, base = math.Log10(n), logCountFloor
				}
				elem := len(rows) / 2
				rows = append(rows, rep[s], rep[s])
				elems = append(elems, elem, elem)
				if horiz {
					xs = append(xs, base, h)
					lower = append(lower, edges[b], edges[b])
					upper = append(upper, edges[b+1], edges[b+1])
				} else {
					xs = append(xs, edges[b], edges[b+1])
					lower = append(lower, base, base)
					upper = append(upper, h, h)
				}
			}
		}
		return rowsAt(t, rows).Add(colElem, elems).
			Add(colPX, xs).Add(colLower, lower).Add(colUpper, upper).Done()
	}))
	p.GroupBy(colElem)
	p.Add(gg.LayerArea{X: colPX, Upper: colUpper, Lower: colLower, Fill: colColor})

	cnt := axis{col: colCount, label: "count", log: countLog, includeZero: !countLog}
	if horiz {
		cnt.lim, cnt.limSet = f.spec.XLim()
		f.x = cnt
	} else {
		cnt.lim, cnt.limSet = f.spec.YLim()
		f.x, f.y = f.y, cnt
	}
}

func addKDE(p *gg.Plot, f *frame) {
	horiz := f.spec.Invert()
	densityLog := f.spec.LogY()
	if horiz {
		densityLog = f.spec.LogX()
	}
	p.SetData(dropNaN(p.Data(), f.y.col))
	if f.ser.col != "" {
		p.GroupBy(f.ser.col)
	}
	p.SetData(constify(p.Data(), f.constCols()))
	p.Stat(ggstat.Density{X: f.y.col, Bandwidth: f.spec.Bandwidth()})
	if densityLog {
		p.SetData(table.MapTables(p.Data(), func(_ table.GroupID, t *table.Table) *table.Table {
			ds := append([]float64(nil), t.MustColumn(densityCol).([]float64)...)
			applyLog(ds, "density")
			return table.NewBuilder(t).Add(densityCol, ds).Done()
		}))
	}
	if horiz {
		p.Add(gg.LayerPaths{X: densityCol, Y: f.y.col, Color: colColor})
	} else {
		p.Add(gg.LayerLines{X: f.y.col, Y: densityCol, Color: colColor})
	}

	den := axis{col: densityCol, label: "density", log: densityLog, includeZero: !densityLog}
	if horiz {
		den.lim, den.limSet = f.spec.XLim()
		f.x = den
	} else {
		den.lim, den.limSet = f.spec.YLim()
		f.x, f.y = f.y, den
	}
}

// boxStats holds the five-number summary drawn by a box: quartiles,
// Tukey whiskers, and the outlying rows.
type boxStats struct {
	q1, med, q3 float64
	wlo, whi    float64
	outliers    []int
}

// boxStatsOf summarizes the values at rows. Whiskers extend to the
// most extreme values within 1.5 IQR of the quartiles.
func boxStatsOf(vals []float64, rows []int) boxStats {
	xs := make([]float64, 0, len(rows))
	for _, i := range rows {
		if !math.IsNaN(vals[i]) {
			xs = append(xs, vals[i])
		}
	}
	s := stats.Sample{Xs: xs}
	b := boxStats{
		q1:  s.Quantile(0.25),
		med: s.Quantile(0.5),
		q3:  s.Quantile(0.75),
	}
	iqr := b.q3 - b.q1
	lo, hi := b.q1-1.5*iqr, b.q3+1.5*iqr
	b.wlo, b.whi = b.q1, b.q3
	for _, i := range rows {
		v := vals[i]
		if math.IsNaN(v) {
			continue
		}
		switch {
		case v < lo || v > hi:
			b.outliers = append(b.outliers, i)
		case v < b.wlo:
			b.wlo = v
		case v > b.whi:
			b.whi = v
		}
	}
	return b
}

var strokeBlack = color.Color(color.Gray{0})

func addBox(p *gg.Plot, f *frame) {
	horiz := f.spec.Invert()
	const (
		boxHalf = 0.3
		capHalf = 0.15
	)
	p.SetData(table.MapTables(p.Data(), func(_ table.GroupID, t *table.Table) *table.Table {
		rank := seriesRank(t, &f.ser)
		vals := t.MustColumn(f.y.col).([]float64)
		rowColors := t.MustColumn(colColor).([]color.Color)
		nser := max(len(f.ser.names), 1)
		bySer := make([][]int, nser)
		for i := range vals {
			if !math.IsNaN(vals[i]) {
				bySer[rank[i]] = append(bySer[rank[i]], i)
			}
		}

		var rows, elems []int
		var px, py, lower, upper []float64
		var parts []string
		var colors []color.Color
		elem := 0
		emit := func(row int, part string, stroke bool, x, y, lo, hi float64) {
			rows = append(rows, row)
			elems = append(elems, elem)
			parts = append(parts, part)
			if stroke {
				colors = append(colors, strokeBlack)
			} else {
				colors = append(colors, rowColors[row])
			}
			px = append(px, x)
			py = append(py, y)
			lower = append(lower, lo)
			upper = append(upper, hi)
		}
		seg := func(row int, part string, x0, y0, x1, y1 float64) {
			if horiz {
				x0, y0 = y0, x0
				x1, y1 = y1, x1
			}
			emit(row, part, true, x0, y0, 0, 0)
			emit(row, part, true, x1, y1, 0, 0)
			elem++
		}
		for s, idxs := range bySer {
			if len(idxs) == 0 {
				continue
			}
			b := boxStatsOf(vals, idxs)
			c := float64(s)
			row := idxs[0]

			// Body rectangle.
			if horiz {
				emit(row, "body", false, b.q1, 0, c-boxHalf, c+boxHalf)
				emit(row, "body", false, b.q3, 0, c-boxHalf, c+boxHalf)
			} else {
				emit(row, "body", false, c-boxHalf, 0, b.q1, b.q3)
				emit(row, "body", false, c+boxHalf, 0, b.q1, b.q3)
			}
			elem++

			seg(row, "mid", c-boxHalf, b.med, c+boxHalf, b.med)
			seg(row, "mid", c, b.wlo, c, b.q1)
			seg(row, "mid", c, b.q3, c, b.whi)
			seg(row, "mid", c-capHalf, b.wlo, c+capHalf, b.wlo)
			seg(row, "mid", c-capHalf, b.whi, c+capHalf, b.whi)

			for _, i := range b.outliers {
				x, y := c, vals[i]
				if horiz {
					x, y = y, x
				}
				emit(i, "out", false, x, y, 0, 0)
				elem++
			}
		}
		return rowsAt(t, rows).Add(colElem, elems).Add(colPart, parts).
			Add(colPX, px).Add(colPY, py).
			Add(colLower, lower).Add(colUpper, upper).
			Add(colColor, colors).Done()
	}))

	p.SetData(table.FilterEq(p.Data(), colPart, "body"))
	p.GroupBy(colElem)
	p.Add(gg.LayerArea{X: colPX, Upper: colUpper, Lower: colLower, Fill: colColor})

	p.Restore().Save()
	p.SetData(table.FilterEq(p.Data(), colPart, "mid"))
	p.GroupBy(colElem)
	p.Add(gg.LayerPaths{X: colPX, Y: colPY, Color: colColor})

	p.Restore().Save()
	p.SetData(table.FilterEq(p.Data(), colPart, "out"))
	p.Add(gg.LayerPoints{X: colPX, Y: colPY, Color: colColor})

	f.fixDistAxes(horiz)
}

// fixDistAxes points the frame's axes at the drawn coordinate columns
// for the category-positioned kinds: categories along one axis, the
// value domain along the other.
func (f *frame) fixDistAxes(horiz bool) {
	cats := f.ser.names
	if len(cats) == 0 {
		cats = []string{f.y.label}
	}
	cat := axis{col: colPX, cats: cats}
	val := f.y
	val.col = colPY
	if horiz {
		cat.col, val.col = colPY, colPX
		f.x, f.y = val, cat
	} else {
		f.x, f.y = cat, val
	}
}

// violinCurve evaluates a density estimate over the sample's widened
// bounds.
func violinCurve(sample stats.Sample, bw float64, n int) (ys, ds []float64) {
	if bw == 0 {
		bw = stats.BandwidthScott(sample)
	}
	kde := stats.KDE{Sample: sample, Bandwidth: bw}
	lo, hi := sample.Bounds()
	ys = vec.Linspace(lo-3*bw, hi+3*bw, n)
	ds = vec.Map(kde.PDF, ys)
	return
}

func addViolin(p *gg.Plot, f *frame) {
	horiz := f.spec.Invert()
	const violinHalf = 0.4
	p.SetData(table.MapTables(p.Data(), func(_ table.GroupID, t *table.Table) *table.Table {
		rank := seriesRank(t, &f.ser)
		vals := t.MustColumn(f.y.col).([]float64)
		nser := max(len(f.ser.names), 1)
		bySer := make([][]int, nser)
		for i := range vals {
			if !math.IsNaN(vals[i]) {
				bySer[rank[i]] = append(bySer[rank[i]], i)
			}
		}

		// Density curves, with a width scale shared across series.
		curves := make([][2][]float64, nser)
		maxD := 0.0
		for s, idxs := range bySer {
			if len(idxs) == 0 {
				continue
			}
			xs := make([]float64, len(idxs))
			for j, i := range idxs {
				xs[j] = vals[i]
			}
			ys, ds := violinCurve(stats.Sample{Xs: xs}, f.spec.Bandwidth(), 100)
			curves[s] = [2][]float64{ys, ds}
			for _, d := range ds {
				maxD = math.Max(maxD, d)
			}
		}
		scale := 0.0
		if maxD > 0 {
			scale = violinHalf / maxD
		}

		var rows, elems []int
		var px, py []float64
		for s, cu := range curves {
			if cu[0] == nil {
				continue
			}
			row := bySer[s][0]
			c := float64(s)
			ys, ds := cu[0], cu[1]
			emit := func(x, y float64) {
				if horiz {
					x, y = y, x
				}
				rows = append(rows, row)
				elems = append(elems, s)
				px = append(px, x)
				py = append(py, y)
			}
			for i := range ys {
				emit(c+ds[i]*scale, ys[i])
			}
			for i := len(ys) - 1; i >= 0; i-- {
				emit(c-ds[i]*scale, ys[i])
			}
		}
		return rowsAt(t, rows).Add(colElem, elems).
			Add(colPX, px).Add(colPY, py).Done()
	}))
	p.GroupBy(colElem)
	p.Add(gg.LayerPaths{X: colPX, Y: colPY, Fill: colColor})

	f.fixDistAxes(horiz)
}
