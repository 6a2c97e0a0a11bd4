// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ggsvg

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/vec"
	"github.com/quickplot/quickplot/core"
	"github.com/quickplot/quickplot/render"
)

const colVal = "[val]"

// prepGrid prepares the frame for the grid kinds: two coordinate
// axis columns, an optional cell value column, and facet columns.
func prepGrid(r render.Frame) (*frame, error) {
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

	addAxis := func(a *axis, name string, log bool, lim [2]float64, limOK bool) error {
		a.label = name
		var vals []float64
		if name == "" {
			// An empty axis field means row order, as in the x/y
			// kinds. Rasterized point kinds land here when the
			// container has no index field.
			name = "index"
			a.label = name
			vals = make([]float64, data.Len())
			for i := range vals {
				vals[i] = float64(i)
			}
			if log {
				applyLog(vals, name)
				a.log = true
			}
			if limOK {
				limFilter(vals, lim)
				a.lim, a.limSet = lim, true
			}
			a.min, a.max = minMax(vals)
			a.col = cb.add(name, vals)
			return nil
		}
		fld, ok := schema.Lookup(name)
		if !ok {
			return fmt.Errorf("%w: %q", core.ErrSchemaMismatch, name)
		}
		if fld.Kind == core.String || fld.Kind == core.Bool {
			ss, err := columnStrings(data, name)
			if err != nil {
				return err
			}
			cats := catPositions(ss)
			vals = cats.positions(ss)
			a.cats = cats.names
		} else {
			var kind core.FieldKind
			vals, kind, err = columnFloats(data, name)
			if err != nil {
				return err
			}
			vals = append([]float64(nil), vals...)
			a.time = kind == core.Time
			if log && !a.time {
				applyLog(vals, name)
				a.log = true
			}
		}
		if limOK && a.cats == nil {
			limFilter(vals, lim)
			a.lim, a.limSet = lim, true
		}
		a.min, a.max = minMax(vals)
		a.col = cb.add(name, vals)
		return nil
	}

	xlim, xlimOK := spec.XLim()
	ylim, ylimOK := spec.YLim()
	if err := addAxis(&f.x, spec.X(), spec.LogX(), xlim, xlimOK); err != nil {
		return nil, err
	}
	if err := addAxis(&f.y, spec.Ys()[0], spec.LogY(), ylim, ylimOK); err != nil {
		return nil, err
	}

	if spec.C() != "" {
		vals, _, err := columnFloats(data, spec.C())
		if err != nil {
			return nil, err
		}
		cb.add(colVal, append([]float64(nil), vals...))
	}

	m, err := ParseColormap(spec.Cmap())
	if err != nil {
		return nil, err
	}
	f.cbar = m
	f.cbarName = spec.C()
	if f.cbarName == "" {
		f.cbarName = "count"
	}

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

	f.tab = cb.done()
	if spec.Invert() {
		f.x, f.y = f.y, f.x
	}
	return f, nil
}

// valRange scans the cell value column across all groups.
func valRange(g table.Grouping) (lo, hi float64) {
	lo, hi = math.NaN(), math.NaN()
	for _, gid := range g.Tables() {
		l, h := minMax(g.Table(gid).MustColumn(colVal).([]float64))
		if math.IsNaN(l) {
			continue
		}
		if math.IsNaN(lo) || l < lo {
			lo = l
		}
		if math.IsNaN(hi) || h > hi {
			hi = h
		}
	}
	return
}

// attachColors maps the cell value column through the colormap.
func attachColors(g table.Grouping, m *Colormap, lo, hi, alpha float64) table.Grouping {
	return table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		vals := t.MustColumn(colVal).([]float64)
		colors := make([]color.Color, len(vals))
		for i, v := range vals {
			colors[i] = m.At(norm(v, lo, hi), alpha)
		}
		return table.NewBuilder(t).Add(colColor, colors).Done()
	})
}

// aggCells averages duplicate (x, y) cells, in first-appearance
// order, and reports a representative source row per cell.
func aggCells(xs, ys, vs []float64) (cx, cy, cv []float64, rep []int) {
	type key struct{ x, y float64 }
	idx := make(map[key]int)
	var sum, cnt []float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsNaN(vs[i]) {
			continue
		}
		k := key{xs[i], ys[i]}
		j, ok := idx[k]
		if !ok {
			j = len(cx)
			idx[k] = j
			cx = append(cx, xs[i])
			cy = append(cy, ys[i])
			sum = append(sum, 0)
			cnt = append(cnt, 0)
			rep = append(rep, i)
		}
		sum[j] += vs[i]
		cnt[j]++
	}
	cv = make([]float64, len(sum))
	for j := range sum {
		cv[j] = sum[j] / cnt[j]
	}
	return
}

// addGrid draws heatmap and image kinds: one tile per aggregated
// cell, filled through the colormap.
func addGrid(p *gg.Plot, f *frame) error {
	if err := needVal(f); err != nil {
		return err
	}
	p.SetData(table.MapTables(p.Data(), func(_ table.GroupID, t *table.Table) *table.Table {
		cx, cy, cv, rep := aggCells(
			t.MustColumn(f.x.col).([]float64),
			t.MustColumn(f.y.col).([]float64),
			t.MustColumn(colVal).([]float64))
		return rowsAt(t, rep).
			Add(f.x.col, cx).Add(f.y.col, cy).Add(colVal, cv).Done()
	}))
	f.cbarMin, f.cbarMax = valRange(p.Data())
	p.SetData(attachColors(p.Data(), f.cbar, f.cbarMin, f.cbarMax, f.spec.Alpha()))
	p.Add(gg.LayerTiles{X: f.x.col, Y: f.y.col, Fill: colColor})
	return nil
}

func needVal(f *frame) error {
	if f.spec.C() == "" {
		return fmt.Errorf("%w: no cell value field", core.ErrSchemaMismatch)
	}
	return nil
}

// spans computes cell edges around sorted coordinates: midpoints
// between neighbors, extended half a step at the ends.
func spans(coords []float64) (lo, hi []float64) {
	n := len(coords)
	lo = make([]float64, n)
	hi = make([]float64, n)
	for i := range coords {
		switch {
		case n == 1:
			lo[i], hi[i] = coords[i]-0.5, coords[i]+0.5
		case i == 0:
			d := (coords[1] - coords[0]) / 2
			lo[i], hi[i] = coords[i]-d, coords[i]+d
		case i == n-1:
			d := (coords[n-1] - coords[n-2]) / 2
			lo[i], hi[i] = coords[i]-d, coords[i]+d
		default:
			lo[i] = (coords[i-1] + coords[i]) / 2
			hi[i] = (coords[i] + coords[i+1]) / 2
		}
	}
	return
}

// dense collects melted cells into a dense grid over the sorted
// unique coordinates. Missing cells are NaN.
type dense struct {
	xs, ys []float64
	vals   []float64 // row-major, ys outer
	rep    []int
}

func (d *dense) at(i, j int) float64 { return d.vals[j*len(d.xs)+i] }

func denseOf(xs, ys, vs []float64) *dense {
	cx, cy, cv, rep := aggCells(xs, ys, vs)
	ux := uniqSorted(cx)
	uy := uniqSorted(cy)
	d := &dense{xs: ux, ys: uy}
	d.vals = make([]float64, len(ux)*len(uy))
	d.rep = make([]int, len(ux)*len(uy))
	for i := range d.vals {
		d.vals[i] = math.NaN()
		d.rep[i] = -1
	}
	xi := make(map[float64]int, len(ux))
	for i, v := range ux {
		xi[v] = i
	}
	yi := make(map[float64]int, len(uy))
	for i, v := range uy {
		yi[v] = i
	}
	for k := range cv {
		at := yi[cy[k]]*len(ux) + xi[cx[k]]
		d.vals[at] = cv[k]
		d.rep[at] = rep[k]
	}
	return d
}

func uniqSorted(vals []float64) []float64 {
	out := append([]float64(nil), vals...)
	sort.Float64s(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}

// addQuadmesh draws one rectangle per cell, sized by the midpoint
// spans of its row and column, so irregular rectilinear grids render
// without gaps.
func addQuadmesh(p *gg.Plot, f *frame) error {
	if err := needVal(f); err != nil {
		return err
	}
	p.SetData(table.MapTables(p.Data(), func(_ table.GroupID, t *table.Table) *table.Table {
		d := denseOf(
			t.MustColumn(f.x.col).([]float64),
			t.MustColumn(f.y.col).([]float64),
			t.MustColumn(colVal).([]float64))
		xlo, xhi := spans(d.xs)
		ylo, yhi := spans(d.ys)

		var rows, elems []int
		var px, lower, upper, cv []float64
		for j := range d.ys {
			for i := range d.xs {
				v := d.at(i, j)
				if math.IsNaN(v) {
					continue
				}
				elem := len(rows) / 2
				rep := d.rep[j*len(d.xs)+i]
				rows = append(rows, rep, rep)
				elems = append(elems, elem, elem)
				px = append(px, xlo[i], xhi[i])
				lower = append(lower, ylo[j], ylo[j])
				upper = append(upper, yhi[j], yhi[j])
				cv = append(cv, v, v)
			}
		}
		return rowsAt(t, rows).Add(colElem, elems).
			Add(f.x.col, px).Add(colLower, lower).Add(colUpper, upper).
			Add(colVal, cv).Done()
	}))
	f.cbarMin, f.cbarMax = valRange(p.Data())
	p.SetData(attachColors(p.Data(), f.cbar, f.cbarMin, f.cbarMax, f.spec.Alpha()))
	p.GroupBy(colElem)
	p.Add(gg.LayerArea{X: f.x.col, Upper: colUpper, Lower: colLower, Fill: colColor})
	return nil
}

// contourCell emits the level-crossing segments of one grid cell,
// interpolating crossings along the cell edges. Saddle cells are
// disambiguated by the cell center.
func contourCell(x0, x1, y0, y1, z00, z10, z01, z11, lv float64, emit func(ax, ay, bx, by float64)) {
	if math.IsNaN(z00) || math.IsNaN(z10) || math.IsNaN(z01) || math.IsNaN(z11) {
		return
	}
	// Edge crossing points. Corners: 00 bottom-left, 10 bottom-
	// right, 01 top-left, 11 top-right.
	interp := func(p0, p1, za, zb float64) float64 {
		return p0 + (p1-p0)*(lv-za)/(zb-za)
	}
	bottom := func() (float64, float64) { return interp(x0, x1, z00, z10), y0 }
	top := func() (float64, float64) { return interp(x0, x1, z01, z11), y1 }
	left := func() (float64, float64) { return x0, interp(y0, y1, z00, z01) }
	right := func() (float64, float64) { return x1, interp(y0, y1, z10, z11) }
	join := func(a, b func() (float64, float64)) {
		ax, ay := a()
		bx, by := b()
		emit(ax, ay, bx, by)
	}

	mask := 0
	if z00 > lv {
		mask |= 1
	}
	if z10 > lv {
		mask |= 2
	}
	if z11 > lv {
		mask |= 4
	}
	if z01 > lv {
		mask |= 8
	}
	switch mask {
	case 0, 15:
	case 1, 14:
		join(left, bottom)
	case 2, 13:
		join(bottom, right)
	case 4, 11:
		join(right, top)
	case 8, 7:
		join(top, left)
	case 3, 12:
		join(left, right)
	case 6, 9:
		join(bottom, top)
	case 5, 10:
		// Saddle: split by the center value.
		center := (z00 + z10 + z01 + z11) / 4
		if (center > lv) == (mask == 5) {
			join(left, top)
			join(bottom, right)
		} else {
			join(left, bottom)
			join(right, top)
		}
	}
}

// contourLevels picks evenly spaced interior levels of [lo, hi].
func contourLevels(lo, hi float64, n int) []float64 {
	if n <= 0 || math.IsNaN(lo) || hi <= lo {
		return nil
	}
	return vec.Linspace(lo, hi, n+2)[1 : n+1]
}

// addContour traces level lines of the gridded cell values.
func addContour(p *gg.Plot, f *frame) error {
	if err := needVal(f); err != nil {
		return err
	}
	lo, hi := valRange(p.Data())
	levels := contourLevels(lo, hi, f.spec.Levels())
	if levels == nil {
		return fmt.Errorf("ggsvg: contour needs a spread of cell values")
	}
	f.cbarMin, f.cbarMax = lo, hi

	p.SetData(table.MapTables(p.Data(), func(_ table.GroupID, t *table.Table) *table.Table {
		d := denseOf(
			t.MustColumn(f.x.col).([]float64),
			t.MustColumn(f.y.col).([]float64),
			t.MustColumn(colVal).([]float64))

		var rows, elems []int
		var px, py, cv []float64
		for _, lv := range levels {
			for j := 0; j+1 < len(d.ys); j++ {
				for i := 0; i+1 < len(d.xs); i++ {
					rep := d.rep[j*len(d.xs)+i]
					if rep < 0 {
						continue
					}
					contourCell(d.xs[i], d.xs[i+1], d.ys[j], d.ys[j+1],
						d.at(i, j), d.at(i+1, j), d.at(i, j+1), d.at(i+1, j+1),
						lv, func(ax, ay, bx, by float64) {
							elem := len(rows) / 2
							rows = append(rows, rep, rep)
							elems = append(elems, elem, elem)
							px = append(px, ax, bx)
							py = append(py, ay, by)
							cv = append(cv, lv, lv)
						})
				}
			}
		}
		return rowsAt(t, rows).Add(colElem, elems).
			Add(f.x.col, px).Add(f.y.col, py).Add(colVal, cv).Done()
	}))
	p.SetData(attachColors(p.Data(), f.cbar, lo, hi, f.spec.Alpha()))
	p.GroupBy(colElem)
	p.Add(gg.LayerPaths{X: f.x.col, Y: f.y.col, Color: colColor})
	return nil
}

// hexAt returns the hex lattice center nearest to the normalized
// point, using the two interleaved rectangular lattices.
func hexAt(u, v, dx, dy float64) (cx, cy float64) {
	i1, j1 := math.Round(u/dx), math.Round(v/dy)
	c1x, c1y := i1*dx, j1*dy
	i2, j2 := math.Round(u/dx-0.5), math.Round(v/dy-0.5)
	c2x, c2y := (i2+0.5)*dx, (j2+0.5)*dy
	d1 := (u-c1x)*(u-c1x) + (v-c1y)*(v-c1y)
	d2 := (u-c2x)*(u-c2x) + (v-c2y)*(v-c2y)
	if d1 <= d2 {
		return c1x, c1y
	}
	return c2x, c2y
}

// addHexbin bins points into a hexagonal grid and draws one filled
// hexagon per occupied bin, colored by count.
func addHexbin(p *gg.Plot, f *frame) error {
	bins := f.spec.Bins()
	if bins <= 0 {
		bins = 20
	}
	xlo, xhi := f.x.min, f.x.max
	ylo, yhi := f.y.min, f.y.max
	if math.IsNaN(xlo) || math.IsNaN(ylo) {
		return fmt.Errorf("ggsvg: no rows to draw")
	}
	if xhi <= xlo {
		xlo, xhi = xlo-0.5, xlo+0.5
	}
	if yhi <= ylo {
		ylo, yhi = ylo-0.5, ylo+0.5
	}
	// Pointy-top hexagons in normalized space: horizontal pitch dx,
	// vertical pitch 1.5R with circumradius R.
	dx := 1 / float64(bins)
	r := dx / math.Sqrt(3)
	dy := 1.5 * r

	p.SetData(table.MapTables(p.Data(), func(_ table.GroupID, t *table.Table) *table.Table {
		xs := t.MustColumn(f.x.col).([]float64)
		ys := t.MustColumn(f.y.col).([]float64)
		type key struct{ x, y float64 }
		counts := make(map[key]float64)
		reps := make(map[key]int)
		var order []key
		for i := range xs {
			if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
				continue
			}
			u := (xs[i] - xlo) / (xhi - xlo)
			v := (ys[i] - ylo) / (yhi - ylo)
			cx, cy := hexAt(u, v, dx, dy)
			k := key{cx, cy}
			if counts[k] == 0 {
				reps[k] = i
				order = append(order, k)
			}
			counts[k]++
		}

		var rows, elems []int
		var px, py, cv []float64
		for e, k := range order {
			for i := 0; i < 6; i++ {
				th := math.Pi/2 + float64(i)*math.Pi/3
				u := k.x + r*math.Cos(th)
				v := k.y + r*math.Sin(th)
				rows = append(rows, reps[k])
				elems = append(elems, e)
				px = append(px, xlo+u*(xhi-xlo))
				py = append(py, ylo+v*(yhi-ylo))
				cv = append(cv, counts[k])
			}
		}
		return rowsAt(t, rows).Add(colElem, elems).
			Add(f.x.col, px).Add(f.y.col, py).Add(colVal, cv).Done()
	}))
	_, hi := valRange(p.Data())
	f.cbarMin, f.cbarMax = 0, hi
	p.SetData(attachColors(p.Data(), f.cbar, 0, hi, f.spec.Alpha()))
	p.GroupBy(colElem)
	p.Add(gg.LayerPaths{X: f.x.col, Y: f.y.col, Fill: colColor})
	return nil
}

// addBinned2D draws rectangular 2-D bin counts as tiles. It serves
// the bivariate kind and rasterized point kinds.
func addBinned2D(p *gg.Plot, f *frame, nx, ny int) error {
	xlo, xhi := f.x.min, f.x.max
	ylo, yhi := f.y.min, f.y.max
	if math.IsNaN(xlo) || math.IsNaN(ylo) {
		return fmt.Errorf("ggsvg: no rows to draw")
	}
	xlo, xhi = histBounds(xlo, xhi)
	ylo, yhi = histBounds(ylo, yhi)
	xe := vec.Linspace(xlo, xhi, nx+1)
	ye := vec.Linspace(ylo, yhi, ny+1)

	p.SetData(table.MapTables(p.Data(), func(_ table.GroupID, t *table.Table) *table.Table {
		xs := t.MustColumn(f.x.col).([]float64)
		ys := t.MustColumn(f.y.col).([]float64)
		counts := make([]float64, nx*ny)
		reps := make([]int, nx*ny)
		for i := range reps {
			reps[i] = -1
		}
		for i := range xs {
			if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
				continue
			}
			bx := binIndex(xs[i], xlo, xhi, nx)
			by := binIndex(ys[i], ylo, yhi, ny)
			at := by*nx + bx
			counts[at]++
			if reps[at] < 0 {
				reps[at] = i
			}
		}

		// Empty bins are emitted with a zero count: the tile mark
		// derives cell extents from the spacing of the emitted
		// centers, so the grid must stay regular even when the data
		// occupies scattered bins.
		rows := make([]int, 0, nx*ny)
		px := make([]float64, 0, nx*ny)
		py := make([]float64, 0, nx*ny)
		cv := make([]float64, 0, nx*ny)
		for by := 0; by < ny; by++ {
			for bx := 0; bx < nx; bx++ {
				at := by*nx + bx
				rep := reps[at]
				if rep < 0 {
					rep = 0
				}
				rows = append(rows, rep)
				px = append(px, (xe[bx]+xe[bx+1])/2)
				py = append(py, (ye[by]+ye[by+1])/2)
				cv = append(cv, counts[at])
			}
		}
		return rowsAt(t, rows).
			Add(f.x.col, px).Add(f.y.col, py).Add(colVal, cv).Done()
	}))
	_, hi := valRange(p.Data())
	f.cbarMin, f.cbarMax = 0, hi
	p.SetData(attachColors(p.Data(), f.cbar, 0, hi, f.spec.Alpha()))
	p.Add(gg.LayerTiles{X: f.x.col, Y: f.y.col, Fill: colColor})
	return nil
}

// rasterGrid sizes the rasterization grid from the canvas, a quarter
// of the pixel resolution on each side.
func rasterGrid(w, h int) (nx, ny int) {
	nx = max(w/4, 1)
	ny = max(h/4, 1)
	if nx > 400 {
		nx = 400
	}
	if ny > 400 {
		ny = 400
	}
	return
}
