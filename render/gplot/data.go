// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gplot

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
	"gonum.org/v1/plot/plotutil"

	"github.com/quickplot/quickplot/core"
	"github.com/quickplot/quickplot/render"
	"github.com/quickplot/quickplot/render/ggsvg"
)

// floatsOf fetches a column as float64s. Ints and bools convert;
// times become Unix seconds. The result is always a fresh slice.
func floatsOf(c core.Tabular, name string) ([]float64, error) {
	col, err := c.Column(name)
	if err != nil {
		return nil, err
	}
	switch col := col.(type) {
	case []float64:
		return append([]float64(nil), col...), nil
	case []int:
		out := make([]float64, len(col))
		for i, v := range col {
			out[i] = float64(v)
		}
		return out, nil
	case []bool:
		out := make([]float64, len(col))
		for i, v := range col {
			if v {
				out[i] = 1
			}
		}
		return out, nil
	case []time.Time:
		out := make([]float64, len(col))
		for i, v := range col {
			out[i] = float64(v.Unix())
		}
		return out, nil
	}
	return nil, fmt.Errorf("gplot: field %q is not numeric", name)
}

// stringsOf fetches a column as display strings.
func stringsOf(c core.Tabular, name string) ([]string, error) {
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
	return nil, fmt.Errorf("gplot: cannot format column %q (%T)", name, col)
}

// A series is one named run of points. rows holds the source row of
// each point, for looking up row-aligned auxiliary data.
type series struct {
	name   string
	rows   []int
	xs, ys []float64
}

// A dataset is a frame's rows extracted and split into drawable
// series: one per value field, further split by the grouping fields.
type dataset struct {
	sers   []series
	colors []color.Color

	xname, yname string

	// ramp holds per-source-row colors when a numeric color field
	// maps a continuous ramp, indexed by series row numbers.
	ramp     []color.Color
	rampName string
}

// extract pulls the series out of a frame. An empty x means row
// order. Multiple value fields become one series each; by fields and
// a categorical color field split each further.
func extract(r render.Frame) (*dataset, error) {
	spec := r.Spec
	data, err := tabular(r.Data)
	if err != nil {
		return nil, err
	}
	if data.Len() == 0 {
		return nil, fmt.Errorf("gplot: no rows to draw")
	}
	schema := data.Schema()

	var xs []float64
	xname := spec.X()
	if xname == "" {
		xname = "index"
		xs = make([]float64, data.Len())
		for i := range xs {
			xs[i] = float64(i)
		}
	} else {
		xs, err = floatsOf(data, spec.X())
		if err != nil {
			return nil, err
		}
	}

	// An explicit color= field wins over c=. Numeric fields map a
	// continuous ramp; others become a grouping field.
	groupFields := spec.By()
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
		} else {
			groupFields = append(append([]string(nil), groupFields...), colorField)
		}
	}

	// Group rows by the joined grouping-field values.
	groups := []string{""}
	rowGroup := make([]string, data.Len())
	if len(groupFields) > 0 {
		cols := make([][]string, len(groupFields))
		for i, g := range groupFields {
			cols[i], err = stringsOf(data, g)
			if err != nil {
				return nil, err
			}
		}
		groups = groups[:0]
		seen := make(map[string]bool)
		for i := range rowGroup {
			parts := make([]string, len(cols))
			for j := range cols {
				parts[j] = cols[j][i]
			}
			g := strings.Join(parts, "/")
			rowGroup[i] = g
			if !seen[g] {
				seen[g] = true
				groups = append(groups, g)
			}
		}
	}

	ys := spec.Ys()
	d := &dataset{xname: xname, yname: spec.ValueLabel()}
	if len(ys) == 1 {
		d.yname = ys[0]
	}
	for _, y := range ys {
		col, err := floatsOf(data, y)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			s := series{name: seriesName(y, g, len(ys) > 1)}
			for i, rg := range rowGroup {
				if rg != g {
					continue
				}
				s.rows = append(s.rows, i)
				s.xs = append(s.xs, xs[i])
				s.ys = append(s.ys, col[i])
			}
			d.sers = append(d.sers, s)
		}
	}

	d.colors = make([]color.Color, len(d.sers))
	for i := range d.colors {
		d.colors[i] = fade(plotutil.Color(i), spec.Alpha())
	}
	if spec.Color() != "" && !schema.Has(spec.Color()) {
		if lit, ok := literalColor(spec.Color()); ok {
			for i := range d.colors {
				d.colors[i] = fade(lit, spec.Alpha())
			}
		} else {
			core.Warning.Printf("unknown color %q", spec.Color())
		}
	}

	if continuous {
		cvals, err := floatsOf(data, colorField)
		if err != nil {
			return nil, err
		}
		m, err := ggsvg.ParseColormap(spec.Cmap())
		if err != nil {
			return nil, err
		}
		lo, hi := minMax(cvals)
		d.ramp = make([]color.Color, len(cvals))
		for i, v := range cvals {
			d.ramp[i] = m.At(norm(v, lo, hi), spec.Alpha())
		}
		d.rampName = colorField
	}
	return d, nil
}

func seriesName(y, group string, folded bool) string {
	switch {
	case folded && group != "":
		return y + "/" + group
	case folded:
		return y
	default:
		return group
	}
}

func tabular(c core.Container) (core.Tabular, error) {
	t, ok := c.(core.Tabular)
	if !ok {
		return nil, fmt.Errorf("gplot: container %T is not tabular", c)
	}
	return t, nil
}

// clean drops points that cannot be drawn: NaN coordinates, and
// non-positive coordinates on a log axis.
func clean(s series, logx, logy bool) series {
	out := series{name: s.name}
	dropped := 0
	for i := range s.xs {
		x, y := s.xs[i], s.ys[i]
		if math.IsNaN(x) || math.IsNaN(y) || (logx && x <= 0) || (logy && y <= 0) {
			dropped++
			continue
		}
		out.rows = append(out.rows, s.rows[i])
		out.xs = append(out.xs, x)
		out.ys = append(out.ys, y)
	}
	if dropped > 0 && (logx || logy) {
		core.Warning.Printf("dropped %d points not drawable on a log axis", dropped)
	}
	return out
}

// finite returns the values of s with NaNs removed.
func finite(s series) []float64 {
	out := make([]float64, 0, len(s.ys))
	for _, v := range s.ys {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// fade applies an alpha fraction to a color.
func fade(c color.Color, alpha float64) color.Color {
	if alpha >= 1 {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(alpha * 255))
	return n
}

// literalColor parses a named or hex color.
func literalColor(name string) (color.Color, bool) {
	if c, ok := colornames.Map[strings.ToLower(name)]; ok {
		return c, true
	}
	if c, err := colorful.Hex(name); err == nil {
		return c, true
	}
	return nil, false
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

// norm maps v into [0, 1] over [lo, hi].
func norm(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

// A denseGrid is a row-major grid over sorted unique coordinates,
// with NaN in cells the data does not cover. It implements the
// plotter grid interface for heat maps and contours.
type denseGrid struct {
	xs, ys []float64
	z      []float64
}

func (g *denseGrid) Dims() (c, r int)   { return len(g.xs), len(g.ys) }
func (g *denseGrid) Z(c, r int) float64 { return g.z[r*len(g.xs)+c] }
func (g *denseGrid) X(c int) float64    { return g.xs[c] }
func (g *denseGrid) Y(r int) float64    { return g.ys[r] }

// gridOf bins the frame's rows into a dense grid keyed by the x and y
// fields, averaging duplicate cells.
func gridOf(r render.Frame) (*denseGrid, string, error) {
	spec := r.Spec
	data, err := tabular(r.Data)
	if err != nil {
		return nil, "", err
	}
	if data.Len() == 0 {
		return nil, "", fmt.Errorf("gplot: no rows to draw")
	}
	xs, err := floatsOf(data, spec.X())
	if err != nil {
		return nil, "", err
	}
	ys, err := floatsOf(data, spec.Ys()[0])
	if err != nil {
		return nil, "", err
	}
	vs, err := floatsOf(data, spec.C())
	if err != nil {
		return nil, "", err
	}

	ux, uy := uniqSorted(xs), uniqSorted(ys)
	if len(ux) == 0 || len(uy) == 0 {
		return nil, "", fmt.Errorf("gplot: no grid coordinates to draw")
	}
	n := len(ux) * len(uy)
	sum, cnt := make([]float64, n), make([]int, n)
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsNaN(vs[i]) {
			continue
		}
		ci := sort.SearchFloat64s(ux, xs[i])
		ri := sort.SearchFloat64s(uy, ys[i])
		k := ri*len(ux) + ci
		sum[k] += vs[i]
		cnt[k]++
	}
	z := make([]float64, n)
	for k := range z {
		if cnt[k] == 0 {
			z[k] = math.NaN()
		} else {
			z[k] = sum[k] / float64(cnt[k])
		}
	}
	return &denseGrid{xs: ux, ys: uy, z: z}, spec.C(), nil
}

// uniqSorted returns the sorted distinct non-NaN values.
func uniqSorted(vals []float64) []float64 {
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	out := s[:0]
	for _, v := range s {
		if math.IsNaN(v) {
			continue
		}
		if len(out) == 0 || out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	return out
}

// innerLevels returns n levels strictly inside [lo, hi], evenly
// spaced.
func innerLevels(lo, hi float64, n int) []float64 {
	if n <= 0 || math.IsNaN(lo) || math.IsNaN(hi) || lo >= hi {
		return nil
	}
	step := (hi - lo) / float64(n+1)
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + step*float64(i+1)
	}
	return out
}
