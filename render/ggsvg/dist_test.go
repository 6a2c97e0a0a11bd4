// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ggsvg

import (
	"math"
	"reflect"
	"testing"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
)

func TestBinIndex(t *testing.T) {
	tests := []struct {
		v, lo, hi float64
		bins      int
		want      int
	}{
		{0, 0, 10, 10, 0},
		{5, 0, 10, 10, 5},
		{9.99, 0, 10, 10, 9},
		{10, 0, 10, 10, 9}, // the last bin is closed on the right
		{-5, 0, 10, 10, 0},
		{15, 0, 10, 10, 9},
	}
	for _, test := range tests {
		got := binIndex(test.v, test.lo, test.hi, test.bins)
		if got != test.want {
			t.Errorf("binIndex(%v, %v, %v, %d) should be %d; got %d",
				test.v, test.lo, test.hi, test.bins, test.want, got)
		}
	}
}

func TestBinCounts(t *testing.T) {
	vals := []float64{1, 2, 3, math.NaN(), 9}
	rank := []int{0, 0, 1, 0, 1}
	counts := binCounts(vals, rank, 2, 2, 0, 10)
	if want := []float64{2, 0}; !reflect.DeepEqual(counts[0], want) {
		t.Errorf("series 0 counts should be %v; got %v", want, counts[0])
	}
	if want := []float64{1, 1}; !reflect.DeepEqual(counts[1], want) {
		t.Errorf("series 1 counts should be %v; got %v", want, counts[1])
	}
}

func TestRepRows(t *testing.T) {
	if got, want := repRows([]int{1, 1, 0, 2}, 4), []int{2, 0, 3, -1}; !reflect.DeepEqual(got, want) {
		t.Errorf("repRows should be %v; got %v", want, got)
	}
}

func TestHistBounds(t *testing.T) {
	if lo, hi := histBounds(math.NaN(), math.NaN()); lo != 0 || hi != 1 {
		t.Errorf("empty bounds should be [0, 1]; got [%v, %v]", lo, hi)
	}
	if lo, hi := histBounds(5, 5); lo != 4.5 || hi != 5.5 {
		t.Errorf("degenerate bounds should widen to [4.5, 5.5]; got [%v, %v]", lo, hi)
	}
	if lo, hi := histBounds(1, 3); lo != 1 || hi != 3 {
		t.Errorf("proper bounds should pass through; got [%v, %v]", lo, hi)
	}
}

func TestBoxStats(t *testing.T) {
	// 1..11 plus one far outlier.
	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 100}
	rows := make([]int, len(vals))
	for i := range rows {
		rows[i] = i
	}
	b := boxStatsOf(vals, rows)

	if b.med != 6.5 {
		t.Errorf("median should be 6.5; got %v", b.med)
	}
	if b.q1 < 3 || b.q1 > 4 {
		t.Errorf("q1 should be in [3, 4]; got %v", b.q1)
	}
	if b.q3 < 9 || b.q3 > 10 {
		t.Errorf("q3 should be in [9, 10]; got %v", b.q3)
	}
	if b.wlo != 1 {
		t.Errorf("lower whisker should be 1; got %v", b.wlo)
	}
	if b.whi != 11 {
		t.Errorf("upper whisker should stop inside the fence at 11; got %v", b.whi)
	}
	if want := []int{11}; !reflect.DeepEqual(b.outliers, want) {
		t.Errorf("outlier rows should be %v; got %v", want, b.outliers)
	}
}

func TestBoxStatsNaN(t *testing.T) {
	vals := []float64{1, 2, 3, math.NaN()}
	b := boxStatsOf(vals, []int{0, 1, 2, 3})
	if b.med != 2 {
		t.Errorf("median should ignore NaN; got %v", b.med)
	}
	if len(b.outliers) != 0 {
		t.Errorf("NaN should not be an outlier; got rows %v", b.outliers)
	}
}

func TestConstify(t *testing.T) {
	tab := new(table.Builder).
		Add("g", []string{"a", "a", "b", "b"}).
		Add("v", []float64{1, 2, 3, 4}).
		Done()
	g := constify(table.GroupBy(tab, "g"), []string{"g"})

	got := make(map[string]bool)
	for _, gid := range g.Tables() {
		leaf := g.Table(gid)
		v, ok := leaf.Const("g")
		if !ok {
			t.Fatalf("group column should be constant after constify")
		}
		got[v.(string)] = true
		// The value column is untouched.
		if _, ok := leaf.Const("v"); ok {
			t.Errorf("value column should not become constant")
		}
	}
	if !got["a"] || !got["b"] {
		t.Errorf("per-group constants should be a and b; got %v", got)
	}
}

func TestViolinCurve(t *testing.T) {
	sample := stats.Sample{Xs: []float64{1, 2, 3, 4, 5}}
	ys, ds := violinCurve(sample, 0, 50)
	if len(ys) != 50 || len(ds) != 50 {
		t.Fatalf("curve should have 50 points; got %d, %d", len(ys), len(ds))
	}
	if ys[0] >= 1 || ys[len(ys)-1] <= 5 {
		t.Errorf("curve should widen past the sample bounds; got [%v, %v]",
			ys[0], ys[len(ys)-1])
	}
	for i, d := range ds {
		if math.IsNaN(d) || d < 0 {
			t.Fatalf("density at %v should be non-negative; got %v", ys[i], d)
		}
	}
	// The estimate peaks near the sample center.
	peak := 0
	for i, d := range ds {
		if d > ds[peak] {
			peak = i
		}
	}
	if c := ys[peak]; c < 2 || c > 4 {
		t.Errorf("density peak should be near 3; got %v", c)
	}
}
