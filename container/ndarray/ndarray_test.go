// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ndarray

import (
	"reflect"
	"testing"

	"github.com/quickplot/quickplot/accessor"
	"github.com/quickplot/quickplot/core"
	"gonum.org/v1/gonum/mat"
)

// mkCube returns a 2x2x3 array: run x row x col.
func mkCube(t *testing.T) *Array {
	t.Helper()
	a, err := New("temp", []Dim{
		{Name: "run", Coords: []string{"a", "b"}},
		{Name: "row", Coords: []float64{0, 1}},
		{Name: "col", Coords: []float64{0, 1, 2}},
	}, []float64{
		0, 1, 2,
		3, 4, 5,

		6, 7, 8,
		9, 10, 11,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestSchema(t *testing.T) {
	a := mkCube(t)
	want := core.Schema{
		{Name: "run", Kind: core.String, Index: true},
		{Name: "row", Kind: core.Float, Index: true},
		{Name: "col", Kind: core.Float, Index: true},
		{Name: "temp", Kind: core.Float},
	}
	if got := a.Schema(); !reflect.DeepEqual(got, want) {
		t.Errorf("Schema should be %v; got %v", want, got)
	}
	if got, want := a.Shape(), []int{2, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("Shape should be %v; got %v", want, got)
	}
	if got := a.Len(); got != 12 {
		t.Errorf("Len should be 12; got %v", got)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New("v", nil, nil); err == nil {
		t.Errorf("New with no dimensions should fail")
	}
	if _, err := New("v", []Dim{{Name: "x", Coords: []float64{0, 1}}}, []float64{1}); err == nil {
		t.Errorf("New with mismatched data length should fail")
	}
	if _, err := New("v", []Dim{{Name: "x", Coords: "bad"}}, []float64{1}); err == nil {
		t.Errorf("New with non-slice coords should fail")
	}
}

func TestColumnMelt(t *testing.T) {
	a := mkCube(t)
	col, err := a.Column("run")
	if err != nil {
		t.Fatalf("Column(run): %v", err)
	}
	want := []string{"a", "a", "a", "a", "a", "a", "b", "b", "b", "b", "b", "b"}
	if !reflect.DeepEqual(col, want) {
		t.Errorf("Column(run) should be %v; got %v", want, col)
	}

	col, err = a.Column("col")
	if err != nil {
		t.Fatalf("Column(col): %v", err)
	}
	wantc := []float64{0, 1, 2, 0, 1, 2, 0, 1, 2, 0, 1, 2}
	if !reflect.DeepEqual(col, wantc) {
		t.Errorf("Column(col) should be %v; got %v", wantc, col)
	}

	col, err = a.Column("temp")
	if err != nil {
		t.Fatalf("Column(temp): %v", err)
	}
	if got := col.([]float64); got[7] != 7 {
		t.Errorf("Column(temp)[7] should be 7; got %v", got[7])
	}

	if _, err := a.Column("nope"); err == nil {
		t.Errorf("Column(nope) should fail")
	}
}

func TestSlice(t *testing.T) {
	a := mkCube(t)
	c, err := a.Slice("run", "b")
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	sub := c.(*Array)
	if got, want := sub.Shape(), []int{2, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("sliced Shape should be %v; got %v", want, got)
	}
	if sub.Schema().Has("run") {
		t.Errorf("sliced schema should drop run; got %v", sub.Schema())
	}
	col, err := sub.Column("temp")
	if err != nil {
		t.Fatalf("Column(temp): %v", err)
	}
	want := []float64{6, 7, 8, 9, 10, 11}
	if !reflect.DeepEqual(col, want) {
		t.Errorf("sliced temp should be %v; got %v", want, col)
	}

	// Slicing an inner dimension.
	c, err = a.Slice("col", 1.0)
	if err != nil {
		t.Fatalf("Slice(col): %v", err)
	}
	col, err = c.(*Array).Column("temp")
	if err != nil {
		t.Fatalf("Column(temp): %v", err)
	}
	want = []float64{1, 4, 7, 10}
	if !reflect.DeepEqual(col, want) {
		t.Errorf("inner-sliced temp should be %v; got %v", want, col)
	}

	if _, err := a.Slice("run", "z"); err == nil {
		t.Errorf("Slice with unknown coordinate should fail")
	}
}

func TestDenseRoundTrip(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	a, err := FromDense("z", m)
	if err != nil {
		t.Fatalf("FromDense: %v", err)
	}
	want := core.Schema{
		{Name: "row", Kind: core.Float, Index: true},
		{Name: "col", Kind: core.Float, Index: true},
		{Name: "z", Kind: core.Float},
	}
	if got := a.Schema(); !reflect.DeepEqual(got, want) {
		t.Errorf("Schema should be %v; got %v", want, got)
	}
	back, err := a.Dense()
	if err != nil {
		t.Fatalf("Dense: %v", err)
	}
	if !mat.Equal(m, back) {
		t.Errorf("Dense round trip should be %v; got %v", mat.Formatted(m), mat.Formatted(back))
	}
}

func TestAdapter(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	c, err := accessor.Default.Adapt(m)
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	if _, ok := c.(*Array); !ok {
		t.Fatalf("Adapt should return *Array; got %T", c)
	}
}
