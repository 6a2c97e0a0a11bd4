// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ggtable

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/aclements/go-gg/table"
	"github.com/quickplot/quickplot/accessor"
	"github.com/quickplot/quickplot/core"
)

func mkFrame(t *testing.T, index ...string) *Frame {
	t.Helper()
	tab := new(table.Builder).
		Add("city", []string{"SF", "SF", "NYC", "NYC"}).
		Add("year", []int{2024, 2025, 2024, 2025}).
		Add("temp", []float64{14.5, 15.1, 11.2, 12.0}).
		Add("wet", []bool{true, false, false, true}).
		Done()
	f, err := New(tab, index...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func TestSchema(t *testing.T) {
	f := mkFrame(t, "city", "year")
	want := core.Schema{
		{Name: "city", Kind: core.String, Index: true},
		{Name: "year", Kind: core.Int, Index: true},
		{Name: "temp", Kind: core.Float},
		{Name: "wet", Kind: core.Bool},
	}
	if got := f.Schema(); !reflect.DeepEqual(got, want) {
		t.Errorf("Schema should be %v; got %v", want, got)
	}
	if got := f.Len(); got != 4 {
		t.Errorf("Len should be 4; got %v", got)
	}
}

func TestNewBadIndex(t *testing.T) {
	tab := new(table.Builder).Add("x", []int{1}).Done()
	if _, err := New(tab, "nope"); err == nil {
		t.Errorf("New with missing index column should fail")
	}
}

func TestColumnCanonical(t *testing.T) {
	tab := new(table.Builder).
		Add("n", []int{1, 2}).
		Add("d", []time.Duration{time.Second, 2 * time.Second}).
		Add("t", []time.Time{time.Unix(0, 0), time.Unix(1, 0)}).
		Done()
	f, err := New(tab)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	col, err := f.Column("n")
	if err != nil {
		t.Fatalf("Column(n): %v", err)
	}
	if want := []int{1, 2}; !reflect.DeepEqual(col, want) {
		t.Errorf("Column(n) should be %v; got %v", want, col)
	}

	col, err = f.Column("d")
	if err != nil {
		t.Fatalf("Column(d): %v", err)
	}
	if want := []float64{1e9, 2e9}; !reflect.DeepEqual(col, want) {
		t.Errorf("Column(d) should be %v; got %v", want, col)
	}
	if got, _ := f.Schema().Lookup("d"); got.Kind != core.Float {
		t.Errorf("duration column kind should be float; got %v", got.Kind)
	}

	if _, err := f.Column("nope"); err == nil {
		t.Errorf("Column(nope) should fail")
	}
}

func TestSlice(t *testing.T) {
	f := mkFrame(t, "city", "year")
	c, err := f.Slice("city", "SF")
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	sub := c.(*Frame)
	if got := sub.Len(); got != 2 {
		t.Fatalf("sliced Len should be 2; got %v", got)
	}
	if sub.Schema().Has("city") {
		t.Errorf("sliced schema should drop city; got %v", sub.Schema())
	}
	if got, _ := sub.Schema().Lookup("year"); !got.Index {
		t.Errorf("year should stay an index column after slicing")
	}
	col, err := sub.Column("temp")
	if err != nil {
		t.Fatalf("Column(temp): %v", err)
	}
	if want := []float64{14.5, 15.1}; !reflect.DeepEqual(col, want) {
		t.Errorf("sliced temp should be %v; got %v", want, col)
	}
	// The original frame is unchanged.
	if got := f.Len(); got != 4 {
		t.Errorf("original Len should be 4 after Slice; got %v", got)
	}
}

func TestSliceNumericPromotion(t *testing.T) {
	f := mkFrame(t, "city", "year")
	// The year column is []int; slicing with a float64 value must
	// still match.
	c, err := f.Slice("year", 2024.0)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if got := c.(*Frame).Len(); got != 2 {
		t.Errorf("sliced Len should be 2; got %v", got)
	}
}

func TestReadCSV(t *testing.T) {
	const data = `city,year,temp
SF,2024,14.5
NYC,2024,11.2
`
	f, err := ReadCSV(strings.NewReader(data), "city")
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	want := core.Schema{
		{Name: "city", Kind: core.String, Index: true},
		{Name: "year", Kind: core.Int},
		{Name: "temp", Kind: core.Float},
	}
	if got := f.Schema(); !reflect.DeepEqual(got, want) {
		t.Errorf("Schema should be %v; got %v", want, got)
	}
	if got := f.Len(); got != 2 {
		t.Errorf("Len should be 2; got %v", got)
	}

	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Errorf("ReadCSV of empty input should fail")
	}
}

func TestValues(t *testing.T) {
	f := mkFrame(t, "city", "year")
	vals, err := core.Values(f, "city")
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if want := []any{"SF", "NYC"}; !reflect.DeepEqual(vals, want) {
		t.Errorf("Values(city) should be %v; got %v", want, vals)
	}
}

func TestAdapter(t *testing.T) {
	tab := new(table.Builder).Add("x", []int{1, 2}).Done()
	c, err := accessor.Default.Adapt(tab)
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	f, ok := c.(*Frame)
	if !ok {
		t.Fatalf("Adapt should return *Frame; got %T", c)
	}
	// Bare tables get no index columns.
	if got := f.Schema().IndexFields(); len(got) != 0 {
		t.Errorf("adapted table should have no index fields; got %v", got)
	}
}
