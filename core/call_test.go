// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// schemaOnly is a container that exposes nothing but its schema.
// Dispatch must never need more than that.
type schemaOnly struct {
	schema Schema
}

func (c schemaOnly) Schema() Schema { return c.schema }

var gridContainer = schemaOnly{Schema{
	{Name: "a", Kind: Float, Index: true},
	{Name: "b", Kind: Float, Index: true},
	{Name: "v", Kind: Float},
}}

func TestCallKindPreserved(t *testing.T) {
	// Every supported kind must dispatch to a spec of exactly that
	// kind; no aliasing, even between bar and barh.
	for _, k := range Kinds() {
		spec, err := Call(gridContainer, k, nil)
		if err != nil {
			t.Errorf("Call(%q) failed: %v", k, err)
			continue
		}
		if spec.Kind() != k {
			t.Errorf("Call(%q) produced kind %q", k, spec.Kind())
		}
	}
}

func TestCallUnsupportedKind(t *testing.T) {
	_, err := Call(gridContainer, Kind("not_a_plot"), nil)
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("want ErrUnsupportedKind, got %v", err)
	}
	if _, err := ParseKind("not_a_plot"); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("want ErrUnsupportedKind from ParseKind, got %v", err)
	}
	if _, err := ParseKind("violin"); err != nil {
		t.Fatalf("ParseKind(violin) failed: %v", err)
	}
}

func TestCallSchemaMismatch(t *testing.T) {
	_, err := Call(gridContainer, KindLine, Options{"y": "nope"})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("want ErrSchemaMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), `"nope"`) {
		t.Fatalf("error should name the missing field: %v", err)
	}
}

func TestCallDefaultsToIndex(t *testing.T) {
	c := schemaOnly{weatherSchema}

	// Zero-argument dispatch: x defaults to the first index field,
	// which is then consumed and must not be a slice dim. The
	// second index field is a slice dim.
	spec, err := Call(c, KindLine, nil)
	if err != nil {
		t.Fatal(err)
	}
	if spec.X() != "time" {
		t.Fatalf("x defaulted to %q, want time", spec.X())
	}
	if got, want := names(spec.SliceDims()), []string{"station"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("slice dims %v, want %v", got, want)
	}
	if got, want := spec.Ys(), []string{"temperature", "humidity"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ys %v, want %v", got, want)
	}

	// With no index fields there is nothing to slice and x is left
	// to row order.
	flat := schemaOnly{Schema{{Name: "v", Kind: Float}}}
	spec, err = Call(flat, KindLine, nil)
	if err != nil {
		t.Fatal(err)
	}
	if spec.X() != "" || len(spec.SliceDims()) != 0 {
		t.Fatalf("flat container: x=%q slice=%v, want row order and none", spec.X(), spec.SliceDims())
	}
}

func TestCallMergePrecedence(t *testing.T) {
	defer SetDefaults(nil)

	// Built-in per-kind default.
	spec, err := Call(gridContainer, KindHist, nil)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Bins() != 20 {
		t.Fatalf("built-in hist bins = %d, want 20", spec.Bins())
	}

	// Theme global beats built-ins; theme per-kind beats theme
	// global; the caller beats everything.
	SetDefaults(&DefaultSet{
		Global: Options{"bins": 25},
		Kinds:  map[Kind]Options{KindHist: {"bins": 30}},
	})
	if spec, _ = Call(gridContainer, KindBivariate, nil); spec.Bins() != 25 {
		t.Fatalf("theme global bins = %d, want 25", spec.Bins())
	}
	if spec, _ = Call(gridContainer, KindHist, nil); spec.Bins() != 30 {
		t.Fatalf("theme kind bins = %d, want 30", spec.Bins())
	}
	spec, err = Call(gridContainer, KindHist, Options{"bins": 40})
	if err != nil {
		t.Fatal(err)
	}
	if spec.Bins() != 40 {
		t.Fatalf("caller bins = %d, want 40", spec.Bins())
	}

	SetDefaults(nil)
	if spec, _ = Call(gridContainer, KindHist, nil); spec.Bins() != 20 {
		t.Fatalf("bins after reset = %d, want 20", spec.Bins())
	}
}

func TestCallGroupBy(t *testing.T) {
	c := schemaOnly{Schema{
		{Name: "day", Kind: Int, Index: true},
		{Name: "city", Kind: String},
		{Name: "temp", Kind: Float},
	}}

	// An explicit groupby field becomes a widget even if it is not
	// an index dimension.
	spec, err := Call(c, KindLine, Options{"y": "temp", "groupby": "city"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := names(spec.SliceDims()), []string{"city"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("slice dims %v, want %v", got, want)
	}

	// Grouping by a consumed field is a contradiction.
	_, err = Call(c, KindLine, Options{"y": "temp", "groupby": "temp"})
	var oe *OptionError
	if !errors.As(err, &oe) {
		t.Fatalf("want *OptionError, got %v", err)
	}
}

func TestCallOptionErrors(t *testing.T) {
	tests := []Options{
		{"backlog": -1},
		{"width": 0},
		{"alpha": 1.5},
		{"bins": -3},
		{"legend": "yes"},
		{"width": "wide"},
		{"xlim": []float64{1, 2, 3}},
		{"color": "notacolor"},
	}
	for _, opts := range tests {
		_, err := Call(gridContainer, KindLine, opts)
		var oe *OptionError
		if !errors.As(err, &oe) {
			t.Errorf("Call with %v: want *OptionError, got %v", opts, err)
		}
	}
}

func TestCallColor(t *testing.T) {
	for _, c := range []string{"steelblue", "#a0b1c2", "#fff", "v"} {
		if _, err := Call(gridContainer, KindScatter, Options{"color": c}); err != nil {
			t.Errorf("color %q rejected: %v", c, err)
		}
	}
}

func TestCallPassthrough(t *testing.T) {
	spec, err := Call(gridContainer, KindLine, Options{
		"fontsize": 16,
		"width":    800,
	})
	if err != nil {
		t.Fatal(err)
	}
	pass := spec.Passthrough()
	if pass["fontsize"] != 16 {
		t.Fatalf("passthrough = %v, want fontsize 16", pass)
	}
	if _, ok := pass["width"]; ok {
		t.Fatalf("consumed key leaked into passthrough: %v", pass)
	}
	if spec.Width() != 800 {
		t.Fatalf("width = %d, want 800", spec.Width())
	}
}

func TestSpecImmutable(t *testing.T) {
	spec, err := Call(schemaOnly{weatherSchema}, KindLine, nil)
	if err != nil {
		t.Fatal(err)
	}
	ys := spec.Ys()
	dims := spec.SliceDims()
	pass := spec.Passthrough()
	ys[0] = "clobbered"
	if len(dims) > 0 {
		dims[0].Name = "clobbered"
	}
	pass["clobbered"] = true

	if spec.Ys()[0] == "clobbered" {
		t.Fatal("Ys returned a live reference")
	}
	if len(spec.SliceDims()) > 0 && spec.SliceDims()[0].Name == "clobbered" {
		t.Fatal("SliceDims returned a live reference")
	}
	if _, ok := spec.Passthrough()["clobbered"]; ok {
		t.Fatal("Passthrough returned a live reference")
	}
}

func TestCallGridDefaults(t *testing.T) {
	spec, err := Call(gridContainer, KindHeatmap, nil)
	if err != nil {
		t.Fatal(err)
	}
	if spec.X() != "a" || spec.Y() != "b" || spec.C() != "v" {
		t.Fatalf("heatmap bound x=%q y=%q c=%q, want a, b, v", spec.X(), spec.Y(), spec.C())
	}
	if spec.Cmap() != "viridis" {
		t.Fatalf("heatmap cmap = %q, want viridis", spec.Cmap())
	}

	// Density grids work without a value field.
	pts := schemaOnly{Schema{
		{Name: "lon", Kind: Float},
		{Name: "lat", Kind: Float},
	}}
	if _, err := Call(pts, KindBivariate, nil); err != nil {
		t.Fatalf("bivariate without value field: %v", err)
	}
	if _, err := Call(pts, KindHeatmap, nil); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("heatmap without value field: want ErrSchemaMismatch, got %v", err)
	}
}
