// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"reflect"
	"testing"
)

func TestOptionsMerge(t *testing.T) {
	under := Options{"width": 640, "cmap": "viridis"}
	over := Options{"width": 800}

	got := over.Merge(under)
	want := Options{"width": 800, "cmap": "viridis"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge = %v, want %v", got, want)
	}
	// Neither input may change.
	if under["width"] != 640 || len(over) != 1 {
		t.Fatalf("Merge modified its inputs: under=%v over=%v", under, over)
	}
}

func TestOptionsGetters(t *testing.T) {
	o := Options{
		"s":    "hi",
		"ss":   []string{"a", "b"},
		"sany": []any{"a", "b"},
		"i":    3,
		"f":    2.5,
		"fi":   4.0,
		"b":    true,
		"pair": []any{1, 2.5},
	}

	if v, ok, err := o.String("s"); v != "hi" || !ok || err != nil {
		t.Errorf("String(s) = %q, %v, %v", v, ok, err)
	}
	if _, ok, err := o.String("missing"); ok || err != nil {
		t.Errorf("String(missing) = %v, %v; want absent", ok, err)
	}
	if v, _, err := o.Strings("s"); err != nil || !reflect.DeepEqual(v, []string{"hi"}) {
		t.Errorf("Strings(s) = %v, %v", v, err)
	}
	if v, _, err := o.Strings("ss"); err != nil || !reflect.DeepEqual(v, []string{"a", "b"}) {
		t.Errorf("Strings(ss) = %v, %v", v, err)
	}
	if v, _, err := o.Strings("sany"); err != nil || !reflect.DeepEqual(v, []string{"a", "b"}) {
		t.Errorf("Strings(sany) = %v, %v", v, err)
	}
	if v, _, err := o.Int("i"); v != 3 || err != nil {
		t.Errorf("Int(i) = %d, %v", v, err)
	}
	if v, _, err := o.Int("fi"); v != 4 || err != nil {
		t.Errorf("Int(fi) = %d, %v", v, err)
	}
	if _, _, err := o.Int("f"); err == nil {
		t.Error("Int(f) accepted a fractional float")
	}
	if v, _, err := o.Float("i"); v != 3 || err != nil {
		t.Errorf("Float(i) = %g, %v", v, err)
	}
	if v, _, err := o.Bool("b"); !v || err != nil {
		t.Errorf("Bool(b) = %v, %v", v, err)
	}
	if v, _, err := o.FloatPair("pair"); v != [2]float64{1, 2.5} || err != nil {
		t.Errorf("FloatPair(pair) = %v, %v", v, err)
	}
	if _, _, err := o.Bool("s"); err == nil {
		t.Error("Bool(s) accepted a string")
	}
}

func TestOptionsPassthrough(t *testing.T) {
	o := Options{"width": 1, "squiggle": 2}
	p := o.passthrough()
	if !reflect.DeepEqual(p, Options{"squiggle": 2}) {
		t.Fatalf("passthrough = %v", p)
	}
}

func TestKinds(t *testing.T) {
	ks := Kinds()
	if len(ks) != len(kinds) {
		t.Fatalf("Kinds() returned %d kinds, want %d", len(ks), len(kinds))
	}
	for i := 1; i < len(ks); i++ {
		if ks[i-1] >= ks[i] {
			t.Fatalf("Kinds() not sorted: %v", ks)
		}
	}
	if !KindHist.Distribution() || KindLine.Distribution() {
		t.Fatal("Distribution misclassifies kinds")
	}
	if !KindHeatmap.Grid() || KindBox.Grid() {
		t.Fatal("Grid misclassifies kinds")
	}
}
