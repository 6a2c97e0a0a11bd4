// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ggsvg

import (
	"bytes"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/quickplot/quickplot/core"
)

var (
	testRed  = color.Color(color.NRGBA{R: 255, A: 255})
	testBlue = color.Color(color.NRGBA{B: 255, A: 255})
)

// legendSpec builds a minimal spec for legend collection.
func legendSpec(t *testing.T, opts core.Options) *core.Spec {
	t.Helper()
	spec, err := core.Call(readings(t), core.KindLine, opts)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	return spec
}

func TestCollectLegend(t *testing.T) {
	spec := legendSpec(t, nil)
	fa := &frame{spec: spec, ser: series{
		col: colSeries, names: []string{"a", "b"},
		colors: []color.Color{testRed, testBlue},
	}}
	fb := &frame{spec: spec, ser: series{
		col: colSeries, names: []string{"a", "c"},
		colors: []color.Color{testRed, testBlue},
	}}

	// Overlaid frames merge, deduplicating by name.
	li := collectLegend([]*frame{fa, fb})
	var names []string
	for _, e := range li.entries {
		names = append(names, e.name)
	}
	if want := "a b c"; strings.Join(names, " ") != want {
		t.Errorf("merged entries should be %q; got %q", want, strings.Join(names, " "))
	}

	// A single unnamed series needs no legend.
	solo := &frame{spec: spec, ser: series{
		col: colSeries, names: []string{"only"},
		colors: []color.Color{testRed},
	}}
	if li := collectLegend([]*frame{solo}); len(li.entries) != 0 {
		t.Errorf("single series should suppress the legend; got %v", li.entries)
	}

	// legend=false drops the frame from collection entirely.
	off := legendSpec(t, core.Options{"legend": false})
	fa.spec = off
	if li := collectLegend([]*frame{fa}); len(li.entries) != 0 || li.width() != 0 {
		t.Errorf("disabled legend should collect nothing; got %+v", li)
	}
}

func TestLegendWidth(t *testing.T) {
	var li legendInfo
	if got := li.width(); got != 0 {
		t.Errorf("empty legend width should be 0; got %d", got)
	}

	li.entries = []legendEntry{{"ab", testRed}}
	if got := li.width(); got != 80 {
		t.Errorf("short-name width should floor at 80; got %d", got)
	}

	li.entries = []legendEntry{{strings.Repeat("x", 40), testRed}}
	if got := li.width(); got != 180 {
		t.Errorf("long-name width should cap at 180; got %d", got)
	}

	m, err := ParseColormap("viridis")
	if err != nil {
		t.Fatal(err)
	}
	if got := (legendInfo{cbar: m}).width(); got != cbarWidth {
		t.Errorf("colorbar width should be %d; got %d", cbarWidth, got)
	}
}

func TestLegendWrite(t *testing.T) {
	li := legendInfo{entries: []legendEntry{{"alpha", testRed}, {"beta", testBlue}}}
	var buf bytes.Buffer
	li.write(&buf, 100, 200)
	out := buf.String()
	for _, want := range []string{">alpha<", ">beta<", "fill:#ff0000", "fill:#0000ff"} {
		if !strings.Contains(out, want) {
			t.Errorf("legend should contain %s:\n%s", want, out)
		}
	}
}

func TestLegendColorbar(t *testing.T) {
	m, err := ParseColormap("viridis")
	if err != nil {
		t.Fatal(err)
	}
	li := legendInfo{cbar: m, cbarName: "count", cbarMin: 0, cbarMax: 10}
	var buf bytes.Buffer
	li.write(&buf, cbarWidth, 200)
	out := buf.String()
	for _, want := range []string{"qpcbar", ">count<", ">0<", ">10<"} {
		if !strings.Contains(out, want) {
			t.Errorf("colorbar should contain %s:\n%s", want, out)
		}
	}
}

func TestCbarLabel(t *testing.T) {
	var li legendInfo
	if got := li.cbarLabel(2.5); got != "2.5" {
		t.Errorf("label should be 2.5; got %q", got)
	}
	li.cbarLog = true
	if got := li.cbarLabel(2); got != "100" {
		t.Errorf("log label should undo the transform; got %q", got)
	}
	if got := li.cbarLabel(math.NaN()); got != "" {
		t.Errorf("NaN label should be empty; got %q", got)
	}
}

func TestCSSColor(t *testing.T) {
	fill, op := cssColor(color.NRGBA{R: 255, A: 255})
	if fill != "#ff0000" || op != 1 {
		t.Errorf("red should be (#ff0000, 1); got (%s, %v)", fill, op)
	}
	fill, op = cssColor(strokeBlack)
	if fill != "#000000" || op != 1 {
		t.Errorf("black should be (#000000, 1); got (%s, %v)", fill, op)
	}
	fill, op = cssColor(nil)
	if fill != "#000000" || op != 1 {
		t.Errorf("nil should be (#000000, 1); got (%s, %v)", fill, op)
	}
	if _, op := cssColor(color.NRGBA{B: 255, A: 51}); op != float64(51)/255 {
		t.Errorf("opacity should be 51/255; got %v", op)
	}
}
