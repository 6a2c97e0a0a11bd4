// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gplot

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aclements/go-gg/table"
	"github.com/quickplot/quickplot/container/ggtable"
	"github.com/quickplot/quickplot/core"
	"github.com/quickplot/quickplot/render"
)

// trips is a long-form fixture with a grouping column.
func trips(t *testing.T) *ggtable.Frame {
	t.Helper()
	tab := new(table.Builder).
		Add("day", []float64{0, 1, 2, 3, 0, 1, 2, 3}).
		Add("count", []float64{10, 12, 9, 14, 4, 5, 3, 6}).
		Add("mode", []string{"bike", "bike", "bike", "bike", "walk", "walk", "walk", "walk"}).
		Done()
	f, err := ggtable.New(tab, "day")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

// terrain is a melted 3x3 grid fixture.
func terrain(t *testing.T) *ggtable.Frame {
	t.Helper()
	var gx, gy, v []float64
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			gx = append(gx, float64(i))
			gy = append(gy, float64(j))
			v = append(v, float64(i*j))
		}
	}
	tab := new(table.Builder).Add("gx", gx).Add("gy", gy).Add("v", v).Done()
	f, err := ggtable.New(tab, "gx", "gy")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

// renderKind dispatches one call with backend=gonum and renders it.
func renderKind(t *testing.T, c core.Container, kind core.Kind, opts core.Options) string {
	t.Helper()
	if opts == nil {
		opts = core.Options{}
	}
	opts["backend"] = "gonum"
	spec, err := core.Call(c, kind, opts)
	if err != nil {
		t.Fatalf("Call(%s): %v", kind, err)
	}
	var buf bytes.Buffer
	if err := (&Renderer{}).RenderSVG(&buf, []render.Frame{{Spec: spec, Data: c}}); err != nil {
		t.Fatalf("RenderSVG(%s): %v", kind, err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Fatalf("%s output has no <svg> root: %.120q", kind, out)
	}
	return out
}

func TestSupportedKinds(t *testing.T) {
	f := trips(t)
	for _, kind := range []core.Kind{
		core.KindLine, core.KindStep, core.KindArea,
		core.KindScatter, core.KindPoints,
		core.KindBar, core.KindBarh,
		core.KindHist, core.KindBox,
	} {
		renderKind(t, f, kind, core.Options{"by": "mode"})
	}
	for _, kind := range []core.Kind{
		core.KindHeatmap, core.KindImage, core.KindQuadmesh, core.KindContour,
	} {
		renderKind(t, terrain(t), kind, nil)
	}
}

func TestUnsupportedKind(t *testing.T) {
	f := trips(t)
	spec, err := core.Call(f, core.KindViolin, core.Options{"backend": "gonum"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	var buf bytes.Buffer
	err = (&Renderer{}).RenderSVG(&buf, []render.Frame{{Spec: spec, Data: f}})
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("RenderSVG(violin) = %v, want unsupported-kind error", err)
	}
}

func TestTitleAndLabels(t *testing.T) {
	out := renderKind(t, trips(t), core.KindLine, core.Options{
		"title": "Daily trips", "xlabel": "Day", "ylabel": "Trips",
	})
	for _, want := range []string{"Daily trips", "Day", "Trips"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q", want)
		}
	}
}

func TestLegendNames(t *testing.T) {
	out := renderKind(t, trips(t), core.KindLine, core.Options{"by": "mode"})
	for _, want := range []string{"bike", "walk"} {
		if !strings.Contains(out, want) {
			t.Errorf("legend lacks group %q", want)
		}
	}
}

func TestWritePNG(t *testing.T) {
	f := trips(t)
	spec, err := core.Call(f, core.KindScatter, core.Options{"backend": "gonum"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	var buf bytes.Buffer
	if err := WritePNG(&buf, render.NewPlot(spec, f)); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG (starts %q)", buf.Bytes()[:8])
	}
}

// Rendering the same spec twice must produce identical documents: the
// handoff carries no hidden randomness.
func TestDeterministic(t *testing.T) {
	f := trips(t)
	spec, err := core.Call(f, core.KindLine, core.Options{"backend": "gonum", "by": "mode"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	var a, b bytes.Buffer
	r := new(Renderer)
	if err := r.RenderSVG(&a, []render.Frame{{Spec: spec, Data: f}}); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if err := r.RenderSVG(&b, []render.Frame{{Spec: spec, Data: f}}); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if a.String() != b.String() {
		t.Fatalf("two renders of the same spec differ")
	}
}
