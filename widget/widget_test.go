// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package widget

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aclements/go-gg/table"
	"github.com/quickplot/quickplot/container/ggtable"
	"github.com/quickplot/quickplot/core"
	_ "github.com/quickplot/quickplot/render/ggsvg"
)

// sensors has two index dimensions beyond the x axis, so a plot of
// value over time leaves station and depth as slice dimensions.
func sensors(t *testing.T) *ggtable.Frame {
	t.Helper()
	var (
		tt, depth, val []float64
		station        []string
	)
	for _, s := range []string{"north", "south"} {
		for _, d := range []float64{5, 10, 20} {
			for x := 0; x < 4; x++ {
				tt = append(tt, float64(x))
				station = append(station, s)
				depth = append(depth, d)
				val = append(val, d+float64(x))
			}
		}
	}
	tab := new(table.Builder).
		Add("t", tt).Add("station", station).Add("depth", depth).Add("val", val).
		Done()
	f, err := ggtable.New(tab, "t", "station", "depth")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func sensorSpec(t *testing.T) (*core.Spec, *ggtable.Frame) {
	t.Helper()
	f := sensors(t)
	spec, err := core.Call(f, core.KindLine, core.Options{"x": "t", "y": "val"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	return spec, f
}

func TestControls(t *testing.T) {
	spec, f := sensorSpec(t)
	controls, err := Controls(spec, f)
	if err != nil {
		t.Fatalf("Controls: %v", err)
	}
	if len(controls) != 2 {
		t.Fatalf("got %d controls, want 2 (station, depth)", len(controls))
	}
	if controls[0].Field.Name != "station" || controls[0].Kind != Select {
		t.Errorf("control 0 = %s %s, want station select", controls[0].Field.Name, controls[0].Kind)
	}
	if controls[1].Field.Name != "depth" || controls[1].Kind != Slider {
		t.Errorf("control 1 = %s %s, want depth slider", controls[1].Field.Name, controls[1].Kind)
	}
	if got, want := strings.Join(controls[1].Labels(), ","), "5,10,20"; got != want {
		t.Errorf("depth labels = %q, want %q", got, want)
	}
}

func TestControlsNone(t *testing.T) {
	f := sensors(t)
	spec, err := core.Call(f, core.KindLine, core.Options{
		"x": "t", "y": "val", "by": "station", "row": "depth",
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	controls, err := Controls(spec, f)
	if err != nil {
		t.Fatalf("Controls: %v", err)
	}
	if len(controls) != 0 {
		t.Fatalf("got %d controls, want 0 when every index dim is consumed", len(controls))
	}
}

func TestFrames(t *testing.T) {
	spec, f := sensorSpec(t)
	controls, err := Controls(spec, f)
	if err != nil {
		t.Fatalf("Controls: %v", err)
	}
	frames, err := Frames(spec, f, controls)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if len(frames) != 6 {
		t.Fatalf("got %d frames, want 2 stations x 3 depths = 6", len(frames))
	}
	if frames[0].Key != "north|5" {
		t.Errorf("first frame key = %q, want %q", frames[0].Key, "north|5")
	}
	seen := make(map[string]bool)
	for _, fr := range frames {
		if seen[fr.Key] {
			t.Errorf("duplicate frame key %q", fr.Key)
		}
		seen[fr.Key] = true
		if !bytes.Contains(fr.SVG, []byte("<svg")) {
			t.Errorf("frame %q is not an SVG document", fr.Key)
		}
	}
}

func TestFrameKey(t *testing.T) {
	got := FrameKey([]any{"north", 5.0, true})
	if want := "north|5|true"; got != want {
		t.Errorf("FrameKey = %q, want %q", got, want)
	}
}

func TestWritePage(t *testing.T) {
	spec, f := sensorSpec(t)
	var buf bytes.Buffer
	if err := WritePage(&buf, spec, f, "sensors"); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<title>sensors</title>",
		">station</label>",
		">depth</label>",
		`type="range"`,
		"data-qp-key",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page lacks %q", want)
		}
	}
	if got := strings.Count(out, `class="qp-frame"`); got != 6 {
		t.Errorf("page embeds %d frames, want 6", got)
	}
}
