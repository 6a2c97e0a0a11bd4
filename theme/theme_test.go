// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package theme

import (
	"strings"
	"testing"

	"github.com/quickplot/quickplot/core"
)

const sample = `
global:
  width: 800
  legend: false
kinds:
  line:
    alpha: 0.9
  heatmap:
    cmap: plasma
`

func TestLoad(t *testing.T) {
	d, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := d.Global["width"]; got != 800 {
		t.Errorf("global width = %v (%T), want 800", got, got)
	}
	if got := d.Global["legend"]; got != false {
		t.Errorf("global legend = %v, want false", got)
	}
	if got := d.Kinds[core.KindLine]["alpha"]; got != 0.9 {
		t.Errorf("line alpha = %v (%T), want 0.9", got, got)
	}
	if got := d.Kinds[core.KindHeatmap]["cmap"]; got != "plasma" {
		t.Errorf("heatmap cmap = %v, want plasma", got)
	}
}

func TestLoadUnknownKind(t *testing.T) {
	const in = `
kinds:
  line:
    alpha: 0.5
  sankey:
    width: 10
`
	d, err := Load(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := d.Kinds[core.KindLine]; !ok {
		t.Error("known kind section missing")
	}
	if len(d.Kinds) != 1 {
		t.Errorf("got %d kind sections, want 1 (unknown kind must be skipped)", len(d.Kinds))
	}
}

func TestLoadBadYAML(t *testing.T) {
	if _, err := Load(strings.NewReader("kinds: [not, a, map]")); err == nil {
		t.Fatal("Load of malformed theme succeeded")
	}
}

func TestInstall(t *testing.T) {
	defer Install(nil)

	d, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	Install(d)

	c := container{}
	spec, err := core.Call(c, core.KindLine, nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if spec.Width() != 800 {
		t.Errorf("theme width not applied: got %d, want 800", spec.Width())
	}
	if spec.Alpha() != 0.9 {
		t.Errorf("per-kind alpha not applied: got %v, want 0.9", spec.Alpha())
	}
	if spec.Legend() {
		t.Error("theme legend=false not applied")
	}

	// Caller options still win over the theme.
	spec, err = core.Call(c, core.KindLine, core.Options{"width": 1024})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if spec.Width() != 1024 {
		t.Errorf("caller width overridden by theme: got %d", spec.Width())
	}

	// Other kinds see the global section but not line's.
	spec, err = core.Call(c, core.KindScatter, nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if spec.Width() != 800 {
		t.Errorf("global width not applied to scatter: got %d", spec.Width())
	}
	if spec.Alpha() == 0.9 {
		t.Error("line section leaked into scatter")
	}
}

type container struct{}

func (container) Schema() core.Schema {
	return core.Schema{
		{Name: "t", Kind: core.Time, Index: true},
		{Name: "v", Kind: core.Float},
	}
}
