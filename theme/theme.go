// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package theme loads plot default options from YAML.
//
// A theme file has a global section and a per-kind section:
//
//	global:
//	  width: 800
//	  legend: false
//	kinds:
//	  line:
//	    alpha: 0.9
//	  heatmap:
//	    cmap: plasma
//
// Installed themes sit between built-in defaults and caller options:
// caller options win over per-kind theme defaults, which win over
// global theme defaults, which win over the built-ins.
package theme

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quickplot/quickplot/core"
)

// file is the YAML structure of a theme file.
type file struct {
	Global map[string]any            `yaml:"global"`
	Kinds  map[string]map[string]any `yaml:"kinds"`
}

// Load reads a theme from r.
func Load(r io.Reader) (*core.DefaultSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	return parse(data, "theme")
}

// LoadFile reads a theme file from path.
func LoadFile(path string) (*core.DefaultSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	return parse(data, "theme "+path)
}

// parse decodes a theme document. Sections naming unknown plot kinds
// are skipped with a warning rather than failing the load, so themes
// stay usable across versions with different kind sets.
func parse(data []byte, src string) (*core.DefaultSet, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}

	d := &core.DefaultSet{Global: core.Options(f.Global)}
	for name, opts := range f.Kinds {
		kind, err := core.ParseKind(name)
		if err != nil {
			core.Warning.Printf("%s: unknown plot kind %q (section skipped)", src, name)
			continue
		}
		if d.Kinds == nil {
			d.Kinds = make(map[core.Kind]core.Options)
		}
		d.Kinds[kind] = core.Options(opts)
	}
	return d, nil
}

// Install makes d the process-wide defaults for subsequent plot calls.
// Install(nil) restores the built-in defaults.
func Install(d *core.DefaultSet) {
	core.SetDefaults(d)
}
