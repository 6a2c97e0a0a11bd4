// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quickplot/quickplot/core"
)

func TestParseValue(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"false", false},
		{"20", 20},
		{"0.5", 0.5},
		{"viridis", "viridis"},
		{"1e3", 1000.0},
	}
	for _, c := range cases {
		if got := parseValue(c.in); got != c.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v (%T)", c.in, got, got, c.want, c.want)
		}
	}
}

func TestCommonFlagsOptions(t *testing.T) {
	c := commonFlags{
		kind: "scatter",
		x:    "day",
		y:    "temp,rain",
		by:   "city",
		opts: "alpha=0.5,legend=false,cmap=plasma",
	}
	kind, opts, err := c.options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if kind != core.KindScatter {
		t.Errorf("kind = %s", kind)
	}
	if opts["x"] != "day" {
		t.Errorf("x = %v", opts["x"])
	}
	ys, ok := opts["y"].([]string)
	if !ok || len(ys) != 2 || ys[0] != "temp" || ys[1] != "rain" {
		t.Errorf("y = %v", opts["y"])
	}
	if opts["alpha"] != 0.5 || opts["legend"] != false || opts["cmap"] != "plasma" {
		t.Errorf("opts = %v", opts)
	}

	c.kind = "not_a_plot"
	if _, _, err := c.options(); err == nil {
		t.Error("options accepted an unknown kind")
	}

	c.kind = "line"
	c.opts = "broken"
	if _, _, err := c.options(); err == nil {
		t.Error("options accepted a malformed -opts entry")
	}
}

func TestNdjsonRow(t *testing.T) {
	row, ok := ndjsonRow(`{"t": 1.5, "name": "a", "up": true}`)
	if !ok {
		t.Fatal("ndjsonRow rejected a valid object")
	}
	if row["t"] != 1.5 || row["name"] != "a" || row["up"] != true {
		t.Fatalf("row = %v", row)
	}
	for _, bad := range []string{"", "   ", "[1]", "{oops"} {
		if _, ok := ndjsonRow(bad); ok {
			t.Errorf("ndjsonRow(%q) accepted, want skip", bad)
		}
	}
}

func TestReadNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.ndjson")
	content := `{"t": 0, "v": 1, "site": "a"}
{"t": 1, "v": 2, "site": "b"}

{"t": 2, "v": 3, "site": "a"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	buf, err := readNDJSON(path, []string{"t"})
	if err != nil {
		t.Fatalf("readNDJSON: %v", err)
	}
	if buf.Len() != 3 {
		t.Fatalf("Len = %d, want 3", buf.Len())
	}
	f, ok := buf.Schema().Lookup("t")
	if !ok || !f.Index {
		t.Fatalf("t field = %+v, want an index dimension", f)
	}

	if _, err := readNDJSON(path, []string{"nope"}); err == nil {
		t.Fatal("readNDJSON accepted an unknown index field")
	}
}

func TestLoadContainerCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("day,temp\n0,14\n1,15\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := loadContainer(path, []string{"day"})
	if err != nil {
		t.Fatalf("loadContainer: %v", err)
	}
	schema := data.Schema()
	if len(schema) != 2 || !schema[0].Index {
		t.Fatalf("schema = %v", schema)
	}
}
