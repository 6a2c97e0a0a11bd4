// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"reflect"
	"testing"
)

var weatherSchema = Schema{
	{Name: "time", Kind: Time, Index: true},
	{Name: "station", Kind: String, Index: true},
	{Name: "temperature", Kind: Float},
	{Name: "humidity", Kind: Float},
	{Name: "note", Kind: String},
}

func names(fs []Field) []string {
	var ns []string
	for _, f := range fs {
		ns = append(ns, f.Name)
	}
	return ns
}

func TestClassify(t *testing.T) {
	tests := []struct {
		consumed  []string
		plotDims  []string
		sliceDims []string
	}{
		// Consuming both index dims leaves no widgets.
		{[]string{"time", "temperature", "station"},
			[]string{"time", "station", "temperature"}, nil},
		// An unconsumed index dim becomes a slice dim.
		{[]string{"time", "temperature"},
			[]string{"time", "temperature"}, []string{"station"}},
		{[]string{"temperature"},
			[]string{"temperature"}, []string{"time", "station"}},
		// Non-index fields never become slice dims.
		{[]string{"time"},
			[]string{"time"}, []string{"station"}},
		{nil, nil, []string{"time", "station"}},
	}
	for _, test := range tests {
		cl := Classify(weatherSchema, test.consumed)
		if got := names(cl.PlotDims); !reflect.DeepEqual(got, test.plotDims) {
			t.Errorf("Classify(%v): plot dims %v, want %v", test.consumed, got, test.plotDims)
		}
		if got := names(cl.SliceDims); !reflect.DeepEqual(got, test.sliceDims) {
			t.Errorf("Classify(%v): slice dims %v, want %v", test.consumed, got, test.sliceDims)
		}
	}
}

func TestClassifyPure(t *testing.T) {
	// The classification must not depend on the order of consumed
	// or on previous calls.
	orders := [][]string{
		{"time", "temperature", "humidity"},
		{"humidity", "time", "temperature"},
		{"temperature", "humidity", "time"},
	}
	want := Classify(weatherSchema, orders[0])
	for i := 0; i < 10; i++ {
		for _, order := range orders {
			got := Classify(weatherSchema, order)
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("Classify(%v) = %v, want %v", order, got, want)
			}
		}
	}
}
