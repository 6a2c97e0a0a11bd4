// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// A Classification splits a schema's fields by how a plot call uses
// them: PlotDims are the consumed fields, SliceDims are the index
// dimensions left over for selection widgets.
type Classification struct {
	PlotDims  []Field
	SliceDims []Field
}

// Classify splits schema by the consumed field names. It is a pure
// function: the result depends only on its arguments, and both result
// slices follow schema order regardless of the order of consumed.
//
// A field becomes a PlotDim if it is named in consumed. An index field
// not named in consumed becomes a SliceDim. Non-index fields that are
// not consumed belong to neither set; they are simply unused.
func Classify(schema Schema, consumed []string) Classification {
	used := make(map[string]bool, len(consumed))
	for _, name := range consumed {
		used[name] = true
	}

	var cl Classification
	for _, f := range schema {
		switch {
		case used[f.Name]:
			cl.PlotDims = append(cl.PlotDims, f)
		case f.Index:
			cl.SliceDims = append(cl.SliceDims, f)
		}
	}
	return cl
}
