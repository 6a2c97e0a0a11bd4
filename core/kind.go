// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"sort"
)

// A Kind names a plot type. The set of kinds is fixed: an unknown kind
// is an error, never a fallback to some other kind.
type Kind string

const (
	KindLine      Kind = "line"
	KindScatter   Kind = "scatter"
	KindArea      Kind = "area"
	KindStep      Kind = "step"
	KindBar       Kind = "bar"
	KindBarh      Kind = "barh"
	KindHist      Kind = "hist"
	KindKDE       Kind = "kde"
	KindBox       Kind = "box"
	KindViolin    Kind = "violin"
	KindHeatmap   Kind = "heatmap"
	KindHexbin    Kind = "hexbin"
	KindBivariate Kind = "bivariate"
	KindErrorbars Kind = "errorbars"
	KindLabels    Kind = "labels"
	KindPoints    Kind = "points"
	KindImage     Kind = "image"
	KindQuadmesh  Kind = "quadmesh"
	KindContour   Kind = "contour"
	KindTable     Kind = "table"
)

// kindShape describes how a kind consumes fields.
type kindShape int

const (
	// shapeXY kinds map one field to x and one or more to y.
	shapeXY kindShape = iota

	// shapeDist kinds reduce one or more value fields to a
	// distribution; they have no caller-visible x.
	shapeDist

	// shapeGrid kinds map two fields to x and y and an optional
	// third to the cell value.
	shapeGrid

	// shapeAll kinds consume the whole table.
	shapeAll
)

type kindInfo struct {
	shape    kindShape
	defaults Options
}

// kinds is the complete kind table. The per-kind defaults sit at the
// bottom of the option merge: built-ins, then theme, then caller.
var kinds = map[Kind]kindInfo{
	KindLine:      {shapeXY, nil},
	KindScatter:   {shapeXY, Options{"size": 4.0}},
	KindArea:      {shapeXY, Options{"alpha": 0.7, "stacked": true}},
	KindStep:      {shapeXY, nil},
	KindBar:       {shapeXY, nil},
	KindBarh:      {shapeXY, nil},
	KindHist:      {shapeDist, Options{"bins": 20, "alpha": 0.8}},
	KindKDE:       {shapeDist, Options{"alpha": 0.7}},
	KindBox:       {shapeDist, nil},
	KindViolin:    {shapeDist, nil},
	KindHeatmap:   {shapeGrid, Options{"cmap": "viridis"}},
	KindHexbin:    {shapeGrid, Options{"cmap": "viridis", "bins": 20}},
	KindBivariate: {shapeGrid, Options{"cmap": "viridis", "bins": 40}},
	KindErrorbars: {shapeXY, nil},
	KindLabels:    {shapeXY, nil},
	KindPoints:    {shapeXY, Options{"size": 4.0}},
	KindImage:     {shapeGrid, Options{"cmap": "viridis"}},
	KindQuadmesh:  {shapeGrid, Options{"cmap": "viridis"}},
	KindContour:   {shapeGrid, Options{"levels": 7}},
	KindTable:     {shapeAll, nil},
}

// globalDefaults sit below the per-kind defaults in the merge.
var globalDefaults = Options{
	"width":       640,
	"height":      400,
	"legend":      true,
	"alpha":       1.0,
	"group_label": "Variable",
	"value_label": "value",
}

// ParseKind converts a kind name to a Kind. It returns
// ErrUnsupportedKind for names outside the fixed kind set.
func ParseKind(name string) (Kind, error) {
	k := Kind(name)
	if _, ok := kinds[k]; !ok {
		return "", fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedKind, name, Kinds())
	}
	return k, nil
}

// Kinds returns all supported kinds in name order.
func Kinds() []Kind {
	ks := make([]Kind, 0, len(kinds))
	for k := range kinds {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })
	return ks
}

func (k Kind) String() string { return string(k) }

// Distribution reports whether k reduces value fields to a
// distribution (hist, kde, box, violin) rather than mapping them
// against an x field.
func (k Kind) Distribution() bool {
	return kinds[k].shape == shapeDist
}

// Grid reports whether k draws a two-dimensional field (heatmap,
// hexbin, bivariate, image, quadmesh, contour).
func (k Kind) Grid() bool {
	return kinds[k].shape == shapeGrid
}
