// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/colornames"
)

// A DefaultSet is a layer of option defaults, typically loaded from a
// theme file. Caller options win over Kinds options, which win over
// Global options, which win over the built-in defaults.
type DefaultSet struct {
	Global Options
	Kinds  map[Kind]Options
}

var defaultsMu sync.RWMutex
var themeDefaults *DefaultSet

// SetDefaults installs ds as the process-wide theme defaults. Passing
// nil restores the built-in defaults. Installation is cheap; the set
// is consulted on every Call.
func SetDefaults(ds *DefaultSet) {
	defaultsMu.Lock()
	themeDefaults = ds
	defaultsMu.Unlock()
}

// mergedOptions builds the effective option set for kind under the
// caller's opts.
func mergedOptions(kind Kind, opts Options) Options {
	merged := globalDefaults.Clone()
	for k, v := range kinds[kind].defaults {
		merged[k] = v
	}

	defaultsMu.RLock()
	ds := themeDefaults
	defaultsMu.RUnlock()
	if ds != nil {
		for k, v := range ds.Global {
			merged[k] = v
		}
		for k, v := range ds.Kinds[kind] {
			merged[k] = v
		}
	}

	return opts.Merge(merged)
}

// Call dispatches a plot call: it validates kind against the fixed
// kind set, merges opts over the kind's defaults, resolves the field
// bindings against c's schema, and classifies the leftover index
// dimensions as slice dimensions. It returns the normalized Spec.
//
// Call is side-effect-free: it does not touch c's data and does not
// render. Errors are ErrUnsupportedKind, ErrSchemaMismatch wrapped
// with the offending field, or *OptionError.
func Call(c Container, kind Kind, opts Options) (*Spec, error) {
	info, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedKind, kind, Kinds())
	}
	schema := c.Schema()
	merged := mergedOptions(kind, opts)

	s := &Spec{kind: kind, pass: merged.passthrough()}
	var err error

	if s.backend, _, err = merged.String(OptBackend); err != nil {
		return nil, err
	}
	if s.backend == "" {
		s.backend = "gg"
	}

	// Field bindings.
	x, _, err := merged.String(OptX)
	if err != nil {
		return nil, err
	}
	ys, _, err := merged.Strings(OptY)
	if err != nil {
		return nil, err
	}
	cfield, _, err := merged.String(OptC)
	if err != nil {
		return nil, err
	}
	if s.by, _, err = merged.Strings(OptBy); err != nil {
		return nil, err
	}
	if s.row, _, err = merged.String(OptRow); err != nil {
		return nil, err
	}
	if s.col, _, err = merged.String(OptCol); err != nil {
		return nil, err
	}
	groupby, _, err := merged.Strings(OptGroupBy)
	if err != nil {
		return nil, err
	}

	for _, f := range fieldRefs(x, ys, cfield, s.by, s.row, s.col, groupby) {
		if !schema.Has(f) {
			return nil, fmt.Errorf("%w: %q (have %s)", ErrSchemaMismatch, f, strings.Join(schema.Names(), ", "))
		}
	}

	s.c = cfield
	switch info.shape {
	case shapeXY:
		s.x, s.ys, err = resolveXY(schema, x, ys)
	case shapeDist:
		s.ys, err = resolveDist(schema, x, ys)
	case shapeGrid:
		var gy string
		s.x, gy, s.c, err = resolveGrid(schema, kind, x, ys, cfield)
		if gy != "" {
			s.ys = []string{gy}
		}
	case shapeAll:
		// Whole-table kinds display columns rather than binding
		// axes; y selects a subset.
		if len(ys) > 0 {
			s.ys = ys
		} else {
			s.ys = schema.Names()
		}
	}
	if err != nil {
		return nil, err
	}

	// Style options.
	if s.width, _, err = merged.Int(OptWidth); err != nil {
		return nil, err
	}
	if s.height, _, err = merged.Int(OptHeight); err != nil {
		return nil, err
	}
	if s.width <= 0 {
		return nil, &OptionError{OptWidth, "positive size", merged[OptWidth]}
	}
	if s.height <= 0 {
		return nil, &OptionError{OptHeight, "positive size", merged[OptHeight]}
	}
	if s.title, _, err = merged.String(OptTitle); err != nil {
		return nil, err
	}
	if s.xlabel, _, err = merged.String(OptXLabel); err != nil {
		return nil, err
	}
	if s.ylabel, _, err = merged.String(OptYLabel); err != nil {
		return nil, err
	}
	if s.color, _, err = merged.String(OptColor); err != nil {
		return nil, err
	}
	if s.color != "" && !schema.Has(s.color) && !ValidColor(s.color) {
		return nil, &OptionError{OptColor, "field name or color", s.color}
	}
	if s.cmap, _, err = merged.String(OptCmap); err != nil {
		return nil, err
	}
	if s.groupLabel, _, err = merged.String(OptGroupLabel); err != nil {
		return nil, err
	}
	if s.valueLabel, _, err = merged.String(OptValueLabel); err != nil {
		return nil, err
	}
	if s.projection, _, err = merged.String(OptProjection); err != nil {
		return nil, err
	}
	if s.legend, _, err = merged.Bool(OptLegend); err != nil {
		return nil, err
	}
	if s.dynamic, _, err = merged.Bool(OptDynamic); err != nil {
		return nil, err
	}
	if s.rasterize, _, err = merged.Bool(OptRasterize); err != nil {
		return nil, err
	}
	if s.invert, _, err = merged.Bool(OptInvert); err != nil {
		return nil, err
	}
	if s.logx, _, err = merged.Bool(OptLogX); err != nil {
		return nil, err
	}
	if s.logy, _, err = merged.Bool(OptLogY); err != nil {
		return nil, err
	}
	if s.stacked, _, err = merged.Bool(OptStacked); err != nil {
		return nil, err
	}
	if s.globalExtent, _, err = merged.Bool(OptGlobal); err != nil {
		return nil, err
	}
	if s.alpha, _, err = merged.Float(OptAlpha); err != nil {
		return nil, err
	}
	if s.alpha < 0 || s.alpha > 1 {
		return nil, &OptionError{OptAlpha, "value in [0, 1]", merged[OptAlpha]}
	}
	if s.size, _, err = merged.Float(OptSize); err != nil {
		return nil, err
	}
	if s.bandwidth, _, err = merged.Float(OptBandwidth); err != nil {
		return nil, err
	}
	if s.bins, _, err = merged.Int(OptBins); err != nil {
		return nil, err
	}
	if s.bins < 0 {
		return nil, &OptionError{OptBins, "non-negative count", merged[OptBins]}
	}
	if s.levels, _, err = merged.Int(OptLevels); err != nil {
		return nil, err
	}
	if s.backlog, _, err = merged.Int(OptBacklog); err != nil {
		return nil, err
	}
	if s.backlog < 0 {
		return nil, &OptionError{OptBacklog, "non-negative count", merged[OptBacklog]}
	}
	if s.xlim, s.xlimSet, err = merged.FloatPair(OptXLim); err != nil {
		return nil, err
	}
	if s.ylim, s.ylimSet, err = merged.FloatPair(OptYLim); err != nil {
		return nil, err
	}

	// Classify leftover dimensions.
	consumed := s.Consumed()
	cl := Classify(schema, consumed)
	isConsumed := make(map[string]bool, len(consumed))
	for _, f := range consumed {
		isConsumed[f] = true
	}
	wantWidget := make(map[string]bool, len(groupby))
	for _, f := range groupby {
		if isConsumed[f] {
			return nil, &OptionError{OptGroupBy, "unconsumed field", f}
		}
		wantWidget[f] = true
	}
	for _, f := range cl.SliceDims {
		wantWidget[f.Name] = true
	}
	for _, f := range schema {
		if wantWidget[f.Name] {
			s.sliceDims = append(s.sliceDims, f)
		}
	}

	return s, nil
}

// fieldRefs collects every explicitly named field for schema
// validation.
func fieldRefs(x string, ys []string, c string, by []string, row, col string, groupby []string) []string {
	var refs []string
	add := func(f string) {
		if f != "" {
			refs = append(refs, f)
		}
	}
	add(x)
	for _, y := range ys {
		add(y)
	}
	add(c)
	for _, b := range by {
		add(b)
	}
	add(row)
	add(col)
	for _, g := range groupby {
		add(g)
	}
	return refs
}

// resolveXY applies the defaulting rules for x/y kinds: x defaults to
// the first index field (or "" meaning row order when the container
// has none), and the value fields default to every numeric non-index
// field except x.
func resolveXY(schema Schema, x string, ys []string) (string, []string, error) {
	if x == "" {
		if idx := schema.IndexFields(); len(idx) > 0 {
			x = idx[0].Name
		}
	}
	if len(ys) == 0 {
		for _, f := range schema.NumericFields() {
			if f.Name != x {
				ys = append(ys, f.Name)
			}
		}
	}
	if len(ys) == 0 {
		return "", nil, fmt.Errorf("%w: no numeric value fields", ErrSchemaMismatch)
	}
	return x, ys, nil
}

// resolveDist applies the defaulting rules for distribution kinds:
// the value fields come from y, from x as a convenience, or from every
// numeric non-index field.
func resolveDist(schema Schema, x string, ys []string) ([]string, error) {
	if len(ys) == 0 && x != "" {
		ys = []string{x}
	}
	if len(ys) == 0 {
		for _, f := range schema.NumericFields() {
			ys = append(ys, f.Name)
		}
	}
	if len(ys) == 0 {
		return nil, fmt.Errorf("%w: no numeric value fields", ErrSchemaMismatch)
	}
	return ys, nil
}

// resolveGrid applies the defaulting rules for grid kinds: x and y
// default to the first two index fields (or the first two fields), and
// the cell value defaults to the first numeric field not bound to an
// axis. Density kinds (hexbin, bivariate) don't need a cell value.
func resolveGrid(schema Schema, kind Kind, x string, ys []string, c string) (string, string, string, error) {
	y := ""
	if len(ys) > 0 {
		y = ys[0]
	}
	defaults := schema.IndexFields()
	if len(defaults) < 2 {
		defaults = schema
	}
	if x == "" && len(defaults) > 0 {
		x = defaults[0].Name
	}
	if y == "" && len(defaults) > 1 {
		y = defaults[1].Name
	}
	if x == "" || y == "" || x == y {
		return "", "", "", fmt.Errorf("%w: %s needs distinct x and y fields", ErrSchemaMismatch, kind)
	}
	if c == "" {
		for _, f := range schema {
			if f.Name != x && f.Name != y && f.Kind.Numeric() && !f.Index {
				c = f.Name
				break
			}
		}
	}
	if c == "" && kind != KindHexbin && kind != KindBivariate {
		return "", "", "", fmt.Errorf("%w: %s needs a value field", ErrSchemaMismatch, kind)
	}
	return x, y, c, nil
}

// ValidColor reports whether s is a recognized literal color: an SVG
// 1.1 color name or a #rgb/#rrggbb hex form.
func ValidColor(s string) bool {
	if _, ok := colornames.Map[strings.ToLower(s)]; ok {
		return true
	}
	if len(s) != 4 && len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case '0' <= r && r <= '9', 'a' <= r && r <= 'f', 'A' <= r && r <= 'F':
		default:
			return false
		}
	}
	return true
}
