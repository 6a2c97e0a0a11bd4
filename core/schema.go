// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"time"
)

// A FieldKind is the broad type class of a schema field. Dispatch only
// needs to distinguish orderable numbers, times, strings, and booleans;
// the precise Go element type stays with the container.
type FieldKind int

const (
	Invalid FieldKind = iota
	String
	Int
	Float
	Bool
	Time
)

var fieldKindNames = [...]string{"invalid", "string", "int", "float", "bool", "time"}

func (k FieldKind) String() string {
	if k < 0 || int(k) >= len(fieldKindNames) {
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
	return fieldKindNames[k]
}

// Numeric reports whether values of kind k can be mapped to a
// continuous axis.
func (k FieldKind) Numeric() bool {
	return k == Int || k == Float || k == Time
}

// A Field describes one dimension of a container: its name, its type
// class, and whether the container treats it as an index dimension.
// Index dimensions that a plot call does not consume become slice
// dimensions.
type Field struct {
	Name  string
	Kind  FieldKind
	Index bool
}

// A Schema is an ordered list of fields. Order matters: defaulting
// rules and dimension classification follow schema order, never map
// order, so identical schemas always produce identical results.
type Schema []Field

// Lookup returns the field named name.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Has reports whether the schema contains a field named name.
func (s Schema) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// IndexFields returns the index fields in schema order.
func (s Schema) IndexFields() []Field {
	var idx []Field
	for _, f := range s {
		if f.Index {
			idx = append(idx, f)
		}
	}
	return idx
}

// NumericFields returns the non-index fields with numeric kinds in
// schema order. These are the default value fields for calls that
// don't name any.
func (s Schema) NumericFields() []Field {
	var num []Field
	for _, f := range s {
		if !f.Index && f.Kind.Numeric() {
			num = append(num, f)
		}
	}
	return num
}

// A Container is a data object that plot calls can dispatch on.
// Dispatch reads only the schema; it never touches the data.
type Container interface {
	Schema() Schema
}

// Tabular is implemented by containers that can expose their data as
// long-form columns. Column returns a slice ([]float64, []int,
// []string, []bool, or []time.Time) with one element per row.
// Rendering backends consume this view; dispatch does not.
type Tabular interface {
	Container
	Len() int
	Column(name string) (any, error)
}

// Slicer is implemented by containers that can restrict themselves to
// the rows where field equals value. The returned container drops
// field from its schema; the receiver is not modified. Widget
// generation uses this to build one frame per slice-dimension value.
type Slicer interface {
	Container
	Slice(field string, value any) (Container, error)
}

// Values returns the distinct values of the named column of c in first-
// appearance order. It is a convenience for widget generation and
// backends; the column must exist.
func Values(c Tabular, field string) ([]any, error) {
	col, err := c.Column(field)
	if err != nil {
		return nil, err
	}
	var vals []any
	seen := make(map[any]bool)
	switch col := col.(type) {
	case []float64:
		for _, v := range col {
			if !seen[v] {
				seen[v] = true
				vals = append(vals, v)
			}
		}
	case []int:
		for _, v := range col {
			if !seen[v] {
				seen[v] = true
				vals = append(vals, v)
			}
		}
	case []string:
		for _, v := range col {
			if !seen[v] {
				seen[v] = true
				vals = append(vals, v)
			}
		}
	case []bool:
		for _, v := range col {
			if !seen[v] {
				seen[v] = true
				vals = append(vals, v)
			}
		}
	case []time.Time:
		for _, v := range col {
			if !seen[v] {
				seen[v] = true
				vals = append(vals, v)
			}
		}
	default:
		return nil, fmt.Errorf("quickplot: cannot enumerate column %q of type %T", field, col)
	}
	return vals, nil
}
