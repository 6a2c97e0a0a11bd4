// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ggtable adapts go-gg tables to the quickplot container
// interfaces.
//
// A go-gg Table is already long-form columnar data, so the adaptation
// is thin: a Frame pairs a Table with the set of columns the caller
// declares as index dimensions. Index columns drive axis defaulting
// and, when a plot call leaves them unbound, widget generation.
//
// Importing this package registers an adapter for bare *table.Table
// values, which get a Frame with no index columns.
package ggtable

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/aclements/go-gg/table"
	"github.com/quickplot/quickplot/accessor"
	"github.com/quickplot/quickplot/core"
)

// A Frame is a go-gg table plus declared index columns. It implements
// core.Tabular and core.Slicer. The zero Frame is empty; use New.
type Frame struct {
	tab    *table.Table
	index  map[string]bool
	schema core.Schema
}

// New wraps tab in a Frame. index names the columns to treat as index
// dimensions; they must exist in tab. New fails if tab has a column
// whose element type has no schema kind (a struct column, say).
func New(tab *table.Table, index ...string) (*Frame, error) {
	idx := make(map[string]bool, len(index))
	for _, name := range index {
		if tab.Column(name) == nil {
			return nil, fmt.Errorf("%w: index column %q", core.ErrSchemaMismatch, name)
		}
		idx[name] = true
	}
	f := &Frame{tab: tab, index: idx}
	for _, name := range tab.Columns() {
		kind := fieldKind(reflect.TypeOf(tab.Column(name)))
		if kind == core.Invalid {
			return nil, fmt.Errorf("ggtable: column %q has unsupported type %T", name, tab.Column(name))
		}
		f.schema = append(f.schema, core.Field{Name: name, Kind: kind, Index: idx[name]})
	}
	return f, nil
}

// ReadCSV reads CSV data with a header row into a Frame. Columns whose
// values all parse as numbers become numeric columns; everything else
// stays a string column. index names the columns to declare as index
// dimensions.
func ReadCSV(r io.Reader, index ...string) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ggtable: reading CSV: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("ggtable: empty CSV input")
	}
	return New(table.TableFromStrings(recs[0], recs[1:], true), index...)
}

// ReadCSVFile reads the named CSV file into a Frame.
func ReadCSVFile(path string, index ...string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	f, err := ReadCSV(file, index...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Table returns the underlying go-gg table. Callers must not modify
// its columns.
func (f *Frame) Table() *table.Table { return f.tab }

// Schema implements core.Container.
func (f *Frame) Schema() core.Schema { return f.schema }

// Len implements core.Tabular.
func (f *Frame) Len() int {
	if f.tab == nil {
		return 0
	}
	return f.tab.Len()
}

// Column implements core.Tabular. Columns are returned in canonical
// form: numeric element types other than int and float64 (uints,
// sized ints, float32, time.Duration) are converted to []float64.
// The caller must not modify the result.
func (f *Frame) Column(name string) (any, error) {
	if f.tab == nil || f.tab.Column(name) == nil {
		return nil, fmt.Errorf("%w: %q", core.ErrSchemaMismatch, name)
	}
	return canonical(f.tab.Column(name)), nil
}

// Slice implements core.Slicer. It returns a Frame restricted to the
// rows where field equals value, with field dropped from the schema.
func (f *Frame) Slice(field string, value any) (core.Container, error) {
	col, err := f.Column(field)
	if err != nil {
		return nil, err
	}
	keep := make([]bool, f.Len())
	cv := reflect.ValueOf(col)
	for i := range keep {
		keep[i] = valueEqual(cv.Index(i).Interface(), value)
	}

	b := new(table.Builder)
	for _, name := range f.tab.Columns() {
		if name == field {
			continue
		}
		b.Add(name, filterSlice(f.tab.Column(name), keep))
	}
	var index []string
	for name := range f.index {
		if name != field {
			index = append(index, name)
		}
	}
	return New(b.Done(), index...)
}

func (f *Frame) String() string {
	var b strings.Builder
	table.Fprint(&b, f.tab)
	return b.String()
}

// fieldKind maps a column's slice type to its schema kind.
func fieldKind(t reflect.Type) core.FieldKind {
	if t == nil || t.Kind() != reflect.Slice {
		return core.Invalid
	}
	elem := t.Elem()
	if elem == reflect.TypeOf(time.Time{}) {
		return core.Time
	}
	switch elem.Kind() {
	case reflect.String:
		return core.String
	case reflect.Bool:
		return core.Bool
	case reflect.Int:
		return core.Int
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return core.Float
	}
	return core.Invalid
}

// canonical converts a column to one of the canonical slice types.
// []float64, []int, []string, []bool, and []time.Time pass through;
// other numeric slices are converted to []float64.
func canonical(col any) any {
	switch col.(type) {
	case []float64, []int, []string, []bool, []time.Time:
		return col
	}
	cv := reflect.ValueOf(col)
	out := make([]float64, cv.Len())
	for i := range out {
		ev := cv.Index(i)
		switch ev.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out[i] = float64(ev.Uint())
		case reflect.Float32, reflect.Float64:
			out[i] = ev.Float()
		default:
			out[i] = float64(ev.Int())
		}
	}
	return out
}

// filterSlice returns the elements of col (any slice type) where keep
// is true, preserving the element type.
func filterSlice(col any, keep []bool) any {
	cv := reflect.ValueOf(col)
	out := reflect.MakeSlice(cv.Type(), 0, cv.Len())
	for i, k := range keep {
		if k {
			out = reflect.Append(out, cv.Index(i))
		}
	}
	return out.Interface()
}

// valueEqual compares a canonical column element with a slice value,
// promoting ints so Slice("year", 2020) matches a float column.
func valueEqual(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func init() {
	accessor.RegisterAdapter(accessor.Adapter{
		Name: "ggtable",
		Match: func(v any) bool {
			_, ok := v.(*table.Table)
			return ok
		},
		Adapt: func(v any) (core.Container, error) {
			return New(v.(*table.Table))
		},
	})
}
