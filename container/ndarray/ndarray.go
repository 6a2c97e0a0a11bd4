// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ndarray provides a gridded data container: an n-dimensional
// value array with named, coordinated dimensions.
//
// Every dimension is an index dimension. A grid plot call consumes two
// of them as axes; the rest become selection widgets, one grid slice
// per widget state. The long-form view melts the array: one row per
// cell, one column per dimension plus one value column.
//
// Importing this package registers an adapter for gonum mat.Matrix
// values, which get a two-dimensional Array with unit-spaced
// coordinates.
package ndarray

import (
	"fmt"
	"reflect"
	"time"

	"github.com/aclements/go-moremath/vec"
	"github.com/quickplot/quickplot/accessor"
	"github.com/quickplot/quickplot/core"
	"gonum.org/v1/gonum/mat"
)

// A Dim is one named, coordinated dimension of an Array. Coords must
// be a []float64, []int, []string, or []time.Time with one element per
// position, unique within the dimension.
type Dim struct {
	Name   string
	Coords any
}

func (d Dim) len() int { return reflect.ValueOf(d.Coords).Len() }

// An Array is an n-dimensional float array with named dimensions. The
// value array is row-major in dimension order: the last dimension
// varies fastest. Array implements core.Tabular and core.Slicer.
type Array struct {
	name   string
	dims   []Dim
	data   []float64
	stride []int
	schema core.Schema
}

// New builds an Array. name is the value field name ("value" if
// empty). len(data) must be the product of the dimension lengths.
func New(name string, dims []Dim, data []float64) (*Array, error) {
	if name == "" {
		name = "value"
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("ndarray: no dimensions")
	}
	n := 1
	for _, d := range dims {
		kind := coordKind(d.Coords)
		if kind == core.Invalid {
			return nil, fmt.Errorf("ndarray: dimension %q has unsupported coords %T", d.Name, d.Coords)
		}
		n *= d.len()
	}
	if n != len(data) {
		return nil, fmt.Errorf("ndarray: %d values for shape of %d cells", len(data), n)
	}

	a := &Array{name: name, dims: dims, data: data}
	a.stride = make([]int, len(dims))
	s := 1
	for i := len(dims) - 1; i >= 0; i-- {
		a.stride[i] = s
		s *= dims[i].len()
	}
	for _, d := range dims {
		a.schema = append(a.schema, core.Field{Name: d.Name, Kind: coordKind(d.Coords), Index: true})
	}
	a.schema = append(a.schema, core.Field{Name: name, Kind: core.Float})
	return a, nil
}

// FromDense wraps a gonum matrix as a two-dimensional Array with
// dimensions "row" and "col" and unit-spaced coordinates.
func FromDense(name string, m mat.Matrix) (*Array, error) {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}
	dims := []Dim{
		{Name: "row", Coords: vec.Linspace(0, float64(r-1), r)},
		{Name: "col", Coords: vec.Linspace(0, float64(c-1), c)},
	}
	return New(name, dims, data)
}

// Dense returns a two-dimensional Array's values as a gonum matrix.
func (a *Array) Dense() (*mat.Dense, error) {
	if len(a.dims) != 2 {
		return nil, fmt.Errorf("ndarray: Dense needs 2 dimensions, have %d", len(a.dims))
	}
	return mat.NewDense(a.dims[0].len(), a.dims[1].len(), append([]float64(nil), a.data...)), nil
}

// Shape returns the dimension lengths in order.
func (a *Array) Shape() []int {
	shape := make([]int, len(a.dims))
	for i, d := range a.dims {
		shape[i] = d.len()
	}
	return shape
}

// Schema implements core.Container.
func (a *Array) Schema() core.Schema { return a.schema }

// Len implements core.Tabular: the number of cells.
func (a *Array) Len() int { return len(a.data) }

// Column implements core.Tabular. Dimension columns repeat their
// coordinates over the melted rows; the value column is the cell data.
func (a *Array) Column(name string) (any, error) {
	if name == a.name {
		return a.data, nil
	}
	for j, d := range a.dims {
		if d.Name != name {
			continue
		}
		cv := reflect.ValueOf(d.Coords)
		out := reflect.MakeSlice(cv.Type(), len(a.data), len(a.data))
		for flat := range a.data {
			out.Index(flat).Set(cv.Index(flat / a.stride[j] % d.len()))
		}
		return out.Interface(), nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrSchemaMismatch, name)
}

// Slice implements core.Slicer: it fixes the named dimension at the
// position whose coordinate equals value and drops the dimension.
func (a *Array) Slice(field string, value any) (core.Container, error) {
	j := -1
	for i, d := range a.dims {
		if d.Name == field {
			j = i
			break
		}
	}
	if j < 0 {
		return nil, fmt.Errorf("%w: %q", core.ErrSchemaMismatch, field)
	}
	pos := -1
	cv := reflect.ValueOf(a.dims[j].Coords)
	for i := 0; i < cv.Len(); i++ {
		if coordEqual(cv.Index(i).Interface(), value) {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, fmt.Errorf("ndarray: no %s = %v", field, value)
	}

	dims := make([]Dim, 0, len(a.dims)-1)
	for i, d := range a.dims {
		if i != j {
			dims = append(dims, d)
		}
	}
	if len(dims) == 0 {
		// Slicing the last dimension leaves a single cell; keep a
		// one-position dimension so the result is still an Array.
		return New(a.name, []Dim{{Name: field, Coords: filterCoords(cv, pos)}}, []float64{a.data[pos*a.stride[j]]})
	}

	n := len(a.data) / a.dims[j].len()
	data := make([]float64, 0, n)
	idx := make([]int, len(a.dims))
	idx[j] = pos
	for {
		flat := 0
		for i, v := range idx {
			flat += v * a.stride[i]
		}
		data = append(data, a.data[flat])
		// Advance the multi-index, skipping the fixed dimension.
		i := len(idx) - 1
		for ; i >= 0; i-- {
			if i == j {
				continue
			}
			idx[i]++
			if idx[i] < a.dims[i].len() {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			break
		}
	}
	return New(a.name, dims, data)
}

func filterCoords(cv reflect.Value, pos int) any {
	out := reflect.MakeSlice(cv.Type(), 1, 1)
	out.Index(0).Set(cv.Index(pos))
	return out.Interface()
}

func coordKind(coords any) core.FieldKind {
	switch coords.(type) {
	case []float64:
		return core.Float
	case []int:
		return core.Int
	case []string:
		return core.String
	case []time.Time:
		return core.Time
	}
	return core.Invalid
}

func coordEqual(a, b any) bool {
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
		Name: "ndarray",
		Match: func(v any) bool {
			_, ok := v.(mat.Matrix)
			return ok
		},
		Adapt: func(v any) (core.Container, error) {
			return FromDense("value", v.(mat.Matrix))
		},
	})
}
