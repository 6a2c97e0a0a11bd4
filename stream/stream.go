// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stream plots data that is still arriving.
//
// A Buffer is a tabular container over a bounded window of appended
// rows: once the backlog cap is reached, appending a row drops the
// oldest. Sources feed rows into a buffer from a channel or a growing
// NDJSON file, and a Step re-renders a fixed spec against the buffer's
// current window each time it is invoked. The tick loop that decides
// when to invoke it belongs to the caller; package serve runs one over
// websockets, and external schedulers can call Step.Render on whatever
// cadence they like, since a render step has no state besides the spec
// and the buffer.
package stream

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/quickplot/quickplot/core"
	"github.com/quickplot/quickplot/render"
)

// A Row is one record keyed by field name. Every schema field must be
// present.
type Row map[string]any

// A Buffer is a bounded window of rows. It implements core.Tabular;
// all methods are safe for concurrent use, so a source can append
// while a render step reads.
type Buffer struct {
	mu      sync.RWMutex
	schema  core.Schema
	backlog int
	rows    [][]any // aligned to schema
	gen     uint64
}

// NewBuffer returns an empty buffer over schema keeping at most
// backlog rows. A backlog of zero means unbounded; negative is an
// error.
func NewBuffer(schema core.Schema, backlog int) (*Buffer, error) {
	if backlog < 0 {
		return nil, fmt.Errorf("stream: negative backlog %d", backlog)
	}
	if len(schema) == 0 {
		return nil, fmt.Errorf("stream: empty schema")
	}
	return &Buffer{schema: schema, backlog: backlog}, nil
}

// Append adds one row, evicting the oldest if the window is full. Rows
// must carry every schema field with a value coercible to the field's
// kind.
func (b *Buffer) Append(row Row) error {
	vals := make([]any, len(b.schema))
	for i, f := range b.schema {
		v, ok := row[f.Name]
		if !ok {
			return fmt.Errorf("stream: row missing field %q", f.Name)
		}
		cv, err := coerce(v, f.Kind)
		if err != nil {
			return fmt.Errorf("stream: field %q: %w", f.Name, err)
		}
		vals[i] = cv
	}
	b.mu.Lock()
	b.rows = append(b.rows, vals)
	if b.backlog > 0 && len(b.rows) > b.backlog {
		b.rows = b.rows[len(b.rows)-b.backlog:]
	}
	b.gen++
	b.mu.Unlock()
	return nil
}

// Schema implements core.Container.
func (b *Buffer) Schema() core.Schema { return b.schema }

// Len implements core.Tabular.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rows)
}

// Column implements core.Tabular. The result is a fresh slice over the
// current window.
func (b *Buffer) Column(name string) (any, error) {
	col := -1
	for i, f := range b.schema {
		if f.Name == name {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: %q", core.ErrSchemaMismatch, name)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return column(b.rows, col, b.schema[col].Kind), nil
}

// Gen returns a counter that increases with every append. Pollers use
// it to skip redraws when nothing arrived.
func (b *Buffer) Gen() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gen
}

// Snapshot returns an immutable copy of the current window. A render
// against the snapshot sees one consistent window even while the
// buffer keeps appending.
func (b *Buffer) Snapshot() core.Tabular {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rows := make([][]any, len(b.rows))
	copy(rows, b.rows)
	return &snapshot{schema: b.schema, rows: rows}
}

type snapshot struct {
	schema core.Schema
	rows   [][]any
}

func (s *snapshot) Schema() core.Schema { return s.schema }
func (s *snapshot) Len() int            { return len(s.rows) }

func (s *snapshot) Column(name string) (any, error) {
	for i, f := range s.schema {
		if f.Name == name {
			return column(s.rows, i, f.Kind), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", core.ErrSchemaMismatch, name)
}

// column extracts one typed column from aligned rows.
func column(rows [][]any, i int, kind core.FieldKind) any {
	switch kind {
	case core.Float:
		out := make([]float64, len(rows))
		for j, r := range rows {
			out[j] = r[i].(float64)
		}
		return out
	case core.Int:
		out := make([]int, len(rows))
		for j, r := range rows {
			out[j] = r[i].(int)
		}
		return out
	case core.String:
		out := make([]string, len(rows))
		for j, r := range rows {
			out[j] = r[i].(string)
		}
		return out
	case core.Bool:
		out := make([]bool, len(rows))
		for j, r := range rows {
			out[j] = r[i].(bool)
		}
		return out
	case core.Time:
		out := make([]time.Time, len(rows))
		for j, r := range rows {
			out[j] = r[i].(time.Time)
		}
		return out
	}
	panic("stream: invalid field kind")
}

// coerce converts an appended value to the canonical Go type of a
// field kind.
func coerce(v any, kind core.FieldKind) (any, error) {
	switch kind {
	case core.Float:
		switch v := v.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
	case core.Int:
		switch v := v.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v == float64(int(v)) {
				return int(v), nil
			}
		}
	case core.String:
		if v, ok := v.(string); ok {
			return v, nil
		}
	case core.Bool:
		if v, ok := v.(bool); ok {
			return v, nil
		}
	case core.Time:
		switch v := v.(type) {
		case time.Time:
			return v, nil
		case string:
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, err
			}
			return t, nil
		case float64:
			// Unix seconds, the common NDJSON timestamp form.
			sec := int64(v)
			return time.Unix(sec, int64((v-float64(sec))*1e9)).UTC(), nil
		}
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, kind)
}

// A Step is a re-invocable render step over a buffer: every Render
// call draws the same spec against the buffer's window at that moment.
// Rendering the same window twice produces identical output.
type Step struct {
	spec *core.Spec
	buf  *Buffer
}

// NewStep builds the render step for spec over buf. The spec's field
// bindings are validated against the buffer's schema once, here, not
// on every tick.
func NewStep(spec *core.Spec, buf *Buffer) (*Step, error) {
	for _, f := range spec.Consumed() {
		if !buf.Schema().Has(f) {
			return nil, fmt.Errorf("%w: %q", core.ErrSchemaMismatch, f)
		}
	}
	return &Step{spec: spec, buf: buf}, nil
}

// Spec returns the step's spec.
func (s *Step) Spec() *core.Spec { return s.spec }

// Gen reports the buffer generation the next Render would draw.
func (s *Step) Gen() uint64 { return s.buf.Gen() }

// Render draws the current window as SVG on w.
func (s *Step) Render(w io.Writer) error {
	return render.NewPlot(s.spec, s.buf.Snapshot()).WriteSVG(w)
}
