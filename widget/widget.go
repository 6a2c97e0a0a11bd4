// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package widget turns the slice dimensions of a plot call into
// interactive controls.
//
// A plot call consumes some of a container's fields as axes and
// grouping; every indexed dimension it leaves unconsumed becomes a
// slice dimension (core.Spec.SliceDims). For each such dimension this
// package builds a Control describing a selector over the dimension's
// values, and for each combination of selections a Frame holding the
// plot of the matching data subset. WritePage assembles both into a
// self-contained HTML page whose controls switch between embedded
// frames with no server round trip; package serve provides the
// server-rendered alternative for dynamic specs.
package widget

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quickplot/quickplot/core"
	"github.com/quickplot/quickplot/render"
)

// A Kind is the control type chosen for a slice dimension.
type Kind int

const (
	// Select is a drop-down over discrete values.
	Select Kind = iota

	// Slider steps through the ordered values of a numeric or time
	// dimension.
	Slider
)

var kindNames = [...]string{"select", "slider"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// A Control is one interactive selector: a slice dimension, the
// control type, and the dimension's distinct values in data order.
type Control struct {
	ID     uuid.UUID
	Field  core.Field
	Kind   Kind
	Values []any
}

// Labels returns the display strings of the control's values.
func (c *Control) Labels() []string {
	out := make([]string, len(c.Values))
	for i, v := range c.Values {
		out[i] = formatValue(v)
	}
	return out
}

// Controls builds one control per slice dimension of spec, in slice
// dimension order. Numeric and time dimensions get sliders; string and
// bool dimensions get selects. The container must be tabular so the
// dimension values can be enumerated.
func Controls(spec *core.Spec, data core.Container) ([]*Control, error) {
	dims := spec.SliceDims()
	if len(dims) == 0 {
		return nil, nil
	}
	tab, ok := data.(core.Tabular)
	if !ok {
		return nil, fmt.Errorf("widget: container %T cannot enumerate slice dimensions", data)
	}
	controls := make([]*Control, 0, len(dims))
	for _, dim := range dims {
		vals, err := core.Values(tab, dim.Name)
		if err != nil {
			return nil, err
		}
		kind := Select
		if dim.Kind.Numeric() {
			kind = Slider
		}
		controls = append(controls, &Control{
			ID:     uuid.New(),
			Field:  dim,
			Kind:   kind,
			Values: vals,
		})
	}
	return controls, nil
}

// A Frame is the rendered plot for one combination of control
// selections. Key identifies the combination; see FrameKey.
type Frame struct {
	Key string
	SVG []byte
}

// MaxFrames caps the number of eagerly rendered frames. Combinations
// beyond the cap are dropped with a warning; a spec with that much
// slice cardinality should use dynamic mode instead.
const MaxFrames = 64

// Frames renders one frame per combination of control values, in
// row-major order over the controls' value lists. The container must
// support slicing.
func Frames(spec *core.Spec, data core.Container, controls []*Control) ([]Frame, error) {
	if len(controls) == 0 {
		var buf bytes.Buffer
		if err := render.NewPlot(spec, data).WriteSVG(&buf); err != nil {
			return nil, err
		}
		return []Frame{{Key: "", SVG: buf.Bytes()}}, nil
	}

	total := 1
	for _, c := range controls {
		total *= len(c.Values)
	}
	if total > MaxFrames {
		core.Warning.Printf("%d slice combinations exceed the %d-frame cap; later frames dropped (use dynamic mode)", total, MaxFrames)
		total = MaxFrames
	}

	var frames []Frame
	sel := make([]any, len(controls))
	var walk func(i int, c core.Container) error
	walk = func(i int, c core.Container) error {
		if len(frames) >= total {
			return nil
		}
		if i == len(controls) {
			var buf bytes.Buffer
			if err := render.NewPlot(spec, c).WriteSVG(&buf); err != nil {
				return err
			}
			frames = append(frames, Frame{Key: FrameKey(sel), SVG: buf.Bytes()})
			return nil
		}
		sl, ok := c.(core.Slicer)
		if !ok {
			return fmt.Errorf("widget: container %T cannot slice on %q", c, controls[i].Field.Name)
		}
		for _, v := range controls[i].Values {
			sub, err := sl.Slice(controls[i].Field.Name, v)
			if err != nil {
				return err
			}
			sel[i] = v
			if err := walk(i+1, sub); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(0, data); err != nil {
		return nil, err
	}
	return frames, nil
}

// FrameKey joins one value per control into a frame lookup key. The
// page's script builds the same key from the control states.
func FrameKey(sel []any) string {
	parts := make([]string, len(sel))
	for i, v := range sel {
		parts[i] = formatValue(v)
	}
	return strings.Join(parts, "|")
}

// formatValue renders a slice value the one canonical way, so keys
// built in Go and in the page's script agree.
func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}
