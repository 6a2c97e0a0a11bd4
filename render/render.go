// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render turns resolved plot specs into SVG documents.
//
// A Handle is the result of a plot call. The simplest handle is a
// single Plot; Overlay combines handles into one shared coordinate
// frame and Layout arranges handles side by side. Handles hold the
// spec and the container, not pixels, so writing the same handle twice
// re-renders it against the container's current contents.
//
// Drawing itself is delegated to a named backend. Backends register
// from init the way database/sql drivers do, and any error a backend
// reports is handed back wrapped in a DelegationError with the
// backend's own error preserved inside.
package render

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/quickplot/quickplot/core"
)

// DefaultBackend is the backend used when a spec does not name one.
const DefaultBackend = "gg"

// ErrUnknownBackend is returned when a spec names a backend that was
// never registered.
var ErrUnknownBackend = errors.New("render: unknown backend")

// A Frame is one plot drawn into a coordinate frame: a resolved spec
// bound to the container it draws. Backends receive every frame that
// shares the frame in a single call.
type Frame struct {
	Spec *core.Spec
	Data core.Container
}

// A Renderer draws frames as SVG. Implementations live in the backend
// packages and register themselves with RegisterBackend.
type Renderer interface {
	// Name returns the name specs select this backend by.
	Name() string

	// RenderSVG draws frames into one SVG document on w. The first
	// frame's spec decides figure-level properties such as size.
	RenderSVG(w io.Writer, frames []Frame) error
}

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Renderer)
)

// RegisterBackend makes a renderer available to specs under its name.
// It panics if r is nil or the name is already taken.
func RegisterBackend(r Renderer) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if r == nil {
		panic("render: RegisterBackend with nil renderer")
	}
	if _, dup := backends[r.Name()]; dup {
		panic("render: RegisterBackend called twice for backend " + r.Name())
	}
	backends[r.Name()] = r
}

// Backend returns the renderer registered under name. An empty name
// selects DefaultBackend.
func Backend(name string) (Renderer, error) {
	if name == "" {
		name = DefaultBackend
	}
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	r, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return r, nil
}

// Backends returns the names of the registered backends, sorted.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// A DelegationError reports that a rendering backend failed. Err is
// the backend's error, unmodified.
type DelegationError struct {
	Backend string
	Err     error
}

func (e *DelegationError) Error() string {
	return fmt.Sprintf("render: backend %q: %v", e.Backend, e.Err)
}

func (e *DelegationError) Unwrap() error { return e.Err }

// An Element is one resolved plot: a spec bound to the container it
// draws. The ID distinguishes elements within a page or widget tree.
type Element struct {
	ID   uuid.UUID
	Spec *core.Spec
	Data core.Container
}

// A Handle is a renderable plot object: a single plot, an overlay, or
// a layout.
type Handle interface {
	// Elements returns the leaf elements in drawing order.
	Elements() []*Element

	// WriteSVG renders the handle as one SVG document on w.
	WriteSVG(w io.Writer) error
}

// A Plot is the handle for a single element.
type Plot struct {
	el *Element
}

// NewPlot returns a handle that draws data according to spec.
func NewPlot(spec *core.Spec, data core.Container) *Plot {
	return &Plot{el: &Element{ID: uuid.New(), Spec: spec, Data: data}}
}

func (p *Plot) Elements() []*Element { return []*Element{p.el} }

func (p *Plot) WriteSVG(w io.Writer) error {
	return renderFrames(w, p.Elements())
}

// Overlay combines hs into a single handle drawn in one shared
// coordinate frame, in argument order. Operands are flattened to their
// elements, so the operation is associative: Overlay(a, Overlay(b, c))
// and Overlay(Overlay(a, b), c) hold the same elements in the same
// order.
func Overlay(hs ...Handle) Handle {
	o := new(overlay)
	for _, h := range hs {
		if h == nil {
			continue
		}
		o.els = append(o.els, h.Elements()...)
	}
	return o
}

type overlay struct {
	els []*Element
}

func (o *overlay) Elements() []*Element { return o.els }

func (o *overlay) WriteSVG(w io.Writer) error {
	return renderFrames(w, o.els)
}

// Layout arranges hs in a row-major grid with cols columns. cols <= 0
// puts everything in a single row. Nested layouts are flattened into
// the outer grid, so Layout is associative on elements the same way
// Overlay is; overlays stay intact and occupy one cell.
func Layout(cols int, hs ...Handle) Handle {
	l := &layout{cols: cols}
	for _, h := range hs {
		switch h := h.(type) {
		case nil:
		case *layout:
			l.items = append(l.items, h.items...)
		default:
			l.items = append(l.items, h)
		}
	}
	return l
}

type layout struct {
	cols  int
	items []Handle
}

func (l *layout) Elements() []*Element {
	var els []*Element
	for _, it := range l.items {
		els = append(els, it.Elements()...)
	}
	return els
}

func (l *layout) WriteSVG(w io.Writer) error {
	return composeGrid(w, l.items, l.cols)
}

// renderFrames hands els to the backend named by the first element's
// spec. All elements are drawn into one frame, so mixing backends in
// an overlay cannot be honored; the first element wins.
func renderFrames(w io.Writer, els []*Element) error {
	if len(els) == 0 {
		return errors.New("render: nothing to draw")
	}
	name := els[0].Spec.Backend()
	frames := make([]Frame, len(els))
	for i, el := range els {
		if b := el.Spec.Backend(); b != name {
			core.Warning.Printf("overlay mixes backends %q and %q; using %q", name, b, name)
		}
		frames[i] = Frame{Spec: el.Spec, Data: el.Data}
	}
	r, err := Backend(name)
	if err != nil {
		return err
	}
	if err := delegate(r, w, frames); err != nil {
		return &DelegationError{Backend: name, Err: err}
	}
	return nil
}

// delegate invokes the backend, converting a backend panic into an
// ordinary error so it cannot escape the handoff.
func delegate(r Renderer, w io.Writer, frames []Frame) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
		}
	}()
	return r.RenderSVG(w, frames)
}
