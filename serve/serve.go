// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package serve shows a plot in a browser and keeps it current.
//
// A Server wraps one plot call: it serves an HTML page with the call's
// slice-dimension controls and an empty figure, and a websocket that
// pushes freshly rendered SVG frames. A frame is pushed on connect,
// whenever the client changes a control, and, for stream buffers,
// whenever new rows have arrived at the poll interval. This is the
// dynamic counterpart of widget.WritePage, which embeds every frame
// eagerly; here each frame is rendered on demand, so slice cardinality
// costs nothing up front.
//
// The render step itself stays synchronous and idempotent; the only
// loop the server runs is the per-connection poll ticker.
package serve

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/net/websocket"

	"github.com/quickplot/quickplot/core"
	"github.com/quickplot/quickplot/render"
	"github.com/quickplot/quickplot/stream"
	"github.com/quickplot/quickplot/widget"
)

// A Server serves one live plot.
type Server struct {
	spec     *core.Spec
	data     core.Container
	buf      *stream.Buffer // non-nil when data is a stream buffer
	controls []*widget.Control
	title    string
	interval time.Duration
	mux      *http.ServeMux
}

// An Option configures a server.
type Option func(*Server)

// Title sets the page title.
func Title(t string) Option {
	return func(s *Server) { s.title = t }
}

// Interval sets how often a connection checks a stream buffer for new
// rows. The default is one second. It has no effect on static data.
func Interval(d time.Duration) Option {
	return func(s *Server) { s.interval = d }
}

// New builds a server for one plot call. Static containers get their
// slice-dimension controls; a *stream.Buffer additionally gets pushed
// redraws as rows arrive.
func New(spec *core.Spec, data core.Container, opts ...Option) (*Server, error) {
	s := &Server{
		spec:     spec,
		data:     data,
		title:    spec.String(),
		interval: time.Second,
	}
	if t := spec.Title(); t != "" {
		s.title = t
	}
	for _, o := range opts {
		o(s)
	}
	if buf, ok := data.(*stream.Buffer); ok {
		s.buf = buf
	} else {
		// Stream buffers have no slice dimensions to enumerate
		// up front; static containers do.
		controls, err := widget.Controls(spec, data)
		if err != nil {
			return nil, err
		}
		s.controls = controls
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/", s.page)
	s.mux.Handle("/ws", websocket.Handler(s.socket))
	return s, nil
}

// Handler returns the server's HTTP handler, for mounting under a
// caller-owned server.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) page(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := writePage(w, s.title, s.controls); err != nil {
		core.Warning.Printf("serving page: %v", err)
	}
}

// frameMsg is the outgoing websocket message: one rendered frame or an
// error the client shows in place of the figure.
type frameMsg struct {
	SVG   string `json:"svg,omitempty"`
	Error string `json:"error,omitempty"`
}

// socket pushes frames to one client. Incoming messages are control
// changes: {"field": ..., "value": ...} with the value's display
// label.
func (s *Server) socket(ws *websocket.Conn) {
	defer ws.Close()

	sel := make(map[string]any)
	send := func() bool {
		msg := frameMsg{}
		svg, err := s.renderFrame(sel)
		if err != nil {
			core.Warning.Printf("rendering frame: %v", err)
			msg.Error = err.Error()
		} else {
			msg.SVG = svg
		}
		out, err := json.Marshal(msg)
		if err != nil {
			return false
		}
		return websocket.Message.Send(ws, string(out)) == nil
	}

	if !send() {
		return
	}

	// Control changes arrive on their own goroutine so the poll loop
	// below never blocks on a quiet client. The loop owns sel; the
	// reader only forwards parsed changes.
	type change struct {
		field string
		value any
	}
	changes := make(chan change, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(changes)
		for {
			var in string
			if err := websocket.Message.Receive(ws, &in); err != nil {
				return
			}
			field := gjson.Get(in, "field")
			value := gjson.Get(in, "value")
			if !field.Exists() || !value.Exists() {
				core.Warning.Printf("malformed control message: %.60q", in)
				continue
			}
			v, ok := s.lookupValue(field.Str, value.String())
			if !ok {
				core.Warning.Printf("control message for unknown %s=%s", field.Str, value.String())
				continue
			}
			select {
			case changes <- change{field.Str, v}:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	gen := s.gen()
	for {
		select {
		case ch, ok := <-changes:
			if !ok {
				return
			}
			sel[ch.field] = ch.value
			if !send() {
				return
			}
		case <-ticker.C:
			if s.buf == nil {
				continue
			}
			if g := s.gen(); g != gen {
				gen = g
				if !send() {
					return
				}
			}
		}
	}
}

func (s *Server) gen() uint64 {
	if s.buf == nil {
		return 0
	}
	return s.buf.Gen()
}

// renderFrame renders the spec against the current data, restricted to
// the client's control selections.
func (s *Server) renderFrame(sel map[string]any) (string, error) {
	data := s.data
	if s.buf != nil {
		data = s.buf.Snapshot()
	}
	for field, value := range sel {
		sl, ok := data.(core.Slicer)
		if !ok {
			return "", fmt.Errorf("serve: container %T cannot slice on %q", data, field)
		}
		sub, err := sl.Slice(field, value)
		if err != nil {
			return "", err
		}
		data = sub
	}
	var buf bytes.Buffer
	if err := render.NewPlot(s.spec, data).WriteSVG(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// lookupValue maps a control label back to the underlying value.
func (s *Server) lookupValue(field, label string) (any, bool) {
	for _, c := range s.controls {
		if c.Field.Name != field {
			continue
		}
		for i, l := range c.Labels() {
			if l == label {
				return c.Values[i], true
			}
		}
	}
	return nil, false
}
