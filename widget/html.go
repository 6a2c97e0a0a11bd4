// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package widget

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/quickplot/quickplot/core"
)

// WritePage writes a self-contained HTML page for spec: the slice
// dimension controls followed by the plot, with every slice frame
// embedded and the controls switching between them client-side. A spec
// with no slice dimensions produces a plain single-plot page.
func WritePage(w io.Writer, spec *core.Spec, data core.Container, title string) error {
	controls, err := Controls(spec, data)
	if err != nil {
		return err
	}
	frames, err := Frames(spec, data, controls)
	if err != nil {
		return err
	}
	return writePage(w, controls, frames, title)
}

func writePage(w io.Writer, controls []*Control, frames []Frame, title string) error {
	pd := &pageData{Title: title}
	for _, c := range controls {
		labels, err := json.Marshal(c.Labels())
		if err != nil {
			return err
		}
		pd.Controls = append(pd.Controls, controlData{
			ID:     c.ID.String(),
			Name:   c.Field.Name,
			Kind:   c.Kind.String(),
			Labels: c.Labels(),
			Max:    len(c.Values) - 1,
			JSON:   template.JS(labels),
		})
	}
	if len(frames) == 0 {
		return fmt.Errorf("widget: no frames to embed")
	}
	for _, f := range frames {
		pd.Frames = append(pd.Frames, frameData{Key: f.Key, SVG: template.HTML(f.SVG)})
	}
	pd.InitialKey = frames[0].Key
	return pageTemplate.Execute(w, pd)
}

type pageData struct {
	Title      string
	Controls   []controlData
	Frames     []frameData
	InitialKey string
}

type controlData struct {
	ID     string
	Name   string
	Kind   string // "select" or "slider"
	Labels []string
	Max    int
	JSON   template.JS
}

type frameData struct {
	Key string
	SVG template.HTML
}

var pageTemplate = template.Must(template.New("widgets").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html>
    <head>
        <meta charset="utf-8">
        <title>{{.Title}}</title>
        <style>
         body { font-family: sans-serif; margin: 1em; }
         .qp-controls { margin-bottom: 1em; }
         .qp-control { display: inline-block; margin-right: 2em; }
         .qp-control label { font-weight: bold; margin-right: 0.5em; }
         .qp-frame { display: none; }
         .qp-frame.qp-shown { display: block; }
        </style>
    </head>
    <body>
        <div class="qp-controls">
            {{range .Controls}}
            <span class="qp-control">
                <label for="qp-{{.ID}}">{{.Name}}</label>
                {{if eq .Kind "select"}}
                <select id="qp-{{.ID}}" data-qp-control>
                    {{range .Labels}}<option>{{.}}</option>{{end}}
                </select>
                {{else}}
                <input type="range" id="qp-{{.ID}}" data-qp-control
                       data-qp-labels="{{.JSON}}" min="0" max="{{.Max}}" value="0">
                <output for="qp-{{.ID}}">{{index .Labels 0}}</output>
                {{end}}
            </span>
            {{end}}
        </div>
        {{range .Frames}}
        <div class="qp-frame" data-qp-key="{{.Key}}">{{.SVG}}</div>
        {{end}}
        <script>
         "use strict";
         var controls = document.querySelectorAll("[data-qp-control]");
         var frames = document.querySelectorAll(".qp-frame");

         function controlLabel(el) {
             if (el.tagName === "SELECT")
                 return el.value;
             var labels = JSON.parse(el.dataset.qpLabels);
             var label = labels[+el.value];
             var out = el.parentNode.querySelector("output");
             if (out)
                 out.textContent = label;
             return label;
         }

         function update() {
             var parts = [];
             controls.forEach(function(el) { parts.push(controlLabel(el)); });
             var key = parts.join("|");
             frames.forEach(function(f) {
                 f.classList.toggle("qp-shown", f.dataset.qpKey === key);
             });
         }

         controls.forEach(function(el) { el.addEventListener("input", update); });
         update();
        </script>
    </body>
</html>
`
