// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package serve

import (
	"html/template"
	"io"

	"github.com/quickplot/quickplot/widget"
)

func writePage(w io.Writer, title string, controls []*widget.Control) error {
	pd := &pageData{Title: title}
	for _, c := range controls {
		pd.Controls = append(pd.Controls, controlData{
			ID:     c.ID.String(),
			Name:   c.Field.Name,
			Kind:   c.Kind.String(),
			Labels: c.Labels(),
			Max:    len(c.Values) - 1,
		})
	}
	return pageTemplate.Execute(w, pd)
}

type pageData struct {
	Title    string
	Controls []controlData
}

type controlData struct {
	ID     string
	Name   string
	Kind   string
	Labels []string
	Max    int
}

var pageTemplate = template.Must(template.New("live").Parse(pageHTML))

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
         #qp-status { color: #888; font-size: small; }
         #qp-error { color: #a00; }
        </style>
    </head>
    <body>
        <div class="qp-controls">
            {{range .Controls}}
            <span class="qp-control">
                <label for="qp-{{.ID}}">{{.Name}}</label>
                {{if eq .Kind "select"}}
                <select id="qp-{{.ID}}" data-qp-field="{{.Name}}">
                    {{range .Labels}}<option>{{.}}</option>{{end}}
                </select>
                {{else}}
                <input type="range" id="qp-{{.ID}}" data-qp-field="{{.Name}}"
                       list="qp-{{.ID}}-labels" min="0" max="{{.Max}}" value="0">
                <datalist id="qp-{{.ID}}-labels">
                    {{range .Labels}}<option>{{.}}</option>{{end}}
                </datalist>
                <output for="qp-{{.ID}}">{{index .Labels 0}}</output>
                {{end}}
            </span>
            {{end}}
            <span id="qp-status">connecting…</span>
        </div>
        <div id="qp-error"></div>
        <figure id="qp-figure"></figure>
        <script>
         "use strict";
         var proto = location.protocol === "https:" ? "wss:" : "ws:";
         var sock = new WebSocket(proto + "//" + location.host + "/ws");
         var status = document.getElementById("qp-status");
         var errBox = document.getElementById("qp-error");
         var figure = document.getElementById("qp-figure");

         sock.onopen = function() { status.textContent = "live"; };
         sock.onclose = function() { status.textContent = "disconnected"; };
         sock.onmessage = function(ev) {
             var msg = JSON.parse(ev.data);
             errBox.textContent = msg.error || "";
             if (msg.svg)
                 figure.innerHTML = msg.svg;
         };

         document.querySelectorAll("[data-qp-field]").forEach(function(el) {
             el.addEventListener("input", function() {
                 var value = el.value;
                 if (el.type === "range") {
                     var labels = el.list.querySelectorAll("option");
                     value = labels[+el.value].textContent;
                     el.parentNode.querySelector("output").textContent = value;
                 }
                 sock.send(JSON.stringify({field: el.dataset.qpField, value: value}));
             });
         });
        </script>
    </body>
</html>
`
