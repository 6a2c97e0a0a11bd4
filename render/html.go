// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"html/template"
	"io"
)

// WriteHTML writes a self-contained HTML page displaying h inline.
// The SVG is embedded directly, so the page has no external
// dependencies and works from a file:// URL.
func WriteHTML(w io.Writer, h Handle, title string) error {
	var buf bytes.Buffer
	if err := h.WriteSVG(&buf); err != nil {
		return err
	}
	return pageTemplate.Execute(w, &pageData{
		Title: title,
		SVG:   template.HTML(buf.String()),
	})
}

type pageData struct {
	Title string
	SVG   template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html>
    <head>
        <meta charset="utf-8">
        <title>{{.Title}}</title>
        <style>
         body { font-family: sans-serif; margin: 1em; }
         figure { margin: 0; }
        </style>
    </head>
    <body>
        <figure>
            {{.SVG}}
        </figure>
    </body>
</html>
`
