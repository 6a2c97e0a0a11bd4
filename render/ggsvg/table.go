// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ggsvg

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
	"github.com/quickplot/quickplot/render"
)

// renderTable draws the container's rows as a text grid: a header,
// zebra-striped rows, and a truncation note when the container holds
// more rows than fit.
func renderTable(w io.Writer, r render.Frame) error {
	spec := r.Spec
	data, err := tabular(r.Data)
	if err != nil {
		return err
	}
	cols := spec.Ys()
	if len(cols) == 0 {
		return fmt.Errorf("ggsvg: no columns to display")
	}
	text := make([][]string, len(cols))
	for i, col := range cols {
		if text[i], err = columnStrings(data, col); err != nil {
			return err
		}
	}

	width, height := spec.Width(), spec.Height()
	const (
		headH = 28
		rowH  = 22
		pad   = 8
	)
	top := 0
	if spec.Title() != "" {
		top = 26
	}
	maxRows := (height - top - headH - pad) / rowH
	n := data.Len()
	truncated := false
	if n > maxRows {
		n, truncated = maxRows-1, true
	}
	if n < 0 {
		n = 0
	}
	colW := width / len(cols)
	clip := colW/7 - 1
	if clip < 3 {
		clip = 3
	}

	s := svg.New(w)
	s.Start(width, height)
	s.Rect(0, 0, width, height, "fill:#ffffff")
	if spec.Title() != "" {
		s.Text(pad, 18, spec.Title(), "font-family:sans-serif;font-size:14px;font-weight:bold;fill:#222")
	}

	headStyle := "font-family:sans-serif;font-size:12px;font-weight:bold;fill:#222"
	cellStyle := "font-family:sans-serif;font-size:12px;fill:#333"
	for i, col := range cols {
		s.Text(pad+i*colW, top+headH-9, clipText(col, clip), headStyle)
	}
	s.Line(0, top+headH-4, width, top+headH-4, "stroke:#999;stroke-width:1")

	y := top + headH
	for row := 0; row < n; row++ {
		if row%2 == 1 {
			s.Rect(0, y, width, rowH, "fill:#f6f6f6")
		}
		for i := range cols {
			s.Text(pad+i*colW, y+rowH-7, clipText(text[i][row], clip), cellStyle)
		}
		y += rowH
	}
	if truncated {
		s.Text(pad, y+rowH-7, fmt.Sprintf("… %d more rows", data.Len()-n),
			"font-family:sans-serif;font-size:11px;font-style:italic;fill:#777")
	}
	s.End()
	return nil
}

// clipText truncates s to at most n runes, with an ellipsis.
func clipText(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
