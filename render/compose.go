// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
)

// composeGrid renders each item to its own SVG document and nests the
// documents in a row-major grid. Cell sizes come from each item's
// spec, so rows and columns grow to fit their largest member.
func composeGrid(w io.Writer, items []Handle, cols int) error {
	if len(items) == 0 {
		return errors.New("render: empty layout")
	}
	if cols <= 0 || cols > len(items) {
		cols = len(items)
	}
	rows := (len(items) + cols - 1) / cols

	type cell struct {
		doc  []byte
		w, h int
	}
	cells := make([]cell, len(items))
	for i, it := range items {
		var buf bytes.Buffer
		if err := it.WriteSVG(&buf); err != nil {
			return err
		}
		cw, ch := handleSize(it)
		cells[i] = cell{doc: buf.Bytes(), w: cw, h: ch}
	}

	colW := make([]int, cols)
	rowH := make([]int, rows)
	for i, c := range cells {
		if col := i % cols; c.w > colW[col] {
			colW[col] = c.w
		}
		if row := i / cols; c.h > rowH[row] {
			rowH[row] = c.h
		}
	}
	var totalW, totalH int
	for _, cw := range colW {
		totalW += cw
	}
	for _, rh := range rowH {
		totalH += rh
	}

	s := svg.New(w)
	s.Start(totalW, totalH)
	y := 0
	for row := 0; row < rows; row++ {
		x := 0
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= len(cells) {
				break
			}
			if err := EmbedSVG(w, cells[i].doc, x, y); err != nil {
				return err
			}
			x += colW[col]
		}
		y += rowH[row]
	}
	s.End()
	return nil
}

// handleSize returns the figure size a handle will render at, taken
// from its first element's spec.
func handleSize(h Handle) (w, ht int) {
	els := h.Elements()
	if len(els) == 0 {
		return 640, 400
	}
	return els[0].Spec.Width(), els[0].Spec.Height()
}

// EmbedSVG writes an SVG document into w as a nested <svg> element
// positioned at (x, y). Anything before the root tag, such as an XML
// declaration, is dropped, and the position attributes are spliced
// into the tag itself. Backends use it to place sub-documents, such
// as legends, inside a figure.
func EmbedSVG(w io.Writer, doc []byte, x, y int) error {
	i := bytes.Index(doc, []byte("<svg"))
	if i < 0 {
		return errors.New("render: layout cell is not an SVG document")
	}
	doc = doc[i+len("<svg"):]
	if _, err := fmt.Fprintf(w, `<svg x="%d" y="%d"`, x, y); err != nil {
		return err
	}
	_, err := w.Write(doc)
	return err
}
