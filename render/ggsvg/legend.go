// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ggsvg

import (
	"fmt"
	"image/color"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
)

const (
	swatchSize   = 12
	legendPad    = 8
	legendRowH   = 18
	cbarWidth    = 64
	legendTextPx = 7
)

// A legendEntry is one swatch row of a series legend.
type legendEntry struct {
	name  string
	color color.Color
}

// legendInfo is the merged legend of a figure: discrete series
// entries, and at most one continuous color ramp.
type legendInfo struct {
	entries []legendEntry

	cbar     *Colormap
	cbarName string
	cbarMin  float64
	cbarMax  float64
	cbarLog  bool
}

// collectLegend merges the legends of the figure's frames. Series
// entries deduplicate by name across overlaid frames; the first
// colormapped frame provides the ramp.
func collectLegend(frames []*frame) legendInfo {
	var li legendInfo
	seen := make(map[string]bool)
	for _, f := range frames {
		if !f.spec.Legend() {
			continue
		}
		if f.cbar != nil && li.cbar == nil {
			li.cbar = f.cbar
			li.cbarName = f.cbarName
			li.cbarMin, li.cbarMax = f.cbarMin, f.cbarMax
		}
		for i, name := range f.ser.names {
			if seen[name] {
				continue
			}
			seen[name] = true
			li.entries = append(li.entries, legendEntry{name, f.ser.colors[i]})
		}
	}
	// A single unnamed series needs no legend.
	if len(li.entries) == 1 && li.cbar == nil {
		li.entries = nil
	}
	return li
}

// width returns the horizontal space the legend needs, or 0 when
// there is nothing to draw.
func (li legendInfo) width() int {
	if li.cbar != nil {
		return cbarWidth
	}
	if len(li.entries) == 0 {
		return 0
	}
	longest := 0
	for _, e := range li.entries {
		if len(e.name) > longest {
			longest = len(e.name)
		}
	}
	w := 2*legendPad + swatchSize + 6 + legendTextPx*longest
	if w < 80 {
		w = 80
	}
	if w > 180 {
		w = 180
	}
	return w
}

// write renders the legend as its own SVG document.
func (li legendInfo) write(w io.Writer, width, height int) {
	if li.cbar != nil {
		li.writeColorbar(w, width, height)
		return
	}
	s := svg.New(w)
	s.Start(width, height)
	y := legendPad + swatchSize
	for _, e := range li.entries {
		fill, opacity := cssColor(e.color)
		s.Square(legendPad, y-swatchSize+2, swatchSize,
			fmt.Sprintf("fill:%s;fill-opacity:%g", fill, opacity))
		s.Text(legendPad+swatchSize+6, y, e.name,
			"font-family:sans-serif;font-size:12px;fill:#333")
		y += legendRowH
		if y > height-legendPad {
			break
		}
	}
	s.End()
}

// writeColorbar renders a vertical gradient ramp with end labels.
func (li legendInfo) writeColorbar(w io.Writer, width, height int) {
	s := svg.New(w)
	s.Start(width, height)

	stops := make([]svg.Offcolor, 0, 5)
	for i := 0; i <= 4; i++ {
		t := float64(i) / 4
		fill, _ := cssColor(li.cbar.At(t, 1))
		// Gradient runs bottom to top.
		stops = append(stops, svg.Offcolor{Offset: uint8(100 * t), Color: fill, Opacity: 1})
	}
	s.Def()
	s.LinearGradient("qpcbar", 0, 100, 0, 0, stops)
	s.DefEnd()

	barTop, barBot := 28, height-24
	s.Rect(legendPad, barTop, 14, barBot-barTop, "fill:url(#qpcbar);stroke:#999;stroke-width:0.5")

	label := "font-family:sans-serif;font-size:11px;fill:#333"
	s.Text(legendPad, 16, li.cbarName, label)
	s.Text(legendPad+18, barBot, li.cbarLabel(li.cbarMin), label)
	s.Text(legendPad+18, barTop+10, li.cbarLabel(li.cbarMax), label)
	s.End()
}

// cbarLabel formats a ramp endpoint, undoing the log transform for
// log-scaled ramps.
func (li legendInfo) cbarLabel(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if li.cbarLog {
		v = math.Pow(10, v)
	}
	return fmt.Sprintf("%.4g", v)
}

// cssColor splits a color into a CSS hex fill and an opacity.
func cssColor(c color.Color) (fill string, opacity float64) {
	if c == nil {
		return "#000000", 1
	}
	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	fill = fmt.Sprintf("#%02x%02x%02x", nrgba.R, nrgba.G, nrgba.B)
	return fill, float64(nrgba.A) / 255
}
