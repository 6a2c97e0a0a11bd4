// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ggsvg

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// A Colormap maps [0, 1] to colors by blending fixed stops in Lab
// space. Values outside [0, 1] clamp to the ends.
type Colormap struct {
	name  string
	stops []colorful.Color
}

// colormaps holds the named colormap stop lists. Sequential maps run
// light to dark so high values read as dense.
var colormaps = map[string][]string{
	"viridis":  {"#440154", "#46327e", "#365c8d", "#277f8e", "#1fa187", "#4ac16d", "#a0da39", "#fde725"},
	"plasma":   {"#0d0887", "#5b02a3", "#9a179b", "#cb4679", "#eb7852", "#fbb32f", "#f0f921"},
	"magma":    {"#000004", "#1c1044", "#4f127b", "#812581", "#b5367a", "#e55064", "#fb8761", "#fec287", "#fcfdbf"},
	"inferno":  {"#000004", "#1b0c42", "#4b0c6b", "#781c6d", "#a52c60", "#cf4446", "#ed6925", "#fb9a06", "#fcffa4"},
	"coolwarm": {"#3b4cc0", "#6788ee", "#9abbff", "#c9d7f0", "#edd1c2", "#f7a789", "#e26952", "#b40426"},
	"blues":    {"#f7fbff", "#c6dbef", "#6baed6", "#2171b5", "#08306b"},
	"greens":   {"#f7fcf5", "#c7e9c0", "#74c476", "#238b45", "#00441b"},
	"reds":     {"#fff5f0", "#fcbba1", "#fb6a4a", "#cb181d", "#67000d"},
	"greys":    {"#ffffff", "#d9d9d9", "#969696", "#525252", "#000000"},
}

// ParseColormap resolves a colormap name. The empty name means
// viridis.
func ParseColormap(name string) (*Colormap, error) {
	if name == "" {
		name = "viridis"
	}
	hexes, ok := colormaps[strings.ToLower(name)]
	if !ok {
		known := make([]string, 0, len(colormaps))
		for k := range colormaps {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("ggsvg: unknown colormap %q (have %s)", name, strings.Join(known, ", "))
	}
	m := &Colormap{name: strings.ToLower(name)}
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic("ggsvg: bad colormap stop " + h)
		}
		m.stops = append(m.stops, c)
	}
	return m, nil
}

// At returns the color at t in [0, 1] with the given alpha.
func (m *Colormap) At(t, alpha float64) color.Color {
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Min(1, math.Max(0, t))
	f := t * float64(len(m.stops)-1)
	i := int(f)
	if i >= len(m.stops)-1 {
		return withAlpha(m.stops[len(m.stops)-1], alpha)
	}
	return withAlpha(m.stops[i].BlendLab(m.stops[i+1], f-float64(i)).Clamped(), alpha)
}

// seriesPalette is the categorical palette for grouped series, in
// assignment order.
var seriesPalette = func() []colorful.Color {
	hexes := []string{
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	}
	cs := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic("ggsvg: bad palette entry " + h)
		}
		cs[i] = c
	}
	return cs
}()

// seriesColor returns the palette color for series i, wrapping past
// the palette end.
func seriesColor(i int, alpha float64) color.Color {
	return withAlpha(seriesPalette[i%len(seriesPalette)], alpha)
}

func withAlpha(c colorful.Color, alpha float64) color.Color {
	if alpha > 1 {
		alpha = 1
	} else if alpha < 0 {
		alpha = 0
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(alpha * 255))}
}

// parseColor resolves a literal color: an SVG 1.1 name or #rgb/#rrggbb
// hex.
func parseColor(s string, alpha float64) (color.Color, bool) {
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		cc, _ := colorful.MakeColor(c)
		return withAlpha(cc, alpha), true
	}
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(string(s[1]), 2) + strings.Repeat(string(s[2]), 2) + strings.Repeat(string(s[3]), 2)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, false
	}
	return withAlpha(c, alpha), true
}
