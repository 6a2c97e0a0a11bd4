// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// Options is a set of keyword options for a plot call. Keys the
// dispatcher recognizes are listed in the Opt constants; anything else
// is passed through to the rendering backend verbatim.
type Options map[string]any

// The option keys the dispatcher consumes. Unlisted keys are
// passthrough.
const (
	OptX          = "x"
	OptY          = "y"
	OptC          = "c"
	OptBy         = "by"
	OptGroupBy    = "groupby"
	OptRow        = "row"
	OptCol        = "col"
	OptWidth      = "width"
	OptHeight     = "height"
	OptColor      = "color"
	OptCmap       = "cmap"
	OptLegend     = "legend"
	OptDynamic    = "dynamic"
	OptRasterize  = "rasterize"
	OptGroupLabel = "group_label"
	OptValueLabel = "value_label"
	OptInvert     = "invert"
	OptProjection = "projection"
	OptGlobal     = "global_extent"
	OptBacklog    = "backlog"
	OptTitle      = "title"
	OptXLabel     = "xlabel"
	OptYLabel     = "ylabel"
	OptXLim       = "xlim"
	OptYLim       = "ylim"
	OptLogX       = "logx"
	OptLogY       = "logy"
	OptAlpha      = "alpha"
	OptSize       = "size"
	OptBins       = "bins"
	OptBandwidth  = "bandwidth"
	OptLevels     = "levels"
	OptStacked    = "stacked"
	OptBackend    = "backend"
)

// consumedKeys is the set of keys that Call lifts out of Options into
// Spec fields. Everything else lands in the passthrough bucket.
var consumedKeys = map[string]bool{
	OptX: true, OptY: true, OptC: true, OptBy: true, OptGroupBy: true,
	OptRow: true, OptCol: true, OptWidth: true, OptHeight: true,
	OptColor: true, OptCmap: true, OptLegend: true, OptDynamic: true,
	OptRasterize: true, OptGroupLabel: true, OptValueLabel: true,
	OptInvert: true, OptProjection: true, OptGlobal: true,
	OptBacklog: true, OptTitle: true, OptXLabel: true, OptYLabel: true,
	OptXLim: true, OptYLim: true, OptLogX: true, OptLogY: true,
	OptAlpha: true, OptSize: true, OptBins: true, OptBandwidth: true,
	OptLevels: true, OptStacked: true, OptBackend: true,
}

// Clone returns a shallow copy of o. A nil receiver clones to an empty
// non-nil Options.
func (o Options) Clone() Options {
	n := make(Options, len(o))
	for k, v := range o {
		n[k] = v
	}
	return n
}

// Merge returns a copy of under overlaid with o: keys present in o win.
// Neither receiver nor argument is modified.
func (o Options) Merge(under Options) Options {
	n := under.Clone()
	for k, v := range o {
		n[k] = v
	}
	return n
}

// String returns the string value of key. The second result is false
// if the key is absent. A non-string value is an *OptionError.
func (o Options) String(key string) (string, bool, error) {
	v, ok := o[key]
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", true, &OptionError{key, "string", v}
	}
	return s, true, nil
}

// Strings returns the value of key as a string list. A bare string
// becomes a one-element list.
func (o Options) Strings(key string) ([]string, bool, error) {
	v, ok := o[key]
	if !ok {
		return nil, false, nil
	}
	switch v := v.(type) {
	case string:
		return []string{v}, true, nil
	case []string:
		return append([]string(nil), v...), true, nil
	case []any:
		ss := make([]string, len(v))
		for i, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, true, &OptionError{key, "string list", v}
			}
			ss[i] = s
		}
		return ss, true, nil
	}
	return nil, true, &OptionError{key, "string list", v}
}

// Int returns the int value of key. Whole floats convert; anything
// else is an *OptionError.
func (o Options) Int(key string) (int, bool, error) {
	v, ok := o[key]
	if !ok {
		return 0, false, nil
	}
	switch v := v.(type) {
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case float64:
		if v == float64(int(v)) {
			return int(v), true, nil
		}
	}
	return 0, true, &OptionError{key, "int", v}
}

// Float returns the float value of key; ints convert.
func (o Options) Float(key string) (float64, bool, error) {
	v, ok := o[key]
	if !ok {
		return 0, false, nil
	}
	switch v := v.(type) {
	case float64:
		return v, true, nil
	case int:
		return float64(v), true, nil
	case int64:
		return float64(v), true, nil
	}
	return 0, true, &OptionError{key, "float", v}
}

// Bool returns the bool value of key.
func (o Options) Bool(key string) (bool, bool, error) {
	v, ok := o[key]
	if !ok {
		return false, false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, true, &OptionError{key, "bool", v}
	}
	return b, true, nil
}

// FloatPair returns the value of key as a [lo, hi] pair. Accepted
// forms are [2]float64, []float64, and []any of two numbers.
func (o Options) FloatPair(key string) ([2]float64, bool, error) {
	v, ok := o[key]
	if !ok {
		return [2]float64{}, false, nil
	}
	switch v := v.(type) {
	case [2]float64:
		return v, true, nil
	case []float64:
		if len(v) == 2 {
			return [2]float64{v[0], v[1]}, true, nil
		}
	case []any:
		if len(v) == 2 {
			var p [2]float64
			for i, e := range v {
				switch e := e.(type) {
				case float64:
					p[i] = e
				case int:
					p[i] = float64(e)
				default:
					return [2]float64{}, true, &OptionError{key, "pair of numbers", v}
				}
			}
			return p, true, nil
		}
	}
	return [2]float64{}, true, &OptionError{key, "pair of numbers", v}
}

// passthrough returns the keys of o that the dispatcher does not
// consume, as a fresh Options.
func (o Options) passthrough() Options {
	p := Options{}
	for k, v := range o {
		if !consumedKeys[k] {
			p[k] = v
		}
	}
	return p
}
