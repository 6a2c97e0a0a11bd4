// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/quickplot/quickplot"
	"github.com/quickplot/quickplot/render"
	"github.com/quickplot/quickplot/render/gplot"
	"github.com/quickplot/quickplot/widget"
)

var cmdPlotFlags = flag.NewFlagSet(os.Args[0]+" plot", flag.ExitOnError)

var plotCmd struct {
	commonFlags
	backend    string
	out        string
	themeFile  string
	open       bool
	width      int
	height     int
	cpuProfile string
	memProfile string
}

func init() {
	f := cmdPlotFlags
	f.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s plot [flags] <input>\n", os.Args[0])
		f.PrintDefaults()
	}
	plotCmd.register(f)
	f.StringVar(&plotCmd.backend, "backend", "", "rendering `backend` (gg or gonum)")
	f.StringVar(&plotCmd.out, "o", "", "write output to `file` (.svg, .html, or .png; default: stdout or browser)")
	f.StringVar(&plotCmd.themeFile, "theme", "", "load default options from YAML `file`")
	f.BoolVar(&plotCmd.open, "open", false, "open the output in a browser")
	f.IntVar(&plotCmd.width, "width", 0, "figure `width`")
	f.IntVar(&plotCmd.height, "height", 0, "figure `height`")
	f.StringVar(&plotCmd.cpuProfile, "cpuprofile", "", "write CPU profile to `file`")
	f.StringVar(&plotCmd.memProfile, "memprofile", "", "write heap profile to `file`")
	registerSubcommand("plot", "[flags] <input> - render a plot of a data file", cmdPlot, f)
}

func cmdPlot() {
	if cmdPlotFlags.NArg() != 1 {
		cmdPlotFlags.Usage()
		os.Exit(2)
	}

	if plotCmd.cpuProfile != "" {
		f, err := os.Create(plotCmd.cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}
	if plotCmd.memProfile != "" {
		defer func() {
			runtime.GC()
			f, err := os.Create(plotCmd.memProfile)
			if err != nil {
				log.Fatal(err)
			}
			pprof.WriteHeapProfile(f)
			f.Close()
		}()
	}

	loadTheme(plotCmd.themeFile)
	kind, opts, err := plotCmd.options()
	if err != nil {
		log.Fatal(err)
	}
	if plotCmd.backend != "" {
		opts["backend"] = plotCmd.backend
	}
	if plotCmd.width > 0 {
		opts["width"] = plotCmd.width
	}
	if plotCmd.height > 0 {
		opts["height"] = plotCmd.height
	}

	data, err := loadContainer(cmdPlotFlags.Arg(0), plotCmd.indexFields())
	if err != nil {
		log.Fatal(err)
	}
	a, err := quickplot.Plot(data)
	if err != nil {
		log.Fatal(err)
	}
	h, err := a.Call(string(kind), opts)
	if err != nil {
		log.Fatal(err)
	}

	out := plotCmd.out
	if out == "" {
		if !stdoutIsTerminal() {
			// Piped: SVG on stdout.
			if err := h.WriteSVG(os.Stdout); err != nil {
				log.Fatal(err)
			}
			return
		}
		out = filepath.Join(os.TempDir(), "qplot.html")
		plotCmd.open = true
	}
	if err := writeOutput(out, h); err != nil {
		log.Fatal(err)
	}
	if plotCmd.open {
		if err := openBrowser(out); err != nil {
			log.Fatal(err)
		}
	}
}

// writeOutput writes h in the format named by path's extension. HTML
// output includes selection widgets when the call left slice
// dimensions unconsumed.
func writeOutput(path string, h render.Handle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".png"):
		return gplot.WritePNG(f, h)
	case strings.HasSuffix(path, ".html"):
		el := h.Elements()[0]
		if len(el.Spec.SliceDims()) > 0 && len(h.Elements()) == 1 {
			return widget.WritePage(f, el.Spec, el.Data, pageTitle(h))
		}
		return render.WriteHTML(f, h, pageTitle(h))
	default:
		return h.WriteSVG(f)
	}
}

func pageTitle(h render.Handle) string {
	spec := h.Elements()[0].Spec
	if t := spec.Title(); t != "" {
		return t
	}
	return spec.String()
}
