// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Qplot plots data files from the command line.
//
// Usage:
//
//	qplot <command> [flags] <args>...
//
// The commands are:
//
//	plot   render a plot of a CSV or NDJSON file
//	serve  serve a live plot over HTTP
//	repl   plot interactively
//
// Each command takes -h for its flags. Plot kinds and options are the
// quickplot library's; unknown option keys pass through to the
// rendering backend.
//
// The input format is chosen by extension: .csv reads a header row and
// columns, anything else is treated as NDJSON with one object per
// line. The output format is chosen by extension too: .svg, .html
// (with selection widgets for unconsumed index dimensions), or .png
// (rendered through the gonum backend).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"golang.org/x/term"

	"github.com/quickplot/quickplot"
	"github.com/quickplot/quickplot/core"
	"github.com/quickplot/quickplot/theme"
)

type subcommand struct {
	name  string
	desc  string
	run   func()
	flags *flag.FlagSet
}

var subcommands = make(map[string]*subcommand)

func registerSubcommand(name, desc string, run func(), flags *flag.FlagSet) {
	subcommands[name] = &subcommand{name, desc, run, flags}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] <args>...\n\nCommands:\n", os.Args[0])
	names := make([]string, 0, len(subcommands))
	for name := range subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s %s\n", name, subcommands[name].desc)
	}
	os.Exit(2)
}

func main() {
	log.SetPrefix("qplot: ")
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
	}
	cmd, ok := subcommands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
	}
	cmd.flags.Parse(os.Args[2:])
	cmd.run()
}

// commonFlags are the call-shaping flags every command shares.
type commonFlags struct {
	kind  string
	x     string
	y     string
	c     string
	by    string
	row   string
	col   string
	index string
	title string
	opts  string
}

func (c *commonFlags) register(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "line", "plot `kind` (see qplot repl's kinds command)")
	f.StringVar(&c.x, "x", "", "`field` for the x axis")
	f.StringVar(&c.y, "y", "", "comma-separated value `fields`")
	f.StringVar(&c.c, "c", "", "`field` for grid cell values")
	f.StringVar(&c.by, "by", "", "comma-separated grouping `fields`")
	f.StringVar(&c.row, "row", "", "`field` for facet rows")
	f.StringVar(&c.col, "col", "", "`field` for facet columns")
	f.StringVar(&c.index, "index", "", "comma-separated index `dimensions` of the input")
	f.StringVar(&c.title, "title", "", "plot `title`")
	f.StringVar(&c.opts, "opts", "", "extra `options` as k=v[,k=v...], passed to the call")
}

// options assembles the plot options from the flags. Values in -opts
// are parsed as bool, int, or float when they look like one.
func (c *commonFlags) options() (core.Kind, quickplot.Options, error) {
	kind, err := core.ParseKind(c.kind)
	if err != nil {
		return "", nil, err
	}
	opts := quickplot.Options{}
	setList := func(key, val string) {
		if val == "" {
			return
		}
		fields := strings.Split(val, ",")
		if len(fields) == 1 {
			opts[key] = fields[0]
		} else {
			opts[key] = fields
		}
	}
	setList("x", c.x)
	setList("y", c.y)
	setList("c", c.c)
	setList("by", c.by)
	setList("row", c.row)
	setList("col", c.col)
	if c.title != "" {
		opts["title"] = c.title
	}
	if c.opts != "" {
		for _, kv := range strings.Split(c.opts, ",") {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return "", nil, fmt.Errorf("malformed option %q (want k=v)", kv)
			}
			opts[k] = parseValue(v)
		}
	}
	return kind, opts, nil
}

func (c *commonFlags) indexFields() []string {
	if c.index == "" {
		return nil
	}
	return strings.Split(c.index, ",")
}

// parseValue guesses the Go type of a flag-supplied option value.
func parseValue(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// loadTheme installs the theme file named by -theme, if any.
func loadTheme(path string) {
	if path == "" {
		return
	}
	d, err := theme.LoadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	theme.Install(d)
}

// stdoutIsTerminal reports whether stdout is a terminal, which decides
// whether plot output defaults to a browser or to stdout.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// openBrowser shows url (or a file path) in the user's browser.
// QPLOT_BROWSER overrides the system opener and may carry arguments.
func openBrowser(url string) error {
	var args []string
	if env := os.Getenv("QPLOT_BROWSER"); env != "" {
		var err error
		args, err = shellquote.Split(env)
		if err != nil {
			return fmt.Errorf("QPLOT_BROWSER: %w", err)
		}
	} else if _, err := exec.LookPath("xdg-open"); err == nil {
		args = []string{"xdg-open"}
	} else {
		args = []string{"open"}
	}
	args = append(args, url)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stderr = os.Stderr
	return cmd.Start()
}
