// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/quickplot/quickplot"
	"github.com/quickplot/quickplot/core"
)

var cmdReplFlags = flag.NewFlagSet(os.Args[0]+" repl", flag.ExitOnError)

var replCmd struct {
	themeFile string
}

func init() {
	f := cmdReplFlags
	f.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s repl [flags] [input]\n", os.Args[0])
		f.PrintDefaults()
	}
	f.StringVar(&replCmd.themeFile, "theme", "", "load default options from YAML `file`")
	registerSubcommand("repl", "[flags] [input] - plot interactively", cmdRepl, f)
}

const replHelp = `Commands:
  load <file> [index...]   load a CSV or NDJSON file
  kind <kind>              set the plot kind (default line)
  set <k>=<v> ...          set plot options
  unset <k> ...            clear plot options
  show                     show the loaded data's schema and current options
  kinds                    list the supported plot kinds
  plot [file]              render (default: browser; file by extension)
  help                     show this help
  quit                     exit
`

// replState is the REPL's current call under construction.
type replState struct {
	acc  *quickplot.Accessor
	path string
	kind core.Kind
	opts quickplot.Options
}

func cmdRepl() {
	if cmdReplFlags.NArg() > 1 {
		cmdReplFlags.Usage()
		os.Exit(2)
	}
	loadTheme(replCmd.themeFile)

	st := &replState{kind: core.KindLine, opts: quickplot.Options{}}
	if cmdReplFlags.NArg() == 1 {
		if err := st.load([]string{cmdReplFlags.Arg(0)}); err != nil {
			log.Fatal(err)
		}
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := filepath.Join(os.TempDir(), ".qplot_history")
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, ".qplot_history")
	}
	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		line, err := ln.Prompt("qplot> ")
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return
		}
		if err != nil {
			log.Fatal(err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		args := strings.Fields(line)
		cmd, args := args[0], args[1:]
		if cmd == "quit" || cmd == "exit" {
			return
		}
		if err := st.dispatch(cmd, args); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}
}

func (st *replState) dispatch(cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Print(replHelp)
		return nil
	case "kinds":
		var names []string
		for _, k := range core.Kinds() {
			names = append(names, string(k))
		}
		fmt.Println(strings.Join(names, " "))
		return nil
	case "load":
		return st.load(args)
	case "kind":
		if len(args) != 1 {
			return fmt.Errorf("usage: kind <kind>")
		}
		k, err := core.ParseKind(args[0])
		if err != nil {
			return err
		}
		st.kind = k
		return nil
	case "set":
		if len(args) == 0 {
			return fmt.Errorf("usage: set <k>=<v> ...")
		}
		for _, kv := range args {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("malformed option %q (want k=v)", kv)
			}
			st.opts[k] = parseValue(v)
		}
		return nil
	case "unset":
		for _, k := range args {
			delete(st.opts, k)
		}
		return nil
	case "show":
		return st.show()
	case "plot":
		return st.plot(args)
	}
	return fmt.Errorf("unknown command %q (try help)", cmd)
}

func (st *replState) load(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: load <file> [index...]")
	}
	data, err := loadContainer(args[0], args[1:])
	if err != nil {
		return err
	}
	acc, err := quickplot.Plot(data)
	if err != nil {
		return err
	}
	st.acc, st.path = acc, args[0]
	fmt.Printf("loaded %s: %s\n", args[0], schemaLine(data.Schema()))
	return nil
}

func (st *replState) show() error {
	if st.acc == nil {
		return fmt.Errorf("no data loaded (try load)")
	}
	fmt.Printf("data: %s (%s)\n", st.path, schemaLine(st.acc.Data().Schema()))
	fmt.Printf("kind: %s\n", st.kind)
	keys := make([]string, 0, len(st.opts))
	for k := range st.opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s = %v\n", k, st.opts[k])
	}
	return nil
}

func (st *replState) plot(args []string) error {
	if st.acc == nil {
		return fmt.Errorf("no data loaded (try load)")
	}
	h, err := st.acc.Call(string(st.kind), st.opts)
	if err != nil {
		return err
	}
	out := filepath.Join(os.TempDir(), "qplot.html")
	open := true
	if len(args) > 0 {
		out, open = args[0], false
	}
	if err := writeOutput(out, h); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	if open {
		return openBrowser(out)
	}
	return nil
}

func schemaLine(schema core.Schema) string {
	parts := make([]string, len(schema))
	for i, f := range schema {
		parts[i] = fmt.Sprintf("%s:%s", f.Name, f.Kind)
		if f.Index {
			parts[i] += "*"
		}
	}
	return strings.Join(parts, " ")
}
