// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/quickplot/quickplot/core"
	"github.com/quickplot/quickplot/serve"
	"github.com/quickplot/quickplot/stream"
)

var cmdServeFlags = flag.NewFlagSet(os.Args[0]+" serve", flag.ExitOnError)

var serveCmd struct {
	commonFlags
	addr      string
	themeFile string
	follow    bool
	fromEnd   bool
	backlog   int
	interval  time.Duration
	open      bool
}

func init() {
	f := cmdServeFlags
	f.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s serve [flags] <input>\n", os.Args[0])
		f.PrintDefaults()
	}
	serveCmd.register(f)
	f.StringVar(&serveCmd.addr, "http", "localhost:8042", "serve on `address`")
	f.StringVar(&serveCmd.themeFile, "theme", "", "load default options from YAML `file`")
	f.BoolVar(&serveCmd.follow, "follow", false, "tail the input as growing NDJSON and push redraws")
	f.BoolVar(&serveCmd.fromEnd, "from-end", false, "with -follow, skip rows already in the file")
	f.IntVar(&serveCmd.backlog, "backlog", 1000, "with -follow, keep at most `n` rows (0 for unbounded)")
	f.DurationVar(&serveCmd.interval, "interval", time.Second, "poll `period` for pushed redraws")
	f.BoolVar(&serveCmd.open, "open", false, "open the page in a browser")
	registerSubcommand("serve", "[flags] <input> - serve a live plot over HTTP", cmdServe, f)
}

func cmdServe() {
	if cmdServeFlags.NArg() != 1 {
		cmdServeFlags.Usage()
		os.Exit(2)
	}
	loadTheme(serveCmd.themeFile)
	kind, opts, err := serveCmd.options()
	if err != nil {
		log.Fatal(err)
	}
	opts["dynamic"] = true

	path := cmdServeFlags.Arg(0)
	var data core.Container
	if serveCmd.follow {
		data, err = followNDJSON(path)
	} else {
		data, err = loadContainer(path, serveCmd.indexFields())
	}
	if err != nil {
		log.Fatal(err)
	}

	spec, err := core.Call(data, kind, opts)
	if err != nil {
		log.Fatal(err)
	}
	s, err := serve.New(spec, data, serve.Interval(serveCmd.interval))
	if err != nil {
		log.Fatal(err)
	}

	url := "http://" + serveCmd.addr + "/"
	log.SetFlags(log.LstdFlags)
	log.Printf("serving %s on %s", spec, url)
	if serveCmd.open {
		if err := openBrowser(url); err != nil {
			log.Print(err)
		}
	}
	log.Fatal(s.ListenAndServe(serveCmd.addr))
}

// followNDJSON tails path into a bounded buffer: schema from the
// file's first object line, then a background pump from the tail
// source.
func followNDJSON(path string) (*stream.Buffer, error) {
	sample, err := peekRow(path)
	if err != nil {
		return nil, err
	}
	schema, err := ndjsonSchema(sample, serveCmd.indexFields())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	buf, err := stream.NewBuffer(schema, serveCmd.backlog)
	if err != nil {
		return nil, err
	}
	var tailOpts []stream.TailOption
	if serveCmd.fromEnd {
		tailOpts = append(tailOpts, stream.FromEnd())
	}
	src, err := stream.TailSource(path, tailOpts...)
	if err != nil {
		return nil, err
	}
	go stream.Pump(buf, src)
	return buf, nil
}

// peekRow reads the first object line of an NDJSON file.
func peekRow(path string) (stream.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if row, ok := ndjsonRow(sc.Text()); ok {
			return row, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%s: no object rows to infer a schema from", path)
}
