// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stream

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tidwall/gjson"

	"github.com/quickplot/quickplot/core"
)

// A Source produces rows for a buffer. Rows is closed when the source
// ends; Close stops the source early.
type Source interface {
	Rows() <-chan Row
	Close() error
}

// ChannelSource adapts an existing row channel. Closing the returned
// source does not close ch; the sender owns it.
func ChannelSource(ch <-chan Row) Source {
	out := make(chan Row)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			select {
			case r, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- r:
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()
	return &chanSource{rows: out, done: done}
}

type chanSource struct {
	rows chan Row
	done chan struct{}
}

func (s *chanSource) Rows() <-chan Row { return s.rows }

func (s *chanSource) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}

// tailConfig holds TailSource options.
type tailConfig struct {
	fromEnd bool
	poll    time.Duration
}

// A TailOption configures TailSource.
type TailOption func(*tailConfig)

// FromEnd starts tailing at the current end of the file, skipping
// rows already written. The default replays the whole file first.
func FromEnd() TailOption {
	return func(c *tailConfig) { c.fromEnd = true }
}

// PollInterval sets a fallback polling interval for filesystems where
// change notification is unreliable. Zero disables polling.
func PollInterval(d time.Duration) TailOption {
	return func(c *tailConfig) { c.poll = d }
}

// TailSource follows a growing NDJSON file: every complete line that
// appears becomes one row, with its top-level JSON fields as values.
// JSON numbers arrive as float64, so schemas over tailed files should
// declare numeric fields as Float.
func TailSource(path string, opts ...TailOption) (Source, error) {
	var cfg tailConfig
	for _, o := range opts {
		o(&cfg)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if cfg.fromEnd {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			return nil, err
		}
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		f.Close()
		return nil, err
	}
	s := &tailSource{
		rows:    make(chan Row),
		done:    make(chan struct{}),
		file:    f,
		watcher: w,
		poll:    cfg.poll,
	}
	go s.run()
	return s, nil
}

type tailSource struct {
	rows    chan Row
	done    chan struct{}
	file    *os.File
	watcher *fsnotify.Watcher
	poll    time.Duration
}

func (s *tailSource) Rows() <-chan Row { return s.rows }

func (s *tailSource) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}

func (s *tailSource) run() {
	defer close(s.rows)
	defer s.file.Close()
	defer s.watcher.Close()

	var ticks <-chan time.Time
	if s.poll > 0 {
		t := time.NewTicker(s.poll)
		defer t.Stop()
		ticks = t.C
	}

	r := bufio.NewReader(s.file)
	// partial accumulates an incomplete trailing line until the
	// writer finishes it.
	var partial []byte
	drain := func() bool {
		for {
			line, err := r.ReadBytes('\n')
			if len(line) > 0 && err == nil {
				line = append(partial, line...)
				partial = nil
				if row, ok := parseLine(line); ok {
					select {
					case s.rows <- row:
					case <-s.done:
						return false
					}
				}
				continue
			}
			partial = append(partial, line...)
			return true
		}
	}

	if !drain() {
		return
	}
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				core.Warning.Printf("tailed file %s went away", ev.Name)
				return
			}
			if ev.Has(fsnotify.Write) && !drain() {
				return
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			core.Warning.Printf("tail watcher: %v", err)
		case <-ticks:
			if !drain() {
				return
			}
		}
	}
}

// parseLine converts one NDJSON line to a row. Blank lines and
// non-object lines are skipped with a warning.
func parseLine(line []byte) (Row, bool) {
	s := strings.TrimSpace(string(line))
	if s == "" {
		return nil, false
	}
	if !gjson.Valid(s) {
		core.Warning.Printf("skipping malformed NDJSON line: %.60q", s)
		return nil, false
	}
	obj := gjson.Parse(s)
	if !obj.IsObject() {
		core.Warning.Printf("skipping non-object NDJSON line: %.60q", s)
		return nil, false
	}
	row := make(Row)
	obj.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Number:
			row[key.Str] = value.Num
		case gjson.String:
			row[key.Str] = value.Str
		case gjson.True:
			row[key.Str] = true
		case gjson.False:
			row[key.Str] = false
		default:
			// Nested objects and nulls have no schema kind.
		}
		return true
	})
	if len(row) == 0 {
		return nil, false
	}
	return row, true
}

// Pump feeds src into buf until the source ends, logging and skipping
// rows the buffer rejects. It blocks; callers that want it in the
// background run it in their own goroutine.
func Pump(buf *Buffer, src Source) {
	for row := range src.Rows() {
		if err := buf.Append(row); err != nil {
			core.Warning.Printf("dropping row: %v", err)
		}
	}
}

// SchemaFromRow infers a buffer schema from a sample row: JSON-shaped
// values map to Float, String, and Bool fields, in sorted name order
// so the inference is deterministic.
func SchemaFromRow(row Row) (core.Schema, error) {
	var schema core.Schema
	for _, name := range sortedKeys(row) {
		var kind core.FieldKind
		switch row[name].(type) {
		case float64, int, int64:
			kind = core.Float
		case string:
			kind = core.String
		case bool:
			kind = core.Bool
		case time.Time:
			kind = core.Time
		default:
			return nil, fmt.Errorf("stream: field %q has no schema kind (%T)", name, row[name])
		}
		schema = append(schema, core.Field{Name: name, Kind: kind})
	}
	return schema, nil
}

func sortedKeys(row Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
