// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/quickplot/quickplot/container/ggtable"
	"github.com/quickplot/quickplot/core"
	"github.com/quickplot/quickplot/stream"
)

// loadContainer reads a data file into a container. CSV files become
// go-gg table frames; anything else is read as NDJSON into an
// unbounded stream buffer. index names the columns to declare as
// index dimensions.
func loadContainer(path string, index []string) (core.Container, error) {
	if strings.HasSuffix(path, ".csv") {
		return ggtable.ReadCSVFile(path, index...)
	}
	return readNDJSON(path, index)
}

// readNDJSON reads a whole NDJSON file into a buffer, inferring the
// schema from the first object line.
func readNDJSON(path string, index []string) (*stream.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf *stream.Buffer
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<16), 1<<24)
	for sc.Scan() {
		row, ok := ndjsonRow(sc.Text())
		if !ok {
			continue
		}
		if buf == nil {
			schema, err := ndjsonSchema(row, index)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			if buf, err = stream.NewBuffer(schema, 0); err != nil {
				return nil, err
			}
		}
		if err := buf.Append(row); err != nil {
			core.Warning.Printf("%s: dropping row: %v", path, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if buf == nil {
		return nil, fmt.Errorf("%s: no object rows", path)
	}
	return buf, nil
}

// ndjsonRow parses one NDJSON line into a stream row.
func ndjsonRow(line string) (stream.Row, bool) {
	line = strings.TrimSpace(line)
	if line == "" || !gjson.Valid(line) {
		return nil, false
	}
	obj := gjson.Parse(line)
	if !obj.IsObject() {
		return nil, false
	}
	row := make(stream.Row)
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
		}
		return true
	})
	return row, len(row) > 0
}

// ndjsonSchema infers a schema from a sample row and marks the index
// dimensions.
func ndjsonSchema(row stream.Row, index []string) (core.Schema, error) {
	schema, err := stream.SchemaFromRow(row)
	if err != nil {
		return nil, err
	}
	for _, name := range index {
		found := false
		for i := range schema {
			if schema[i].Name == name {
				schema[i].Index = true
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("index field %q not in data (have %s)",
				name, strings.Join(schema.Names(), ", "))
		}
	}
	return schema, nil
}
