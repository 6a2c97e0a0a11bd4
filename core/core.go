// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package core implements plot-call dispatch: it turns a plot kind, a
// data container's schema, and a set of keyword options into a
// normalized, immutable Spec that a rendering backend can consume.
//
// The three pieces fit together as follows. A Container describes its
// fields through Schema. Call validates a Kind and its Options against
// that schema, merges defaults under the caller's options, and
// classifies every indexed dimension the call did not consume as a
// slice dimension (the source of selection widgets). The resulting
// Spec carries no data; rendering is somebody else's job.
//
// Call never mutates the container, never renders, and holds no state
// beyond the process-wide default set installed with SetDefaults.
package core

import (
	"log"
	"os"
)

// Warning is a logger for reporting conditions that don't prevent a
// plot call from completing, but may lead to unexpected results.
var Warning = log.New(os.Stderr, "[quickplot] ", log.Lshortfile)
