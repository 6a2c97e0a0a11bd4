// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedKind is returned by Call and ParseKind for a
	// kind outside the fixed kind set.
	ErrUnsupportedKind = errors.New("quickplot: unsupported plot kind")

	// ErrSchemaMismatch is returned when an option names a field
	// the container's schema does not have, or when defaulting
	// rules find no usable field.
	ErrSchemaMismatch = errors.New("quickplot: field not in schema")
)

// An OptionError reports an option whose value has the wrong type or
// an out-of-range value.
type OptionError struct {
	Key   string
	Want  string
	Value any
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("quickplot: option %q wants %s, got %v (%T)", e.Key, e.Want, e.Value, e.Value)
}
