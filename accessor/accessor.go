// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package accessor binds plotting namespaces to foreign data container
// types without modifying those types.
//
// The binding is split in two. An Adapter teaches a Registry how to
// wrap some foreign value (a data frame, a matrix, a stream buffer) in
// a core.Container; adapter packages register themselves in init, the
// way database/sql drivers do. A namespace builder turns a
// core.Container into the object callers actually use, such as the
// quickplot accessor with one method per plot kind. Namespace(v, name)
// runs both steps.
//
// Registration is init-once: re-registering the identical adapter or
// builder is a no-op, while registering a different one under a taken
// name reports ErrRegistrationConflict.
package accessor

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/quickplot/quickplot/core"
)

var (
	// ErrRegistrationConflict is returned when a name is already
	// registered with different semantics.
	ErrRegistrationConflict = errors.New("accessor: conflicting registration")

	// ErrNoAdapter is returned by Adapt for values no registered
	// adapter matches.
	ErrNoAdapter = errors.New("accessor: no adapter for value")

	// ErrNoNamespace is returned for unregistered namespace names.
	ErrNoNamespace = errors.New("accessor: namespace not registered")
)

// An Adapter wraps values of some foreign container type in a
// core.Container.
type Adapter struct {
	// Name identifies the adapter, typically the package that
	// registered it.
	Name string

	// Match reports whether the adapter can wrap v.
	Match func(v any) bool

	// Adapt wraps v. It is only called when Match(v) is true.
	Adapt func(v any) (core.Container, error)
}

// A NamespaceBuilder constructs a namespace object bound to a single
// container, on first access.
type NamespaceBuilder func(c core.Container) (any, error)

// A Registry maps foreign container types to adapters and namespace
// names to builders. The zero value is ready to use.
type Registry struct {
	mu         sync.RWMutex
	adapters   []Adapter
	namespaces map[string]NamespaceBuilder
}

// Default is the registry package-level registrations target.
var Default = new(Registry)

// RegisterAdapter registers a. Adapters are consulted in registration
// order, so more specific adapters should be registered first.
// Re-registering the same adapter function under the same name is a
// no-op; a different function under a taken name is a conflict.
func (r *Registry) RegisterAdapter(a Adapter) error {
	if a.Name == "" || a.Match == nil || a.Adapt == nil {
		return fmt.Errorf("accessor: adapter %q incomplete", a.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, old := range r.adapters {
		if old.Name != a.Name {
			continue
		}
		if sameFunc(old.Adapt, a.Adapt) {
			return nil
		}
		return fmt.Errorf("%w: adapter %q", ErrRegistrationConflict, a.Name)
	}
	r.adapters = append(r.adapters, a)
	return nil
}

// RegisterNamespace registers build under name. Like RegisterAdapter,
// identical re-registration is a no-op and a different builder under a
// taken name is a conflict.
func (r *Registry) RegisterNamespace(name string, build NamespaceBuilder) error {
	if name == "" || build == nil {
		return fmt.Errorf("accessor: namespace %q incomplete", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.namespaces[name]; ok {
		if sameFunc(old, build) {
			return nil
		}
		return fmt.Errorf("%w: namespace %q", ErrRegistrationConflict, name)
	}
	if r.namespaces == nil {
		r.namespaces = make(map[string]NamespaceBuilder)
	}
	r.namespaces[name] = build
	return nil
}

// Adapt wraps v in a core.Container using the first matching adapter.
// A value that already is a core.Container passes through unchanged.
func (r *Registry) Adapt(v any) (core.Container, error) {
	if c, ok := v.(core.Container); ok {
		return c, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.adapters {
		if a.Match(v) {
			return a.Adapt(v)
		}
	}
	return nil, fmt.Errorf("%w: %T", ErrNoAdapter, v)
}

// Namespace adapts v and builds the named namespace object bound to
// it. This is the "first access" step of accessor binding: the
// returned object is freshly constructed for this container.
func (r *Registry) Namespace(v any, name string) (any, error) {
	r.mu.RLock()
	build, ok := r.namespaces[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoNamespace, name)
	}
	c, err := r.Adapt(v)
	if err != nil {
		return nil, err
	}
	return build(c)
}

// Adapters returns the names of the registered adapters in
// registration order.
func (r *Registry) Adapters() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.adapters))
	for i, a := range r.adapters {
		names[i] = a.Name
	}
	return names
}

// RegisterAdapter registers a in the default registry and panics on
// conflict. Adapter packages call this from init, where a conflict is
// a programming error.
func RegisterAdapter(a Adapter) {
	if err := Default.RegisterAdapter(a); err != nil {
		panic(err)
	}
}

// RegisterNamespace registers build in the default registry and panics
// on conflict.
func RegisterNamespace(name string, build NamespaceBuilder) {
	if err := Default.RegisterNamespace(name, build); err != nil {
		panic(err)
	}
}

// sameFunc reports whether two function values share an entry point.
// This is what makes duplicate init-time registration idempotent.
func sameFunc(a, b any) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
