// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stdlib defines the library-dispatch contract the core consumes
// for module-qualified calls. Most standard library modules (file, http,
// json, os, random, regex, server, time) live outside the core; this
// package gives the contract a minimal, real implementation (math,
// string) so the qualified-call path has something genuine to exercise.
package stdlib

import (
	"fmt"

	"github.com/razen-lang/rajit/value"
)

// Dispatcher is the single external collaborator the Runtime calls into
// for names that are not user-defined functions.
type Dispatcher interface {
	IsBuiltin(name string) bool
	Execute(name string, args []value.Value) (value.Value, error)
	IsModule(name string) bool
	Call(module, function string, args []value.Value) (value.Value, error)
}

// ModuleFunc implements one module.function entry point.
type ModuleFunc func(args []value.Value) (value.Value, error)

// Registry is a Dispatcher built from a fixed module -> function table.
// It never recognizes short (unqualified) builtins; those belong to the
// Runtime itself, so IsBuiltin/Execute always report "none".
type Registry struct {
	modules map[string]map[string]ModuleFunc
}

// NewRegistry builds an empty Registry; use Register to populate it.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]map[string]ModuleFunc)}
}

// Register adds one module.function entry.
func (r *Registry) Register(module, function string, fn ModuleFunc) {
	if r.modules[module] == nil {
		r.modules[module] = make(map[string]ModuleFunc)
	}
	r.modules[module][function] = fn
}

func (r *Registry) IsBuiltin(string) bool { return false }

func (r *Registry) Execute(name string, _ []value.Value) (value.Value, error) {
	return value.Null(), fmt.Errorf("stdlib: %q is not a builtin", name)
}

func (r *Registry) IsModule(module string) bool {
	_, ok := r.modules[module]
	return ok
}

func (r *Registry) Call(module, function string, args []value.Value) (value.Value, error) {
	fns, ok := r.modules[module]
	if !ok {
		return value.Null(), fmt.Errorf("stdlib: unknown module %q", module)
	}
	fn, ok := fns[function]
	if !ok {
		return value.Null(), fmt.Errorf("stdlib: unknown function %q in module %q", function, module)
	}
	return fn(args)
}

// Default returns the Registry covering math.* and string.*.
func Default() *Registry {
	r := NewRegistry()
	registerMath(r)
	registerString(r)
	return r
}
