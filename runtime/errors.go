// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import "fmt"

// ErrMissingMethodName is returned when a MethodCall cannot resolve a
// function name for its receiver. It is never absorbed.
type ErrMissingMethodName struct {
	Method string
}

func (e *ErrMissingMethodName) Error() string {
	return fmt.Sprintf("no method named %q could be resolved", e.Method)
}

// ErrUnknownBuiltin is returned by the builtin dispatcher for an
// unrecognized short name.
type ErrUnknownBuiltin struct {
	Name string
}

func (e *ErrUnknownBuiltin) Error() string {
	return fmt.Sprintf("unknown builtin %q", e.Name)
}
