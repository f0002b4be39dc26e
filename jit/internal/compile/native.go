// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compile emits executable x86-64 machine code for the
// arithmetic-native-eligible subset of the IR and provides the
// executable-memory allocator that turns assembled bytes into a callable
// function.
package compile

// NativeCodeUnit represents a compiled native function.
type NativeCodeUnit interface {
	// Invoke runs the compiled function over vars (one int64 slot per
	// unique variable name, per the pre-scan in AMD64Backend.Build) and
	// returns the top of the function's operand stack, or 0 if the
	// function never pushed anything.
	Invoke(vars []int64) int64
}
