// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// +build !appengine

package compile

import "unsafe"

// asmBlock turns a raw executable buffer into a callable function by
// casting a pointer-to-pointer-to-code into a Go func value. The emitted
// prologue reads the single variables-pointer argument into its reserved
// register.
type asmBlock struct {
	mem unsafe.Pointer
}

func (b *asmBlock) Invoke(vars []int64) int64 {
	f := (uintptr)(unsafe.Pointer(&b.mem))
	fp := **(**func(unsafe.Pointer) int64)(unsafe.Pointer(&f))
	var varsPtr unsafe.Pointer
	if len(vars) > 0 {
		varsPtr = unsafe.Pointer(&vars[0])
	}
	return fp(varsPtr)
}
