// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jit implements RAJIT, the adaptive strategy selector that picks
// between native x86-64 compilation, a register-based bytecode engine, and
// the Runtime fallback for a given IR stream.
package jit

import (
	goruntime "runtime"

	"github.com/razen-lang/rajit/ir"
	"github.com/razen-lang/rajit/jit/internal/compile"
	"github.com/razen-lang/rajit/runtime"
)

// compiledFunction owns one native buffer plus the variable-slot count the
// caller must allocate before invoking it. The JIT owns the buffer; the
// cache holds an index into natives, never a raw pointer.
type compiledFunction struct {
	unit  compile.NativeCodeUnit
	slots int
}

// nativeBuilder and execAllocator narrow *compile.AMD64Backend and
// *compile.MMapAllocator to the methods JIT needs, so tests can
// substitute a fake backend and allocator instead of emitting and
// mmapping real machine code.
type nativeBuilder interface {
	Build(stream ir.Stream) (code []byte, slots int, err error)
}

type execAllocator interface {
	AllocateExec(asm []byte) (compile.NativeCodeUnit, error)
	Close() error
}

// JIT is RAJIT: one instance per compilation+execution session.
// Instances are single-threaded and share no mutable state.
type JIT struct {
	cache   *Cache
	rt      *runtime.Runtime
	backend nativeBuilder
	alloc   execAllocator
	natives []*compiledFunction
}

// New returns a JIT with an empty cache and a fresh Runtime fallback.
func New() *JIT {
	return &JIT{
		cache:   NewCache(),
		rt:      runtime.New(),
		backend: &compile.AMD64Backend{},
		alloc:   &compile.MMapAllocator{},
	}
}

// SetCleanOutput forwards to the Runtime fallback.
func (j *JIT) SetCleanOutput(clean bool) { j.rt.SetCleanOutput(clean) }

// RegisterFunctionParams forwards to the Runtime fallback.
func (j *JIT) RegisterFunctionParams(name string, params []string) {
	j.rt.RegisterFunctionParams(name, params)
}

// Stats exposes the cache's occupancy and hit/miss counters.
func (j *JIT) Stats() Stats { return j.cache.Stats() }

// Close releases any executable memory the native tier allocated. The
// JIT's lifetime bounds every compiled function's lifetime; callers must
// not invoke CompileAndRun again afterward.
func (j *JIT) Close() error {
	if j.alloc == nil {
		return nil
	}
	return j.alloc.Close()
}

// CompileAndRun selects a strategy for stream and executes it, returning
// the final operand-stack top for the native tier or 0 for the bytecode
// and Runtime tiers when they conclude without error. Native and
// bytecode compilation failures demote transparently to the Runtime
// tier; only a genuinely fatal condition (e.g. division by zero) is
// surfaced to the caller.
func (j *JIT) CompileAndRun(stream ir.Stream) (int64, error) {
	if err := stream.ValidateJumps(); err != nil {
		return 0, newError(InvalidOperation, "%v", err)
	}

	strategy := Select(stream)

	if strategy == StrategyNative && goruntime.GOARCH == "amd64" {
		if v, err, ok := j.runNative(stream); ok {
			return v, err
		}
		// Native compilation failed; fall through to Runtime.
		return 0, j.runRuntime(stream)
	}

	if strategy == StrategyBytecode {
		if err, ok := j.runBytecodeTier(stream); ok {
			return 0, err
		}
		// Bytecode compilation failed; fall through to Runtime.
		return 0, j.runRuntime(stream)
	}

	return 0, j.runRuntime(stream)
}

func (j *JIT) runRuntime(stream ir.Stream) error {
	if err := j.rt.Execute(stream); err != nil {
		return newError(ExecutionFailed, "%v", err)
	}
	return nil
}

// runNative returns (value, error, ok). ok is false when native
// compilation itself failed (the caller must demote to Runtime); ok is
// true for both successful execution and for a fatal runtime error
// surfaced from inside the compiled function.
func (j *JIT) runNative(stream ir.Stream) (int64, error, bool) {
	k := key(StrategyNative, stream)
	if idx, hit := j.cache.lookupNative(k); hit {
		fn := j.natives[idx]
		return fn.unit.Invoke(make([]int64, fn.slots)), nil, true
	}

	code, slots, err := j.backend.Build(stream)
	if err != nil {
		return 0, nil, false
	}
	unit, err := j.alloc.AllocateExec(code)
	if err != nil {
		return 0, nil, false
	}

	fn := &compiledFunction{unit: unit, slots: slots}
	j.natives = append(j.natives, fn)
	j.cache.storeNative(k, len(j.natives)-1)

	return fn.unit.Invoke(make([]int64, fn.slots)), nil, true
}

// runBytecodeTier returns (error, ok). ok is false when bytecode
// compilation itself failed (demote to Runtime); ok is true whether
// execution succeeded or hit a fatal condition (division/modulo by zero).
func (j *JIT) runBytecodeTier(stream ir.Stream) (error, bool) {
	k := key(StrategyBytecode, stream)
	prog, hit := j.cache.lookupBytecode(k)
	if !hit {
		compiled, err := compileBytecode(stream)
		if err != nil {
			return nil, false
		}
		j.cache.storeBytecode(k, compiled)
		prog = compiled
	}

	if _, err := runBytecode(prog); err != nil {
		return err, true
	}
	return nil, true
}
