// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jit

import "fmt"

// Kind identifies one of the JIT's error classes.
type Kind int

const (
	// CompilationFailed means the selector chose Native or Bytecode and
	// code emission aborted (buffer allocation, unsupported opcode mid
	// stream). The JIT retries transparently on the Runtime tier.
	CompilationFailed Kind = iota
	// ExecutionFailed means a runtime-fatal condition was reached inside
	// a tier (division/modulo by zero, unwrap of Err/None, missing
	// method name). Surfaced to the caller, never retried.
	ExecutionFailed
	// CachingFailed is reserved; Cache is infallible so this is never
	// produced by this implementation.
	CachingFailed
	// RuntimeError is reserved for a failure of the Runtime fallback
	// itself; CompileAndRun reports every error the Runtime returns as
	// ExecutionFailed, so this kind is not produced.
	RuntimeError
	// InvalidOperation flags a structural IR violation: CompileAndRun
	// returns it before execution for a stream whose jump targets fall
	// outside the stream.
	InvalidOperation
)

func (k Kind) String() string {
	switch k {
	case CompilationFailed:
		return "CompilationFailed"
	case ExecutionFailed:
		return "ExecutionFailed"
	case CachingFailed:
		return "CachingFailed"
	case RuntimeError:
		return "RuntimeError"
	case InvalidOperation:
		return "InvalidOperation"
	default:
		return "Unknown"
	}
}

// Error is the JIT's single error type.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("jit: %s: %s", e.Kind, e.Msg)
}

func newError(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}
