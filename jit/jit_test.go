// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jit

import (
	goruntime "runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/razen-lang/rajit/ir"
	"github.com/razen-lang/rajit/jit/internal/compile"
	"github.com/razen-lang/rajit/runtime"
)

// fakeNativeUnit stands in for a compiled machine-code buffer so these
// tests never mmap real executable memory.
type fakeNativeUnit struct{ ret int64 }

func (f *fakeNativeUnit) Invoke(vars []int64) int64 { return f.ret }

type fakeBuilder struct {
	calls int
	fail  bool
}

func (b *fakeBuilder) Build(stream ir.Stream) ([]byte, int, error) {
	b.calls++
	if b.fail {
		return nil, 0, newError(CompilationFailed, "fake build failure")
	}
	return []byte{0x90}, 0, nil
}

type fakeAllocator struct {
	ret int64
}

func (a *fakeAllocator) AllocateExec(asm []byte) (compile.NativeCodeUnit, error) {
	return &fakeNativeUnit{ret: a.ret}, nil
}

func (a *fakeAllocator) Close() error { return nil }

func nativeEligibleStream() ir.Stream {
	stream := make(ir.Stream, 0, 16)
	for i := 0; i < 14; i++ {
		stream = append(stream, ir.PushInteger(int64(i)))
		if i > 0 {
			stream = append(stream, ir.Simple(ir.OpAdd))
		}
	}
	return stream
}

func skipUnlessAMD64(t *testing.T) {
	t.Helper()
	if goruntime.GOARCH != "amd64" {
		t.Skipf("native tier requires amd64, running on %s", goruntime.GOARCH)
	}
}

func TestCompileAndRunNativeUsesBuilderAndAllocator(t *testing.T) {
	skipUnlessAMD64(t)
	builder := &fakeBuilder{}
	j := &JIT{
		cache:   NewCache(),
		rt:      runtime.New(),
		backend: builder,
		alloc:   &fakeAllocator{ret: 42},
	}

	v, err := j.CompileAndRun(nativeEligibleStream())
	require.NoError(t, err)
	require.Equal(t, int64(42), v)
	require.Equal(t, 1, builder.calls)
}

func TestCompileAndRunNativeCachesAcrossCalls(t *testing.T) {
	skipUnlessAMD64(t)
	builder := &fakeBuilder{}
	j := &JIT{
		cache:   NewCache(),
		rt:      runtime.New(),
		backend: builder,
		alloc:   &fakeAllocator{ret: 7},
	}

	stream := nativeEligibleStream()
	_, err := j.CompileAndRun(stream)
	require.NoError(t, err)
	_, err = j.CompileAndRun(stream)
	require.NoError(t, err)

	require.Equal(t, 1, builder.calls)
	require.Equal(t, 1, j.Stats().NativeEntries)
}

func TestCompileAndRunDemotesOnNativeBuildFailure(t *testing.T) {
	j := &JIT{
		cache:   NewCache(),
		rt:      runtime.New(),
		backend: &fakeBuilder{fail: true},
		alloc:   &fakeAllocator{},
	}

	v, err := j.CompileAndRun(nativeEligibleStream())
	require.NoError(t, err)
	require.Equal(t, int64(0), v)
}

func TestCompileAndRunRuntimeFallback(t *testing.T) {
	j := New()
	stream := ir.Stream{
		ir.PushString("Hi, "), ir.PushString("Raz"), ir.PushString("en"),
		ir.Simple(ir.OpAdd), ir.Simple(ir.OpAdd), ir.Simple(ir.OpPrint),
	}
	v, err := j.CompileAndRun(stream)
	require.NoError(t, err)
	require.Equal(t, int64(0), v)
}

func TestCompileAndRunRejectsInvalidJumps(t *testing.T) {
	j := New()
	_, err := j.CompileAndRun(ir.Stream{ir.Jump(99)})
	require.Error(t, err)

	var jerr *Error
	require.ErrorAs(t, err, &jerr)
	require.Equal(t, InvalidOperation, jerr.Kind)
}

func TestCompileAndRunDivisionByZeroSurfaces(t *testing.T) {
	j := New()
	_, err := j.CompileAndRun(ir.Stream{ir.PushInteger(1), ir.PushInteger(0), ir.Simple(ir.OpDivide)})
	require.Error(t, err)
}
