// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/razen-lang/rajit/ir"
)

func TestSelectNative(t *testing.T) {
	stream := make(ir.Stream, 0, 16)
	for i := 0; i < 14; i++ {
		stream = append(stream, ir.PushInteger(int64(i)))
		if i > 0 {
			stream = append(stream, ir.Simple(ir.OpAdd))
		}
	}
	require.Equal(t, StrategyNative, Select(stream))
}

func TestSelectBytecode(t *testing.T) {
	stream := make(ir.Stream, 0, 24)
	for i := 0; i < 11; i++ {
		stream = append(stream, ir.PushInteger(int64(i)))
		if i > 0 {
			stream = append(stream, ir.Simple(ir.OpAdd))
		}
	}
	stream = append(stream, ir.StoreVar("x"))
	stream = append(stream, ir.Simple(ir.OpPrint), ir.Simple(ir.OpPrint), ir.Simple(ir.OpPrint))
	require.Equal(t, StrategyBytecode, Select(stream))
}

// Float pushers are not native-eligible: the native tier integer-adds
// raw IEEE-754 bit patterns, so a float-heavy stream must land on the
// f64 bytecode engine instead.
func TestSelectFloatStreamAvoidsNative(t *testing.T) {
	stream := make(ir.Stream, 0, 25)
	for i := 0; i < 13; i++ {
		stream = append(stream, ir.PushNumber(float64(i)+0.5))
		if i > 0 {
			stream = append(stream, ir.Simple(ir.OpAdd))
		}
	}
	require.Equal(t, StrategyBytecode, Select(stream))
}

func TestSelectRuntimeForComplexProgram(t *testing.T) {
	stream := ir.Stream{
		ir.PushString("hi"),
		ir.Simple(ir.OpPrint),
		ir.Call("f", 0),
	}
	require.Equal(t, StrategyRuntime, Select(stream))
}

func TestSelectRuntimeForShortProgram(t *testing.T) {
	stream := ir.Stream{ir.PushInteger(1), ir.PushInteger(2), ir.Simple(ir.OpAdd)}
	require.Equal(t, StrategyRuntime, Select(stream))
}
