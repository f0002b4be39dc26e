// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jit

import "github.com/razen-lang/rajit/ir"

// Strategy is one of the three execution tiers.
type Strategy int

const (
	StrategyRuntime Strategy = iota
	StrategyBytecode
	StrategyNative
)

func (s Strategy) String() string {
	switch s {
	case StrategyNative:
		return "native"
	case StrategyBytecode:
		return "bytecode"
	default:
		return "runtime"
	}
}

// metrics counts instructions by class over a whole stream.
type metrics struct {
	length      int
	arithmetic  int
	complex     int
	variable    int
	controlFlow int
}

// arithmeticEligible reports whether op belongs to the native-eligible
// class: integer/bool/null pushers, stack shufflers, arithmetic,
// comparisons, logical, bitwise. Every op listed here has a real
// lowering in the native backend. PushNumber is deliberately absent:
// the native tier treats every stack slot as i64, so float-heavy
// streams must land on the f64 bytecode engine or the Runtime instead.
func arithmeticEligible(op ir.Op) bool {
	switch op {
	case ir.OpPushInteger, ir.OpPushBoolean, ir.OpPushNull,
		ir.OpPop, ir.OpDup, ir.OpSwap,
		ir.OpAdd, ir.OpSubtract, ir.OpMultiply, ir.OpDivide, ir.OpModulo, ir.OpNegate,
		ir.OpEqual, ir.OpNotEqual, ir.OpGreaterThan, ir.OpGreaterEqual, ir.OpLessThan, ir.OpLessEqual,
		ir.OpAnd, ir.OpOr, ir.OpNot,
		ir.OpBitwiseAnd, ir.OpBitwiseOr, ir.OpBitwiseXor, ir.OpBitwiseNot, ir.OpLeftShift, ir.OpRightShift:
		return true
	default:
		return false
	}
}

// complexOp reports whether op belongs to the runtime-only class: calls,
// method calls, I/O, aggregate ops, exceptions, string push, library
// call, sleep, Power/FloorDiv, function definitions.
func complexOp(op ir.Op) bool {
	switch op {
	case ir.OpCall, ir.OpMethodCall,
		ir.OpPrint, ir.OpReadInput, ir.OpExit,
		ir.OpCreateArray, ir.OpCreateMap, ir.OpGetIndex, ir.OpSetIndex, ir.OpGetKey, ir.OpSetKey,
		ir.OpSetupTryCatch, ir.OpClearTryCatch, ir.OpThrowException,
		ir.OpPushString, ir.OpLibraryCall, ir.OpSleep,
		ir.OpPower, ir.OpFloorDiv,
		ir.OpDefineFunction:
		return true
	default:
		return false
	}
}

func controlFlowOp(op ir.Op) bool {
	switch op {
	case ir.OpJump, ir.OpJumpIfFalse, ir.OpJumpIfTrue, ir.OpLabel, ir.OpReturn:
		return true
	default:
		return false
	}
}

func variableOp(op ir.Op) bool {
	switch op {
	case ir.OpStoreVar, ir.OpLoadVar, ir.OpSetGlobal:
		return true
	default:
		return false
	}
}

func measure(stream ir.Stream) metrics {
	m := metrics{length: len(stream)}
	for _, instr := range stream {
		switch {
		case variableOp(instr.Op):
			m.variable++
		case controlFlowOp(instr.Op):
			m.controlFlow++
		case complexOp(instr.Op):
			m.complex++
		case arithmeticEligible(instr.Op):
			m.arithmetic++
		}
	}
	return m
}

// Select picks the execution tier for an IR stream: native for hot
// arithmetic-dominated streams, bytecode for longer mixed streams with
// little control flow, and the Runtime for everything else.
func Select(stream ir.Stream) Strategy {
	m := measure(stream)
	ratio := 0.0
	if m.length > 0 {
		ratio = float64(m.arithmetic) / float64(m.length)
	}
	if m.arithmetic > 10 && m.complex < 3 && ratio > 0.6 {
		return StrategyNative
	}
	if m.length > 20 && m.arithmetic > 5 && (m.complex+m.controlFlow) < 10 {
		return StrategyBytecode
	}
	return StrategyRuntime
}
