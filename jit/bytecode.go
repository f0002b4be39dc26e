// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jit

import (
	"github.com/razen-lang/rajit/ir"
)

// bcOp is the bytecode engine's opcode set: the register-based subset of
// ir.Op (arithmetic, comparisons, logical, bitwise, LoadVar/StoreVar
// against registers, stack shufflers, constant push).
type bcOp uint8

const (
	bcPushConst bcOp = iota
	bcLoadReg
	bcStoreReg
	bcPop
	bcDup
	bcSwap
	bcAdd
	bcSub
	bcMul
	bcDiv
	bcMod
	bcNeg
	bcEq
	bcNeq
	bcGt
	bcGe
	bcLt
	bcLe
	bcAnd
	bcOr
	bcNot
	bcBAnd
	bcBOr
	bcBXor
	bcBNot
	bcShl
	bcShr
)

// maxRegisters caps the virtual register file.
const maxRegisters = 256

// bcInstr is one bytecode instruction: a constant payload for bcPushConst,
// a register index for bcLoadReg/bcStoreReg, nothing otherwise.
type bcInstr struct {
	op  bcOp
	num float64
	reg int
}

// compileBytecode lowers an IR stream into the register-based bytecode
// form. Control flow and complex opcodes are rejected outright with a
// CompilationFailed error the JIT uses to demote to the Runtime tier.
func compileBytecode(stream ir.Stream) ([]bcInstr, error) {
	regs := make(map[string]int)
	nextReg := 0
	regFor := func(name string) (int, error) {
		if idx, ok := regs[name]; ok {
			return idx, nil
		}
		if nextReg >= maxRegisters {
			return 0, newError(CompilationFailed, "bytecode: out of registers (>%d variables)", maxRegisters)
		}
		regs[name] = nextReg
		nextReg++
		return nextReg - 1, nil
	}

	prog := make([]bcInstr, 0, len(stream))
	for _, instr := range stream {
		switch instr.Op {
		case ir.OpPushInteger:
			prog = append(prog, bcInstr{op: bcPushConst, num: float64(instr.IntVal)})
		case ir.OpPushNumber:
			prog = append(prog, bcInstr{op: bcPushConst, num: instr.NumVal})
		case ir.OpPushBoolean:
			v := 0.0
			if instr.BoolVal {
				v = 1.0
			}
			prog = append(prog, bcInstr{op: bcPushConst, num: v})
		case ir.OpPushNull:
			prog = append(prog, bcInstr{op: bcPushConst, num: 0})
		case ir.OpPop:
			prog = append(prog, bcInstr{op: bcPop})
		case ir.OpDup:
			prog = append(prog, bcInstr{op: bcDup})
		case ir.OpSwap:
			prog = append(prog, bcInstr{op: bcSwap})
		case ir.OpStoreVar, ir.OpSetGlobal:
			reg, err := regFor(instr.Name)
			if err != nil {
				return nil, err
			}
			prog = append(prog, bcInstr{op: bcStoreReg, reg: reg})
		case ir.OpLoadVar:
			reg, err := regFor(instr.Name)
			if err != nil {
				return nil, err
			}
			prog = append(prog, bcInstr{op: bcLoadReg, reg: reg})
		case ir.OpAdd:
			prog = append(prog, bcInstr{op: bcAdd})
		case ir.OpSubtract:
			prog = append(prog, bcInstr{op: bcSub})
		case ir.OpMultiply:
			prog = append(prog, bcInstr{op: bcMul})
		case ir.OpDivide:
			prog = append(prog, bcInstr{op: bcDiv})
		case ir.OpModulo:
			prog = append(prog, bcInstr{op: bcMod})
		case ir.OpNegate:
			prog = append(prog, bcInstr{op: bcNeg})
		case ir.OpEqual:
			prog = append(prog, bcInstr{op: bcEq})
		case ir.OpNotEqual:
			prog = append(prog, bcInstr{op: bcNeq})
		case ir.OpGreaterThan:
			prog = append(prog, bcInstr{op: bcGt})
		case ir.OpGreaterEqual:
			prog = append(prog, bcInstr{op: bcGe})
		case ir.OpLessThan:
			prog = append(prog, bcInstr{op: bcLt})
		case ir.OpLessEqual:
			prog = append(prog, bcInstr{op: bcLe})
		case ir.OpAnd:
			prog = append(prog, bcInstr{op: bcAnd})
		case ir.OpOr:
			prog = append(prog, bcInstr{op: bcOr})
		case ir.OpNot:
			prog = append(prog, bcInstr{op: bcNot})
		case ir.OpBitwiseAnd:
			prog = append(prog, bcInstr{op: bcBAnd})
		case ir.OpBitwiseOr:
			prog = append(prog, bcInstr{op: bcBOr})
		case ir.OpBitwiseXor:
			prog = append(prog, bcInstr{op: bcBXor})
		case ir.OpBitwiseNot:
			prog = append(prog, bcInstr{op: bcBNot})
		case ir.OpLeftShift:
			prog = append(prog, bcInstr{op: bcShl})
		case ir.OpRightShift:
			prog = append(prog, bcInstr{op: bcShr})
		default:
			return nil, newError(CompilationFailed, "bytecode: unsupported opcode %s", instr.Op)
		}
	}
	return prog, nil
}

// runBytecode executes prog over an array-backed f64 operand stack and a
// 256-slot f64 register file. Integer-width operations treat the f64 as
// i64 via lossy cast, a known precision hazard above 2^53. Division and
// modulo by zero are fatal to this engine.
func runBytecode(prog []bcInstr) (float64, error) {
	var regs [maxRegisters]float64
	stack := make([]float64, 0, 16)

	pop := func() float64 {
		n := len(stack) - 1
		v := stack[n]
		stack = stack[:n]
		return v
	}
	push := func(v float64) { stack = append(stack, v) }
	boolOf := func(b bool) float64 {
		if b {
			return 1
		}
		return 0
	}

	for _, instr := range prog {
		switch instr.op {
		case bcPushConst:
			push(instr.num)
		case bcLoadReg:
			push(regs[instr.reg])
		case bcStoreReg:
			regs[instr.reg] = pop()
		case bcPop:
			pop()
		case bcDup:
			v := stack[len(stack)-1]
			push(v)
		case bcSwap:
			n := len(stack)
			stack[n-1], stack[n-2] = stack[n-2], stack[n-1]
		case bcAdd:
			b, a := pop(), pop()
			push(a + b)
		case bcSub:
			b, a := pop(), pop()
			push(a - b)
		case bcMul:
			b, a := pop(), pop()
			push(a * b)
		case bcDiv:
			b, a := pop(), pop()
			if int64(b) == 0 {
				return 0, newError(ExecutionFailed, "division by zero")
			}
			push(float64(int64(a) / int64(b)))
		case bcMod:
			b, a := pop(), pop()
			if int64(b) == 0 {
				return 0, newError(ExecutionFailed, "modulo by zero")
			}
			push(float64(int64(a) % int64(b)))
		case bcNeg:
			push(-pop())
		case bcEq:
			b, a := pop(), pop()
			push(boolOf(a == b))
		case bcNeq:
			b, a := pop(), pop()
			push(boolOf(a != b))
		case bcGt:
			b, a := pop(), pop()
			push(boolOf(a > b))
		case bcGe:
			b, a := pop(), pop()
			push(boolOf(a >= b))
		case bcLt:
			b, a := pop(), pop()
			push(boolOf(a < b))
		case bcLe:
			b, a := pop(), pop()
			push(boolOf(a <= b))
		case bcAnd:
			b, a := pop(), pop()
			push(boolOf(a != 0 && b != 0))
		case bcOr:
			b, a := pop(), pop()
			push(boolOf(a != 0 || b != 0))
		case bcNot:
			push(boolOf(pop() == 0))
		case bcBAnd:
			b, a := int64(pop()), int64(pop())
			push(float64(a & b))
		case bcBOr:
			b, a := int64(pop()), int64(pop())
			push(float64(a | b))
		case bcBXor:
			b, a := int64(pop()), int64(pop())
			push(float64(a ^ b))
		case bcBNot:
			push(float64(^int64(pop())))
		case bcShl:
			b, a := int64(pop()), int64(pop())
			push(float64(a << uint(b)))
		case bcShr:
			b, a := int64(pop()), int64(pop())
			push(float64(a >> uint(b)))
		}
	}
	if len(stack) == 0 {
		return 0, nil
	}
	return stack[len(stack)-1], nil
}
