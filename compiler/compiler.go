// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compiler lowers an annotated syntax tree (compiler.Program)
// into the flat IR stream, registering function names in a first pass and
// emitting instructions with forward-jump back-patching in a second.
package compiler

import (
	"fmt"

	"github.com/razen-lang/rajit/ir"
)

// Output is everything the Compiler hands to its consumers.
type Output struct {
	Instructions   ir.Stream
	FunctionParams map[string][]string
	CleanOutput    bool
	Errors         []string
}

// Compiler lowers a Program into IR. The zero value is ready to use.
type Compiler struct {
	instrs         ir.Stream
	functionParams map[string][]string
	declaredFuncs  map[string]bool
	errors         []string
	cleanOutput    bool
}

// New returns a ready-to-use Compiler.
func New() *Compiler {
	return &Compiler{
		functionParams: make(map[string][]string),
		declaredFuncs:  make(map[string]bool),
	}
}

// SetCleanOutput sets the clean-output flag that Compile copies into
// Output.CleanOutput.
func (c *Compiler) SetCleanOutput(clean bool) { c.cleanOutput = clean }

// Compile lowers prog to IR. Errors are accumulated rather than aborting
// early; when any are present the returned Output carries no
// instructions.
func (c *Compiler) Compile(prog *Program) *Output {
	c.instrs = nil
	c.errors = nil
	if c.functionParams == nil {
		c.functionParams = make(map[string][]string)
	}
	if c.declaredFuncs == nil {
		c.declaredFuncs = make(map[string]bool)
	}

	// Pass 1: register every function name so forward calls resolve.
	for _, stmt := range prog.Statements {
		if fn, ok := stmt.(FuncDeclStmt); ok {
			c.declaredFuncs[fn.Name] = true
			c.functionParams[fn.Name] = append([]string(nil), fn.Params...)
		}
	}

	// Pass 2: emit.
	for _, stmt := range prog.Statements {
		c.emitStmt(stmt)
	}

	if c.declaredFuncs["main"] {
		c.emit(ir.Call("main", 0))
		c.emit(ir.Simple(ir.OpPop))
	}

	// A forward jump patched at the very end of the stream would target one
	// past the last instruction; a trailing Label gives it an in-range
	// landing spot.
	end := len(c.instrs)
	for _, instr := range c.instrs {
		isJump := instr.Op == ir.OpJump || instr.Op == ir.OpJumpIfFalse || instr.Op == ir.OpJumpIfTrue
		if isJump && instr.Target == end {
			c.emit(ir.Label("end"))
			break
		}
	}

	out := &Output{
		FunctionParams: c.functionParams,
		CleanOutput:    c.cleanOutput,
		Errors:         c.errors,
	}
	if len(c.errors) == 0 {
		out.Instructions = c.instrs
	}
	return out
}

func (c *Compiler) emit(instr ir.Instr) int {
	c.instrs = append(c.instrs, instr)
	return len(c.instrs) - 1
}

func (c *Compiler) fail(format string, args ...interface{}) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *Compiler) patchJumpTarget(idx int) {
	c.instrs[idx].Target = len(c.instrs)
}

func (c *Compiler) emitStmt(stmt Stmt) {
	switch s := stmt.(type) {
	case ExprStmt:
		c.emitExpr(s.X)
		c.emit(ir.Simple(ir.OpPop))
	case VarDeclStmt:
		c.emitExpr(s.Value)
		c.emit(ir.StoreVar(s.Name))
	case AssignStmt:
		c.emitAssign(s.Target, s.Value)
	case GlobalAssignStmt:
		c.emitExpr(s.Value)
		c.emit(ir.SetGlobal(s.Name))
	case IfStmt:
		c.emitIf(s)
	case WhileStmt:
		c.emitWhile(s)
	case FuncDeclStmt:
		c.emitFuncDecl(s)
	case ReturnStmt:
		if s.Value != nil {
			c.emitExpr(s.Value)
		} else {
			c.emit(ir.PushNull())
		}
		c.emit(ir.Simple(ir.OpReturn))
	case PrintStmt:
		c.emitExpr(s.Value)
		switch {
		case s.Color != "" && s.Ln:
			c.emit(ir.PushString(s.Color))
			c.emit(ir.Call("printlnc", 2))
			c.emit(ir.Simple(ir.OpPop))
		case s.Color != "":
			c.emit(ir.PushString(s.Color))
			c.emit(ir.Call("printc", 2))
			c.emit(ir.Simple(ir.OpPop))
		case s.Ln:
			c.emit(ir.Call("println", 1))
			c.emit(ir.Simple(ir.OpPop))
		default:
			c.emit(ir.Simple(ir.OpPrint))
		}
	default:
		c.fail("compiler: unsupported statement %T", stmt)
	}
}

func (c *Compiler) emitAssign(target Expr, value Expr) {
	switch t := target.(type) {
	case Identifier:
		c.emitExpr(value)
		c.emit(ir.StoreVar(t.Name))
	case IndexExpr:
		c.emitExpr(t.Target)
		c.emitExpr(t.Index)
		c.emitExpr(value)
		c.emit(ir.Simple(ir.OpSetIndex))
		c.emit(ir.Simple(ir.OpPop))
	case FieldExpr:
		c.emitExpr(t.Target)
		c.emit(ir.PushString(t.Key))
		c.emitExpr(value)
		c.emit(ir.Simple(ir.OpSetKey))
		c.emit(ir.Simple(ir.OpPop))
	default:
		c.fail("compiler: invalid assignment target %T", target)
	}
}

// emitIf lowers an if/elif/else chain: each branch's JumpIfFalse is
// patched to the position of its successor, and every branch's trailing
// Jump is patched to the final position once all branches have been
// emitted.
func (c *Compiler) emitIf(s IfStmt) {
	var endJumps []int

	c.emitExpr(s.Cond)
	falseJump := c.emit(ir.JumpIfFalse(0))
	for _, st := range s.Then {
		c.emitStmt(st)
	}
	endJumps = append(endJumps, c.emit(ir.Jump(0)))
	c.patchJumpTarget(falseJump)

	for _, elif := range s.Elifs {
		c.emitExpr(elif.Cond)
		falseJump = c.emit(ir.JumpIfFalse(0))
		for _, st := range elif.Body {
			c.emitStmt(st)
		}
		endJumps = append(endJumps, c.emit(ir.Jump(0)))
		c.patchJumpTarget(falseJump)
	}

	for _, st := range s.Else {
		c.emitStmt(st)
	}

	for _, idx := range endJumps {
		c.patchJumpTarget(idx)
	}
}

func (c *Compiler) emitWhile(s WhileStmt) {
	loopStart := len(c.instrs)
	c.emitExpr(s.Cond)
	endJump := c.emit(ir.JumpIfFalse(0))
	for _, st := range s.Body {
		c.emitStmt(st)
	}
	c.emit(ir.Jump(loopStart))
	c.patchJumpTarget(endJump)
}

func (c *Compiler) emitFuncDecl(s FuncDeclStmt) {
	skipJump := c.emit(ir.Jump(0))
	entry := len(c.instrs)
	c.functionParams[s.Name] = append([]string(nil), s.Params...)
	c.emit(ir.DefineFunction(s.Name, entry))
	for _, st := range s.Body {
		c.emitStmt(st)
	}
	// Guarantee termination even if the body falls through without a
	// return statement.
	c.emit(ir.PushNull())
	c.emit(ir.Simple(ir.OpReturn))
	c.patchJumpTarget(skipJump)
}

func (c *Compiler) emitExpr(expr Expr) {
	switch e := expr.(type) {
	case IntLit:
		c.emit(ir.PushInteger(e.Value))
	case FloatLit:
		c.emit(ir.PushNumber(e.Value))
	case StringLit:
		c.emit(ir.PushString(e.Value))
	case BoolLit:
		c.emit(ir.PushBoolean(e.Value))
	case NullLit:
		c.emit(ir.PushNull())
	case Identifier:
		c.emit(ir.LoadVar(e.Name))
	case InterpolatedString:
		c.emitInterpolatedString(e)
	case UnaryExpr:
		c.emitExpr(e.Operand)
		switch e.Op {
		case "-":
			c.emit(ir.Simple(ir.OpNegate))
		case "not":
			c.emit(ir.Simple(ir.OpNot))
		case "~":
			c.emit(ir.Simple(ir.OpBitwiseNot))
		default:
			c.fail("compiler: unknown unary operator %q", e.Op)
		}
	case LogicalExpr:
		c.emitExpr(e.Left)
		c.emitExpr(e.Right)
		switch e.Op {
		case "and":
			c.emit(ir.Simple(ir.OpAnd))
		case "or":
			c.emit(ir.Simple(ir.OpOr))
		default:
			c.fail("compiler: unknown logical operator %q", e.Op)
		}
	case BinaryExpr:
		c.emitExpr(e.Left)
		c.emitExpr(e.Right)
		if op, ok := binaryOps[e.Op]; ok {
			c.emit(ir.Simple(op))
		} else {
			c.fail("compiler: unknown binary operator %q", e.Op)
		}
	case CallExpr:
		for _, arg := range e.Args {
			c.emitExpr(arg)
		}
		c.emit(ir.Call(e.Name, len(e.Args)))
	case MethodCallExpr:
		c.emitExpr(e.Receiver)
		for _, arg := range e.Args {
			c.emitExpr(arg)
		}
		c.emit(ir.MethodCall(e.Name, len(e.Args)))
	case IndexExpr:
		c.emitExpr(e.Target)
		c.emitExpr(e.Index)
		c.emit(ir.Simple(ir.OpGetIndex))
	case FieldExpr:
		c.emitExpr(e.Target)
		c.emit(ir.PushString(e.Key))
		c.emit(ir.Simple(ir.OpGetKey))
	case ArrayLit:
		for _, item := range e.Items {
			c.emitExpr(item)
		}
		c.emit(ir.CreateArray(len(e.Items)))
	case MapLit:
		for i, key := range e.Keys {
			c.emit(ir.PushString(key))
			c.emitExpr(e.Values[i])
		}
		c.emit(ir.CreateMap(len(e.Keys)))
	default:
		c.fail("compiler: unsupported expression %T", expr)
	}
}

// emitInterpolatedString lowers each chunk as PushString/expr and
// interleaves left-to-right Adds; the first part needs no join.
func (c *Compiler) emitInterpolatedString(e InterpolatedString) {
	if len(e.Parts) == 0 {
		c.emit(ir.PushString(""))
		return
	}
	c.emitExpr(e.Parts[0])
	for _, part := range e.Parts[1:] {
		c.emitExpr(part)
		c.emit(ir.Simple(ir.OpAdd))
	}
}

var binaryOps = map[string]ir.Op{
	"+": ir.OpAdd, "-": ir.OpSubtract, "*": ir.OpMultiply, "/": ir.OpDivide,
	"%": ir.OpModulo, "**": ir.OpPower, "//": ir.OpFloorDiv,
	"==": ir.OpEqual, "!=": ir.OpNotEqual,
	">": ir.OpGreaterThan, ">=": ir.OpGreaterEqual,
	"<": ir.OpLessThan, "<=": ir.OpLessEqual,
	"&": ir.OpBitwiseAnd, "|": ir.OpBitwiseOr, "^": ir.OpBitwiseXor,
	"<<": ir.OpLeftShift, ">>": ir.OpRightShift,
}
