// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runtime is the reference stack-machine interpreter over the IR:
// it defines the observable semantics every JIT tier must agree with.
package runtime

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/razen-lang/rajit/ir"
	"github.com/razen-lang/rajit/stdlib"
	"github.com/razen-lang/rajit/value"
)

// frame is a (return address, local-variable map) pair.
type frame struct {
	returnAddr int
	locals     map[string]value.Value
}

// Runtime owns the operand stack, globals, call stack, and builtin
// dispatch.
type Runtime struct {
	stack     []value.Value
	variables map[string]value.Value
	functions map[string]int
	funcParam map[string][]string
	callStack []*frame

	dispatcher  stdlib.Dispatcher
	in          *bufio.Reader
	out         io.Writer
	cleanOutput bool
}

// New returns a Runtime reading from stdin and writing to stdout, with
// the default (math/string-only) library dispatcher installed.
func New() *Runtime {
	return &Runtime{
		variables:  make(map[string]value.Value),
		functions:  make(map[string]int),
		funcParam:  make(map[string][]string),
		dispatcher: stdlib.Default(),
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}
}

// SetCleanOutput suppresses debug tracing.
func (r *Runtime) SetCleanOutput(clean bool) { setDebug(!clean) }

// SetDispatcher overrides the library dispatcher consumed for
// module-qualified calls.
func (r *Runtime) SetDispatcher(d stdlib.Dispatcher) { r.dispatcher = d }

// SetStreams redirects ReadInput/Print for embedding/testing.
func (r *Runtime) SetStreams(in io.Reader, out io.Writer) {
	r.in = bufio.NewReader(in)
	r.out = out
}

// RegisterFunctionParams records a function's ordered parameter names.
// The compiler communicates these out of band from the IR stream.
func (r *Runtime) RegisterFunctionParams(name string, params []string) {
	r.funcParam[name] = params
}

// Globals exposes the final global scope.
func (r *Runtime) Globals() map[string]value.Value { return r.variables }

// exitSignal unwinds execution cleanly when the Exit instruction runs.
type exitSignal struct{}

func (exitSignal) Error() string { return "exit" }

// Execute runs the stream in three phases: register every function entry
// point, execute the module-initialization region, then run from index 0
// with the full dispatch table. Re-running the initialization region is
// harmless only because those instructions are limited to value pushers
// and stores with no observable side effects; callers must not place
// anything else before the first DefineFunction.
func (r *Runtime) Execute(stream ir.Stream) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if _, ok := p.(exitSignal); ok {
				err = nil
				return
			}
			panic(p)
		}
	}()

	r.registerFunctions(stream)
	r.runInitPass(stream)
	r.stack = r.stack[:0]
	return r.run(stream, 0)
}

// registerFunctions is pass 1: record every DefineFunction's entry point.
func (r *Runtime) registerFunctions(stream ir.Stream) {
	for _, instr := range stream {
		if instr.Op == ir.OpDefineFunction {
			r.functions[instr.Name] = instr.Target
		}
	}
}

// runInitPass is pass 2: execute only the module-initialization region
// (value pushers and StoreVar), which precedes the first DefineFunction.
func (r *Runtime) runInitPass(stream ir.Stream) {
	end := stream.FindFirstDefineFunction()
	for i := 0; i < end; i++ {
		instr := stream[i]
		switch instr.Op {
		case ir.OpPushInteger:
			r.push(value.Integer(instr.IntVal))
		case ir.OpPushNumber:
			r.push(value.Float(instr.NumVal))
		case ir.OpPushString:
			r.push(value.String(instr.StrVal))
		case ir.OpPushBoolean:
			r.push(value.Boolean(instr.BoolVal))
		case ir.OpPushNull:
			r.push(value.Null())
		case ir.OpStoreVar:
			r.variables[instr.Name] = r.pop()
		}
	}
}

func (r *Runtime) push(v value.Value) { r.stack = append(r.stack, v) }

func (r *Runtime) pop() value.Value {
	if len(r.stack) == 0 {
		return value.Null()
	}
	v := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	return v
}

func (r *Runtime) popN(n int) []value.Value {
	if n <= 0 {
		return nil
	}
	if n > len(r.stack) {
		n = len(r.stack)
	}
	out := append([]value.Value(nil), r.stack[len(r.stack)-n:]...)
	r.stack = r.stack[:len(r.stack)-n]
	return out
}

func (r *Runtime) top() value.Value {
	if len(r.stack) == 0 {
		return value.Null()
	}
	return r.stack[len(r.stack)-1]
}

// currentFrame returns the topmost call frame, or nil when no call is
// active and the globals are in play.
func (r *Runtime) currentFrame() *frame {
	if len(r.callStack) == 0 {
		return nil
	}
	return r.callStack[len(r.callStack)-1]
}

func (r *Runtime) storeVar(name string, v value.Value) {
	if strings.Contains(name, ".") {
		r.variables[name] = v
		return
	}
	if f := r.currentFrame(); f != nil {
		f.locals[name] = v
		return
	}
	r.variables[name] = v
}

func (r *Runtime) loadVar(name string) value.Value {
	if !strings.Contains(name, ".") {
		if f := r.currentFrame(); f != nil {
			if v, ok := f.locals[name]; ok {
				return v
			}
		}
	}
	if v, ok := r.variables[name]; ok {
		return v
	}
	return value.Null()
}

// run is the execution pass: a fetch/dispatch loop over absolute
// instruction indices.
func (r *Runtime) run(stream ir.Stream, pc int) error {
	for pc < len(stream) {
		instr := stream[pc]
		pc++

		switch instr.Op {
		case ir.OpPushInteger:
			r.push(value.Integer(instr.IntVal))
		case ir.OpPushNumber:
			r.push(value.Float(instr.NumVal))
		case ir.OpPushString:
			r.push(value.String(instr.StrVal))
		case ir.OpPushBoolean:
			r.push(value.Boolean(instr.BoolVal))
		case ir.OpPushNull:
			r.push(value.Null())

		case ir.OpPop:
			r.pop()
		case ir.OpDup:
			r.push(r.top())
		case ir.OpSwap:
			a, b := r.pop(), r.pop()
			r.push(a)
			r.push(b)

		case ir.OpStoreVar:
			r.storeVar(instr.Name, r.pop())
		case ir.OpLoadVar:
			r.push(r.loadVar(instr.Name))
		case ir.OpSetGlobal:
			r.variables[instr.Name] = r.pop()

		case ir.OpAdd:
			b, a := r.pop(), r.pop()
			r.push(value.Add(a, b))
		case ir.OpSubtract:
			b, a := r.pop(), r.pop()
			r.push(value.Subtract(a, b))
		case ir.OpMultiply:
			b, a := r.pop(), r.pop()
			r.push(value.Multiply(a, b))
		case ir.OpDivide:
			b, a := r.pop(), r.pop()
			v, err := value.Divide(a, b)
			if err != nil {
				return err
			}
			r.push(v)
		case ir.OpModulo:
			b, a := r.pop(), r.pop()
			v, err := value.Modulo(a, b)
			if err != nil {
				return err
			}
			r.push(v)
		case ir.OpPower:
			b, a := r.pop(), r.pop()
			r.push(value.Power(a, b))
		case ir.OpFloorDiv:
			b, a := r.pop(), r.pop()
			v, err := value.FloorDiv(a, b)
			if err != nil {
				return err
			}
			r.push(v)
		case ir.OpNegate:
			r.push(value.Negate(r.pop()))

		case ir.OpEqual:
			b, a := r.pop(), r.pop()
			r.push(value.Boolean(value.Equal(a, b)))
		case ir.OpNotEqual:
			b, a := r.pop(), r.pop()
			r.push(value.Boolean(!value.Equal(a, b)))
		case ir.OpGreaterThan:
			r.push(r.compareBool(func(c int) bool { return c > 0 }))
		case ir.OpGreaterEqual:
			r.push(r.compareBool(func(c int) bool { return c >= 0 }))
		case ir.OpLessThan:
			r.push(r.compareBool(func(c int) bool { return c < 0 }))
		case ir.OpLessEqual:
			r.push(r.compareBool(func(c int) bool { return c <= 0 }))

		case ir.OpAnd:
			b, a := r.pop(), r.pop()
			r.push(value.Boolean(a.IsTruthy() && b.IsTruthy()))
		case ir.OpOr:
			b, a := r.pop(), r.pop()
			r.push(value.Boolean(a.IsTruthy() || b.IsTruthy()))
		case ir.OpNot:
			r.push(value.Boolean(!r.pop().IsTruthy()))

		case ir.OpBitwiseAnd:
			b, a := r.pop().Int(), r.pop().Int()
			r.push(value.Integer(a & b))
		case ir.OpBitwiseOr:
			b, a := r.pop().Int(), r.pop().Int()
			r.push(value.Integer(a | b))
		case ir.OpBitwiseXor:
			b, a := r.pop().Int(), r.pop().Int()
			r.push(value.Integer(a ^ b))
		case ir.OpBitwiseNot:
			r.push(value.Integer(^r.pop().Int()))
		case ir.OpLeftShift:
			b, a := r.pop().Int(), r.pop().Int()
			r.push(value.Integer(a << uint(b)))
		case ir.OpRightShift:
			b, a := r.pop().Int(), r.pop().Int()
			r.push(value.Integer(a >> uint(b)))

		case ir.OpJump:
			pc = instr.Target
		case ir.OpJumpIfFalse:
			if !r.pop().IsTruthy() {
				pc = instr.Target
			}
		case ir.OpJumpIfTrue:
			if r.pop().IsTruthy() {
				pc = instr.Target
			}

		case ir.OpCall:
			var err error
			pc, err = r.execCall(instr.Name, instr.Argc, pc)
			if err != nil {
				return err
			}
		case ir.OpMethodCall:
			var err error
			pc, err = r.execMethodCall(instr.Name, instr.Argc, pc)
			if err != nil {
				return err
			}
		case ir.OpReturn:
			if f := r.popFrame(); f != nil {
				pc = f.returnAddr
			}

		case ir.OpPrint:
			fmt.Fprint(r.out, r.pop().DisplayString())
		case ir.OpReadInput:
			line, _ := r.in.ReadString('\n')
			r.push(value.String(strings.TrimRight(line, "\r\n")))
		case ir.OpExit:
			panic(exitSignal{})

		case ir.OpCreateArray:
			items := r.popN(instr.Argc)
			r.push(value.Array(items))
		case ir.OpCreateMap:
			keys := make([]string, instr.Argc)
			vals := make([]value.Value, instr.Argc)
			pairs := r.popN(instr.Argc * 2)
			for i := 0; i < instr.Argc; i++ {
				keys[i] = pairs[i*2].DisplayString()
				vals[i] = pairs[i*2+1]
			}
			r.push(value.NewMap(keys, vals))
		case ir.OpGetIndex:
			idx, target := r.pop(), r.pop()
			r.push(target.GetKey(idx))
		case ir.OpSetIndex:
			val, idx, target := r.pop(), r.pop(), r.pop()
			r.push(target.SetKey(idx, val))
		case ir.OpGetKey:
			key, target := r.pop(), r.pop()
			r.push(target.GetKey(key))
		case ir.OpSetKey:
			val, key, target := r.pop(), r.pop(), r.pop()
			r.push(target.SetKey(key, val))

		case ir.OpDefineFunction, ir.OpLabel:
			// no-op at execution time; already consumed by the
			// registration pass.
		case ir.OpSleep:
			d := r.pop()
			time.Sleep(time.Duration(d.Int()) * time.Millisecond)
		case ir.OpLibraryCall:
			args := r.popN(instr.Argc)
			v, err := r.dispatcher.Call(instr.Name, instr.Name2, args)
			if err != nil {
				r.push(value.Null())
			} else {
				r.push(v)
			}
		case ir.OpSetupTryCatch, ir.OpClearTryCatch, ir.OpThrowException:
			// Exception handling beyond propagating a surfaced error is
			// not modeled by the reference semantics this core preserves;
			// ThrowException surfaces its payload as a fatal error.
			if instr.Op == ir.OpThrowException {
				return fmt.Errorf("%s", r.pop().DisplayString())
			}

		default:
			logger.Printf("unhandled opcode %s", instr.Op)
		}
	}
	return nil
}

func (r *Runtime) compareBool(accept func(int) bool) value.Value {
	b, a := r.pop(), r.pop()
	c, ok := value.Compare(a, b)
	if !ok {
		return value.Boolean(false)
	}
	return value.Boolean(accept(c))
}

func (r *Runtime) popFrame() *frame {
	if len(r.callStack) == 0 {
		return nil
	}
	f := r.callStack[len(r.callStack)-1]
	r.callStack = r.callStack[:len(r.callStack)-1]
	return f
}

// execCall dispatches Call: builtin first, then qualified library name,
// then a user function binding its declared parameters positionally and
// pushing a new frame. An unresolvable name pops the arguments and
// pushes Null.
func (r *Runtime) execCall(name string, argc int, pc int) (int, error) {
	if IsBuiltin(name) {
		args := r.popN(argc)
		v, err := ExecuteBuiltin(name, args, r.in, r.out)
		if err != nil {
			return pc, err
		}
		r.push(v)
		return pc, nil
	}
	if module, fn, ok := splitQualified(name); ok && r.dispatcher.IsModule(module) {
		args := r.popN(argc)
		v, err := r.dispatcher.Call(module, fn, args)
		if err != nil {
			r.push(value.Null())
		} else {
			r.push(v)
		}
		return pc, nil
	}
	entry, ok := r.functions[name]
	if !ok {
		r.popN(argc)
		r.push(value.Null())
		return pc, nil
	}
	args := r.popN(argc)
	params := r.funcParam[name]
	locals := make(map[string]value.Value, len(params))
	bindPositional(locals, params, args)
	r.callStack = append(r.callStack, &frame{returnAddr: pc, locals: locals})
	return entry, nil
}

// execMethodCall resolves name against the receiver: a struct receiver
// calls TypeName.name, anything else the first function ending in .name.
// self is bound in the callee frame alongside the declared parameters.
func (r *Runtime) execMethodCall(name string, argc int, pc int) (int, error) {
	args := r.popN(argc)
	self := r.pop()

	fnName := ""
	if self.Kind() == value.KindStruct && self.TypeName() != "" {
		fnName = self.TypeName() + "." + name
	} else {
		fnName = r.firstFunctionEndingIn("." + name)
	}
	if fnName == "" {
		return pc, &ErrMissingMethodName{Method: name}
	}
	entry, ok := r.functions[fnName]
	if !ok {
		r.push(value.Null())
		return pc, nil
	}
	params := r.funcParam[fnName]
	locals := make(map[string]value.Value, len(params)+1)
	bindPositional(locals, params, args)
	locals["self"] = self
	r.callStack = append(r.callStack, &frame{returnAddr: pc, locals: locals})
	return entry, nil
}

func (r *Runtime) firstFunctionEndingIn(suffix string) string {
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		if strings.HasSuffix(name, suffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func bindPositional(locals map[string]value.Value, params []string, args []value.Value) {
	for i, p := range params {
		if i < len(args) {
			locals[p] = args[i]
		} else {
			locals[p] = value.Null()
		}
	}
}

func splitQualified(name string) (module, fn string, ok bool) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}
