// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package value provides the tagged runtime value representation shared
// by the Runtime interpreter and the library dispatcher.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the case held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindString
	KindArray
	KindMap
	KindStruct
	KindResult
	KindOption
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "int"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "bool"
	case KindString:
		return "str"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindStruct:
		return "struct"
	case KindResult:
		return "result"
	case KindOption:
		return "option"
	default:
		return "unknown"
	}
}

// TypeSentinel is the reserved map key that, when present in a CreateMap
// literal, promotes the map to a Struct and names its type.
const TypeSentinel = "__type__"

// Value is a tagged sum over the language's runtime types.
type Value struct {
	kind Kind

	i    int64
	f    float64
	b    bool
	s    string
	arr  []Value
	m    map[string]Value
	keys []string // insertion order for Map/Struct field iteration

	typeName string // Struct only
	isOk     bool   // Result only
	isSome   bool   // Option only
	inner    *Value // Result/Option payload
}

func Null() Value                  { return Value{kind: KindNull} }
func Integer(i int64) Value        { return Value{kind: KindInteger, i: i} }
func Float(f float64) Value        { return Value{kind: KindFloat, f: f} }
func Boolean(b bool) Value         { return Value{kind: KindBoolean, b: b} }
func String(s string) Value        { return Value{kind: KindString, s: s} }
func Array(items []Value) Value    { return Value{kind: KindArray, arr: items} }

// NewMap builds a Map (or, if keys contains TypeSentinel, a Struct) from
// parallel key/value slices in the order CreateMap pops them.
func NewMap(keys []string, vals []Value) Value {
	typeName := ""
	isStruct := false
	m := make(map[string]Value, len(keys))
	order := make([]string, 0, len(keys))
	for i, k := range keys {
		if k == TypeSentinel {
			isStruct = true
			if i < len(vals) {
				typeName = vals[i].DisplayString()
			}
			continue // the sentinel itself is never stored
		}
		m[k] = vals[i]
		order = append(order, k)
	}
	if isStruct {
		return Value{kind: KindStruct, typeName: typeName, m: m, keys: order}
	}
	return Value{kind: KindMap, m: m, keys: order}
}

func Ok(inner Value) Value  { return Value{kind: KindResult, isOk: true, inner: &inner} }
func Err(inner Value) Value { return Value{kind: KindResult, isOk: false, inner: &inner} }
func Some(inner Value) Value {
	return Value{kind: KindOption, isSome: true, inner: &inner}
}
func None() Value { return Value{kind: KindOption, isSome: false} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Int() int64 { return v.i }

func (v Value) Float64() float64 { return v.f }

func (v Value) Bool() bool { return v.b }

func (v Value) Str() string { return v.s }

func (v Value) Items() []Value { return v.arr }

func (v Value) TypeName() string { return v.typeName }

func (v Value) IsOk() bool { return v.kind == KindResult && v.isOk }

func (v Value) IsErr() bool { return v.kind == KindResult && !v.isOk }

func (v Value) IsSome() bool { return v.kind == KindOption && v.isSome }

func (v Value) IsNone() bool { return v.kind == KindOption && !v.isSome }

// Inner returns the payload of a Result/Option, or Null if there is none.
func (v Value) Inner() Value {
	if v.inner == nil {
		return Null()
	}
	return *v.inner
}

// GetKey indexes an Array by integer, a Map by the key's display form, or
// a Struct by field name. Any other receiver, a bad index, or a missing
// key yields Null. The struct sentinel is never readable.
func (v Value) GetKey(key Value) Value {
	switch v.kind {
	case KindArray:
		if key.kind != KindInteger {
			return Null()
		}
		idx := key.i
		if idx < 0 || idx >= int64(len(v.arr)) {
			return Null()
		}
		return v.arr[idx]
	case KindMap, KindStruct:
		k := key.DisplayString()
		if k == TypeSentinel {
			return Null()
		}
		if val, ok := v.m[k]; ok {
			return val
		}
		return Null()
	default:
		return Null()
	}
}

// SetKey mutates a Map/Struct/Array in place and returns the receiver.
func (v Value) SetKey(key, val Value) Value {
	switch v.kind {
	case KindArray:
		if key.kind == KindInteger && key.i >= 0 && key.i < int64(len(v.arr)) {
			v.arr[key.i] = val
		}
		return v
	case KindMap, KindStruct:
		k := key.DisplayString()
		if k == TypeSentinel {
			return v
		}
		if _, exists := v.m[k]; !exists {
			v.keys = append(v.keys, k)
		}
		v.m[k] = val
		return v
	default:
		return v
	}
}

// DisplayString renders the value the way string interpolation and
// string+anything concatenation do.
func (v Value) DisplayString() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBoolean:
		if v.b {
			return "true"
		}
		return "false"
	case KindString:
		return v.s
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = item.DisplayString()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		keys := append([]string(nil), v.keys...)
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, v.m[k].DisplayString()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindStruct:
		parts := make([]string, 0, len(v.keys))
		for _, k := range v.keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, v.m[k].DisplayString()))
		}
		return v.typeName + "{" + strings.Join(parts, ", ") + "}"
	case KindResult:
		if v.isOk {
			return "Ok(" + v.Inner().DisplayString() + ")"
		}
		return "Err(" + v.Inner().DisplayString() + ")"
	case KindOption:
		if v.isSome {
			return "Some(" + v.Inner().DisplayString() + ")"
		}
		return "None"
	default:
		return ""
	}
}

// IsTruthy reports the language truthiness of v: null, 0, 0.0, the empty
// string (plus the literals "null", "false", "False"), empty aggregates,
// Err and None are falsy.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindInteger:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindBoolean:
		return v.b
	case KindString:
		switch v.s {
		case "", "null", "false", "False":
			return false
		default:
			return true
		}
	case KindArray:
		return len(v.arr) != 0
	case KindMap, KindStruct:
		return len(v.keys) != 0
	case KindResult:
		return v.isOk
	case KindOption:
		return v.isSome
	default:
		return false
	}
}

func isNumeric(v Value) bool {
	return v.kind == KindInteger || v.kind == KindFloat
}

func asFloat(v Value) float64 {
	if v.kind == KindInteger {
		return float64(v.i)
	}
	return v.f
}

// Add implements Add: string concatenation/coercion, numeric promotion.
func Add(a, b Value) Value {
	if a.kind == KindString || b.kind == KindString {
		return String(a.DisplayString() + b.DisplayString())
	}
	if a.kind == KindInteger && b.kind == KindInteger {
		return Integer(a.i + b.i)
	}
	if isNumeric(a) && isNumeric(b) {
		return Float(asFloat(a) + asFloat(b))
	}
	return Null()
}

// BinaryOp is the shape of the fallible arithmetic operators (Divide,
// Modulo, FloorDiv).
type BinaryOp func(a, b Value) (Value, error)

func arith(a, b Value, intOp func(x, y int64) int64, fltOp func(x, y float64) float64) Value {
	if a.kind == KindInteger && b.kind == KindInteger {
		return Integer(intOp(a.i, b.i))
	}
	if isNumeric(a) && isNumeric(b) {
		return Float(fltOp(asFloat(a), asFloat(b)))
	}
	return Null()
}

func Subtract(a, b Value) Value {
	return arith(a, b, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y })
}

func Multiply(a, b Value) Value {
	return arith(a, b, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y })
}

// ErrDivisionByZero terminates execution; it is never absorbed.
var ErrDivisionByZero = fmt.Errorf("Division by zero")

// ErrModuloByZero terminates execution; it is never absorbed.
var ErrModuloByZero = fmt.Errorf("Modulo by zero")

func Divide(a, b Value) (Value, error) {
	if a.kind == KindInteger && b.kind == KindInteger {
		if b.i == 0 {
			return Null(), ErrDivisionByZero
		}
		return Integer(a.i / b.i), nil
	}
	if isNumeric(a) && isNumeric(b) {
		if asFloat(b) == 0 {
			return Null(), ErrDivisionByZero
		}
		return Float(asFloat(a) / asFloat(b)), nil
	}
	return Null(), nil
}

func Modulo(a, b Value) (Value, error) {
	if a.kind == KindInteger && b.kind == KindInteger {
		if b.i == 0 {
			return Null(), ErrModuloByZero
		}
		return Integer(a.i % b.i), nil
	}
	if isNumeric(a) && isNumeric(b) {
		y := asFloat(b)
		if y == 0 {
			return Null(), ErrModuloByZero
		}
		x := asFloat(a)
		return Float(x - y*float64(int64(x/y))), nil
	}
	return Null(), nil
}

func FloorDiv(a, b Value) (Value, error) {
	if a.kind == KindInteger && b.kind == KindInteger {
		if b.i == 0 {
			return Null(), ErrDivisionByZero
		}
		q := a.i / b.i
		if (a.i%b.i != 0) && ((a.i < 0) != (b.i < 0)) {
			q--
		}
		return Integer(q), nil
	}
	if isNumeric(a) && isNumeric(b) {
		if asFloat(b) == 0 {
			return Null(), ErrDivisionByZero
		}
		return Float(math.Floor(asFloat(a) / asFloat(b))), nil
	}
	return Null(), nil
}

func Power(a, b Value) Value {
	if isNumeric(a) && isNumeric(b) {
		return Float(math.Pow(asFloat(a), asFloat(b)))
	}
	return Null()
}

func Negate(a Value) Value {
	switch a.kind {
	case KindInteger:
		return Integer(-a.i)
	case KindFloat:
		return Float(-a.f)
	default:
		return Null()
	}
}

// Equal implements cross-kind equality: incompatible kinds are false.
func Equal(a, b Value) bool {
	if isNumeric(a) && isNumeric(b) {
		return asFloat(a) == asFloat(b)
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindMap, KindStruct:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for _, k := range a.keys {
			bv, ok := b.m[k]
			if !ok || !Equal(a.m[k], bv) {
				return false
			}
		}
		return true
	case KindResult:
		return a.isOk == b.isOk && Equal(a.Inner(), b.Inner())
	case KindOption:
		if a.isSome != b.isSome {
			return false
		}
		if !a.isSome {
			return true
		}
		return Equal(a.Inner(), b.Inner())
	default:
		return false
	}
}

// Compare reports ordering for numeric and string operands only; any other
// pairing returns ok=false, and the Runtime then yields false for every
// ordered comparison (>, >=, <, <=).
func Compare(a, b Value) (int, bool) {
	if isNumeric(a) && isNumeric(b) {
		af, bf := asFloat(a), asFloat(b)
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if a.kind == KindString && b.kind == KindString {
		return strings.Compare(a.s, b.s), true
	}
	return 0, false
}
