// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/razen-lang/rajit/value"
)

// builtinNames is the fixed set of short names the Runtime implements
// itself, as opposed to the module-qualified library dispatcher.
var builtinNames = map[string]bool{
	"print": true, "println": true, "printc": true, "printlnc": true,
	"input": true, "len": true,
	"toint": true, "tofloat": true, "tostr": true, "tobool": true,
	"typeof": true,
	"Ok": true, "Err": true, "Some": true, "None": true,
	"is_ok": true, "is_err": true, "is_some": true, "is_none": true,
	"unwrap": true, "unwrap_or": true,
	"range": true, "push": true,
}

// IsBuiltin reports whether name is one of the short builtins the
// Runtime implements directly.
func IsBuiltin(name string) bool { return builtinNames[name] }

// ExecuteBuiltin runs a builtin against the given streams. Any name not
// in builtinNames is a runtime error.
func ExecuteBuiltin(name string, args []value.Value, in *bufio.Reader, out io.Writer) (value.Value, error) {
	switch name {
	case "print":
		fmt.Fprint(out, argOrNull(args, 0).DisplayString())
		return value.Null(), nil
	case "println":
		fmt.Fprintln(out, argOrNull(args, 0).DisplayString())
		return value.Null(), nil
	case "printc":
		color := "reset"
		if len(args) > 1 {
			color = args[1].DisplayString()
		}
		fmt.Fprint(out, colorize(color, argOrNull(args, 0).DisplayString()))
		return value.Null(), nil
	case "printlnc":
		color := "reset"
		if len(args) > 1 {
			color = args[1].DisplayString()
		}
		fmt.Fprintln(out, colorize(color, argOrNull(args, 0).DisplayString()))
		return value.Null(), nil
	case "input":
		if len(args) == 1 {
			fmt.Fprint(out, args[0].DisplayString())
		}
		line, _ := in.ReadString('\n')
		return value.String(strings.TrimRight(line, "\r\n")), nil
	case "len":
		return builtinLen(argOrNull(args, 0)), nil
	case "toint":
		return builtinToInt(argOrNull(args, 0)), nil
	case "tofloat":
		return builtinToFloat(argOrNull(args, 0)), nil
	case "tostr":
		return value.String(argOrNull(args, 0).DisplayString()), nil
	case "tobool":
		return value.Boolean(argOrNull(args, 0).IsTruthy()), nil
	case "typeof":
		return value.String(argOrNull(args, 0).Kind().String()), nil
	case "Ok":
		return value.Ok(argOrNull(args, 0)), nil
	case "Err":
		return value.Err(argOrNull(args, 0)), nil
	case "Some":
		return value.Some(argOrNull(args, 0)), nil
	case "None":
		return value.None(), nil
	case "is_ok":
		return value.Boolean(argOrNull(args, 0).IsOk()), nil
	case "is_err":
		return value.Boolean(argOrNull(args, 0).IsErr()), nil
	case "is_some":
		return value.Boolean(argOrNull(args, 0).IsSome()), nil
	case "is_none":
		return value.Boolean(argOrNull(args, 0).IsNone()), nil
	case "unwrap":
		v := argOrNull(args, 0)
		if v.Kind() == value.KindResult && !v.IsOk() {
			return value.Null(), fmt.Errorf("called unwrap on an Err value")
		}
		if v.Kind() == value.KindOption && !v.IsSome() {
			return value.Null(), fmt.Errorf("called unwrap on a None value")
		}
		return v.Inner(), nil
	case "unwrap_or":
		v := argOrNull(args, 0)
		fallback := argOrNull(args, 1)
		if (v.Kind() == value.KindResult && v.IsOk()) || (v.Kind() == value.KindOption && v.IsSome()) {
			return v.Inner(), nil
		}
		return fallback, nil
	case "range":
		return builtinRange(args), nil
	case "push":
		arr := argOrNull(args, 0)
		return value.Array(append(append([]value.Value(nil), arr.Items()...), argOrNull(args, 1))), nil
	default:
		return value.Null(), &ErrUnknownBuiltin{Name: name}
	}
}

func argOrNull(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return value.Null()
	}
	return args[i]
}

func builtinLen(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindString:
		return value.Integer(int64(len(v.Str())))
	case value.KindArray:
		return value.Integer(int64(len(v.Items())))
	default:
		return value.Integer(0)
	}
}

func builtinToInt(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindInteger:
		return v
	case value.KindFloat:
		return value.Integer(int64(v.Float64()))
	case value.KindBoolean:
		if v.Bool() {
			return value.Integer(1)
		}
		return value.Integer(0)
	case value.KindString:
		if n, err := strconv.ParseInt(v.Str(), 10, 64); err == nil {
			return value.Integer(n)
		}
		return value.Integer(0)
	default:
		return value.Integer(0)
	}
}

func builtinToFloat(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindFloat:
		return v
	case value.KindInteger:
		return value.Float(float64(v.Int()))
	case value.KindString:
		if f, err := strconv.ParseFloat(v.Str(), 64); err == nil {
			return value.Float(f)
		}
		return value.Float(0)
	default:
		return value.Float(0)
	}
}

func builtinRange(args []value.Value) value.Value {
	var start, end, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		end = args[0].Int()
	case 2:
		start, end = args[0].Int(), args[1].Int()
	case 3:
		start, end, step = args[0].Int(), args[1].Int(), args[2].Int()
	default:
		return value.Array(nil)
	}
	if step == 0 {
		return value.Array(nil)
	}
	var items []value.Value
	if step > 0 {
		for i := start; i < end; i += step {
			items = append(items, value.Integer(i))
		}
	} else {
		for i := start; i > end; i += step {
			items = append(items, value.Integer(i))
		}
	}
	return value.Array(items)
}
