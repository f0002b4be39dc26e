// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdlib

import (
	"math"

	"github.com/razen-lang/rajit/value"
)

// registerMath wires the math.* function table.
func registerMath(r *Registry) {
	unary := func(f func(float64) float64) ModuleFunc {
		return func(args []value.Value) (value.Value, error) {
			return value.Float(f(argFloat(args, 0))), nil
		}
	}
	r.Register("math", "abs", func(args []value.Value) (value.Value, error) {
		v := argOrNull(args, 0)
		if v.Kind() == value.KindInteger {
			n := v.Int()
			if n < 0 {
				n = -n
			}
			return value.Integer(n), nil
		}
		return value.Float(math.Abs(argFloat(args, 0))), nil
	})
	r.Register("math", "max", func(args []value.Value) (value.Value, error) {
		return value.Float(math.Max(argFloat(args, 0), argFloat(args, 1))), nil
	})
	r.Register("math", "min", func(args []value.Value) (value.Value, error) {
		return value.Float(math.Min(argFloat(args, 0), argFloat(args, 1))), nil
	})
	r.Register("math", "pow", func(args []value.Value) (value.Value, error) {
		return value.Float(math.Pow(argFloat(args, 0), argFloat(args, 1))), nil
	})
	r.Register("math", "sqrt", unary(math.Sqrt))
	r.Register("math", "floor", unary(math.Floor))
	r.Register("math", "ceil", unary(math.Ceil))
	r.Register("math", "round", unary(math.Round))
	r.Register("math", "sin", unary(math.Sin))
	r.Register("math", "cos", unary(math.Cos))
	r.Register("math", "tan", unary(math.Tan))
	r.Register("math", "pi", func([]value.Value) (value.Value, error) {
		return value.Float(math.Pi), nil
	})
	r.Register("math", "e", func([]value.Value) (value.Value, error) {
		return value.Float(math.E), nil
	})
}

func argOrNull(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return value.Null()
	}
	return args[i]
}

func argFloat(args []value.Value, i int) float64 {
	v := argOrNull(args, i)
	if v.Kind() == value.KindInteger {
		return float64(v.Int())
	}
	return v.Float64()
}
