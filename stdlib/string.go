// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdlib

import (
	"strings"

	"github.com/razen-lang/rajit/value"
)

// registerString wires the string.* function table.
func registerString(r *Registry) {
	r.Register("string", "upper", func(args []value.Value) (value.Value, error) {
		return value.String(strings.ToUpper(argStr(args, 0))), nil
	})
	r.Register("string", "lower", func(args []value.Value) (value.Value, error) {
		return value.String(strings.ToLower(argStr(args, 0))), nil
	})
	r.Register("string", "trim", func(args []value.Value) (value.Value, error) {
		return value.String(strings.TrimSpace(argStr(args, 0))), nil
	})
	r.Register("string", "split", func(args []value.Value) (value.Value, error) {
		parts := strings.Split(argStr(args, 0), argStr(args, 1))
		items := make([]value.Value, len(parts))
		for i, p := range parts {
			items[i] = value.String(p)
		}
		return value.Array(items), nil
	})
	r.Register("string", "join", func(args []value.Value) (value.Value, error) {
		arr := argOrNull(args, 0)
		sep := argStr(args, 1)
		parts := make([]string, len(arr.Items()))
		for i, item := range arr.Items() {
			parts[i] = item.DisplayString()
		}
		return value.String(strings.Join(parts, sep)), nil
	})
	r.Register("string", "contains", func(args []value.Value) (value.Value, error) {
		return value.Boolean(strings.Contains(argStr(args, 0), argStr(args, 1))), nil
	})
	r.Register("string", "starts_with", func(args []value.Value) (value.Value, error) {
		return value.Boolean(strings.HasPrefix(argStr(args, 0), argStr(args, 1))), nil
	})
	r.Register("string", "ends_with", func(args []value.Value) (value.Value, error) {
		return value.Boolean(strings.HasSuffix(argStr(args, 0), argStr(args, 1))), nil
	})
	r.Register("string", "replace", func(args []value.Value) (value.Value, error) {
		return value.String(strings.ReplaceAll(argStr(args, 0), argStr(args, 1), argStr(args, 2))), nil
	})
	r.Register("string", "reverse", func(args []value.Value) (value.Value, error) {
		runes := []rune(argStr(args, 0))
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return value.String(string(runes)), nil
	})
	r.Register("string", "repeat", func(args []value.Value) (value.Value, error) {
		return value.String(strings.Repeat(argStr(args, 0), int(argOrNull(args, 1).Int()))), nil
	})
	r.Register("string", "char_at", func(args []value.Value) (value.Value, error) {
		runes := []rune(argStr(args, 0))
		idx := int(argOrNull(args, 1).Int())
		if idx < 0 || idx >= len(runes) {
			return value.Null(), nil
		}
		return value.String(string(runes[idx])), nil
	})
}

func argStr(args []value.Value, i int) string {
	return argOrNull(args, i).DisplayString()
}
