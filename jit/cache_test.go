// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/razen-lang/rajit/ir"
)

func TestCacheKeyStableAndDistinct(t *testing.T) {
	a := ir.Stream{ir.PushInteger(1), ir.PushInteger(2), ir.Simple(ir.OpAdd)}
	b := ir.Stream{ir.PushInteger(1), ir.PushInteger(2), ir.Simple(ir.OpAdd)}
	c := ir.Stream{ir.PushInteger(1), ir.PushInteger(3), ir.Simple(ir.OpAdd)}

	require.Equal(t, key(StrategyBytecode, a), key(StrategyBytecode, b))
	require.NotEqual(t, key(StrategyBytecode, a), key(StrategyBytecode, c))
	require.NotEqual(t, key(StrategyBytecode, a), key(StrategyNative, a))
}

func TestCacheHitMissStats(t *testing.T) {
	c := NewCache()
	k := key(StrategyBytecode, ir.Stream{ir.PushInteger(1)})

	_, ok := c.lookupBytecode(k)
	require.False(t, ok)

	c.storeBytecode(k, []bcInstr{{op: bcPushConst, num: 1}})
	_, ok = c.lookupBytecode(k)
	require.True(t, ok)

	stats := c.Stats()
	require.Equal(t, 1, stats.BytecodeEntries)
	require.Equal(t, 1, stats.Hits)
	require.Equal(t, 1, stats.Misses)
}
