// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jit

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/razen-lang/rajit/ir"
)

// Cache holds two independent maps: bytecode programs keyed by content
// hash, and indices into the JIT's owned native-function slice. It never evicts; entries live for the JIT's
// lifetime, and it is infallible, which is why jit.CachingFailed is
// reserved but never produced.
type Cache struct {
	bytecode map[string][]bcInstr
	native   map[string]int

	hits   int
	misses int
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{
		bytecode: make(map[string][]bcInstr),
		native:   make(map[string]int),
	}
}

// Stats is a snapshot of what the cache currently holds, useful for
// diagnostics and tests.
type Stats struct {
	BytecodeEntries int
	NativeEntries   int
	Hits            int
	Misses          int
}

// Stats returns the current cache occupancy and hit/miss counters.
func (c *Cache) Stats() Stats {
	return Stats{
		BytecodeEntries: len(c.bytecode),
		NativeEntries:   len(c.native),
		Hits:            c.hits,
		Misses:          c.misses,
	}
}

// key structurally hashes stream (tag discriminators plus payload values;
// PushNumber contributes its IEEE-754 bit pattern) and combines it with
// the strategy tag and stream length, formatted "<tag>_<hex>".
func key(strategy Strategy, stream ir.Stream) string {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	for _, instr := range stream {
		write(uint64(instr.Op))
		h.Write([]byte(instr.Name))
		h.Write([]byte(instr.Name2))
		write(uint64(int64(instr.Target)))
		write(uint64(int64(instr.Argc)))
		write(uint64(instr.IntVal))
		write(math.Float64bits(instr.NumVal))
		h.Write([]byte(instr.StrVal))
		if instr.BoolVal {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	write(uint64(len(stream)))
	return fmt.Sprintf("%s_%x", strategy, h.Sum64())
}

func (c *Cache) lookupBytecode(k string) ([]bcInstr, bool) {
	prog, ok := c.bytecode[k]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return prog, ok
}

func (c *Cache) storeBytecode(k string, prog []bcInstr) {
	c.bytecode[k] = prog
}

func (c *Cache) lookupNative(k string) (int, bool) {
	idx, ok := c.native[k]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return idx, ok
}

func (c *Cache) storeNative(k string, idx int) {
	c.native[k] = idx
}
