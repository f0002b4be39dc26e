// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

const ansiReset = "\x1b[0m"

// namedAttrs maps the basic 8 ANSI names to fatih/color's Attribute enum;
// bright variants are the basic attribute shifted the way terminals do it
// (90-97 instead of 30-37), which fatih/color also exposes as FgHi* consts.
var namedAttrs = map[string]color.Attribute{
	"black": color.FgBlack, "red": color.FgRed, "green": color.FgGreen,
	"yellow": color.FgYellow, "blue": color.FgBlue, "magenta": color.FgMagenta,
	"cyan": color.FgCyan, "white": color.FgWhite,
}

var brightAttrs = map[string]color.Attribute{
	"black": color.FgHiBlack, "red": color.FgHiRed, "green": color.FgHiGreen,
	"yellow": color.FgHiYellow, "blue": color.FgHiBlue, "magenta": color.FgHiMagenta,
	"cyan": color.FgHiCyan, "white": color.FgHiWhite,
}

// eightBit codes for names fatih/color has no Attribute for.
var eightBit = map[string]int{
	"orange": 208,
	"brown":  94,
}

// colorEscape maps a color name to its ANSI escape: named colors, their
// "bright" variants, the two 8-bit names, and #RRGGBB truecolor.
// Unknown or malformed input maps to the reset code.
func colorEscape(name string) string {
	name = strings.TrimSpace(name)

	if strings.HasPrefix(name, "#") {
		if r, g, b, ok := parseHex(name); ok {
			return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
		}
		return ansiReset
	}

	lower := strings.ToLower(name)
	bright := strings.HasPrefix(lower, "bright")
	base := strings.TrimPrefix(lower, "bright")
	base = strings.TrimPrefix(base, "_")
	base = strings.TrimPrefix(base, "-")

	if code, ok := eightBit[base]; ok {
		return fmt.Sprintf("\x1b[38;5;%dm", code)
	}

	attrs := namedAttrs
	if bright {
		attrs = brightAttrs
	}
	if attr, ok := attrs[base]; ok {
		return fmt.Sprintf("\x1b[%dm", attr)
	}
	return ansiReset
}

func parseHex(s string) (r, g, b int, ok bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	rv, err1 := strconv.ParseInt(s[0:2], 16, 32)
	gv, err2 := strconv.ParseInt(s[2:4], 16, 32)
	bv, err3 := strconv.ParseInt(s[4:6], 16, 32)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return int(rv), int(gv), int(bv), true
}

// colorize wraps text in the named color's escape code plus a trailing
// reset; printc/printlnc always emit one.
func colorize(name, text string) string {
	return colorEscape(name) + text + ansiReset
}
