// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"io"
	"io/ioutil"
	"log"
	"os"
)

// PrintDebugInfo gates the package logger: its output is discarded
// unless debug tracing has been asked for.
var PrintDebugInfo = false

var logger *log.Logger

func init() {
	var w io.Writer = ioutil.Discard
	if PrintDebugInfo {
		w = os.Stderr
	}
	logger = log.New(w, "runtime: ", log.Lshortfile)
}

func setDebug(on bool) {
	PrintDebugInfo = on
	w := io.Writer(ioutil.Discard)
	if on {
		w = os.Stderr
	}
	logger.SetOutput(w)
}
