// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"io"
	"log"
	"os"
	"runtime"

	"github.com/potato-os/potato-boot/cmd"
	"github.com/potato-os/potato-boot/loader"
	"github.com/potato-os/potato-boot/uefi/x64"
)

func init() {
	log.SetFlags(0)
}

func main() {
	logFile, _ := os.OpenFile("/runtime.log", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	w := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(w)

	if err := x64.Err(); err != nil {
		loader.Halt(w, err)
	}

	ctx := loader.NewContext(x64.UEFI, w)
	ctx.Shell = cmd.Shell

	if err := loader.Boot(ctx); err != nil {
		loader.Halt(w, err)
	}

	runtime.Exit(0)
}
