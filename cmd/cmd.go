// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cmd implements the boot loader diagnostic shell commands.
package cmd

import (
	"fmt"
	"runtime"

	"github.com/potato-os/potato-boot/loader"
	"github.com/potato-os/potato-boot/options"
	"github.com/potato-os/potato-boot/shell"
)

// Banner is the diagnostic shell welcome message.
var Banner = fmt.Sprintf("potato-boot %s • %s/%s (%s) • UEFI",
	loader.Revision, runtime.GOOS, runtime.GOARCH, runtime.Version())

// New returns a diagnostic shell bound to the argument boot context.
func New(ctx *loader.Context, o *options.BootOptions) *shell.Interface {
	iface := &shell.Interface{
		Banner:     Banner,
		ReadWriter: ctx.Console,
	}

	addCommon(iface, ctx, o)
	addUEFI(iface, ctx)

	return iface
}

// Shell runs the diagnostic shell until the boot command is issued.
func Shell(ctx *loader.Context, o *options.BootOptions) error {
	ctx.Log.Println("entering diagnostic shell, type `boot` to resume")

	New(ctx, o).Start()

	ctx.Log.Println("resuming boot")

	return nil
}
