// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"unicode/utf8"

	"github.com/potato-os/potato-boot/options"
	"github.com/potato-os/potato-boot/uefi"
)

// Revision is the loader revision, set at link time.
var Revision = "devel"

// Boot runs the boot pipeline, on success control is transferred to the
// kernel and Boot only returns if the context Enter function does.
//
// Any failure is fatal and returned as an *Error, no stage is ever retried
// except for ExitBootServices with a stale memory map key.
func Boot(ctx *Context) (err error) {
	ctx.state = Init

	if ctx.Console != nil {
		if err = ctx.Console.ClearScreen(); err != nil {
			return fail(FirmwareError, ctx.state, fmt.Errorf("could not clear screen, %w", err))
		}
	}

	ctx.Log.Println("potato-boot", Revision)

	if err = ctx.resolveVolume(); err != nil {
		return
	}

	if err = ctx.loadConfig(); err != nil {
		return
	}

	if err = ctx.runShell(); err != nil {
		return
	}

	if err = ctx.loadFont(); err != nil {
		return
	}

	image, err := ctx.loadKernel()

	if err != nil {
		return
	}

	if err = ctx.mapKernel(image); err != nil {
		return
	}

	if err = ctx.buildHandoff(); err != nil {
		return
	}

	if err = ctx.exitBootServices(); err != nil {
		return
	}

	ctx.advance(KernelEntered)
	ctx.Enter(ctx.Kernel.Entry, ctx.InfoAddress)

	return
}

func (ctx *Context) resolveVolume() (err error) {
	root, err := ctx.Volume.Root()

	if err != nil {
		return fail(FirmwareError, ctx.state, fmt.Errorf("could not open boot volume, %w", err))
	}

	if len(ctx.Directory) > 0 && ctx.Directory != "." {
		if root, err = fs.Sub(root, ctx.Directory); err != nil {
			return fail(FirmwareError, ctx.state, fmt.Errorf("could not open boot directory, %w", err))
		}
	}

	ctx.root = root
	ctx.advance(VolumeResolved)

	return
}

func (ctx *Context) loadConfig() (err error) {
	ctx.Log.Printf("loading %s", OptionsFile)

	buf, err := fs.ReadFile(ctx.root, OptionsFile)

	if err != nil {
		return fail(FirmwareError, ctx.state, fmt.Errorf("could not read options, %w", err))
	}

	if !utf8.Valid(buf) {
		return fail(ConfigError, ctx.state, errors.New("options file is not valid UTF-8"))
	}

	o, err := options.Load(string(buf))

	switch {
	case errors.Is(err, options.ErrCapacity):
		return fail(CapacityError, ctx.state, err)
	case err != nil:
		return fail(ConfigError, ctx.state, err)
	}

	ctx.Options = o
	ctx.Log.Printf("boot options:\n%s", o)
	ctx.advance(ConfigLoaded)

	return
}

func (ctx *Context) runShell() (err error) {
	if !ctx.Options.Shell || ctx.Shell == nil {
		return
	}

	// the firmware watchdog would reset the platform while idling
	if err = ctx.Boot.SetWatchdogTimer(0); err != nil {
		ctx.Log.Printf("could not disable watchdog, %v", err)
	}

	if err = ctx.Shell(ctx, ctx.Options); err != nil {
		return fail(FirmwareError, ctx.state, fmt.Errorf("shell error, %w", err))
	}

	if err = ctx.Boot.SetWatchdogTimer(int(uefi.WatchdogTimeout.Seconds())); err != nil {
		ctx.Log.Printf("could not arm watchdog, %v", err)
	}

	return nil
}

func (ctx *Context) loadFont() (err error) {
	buf, err := fs.ReadFile(ctx.root, ctx.Options.Font)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		ctx.Log.Printf("font %s not found, skipping", ctx.Options.Font)
		return nil
	case err != nil:
		return fail(FirmwareError, ctx.state, fmt.Errorf("could not read font, %w", err))
	}

	f, err := ParseFont(buf)

	if err != nil {
		return fail(FormatError, ctx.state, fmt.Errorf("%s: %w", ctx.Options.Font, err))
	}

	ctx.Log.Printf("font %s: %d glyphs 8x%d unicode:%v", ctx.Options.Font, f.Glyphs(), f.Height, f.Unicode())

	return
}

func (ctx *Context) loadKernel() (image []byte, err error) {
	ctx.Log.Printf("loading %s", ctx.Options.Kernel)

	if image, err = fs.ReadFile(ctx.root, ctx.Options.Kernel); err != nil {
		return nil, fail(FirmwareError, ctx.state, fmt.Errorf("could not read kernel, %w", err))
	}

	ctx.advance(KernelImageLoaded)

	return
}

func (ctx *Context) mapKernel(image []byte) (err error) {
	if ctx.Kernel, err = ParseKernel(image); err != nil {
		return fail(FormatError, ctx.state, err)
	}

	for _, s := range ctx.Kernel.Segments {
		ctx.Log.Printf("segment %s", s)
	}

	if err = ctx.Kernel.Load(ctx.Boot); err != nil {
		return fail(FirmwareError, ctx.state, fmt.Errorf("could not load kernel, %w", err))
	}

	ctx.Log.Printf("kernel entry point %#x", ctx.Kernel.Entry)
	ctx.advance(KernelMapped)

	return
}
