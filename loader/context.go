// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package loader implements the boot pipeline which loads an ELF64 kernel
// from the boot volume, builds its handoff record, exits UEFI Boot Services
// and transfers control to the kernel entry point.
//
// All firmware access goes through the capability interfaces held by an
// explicit Context, the UEFI implementation of each is returned by
// NewContext.
package loader

import (
	"io"
	"io/fs"
	"log"
	"time"

	"github.com/potato-os/potato-boot/bootinfo"
	"github.com/potato-os/potato-boot/memmap"
	"github.com/potato-os/potato-boot/options"
	"github.com/potato-os/potato-boot/uefi"
)

// BootDirectory is the default boot directory within the boot volume.
const BootDirectory = "EFI/boot"

// OptionsFile is the options file name within the boot directory.
const OptionsFile = "options.txt"

// BootServices represents the firmware boot services used by the pipeline.
type BootServices interface {
	memmap.Firmware
	PageAllocator

	ExitBootServices(mapKey uint64) error
	SetWatchdogTimer(sec int) error
}

// Console represents the firmware text console.
type Console interface {
	io.ReadWriter
	ClearScreen() error
}

// Volume represents the volume the loader image was loaded from.
type Volume interface {
	Root() (fs.FS, error)
}

// Display represents the firmware graphics output.
type Display interface {
	Framebuffer() (bootinfo.Framebuffer, error)
}

// Runtime represents the firmware runtime services.
type Runtime interface {
	ResetSystem(resetType uefi.ResetType) error
}

// Context represents the boot loader execution context.
type Context struct {
	// Firmware capabilities
	Console Console
	Boot    BootServices
	Volume  Volume
	Display Display
	Runtime Runtime

	// Services, when set, exposes the UEFI services for diagnostics.
	Services *uefi.Services

	// Directory is the boot directory path within the volume.
	Directory string

	// Log is the loader logger, it is never used once boot services have
	// been exited.
	Log *log.Logger

	// Shell, when set, is invoked once the configuration is loaded if the
	// options request it. The pipeline resumes when it returns.
	Shell func(ctx *Context, o *options.BootOptions) error

	// Enter transfers control to the kernel entry point, passing the
	// handoff record address. It does not return for real kernels.
	Enter func(entry uint64, info uint64)

	// Started is the loader start time.
	Started time.Time

	// Options holds the boot options once loaded.
	Options *options.BootOptions
	// Kernel holds the parsed kernel once loaded.
	Kernel *Kernel
	// Info holds the handoff record contents once built.
	Info *bootinfo.BootInfo
	// InfoAddress holds the handoff record address once built.
	InfoAddress uint64
	// MemoryMap holds the final memory map snapshot.
	MemoryMap *memmap.Snapshot

	state State
	root  fs.FS
}

// State returns the pipeline state reached.
func (ctx *Context) State() State {
	return ctx.state
}

// Root returns the boot directory file system once resolved.
func (ctx *Context) Root() fs.FS {
	return ctx.root
}

func (ctx *Context) advance(s State) {
	ctx.state = s

	if s < ServicesExited {
		ctx.Log.Printf("state: %s", s)
	}
}
