// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"errors"
	"fmt"

	"github.com/potato-os/potato-boot/bootinfo"
	"github.com/potato-os/potato-boot/memmap"
	"github.com/potato-os/potato-boot/uefi"
)

func (ctx *Context) buildHandoff() (err error) {
	var buf []byte

	fb, err := ctx.Display.Framebuffer()

	if err != nil {
		return fail(FirmwareError, ctx.state, fmt.Errorf("could not get framebuffer, %w", err))
	}

	ctx.Log.Printf("framebuffer %dx%d (stride:%d) @ %#x (%d bytes)", fb.Width, fb.Height, fb.PixelsPerScanline, fb.Base, fb.Size)

	if ctx.InfoAddress, err = ctx.Boot.AllocatePool(uefi.EfiLoaderData, bootinfo.Size); err != nil {
		return fail(FirmwareError, ctx.state, err)
	}

	if buf, err = ctx.Boot.Memory(ctx.InfoAddress, bootinfo.Size); err != nil {
		return fail(FirmwareError, ctx.state, err)
	}

	ctx.Info = &bootinfo.BootInfo{
		Framebuffer: fb,
	}

	if err = ctx.Info.Encode(buf); err != nil {
		return fail(FirmwareError, ctx.state, err)
	}

	ctx.advance(HandoffBuilt)

	return
}

// exitBootServices captures the final memory map and exits boot services,
// retrying with a fresh map key whenever the firmware reports a stale one.
// The map is refreshed once all logging is done so that no allocation nor
// console output takes place between a capture and its exit attempt.
func (ctx *Context) exitBootServices() (err error) {
	var m *memmap.Snapshot
	var buf []byte

	if m, err = memmap.Capture(ctx.Boot); err != nil {
		return fail(FirmwareError, ctx.state, err)
	}

	if size, err := m.UsableMemory(); err == nil {
		ctx.Log.Printf("memory map: %d entries, %d MiB usable", m.Len(), size>>20)
	}

	// fetched now as it must not be done after exit
	if buf, err = ctx.Boot.Memory(ctx.InfoAddress, bootinfo.Size); err != nil {
		return fail(FirmwareError, ctx.state, err)
	}

	ctx.Log.Println("exiting boot services")

	if err = m.Refresh(); err != nil {
		return fail(FirmwareError, ctx.state, err)
	}

	for {
		err = ctx.Boot.ExitBootServices(m.Key)

		if err == nil {
			break
		}

		if !errors.Is(err, uefi.ErrEfiInvalidParameter) {
			return fail(FirmwareError, ctx.state, fmt.Errorf("could not exit boot services, %w", err))
		}

		if err = m.Refresh(); err != nil {
			return fail(FirmwareError, ctx.state, err)
		}
	}

	ctx.state = ServicesExited
	ctx.MemoryMap = m
	ctx.Info.MemoryMap = m.Handoff()

	return ctx.Info.MemoryMap.Encode(buf[0x20:])
}
