// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"

	"github.com/potato-os/potato-boot/loader"
	"github.com/potato-os/potato-boot/memmap"
	"github.com/potato-os/potato-boot/shell"
	"github.com/potato-os/potato-boot/uefi"
)

var e820Names = map[uint32]string{
	1: "RAM",
	2: "Reserved",
	3: "ACPI",
	4: "NVS",
	5: "Unusable",
	7: "Persistent",
}

func addUEFI(iface *shell.Interface, ctx *loader.Context) {
	iface.Add(shell.Cmd{
		Name: "info",
		Help: "UEFI information",
		Fn: func(_ *shell.Interface, _ []string) (string, error) {
			return info(ctx.Services)
		},
	})

	iface.Add(shell.Cmd{
		Name: "memmap",
		Help: "EFI_BOOT_SERVICES.GetMemoryMap()",
		Fn: func(_ *shell.Interface, _ []string) (string, error) {
			return memoryMap(ctx.Boot)
		},
	})

	iface.Add(shell.Cmd{
		Name: "mode",
		Help: "EFI_GRAPHICS_OUTPUT_PROTOCOL mode",
		Fn: func(_ *shell.Interface, _ []string) (string, error) {
			fb, err := ctx.Display.Framebuffer()

			if err != nil {
				return "", err
			}

			return fmt.Sprintf("%dx%d (stride:%d) @ %#x (%d bytes)",
				fb.Width, fb.Height, fb.PixelsPerScanline, fb.Base, fb.Size), nil
		},
	})

	iface.Add(shell.Cmd{
		Name:    "reset",
		Args:    1,
		Pattern: regexp.MustCompile(`^reset(?: (cold|warm|shutdown))?$`),
		Syntax:  "(cold|warm|shutdown)?",
		Help:    "EFI_RUNTIME_SERVICES.ResetSystem()",
		Fn: func(_ *shell.Interface, arg []string) (string, error) {
			return reset(ctx, arg[0])
		},
	})
}

func info(s *uefi.Services) (string, error) {
	var buf bytes.Buffer

	if s == nil || s.SystemTable == nil {
		return "", errors.New("EFI System Table unavailable")
	}

	t := s.SystemTable
	vendor, _ := s.FirmwareVendor()

	fmt.Fprintf(&buf, "Firmware Vendor ....: %s\n", vendor)
	fmt.Fprintf(&buf, "Firmware Revision ..: %#x\n", t.FirmwareRevision)
	fmt.Fprintf(&buf, "UEFI Revision ......: %d.%d\n", t.Header.Revision>>16, t.Header.Revision&0xffff)
	fmt.Fprintf(&buf, "Image Handle .......: %#x\n", s.ImageHandle())
	fmt.Fprintf(&buf, "System Table .......: %#x\n", s.Address())
	fmt.Fprintf(&buf, "Runtime Services ...: %#x\n", t.RuntimeServices)
	fmt.Fprintf(&buf, "Boot Services ......: %#x\n", t.BootServices)
	fmt.Fprintf(&buf, "Configuration Tables: %#x\n", t.ConfigurationTable)

	if c, err := t.ConfigurationTables(); err == nil {
		for _, t := range c {
			fmt.Fprintf(&buf, "  %-36s %#x\n", t.Name(), t.VendorTable)
		}
	}

	return buf.String(), nil
}

func memoryMap(fw memmap.Firmware) (res string, err error) {
	var buf bytes.Buffer

	m, err := memmap.Capture(fw)

	if err != nil {
		return
	}
	defer m.Free()

	desc, err := m.Descriptors()

	if err != nil {
		return
	}

	fmt.Fprintf(&buf, "Type                Start            End              Pages            Attributes       E820\n")

	for _, d := range desc {
		e, err := d.E820()

		if err != nil {
			return "", err
		}

		fmt.Fprintf(&buf, "%-19s %016x %016x %016x %016x %s\n",
			d.TypeName(), d.PhysicalStart, d.PhysicalEnd()-1, d.NumberOfPages, d.Attribute, e820Names[uint32(e.MemType)])
	}

	if size, err := m.UsableMemory(); err == nil {
		fmt.Fprintf(&buf, "%d entries (stride:%d), %d MiB usable", m.Len(), m.Stride, size>>20)
	}

	return buf.String(), nil
}

func reset(ctx *loader.Context, mode string) (_ string, err error) {
	if ctx.Runtime == nil {
		return "", errors.New("EFI Runtime Services unavailable")
	}

	resetType, err := uefi.ParseResetType(mode)

	if err != nil {
		return
	}

	ctx.Log.Printf("performing %s system reset", resetType)

	return "", ctx.Runtime.ResetSystem(resetType)
}
