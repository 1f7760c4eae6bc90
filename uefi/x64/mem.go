// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package x64

import (
	"fmt"
	"runtime"
	_ "unsafe"

	"github.com/potato-os/potato-boot/memmap"
	"github.com/potato-os/potato-boot/uefi"
)

//go:linkname _unused runtime.ramStart
var _unused uint64 = 0x00100000 // overridden in x64.s

//go:linkname RamSize runtime.ramSize
var RamSize uint64 = 0x10000000 // 256MB

// allocateHeap reserves the runtime heap, which follows the loader image, in
// UEFI pages so that firmware allocations never overlap with it.
func allocateHeap(fw *uefi.BootServices) (err error) {
	m, err := memmap.Capture(fw)

	if err != nil {
		return fmt.Errorf("could not get memory map, %v", err)
	}
	defer m.Free()

	heapStart := uint64(0)
	ramStart, ramEnd := runtime.MemRegion()

	desc, err := m.Descriptors()

	if err != nil {
		return
	}

	// locate runtime heap offset within UEFI memory allocation
	for _, d := range desc {
		if d.Type == uefi.EfiLoaderCode && d.PhysicalStart == uint64(ramStart) {
			heapStart = d.PhysicalEnd()
			break
		}
	}

	if heapStart == 0 {
		return fmt.Errorf("could not find heap offset")
	}

	if _, err = fw.AllocatePages(
		uefi.AllocateAddress,
		uefi.EfiLoaderData,
		int(uint64(ramEnd)-heapStart),
		heapStart,
	); err != nil {
		return fmt.Errorf("could not allocate heap at %#x, %v", heapStart, err)
	}

	return
}
