// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"fmt"
)

// EFI Boot Service offsets
const (
	allocatePages = 0x28
	freePages     = 0x30
	allocatePool  = 0x40
	freePool      = 0x48
)

// PageSize represents the EFI page size in bytes
const PageSize = 4096 // 4 KiB

// EFI_ALLOCATE_TYPE
const (
	AllocateAnyPages = iota
	AllocateMaxAddress
	AllocateAddress
	MaxAllocateType
)

// EFI_MEMORY_TYPE
const (
	EfiReservedMemoryType = iota
	EfiLoaderCode
	EfiLoaderData
	EfiBootServicesCode
	EfiBootServicesData
	EfiRuntimeServicesCode
	EfiRuntimeServicesData
	EfiConventionalMemory
	EfiUnusableMemory
	EfiACPIReclaimMemory
	EfiACPIMemoryNVS
	EfiMemoryMappedIO
	EfiMemoryMappedIOPortSpace
	EfiPalCode
	EfiPersistentMemory
	EfiUnacceptedMemoryType
	EfiMaxMemoryType
)

// Pages returns the number of pages required to hold size bytes.
func Pages(size uint64) uint64 {
	return (size + PageSize - 1) / PageSize
}

// AllocatePages calls EFI_BOOT_SERVICES.AllocatePages(), the size is rounded
// up to a page multiple. With AllocateAddress the physical address argument is
// the exact location requested.
func (s *BootServices) AllocatePages(allocateType int, memoryType int, size int, physicalAddress uint64) (addr uint64, err error) {
	addr = physicalAddress

	status := callService(s.base+allocatePages,
		[]uint64{
			uint64(allocateType),
			uint64(memoryType),
			Pages(uint64(size)),
			ptrval(&addr),
		},
	)

	if err = parseStatus(status); err != nil {
		return 0, fmt.Errorf("could not allocate %d bytes at %#x, %w", size, physicalAddress, err)
	}

	return
}

// FreePages calls EFI_BOOT_SERVICES.FreePages().
func (s *BootServices) FreePages(physicalAddress uint64, size int) error {
	status := callService(s.base+freePages,
		[]uint64{
			physicalAddress,
			Pages(uint64(size)),
		},
	)

	return parseStatus(status)
}

// AllocatePool calls EFI_BOOT_SERVICES.AllocatePool().
func (s *BootServices) AllocatePool(memoryType int, size int) (addr uint64, err error) {
	status := callService(s.base+allocatePool,
		[]uint64{
			uint64(memoryType),
			uint64(size),
			ptrval(&addr),
		},
	)

	if err = parseStatus(status); err != nil {
		return 0, fmt.Errorf("could not allocate %d bytes from pool, %w", size, err)
	}

	return
}

// FreePool calls EFI_BOOT_SERVICES.FreePool().
func (s *BootServices) FreePool(addr uint64) error {
	status := callService(s.base+freePool,
		[]uint64{
			addr,
		},
	)

	return parseStatus(status)
}

// Memory returns a slice over memory previously obtained through
// AllocatePages or AllocatePool.
func (s *BootServices) Memory(addr uint64, size int) ([]byte, error) {
	return view(addr, size)
}
