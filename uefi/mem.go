// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"fmt"

	"github.com/u-root/u-root/pkg/boot/bzimage"
)

// EFI Boot Services offset for GetMemoryMap
const getMemoryMap = 0x38

// Advanced Configuration and Power Interface Specification (ACPI)
// Version 6.0 - Table 15-312 Address Range Types12
const AddressRangePersistentMemory = 7

// EFI memory attributes
const (
	EFI_MEMORY_UC            = 0x0000000000000001
	EFI_MEMORY_WC            = 0x0000000000000002
	EFI_MEMORY_WT            = 0x0000000000000004
	EFI_MEMORY_WB            = 0x0000000000000008
	EFI_MEMORY_UCE           = 0x0000000000000010
	EFI_MEMORY_WP            = 0x0000000000001000
	EFI_MEMORY_RP            = 0x0000000000002000
	EFI_MEMORY_XP            = 0x0000000000004000
	EFI_MEMORY_NV            = 0x0000000000008000
	EFI_MEMORY_MORE_RELIABLE = 0x0000000000010000
	EFI_MEMORY_RO            = 0x0000000000020000
	EFI_MEMORY_SP            = 0x0000000000040000
	EFI_MEMORY_CPU_CRYPTO    = 0x0000000000080000
	EFI_MEMORY_RUNTIME       = 0x8000000000000000
)

// DescriptorSize is the size of the EFI_MEMORY_DESCRIPTOR structure known to
// this package, firmware may report a larger stride.
const DescriptorSize = 40

var memoryTypeNames = []string{
	"Reserved",
	"LoaderCode",
	"LoaderData",
	"BootServicesCode",
	"BootServicesData",
	"RuntimeServicesCode",
	"RuntimeServicesData",
	"Conventional",
	"Unusable",
	"ACPIReclaim",
	"ACPINVS",
	"MMIO",
	"MMIOPortSpace",
	"PalCode",
	"Persistent",
	"Unaccepted",
}

// MemoryDescriptor represents an EFI Memory Descriptor
type MemoryDescriptor struct {
	Type          uint32
	_             uint32
	PhysicalStart uint64
	VirtualStart  uint64
	NumberOfPages uint64
	Attribute     uint64
}

// PhysicalEnd returns the descriptor physical end address.
func (d *MemoryDescriptor) PhysicalEnd() uint64 {
	return d.PhysicalStart + d.NumberOfPages*PageSize
}

// Size returns the descriptor size.
func (d *MemoryDescriptor) Size() int {
	return int(d.NumberOfPages * PageSize)
}

// TypeName returns the descriptor memory type name.
func (d *MemoryDescriptor) TypeName() string {
	if int(d.Type) < len(memoryTypeNames) {
		return memoryTypeNames[d.Type]
	}

	return fmt.Sprintf("%#x", d.Type)
}

// E820 converts an EFI Memory Map entry to an x86 E820 one suitable for use
// after exiting EFI Boot Services.
func (d *MemoryDescriptor) E820() (bzimage.E820Entry, error) {
	e := bzimage.E820Entry{
		Addr: d.PhysicalStart,
		Size: d.NumberOfPages * PageSize,
	}

	// Unified Extensible Firmware Interface (UEFI) Specification
	// Version 2.10 - Table 7.10: Memory Type Usage after ExitBootServices()
	switch d.Type {
	case EfiLoaderCode, EfiLoaderData, EfiBootServicesCode, EfiBootServicesData, EfiConventionalMemory:
		e.MemType = bzimage.RAM
	case EfiPersistentMemory:
		e.MemType = AddressRangePersistentMemory
	case EfiACPIReclaimMemory:
		e.MemType = bzimage.ACPI
	case EfiACPIMemoryNVS:
		e.MemType = bzimage.NVS
	default:
		e.MemType = bzimage.Reserved
	}

	return e, nil
}

// Descriptors decodes the memory descriptors held in the first size bytes of
// buf, entries are located using the firmware reported stride which can
// exceed DescriptorSize.
func Descriptors(buf []byte, size uint64, stride uint64) (d []*MemoryDescriptor, err error) {
	if stride < DescriptorSize {
		return nil, fmt.Errorf("invalid descriptor size %d", stride)
	}

	if size > uint64(len(buf)) {
		return nil, errors.New("invalid memory map size")
	}

	for off := uint64(0); off+stride <= size; off += stride {
		desc := &MemoryDescriptor{}

		if err = unmarshalBinary(buf[off:off+DescriptorSize], desc); err != nil {
			return nil, err
		}

		d = append(d, desc)
	}

	return
}

// GetMemoryMap calls EFI_BOOT_SERVICES.GetMemoryMap() filling the argument
// buffer. An empty buffer probes the required size, which is returned along
// with ErrEfiBufferTooSmall.
func (s *BootServices) GetMemoryMap(buf []byte) (mapSize uint64, mapKey uint64, descriptorSize uint64, err error) {
	var descriptorVersion uint32

	mapSize = uint64(len(buf))

	status := callService(
		s.base+getMemoryMap,
		[]uint64{
			ptrval(&mapSize),
			bufval(buf),
			ptrval(&mapKey),
			ptrval(&descriptorSize),
			ptrval(&descriptorVersion),
		},
	)

	err = parseStatus(status)

	return
}
