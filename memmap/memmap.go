// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package memmap captures and iterates the UEFI memory map.
//
// A Snapshot owns the buffer holding the firmware descriptors along with the
// reported descriptor stride and map key. The key identifies the firmware
// memory state at capture time and becomes stale on any later allocation or
// release, which is why Refresh never allocates unless the firmware reports
// that the current buffer is too small.
package memmap

import (
	"errors"
	"fmt"

	"github.com/u-root/u-root/pkg/boot/bzimage"

	"github.com/potato-os/potato-boot/bootinfo"
	"github.com/potato-os/potato-boot/uefi"
)

// maxAttempts bounds the number of buffer resizes performed when the memory
// map grows while being captured.
const maxAttempts = 8

// Firmware represents the boot services required to capture a memory map.
type Firmware interface {
	GetMemoryMap(buf []byte) (mapSize uint64, mapKey uint64, descriptorSize uint64, err error)
	AllocatePool(memoryType int, size int) (addr uint64, err error)
	FreePool(addr uint64) error
	Memory(addr uint64, size int) ([]byte, error)
}

// Snapshot represents a captured UEFI memory map.
type Snapshot struct {
	// Key is the memory map key reported with the last capture.
	Key uint64
	// Stride is the firmware reported descriptor size.
	Stride uint64
	// Size is the number of valid bytes in the buffer.
	Size uint64
	// Address is the physical address of the buffer.
	Address uint64

	fw  Firmware
	buf []byte
}

// probe returns the memory map size and descriptor stride reported for a
// zero-length buffer.
func probe(fw Firmware) (size uint64, stride uint64, err error) {
	size, _, stride, err = fw.GetMemoryMap(nil)

	switch {
	case err == nil:
		return 0, 0, errors.New("memory map probe did not report its size")
	case !errors.Is(err, uefi.ErrEfiBufferTooSmall):
		return 0, 0, fmt.Errorf("memory map probe failed, %w", err)
	}

	if stride == 0 {
		stride = uefi.DescriptorSize
	}

	return size, stride, nil
}

// Capture probes the memory map size, allocates a pool buffer large enough to
// also hold the descriptors created by the allocation itself and fills it.
func Capture(fw Firmware) (m *Snapshot, err error) {
	size, stride, err := probe(fw)

	if err != nil {
		return
	}

	m = &Snapshot{
		fw: fw,
	}

	if err = m.alloc(size + 2*stride); err != nil {
		return nil, err
	}

	if err = m.Refresh(); err != nil {
		m.Free()
		return nil, err
	}

	return
}

// alloc replaces the snapshot buffer with a pool allocation of the argument
// size.
func (m *Snapshot) alloc(size uint64) (err error) {
	if err = m.Free(); err != nil {
		return
	}

	if m.Address, err = m.fw.AllocatePool(uefi.EfiLoaderData, int(size)); err != nil {
		return
	}

	if m.buf, err = m.fw.Memory(m.Address, int(size)); err != nil {
		m.fw.FreePool(m.Address)
		m.Address = 0
	}

	return
}

// Refresh captures the memory map again in the current buffer, updating the
// map key. The buffer is replaced only when too small, in which case the
// capture is repeated so that the returned key always reflects the firmware
// state after the last allocation.
func (m *Snapshot) Refresh() (err error) {
	if m.fw == nil {
		return errors.New("invalid snapshot")
	}

	for i := 0; i < maxAttempts; i++ {
		size, key, stride, err := m.fw.GetMemoryMap(m.buf)

		if err == nil {
			if stride < uefi.DescriptorSize || size > uint64(len(m.buf)) {
				return fmt.Errorf("invalid memory map (size:%d stride:%d)", size, stride)
			}

			m.Size = size
			m.Key = key
			m.Stride = stride

			return nil
		}

		if !errors.Is(err, uefi.ErrEfiBufferTooSmall) {
			return fmt.Errorf("could not get memory map, %w", err)
		}

		if stride == 0 {
			stride = uefi.DescriptorSize
		}

		if err = m.alloc(size + 2*stride); err != nil {
			return err
		}
	}

	return errors.New("could not get memory map, size not converging")
}

// Free releases the snapshot buffer.
func (m *Snapshot) Free() (err error) {
	if m.Address == 0 {
		return
	}

	err = m.fw.FreePool(m.Address)

	m.Address = 0
	m.buf = nil

	return
}

// Len returns the number of descriptors in the snapshot.
func (m *Snapshot) Len() int {
	if m.Stride == 0 {
		return 0
	}

	return int(m.Size / m.Stride)
}

// Descriptors returns the snapshot memory descriptors.
func (m *Snapshot) Descriptors() ([]*uefi.MemoryDescriptor, error) {
	return uefi.Descriptors(m.buf, m.Size, m.Stride)
}

// E820 returns the snapshot converted to x86 E820 entries.
func (m *Snapshot) E820() (e []bzimage.E820Entry, err error) {
	desc, err := m.Descriptors()

	if err != nil {
		return
	}

	for _, d := range desc {
		entry, err := d.E820()

		if err != nil {
			return nil, err
		}

		e = append(e, entry)
	}

	return
}

// UsableMemory returns the amount of RAM available to the kernel once boot
// services are exited.
func (m *Snapshot) UsableMemory() (size uint64, err error) {
	e, err := m.E820()

	if err != nil {
		return
	}

	for _, entry := range e {
		if entry.MemType == bzimage.RAM {
			size += entry.Size
		}
	}

	return
}

// Handoff returns the kernel handoff descriptor for the snapshot, it refers
// to the snapshot buffer which must therefore never be freed after it has
// been handed over.
func (m *Snapshot) Handoff() bootinfo.MemoryMap {
	return bootinfo.MemoryMap{
		Buffer: m.Address,
		Count:  uint64(m.Len()),
		Stride: m.Stride,
	}
}
