// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package bootinfo defines the handoff record passed by the boot loader to
// the kernel entry point.
//
// The record layout is the binary interface between two independently built
// programs, it is fixed and not versioned:
//
//	offset  size  field
//	0x00    4     framebuffer width
//	0x04    4     framebuffer height
//	0x08    4     framebuffer pixels per scanline
//	0x0c    4     reserved (zero)
//	0x10    8     framebuffer physical base address
//	0x18    8     framebuffer size in bytes
//	0x20    8     memory map buffer physical address
//	0x28    8     memory map descriptor count
//	0x30    8     memory map descriptor stride
//
// All fields are little-endian.
package bootinfo

import (
	"encoding/binary"
	"fmt"
)

// Size is the handoff record size in bytes.
const Size = 56

// Framebuffer describes the display surface.
type Framebuffer struct {
	Width             uint32
	Height            uint32
	PixelsPerScanline uint32
	_                 uint32
	Base              uint64
	Size              uint64
}

// MemoryMap describes the final UEFI memory map, descriptors are located
// with Stride which can exceed the UEFI memory descriptor size.
type MemoryMap struct {
	Buffer uint64
	Count  uint64
	Stride uint64
}

// BootInfo represents the handoff record.
type BootInfo struct {
	Framebuffer Framebuffer
	MemoryMap   MemoryMap
}

// Encode writes the record to buf, which must be at least Size bytes long,
// without allocating.
func (b *BootInfo) Encode(buf []byte) error {
	if len(buf) < Size {
		return fmt.Errorf("invalid buffer size (%d < %d)", len(buf), Size)
	}

	binary.LittleEndian.PutUint32(buf[0x00:], b.Framebuffer.Width)
	binary.LittleEndian.PutUint32(buf[0x04:], b.Framebuffer.Height)
	binary.LittleEndian.PutUint32(buf[0x08:], b.Framebuffer.PixelsPerScanline)
	binary.LittleEndian.PutUint32(buf[0x0c:], 0)
	binary.LittleEndian.PutUint64(buf[0x10:], b.Framebuffer.Base)
	binary.LittleEndian.PutUint64(buf[0x18:], b.Framebuffer.Size)

	return b.MemoryMap.Encode(buf[0x20:])
}

// Encode writes the memory map descriptor to buf, as found at offset 0x20 of
// the handoff record, without allocating.
func (m *MemoryMap) Encode(buf []byte) error {
	if len(buf) < 24 {
		return fmt.Errorf("invalid buffer size (%d < 24)", len(buf))
	}

	binary.LittleEndian.PutUint64(buf[0x00:], m.Buffer)
	binary.LittleEndian.PutUint64(buf[0x08:], m.Count)
	binary.LittleEndian.PutUint64(buf[0x10:], m.Stride)

	return nil
}

// MarshalBinary implements the [encoding.BinaryMarshaler] interface.
func (b *BootInfo) MarshalBinary() ([]byte, error) {
	buf := make([]byte, Size)
	return buf, b.Encode(buf)
}

// UnmarshalBinary implements the [encoding.BinaryUnmarshaler] interface.
func (b *BootInfo) UnmarshalBinary(buf []byte) error {
	if len(buf) < Size {
		return fmt.Errorf("invalid buffer size (%d < %d)", len(buf), Size)
	}

	b.Framebuffer.Width = binary.LittleEndian.Uint32(buf[0x00:])
	b.Framebuffer.Height = binary.LittleEndian.Uint32(buf[0x04:])
	b.Framebuffer.PixelsPerScanline = binary.LittleEndian.Uint32(buf[0x08:])
	b.Framebuffer.Base = binary.LittleEndian.Uint64(buf[0x10:])
	b.Framebuffer.Size = binary.LittleEndian.Uint64(buf[0x18:])
	b.MemoryMap.Buffer = binary.LittleEndian.Uint64(buf[0x20:])
	b.MemoryMap.Count = binary.LittleEndian.Uint64(buf[0x28:])
	b.MemoryMap.Stride = binary.LittleEndian.Uint64(buf[0x30:])

	return nil
}

// String returns a summary of the handoff record.
func (b *BootInfo) String() string {
	fb := b.Framebuffer
	mm := b.MemoryMap

	return fmt.Sprintf("framebuffer %dx%d (stride:%d) @ %#x (%d bytes), memory map @ %#x (count:%d stride:%d)",
		fb.Width, fb.Height, fb.PixelsPerScanline, fb.Base, fb.Size, mm.Buffer, mm.Count, mm.Stride)
}
