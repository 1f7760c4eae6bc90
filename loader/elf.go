// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"math"

	"github.com/potato-os/potato-boot/uefi"
)

// PageAllocator represents the boot services used to place kernel segments.
type PageAllocator interface {
	AllocatePages(allocateType int, memoryType int, size int, physicalAddress uint64) (addr uint64, err error)
	Memory(addr uint64, size int) ([]byte, error)
}

// Segment represents an ELF loadable segment.
type Segment struct {
	// Offset is the segment offset within the image.
	Offset uint64
	// Filesz is the number of bytes backed by the image.
	Filesz uint64
	// Vaddr is the segment virtual address.
	Vaddr uint64
	// Paddr is the segment physical load address.
	Paddr uint64
	// Memsz is the segment size in memory.
	Memsz uint64
}

// Pages returns the number of pages spanned by the segment in memory.
func (s *Segment) Pages() uint64 {
	return uefi.Pages(s.Memsz)
}

func (s *Segment) String() string {
	return fmt.Sprintf("%#08x-%#08x pages:%d file:%#x mem:%#x", s.Paddr, s.Paddr+s.Pages()*uefi.PageSize, s.Pages(), s.Filesz, s.Memsz)
}

// Kernel represents a parsed ELF64 kernel image.
type Kernel struct {
	// Entry is the kernel entry point physical address, translated from
	// the ELF virtual entry through the segment containing it.
	Entry uint64
	// Segments are the loadable segments with a non-zero page count.
	Segments []*Segment

	image []byte
}

// ParseKernel parses an x86_64 ELF64 executable. Position independent
// executables are not supported as segment addresses are used as is.
func ParseKernel(image []byte) (k *Kernel, err error) {
	f, err := elf.NewFile(bytes.NewReader(image))

	if err != nil {
		return nil, fmt.Errorf("invalid ELF image, %v", err)
	}
	defer f.Close()

	switch {
	case f.Class != elf.ELFCLASS64:
		return nil, fmt.Errorf("unsupported ELF class %v", f.Class)
	case f.Data != elf.ELFDATA2LSB:
		return nil, fmt.Errorf("unsupported ELF data encoding %v", f.Data)
	case f.Machine != elf.EM_X86_64:
		return nil, fmt.Errorf("unsupported ELF machine %v", f.Machine)
	case f.Type != elf.ET_EXEC:
		return nil, fmt.Errorf("unsupported ELF type %v", f.Type)
	case f.Entry == 0:
		return nil, errors.New("ELF entry point is zero")
	}

	var entry bool

	k = &Kernel{
		image: image,
	}

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}

		s := &Segment{
			Offset: prog.Off,
			Filesz: prog.Filesz,
			Vaddr:  prog.Vaddr,
			Paddr:  prog.Paddr,
			Memsz:  prog.Memsz,
		}

		if s.Memsz > math.MaxUint64-(uefi.PageSize-1) {
			return nil, fmt.Errorf("ELF segment mem size %#x overflows address space", s.Memsz)
		}

		if s.Pages() == 0 {
			continue
		}

		if s.Filesz > s.Memsz {
			return nil, fmt.Errorf("ELF segment file size %#x exceeds mem size %#x", s.Filesz, s.Memsz)
		}

		if s.Offset > uint64(len(image)) || s.Filesz > uint64(len(image))-s.Offset {
			return nil, fmt.Errorf("ELF segment @%#x exceeds image size", s.Offset)
		}

		if s.Paddr%uefi.PageSize != 0 {
			return nil, fmt.Errorf("ELF segment address %#x is not page aligned", s.Paddr)
		}

		if s.Paddr+s.Pages()*uefi.PageSize < s.Paddr {
			return nil, fmt.Errorf("ELF segment @%#x overflows address space", s.Paddr)
		}

		if f.Entry >= s.Vaddr && f.Entry-s.Vaddr < s.Memsz {
			k.Entry = s.Paddr + (f.Entry - s.Vaddr)
			entry = true
		}

		k.Segments = append(k.Segments, s)
	}

	if len(k.Segments) == 0 {
		return nil, errors.New("ELF image has no loadable segments")
	}

	if !entry {
		return nil, fmt.Errorf("ELF entry point %#x is outside loadable segments", f.Entry)
	}

	return
}

// Load places all kernel segments at their physical address, memory beyond
// the file backed bytes of each segment is zeroed.
func (k *Kernel) Load(mem PageAllocator) (err error) {
	for _, s := range k.Segments {
		var addr uint64
		var buf []byte

		size := int(s.Pages() * uefi.PageSize)

		if addr, err = mem.AllocatePages(uefi.AllocateAddress, uefi.EfiLoaderData, size, s.Paddr); err != nil {
			return
		}

		if addr != s.Paddr {
			return fmt.Errorf("segment allocated at %#x instead of %#x", addr, s.Paddr)
		}

		if buf, err = mem.Memory(addr, size); err != nil {
			return
		}

		n := copy(buf, k.image[s.Offset:s.Offset+s.Filesz])
		clear(buf[n:])
	}

	return
}
