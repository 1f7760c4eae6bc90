// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/potato-os/potato-boot/bootinfo"
	"github.com/potato-os/potato-boot/uefi"
)

const mockStride = 48

type allocation struct {
	addr       uint64
	buf        []byte
	memoryType int
}

// mockFirmware implements all loader capabilities over Go memory, recording
// an ordered log of firmware calls.
type mockFirmware struct {
	t *testing.T

	calls  []string
	allocs []*allocation
	next   uint64
	key    uint64

	// number of ExitBootServices calls reporting a stale key
	stale int
	// ExitBootServices error other than a stale key
	exitErr error
	// console output allocates firmware memory
	writeAllocates bool
	// ClearScreen error
	clearErr error

	exited bool
	fb     bootinfo.Framebuffer
	fsys   *recordingFS
	out    bytes.Buffer

	entry uint64
	info  uint64
	enter int
}

func newMockFirmware(t *testing.T, files fstest.MapFS) *mockFirmware {
	return &mockFirmware{
		t:    t,
		next: 0x40000000,
		key:  1,
		fb: bootinfo.Framebuffer{
			Width:             1024,
			Height:            768,
			PixelsPerScanline: 1024,
			Base:              0xc0000000,
			Size:              1024 * 768 * 4,
		},
		fsys: &recordingFS{fsys: files},
	}
}

func (m *mockFirmware) call(format string, args ...any) {
	s := fmt.Sprintf(format, args...)

	if m.exited {
		m.t.Errorf("%s after ExitBootServices", s)
	}

	m.calls = append(m.calls, s)
}

// count returns the number of recorded calls with the argument prefix.
func (m *mockFirmware) count(prefix string) (n int) {
	for _, c := range m.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}

	return
}

// last returns the index of the last recorded call with the argument prefix.
func (m *mockFirmware) last(prefix string) int {
	for i := len(m.calls) - 1; i >= 0; i-- {
		if strings.HasPrefix(m.calls[i], prefix) {
			return i
		}
	}

	return -1
}

func (m *mockFirmware) find(addr uint64, size int) *allocation {
	for _, a := range m.allocs {
		if addr >= a.addr && addr+uint64(size) <= a.addr+uint64(len(a.buf)) {
			return a
		}
	}

	return nil
}

func (m *mockFirmware) overlaps(addr uint64, size int) bool {
	for _, a := range m.allocs {
		if addr < a.addr+uint64(len(a.buf)) && a.addr < addr+uint64(size) {
			return true
		}
	}

	return false
}

func (m *mockFirmware) GetMemoryMap(buf []byte) (mapSize uint64, mapKey uint64, descriptorSize uint64, err error) {
	if len(buf) == 0 {
		m.call("GetMemoryMap(probe)")
	} else {
		m.call("GetMemoryMap")
	}

	type region struct {
		typ   uint32
		start uint64
		pages uint64
	}

	regions := []region{
		{uefi.EfiConventionalMemory, 0x00000000, 0x9f},
		{uefi.EfiConventionalMemory, 0x00100000, 0x3ff00},
	}

	for _, a := range m.allocs {
		regions = append(regions, region{uint32(a.memoryType), a.addr, uefi.Pages(uint64(len(a.buf)))})
	}

	size := uint64(len(regions)) * mockStride

	if uint64(len(buf)) < size {
		return size, 0, mockStride, uefi.ErrEfiBufferTooSmall
	}

	for i, r := range regions {
		entry := buf[i*mockStride:]
		binary.LittleEndian.PutUint32(entry[0:], r.typ)
		binary.LittleEndian.PutUint64(entry[8:], r.start)
		binary.LittleEndian.PutUint64(entry[24:], r.pages)
	}

	return size, m.key, mockStride, nil
}

func (m *mockFirmware) AllocatePool(memoryType int, size int) (addr uint64, err error) {
	m.call("AllocatePool %d", size)

	addr = m.next
	m.next += uefi.Pages(uint64(size)) * uefi.PageSize
	m.allocs = append(m.allocs, &allocation{addr, make([]byte, size), memoryType})
	m.key++

	return
}

func (m *mockFirmware) FreePool(addr uint64) error {
	m.call("FreePool %#x", addr)

	for i, a := range m.allocs {
		if a.addr == addr {
			m.allocs = append(m.allocs[:i], m.allocs[i+1:]...)
			m.key++
			return nil
		}
	}

	return uefi.ErrEfiInvalidParameter
}

func (m *mockFirmware) AllocatePages(allocateType int, memoryType int, size int, physicalAddress uint64) (addr uint64, err error) {
	pages := uefi.Pages(uint64(size))
	m.call("AllocatePages %#x %d", physicalAddress, pages)

	if allocateType != uefi.AllocateAddress {
		return 0, uefi.ErrEfiInvalidParameter
	}

	if m.overlaps(physicalAddress, int(pages*uefi.PageSize)) {
		return 0, uefi.ErrEfiNotFound
	}

	// firmware memory is not cleared
	buf := bytes.Repeat([]byte{0xcc}, int(pages*uefi.PageSize))

	m.allocs = append(m.allocs, &allocation{physicalAddress, buf, memoryType})
	m.key++

	return physicalAddress, nil
}

func (m *mockFirmware) Memory(addr uint64, size int) ([]byte, error) {
	a := m.find(addr, size)

	if a == nil {
		return nil, fmt.Errorf("invalid memory %#x (%d bytes)", addr, size)
	}

	off := addr - a.addr

	return a.buf[off : off+uint64(size)], nil
}

func (m *mockFirmware) ExitBootServices(mapKey uint64) error {
	m.call("ExitBootServices %d", mapKey)

	if m.exitErr != nil {
		return m.exitErr
	}

	if m.stale > 0 {
		// a firmware event changed the memory map
		m.stale--
		m.key++
	}

	if mapKey != m.key {
		return uefi.ErrEfiInvalidParameter
	}

	m.exited = true

	return nil
}

func (m *mockFirmware) SetWatchdogTimer(sec int) error {
	m.call("SetWatchdogTimer %d", sec)
	return nil
}

func (m *mockFirmware) ClearScreen() error {
	m.call("ClearScreen")
	return m.clearErr
}

func (m *mockFirmware) Read(p []byte) (int, error) {
	return 0, io.EOF
}

func (m *mockFirmware) Write(p []byte) (int, error) {
	if m.exited {
		m.t.Errorf("console output after ExitBootServices: %q", p)
	}

	if m.writeAllocates {
		m.call("ConsoleWrite")
		m.key++
	}

	return m.out.Write(p)
}

func (m *mockFirmware) Framebuffer() (bootinfo.Framebuffer, error) {
	m.call("LocateProtocol(GOP)")
	return m.fb, nil
}

func (m *mockFirmware) Root() (fs.FS, error) {
	m.call("OpenVolume")
	return m.fsys, nil
}

func (m *mockFirmware) Enter(entry uint64, info uint64) {
	m.entry = entry
	m.info = info
	m.enter++
}

func (m *mockFirmware) context() *Context {
	return &Context{
		Console:   m,
		Boot:      m,
		Volume:    m,
		Display:   m,
		Directory: BootDirectory,
		Log:       log.New(m, "", 0),
		Enter:     m.Enter,
	}
}

// recordingFS records the names of opened files.
type recordingFS struct {
	fsys   fstest.MapFS
	opened []string
}

func (r *recordingFS) Open(name string) (fs.File, error) {
	r.opened = append(r.opened, name)
	return r.fsys.Open(name)
}

type testSegment struct {
	typ   elf.ProgType
	paddr uint64
	data  []byte
	memsz uint64
}

// buildELF returns an x86_64 ELF64 executable with the argument program
// headers and no sections.
func buildELF(entry uint64, segs ...testSegment) []byte {
	const (
		ehsize    = 64
		phentsize = 56
	)

	buf := new(bytes.Buffer)

	hdr := elf.Header64{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     entry,
		Phoff:     ehsize,
		Ehsize:    ehsize,
		Phentsize: phentsize,
		Phnum:     uint16(len(segs)),
	}

	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	binary.Write(buf, binary.LittleEndian, &hdr)

	off := uint64(ehsize + phentsize*len(segs))

	for _, s := range segs {
		prog := elf.Prog64{
			Type:   uint32(s.typ),
			Flags:  uint32(elf.PF_R | elf.PF_X),
			Off:    off,
			Vaddr:  s.paddr,
			Paddr:  s.paddr,
			Filesz: uint64(len(s.data)),
			Memsz:  s.memsz,
			Align:  uefi.PageSize,
		}

		binary.Write(buf, binary.LittleEndian, &prog)
		off += uint64(len(s.data))
	}

	for _, s := range segs {
		buf.Write(s.data)
	}

	return buf.Bytes()
}

// pattern returns n non-zero bytes.
func pattern(n int) []byte {
	buf := make([]byte, n)

	for i := range buf {
		buf[i] = byte(i%251) + 1
	}

	return buf
}

func validFont() []byte {
	buf := []byte{0x36, 0x04, 0x02, 16}
	return append(buf, make([]byte, 256*16)...)
}

func asError(t *testing.T, err error) *Error {
	t.Helper()

	var e *Error

	if !errors.As(err, &e) {
		t.Fatalf("unexpected error type %T (%v)", err, err)
	}

	return e
}
