// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"math"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/potato-os/potato-boot/uefi"
)

func TestParseKernel(t *testing.T) {
	image := buildELF(0x200040,
		testSegment{elf.PT_LOAD, 0x200000, pattern(100), 4096},
		testSegment{elf.PT_NOTE, 0, pattern(16), 16},
		testSegment{elf.PT_LOAD, 0x300000, nil, 0},
		testSegment{elf.PT_LOAD, 0x400000, pattern(5000), 0x3000},
	)

	k, err := ParseKernel(image)

	if err != nil {
		t.Fatal(err)
	}

	if k.Entry != 0x200040 {
		t.Errorf("unexpected entry %#x", k.Entry)
	}

	// non-loadable and empty segments are skipped
	if len(k.Segments) != 2 {
		t.Fatalf("unexpected segment count %d", len(k.Segments))
	}

	if s := k.Segments[1]; s.Paddr != 0x400000 || s.Filesz != 5000 || s.Memsz != 0x3000 || s.Pages() != 3 {
		t.Errorf("unexpected segment %s", s)
	}
}

func TestParseKernelHigherHalf(t *testing.T) {
	const base = 0xffffffff80000000

	image := buildELF(base+0x200040,
		testSegment{elf.PT_LOAD, 0x200000, pattern(100), 4096},
	)

	// program header virtual address
	binary.LittleEndian.PutUint64(image[64+16:], base+0x200000)

	k, err := ParseKernel(image)

	if err != nil {
		t.Fatal(err)
	}

	if k.Entry != 0x200040 {
		t.Errorf("unexpected entry %#x", k.Entry)
	}

	if s := k.Segments[0]; s.Vaddr != base+0x200000 || s.Paddr != 0x200000 {
		t.Errorf("unexpected segment %+v", s)
	}
}

func TestParseKernelInvalid(t *testing.T) {
	valid := testSegment{elf.PT_LOAD, 0x200000, pattern(100), 4096}

	dyn := buildELF(0x200000, valid)
	dyn[16] = byte(elf.ET_DYN)

	machine := buildELF(0x200000, valid)
	machine[18] = byte(elf.EM_AARCH64)

	truncated := buildELF(0x200000, valid)
	truncated = truncated[:len(truncated)-10]

	for name, tc := range map[string]struct {
		image []byte
		err   string
	}{
		"empty":      {nil, "invalid ELF image"},
		"magic":      {[]byte("MZ\x90\x00 not an elf image at all, no sir"), "invalid ELF image"},
		"dynamic":    {dyn, "unsupported ELF type"},
		"machine":    {machine, "unsupported ELF machine"},
		"entry":      {buildELF(0, valid), "entry point is zero"},
		"no segment": {buildELF(0x200000, testSegment{elf.PT_NOTE, 0, pattern(8), 8}), "no loadable segments"},
		"bss":        {buildELF(0x200000, testSegment{elf.PT_LOAD, 0x200000, pattern(200), 100}), "exceeds mem size"},
		"truncated":  {truncated, "exceeds image size"},
		"alignment":  {buildELF(0x200000, testSegment{elf.PT_LOAD, 0x200010, pattern(8), 8}), "not page aligned"},
		"outside":    {buildELF(0x900000, valid), "outside loadable segments"},
		"memsz":      {buildELF(0x200000, testSegment{elf.PT_LOAD, 0x200000, pattern(8), math.MaxUint64 - 100}), "mem size .* overflows"},
	} {
		_, err := ParseKernel(tc.image)

		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}

		if m, _ := regexp.MatchString(tc.err, err.Error()); !m {
			t.Errorf("%s: unexpected error %v", name, err)
		}
	}
}

func TestLoadSingleSegment(t *testing.T) {
	data := pattern(100)
	fw := newMockFirmware(t, fstest.MapFS{})

	k, err := ParseKernel(buildELF(0x200000, testSegment{elf.PT_LOAD, 0x200000, data, 4096}))

	if err != nil {
		t.Fatal(err)
	}

	if err = k.Load(fw); err != nil {
		t.Fatal(err)
	}

	if len(fw.calls) != 1 || fw.calls[0] != "AllocatePages 0x200000 1" {
		t.Fatalf("unexpected calls %v", fw.calls)
	}

	mem, err := fw.Memory(0x200000, uefi.PageSize)

	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(mem[:100], data) {
		t.Errorf("segment data mismatch")
	}

	if !bytes.Equal(mem[100:], make([]byte, 3996)) {
		t.Errorf("segment not zero filled")
	}
}

func TestLoadZeroFill(t *testing.T) {
	for _, tc := range []struct {
		filesz int
		memsz  uint64
	}{
		{0, 1},
		{1, 4096},
		{4095, 4097},
		{4096, 4096},
		{5000, 0x5000},
		{8192, 8193},
	} {
		fw := newMockFirmware(t, fstest.MapFS{})
		data := pattern(tc.filesz)

		k, err := ParseKernel(buildELF(0x100000, testSegment{elf.PT_LOAD, 0x100000, data, tc.memsz}))

		if err != nil {
			t.Fatal(err)
		}

		if err = k.Load(fw); err != nil {
			t.Fatal(err)
		}

		size := int(uefi.Pages(tc.memsz) * uefi.PageSize)
		mem, err := fw.Memory(0x100000, size)

		if err != nil {
			t.Fatal(err)
		}

		if !bytes.Equal(mem[:tc.filesz], data) {
			t.Errorf("filesz:%d memsz:%d: data mismatch", tc.filesz, tc.memsz)
		}

		if !bytes.Equal(mem[tc.filesz:], make([]byte, size-tc.filesz)) {
			t.Errorf("filesz:%d memsz:%d: trailing bytes not zero", tc.filesz, tc.memsz)
		}
	}
}

func TestLoadUnavailable(t *testing.T) {
	fw := newMockFirmware(t, fstest.MapFS{})

	k, err := ParseKernel(buildELF(0x200000,
		testSegment{elf.PT_LOAD, 0x200000, pattern(100), 0x2000},
		testSegment{elf.PT_LOAD, 0x201000, pattern(100), 0x1000},
	))

	if err != nil {
		t.Fatal(err)
	}

	if err = k.Load(fw); err == nil {
		t.Fatal("expected error")
	}

	if fw.count("AllocatePages") != 2 {
		t.Errorf("unexpected calls %v", fw.calls)
	}
}

func TestParseFont(t *testing.T) {
	f, err := ParseFont(validFont())

	if err != nil {
		t.Fatal(err)
	}

	if f.Glyphs() != 256 || !f.Unicode() || f.Height != 16 {
		t.Errorf("unexpected font %+v", f)
	}

	for name, buf := range map[string][]byte{
		"short":     {0x36},
		"magic":     {0x72, 0xb5, 0x4a, 0x86},
		"mode":      append([]byte{0x36, 0x04, 0x04, 8}, make([]byte, 512*8)...),
		"truncated": append([]byte{0x36, 0x04, 0x01, 8}, make([]byte, 256*8)...),
	} {
		if _, err := ParseFont(buf); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
