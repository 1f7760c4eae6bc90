// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"bytes"
	"encoding/binary"
	"errors"
	"regexp"
	"testing"
)

func TestGUID(t *testing.T) {
	s := "964e5b22-6459-11d2-8e39-00a0c969723b"

	g, err := ParseGUID(s)

	if err != nil {
		t.Fatal(err)
	}

	// native EFI byte order
	expected := GUID{
		0x22, 0x5b, 0x4e, 0x96,
		0x59, 0x64,
		0xd2, 0x11,
		0x8e, 0x39, 0x00, 0xa0, 0xc9, 0x69, 0x72, 0x3b,
	}

	if g != expected {
		t.Fatalf("unexpected GUID %x", g)
	}

	if g.String() != s {
		t.Errorf("unexpected string %s", g)
	}

	for _, invalid := range []string{"", "964e5b22645911d28e3900a0c969723b", "964e5b22-6459-11d2-8e39-00a0c969723z"} {
		if _, err := ParseGUID(invalid); err == nil {
			t.Errorf("%q: expected error", invalid)
		}
	}
}

func TestStatus(t *testing.T) {
	err := parseStatus(EFI_ERROR | EFI_BUFFER_TOO_SMALL)

	if !errors.Is(err, ErrEfiBufferTooSmall) {
		t.Fatalf("unexpected error %v", err)
	}

	if m, _ := regexp.MatchString(`EFI_BUFFER_TOO_SMALL \(5\)`, err.Error()); !m {
		t.Errorf("unexpected message %v", err)
	}

	if err = parseStatus(EFI_SUCCESS); err != nil {
		t.Errorf("unexpected error %v", err)
	}

	// warnings are reported as errors
	if err = parseStatus(1); err == nil {
		t.Errorf("expected error")
	} else if m, _ := regexp.MatchString(`^EFI_STATUS warning`, err.Error()); !m {
		t.Errorf("unexpected message %v", err)
	}

	if c := Status(EFI_ERROR | EFI_NOT_FOUND).Code(); c != EFI_NOT_FOUND {
		t.Errorf("unexpected code %d", c)
	}
}

func encodeDescriptor(buf []byte, typ uint32, start uint64, pages uint64) {
	binary.LittleEndian.PutUint32(buf[0:], typ)
	binary.LittleEndian.PutUint64(buf[8:], start)
	binary.LittleEndian.PutUint64(buf[16:], start)
	binary.LittleEndian.PutUint64(buf[24:], pages)
	binary.LittleEndian.PutUint64(buf[32:], EFI_MEMORY_WB|EFI_MEMORY_RUNTIME)
}

func TestDescriptorsStride(t *testing.T) {
	const count = 5

	for _, stride := range []int{DescriptorSize, 48, 56, 128} {
		buf := bytes.Repeat([]byte{0xff}, count*stride+stride/2)

		for i := 0; i < count; i++ {
			encodeDescriptor(buf[i*stride:], uint32(i), uint64(i)*0x100000, uint64(i+1))
		}

		size := uint64(count*stride + stride/2)
		d, err := Descriptors(buf, size, uint64(stride))

		if err != nil {
			t.Fatal(err)
		}

		if len(d) != int(size)/stride {
			t.Fatalf("stride %d: unexpected count %d", stride, len(d))
		}

		for i, desc := range d {
			if desc.Type != uint32(i) || desc.PhysicalStart != uint64(i)*0x100000 || desc.NumberOfPages != uint64(i+1) {
				t.Errorf("stride %d: descriptor %d mismatch %+v", stride, i, desc)
			}

			if desc.Attribute != EFI_MEMORY_WB|EFI_MEMORY_RUNTIME {
				t.Errorf("stride %d: descriptor %d attribute %#x", stride, i, desc.Attribute)
			}

			if desc.PhysicalEnd() != desc.PhysicalStart+uint64(desc.Size()) {
				t.Errorf("stride %d: descriptor %d end mismatch", stride, i)
			}
		}
	}
}

func TestDescriptorsInvalid(t *testing.T) {
	buf := make([]byte, 4*DescriptorSize)

	if _, err := Descriptors(buf, uint64(len(buf)), 24); err == nil {
		t.Error("expected stride error")
	}

	if _, err := Descriptors(buf, uint64(len(buf))+1, DescriptorSize); err == nil {
		t.Error("expected size error")
	}
}

func TestDescriptorE820(t *testing.T) {
	for typ, expected := range map[uint32]uint32{
		EfiConventionalMemory: 1,
		EfiBootServicesData:   1,
		EfiReservedMemoryType: 2,
		EfiMemoryMappedIO:     2,
		EfiACPIReclaimMemory:  3,
		EfiACPIMemoryNVS:      4,
		EfiPersistentMemory:   AddressRangePersistentMemory,
	} {
		d := &MemoryDescriptor{Type: typ, PhysicalStart: 0x1000, NumberOfPages: 2}
		e, err := d.E820()

		if err != nil {
			t.Fatal(err)
		}

		if uint32(e.MemType) != expected || e.Addr != 0x1000 || e.Size != 2*PageSize {
			t.Errorf("%s: unexpected entry %+v", d.TypeName(), e)
		}
	}
}

func TestConsoleEncode(t *testing.T) {
	c := &Console{
		ForceLine:   true,
		ReplaceTabs: 2,
	}

	s := c.encode([]byte("a\n\tb"))

	expected := []byte{
		'a', 0,
		'\r', 0, '\n', 0,
		' ', 0, ' ', 0,
		'b', 0,
		0, 0,
	}

	if !bytes.Equal(s, expected) {
		t.Errorf("unexpected encoding %x", s)
	}

	c.ForceLine = false
	c.ReplaceTabs = 0

	if s = c.encode([]byte("è\n\t")); !bytes.Equal(s, []byte{0xe8, 0, '\n', 0, '\t', 0, 0, 0}) {
		t.Errorf("unexpected encoding %x", s)
	}
}

func TestConsoleWriteWithoutOutput(t *testing.T) {
	c := &Console{ForceLine: true}

	n, err := c.Write([]byte("hello\n"))

	if err != nil || n != 6 {
		t.Errorf("unexpected result n:%d err:%v", n, err)
	}
}

func TestUTF16(t *testing.T) {
	buf := toUTF16(`EFI\boot`)

	if len(buf) != 2*9 || buf[len(buf)-1] != 0 || buf[len(buf)-2] != 0 {
		t.Fatalf("unexpected encoding %x", buf)
	}

	if s := fromUTF16(append(buf, 'x', 0)); s != `EFI\boot` {
		t.Errorf("unexpected decoding %q", s)
	}
}

// sizedBuffer simulates a firmware call returning fixed data through the
// two-phase sizing protocol.
type sizedBuffer struct {
	data  []byte
	calls int
}

func (b *sizedBuffer) call(size *uint64, buf []byte) error {
	b.calls++

	if *size < uint64(len(b.data)) {
		*size = uint64(len(b.data))
		return ErrEfiBufferTooSmall
	}

	*size = uint64(copy(buf, b.data))

	return nil
}

func TestRequiredSizeIdempotent(t *testing.T) {
	b := &sizedBuffer{data: []byte("[loader]\nkernel=foo.kern\n")}

	first, err := requiredSize(b.call)

	if err != nil {
		t.Fatal(err)
	}

	second, err := requiredSize(b.call)

	if err != nil {
		t.Fatal(err)
	}

	if first != second || first != uint64(len(b.data)) {
		t.Errorf("sizes %d %d, expected %d", first, second, len(b.data))
	}
}

func TestFill(t *testing.T) {
	b := &sizedBuffer{data: []byte("potato")}

	buf, err := fill(b.call)

	if err != nil {
		t.Fatal(err)
	}

	if string(buf) != "potato" || b.calls != 2 {
		t.Errorf("unexpected result %q after %d calls", buf, b.calls)
	}

	// empty data
	b = &sizedBuffer{}

	if buf, err = fill(b.call); err != nil || len(buf) != 0 || b.calls != 1 {
		t.Errorf("unexpected result %q %v after %d calls", buf, err, b.calls)
	}

	// any other probe status is fatal
	failure := func(size *uint64, buf []byte) error {
		return ErrEfiInvalidParameter
	}

	if _, err = fill(failure); err != ErrEfiInvalidParameter {
		t.Errorf("unexpected error %v", err)
	}
}

func TestFileInfoDecode(t *testing.T) {
	name := toUTF16("kernel.kern")
	buf := make([]byte, fileInfoSize+len(name))

	binary.LittleEndian.PutUint64(buf[0:], uint64(len(buf)))
	binary.LittleEndian.PutUint64(buf[8:], 4096)
	binary.LittleEndian.PutUint64(buf[16:], 8192)
	binary.LittleEndian.PutUint64(buf[72:], EFI_FILE_ARCHIVE)
	copy(buf[fileInfoSize:], name)

	fi := &FileInfo{info: &fileInfo{}}

	var err error

	if fi.name, err = fi.info.decode(buf); err != nil {
		t.Fatal(err)
	}

	if fi.Name() != "kernel.kern" || fi.Size() != 4096 || fi.IsDir() {
		t.Errorf("unexpected file info %s %d %v", fi.Name(), fi.Size(), fi.IsDir())
	}

	if !fi.ModTime().IsZero() {
		t.Errorf("unexpected modification time %v", fi.ModTime())
	}

	if _, err = fi.info.decode(buf[:fileInfoSize-1]); err == nil {
		t.Error("expected error")
	}

	fi.info.Attribute = EFI_FILE_DIRECTORY | EFI_FILE_READ_ONLY

	if !fi.IsDir() || !fi.Mode().IsDir() || fi.Mode().Perm() != 0555 {
		t.Errorf("unexpected mode %v", fi.Mode())
	}
}

func TestConfigurationTables(t *testing.T) {
	buf := make([]byte, 2*24)

	copy(buf[0:16], ACPI_20_TABLE_GUID[:])
	binary.LittleEndian.PutUint64(buf[16:], 0x7fb7e000)
	binary.LittleEndian.PutUint64(buf[40:], 0x7f900000)

	c, err := parseConfigurationTables(buf, 2)

	if err != nil {
		t.Fatal(err)
	}

	if c[0].Name() != "ACPI 2.0" || c[0].VendorTable != 0x7fb7e000 {
		t.Errorf("unexpected table %s %#x", c[0].Name(), c[0].VendorTable)
	}

	if c[1].Name() != "00000000-0000-0000-0000-000000000000" || c[1].VendorTable != 0x7f900000 {
		t.Errorf("unexpected table %s %#x", c[1].Name(), c[1].VendorTable)
	}

	if _, err = parseConfigurationTables(buf, 3); err == nil {
		t.Error("expected error")
	}
}

func TestParseResetType(t *testing.T) {
	for name, want := range map[string]ResetType{
		"":         EfiResetWarm,
		"cold":     EfiResetCold,
		"warm":     EfiResetWarm,
		"shutdown": EfiResetShutdown,
	} {
		got, err := ParseResetType(name)

		if err != nil || got != want {
			t.Errorf("ParseResetType(%q) = %v, %v", name, got, err)
		}
	}

	for _, name := range []string{"platform", "reboot"} {
		if _, err := ParseResetType(name); err == nil {
			t.Errorf("ParseResetType(%q): expected error", name)
		}
	}

	if s := EfiResetShutdown.String(); s != "shutdown" {
		t.Errorf("unexpected name %q", s)
	}
}
