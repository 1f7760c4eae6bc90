// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"
)

// EFI File Protocol
var EFI_FILE_INFO_ID = MustParseGUID("09576e92-6d3f-11d2-8e39-00a0c969723b")

const (
	EFI_FILE_PROTOCOL_REVISION  = 0x00010000
	EFI_FILE_PROTOCOL_REVISION2 = 0x00020000

	// Open modes
	EFI_FILE_MODE_READ   = 0x0000000000000001
	EFI_FILE_MODE_WRITE  = 0x0000000000000002
	EFI_FILE_MODE_CREATE = 0x8000000000000000

	// File attributes
	EFI_FILE_READ_ONLY = 0x0000000000000001
	EFI_FILE_HIDDEN    = 0x0000000000000002
	EFI_FILE_SYSTEM    = 0x0000000000000004
	EFI_FILE_RESERVED  = 0x0000000000000008
	EFI_FILE_DIRECTORY = 0x0000000000000010
	EFI_FILE_ARCHIVE   = 0x0000000000000020
)

// EFI File Protocol offsets
const (
	fileOpen    = 0x08
	fileClose   = 0x10
	fileRead    = 0x20
	fileGetInfo = 0x40
)

const (
	// fileInfoSize is the EFI_FILE_INFO size without the file name
	fileInfoSize = 80
	// MaxFileName is the maximum file name length in characters
	MaxFileName = 255
	// MaxDirEntries is the maximum number of directory entries returned
	// by a single unbounded ReadDir call
	MaxDirEntries = 1024
)

// fileProtocol represents an EFI File Protocol instance.
type fileProtocol struct {
	Revision    uint64
	Open        uint64
	Close       uint64
	Delete      uint64
	Read        uint64
	Write       uint64
	GetPosition uint64
	SetPosition uint64
	GetInfo     uint64
	SetInfo     uint64
	Flush       uint64
}

// efiTime represents an EFI_TIME instance.
type efiTime struct {
	Year       uint16
	Month      uint8
	Day        uint8
	Hour       uint8
	Minute     uint8
	Second     uint8
	_          uint8
	Nanosecond uint32
	TimeZone   int16
	Daylight   uint8
	_          uint8
}

func (t *efiTime) time() time.Time {
	if t.Year == 0 {
		return time.Time{}
	}

	return time.Date(int(t.Year), time.Month(t.Month), int(t.Day), int(t.Hour), int(t.Minute), int(t.Second), int(t.Nanosecond), time.UTC)
}

// fileInfo represents an EFI_FILE_INFO instance without its file name.
type fileInfo struct {
	Size             uint64
	FileSize         uint64
	PhysicalSize     uint64
	CreateTime       efiTime
	LastAccessTime   efiTime
	ModificationTime efiTime
	Attribute        uint64
}

// decode parses an EFI_FILE_INFO buffer returning its file name.
func (fi *fileInfo) decode(buf []byte) (name string, err error) {
	if len(buf) < fileInfoSize {
		return "", errors.New("invalid file information size")
	}

	if err = unmarshalBinary(buf[0:fileInfoSize], fi); err != nil {
		return
	}

	size := int(fi.Size)

	if size > len(buf) || size < fileInfoSize {
		size = len(buf)
	}

	return fromUTF16(buf[fileInfoSize:size]), nil
}

// FileInfo implements the [fs.FileInfo] interface for the EFI File Protocol.
type FileInfo struct {
	info *fileInfo
	name string
}

// Name returns the base name of the file.
func (fi *FileInfo) Name() string {
	return fi.name
}

// Size returns the file length in bytes.
func (fi *FileInfo) Size() int64 {
	return int64(fi.info.FileSize)
}

// Mode returns the file mode bits.
func (fi *FileInfo) Mode() (mode fs.FileMode) {
	mode = 0444

	if fi.info.Attribute&EFI_FILE_READ_ONLY == 0 {
		mode |= 0222
	}

	if fi.IsDir() {
		mode |= fs.ModeDir | 0111
	}

	return
}

// ModTime returns the file modification time.
func (fi *FileInfo) ModTime() time.Time {
	return fi.info.ModificationTime.time()
}

// IsDir reports whether the file describes a directory.
func (fi *FileInfo) IsDir() bool {
	return fi.info.Attribute&EFI_FILE_DIRECTORY != 0
}

// Sys returns the EFI_FILE_INFO attributes.
func (fi *FileInfo) Sys() any {
	return fi.info.Attribute
}

// File implements the [fs.File] interface for the EFI File Protocol.
type File struct {
	name string
	addr uint64
}

// open calls EFI_FILE_PROTOCOL.Open() relative to the current file.
func (f *File) open(name string, mode uint64) (nf *File, err error) {
	var addr uint64

	p := toUTF16(name)

	status := callService(f.addr+fileOpen,
		[]uint64{
			f.addr,
			ptrval(&addr),
			ptrval(&p[0]),
			mode,
			0,
		},
	)

	if err = parseStatus(status); err != nil {
		return
	}

	if addr == 0 {
		return nil, ErrEfiNotFound
	}

	fp := &fileProtocol{}

	if err = decode(fp, addr); err != nil {
		return
	}

	if fp.Revision != EFI_FILE_PROTOCOL_REVISION && fp.Revision != EFI_FILE_PROTOCOL_REVISION2 {
		return nil, fmt.Errorf("invalid protocol revision (%#x)", fp.Revision)
	}

	return &File{name: name, addr: addr}, nil
}

// read calls EFI_FILE_PROTOCOL.Read().
func (f *File) read(size *uint64, buf []byte) error {
	status := callService(f.addr+fileRead,
		[]uint64{
			f.addr,
			ptrval(size),
			bufval(buf),
		},
	)

	return parseStatus(status)
}

// getInfo calls EFI_FILE_PROTOCOL.GetInfo() for EFI_FILE_INFO.
func (f *File) getInfo(size *uint64, buf []byte) error {
	guid := EFI_FILE_INFO_ID

	status := callService(f.addr+fileGetInfo,
		[]uint64{
			f.addr,
			guid.ptrval(),
			ptrval(size),
			bufval(buf),
		},
	)

	return parseStatus(status)
}

// Stat returns a [FileInfo] describing the file.
func (f *File) Stat() (fs.FileInfo, error) {
	buf, err := fill(f.getInfo)

	if err != nil {
		return nil, err
	}

	fi := &FileInfo{
		info: &fileInfo{},
	}

	if fi.name, err = fi.info.decode(buf); err != nil {
		return nil, err
	}

	return fi, nil
}

// Read reads up to len(p) bytes from the file, [io.EOF] is returned at the
// end of file.
func (f *File) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return
	}

	size := uint64(len(p))

	if err = f.read(&size, p); err != nil {
		return
	}

	if size == 0 {
		return 0, io.EOF
	}

	return int(size), nil
}

// Close calls EFI_FILE_PROTOCOL.Close().
func (f *File) Close() error {
	status := callService(f.addr+fileClose,
		[]uint64{
			f.addr,
		},
	)

	return parseStatus(status)
}
