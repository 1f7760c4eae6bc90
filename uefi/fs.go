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
	"strings"
)

var (
	EFI_LOADED_IMAGE_PROTOCOL_GUID       = MustParseGUID("5b1b31a1-9562-11d2-8e3f-00a0c969723b")
	EFI_SIMPLE_FILE_SYSTEM_PROTOCOL_GUID = MustParseGUID("964e5b22-6459-11d2-8e39-00a0c969723b")
)

const (
	EFI_LOADED_IMAGE_PROTOCOL_REVISION       = 0x00001000
	EFI_SIMPLE_FILE_SYSTEM_PROTOCOL_REVISION = 0x00010000
)

// EFI Simple File System Protocol offset for OpenVolume
const openVolume = 0x08

// LoadedImage represents an EFI Loaded Image Protocol instance.
type LoadedImage struct {
	Revision        uint32
	_               uint32
	ParentHandle    uint64
	SystemTable     uint64
	DeviceHandle    uint64
	FilePath        uint64
	_               uint64
	LoadOptionsSize uint32
	_               uint32
	LoadOptions     uint64
	ImageBase       uint64
	ImageSize       uint64
	ImageCodeType   uint32
	ImageDataType   uint32
	Unload          uint64
}

// LoadedImage returns the EFI Loaded Image Protocol instance of the running
// image.
func (s *BootServices) LoadedImage() (image *LoadedImage, err error) {
	var addr uint64

	if addr, err = s.HandleProtocol(s.imageHandle, EFI_LOADED_IMAGE_PROTOCOL_GUID); err != nil {
		return
	}

	image = &LoadedImage{}

	if err = decode(image, addr); err != nil {
		return
	}

	if image.Revision != EFI_LOADED_IMAGE_PROTOCOL_REVISION {
		return nil, errors.New("invalid protocol revision")
	}

	return
}

// simpleFileSystem represents an EFI Simple File System Protocol instance.
type simpleFileSystem struct {
	Revision   uint64
	OpenVolume uint64
}

// openVolumeAt calls EFI_SIMPLE_FILE_SYSTEM_PROTOCOL.OpenVolume() on the
// protocol instance at the argument address.
func openVolumeAt(addr uint64) (f *File, err error) {
	var root uint64

	status := callService(addr+openVolume,
		[]uint64{
			addr,
			ptrval(&root),
		},
	)

	if err = parseStatus(status); err != nil {
		return
	}

	fp := &fileProtocol{}

	if err = decode(fp, root); err != nil {
		return
	}

	if fp.Revision != EFI_FILE_PROTOCOL_REVISION && fp.Revision != EFI_FILE_PROTOCOL_REVISION2 {
		return nil, fmt.Errorf("invalid protocol revision (%#x)", fp.Revision)
	}

	return &File{name: ".", addr: root}, nil
}

// FS implements the [fs.FS], [fs.ReadFileFS] and [fs.SubFS] interfaces for an
// EFI Simple File System volume.
type FS struct {
	dir *File
}

// path converts an [fs.ValidPath] name to an EFI file path.
func path(name string) string {
	if name == "." {
		return "."
	}

	return strings.ReplaceAll(name, "/", `\`)
}

// Open opens the named file, [File.Close] must be called to release any
// associated resources.
func (root *FS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	if root.dir == nil || root.dir.addr == 0 {
		return nil, &fs.PathError{Op: "open", Path: name, Err: errors.New("invalid file system instance")}
	}

	f, err := root.dir.open(path(name), EFI_FILE_MODE_READ)

	switch {
	case errors.Is(err, ErrEfiNotFound):
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	case err != nil:
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}

	f.name = name

	return f, nil
}

// ReadFile reads the named file and returns its contents.
func (root *FS) ReadFile(name string) (buf []byte, err error) {
	f, err := root.Open(name)

	if err != nil {
		return
	}
	defer f.Close()

	fi, err := f.Stat()

	if err != nil {
		return
	}

	if fi.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: errors.New("is a directory")}
	}

	buf = make([]byte, fi.Size())

	if _, err = io.ReadFull(f, buf); err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}

	return
}

// Sub returns an [FS] corresponding to the subtree rooted at dir.
func (root *FS) Sub(dir string) (fs.FS, error) {
	f, err := root.Open(dir)

	if err != nil {
		return nil, err
	}

	if fi, err := f.Stat(); err != nil || !fi.IsDir() {
		f.Close()
		return nil, &fs.PathError{Op: "sub", Path: dir, Err: errors.New("not a directory")}
	}

	return &FS{dir: f.(*File)}, nil
}

// Root returns an EFI Simple File System instance for the volume the current
// EFI image was loaded from.
func (s *Services) Root() (root *FS, err error) {
	var image *LoadedImage
	var addr uint64

	if image, err = s.Boot.LoadedImage(); err != nil {
		return
	}

	if addr, err = s.Boot.HandleProtocol(image.DeviceHandle, EFI_SIMPLE_FILE_SYSTEM_PROTOCOL_GUID); err != nil {
		return
	}

	sfs := &simpleFileSystem{}

	if err = decode(sfs, addr); err != nil {
		return
	}

	if sfs.Revision != EFI_SIMPLE_FILE_SYSTEM_PROTOCOL_REVISION {
		return nil, errors.New("invalid protocol revision")
	}

	root = &FS{}

	if root.dir, err = openVolumeAt(addr); err != nil {
		return nil, err
	}

	return
}
