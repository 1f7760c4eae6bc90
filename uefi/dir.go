// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"io"
	"io/fs"
)

// DirEntry implements the [fs.DirEntry] interface for the EFI File Protocol.
type DirEntry struct {
	fi *FileInfo
}

// Name returns the name of the file (or subdirectory) described by the entry.
func (d DirEntry) Name() string {
	return d.fi.name
}

// IsDir reports whether the entry describes a directory.
func (d DirEntry) IsDir() bool {
	return d.fi.IsDir()
}

// Type returns the type bits of the file mode.
func (d DirEntry) Type() fs.FileMode {
	return d.fi.Mode().Type()
}

// Info returns the FileInfo for the file or subdirectory described by the entry.
func (d DirEntry) Info() (fs.FileInfo, error) {
	return d.fi, nil
}

// ReadDir reads the contents of the directory and returns a slice of up to n
// DirEntry values in directory order, with n <= 0 all remaining entries are
// returned. Subsequent calls on the same file yield further DirEntry values.
func (f *File) ReadDir(n int) (entries []fs.DirEntry, err error) {
	if fi, err := f.Stat(); err != nil || !fi.IsDir() {
		return nil, errors.New("not a directory")
	}

	all := n <= 0

	if all {
		n = MaxDirEntries
	}

	for len(entries) < n {
		var buf []byte

		// each read returns a single EFI_FILE_INFO entry, or an empty
		// buffer at the end of the directory
		if buf, err = fill(f.read); err != nil {
			return
		}

		if len(buf) == 0 {
			break
		}

		entry := DirEntry{
			fi: &FileInfo{
				info: &fileInfo{},
			},
		}

		if entry.fi.name, err = entry.fi.info.decode(buf); err != nil {
			return
		}

		if entry.fi.name == "." || entry.fi.name == ".." {
			continue
		}

		entries = append(entries, entry)
	}

	if len(entries) == 0 && !all {
		return nil, io.EOF
	}

	return
}
