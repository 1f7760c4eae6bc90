// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package uefi

import (
	"errors"

	"github.com/usbarmory/tamago/dma"
)

const align = 8

// decode copies the firmware structure found at the argument address into
// data, the firmware copy is never modified.
func decode(data any, addr uint64) (err error) {
	if addr == 0 {
		return errors.New("invalid address")
	}

	t, _ := marshalBinary(data)
	n := len(t) + (len(t) % align)

	r, err := dma.NewRegion(uint(addr), n, false)

	if err != nil {
		return
	}

	ptr, buf := r.Reserve(len(t), 0)
	defer r.Release(ptr)

	return unmarshalBinary(buf, data)
}

// view returns a slice over firmware owned memory, the slice remains valid
// as long as the firmware allocation backing it.
func view(addr uint64, size int) (buf []byte, err error) {
	if addr == 0 || size <= 0 {
		return nil, errors.New("invalid address")
	}

	r, err := dma.NewRegion(uint(addr), size, false)

	if err != nil {
		return
	}

	_, buf = r.Reserve(size, 0)

	return
}
