// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"fmt"

	"github.com/google/uuid"
)

// GUID represents an EFI GUID (Globally Unique Identifier) as a 16-byte array
// with the native EFI byte order.
//
// Note: The registry string format (xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx)
// reorders the first three fields as little-endian. Internally, we keep the
// native EFI layout (as used in memory), i.e. 16 bytes where the first three
// fields are little-endian values.
type GUID [16]byte

// swap converts between the RFC 4122 (big-endian) and the native EFI
// (mixed-endian) byte order, the conversion is its own inverse.
func swap(in [16]byte) (out [16]byte) {
	out = in

	out[0], out[1], out[2], out[3] = in[3], in[2], in[1], in[0]
	out[4], out[5] = in[5], in[4]
	out[6], out[7] = in[7], in[6]

	return
}

// ParseGUID parses a GUID in registry string format into a native EFI GUID.
func ParseGUID(s string) (g GUID, err error) {
	if len(s) != 36 {
		return GUID{}, fmt.Errorf("invalid GUID format: %q", s)
	}

	u, err := uuid.Parse(s)

	if err != nil {
		return GUID{}, fmt.Errorf("invalid GUID format: %q, %v", s, err)
	}

	return GUID(swap(u)), nil
}

// MustParseGUID is like ParseGUID but panics on error. It is intended for
// package level GUID declarations.
func MustParseGUID(s string) (g GUID) {
	var err error

	if g, err = ParseGUID(s); err != nil {
		panic(err)
	}

	return
}

// String returns the registry format string representation of the GUID.
// https://uefi.org/specs/UEFI/2.10/Apx_A_GUID_and_Time_Formats.html
func (g GUID) String() string {
	return uuid.UUID(swap(g)).String()
}

func (g *GUID) ptrval() uint64 {
	return ptrval(g)
}
