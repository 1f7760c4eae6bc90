// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"fmt"
)

// sized represents a firmware call following the two-phase sizing protocol,
// the call reports the required size through the size pointer whenever the
// argument buffer is too small.
type sized func(size *uint64, buf []byte) error

// requiredSize probes the buffer size required by a sized call, a successful
// probe means that no data is available.
func requiredSize(call sized) (size uint64, err error) {
	switch err = call(&size, nil); err {
	case nil:
		return 0, nil
	case ErrEfiBufferTooSmall:
		return size, nil
	default:
		return 0, err
	}
}

// fill performs a sized call by first probing its required size and then
// issuing the call with an appropriately sized buffer.
func fill(call sized) (buf []byte, err error) {
	size, err := requiredSize(call)

	if err != nil || size == 0 {
		return
	}

	buf = make([]byte, size)

	if err = call(&size, buf); err != nil {
		return nil, err
	}

	if size > uint64(len(buf)) {
		return nil, fmt.Errorf("invalid size %d", size)
	}

	return buf[:size], nil
}
