// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !tamago

package uefi

import (
	"errors"
)

// ErrNoFirmware is returned when firmware memory is accessed outside of a
// UEFI application environment.
var ErrNoFirmware = errors.New("firmware memory unavailable")

func decode(data any, addr uint64) error {
	return ErrNoFirmware
}

func view(addr uint64, size int) ([]byte, error) {
	return nil, ErrNoFirmware
}
