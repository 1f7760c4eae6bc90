// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"fmt"
)

// EFI Runtime Services offset for ResetSystem
const resetSystem = 0x68

// ResetType represents an EFI_RESET_TYPE value.
type ResetType int

// EFI_RESET_TYPE
const (
	EfiResetCold ResetType = iota
	EfiResetWarm
	EfiResetShutdown
	EfiResetPlatformSpecific
)

var resetTypeNames = []string{
	"cold",
	"warm",
	"shutdown",
	"platform",
}

func (t ResetType) String() string {
	if t >= 0 && int(t) < len(resetTypeNames) {
		return resetTypeNames[t]
	}

	return fmt.Sprintf("ResetType(%d)", int(t))
}

// ParseResetType returns the reset type matching the argument name, an empty
// name selects a warm reset.
func ParseResetType(name string) (ResetType, error) {
	if len(name) == 0 {
		return EfiResetWarm, nil
	}

	// platform specific resets require reset data
	for t, n := range resetTypeNames[:EfiResetPlatformSpecific] {
		if n == name {
			return ResetType(t), nil
		}
	}

	return 0, fmt.Errorf("invalid reset type %q", name)
}

// ResetSystem calls EFI_RUNTIME_SERVICES.ResetSystem(), on success it does
// not return.
func (s *RuntimeServices) ResetSystem(resetType ResetType) (err error) {
	status := callService(s.base+resetSystem,
		[]uint64{
			uint64(resetType),
			EFI_SUCCESS,
			0,
			0,
		},
	)

	return parseStatus(status)
}
