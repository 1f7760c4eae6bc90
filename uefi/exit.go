// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

// EFI Boot Services offsets
const (
	exit             = 0xd8
	exitBootServices = 0xe8
)

// Exit calls EFI_BOOT_SERVICES.Exit().
func (s *BootServices) Exit(code int) (err error) {
	status := callService(s.base+exit,
		[]uint64{
			s.imageHandle,
			uint64(code),
			0,
			0,
		},
	)

	return parseStatus(status)
}

// ExitBootServices calls EFI_BOOT_SERVICES.ExitBootServices() using the
// argument memory map key, which must belong to the most recent memory map
// snapshot. A stale key results in ErrEfiInvalidParameter.
//
// On success no Boot Services, including console output, can be used any
// longer.
func (s *BootServices) ExitBootServices(mapKey uint64) (err error) {
	status := callService(s.base+exitBootServices,
		[]uint64{
			s.imageHandle,
			mapKey,
		},
	)

	return parseStatus(status)
}
