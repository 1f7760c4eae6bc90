// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

// EFI Boot Services offsets
const (
	handleProtocol = 0x098
	locateProtocol = 0x140
)

// HandleProtocol calls EFI_BOOT_SERVICES.HandleProtocol() to look up the
// protocol instance bound to a handle.
func (s *BootServices) HandleProtocol(handle uint64, guid GUID) (addr uint64, err error) {
	status := callService(s.base+handleProtocol,
		[]uint64{
			handle,
			guid.ptrval(),
			ptrval(&addr),
		},
	)

	if err = parseStatus(status); err == nil && addr == 0 {
		err = ErrEfiNotFound
	}

	return
}

// LocateProtocol calls EFI_BOOT_SERVICES.LocateProtocol() to look up the
// first instance of a protocol.
func (s *BootServices) LocateProtocol(guid GUID) (addr uint64, err error) {
	status := callService(s.base+locateProtocol,
		[]uint64{
			guid.ptrval(),
			0,
			ptrval(&addr),
		},
	)

	if err = parseStatus(status); err == nil && addr == 0 {
		err = ErrEfiNotFound
	}

	return
}
