// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"time"
)

const (
	// EFI Boot Services offset for SetWatchdogTimer
	setWatchdogTimer = 0x100
	watchdogCode     = 0x506f7461746f // Potato
)

// WatchdogTimeout is the watchdog timeout armed by the boot manager before
// starting a boot option.
const WatchdogTimeout = 5 * time.Minute

// SetWatchdogTimer calls EFI_BOOT_SERVICES.SetWatchdogTimer(), a zero timeout
// disables the firmware watchdog.
func (s *BootServices) SetWatchdogTimer(sec int) (err error) {
	status := callService(s.base+setWatchdogTimer,
		[]uint64{
			uint64(sec),
			watchdogCode,
			0,
			0,
		},
	)

	return parseStatus(status)
}
