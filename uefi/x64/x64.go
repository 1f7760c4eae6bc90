// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package x64 is the potato-boot UEFI application entry for x86_64, it is
// initialized on import before main runs.
//
// The firmware image handle and system table handed to the application entry
// point are captured to initialize UEFI, the services instance every boot
// context is built from. The runtime heap is then reserved in UEFI pages
// following the loader image, so that the kernel segment and handoff
// allocations made through boot services never overlap it. Standard output
// is mirrored on the COM1 serial port and the firmware text console.
//
// This package is only meant to be used with `GOOS=tamago` as
// supported by the TamaGo framework for bare metal Go, see
// https://github.com/usbarmory/tamago.
package x64

import (
	"fmt"
	"runtime/goos"
	_ "unsafe"

	"github.com/usbarmory/tamago/amd64"
	"github.com/usbarmory/tamago/soc/intel/rtc"
	"github.com/usbarmory/tamago/soc/intel/uart"

	"github.com/potato-os/potato-boot/uefi"
)

// Peripheral registers
const (
	// Communication port
	COM1 = 0x3f8
)

// set in x64.s
var (
	imageHandle uint64
	systemTable uint64
	conIn       uint64
	conOut      uint64
)

// Peripheral instances
var (
	// AMD64 core
	AMD64 = &amd64.CPU{
		// required before Init()
		TimerMultiplier: 1,
	}

	// Real-Time Clock
	RTC = &rtc.RTC{}

	// Serial port
	UART0 = &uart.UART{
		Index: 1,
		Base:  COM1,
		DTR:   true,
		RTS:   true,
	}

	// UEFI services
	UEFI = &uefi.Services{}
)

//go:linkname nanotime runtime/goos.Nanotime
func nanotime() int64 {
	return AMD64.GetTime()
}

// Init takes care of the lower level initialization triggered early in runtime
// setup.
//
//go:linkname Init runtime/goos.Hwinit1
func Init() {
	// initialize CPU
	AMD64.Init()

	// disable CPU idle time management
	goos.Idle = nil

	// initialize serial console
	UART0.Init()
}

var initErr error

// Err returns the error, if any, encountered while initializing UEFI
// services and the runtime heap.
func Err() error {
	return initErr
}

func init() {
	if t, err := RTC.Now(); err == nil {
		AMD64.SetTime(t.UnixNano())
	}

	Console.In = conIn
	Console.ClearScreen()

	print("initializing EFI services\n")

	if err := UEFI.Init(imageHandle, systemTable); err != nil {
		initErr = fmt.Errorf("could not initialize EFI services, %w", err)
		return
	}

	// kernel segments are placed through boot services, the heap must be
	// reserved before any of them
	if err := allocateHeap(UEFI.Boot); err != nil {
		initErr = fmt.Errorf("could not reserve runtime heap, %w", err)
	}
}
