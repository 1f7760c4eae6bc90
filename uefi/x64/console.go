// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package x64

import (
	_ "unsafe"

	"github.com/potato-os/potato-boot/uefi"
)

// Console represents the early UEFI services console for pre UEFI.Init()
// standard output.
var Console = &uefi.Console{
	ForceLine:   true,
	ReplaceTabs: 8,
}

//go:linkname printk runtime/goos.Printk
func printk(c byte) {
	UART0.Tx(c)

	if Console.Out == 0 {
		Console.Out = conOut
	}

	if c == 0x0a && Console.ForceLine { // LF
		Console.Output([]byte{0x0d, 0x00}) // CR
	}

	Console.Output([]byte{c, 0x00})
}
