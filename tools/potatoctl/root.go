// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"

	"github.com/potato-os/potato-boot/loader"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "potatoctl",
		Short: "Inspect potato-boot boot volume files",
		Long: `potatoctl validates the files read by potato-boot from EFI\boot.

Commands:
  options     Parse an options file and show the resulting boot options
  kernel      Show the load plan of an ELF64 kernel image
  font        Validate a PSF1 font`,
		Version:       loader.Revision,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newOptionsCmd())
	root.AddCommand(newKernelCmd())
	root.AddCommand(newFontCmd())

	return root
}
