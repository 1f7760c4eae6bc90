// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/potato-os/potato-boot/loader"
	"github.com/potato-os/potato-boot/options"
	"github.com/potato-os/potato-boot/uefi"
)

func newOptionsCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "options <file>",
		Short: "Parse an options file",
		Long: `Parse an options file with the boot loader grammar.

Examples:
  # Show boot options
  potatoctl options EFI/boot/options.txt

  # Show each category/key/value triple as parsed
  potatoctl options --raw EFI/boot/options.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])

			if err != nil {
				return err
			}

			if raw {
				return printEntries(cmd.OutOrStdout(), string(buf))
			}

			o, err := options.Load(string(buf))

			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), o)
			fmt.Fprintf(cmd.OutOrStdout(), "length ....: %d/%d\n", o.KernelArgs.Len(), options.KernelArgsSize)

			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print parsed entries instead of boot options")

	return cmd
}

func printEntries(w io.Writer, text string) error {
	return options.Parse(text, func(c options.Category, key string, value string) error {
		_, err := fmt.Fprintf(w, "[%s] %s=%s\n", c, key, value)
		return err
	})
}

func newKernelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kernel <file>",
		Short: "Show the load plan of an ELF64 kernel image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pages uint64

			buf, err := os.ReadFile(args[0])

			if err != nil {
				return err
			}

			k, err := loader.ParseKernel(buf)

			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			fmt.Fprintf(w, "entry ......: %#x\n", k.Entry)
			fmt.Fprintf(w, "segments ...: %d\n", len(k.Segments))

			for i, s := range k.Segments {
				fmt.Fprintf(w, "  %d: %s\n", i, s)
				pages += s.Pages()
			}

			fmt.Fprintf(w, "memory .....: %d pages (%d bytes)\n", pages, pages*uefi.PageSize)

			return nil
		},
	}
}

func newFontCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "font <file>",
		Short: "Validate a PSF1 font",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])

			if err != nil {
				return err
			}

			f, err := loader.ParseFont(buf)

			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "PSF1 8x%d, %d glyphs, unicode:%v\n", f.Height, f.Glyphs(), f.Unicode())

			return nil
		},
	}
}
