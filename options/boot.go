// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package options

import (
	"fmt"
	"strconv"
	"strings"
)

// Default file names
const (
	DefaultKernel = "kernel.kern"
	DefaultFont   = "font.fnt"
)

// BootOptions represents the boot loader configuration.
type BootOptions struct {
	// Kernel is the kernel image file name.
	Kernel string
	// Font is the bitmap font file name.
	Font string
	// Shell enables the diagnostic shell before loading the kernel.
	Shell bool
	// KernelArgs holds the kernel options.
	KernelArgs *KernelArgs
}

// Default returns the default boot options.
func Default() *BootOptions {
	return &BootOptions{
		Kernel:     DefaultKernel,
		Font:       DefaultFont,
		KernelArgs: &KernelArgs{},
	}
}

// Set applies a key/value pair, loader keys are set by name while kernel
// ones are appended to the kernel arguments.
func (o *BootOptions) Set(c Category, key string, value string) (err error) {
	switch c {
	case Loader:
	case Kernel:
		return o.KernelArgs.Append(key, value)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownCategory, c)
	}

	switch key {
	case "kernel":
		o.Kernel = value
	case "font", "load_font":
		o.Font = value
	case "shell":
		if o.Shell, err = strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%w: shell=%q", ErrSyntax, value)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	return
}

// Load parses options text on top of the default boot options.
func Load(text string) (o *BootOptions, err error) {
	o = Default()
	err = Parse(text, o.Set)
	return
}

// String returns a human readable representation of the boot options.
func (o *BootOptions) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "kernel ....: %s\n", o.Kernel)
	fmt.Fprintf(&sb, "font ......: %s\n", o.Font)
	fmt.Fprintf(&sb, "shell .....: %v\n", o.Shell)
	fmt.Fprintf(&sb, "arguments .: %s\n", o.KernelArgs)

	return sb.String()
}
