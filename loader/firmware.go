// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"io"
	"io/fs"
	"log"
	"time"

	"github.com/potato-os/potato-boot/bootinfo"
	"github.com/potato-os/potato-boot/uefi"
)

// volume implements Volume over the EFI Simple File System Protocol.
type volume struct {
	s *uefi.Services
}

func (v *volume) Root() (fs.FS, error) {
	root, err := v.s.Root()

	if err != nil {
		return nil, err
	}

	return root, nil
}

// display implements Display over the EFI Graphics Output Protocol.
type display struct {
	boot *uefi.BootServices
}

func (d *display) Framebuffer() (fb bootinfo.Framebuffer, err error) {
	var gop *uefi.GraphicsOutput
	var mode *uefi.ProtocolMode
	var info *uefi.ModeInformation

	if gop, err = d.boot.GetGraphicsOutput(); err != nil {
		return
	}

	if mode, err = gop.GetMode(); err != nil {
		return
	}

	if info, err = mode.GetInfo(); err != nil {
		return
	}

	fb = bootinfo.Framebuffer{
		Width:             info.HorizontalResolution,
		Height:            info.VerticalResolution,
		PixelsPerScanline: info.PixelsPerScanLine,
		Base:              mode.FrameBufferBase,
		Size:              mode.FrameBufferSize,
	}

	return
}

// NewContext returns a boot context backed by the argument UEFI services,
// logging to the argument writer.
func NewContext(s *uefi.Services, w io.Writer) *Context {
	return &Context{
		Console:   s.Console,
		Boot:      s.Boot,
		Volume:    &volume{s},
		Display:   &display{s.Boot},
		Runtime:   s.Runtime,
		Services:  s,
		Directory: BootDirectory,
		Log:       log.New(w, "", 0),
		Enter:     enterKernel,
		Started:   time.Now(),
	}
}
