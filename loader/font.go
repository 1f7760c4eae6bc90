// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"errors"
	"fmt"
)

// PC Screen Font version 1 header
const (
	psf1Magic0     = 0x36
	psf1Magic1     = 0x04
	psf1HeaderSize = 4
	psf1MaxMode    = 3
)

// Font represents a PC Screen Font (PSF1) bitmap font.
type Font struct {
	// Mode selects the glyph count (256 or 512) and unicode table
	// presence.
	Mode uint8
	// Height is the glyph height in pixels, glyphs are 8 pixels wide.
	Height uint8
}

// Glyphs returns the number of glyphs in the font.
func (f *Font) Glyphs() int {
	if f.Mode&0x01 != 0 {
		return 512
	}

	return 256
}

// Unicode returns whether the font carries a unicode table.
func (f *Font) Unicode() bool {
	return f.Mode&0x02 != 0
}

// ParseFont validates a PSF1 font header.
func ParseFont(buf []byte) (f *Font, err error) {
	if len(buf) < psf1HeaderSize {
		return nil, errors.New("invalid PSF1 font size")
	}

	if buf[0] != psf1Magic0 || buf[1] != psf1Magic1 {
		return nil, fmt.Errorf("invalid PSF1 font magic %#02x%02x", buf[0], buf[1])
	}

	f = &Font{
		Mode:   buf[2],
		Height: buf[3],
	}

	if f.Mode > psf1MaxMode {
		return nil, fmt.Errorf("invalid PSF1 font mode %d", f.Mode)
	}

	if size := psf1HeaderSize + f.Glyphs()*int(f.Height); len(buf) < size {
		return nil, fmt.Errorf("truncated PSF1 font (%d < %d)", len(buf), size)
	}

	return
}
