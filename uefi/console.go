// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"unicode/utf16"
	"unicode/utf8"
)

const (
	// EFI ConOut offsets
	outputString = 0x08
	clearScreen  = 0x30

	// EFI ConIn offset for ReadKeyStroke
	readKeyStroke = 0x08
)

// InputKey represents an EFI Input Key descriptor.
type InputKey struct {
	ScanCode    uint16
	UnicodeChar uint16
}

// Console implements the [io.ReadWriter] interface over EFI Simple Text
// Input/Output protocol.
type Console struct {
	// ForceLine controls whether line feeds (LF) should be preceded by a
	// carriage return (CR).
	ForceLine bool

	// ReplaceTabs controls whether Console I/O output should have Tab
	// characters replaced with a number of spaces.
	ReplaceTabs int

	// EFI_SIMPLE_TEXT_INPUT_PROTOCOL instance address
	In uint64
	// EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL instance address
	Out uint64
}

// Input calls EFI_SIMPLE_TEXT_INPUT_PROTOCOL.ReadKeyStroke().
func (c *Console) Input(k *InputKey) (err error) {
	if c.In == 0 {
		return ErrEfiUnsupported
	}

	status := callService(c.In+readKeyStroke,
		[]uint64{
			c.In,
			ptrval(k),
		},
	)

	return parseStatus(status)
}

// Output calls EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL.OutputString() with a
// null-terminated UCS-2 string.
func (c *Console) Output(p []byte) (err error) {
	if len(p) < 2 || p[len(p)-2] != 0x00 || p[len(p)-1] != 0x00 {
		p = append(p, 0x00, 0x00)
	}

	if c.Out == 0 {
		return
	}

	status := callService(c.Out+outputString,
		[]uint64{
			c.Out,
			ptrval(&p[0]),
		},
	)

	return parseStatus(status)
}

// ClearScreen calls EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL.ClearScreen().
func (c *Console) ClearScreen() (err error) {
	if c.Out == 0 {
		return
	}

	status := callService(c.Out+clearScreen,
		[]uint64{
			c.Out,
		},
	)

	return parseStatus(status)
}

// Read available data to buffer from console, it does not block when no key
// stroke is pending.
func (c *Console) Read(p []byte) (n int, err error) {
	k := &InputKey{}

	for n+utf8.UTFMax <= len(p) {
		switch err = c.Input(k); err {
		case nil:
		case ErrEfiNotReady:
			return n, nil
		default:
			return
		}

		if k.UnicodeChar == 0 {
			continue
		}

		n += utf8.EncodeRune(p[n:], rune(k.UnicodeChar))
	}

	return
}

// encode converts UTF-8 text to the UCS-2 sequence expected by OutputString.
func (c *Console) encode(p []byte) (s []byte) {
	for _, r := range utf16.Encode([]rune(string(p))) {
		if r == '\t' && c.ReplaceTabs > 0 {
			for i := 0; i < c.ReplaceTabs; i++ {
				s = append(s, ' ', 0x00)
			}
			continue
		}

		if r == '\n' && c.ForceLine {
			s = append(s, '\r', 0x00)
		}

		s = append(s, byte(r&0xff), byte(r>>8))
	}

	return append(s, 0x00, 0x00)
}

// Write data from buffer to console.
func (c *Console) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return
	}

	if err = c.Output(c.encode(p)); err != nil {
		return
	}

	return len(p), nil
}
