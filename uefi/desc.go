// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

func marshalBinary(data any) (buf []byte, err error) {
	b := new(bytes.Buffer)
	err = binary.Write(b, binary.LittleEndian, data)
	return b.Bytes(), err
}

func unmarshalBinary(buf []byte, data any) (err error) {
	_, err = binary.Decode(buf, binary.LittleEndian, data)
	return
}

// toUTF16 converts a string to a null-terminated UCS-2 byte sequence.
func toUTF16(s string) []byte {
	var buf []byte

	for _, r := range utf16.Encode([]rune(s)) {
		buf = append(buf, byte(r&0xff), byte(r>>8))
	}

	return append(buf, 0x00, 0x00)
}

// fromUTF16 converts a (possibly null-terminated) UCS-2 byte sequence to a
// string.
func fromUTF16(buf []byte) string {
	var s []uint16

	for i := 0; i+1 < len(buf); i += 2 {
		c := binary.LittleEndian.Uint16(buf[i : i+2])

		if c == 0x0000 {
			break
		}

		s = append(s, c)
	}

	return string(utf16.Decode(s))
}
