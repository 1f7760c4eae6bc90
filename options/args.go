// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package options

import (
	"fmt"
	"strings"
)

// KernelArgsSize is the kernel arguments buffer capacity.
const KernelArgsSize = 2048

// KernelArgs serializes kernel options as space separated key="value"
// tokens within a fixed capacity.
type KernelArgs struct {
	buf [KernelArgsSize]byte
	n   int
}

// Append serializes a key/value pair, the value is quoted unless it already
// is. Tokens exceeding the remaining capacity are rejected and leave the
// buffer unchanged.
func (a *KernelArgs) Append(key string, value string) error {
	var sb strings.Builder

	sb.WriteString(key)
	sb.WriteByte('=')

	if strings.HasPrefix(value, `"`) {
		sb.WriteString(value)
	} else {
		sb.WriteByte('"')
		sb.WriteString(value)
		sb.WriteByte('"')
	}

	sb.WriteByte(' ')

	if a.n+sb.Len() > len(a.buf) {
		return fmt.Errorf("%w: kernel arguments (%d+%d > %d)", ErrCapacity, a.n, sb.Len(), len(a.buf))
	}

	a.n += copy(a.buf[a.n:], sb.String())

	return nil
}

// Bytes returns the serialized kernel arguments.
func (a *KernelArgs) Bytes() []byte {
	return a.buf[:a.n]
}

// Len returns the serialized kernel arguments length.
func (a *KernelArgs) Len() int {
	return a.n
}

func (a *KernelArgs) String() string {
	return string(a.buf[:a.n])
}
