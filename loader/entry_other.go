// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !amd64

package loader

func enterKernel(entry uint64, info uint64) {
	panic("kernel entry is only supported on amd64")
}
