// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

// defined in entry_amd64.s
func enterKernel(entry uint64, info uint64)
