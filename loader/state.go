// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"fmt"
)

// State represents the boot pipeline stage reached, stages are strictly
// ordered and never revisited.
type State int

// Boot pipeline states
const (
	Init State = iota
	VolumeResolved
	ConfigLoaded
	KernelImageLoaded
	KernelMapped
	HandoffBuilt
	ServicesExited
	KernelEntered
)

var stateNames = []string{
	"Init",
	"VolumeResolved",
	"ConfigLoaded",
	"KernelImageLoaded",
	"KernelMapped",
	"HandoffBuilt",
	"ServicesExited",
	"KernelEntered",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}

	return fmt.Sprintf("State(%d)", int(s))
}
