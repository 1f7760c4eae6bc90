// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
)

// Kind represents a boot failure category.
type Kind int

// Boot failure categories
const (
	// FirmwareError reports a non-successful firmware call.
	FirmwareError Kind = iota
	// ConfigError reports an invalid options file.
	ConfigError
	// FormatError reports an invalid kernel or font image.
	FormatError
	// CapacityError reports a fixed size buffer overflow.
	CapacityError
)

func (k Kind) String() string {
	switch k {
	case FirmwareError:
		return "firmware"
	case ConfigError:
		return "configuration"
	case FormatError:
		return "format"
	case CapacityError:
		return "capacity"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error represents a fatal boot failure.
type Error struct {
	// Kind is the failure category.
	Kind Kind
	// State is the last pipeline state reached.
	State State
	// Err is the underlying error.
	Err error
	// Location is the source location which raised the failure.
	Location string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error after %s: %v", e.Kind, e.State, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// fail returns an Error raised by its caller.
func fail(kind Kind, state State, err error) *Error {
	e := &Error{
		Kind:  kind,
		State: state,
		Err:   err,
	}

	if _, file, line, ok := runtime.Caller(1); ok {
		e.Location = fmt.Sprintf("%s/%s:%d", filepath.Base(filepath.Dir(file)), filepath.Base(file), line)
	}

	return e
}

// Report writes a boot failure diagnostic.
func Report(w io.Writer, err error) {
	var e *Error

	fmt.Fprintln(w, "---------- BOOTLOADER PANIC ----------")
	fmt.Fprintf(w, "Message: %v\n", err)

	if errors.As(err, &e) && len(e.Location) > 0 {
		fmt.Fprintf(w, "Location: %s\n", e.Location)
	}

	fmt.Fprintln(w, "--------------------------------------")
}

// Halt reports a boot failure and spins forever.
func Halt(w io.Writer, err error) {
	Report(w, err)

	for {
		runtime.Gosched()
	}
}
