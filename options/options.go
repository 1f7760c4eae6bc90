// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package options implements parsing of the boot loader options file.
//
// The file is a list of key=value lines grouped by category headers:
//
//	[loader]
//	kernel=kernel.kern
//	font=font.fnt
//	[kernel]
//	width=1920
//
// Lines preceding any header belong to the loader category, blank lines are
// ignored and no comment or escaping syntax is supported.
package options

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by Parse and BootOptions.
var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownKey      = errors.New("unknown option")
	ErrSyntax          = errors.New("invalid syntax")
	ErrCapacity        = errors.New("capacity exceeded")
)

// Category represents an options file category.
type Category int

// Options categories
const (
	Loader Category = iota
	Kernel
)

var categories = map[string]Category{
	"loader":     Loader,
	"bootloader": Loader,
	"kernel":     Kernel,
}

func (c Category) String() string {
	switch c {
	case Loader:
		return "loader"
	case Kernel:
		return "kernel"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Handler is invoked by Parse for each key/value pair.
type Handler func(c Category, key string, value string) error

// SyntaxError reports the options file line which could not be parsed.
type SyntaxError struct {
	Line int
	Text string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d (%q): %v", e.Line, e.Text, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Parse parses options text invoking the argument handler, in line order,
// for each key/value pair. Parsing stops at the first invalid line or as
// soon as the handler returns an error, which is returned as is.
func Parse(text string, handler Handler) (err error) {
	category := Loader
	n := 0

	for line := range strings.Lines(text) {
		n += 1
		line = strings.TrimSpace(line)

		if len(line) == 0 {
			continue
		}

		if line[0] == '[' {
			name, ok := strings.CutSuffix(line[1:], "]")

			if !ok {
				return &SyntaxError{n, line, ErrSyntax}
			}

			if category, ok = categories[name]; !ok {
				return &SyntaxError{n, line, ErrUnknownCategory}
			}

			continue
		}

		if strings.Count(line, "=") != 1 {
			return &SyntaxError{n, line, ErrSyntax}
		}

		key, value, _ := strings.Cut(line, "=")

		if err = handler(category, key, value); err != nil {
			return
		}
	}

	return
}
