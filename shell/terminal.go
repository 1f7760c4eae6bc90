// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package shell implements a terminal console handler for user defined
// commands.
package shell

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"

	"golang.org/x/term"
)

// Interface represents a terminal interface.
type Interface struct {
	// Banner represents the welcome message
	Banner string

	// ReadWriter represents the terminal connection
	ReadWriter io.ReadWriter

	// VT100 enables escape sequences in the prompt
	VT100 bool

	cmds map[string]*Cmd
}

func (iface *Interface) match(line string) (match *Cmd, arg []string) {
	var names []string

	for name := range iface.cmds {
		names = append(names, name)
	}

	// deterministic matching for overlapping patterns
	sort.Strings(names)

	for _, name := range names {
		cmd := iface.cmds[name]

		if cmd.Pattern == nil {
			if cmd.Name == line {
				return cmd, nil
			}
		} else if m := cmd.Pattern.FindStringSubmatch(line); len(m) > 0 && (len(m)-1 == cmd.Args) {
			return cmd, m[1:]
		}
	}

	return
}

// Exec executes a command line writing its result to the argument writer,
// [io.EOF] is returned by commands which end the session.
func (iface *Interface) Exec(line string, w io.Writer) (err error) {
	var res string

	match, arg := iface.match(line)

	if match == nil {
		return errors.New("unknown command, type `help`")
	}

	if res, err = match.Fn(iface, arg); err != nil {
		return
	}

	if len(res) > 0 {
		fmt.Fprintln(w, res)
	}

	return
}

func (iface *Interface) readLine(t *term.Terminal, w io.Writer) error {
	s, err := t.ReadLine()

	if err == io.EOF {
		return err
	}

	if err != nil {
		log.Printf("readline error, %v", err)
		return nil
	}

	if len(s) == 0 {
		return nil
	}

	if err = iface.Exec(s, w); err != nil {
		if err == io.EOF {
			return err
		}

		fmt.Fprintf(w, "command error, %v\n", err)
	}

	return nil
}

// Start handles registered commands over the interface ReadWriter until a
// command ends the session or the connection is closed.
func (iface *Interface) Start() {
	var w io.Writer

	t := term.NewTerminal(iface.ReadWriter, "> ")
	w = t

	if iface.VT100 {
		t.SetPrompt(string(t.Escape.Red) + "> " + string(t.Escape.Reset))
	}

	iface.Add(Cmd{
		Name: "help",
		Help: "this help",
		Fn:   iface.Help,
	})

	help, _ := iface.Help(nil, nil)

	fmt.Fprintf(t, "\n%s\n\n", iface.Banner)
	fmt.Fprintf(t, "%s\n", help)

	for {
		if err := iface.readLine(t, w); err != nil {
			return
		}
	}
}
