// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package shell

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"text/tabwriter"
)

// CmdFn represents a command handler.
type CmdFn func(iface *Interface, arg []string) (res string, err error)

// Cmd represents a shell command.
type Cmd struct {
	// Name is the command name, matched exactly when Pattern is nil.
	Name string
	// Args is the number of Pattern submatches passed to Fn.
	Args int
	// Pattern is the command line matching expression.
	Pattern *regexp.Regexp
	// Syntax describes the command arguments.
	Syntax string
	// Help is the command description.
	Help string
	// Fn is the command handler.
	Fn CmdFn
}

// Add registers a terminal interface command.
func (iface *Interface) Add(cmd Cmd) {
	if iface.cmds == nil {
		iface.cmds = make(map[string]*Cmd)
	}

	iface.cmds[cmd.Name] = &cmd
}

// Help returns a formatted string with instructions for all registered
// commands.
func (iface *Interface) Help(_ *Interface, _ []string) (string, error) {
	var names []string

	buf := new(bytes.Buffer)
	t := tabwriter.NewWriter(buf, 16, 8, 0, '\t', tabwriter.TabIndent)

	for name := range iface.cmds {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		cmd := iface.cmds[name]
		fmt.Fprintf(t, "%s\t%s\t # %s\n", cmd.Name, cmd.Syntax, cmd.Help)
	}

	t.Flush()

	return buf.String(), nil
}
