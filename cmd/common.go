// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"runtime/debug"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hako/durafmt"

	"github.com/potato-os/potato-boot/loader"
	"github.com/potato-os/potato-boot/options"
	"github.com/potato-os/potato-boot/shell"
)

func addCommon(iface *shell.Interface, ctx *loader.Context, o *options.BootOptions) {
	iface.Add(shell.Cmd{
		Name: "build",
		Help: "build information",
		Fn:   buildInfoCmd,
	})

	iface.Add(shell.Cmd{
		Name: "stack",
		Help: "goroutine stack trace (current)",
		Fn:   stackCmd,
	})

	iface.Add(shell.Cmd{
		Name: "uptime",
		Help: "show how long the loader has been running",
		Fn: func(_ *shell.Interface, _ []string) (string, error) {
			return uptime(ctx.Started, time.Now()), nil
		},
	})

	iface.Add(shell.Cmd{
		Name: "options",
		Help: "show boot options",
		Fn: func(_ *shell.Interface, _ []string) (string, error) {
			return o.String(), nil
		},
	})

	iface.Add(shell.Cmd{
		Name:    "ls",
		Args:    1,
		Pattern: regexp.MustCompile(`^ls(?: (.+))?$`),
		Syntax:  "(path)?",
		Help:    "list boot directory contents",
		Fn: func(_ *shell.Interface, arg []string) (string, error) {
			return list(ctx.Root(), arg[0])
		},
	})

	iface.Add(shell.Cmd{
		Name: "boot",
		Help: "resume boot",
		Fn: func(_ *shell.Interface, _ []string) (string, error) {
			return "", io.EOF
		},
	})
}

func buildInfoCmd(_ *shell.Interface, _ []string) (string, error) {
	if bi, ok := debug.ReadBuildInfo(); ok {
		return bi.String(), nil
	}

	return "", nil
}

func stackCmd(_ *shell.Interface, _ []string) (string, error) {
	return string(debug.Stack()), nil
}

func uptime(start time.Time, now time.Time) string {
	return durafmt.Parse(now.Sub(start).Truncate(time.Millisecond)).String()
}

func list(fsys fs.FS, path string) (string, error) {
	if fsys == nil {
		return "", fmt.Errorf("boot directory not resolved")
	}

	path = strings.Trim(strings.TrimSpace(path), "/")

	if len(path) == 0 {
		path = "."
	}

	entries, err := fs.ReadDir(fsys, path)

	if err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)
	t := tabwriter.NewWriter(buf, 0, 8, 2, ' ', 0)

	for _, e := range entries {
		info, err := e.Info()

		if err != nil {
			return "", err
		}

		name := e.Name()

		if e.IsDir() {
			name += "/"
		}

		fmt.Fprintf(t, "%s\t%d\t%s\n", info.Mode(), info.Size(), name)
	}

	t.Flush()

	return strings.TrimSuffix(buf.String(), "\n"), nil
}
