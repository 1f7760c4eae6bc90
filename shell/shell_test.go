// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package shell

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"testing"
)

func testInterface() *Interface {
	iface := &Interface{}

	iface.Add(Cmd{
		Name: "ping",
		Help: "reply pong",
		Fn: func(_ *Interface, _ []string) (string, error) {
			return "pong", nil
		},
	})

	iface.Add(Cmd{
		Name:    "echo",
		Args:    1,
		Pattern: regexp.MustCompile(`^echo (.+)$`),
		Syntax:  "<text>",
		Help:    "echo text",
		Fn: func(_ *Interface, arg []string) (string, error) {
			return strings.ToUpper(arg[0]), nil
		},
	})

	iface.Add(Cmd{
		Name: "boot",
		Help: "leave",
		Fn: func(_ *Interface, _ []string) (string, error) {
			return "", io.EOF
		},
	})

	return iface
}

func TestExec(t *testing.T) {
	iface := testInterface()
	buf := new(bytes.Buffer)

	if err := iface.Exec("ping", buf); err != nil {
		t.Fatal(err)
	}

	if err := iface.Exec("echo potato", buf); err != nil {
		t.Fatal(err)
	}

	if buf.String() != "pong\nPOTATO\n" {
		t.Errorf("unexpected output %q", buf.String())
	}

	if err := iface.Exec("echo", buf); err == nil {
		t.Error("expected error")
	}

	if err := iface.Exec("boot", buf); err != io.EOF {
		t.Errorf("unexpected error %v", err)
	}
}

func TestHelp(t *testing.T) {
	iface := testInterface()
	help, _ := iface.Help(nil, nil)

	lines := strings.Split(strings.TrimSpace(help), "\n")

	if len(lines) != 3 {
		t.Fatalf("unexpected help:\n%s", help)
	}

	for i, prefix := range []string{"boot", "echo", "ping"} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("unexpected help line %q", lines[i])
		}
	}

	if m, _ := regexp.MatchString(`echo\s+<text>\s+# echo text`, help); !m {
		t.Errorf("unexpected help:\n%s", help)
	}
}
