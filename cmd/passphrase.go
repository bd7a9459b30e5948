// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-unarchive"
	"golang.org/x/term"
)

// terminalResolver asks for passphrases on the terminal.
type terminalResolver struct {
	in  *os.File
	out io.Writer
}

// ResolvePassphrase prompts for the passphrase of e. Input is not echoed if in is
// a terminal.
func (r *terminalResolver) ResolvePassphrase(_ context.Context, e *unarchive.Entry) (string, error) {
	fmt.Fprintf(r.out, "Passphrase for %s: ", e.Pathname)
	defer fmt.Fprintln(r.out)

	fd := int(r.in.Fd())
	if term.IsTerminal(fd) {
		pw, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("cannot read passphrase: %w", err)
		}
		return string(pw), nil
	}

	// read a single line, e.g. from a pipe
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := r.in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			line = append(line, buf[0])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("cannot read passphrase: %w", err)
		}
	}
	return strings.TrimSuffix(string(line), "\r"), nil
}
