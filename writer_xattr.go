// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build linux || darwin || freebsd || netbsd

package unarchive

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// setXattr sets the extended attribute name of path without following symlinks.
func setXattr(path string, name string, value string) error {
	if err := unix.Lsetxattr(path, name, []byte(value), 0); err != nil {
		return fmt.Errorf("lsetxattr failed: %w", err)
	}
	return nil
}
