// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build !(linux || darwin || freebsd || netbsd)

package unarchive

import (
	"fmt"
	"runtime"
)

// setXattr is not supported on this platform.
func setXattr(_ string, _ string, _ string) error {
	return fmt.Errorf("extended attributes are not supported on this platform (%s)", runtime.GOOS)
}
