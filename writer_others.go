// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package unarchive

import (
	"fmt"
	"runtime"
	"time"
)

// lchown is not supported on this platform.
func lchown(_ string, _, _ int) error {
	return fmt.Errorf("chown is not supported on this platform (%s)", runtime.GOOS)
}

// isRoot returns false, ownership is never restored on this platform.
func isRoot() bool {
	return false
}

// lchtimes modifies the access and modified timestamps on a target path
// This capability is only available on unix as of now.
func lchtimes(_ string, _, _ time.Time) error {
	return fmt.Errorf("lchtimes is not supported on this platform (%s)", runtime.GOOS)
}

// canMaintainSymlinkTimestamps is false, symlink timestamps are left as they are.
const canMaintainSymlinkTimestamps = false
