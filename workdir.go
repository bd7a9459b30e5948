// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"fmt"
	"os"
)

// workdir scopes the process wide working directory to a destination. The
// previous directory is restored by restore, which is safe to call more than once.
type workdir struct {
	previous string
	restored bool
}

// enterDir changes the working directory to dir.
func enterDir(dir string) (*workdir, error) {
	previous, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return nil, fmt.Errorf("cannot enter destination: %w", err)
	}
	return &workdir{previous: previous}, nil
}

// restore changes back to the previous working directory.
func (w *workdir) restore() error {
	if w.restored {
		return nil
	}
	w.restored = true
	if err := os.Chdir(w.previous); err != nil {
		return fmt.Errorf("cannot restore working directory %s: %w", w.previous, err)
	}
	return nil
}
