// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// localName converts the slash separated name of an entry into a platform specific
// path, relative to the working directory. An empty result means the entry names
// the working directory itself.
func localName(name string) string {
	abs := strings.HasPrefix(name, "/")
	name = filepath.Join(strings.Split(name, "/")...)
	if abs {
		// keep the path absolute to fail the security check
		return string(os.PathSeparator) + name
	}
	if name == "." {
		return ""
	}
	return name
}

// createDir creates the directory name in the working directory with mode. Missing
// parents are created with the config.CustomCreateDirMode().
//
// If the path contains path traversal or a symlink, the function returns an error.
//
// If the path contains a symlink and config.TraverseSymlinks() returns true, a warning is logged and the
// function continues.
func createDir(cfg *Config, name string, mode fs.FileMode) error {
	// no action needed
	if name == "" || name == "." {
		return nil
	}

	// perform security check to ensure that the path is safe to write to
	if err := securityCheck(cfg, name); err != nil {
		return fmt.Errorf("security check path failed: %w", err)
	}

	// create parents with the default mode first
	if parent := filepath.Dir(name); parent != "." {
		if err := os.MkdirAll(parent, cfg.CustomCreateDirMode().Perm()); err != nil {
			return fmt.Errorf("failed to create directory (%w)", err)
		}
	}

	if err := os.Mkdir(name, mode.Perm()); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("failed to create directory (%w)", err)
	}

	// an existing file of another type is not replaced, symlinks in name have
	// passed the security check
	stat, err := os.Stat(name)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("cannot create directory %s: file exists", name)
	}
	return nil
}

// prepareFile ensures that the parent directory of name exists and that name can be
// created. If a file exists at name, it is removed if overwriting is enabled.
func prepareFile(cfg *Config, name string) error {
	// check if a name is provided
	if len(name) == 0 {
		return fmt.Errorf("cannot create file without name")
	}

	// ensures that the directory exists and is safe to write to (e.g. no symlinks if disabled)
	if err := createDir(cfg, filepath.Dir(name), cfg.CustomCreateDirMode()); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	// ensure that if the file exist that it is not a symlink
	if err := securityCheck(cfg, name); err != nil {
		return fmt.Errorf("security check path failed: %w", err)
	}

	// Check for path validity and if file existence+overwrite
	stat, err := os.Lstat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if !cfg.Overwrite() {
		return fmt.Errorf("file already exists")
	}
	if stat.IsDir() {
		return fmt.Errorf("cannot overwrite directory %s", name)
	}
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("failed to overwrite file: %w", err)
	}
	return nil
}

// securityCheck checks if path contains path traversal and if the path contains
// a symlink.
//
// The function returns an error if the path contains path traversal or
// if a symlink is detected.
//
// If the path contains a symlink and config.TraverseSymlinks() returns true,
// a warning is logged and the function continues.
//
// If the path contains a symlink and config.TraverseSymlinks() returns false,
// an error is returned.
func securityCheck(config *Config, path string) error {
	// the working directory is the base, paths must be relative to it
	if filepath.IsAbs(path) || strings.HasPrefix(path, string(os.PathSeparator)) {
		return fmt.Errorf("absolute path detected")
	}

	// check if the path is local
	path = filepath.Clean(path)
	if path == "." {
		return nil
	}
	if !filepath.IsLocal(path) {
		return fmt.Errorf("path traversal detected")
	}

	// check each dir in path
	targetPathElements := strings.Split(path, string(os.PathSeparator))
	for i := 0; i < len(targetPathElements); i++ {

		// assemble path
		checkDir := filepath.Join(targetPathElements[0 : i+1]...)

		// check for symlink
		isSymlink, err := isSymlink(checkDir)
		if err != nil {
			return fmt.Errorf("failed to check symlink: %w", err)
		}
		if isSymlink {
			if config.TraverseSymlinks() {
				config.Logger().Warn("traverse symlink", "sub-dir", checkDir)
			} else {
				return fmt.Errorf("symlink in path")
			}
		}
	}

	return nil
}

// isSymlink checks if path is a symlink
//
// The function returns true if the path is a symlink, otherwise false.
func isSymlink(path string) (bool, error) {
	// ignore empty checks
	if len(path) == 0 {
		return false, fmt.Errorf("empty path")
	}

	// perform check
	stat, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check path: %w", err)
	}

	// check if symlink
	return stat.Mode()&os.ModeSymlink == os.ModeSymlink, nil
}
