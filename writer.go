// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExtractFlags selects the metadata a [DiskWriter] restores.
type ExtractFlags int

const (
	// ExtractTime restores access and modification times.
	ExtractTime ExtractFlags = 1 << iota

	// ExtractPerm restores permissions, including setuid, setgid and sticky bits.
	ExtractPerm

	// ExtractACL restores access control lists.
	ExtractACL

	// ExtractFFlags restores file flags.
	ExtractFFlags

	// ExtractOwner restores the owner and group.
	ExtractOwner

	// ExtractXattr restores all extended attributes.
	ExtractXattr
)

// String returns the names of the set flags.
func (f ExtractFlags) String() string {
	names := []string{"time", "perm", "acl", "fflags", "owner", "xattr"}
	var set []string
	for i, n := range names {
		if f&(1<<i) != 0 {
			set = append(set, n)
		}
	}
	return strings.Join(set, "|")
}

// DiskWriter materializes archive entries in the current working directory. Every
// method returns nil on success, a [*Warning] if the operation succeeded with a
// problem, or any other error if it failed.
type DiskWriter interface {
	// SetOptions selects the metadata restored for each entry.
	SetOptions(flags ExtractFlags) error

	// SetStandardLookup resolves owner and group names with the system user database.
	SetStandardLookup() error

	// WriteHeader creates the filesystem object described by e.
	WriteHeader(e *Entry) error

	// WriteBlock writes b at offset off of the current entry.
	WriteBlock(b []byte, off int64) error

	// FinishEntry completes the current entry and restores its metadata.
	FinishEntry() error

	// Close completes pending work and releases all resources.
	Close() error
}

// diskWriter is the default [DiskWriter].
type diskWriter struct {
	cfg    *Config
	flags  ExtractFlags
	owners *ownerLookup

	entry *Entry
	name  string
	file  *os.File
	end   int64
	skip  bool

	// directories get their metadata when the writer is closed, after all
	// children have been written
	dirs []*pendingDir
}

// pendingDir is a directory whose metadata is restored on close.
type pendingDir struct {
	name  string
	entry *Entry
}

// NewDiskWriter returns the default [DiskWriter] configured with cfg.
func NewDiskWriter(cfg *Config) DiskWriter {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &diskWriter{cfg: cfg}
}

// SetOptions selects the metadata restored for each entry.
func (w *diskWriter) SetOptions(flags ExtractFlags) error {
	w.flags = flags
	return nil
}

// SetStandardLookup enables owner lookups by name.
func (w *diskWriter) SetStandardLookup() error {
	w.owners = newOwnerLookup()
	return nil
}

// WriteHeader creates the directory, link or empty file described by e.
func (w *diskWriter) WriteHeader(e *Entry) error {
	if e == nil {
		return errors.New("missing entry")
	}
	if w.file != nil {
		return errors.New("previous entry not finished")
	}
	w.entry, w.name, w.end, w.skip = e, localName(e.Pathname), 0, false

	var err error
	switch e.Type {
	case EntryDir:
		err = w.writeDir()
	case EntryRegular:
		err = w.writeFile()
	case EntrySymlink:
		err = w.writeSymlink()
	case EntryHardlink:
		err = w.writeHardlink()
	default:
		err = unsupportedFile(e.Pathname)
	}

	if errors.Is(err, ErrUnsupportedFile) && w.cfg.ContinueOnUnsupportedFiles() {
		w.skip = true
		return &Warning{Op: "write header", Message: err.Error(), Err: err}
	}
	return err
}

// writeDir creates the directory of the current entry.
func (w *diskWriter) writeDir() error {
	if w.name == "" {
		return nil
	}
	mode := w.cfg.CustomCreateDirMode()
	if w.flags&ExtractPerm != 0 && w.entry.Mode.Perm() != 0 {
		// keep the directory writable until its metadata is restored
		mode = w.entry.Mode.Perm() | 0o700
	}
	return createDir(w.cfg, w.name, mode)
}

// writeFile creates the file of the current entry and keeps it open for data.
func (w *diskWriter) writeFile() error {
	if err := prepareFile(w.cfg, w.name); err != nil {
		return err
	}
	mode := w.cfg.CustomDecompressFileMode()
	if w.flags&ExtractPerm != 0 && w.entry.Mode.Perm() != 0 {
		mode = w.entry.Mode.Perm()
	}
	f, err := os.OpenFile(w.name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode.Perm())
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	w.file = f
	return nil
}

// writeSymlink creates the symlink of the current entry.
func (w *diskWriter) writeSymlink() error {
	// check if symlink extraction is denied
	if w.cfg.DenySymlinkExtraction() {
		return unsupportedFile(w.entry.Pathname)
	}

	// Check if link target is absolute path
	linkTarget := w.entry.Linkname
	if filepath.IsAbs(linkTarget) || strings.HasPrefix(linkTarget, "/") {
		return fmt.Errorf("symlink with absolute path as target: %s", linkTarget)
	}
	if err := prepareFile(w.cfg, w.name); err != nil {
		return err
	}

	// check link target for traversal
	targetCleaned := filepath.Join(filepath.Dir(w.name), filepath.FromSlash(linkTarget))
	if err := securityCheck(w.cfg, targetCleaned); err != nil {
		return fmt.Errorf("symlink target security check path failed: %w", err)
	}

	// create link
	if err := os.Symlink(linkTarget, w.name); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}
	return nil
}

// writeHardlink links the current entry to a previously extracted file.
func (w *diskWriter) writeHardlink() error {
	target := localName(w.entry.Linkname)
	if target == "" {
		return fmt.Errorf("hard link without target: %s", w.entry.Pathname)
	}
	if err := securityCheck(w.cfg, target); err != nil {
		return fmt.Errorf("hard link target security check path failed: %w", err)
	}
	if err := prepareFile(w.cfg, w.name); err != nil {
		return err
	}
	if err := os.Link(target, w.name); err != nil {
		return fmt.Errorf("failed to create hard link: %w", err)
	}
	return nil
}

// WriteBlock writes b at offset off. Blocks of entries that have no open file are
// discarded. All-zero blocks of sparse entries are left as holes.
func (w *diskWriter) WriteBlock(b []byte, off int64) error {
	if w.entry == nil {
		return errors.New("no current entry")
	}
	if w.skip || w.file == nil {
		return nil
	}
	if end := off + int64(len(b)); end > w.end {
		w.end = end
	}
	if w.entry.Sparse && isZero(b) {
		return nil
	}
	if _, err := w.file.WriteAt(b, off); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// FinishEntry closes the current file and restores the metadata of the entry.
// Failures to restore metadata are returned as a [*Warning].
func (w *diskWriter) FinishEntry() error {
	if w.entry == nil {
		return errors.New("no current entry")
	}
	e, name, skip := w.entry, w.name, w.skip
	w.entry, w.skip = nil, false

	if w.file != nil {
		f := w.file
		w.file = nil
		if e.Sparse {
			if err := f.Truncate(w.end); err != nil {
				f.Close()
				return fmt.Errorf("failed to truncate file: %w", err)
			}
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close file: %w", err)
		}
	}
	if skip || name == "" || e.Type == EntryHardlink {
		return nil
	}

	// directories are finished on close
	if e.Type == EntryDir {
		w.dirs = append(w.dirs, &pendingDir{name: name, entry: e})
		return nil
	}

	if problems := w.restoreMetadata(name, e); len(problems) > 0 {
		return &Warning{Op: "finish entry", Message: strings.Join(problems, "; ")}
	}
	return nil
}

// Close restores the metadata of all extracted directories, deepest first.
func (w *diskWriter) Close() error {
	var problems []string
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			problems = append(problems, err.Error())
		}
		w.file = nil
	}

	sort.SliceStable(w.dirs, func(i, j int) bool {
		return len(w.dirs[i].name) > len(w.dirs[j].name)
	})
	for _, d := range w.dirs {
		problems = append(problems, w.restoreMetadata(d.name, d.entry)...)
	}
	w.dirs = nil

	if len(problems) > 0 {
		return &Warning{Op: "close writer", Message: strings.Join(problems, "; ")}
	}
	return nil
}

// restoreMetadata applies owner, permissions, extended attributes, file flags and
// timestamps of e to name, in that order. It returns a description of every
// failure.
func (w *diskWriter) restoreMetadata(name string, e *Entry) []string {
	var problems []string
	symlink := e.Type == EntrySymlink

	// owner first, chown clears setuid and setgid bits
	if w.flags&ExtractOwner != 0 && isRoot() {
		uid, gid := e.Uid, e.Gid
		if w.owners != nil {
			uid = w.owners.uid(e.Uname, uid)
			gid = w.owners.gid(e.Gname, gid)
		}
		if uid >= 0 || gid >= 0 {
			if err := lchown(name, uid, gid); err != nil {
				problems = append(problems, fmt.Sprintf("cannot restore owner: %s", err))
			}
		}
	}

	if w.flags&ExtractPerm != 0 && !symlink && e.Mode.Perm() != 0 {
		if err := os.Chmod(name, e.Mode&modeBits); err != nil {
			problems = append(problems, fmt.Sprintf("cannot restore permissions: %s", err))
		}
	}

	for _, k := range sortedKeys(e.Xattrs) {
		acl := strings.HasPrefix(k, xattrACLPrefix)
		if w.flags&ExtractXattr == 0 && !(acl && w.flags&ExtractACL != 0) {
			continue
		}
		if err := setXattr(name, k, e.Xattrs[k]); err != nil {
			problems = append(problems, fmt.Sprintf("cannot restore extended attribute %s: %s", k, err))
		}
	}

	if w.flags&ExtractFFlags != 0 && e.FFlags != "" {
		problems = append(problems, "cannot restore file flags")
	}

	if w.flags&ExtractTime != 0 && !e.ModTime.IsZero() {
		atime := e.AccessTime
		if atime.IsZero() {
			atime = e.ModTime
		}
		var err error
		switch {
		case !symlink:
			err = os.Chtimes(name, atime, e.ModTime)
		case canMaintainSymlinkTimestamps:
			err = lchtimes(name, atime, e.ModTime)
		}
		if err != nil {
			problems = append(problems, fmt.Sprintf("cannot restore timestamps: %s", err))
		}
	}

	return problems
}

// xattrACLPrefix prefixes extended attributes that hold POSIX ACLs.
const xattrACLPrefix = "system.posix_acl_"

// isZero returns true if b contains only zero bytes.
func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// sortedKeys returns the keys of m in sorted order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
