// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"time"
)

// EntryType is the kind of filesystem object an archive entry describes.
type EntryType int

const (
	EntryRegular EntryType = iota
	EntryDir
	EntrySymlink
	EntryHardlink
	EntryCharDevice
	EntryBlockDevice
	EntryFIFO
	EntryOther
)

// String returns a short name for the entry type.
func (t EntryType) String() string {
	switch t {
	case EntryRegular:
		return "file"
	case EntryDir:
		return "dir"
	case EntrySymlink:
		return "symlink"
	case EntryHardlink:
		return "hardlink"
	case EntryCharDevice:
		return "char"
	case EntryBlockDevice:
		return "block"
	case EntryFIFO:
		return "fifo"
	default:
		return "other"
	}
}

// modeBits are the bits of a file mode that are restored on disk.
const modeBits = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// entryTypeFromMode maps the type bits of mode to an [EntryType].
func entryTypeFromMode(mode fs.FileMode) EntryType {
	switch {
	case mode.IsRegular():
		return EntryRegular
	case mode.IsDir():
		return EntryDir
	case mode&fs.ModeSymlink != 0:
		return EntrySymlink
	case mode&fs.ModeNamedPipe != 0:
		return EntryFIFO
	case mode&fs.ModeCharDevice != 0:
		return EntryCharDevice
	case mode&fs.ModeDevice != 0:
		return EntryBlockDevice
	default:
		return EntryOther
	}
}

// Entry holds the metadata of one archive entry. An Entry is only valid for the
// iteration of the extraction loop that produced it.
type Entry struct {
	// Pathname is the slash separated path of the entry inside the archive.
	Pathname string

	// Linkname is the target of a symlink or hard link.
	Linkname string

	// Size is the uncompressed size of the payload. -1 means unknown.
	Size int64

	Type EntryType

	// Mode holds the permission bits (and setuid/setgid/sticky) of the entry.
	Mode fs.FileMode

	ModTime    time.Time
	AccessTime time.Time

	// Uid and Gid are -1 if the format does not record an owner.
	Uid   int
	Gid   int
	Uname string
	Gname string

	// Encrypted is true if the payload requires a passphrase.
	Encrypted bool

	// Sparse is true if the payload may contain holes.
	Sparse bool

	// Xattrs holds extended attributes (including POSIX ACLs stored as
	// system.posix_acl_* attributes).
	Xattrs map[string]string

	// FFlags holds file flags as recorded by the archiver (e.g. "nodump,uchg").
	FFlags string

	// Format is the archive format that produced the entry, e.g. "tar.gz".
	Format string
}

// String returns a one-line description of the entry.
func (e *Entry) String() string {
	return fmt.Sprintf("%s %s (%d bytes)", e.Type, e.Pathname, e.Size)
}

// FileMode returns the permission bits of the entry combined with its type bits.
func (e *Entry) FileMode() fs.FileMode {
	mode := e.Mode & modeBits
	switch e.Type {
	case EntryDir:
		mode |= fs.ModeDir
	case EntrySymlink:
		mode |= fs.ModeSymlink
	case EntryCharDevice:
		mode |= fs.ModeDevice | fs.ModeCharDevice
	case EntryBlockDevice:
		mode |= fs.ModeDevice
	case EntryFIFO:
		mode |= fs.ModeNamedPipe
	}
	return mode
}

// EntryFilter decides if an entry is extracted. Entries for which it returns false
// are skipped: their data is drained and nothing is written.
type EntryFilter func(e *Entry) bool

// PatternFilter returns an [EntryFilter] that accepts entries whose pathname matches
// at least one include pattern (all, if include is empty) and no exclude pattern.
// Patterns are matched using [path/filepath.Match]; malformed patterns never match.
func PatternFilter(include, exclude []string) EntryFilter {
	return func(e *Entry) bool {
		if len(exclude) > 0 {
			if match, err := checkPatterns(exclude, e.Pathname); err == nil && match {
				return false
			}
		}
		match, err := checkPatterns(include, e.Pathname)
		return err == nil && match
	}
}

// checkPatterns checks if the given path matches any of the given patterns.
// If no patterns are given, the function returns true.
func checkPatterns(patterns []string, path string) (bool, error) {

	// no patterns given
	if len(patterns) == 0 {
		return true, nil
	}

	// check if path matches any pattern
	for _, pattern := range patterns {
		if match, err := filepath.Match(pattern, path); err != nil {
			return false, fmt.Errorf("failed to match pattern: %w", err)
		} else if match {
			return true, nil
		}
	}
	return false, nil
}
