// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SourceKind tags the variant held by a [Source].
type SourceKind int

const (
	// SourceSinglePath is a single archive file.
	SourceSinglePath SourceKind = iota + 1

	// SourcePathList is an ordered list of files forming one multi-volume archive.
	SourcePathList

	// SourceMemory is an archive held in a byte buffer.
	SourceMemory
)

// String returns the name of the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceSinglePath:
		return "path"
	case SourcePathList:
		return "path list"
	case SourceMemory:
		return "memory"
	}
	return "unknown"
}

// Source is the resolved input of a [Job]. Exactly one variant is set.
type Source struct {
	Kind   SourceKind
	Paths  []string
	Memory []byte
}

// Name returns a human readable name of the source, used in logs and to name
// decompressed raw content.
func (s Source) Name() string {
	if s.Kind == SourceMemory {
		return ""
	}
	if len(s.Paths) == 0 {
		return ""
	}
	return filepath.Base(s.Paths[0])
}

// open returns the source as a single logical stream that can be read, seeked and
// read at arbitrary offsets, together with its size. Path lists are concatenated
// in order. The returned closer releases all opened files.
func (s Source) open() (seekerReaderAt, int64, io.Closer, error) {
	switch s.Kind {
	case SourceMemory:
		return bytes.NewReader(s.Memory), int64(len(s.Memory)), closerFunc(func() error { return nil }), nil

	case SourceSinglePath:
		f, err := os.Open(s.Paths[0])
		if err != nil {
			return nil, 0, nil, err
		}
		stat, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, 0, nil, err
		}
		return f, stat.Size(), f, nil

	case SourcePathList:
		mra, err := openMultiReaderAt(s.Paths)
		if err != nil {
			return nil, 0, nil, err
		}
		return io.NewSectionReader(mra, 0, mra.Size()), mra.Size(), mra, nil
	}

	return nil, 0, nil, fmt.Errorf("invalid source")
}

// resolveSource validates the source related construction options and returns the
// resolved [Source]. It does not decode anything.
func resolveSource(o *jobOptions) (Source, error) {
	if o.filenameSet == o.memorySet {
		return Source{}, &ConfigError{Msg: "exactly one of filename or memory is required"}
	}

	if o.memorySet {
		if o.memory == nil {
			return Source{}, &ConfigError{Msg: "memory must reference a byte buffer"}
		}
		return Source{Kind: SourceMemory, Memory: o.memory}, nil
	}

	if len(o.filenames) == 0 {
		return Source{}, &ConfigError{Msg: "filename must name at least one file"}
	}
	for _, name := range o.filenames {
		if err := checkReadable(name); err != nil {
			return Source{}, &ConfigError{Msg: fmt.Sprintf("missing or unreadable file: %s", name)}
		}
	}

	kind := SourceSinglePath
	if o.filenameList {
		kind = SourcePathList
	}
	// absolute paths stay valid while the working directory is changed
	paths := make([]string, len(o.filenames))
	for i, name := range o.filenames {
		abs, err := filepath.Abs(name)
		if err != nil {
			return Source{}, &ConfigError{Msg: fmt.Sprintf("missing or unreadable file: %s", name)}
		}
		paths[i] = abs
	}
	return Source{Kind: kind, Paths: paths}, nil
}

// checkReadable returns an error if name does not exist, is a directory or cannot
// be opened for reading.
func checkReadable(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return err
	}
	if stat.IsDir() {
		return fmt.Errorf("is a directory")
	}
	return nil
}
