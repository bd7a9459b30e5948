// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"archive/tar"
	"io"
	"strings"
)

// fileExtensionTar is the file extension for tar files
const fileExtensionTar = "tar"

// offsetTar is the offset where the magic bytes are located in the file
const offsetTar = 257

// magicBytesTar are the magic bytes for tar files
var magicBytesTar = [][]byte{
	[]byte("ustar\x00tar\x00"),
	[]byte("ustar\x00"),
	[]byte("ustar  \x00"),
}

const (
	// paxXattrPrefix prefixes extended attributes in PAX records
	paxXattrPrefix = "SCHILY.xattr."

	// paxFFlags is the PAX record holding file flags
	paxFFlags = "SCHILY.fflags"

	// paxSparseMajor is present in PAX records of sparse files
	paxSparseMajor = "GNU.sparse.major"
)

// isTar checks if the header matches the magic bytes for tar files
func isTar(data []byte) bool {
	return matchesMagicBytes(data, offsetTar, magicBytesTar)
}

// tarWalker is a walker for tar files
type tarWalker struct {
	tr *tar.Reader
}

// newTarWalker returns a walker reading the tar stream src.
func newTarWalker(src io.Reader) *tarWalker {
	return &tarWalker{tr: tar.NewReader(src)}
}

// Type returns the file extension for tar files
func (t *tarWalker) Type() string {
	return fileExtensionTar
}

// Streaming returns true, the payload of a tar entry is only available until the
// next header is read.
func (t *tarWalker) Streaming() bool {
	return true
}

// Next returns the next entry in the tar archive. Global PAX headers are consumed
// by the tar reader and never returned.
func (t *tarWalker) Next() (archiveEntry, error) {
	for {
		hdr, err := t.tr.Next()
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}
		return &tarEntry{hdr: hdr, tr: t.tr}, nil
	}
}

// tarEntry is an entry in a tar archive
type tarEntry struct {
	hdr *tar.Header
	tr  *tar.Reader
}

// Header returns the metadata of the entry.
func (t *tarEntry) Header() *Entry {
	e := &Entry{
		Pathname:   t.hdr.Name,
		Linkname:   t.hdr.Linkname,
		Size:       t.hdr.Size,
		Type:       tarEntryType(t.hdr.Typeflag),
		Mode:       t.hdr.FileInfo().Mode() & modeBits,
		ModTime:    t.hdr.ModTime,
		AccessTime: t.hdr.AccessTime,
		Uid:        t.hdr.Uid,
		Gid:        t.hdr.Gid,
		Uname:      t.hdr.Uname,
		Gname:      t.hdr.Gname,
		Sparse:     t.hdr.Typeflag == tar.TypeGNUSparse,
	}

	for k, v := range t.hdr.PAXRecords {
		switch {
		case strings.HasPrefix(k, paxXattrPrefix):
			if e.Xattrs == nil {
				e.Xattrs = make(map[string]string)
			}
			e.Xattrs[strings.TrimPrefix(k, paxXattrPrefix)] = v
		case k == paxFFlags:
			e.FFlags = v
		case k == paxSparseMajor:
			e.Sparse = true
		}
	}

	// only regular files carry a payload
	switch e.Type {
	case EntryRegular:
	default:
		e.Size = 0
	}
	return e
}

// Open returns a reader for the entry
func (t *tarEntry) Open() (io.ReadCloser, error) {
	return &noopReaderCloser{t.tr}, nil
}

// tarEntryType maps a tar typeflag to an [EntryType].
func tarEntryType(flag byte) EntryType {
	switch flag {
	case tar.TypeReg, tar.TypeGNUSparse, tar.TypeCont:
		return EntryRegular
	case tar.TypeDir:
		return EntryDir
	case tar.TypeSymlink:
		return EntrySymlink
	case tar.TypeLink:
		return EntryHardlink
	case tar.TypeChar:
		return EntryCharDevice
	case tar.TypeBlock:
		return EntryBlockDevice
	case tar.TypeFifo:
		return EntryFIFO
	default:
		return EntryOther
	}
}
