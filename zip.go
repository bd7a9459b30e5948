// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"fmt"
	"io"

	"github.com/yeka/zip"
)

// fileExtensionZip is the file extension for zip files.
const fileExtensionZip = "zip"

// magicBytesZip contains the magic bytes for a zip archive.
// reference: https://golang.org/pkg/archive/zip/
var magicBytesZip = [][]byte{
	{0x50, 0x4B, 0x03, 0x04},
}

// isZip checks if data is a zip archive. It returns true if data is a zip archive and false if data is not a zip archive.
func isZip(data []byte) bool {
	return matchesMagicBytes(data, 0, magicBytesZip)
}

// newZipWalker reads the central directory of the zip archive in ra.
func newZipWalker(ra io.ReaderAt, size int64, keys *keyring) (*zipWalker, error) {
	reader, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("cannot create zip reader: %w", err)
	}
	return &zipWalker{zr: reader, keys: keys}, nil
}

// zipWalker is a walker for zip files
type zipWalker struct {
	zr   *zip.Reader
	fp   int
	keys *keyring
}

// Type returns the file extension for zip files
func (z *zipWalker) Type() string {
	return fileExtensionZip
}

// Streaming returns false, zip entries are read from the central directory.
func (z *zipWalker) Streaming() bool {
	return false
}

// Next returns the next entry in the zip archive
func (z *zipWalker) Next() (archiveEntry, error) {
	if z.fp >= len(z.zr.File) {
		return nil, io.EOF
	}
	defer func() { z.fp++ }()
	return &zipEntry{zf: z.zr.File[z.fp], keys: z.keys}, nil
}

// zipEntry is an entry in a zip archive
type zipEntry struct {
	zf     *zip.File
	keys   *keyring
	header *Entry
}

// Header returns the metadata of the entry. The target of a symlink is stored as
// payload and read when the header is requested.
func (z *zipEntry) Header() *Entry {
	if z.header != nil {
		return z.header
	}

	mode := z.zf.FileHeader.Mode()
	z.header = &Entry{
		Pathname:   z.zf.FileHeader.Name,
		Size:       int64(z.zf.FileHeader.UncompressedSize64),
		Type:       entryTypeFromMode(mode),
		Mode:       mode & modeBits,
		ModTime:    z.zf.FileHeader.ModTime(),
		AccessTime: z.zf.FileHeader.ModTime(),
		Uid:        -1,
		Gid:        -1,
		Encrypted:  z.zf.IsEncrypted(),
	}

	switch z.header.Type {
	case EntryRegular:
	case EntrySymlink:
		z.header.Linkname = z.linkname()
		z.header.Size = 0
	default:
		z.header.Size = 0
	}
	return z.header
}

// linkname reads the symlink target of the entry.
func (z *zipEntry) linkname() string {
	rc, err := z.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, 4096))
	if err != nil {
		return ""
	}
	return string(data)
}

// Open returns a reader for the entry. Encrypted entries are unlocked with the
// passphrase of the keyring first.
func (z *zipEntry) Open() (io.ReadCloser, error) {
	if z.zf.IsEncrypted() {
		pw, err := z.keys.passphrase(z.Header())
		if err != nil {
			return nil, err
		}
		z.zf.SetPassword(pw)
	}
	return z.zf.Open()
}
