// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"fmt"
	"io"

	"github.com/bodgit/sevenzip"
)

// fileExtension7zip is the file extension for 7zip files
const fileExtension7zip = "7z"

// magicBytes7zip are the magic bytes for 7zip files
var magicBytes7zip = [][]byte{
	{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C},
}

// is7zip checks if the header matches the magic bytes for 7zip files
func is7zip(data []byte) bool {
	return matchesMagicBytes(data, 0, magicBytes7zip)
}

// sevenZipWalker is a walker for 7zip files. Encryption is read from the archive
// header: an encrypted header needs the passphrase before any entry is known,
// encrypted payloads resolve it when the first of them is opened.
type sevenZipWalker struct {
	ra     io.ReaderAt
	size   int64
	keys   *keyring
	layout *sevenZipLayout
	r      *sevenzip.Reader
	fp     int
	keyed  bool
	keyErr error
}

// newSevenZipWalker reads the header of the 7zip archive in ra. If the header is
// encrypted, the passphrase is resolved right away.
func newSevenZipWalker(ra io.ReaderAt, size int64, name string, keys *keyring) (*sevenZipWalker, error) {
	layout, err := inspectSevenZip(ra, size)
	if err != nil {
		return nil, fmt.Errorf("cannot create 7zip reader: %w", err)
	}
	z := &sevenZipWalker{ra: ra, size: size, keys: keys, layout: layout, keyed: keys.hasFixed}
	if layout.headerEncrypted && !z.keyed {
		err = z.unlock(&Entry{Pathname: name, Encrypted: true, Format: fileExtension7zip})
	} else {
		z.r, err = sevenzip.NewReaderWithPassword(ra, size, keys.fixed)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot create 7zip reader: %w", err)
	}
	return z, nil
}

// Type returns the file extension for 7zip files
func (z *sevenZipWalker) Type() string {
	return fileExtension7zip
}

// Streaming returns false, 7zip entries are read from the archive header.
func (z *sevenZipWalker) Streaming() bool {
	return false
}

// Next returns the next entry in the 7zip file
func (z *sevenZipWalker) Next() (archiveEntry, error) {
	if z.fp >= len(z.r.File) {
		return nil, io.EOF
	}
	defer func() { z.fp++ }()
	return &sevenZipEntry{walker: z, index: z.fp}, nil
}

// unlock resolves the passphrase for e and reopens the archive with it. The
// passphrase is resolved at most once per archive, later calls return the result
// of the first one.
func (z *sevenZipWalker) unlock(e *Entry) error {
	if z.keyed {
		return z.keyErr
	}
	z.keyed = true
	pw, err := z.keys.passphrase(e)
	if err == nil {
		z.r, err = sevenzip.NewReaderWithPassword(z.ra, z.size, pw)
	}
	z.keyErr = err
	return err
}

// sevenZipEntry is an entry in a 7zip file
type sevenZipEntry struct {
	walker *sevenZipWalker
	index  int
	header *Entry
}

// file returns the entry of the current reader.
func (z *sevenZipEntry) file() *sevenzip.File {
	return z.walker.r.File[z.index]
}

// Header returns the metadata of the 7zip entry
func (z *sevenZipEntry) Header() *Entry {
	if z.header != nil {
		return z.header
	}

	f := z.file()
	mode := f.FileInfo().Mode()
	z.header = &Entry{
		Pathname:   f.Name,
		Size:       int64(f.UncompressedSize),
		Type:       entryTypeFromMode(mode),
		Mode:       mode & modeBits,
		ModTime:    f.Modified,
		AccessTime: f.Accessed,
		Uid:        -1,
		Gid:        -1,
		Encrypted:  z.walker.layout.encrypted(f),
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
func (z *sevenZipEntry) linkname() string {
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

// Open returns a reader for the 7zip entry. The passphrase is resolved when the
// first encrypted entry is opened.
func (z *sevenZipEntry) Open() (io.ReadCloser, error) {
	if z.walker.layout.encrypted(z.file()) {
		if err := z.walker.unlock(z.encryptedHeader()); err != nil {
			return nil, err
		}
	}
	return z.file().Open()
}

// encryptedHeader returns the header of the entry marked as encrypted.
func (z *sevenZipEntry) encryptedHeader() *Entry {
	e := *z.Header()
	e.Encrypted = true
	return &e
}
