// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"errors"
	"fmt"
	"io"

	"github.com/nwaples/rardecode"
)

// fileExtensionRar is the file extension for Rar files.
const fileExtensionRar = "rar"

// magicBytesRar are the magic bytes for Rar files.
var magicBytesRar = [][]byte{
	{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00},       // Rar 1.5
	{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}, // Rar 5.0
}

// isRar checks if the header matches the magic bytes for Rar files.
func isRar(data []byte) bool {
	return matchesMagicBytes(data, 0, magicBytesRar)
}

// rarOpener opens a rar decoder with the given password.
type rarOpener func(password string) (*rardecode.Reader, io.Closer, error)

// rarFileOpener opens the rar volume set starting at name. Following volumes are
// located by rardecode from the volume naming scheme.
func rarFileOpener(name string) rarOpener {
	return func(password string) (*rardecode.Reader, io.Closer, error) {
		rc, err := rardecode.OpenReader(name, password)
		if err != nil {
			return nil, nil, err
		}
		return &rc.Reader, rc, nil
	}
}

// rarStreamOpener opens a rar decoder on a fresh section of ra.
func rarStreamOpener(ra io.ReaderAt, size int64) rarOpener {
	return func(password string) (*rardecode.Reader, io.Closer, error) {
		r, err := rardecode.NewReader(io.NewSectionReader(ra, 0, size), password)
		if err != nil {
			return nil, nil, err
		}
		return r, closerFunc(func() error { return nil }), nil
	}
}

// rarBadPassword is the message of the error rardecode returns when the password
// check of an encrypted header fails. The error value is not exported.
const rarBadPassword = "rardecode: incorrect password"

// isRarPasswordError checks if err, or an error it wraps, is the password check
// failure of rardecode.
func isRarPasswordError(err error) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if err.Error() == rarBadPassword {
			return true
		}
	}
	return false
}

// rarWalker is an archiveWalker for Rar files. If the decoder reports a missing
// passphrase and a resolver is configured, the archive is reopened once with the
// resolved passphrase and the walker continues at the same entry.
type rarWalker struct {
	open    rarOpener
	keys    *keyring
	name    string
	r       *rardecode.Reader
	closer  io.Closer
	headers int
	keyed   bool
}

// newRarWalker opens the rar archive with the fixed passphrase, if there is one.
func newRarWalker(open rarOpener, name string, keys *keyring) (*rarWalker, error) {
	rw := &rarWalker{open: open, keys: keys, name: name, keyed: keys.hasFixed}
	r, c, err := open(keys.fixed)
	if err != nil && rw.canRekey(err) {
		r, c, err = rw.rekey(&Entry{Pathname: name, Encrypted: true, Format: fileExtensionRar})
	}
	if err != nil {
		return nil, fmt.Errorf("cannot create rar decoder: %w", err)
	}
	rw.r, rw.closer = r, c
	return rw, nil
}

// Type returns the file extension for rar files.
func (rw *rarWalker) Type() string {
	return fileExtensionRar
}

// Streaming returns true, rar entries are decoded in sequence.
func (rw *rarWalker) Streaming() bool {
	return true
}

// Next returns the next entry in the rar file.
func (rw *rarWalker) Next() (archiveEntry, error) {
	fh, err := rw.r.Next()
	if err != nil && rw.canRekey(err) {
		if _, _, err = rw.rekey(&Entry{Pathname: rw.name, Encrypted: true, Format: fileExtensionRar}); err == nil {
			err = rw.skip(rw.headers)
		}
		if err == nil {
			fh, err = rw.r.Next()
		}
	}
	if err != nil {
		return nil, err
	}
	rw.headers++
	return &rarEntry{f: fh, walker: rw}, nil
}

// Close closes the decoder and all opened volumes.
func (rw *rarWalker) Close() error {
	if rw.closer == nil {
		return nil
	}
	return rw.closer.Close()
}

// canRekey returns true if err asks for a passphrase that has not been resolved yet.
func (rw *rarWalker) canRekey(err error) bool {
	return !rw.keyed && rw.keys.resolver != nil && isRarPasswordError(err)
}

// rekey resolves the passphrase for e and reopens the archive with it.
func (rw *rarWalker) rekey(e *Entry) (*rardecode.Reader, io.Closer, error) {
	rw.keyed = true
	pw, err := rw.keys.passphrase(e)
	if err != nil {
		return nil, nil, err
	}
	if rw.closer != nil {
		rw.closer.Close()
	}
	r, c, err := rw.open(pw)
	if err != nil {
		return nil, nil, err
	}
	rw.r, rw.closer = r, c
	return r, c, nil
}

// skip reads n headers of the reopened archive.
func (rw *rarWalker) skip(n int) error {
	for i := 0; i < n; i++ {
		if _, err := rw.r.Next(); err != nil {
			return fmt.Errorf("cannot reposition rar decoder: %w", err)
		}
	}
	return nil
}

// rarEntry is an archiveEntry for Rar files.
type rarEntry struct {
	f      *rardecode.FileHeader
	walker *rarWalker
}

// Header returns the metadata of the entry.
func (r *rarEntry) Header() *Entry {
	mode := r.f.Mode()
	e := &Entry{
		Pathname:   r.f.Name,
		Size:       r.f.UnPackedSize,
		Type:       entryTypeFromMode(mode),
		Mode:       mode & modeBits,
		ModTime:    r.f.ModificationTime,
		AccessTime: r.f.AccessTime,
		Uid:        -1,
		Gid:        -1,
	}
	if r.f.IsDir {
		e.Type = EntryDir
	}
	if e.Type == EntrySymlink {
		// rardecode does not expose the link target
		e.Type = EntryOther
	}
	if r.f.UnKnownSize {
		e.Size = -1
	}
	if e.Type != EntryRegular {
		e.Size = 0
	}
	return e
}

// Open returns a reader for the file. The password check of rardecode runs on
// the file header, so a missing passphrase never surfaces while reading.
func (r *rarEntry) Open() (io.ReadCloser, error) {
	return &noopReaderCloser{r.walker.r}, nil
}
