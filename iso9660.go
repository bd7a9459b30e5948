// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"fmt"
	"io"
	"path"

	"github.com/kdomanski/iso9660"
)

// fileExtensionIso9660 is the file extension for ISO 9660 images.
const fileExtensionIso9660 = "iso"

// offsetIso9660 is the offset of the identifier of the first volume descriptor,
// located after the 32k system area.
const offsetIso9660 = 32769

// magicBytesIso9660 is the standard identifier of a volume descriptor.
var magicBytesIso9660 = [][]byte{
	[]byte("CD001"),
}

// isIso9660 checks if the header matches the ISO 9660 identifier.
func isIso9660(header []byte) bool {
	return matchesMagicBytes(header, offsetIso9660, magicBytesIso9660)
}

// isoWalker walks the directory tree of an ISO 9660 image depth first.
type isoWalker struct {
	pending []*isoEntry
}

// newIsoWalker opens the image in ra.
func newIsoWalker(ra io.ReaderAt) (*isoWalker, error) {
	img, err := iso9660.OpenImage(ra)
	if err != nil {
		return nil, fmt.Errorf("cannot open iso9660 image: %w", err)
	}
	root, err := img.RootDir()
	if err != nil {
		return nil, fmt.Errorf("cannot read iso9660 root directory: %w", err)
	}
	w := &isoWalker{}
	if err := w.push("", root); err != nil {
		return nil, err
	}
	return w, nil
}

// Type returns the file extension for ISO 9660 images.
func (w *isoWalker) Type() string {
	return fileExtensionIso9660
}

// Streaming returns false, files of an image are located by their extent.
func (w *isoWalker) Streaming() bool {
	return false
}

// Next returns the next file or directory of the image.
func (w *isoWalker) Next() (archiveEntry, error) {
	if len(w.pending) == 0 {
		return nil, io.EOF
	}
	e := w.pending[0]
	w.pending = w.pending[1:]
	if e.f.IsDir() {
		if err := w.push(e.name, e.f); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// push queues the children of dir in front of the pending entries.
func (w *isoWalker) push(prefix string, dir *iso9660.File) error {
	children, err := dir.GetChildren()
	if err != nil {
		return fmt.Errorf("cannot read iso9660 directory %q: %w", prefix, err)
	}
	entries := make([]*isoEntry, 0, len(children))
	for _, c := range children {
		switch c.Name() {
		case "", ".", "..", "\x00", "\x01":
			continue
		}
		entries = append(entries, &isoEntry{name: path.Join(prefix, c.Name()), f: c})
	}
	w.pending = append(entries, w.pending...)
	return nil
}

// isoEntry is a file or directory of an ISO 9660 image.
type isoEntry struct {
	name string
	f    *iso9660.File
}

// Header returns the metadata of the entry.
func (e *isoEntry) Header() *Entry {
	h := &Entry{
		Pathname:   e.name,
		Type:       EntryRegular,
		Size:       e.f.Size(),
		Mode:       e.f.Mode() & modeBits,
		ModTime:    e.f.ModTime(),
		AccessTime: e.f.ModTime(),
		Uid:        -1,
		Gid:        -1,
	}
	if e.f.IsDir() {
		h.Type = EntryDir
		h.Size = 0
	}
	return h
}

// Open returns a reader for the file.
func (e *isoEntry) Open() (io.ReadCloser, error) {
	return &noopReaderCloser{e.f.Reader()}, nil
}
