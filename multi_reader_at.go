// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// seekerReaderAt combines the io.Reader, io.ReaderAt and io.Seeker interfaces.
type seekerReaderAt interface {
	io.Reader
	io.ReaderAt
	io.Seeker
}

// closerFunc adapts a function to the io.Closer interface.
type closerFunc func() error

// Close calls f.
func (f closerFunc) Close() error {
	return f()
}

// multiReaderAt is an io.ReaderAt over the concatenation of several volumes.
type multiReaderAt struct {
	volumes []io.ReaderAt
	closers []io.Closer
	starts  []int64 // offset of each volume in the logical stream
	size    int64
}

// openMultiReaderAt opens all paths in order and returns their concatenation.
func openMultiReaderAt(paths []string) (*multiReaderAt, error) {
	m := &multiReaderAt{}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			m.Close()
			return nil, err
		}
		stat, err := f.Stat()
		if err != nil {
			f.Close()
			m.Close()
			return nil, err
		}
		m.add(f, stat.Size())
		m.closers = append(m.closers, f)
	}
	return m, nil
}

// add appends a volume of the given size.
func (m *multiReaderAt) add(r io.ReaderAt, size int64) {
	m.volumes = append(m.volumes, r)
	m.starts = append(m.starts, m.size)
	m.size += size
}

// Size returns the total size of all volumes.
func (m *multiReaderAt) Size() int64 {
	return m.size
}

// ReadAt reads len(p) bytes at offset off of the logical stream, crossing volume
// boundaries as needed.
func (m *multiReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset")
	}
	if off >= m.size {
		return 0, io.EOF
	}

	// first volume that contains off
	i := sort.Search(len(m.starts), func(i int) bool { return m.starts[i] > off }) - 1

	var n int
	for n < len(p) && i < len(m.volumes) {
		end := m.size
		if i+1 < len(m.starts) {
			end = m.starts[i+1]
		}
		local := off - m.starts[i]
		want := int64(len(p) - n)
		if rest := end - off; want > rest {
			want = rest
		}
		read, err := m.volumes[i].ReadAt(p[n:n+int(want)], local)
		n += read
		off += int64(read)
		if err != nil && err != io.EOF {
			return n, err
		}
		if int64(read) < want {
			return n, io.ErrUnexpectedEOF
		}
		i++
	}

	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close closes all volumes and returns the first error.
func (m *multiReaderAt) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	return first
}
