// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"io"
)

// limitErrorReader reads the source stream of a reader session and fails with
// [ErrMaxInputSizeExceeded] once more than limit bytes are available. A stream of
// exactly limit bytes ends with io.EOF. A limit of -1 disables the check.
type limitErrorReader struct {
	r        io.Reader
	limit    int64
	consumed int64
}

// newLimitErrorReader returns a reader that reads at most limit bytes from r.
func newLimitErrorReader(r io.Reader, limit int64) *limitErrorReader {
	return &limitErrorReader{r: r, limit: limit}
}

// Read reads from the underlying reader into p.
func (l *limitErrorReader) Read(p []byte) (int, error) {
	if l.limit == -1 {
		n, err := l.r.Read(p)
		l.consumed += int64(n)
		return n, err
	}

	remaining := l.limit - l.consumed
	if remaining <= 0 {
		// any further byte exceeds the limit
		var extra [1]byte
		n, err := l.r.Read(extra[:])
		if n > 0 {
			return 0, ErrMaxInputSizeExceeded
		}
		if err == nil {
			err = io.ErrNoProgress
		}
		return 0, err
	}

	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := l.r.Read(p)
	l.consumed += int64(n)
	return n, err
}

// Consumed returns how many bytes have been read from the underlying reader.
func (l *limitErrorReader) Consumed() int64 {
	return l.consumed
}
