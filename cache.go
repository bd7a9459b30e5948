// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// readerToReaderAtSeeker converts r into a seekerReaderAt. Readers that already
// offer random access are returned as they are, everything else is cached in memory
// or in a temporary file, depending on the configuration. The returned closer
// removes the temporary file.
func readerToReaderAtSeeker(c *Config, r io.Reader) (seekerReaderAt, int64, io.Closer, error) {
	noop := closerFunc(func() error { return nil })

	// check if reader is already a seekerReaderAt
	if s, ok := r.(seekerReaderAt); ok {
		size, err := s.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("cannot seek to end of reader: %w", err)
		}
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return nil, 0, nil, fmt.Errorf("cannot seek to start of reader: %w", err)
		}
		return s, size, noop, nil
	}

	// check how to cache
	if c.CacheInMemory() {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("cannot read all from reader: %w", err)
		}
		return bytes.NewReader(b), int64(len(b)), noop, nil
	}

	// create temp file
	tmpFile, err := os.CreateTemp("", "unarchive-cache-*")
	if err != nil {
		return nil, 0, nil, fmt.Errorf("cannot create cache file: %w", err)
	}
	remove := closerFunc(func() error {
		tmpFile.Close()
		return os.Remove(tmpFile.Name())
	})

	// copy reader to temp file
	size, err := io.Copy(tmpFile, r)
	if err != nil {
		remove.Close()
		return nil, 0, nil, fmt.Errorf("cannot copy reader to file: %w", err)
	}

	// seek to start
	if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
		remove.Close()
		return nil, 0, nil, fmt.Errorf("cannot seek to start of cache file: %w", err)
	}

	return tmpFile, size, remove, nil
}
