// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdFilter reads zstandard frames. The decoder runs on the calling goroutine
// and is released when the reader session closes.
//
// https://www.rfc-editor.org/rfc/rfc8878.html
var zstdFilter = filter{
	Name:       "zst",
	MagicBytes: [][]byte{{0x28, 0xb5, 0x2f, 0xfd}},
	Decompress: func(src io.Reader) (io.Reader, error) {
		d, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	},
}
