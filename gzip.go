// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// gzipFilter reads gzip streams. Concatenated members are read as one stream.
var gzipFilter = filter{
	Name:       "gz",
	MagicBytes: [][]byte{{0x1f, 0x8b}},
	Decompress: func(src io.Reader) (io.Reader, error) {
		zr, err := gzip.NewReader(src)
		if err != nil {
			return nil, err
		}
		zr.Multistream(true)
		return zr, nil
	},
}
